package convert

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/leekchan/accounting"
)

const DefaultLocale = "en-US"

type separators struct {
	thousand string
	decimal  string
	// symbolAfter puts the currency symbol after the amount ("42,50 €").
	symbolAfter bool
}

var locales = map[string]separators{
	"en-US": {thousand: ",", decimal: "."},
	"en-GB": {thousand: ",", decimal: "."},
	"de-DE": {thousand: ".", decimal: ",", symbolAfter: true},
	"fr-FR": {thousand: " ", decimal: ",", symbolAfter: true},
}

func lookupLocale(locale string) separators {
	if s, ok := locales[locale]; ok {
		return s
	}
	return locales[DefaultLocale]
}

// fractionDigits is 6 below one unit and 2 otherwise.
func fractionDigits(amount float64) int {
	if amount < 1 {
		return 6
	}
	return 2
}

// FormatCurrency renders amount as money in the given ISO currency code.
// Codes without locale data fall back to "<amount> <CODE>" with the same
// fraction-digit rule.
func FormatCurrency(amount float64, currency, locale string) string {
	digits := fractionDigits(amount)
	code := strings.ToUpper(strings.TrimSpace(currency))

	info, ok := accounting.LocaleInfo[code]
	if !ok || len(code) != 3 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return FormatAmount(amount, code)
	}

	symbol := info.ComSymbol
	if symbol == "" {
		symbol = code
	}

	sep := lookupLocale(locale)
	format, negative := "%s%v", "-%s%v"
	switch {
	case sep.symbolAfter:
		format, negative = "%v %s", "-%v %s"
	case isAlpha(symbol):
		format, negative = "%s %v", "-%s %v"
	}

	ac := accounting.Accounting{
		Symbol:         symbol,
		Precision:      digits,
		Thousand:       sep.thousand,
		Decimal:        sep.decimal,
		Format:         format,
		FormatNegative: negative,
		FormatZero:     format,
	}
	return ac.FormatMoneyFloat64(amount)
}

// FormatAmount renders "<amount> <CODE>" using the same fraction-digit rule
// as FormatCurrency. It is used for crypto symbols and unknown currencies.
func FormatAmount(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strconv.FormatFloat(amount, 'f', fractionDigits(amount), 64) + " " + code
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

// FormatNumber renders amount with at most two fraction digits, switching to
// compact notation ("1.5B", "2.25T") above one billion.
func FormatNumber(amount float64) string {
	if amount > 1e9 {
		div, suffix := 1e9, "B"
		if amount >= 1e12 {
			div, suffix = 1e12, "T"
		}
		return humanize.Commaf(round2(amount/div)) + suffix
	}
	return humanize.Commaf(round2(amount))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
