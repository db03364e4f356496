package market

import (
	"context"
	"errors"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"cryptoconvert/internal/convert"
)

var (
	ErrInvalidAmount = errors.New("amount must be a non-negative number")
	ErrInvalidKind   = errors.New("asset type must be crypto or fiat")
	ErrMissingAsset  = errors.New("from and to are required")
)

// ConvertRequest names both sides of a conversion. Crypto assets are given by
// id or symbol, fiat by ISO code.
type ConvertRequest struct {
	Amount   float64
	From     string
	FromKind convert.Kind
	To       string
	ToKind   convert.Kind
	Locale   string
}

type ConvertResult struct {
	Amount    float64      `json:"amount"`
	From      string       `json:"from"`
	FromType  convert.Kind `json:"fromType"`
	To        string       `json:"to"`
	ToType    convert.Kind `json:"toType"`
	Result    float64      `json:"result"`
	Rate      float64      `json:"rate"`
	Formatted string       `json:"formatted"`
	// Available is false when either side could not be priced.
	Available bool `json:"available"`
}

func (r ConvertRequest) validate() error {
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) || r.Amount < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" {
		return ErrMissingAsset
	}
	if !r.FromKind.Valid() || !r.ToKind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

// Convert prices amount of From in units of To. The top quote list and the
// rate table are loaded concurrently; a crypto asset outside the top list is
// looked up by id. A fiat code missing from the table is treated as USD.
func (s *Service) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var (
		quotes []Quote
		rates  ExchangeRateTable
	)
	g, gctx := errgroup.WithContext(ctx)
	if req.FromKind == convert.KindCrypto || req.ToKind == convert.KindCrypto {
		g.Go(func() error {
			quotes = s.Quotes(gctx, ListParams{})
			return nil
		})
	}
	if req.FromKind == convert.KindFiat || req.ToKind == convert.KindFiat {
		g.Go(func() error {
			rates = s.Rates(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	from, _, fromOK := s.resolve(ctx, req.From, req.FromKind, quotes, rates)
	to, toCode, toOK := s.resolve(ctx, req.To, req.ToKind, quotes, rates)

	res := &ConvertResult{
		Amount:    req.Amount,
		From:      req.From,
		FromType:  req.FromKind,
		To:        req.To,
		ToType:    req.ToKind,
		Available: fromOK && toOK,
	}
	if res.Available {
		res.Result = convert.Between(req.Amount, from, to)
		res.Rate = convert.Between(1, from, to)
	}
	res.Formatted = formatResult(res.Result, toCode, req.ToKind, req.Locale)
	return res, nil
}

// resolve prices one side and returns the code used to display it: the ISO
// code for fiat, the ticker symbol for crypto.
func (s *Service) resolve(ctx context.Context, name string, kind convert.Kind, quotes []Quote, rates ExchangeRateTable) (convert.Asset, string, bool) {
	name = strings.TrimSpace(name)
	if kind == convert.KindFiat {
		code := strings.ToUpper(name)
		rate, ok := rates[code]
		if !ok || rate <= 0 {
			rate = 1
		}
		return convert.Fiat(rate), code, true
	}

	q := findQuote(quotes, name)
	if q == nil {
		q = s.Quote(ctx, strings.ToLower(name))
	}
	if q == nil || q.CurrentPrice <= 0 {
		return convert.Asset{Kind: convert.KindCrypto}, name, false
	}
	code := q.Symbol
	if code == "" {
		code = name
	}
	return convert.Crypto(q.CurrentPrice), code, true
}

// findQuote matches by id first, then by ticker symbol.
func findQuote(quotes []Quote, name string) *Quote {
	name = strings.TrimSpace(name)
	for i := range quotes {
		if strings.EqualFold(quotes[i].ID, name) {
			return &quotes[i]
		}
	}
	for i := range quotes {
		if strings.EqualFold(quotes[i].Symbol, name) {
			return &quotes[i]
		}
	}
	return nil
}

func formatResult(amount float64, code string, kind convert.Kind, locale string) string {
	if locale == "" {
		locale = convert.DefaultLocale
	}
	if kind == convert.KindFiat {
		return convert.FormatCurrency(amount, code, locale)
	}
	return convert.FormatAmount(amount, code)
}
