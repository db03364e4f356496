// Package convert holds the rate arithmetic and display formatting used by
// the converter.
package convert

import "math"

// Convert returns amount / fromRate * toRate. Any zero (or NaN) argument
// yields 0 instead of NaN or ±Inf.
//
// Convert does not know the direction of a conversion: both rates must already
// be in the same convention. Between does that normalisation.
func Convert(amount, fromRate, toRate float64) float64 {
	if !nonZero(amount) || !nonZero(fromRate) || !nonZero(toRate) {
		return 0
	}
	return amount / fromRate * toRate
}

func nonZero(v float64) bool {
	return v != 0 && !math.IsNaN(v)
}

// Kind tells crypto assets from fiat currencies.
type Kind string

const (
	KindCrypto Kind = "crypto"
	KindFiat   Kind = "fiat"
)

func (k Kind) Valid() bool {
	return k == KindCrypto || k == KindFiat
}

// Asset is a rate-bearing side of a conversion.
type Asset struct {
	Kind Kind
	// Rate is the USD price per unit for crypto, and units per 1 USD for fiat
	// (the exchange-rate table convention).
	Rate float64
}

func Crypto(priceUSD float64) Asset {
	return Asset{Kind: KindCrypto, Rate: priceUSD}
}

func Fiat(unitsPerUSD float64) Asset {
	return Asset{Kind: KindFiat, Rate: unitsPerUSD}
}

// UnitsPerUSD expresses the asset as how many of its units one USD buys.
func (a Asset) UnitsPerUSD() float64 {
	if a.Kind == KindCrypto {
		if !nonZero(a.Rate) {
			return 0
		}
		return 1 / a.Rate
	}
	return a.Rate
}

// Between converts amount of from into to, covering the four
// crypto/fiat directions with a single call shape.
func Between(amount float64, from, to Asset) float64 {
	return Convert(amount, from.UnitsPerUSD(), to.UnitsPerUSD())
}

// PercentageChange returns (current-previous)/previous*100, or 0 when
// previous is zero.
func PercentageChange(current, previous float64) float64 {
	if !nonZero(previous) {
		return 0
	}
	return (current - previous) / previous * 100
}
