package market

import "time"

// Quote is a point-in-time market snapshot for one asset. It is replaced
// wholesale on refresh; missing numbers are 0 and missing dates are "".
type Quote struct {
	ID                           string  `json:"id"`
	Symbol                       string  `json:"symbol"`
	Name                         string  `json:"name"`
	Image                        string  `json:"image"`
	CurrentPrice                 float64 `json:"current_price"`
	MarketCap                    float64 `json:"market_cap"`
	MarketCapRank                int     `json:"market_cap_rank"`
	FullyDilutedValuation        float64 `json:"fully_diluted_valuation"`
	TotalVolume                  float64 `json:"total_volume"`
	High24h                      float64 `json:"high_24h"`
	Low24h                       float64 `json:"low_24h"`
	PriceChange24h               float64 `json:"price_change_24h"`
	PriceChangePercentage24h     float64 `json:"price_change_percentage_24h"`
	MarketCapChange24h           float64 `json:"market_cap_change_24h"`
	MarketCapChangePercentage24h float64 `json:"market_cap_change_percentage_24h"`
	CirculatingSupply            float64 `json:"circulating_supply"`
	TotalSupply                  float64 `json:"total_supply"`
	MaxSupply                    float64 `json:"max_supply"`
	ATH                          float64 `json:"ath"`
	ATHChangePercentage          float64 `json:"ath_change_percentage"`
	ATHDate                      string  `json:"ath_date"`
	ATL                          float64 `json:"atl"`
	ATLChangePercentage          float64 `json:"atl_change_percentage"`
	ATLDate                      string  `json:"atl_date"`
	LastUpdated                  string  `json:"last_updated"`
}

// GlobalStats aggregates the whole market, in USD.
type GlobalStats struct {
	TotalMarketCap                  float64            `json:"totalMarketCap"`
	TotalVolume                     float64            `json:"totalVolume"`
	MarketCapPercentage             map[string]float64 `json:"marketCapPercentage"`
	ActiveCryptocurrencies          int                `json:"activeCryptocurrencies"`
	Markets                         int                `json:"markets"`
	MarketCapChangePercentage24hUSD float64            `json:"marketCapChangePercentage24hUsd"`
}

// ExchangeRateTable maps an ISO currency code to units of that currency per 1 USD.
type ExchangeRateTable map[string]float64

// PricePoint is one sample of a price history series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	MarketCap *float64  `json:"marketCap,omitempty"`
	Volume    *float64  `json:"volume,omitempty"`
}

// ListParams selects a page of the market-cap ranked list.
type ListParams struct {
	Limit      int
	Page       int
	VsCurrency string
}
