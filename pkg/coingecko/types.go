package coingecko

// MarketCoin is one row of /coins/markets. Nullable provider fields decode to
// their zero value.
type MarketCoin struct {
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

// CurrencyValues maps a vs-currency code ("usd", "eur") to a value.
type CurrencyValues map[string]float64

// CurrencyDates maps a vs-currency code to an ISO-8601 timestamp.
type CurrencyDates map[string]string

// CoinDetail is the /coins/{id} payload, restricted to the fields we remap.
type CoinDetail struct {
	ID          string      `json:"id"`
	Symbol      string      `json:"symbol"`
	Name        string      `json:"name"`
	Image       CoinImage   `json:"image"`
	MarketData  *MarketData `json:"market_data"`
	LastUpdated string      `json:"last_updated"`
}

type CoinImage struct {
	Thumb string `json:"thumb"`
	Small string `json:"small"`
	Large string `json:"large"`
}

type MarketData struct {
	CurrentPrice                 CurrencyValues `json:"current_price"`
	MarketCap                    CurrencyValues `json:"market_cap"`
	MarketCapRank                int            `json:"market_cap_rank"`
	FullyDilutedValuation        CurrencyValues `json:"fully_diluted_valuation"`
	TotalVolume                  CurrencyValues `json:"total_volume"`
	High24h                      CurrencyValues `json:"high_24h"`
	Low24h                       CurrencyValues `json:"low_24h"`
	PriceChange24h               float64        `json:"price_change_24h"`
	PriceChangePercentage24h     float64        `json:"price_change_percentage_24h"`
	MarketCapChange24h           float64        `json:"market_cap_change_24h"`
	MarketCapChangePercentage24h float64        `json:"market_cap_change_percentage_24h"`
	CirculatingSupply            float64        `json:"circulating_supply"`
	TotalSupply                  float64        `json:"total_supply"`
	MaxSupply                    float64        `json:"max_supply"`
	ATH                          CurrencyValues `json:"ath"`
	ATHChangePercentage          CurrencyValues `json:"ath_change_percentage"`
	ATHDate                      CurrencyDates  `json:"ath_date"`
	ATL                          CurrencyValues `json:"atl"`
	ATLChangePercentage          CurrencyValues `json:"atl_change_percentage"`
	ATLDate                      CurrencyDates  `json:"atl_date"`
}

// GlobalResponse wraps /global.
type GlobalResponse struct {
	Data GlobalData `json:"data"`
}

type GlobalData struct {
	ActiveCryptocurrencies          int            `json:"active_cryptocurrencies"`
	Markets                         int            `json:"markets"`
	TotalMarketCap                  CurrencyValues `json:"total_market_cap"`
	TotalVolume                     CurrencyValues `json:"total_volume"`
	MarketCapPercentage             CurrencyValues `json:"market_cap_percentage"`
	MarketCapChangePercentage24hUSD float64        `json:"market_cap_change_percentage_24h_usd"`
}

// MarketChart is the /coins/{id}/market_chart payload: three parallel series of
// [timestamp ms, value] pairs.
type MarketChart struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// SearchResponse wraps /search; only coin hits are used.
type SearchResponse struct {
	Coins []SearchCoin `json:"coins"`
}

type SearchCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
}
