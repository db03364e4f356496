package market

import (
	"time"

	"cryptoconvert/pkg/coingecko"
)

const usd = "usd"

func quoteFromMarket(c coingecko.MarketCoin) Quote {
	return Quote{
		ID:                           c.ID,
		Symbol:                       c.Symbol,
		Name:                         c.Name,
		Image:                        c.Image,
		CurrentPrice:                 c.CurrentPrice,
		MarketCap:                    c.MarketCap,
		MarketCapRank:                c.MarketCapRank,
		FullyDilutedValuation:        c.FullyDilutedValuation,
		TotalVolume:                  c.TotalVolume,
		High24h:                      c.High24h,
		Low24h:                       c.Low24h,
		PriceChange24h:               c.PriceChange24h,
		PriceChangePercentage24h:     c.PriceChangePercentage24h,
		MarketCapChange24h:           c.MarketCapChange24h,
		MarketCapChangePercentage24h: c.MarketCapChangePercentage24h,
		CirculatingSupply:            c.CirculatingSupply,
		TotalSupply:                  c.TotalSupply,
		MaxSupply:                    c.MaxSupply,
		ATH:                          c.ATH,
		ATHChangePercentage:          c.ATHChangePercentage,
		ATHDate:                      c.ATHDate,
		ATL:                          c.ATL,
		ATLChangePercentage:          c.ATLChangePercentage,
		ATLDate:                      c.ATLDate,
		LastUpdated:                  c.LastUpdated,
	}
}

func quotesFromMarkets(coins []coingecko.MarketCoin) []Quote {
	quotes := make([]Quote, 0, len(coins))
	for _, c := range coins {
		quotes = append(quotes, quoteFromMarket(c))
	}
	return quotes
}

// quoteFromDetail flattens the nested single-coin payload onto Quote, reading
// the USD entry of every per-currency map. Absent fields stay zero.
func quoteFromDetail(d *coingecko.CoinDetail, now time.Time) Quote {
	q := Quote{
		ID:          d.ID,
		Symbol:      d.Symbol,
		Name:        d.Name,
		Image:       d.Image.Large,
		LastUpdated: d.LastUpdated,
	}
	if q.Image == "" {
		q.Image = d.Image.Small
	}
	if q.LastUpdated == "" {
		q.LastUpdated = now.UTC().Format(time.RFC3339)
	}

	md := d.MarketData
	if md == nil {
		return q
	}
	q.CurrentPrice = md.CurrentPrice[usd]
	q.MarketCap = md.MarketCap[usd]
	q.MarketCapRank = md.MarketCapRank
	q.FullyDilutedValuation = md.FullyDilutedValuation[usd]
	q.TotalVolume = md.TotalVolume[usd]
	q.High24h = md.High24h[usd]
	q.Low24h = md.Low24h[usd]
	q.PriceChange24h = md.PriceChange24h
	q.PriceChangePercentage24h = md.PriceChangePercentage24h
	q.MarketCapChange24h = md.MarketCapChange24h
	q.MarketCapChangePercentage24h = md.MarketCapChangePercentage24h
	q.CirculatingSupply = md.CirculatingSupply
	q.TotalSupply = md.TotalSupply
	q.MaxSupply = md.MaxSupply
	q.ATH = md.ATH[usd]
	q.ATHChangePercentage = md.ATHChangePercentage[usd]
	q.ATHDate = md.ATHDate[usd]
	q.ATL = md.ATL[usd]
	q.ATLChangePercentage = md.ATLChangePercentage[usd]
	q.ATLDate = md.ATLDate[usd]
	return q
}

func globalFromData(d *coingecko.GlobalData) GlobalStats {
	pct := make(map[string]float64, len(d.MarketCapPercentage))
	for k, v := range d.MarketCapPercentage {
		pct[k] = v
	}
	return GlobalStats{
		TotalMarketCap:                  d.TotalMarketCap[usd],
		TotalVolume:                     d.TotalVolume[usd],
		MarketCapPercentage:             pct,
		ActiveCryptocurrencies:          d.ActiveCryptocurrencies,
		Markets:                         d.Markets,
		MarketCapChangePercentage24hUSD: d.MarketCapChangePercentage24hUSD,
	}
}
