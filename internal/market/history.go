package market

import (
	"time"

	"cryptoconvert/pkg/coingecko"
)

// zipHistory joins the three parallel series by index. Market cap and volume
// are attached only when the provider sent those series at all; a row without
// both a timestamp and a value is skipped.
func zipHistory(chart *coingecko.MarketChart) []PricePoint {
	points := make([]PricePoint, 0, len(chart.Prices))
	withCaps := chart.MarketCaps != nil && chart.TotalVolumes != nil

	for i, row := range chart.Prices {
		if len(row) < 2 {
			continue
		}
		p := PricePoint{
			Timestamp: time.UnixMilli(int64(row[0])).UTC(),
			Price:     row[1],
		}
		if withCaps {
			p.MarketCap = valueAt(chart.MarketCaps, i)
			p.Volume = valueAt(chart.TotalVolumes, i)
		}
		points = append(points, p)
	}
	return points
}

func valueAt(series [][]float64, i int) *float64 {
	if i >= len(series) || len(series[i]) < 2 {
		return nil
	}
	v := series[i][1]
	return &v
}
