package coingecko

// ChartInterval is the sampling interval accepted by /market_chart.
type ChartInterval string

const (
	IntervalHourly ChartInterval = "hourly"
	IntervalDaily  ChartInterval = "daily"
)

// dailyThresholdDays is the provider's boundary: ranges longer than this are
// only served at daily granularity.
const dailyThresholdDays = 30

// IntervalForDays picks the chart interval for a requested day range.
func IntervalForDays(days int) ChartInterval {
	if days > dailyThresholdDays {
		return IntervalDaily
	}
	return IntervalHourly
}

const (
	// DefaultVsCurrency is the quote currency used when none is given.
	DefaultVsCurrency = "usd"

	orderMarketCapDesc = "market_cap_desc"

	// SearchResultLimit caps how many search hits are expanded into quotes.
	SearchResultLimit = 10
)
