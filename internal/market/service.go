// Package market serves quotes, global statistics, exchange rates, price
// history and search results through the TTL cache.
//
// Every operation comes in two forms. FetchX returns a *FetchError on
// failure. X logs the failure and returns an empty value, which is what the
// HTTP layer and the price stream use.
package market

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"cryptoconvert/internal/cache"
	"cryptoconvert/pkg/coingecko"
	"cryptoconvert/pkg/exchangerate"
)

const (
	DefaultLimit       = 100
	DefaultPage        = 1
	DefaultHistoryDays = 7

	minSearchLength = 2
)

// CoinProvider is the subset of the CoinGecko client the service depends on.
type CoinProvider interface {
	Markets(ctx context.Context, params coingecko.MarketsParams) ([]coingecko.MarketCoin, error)
	Coin(ctx context.Context, id string) (*coingecko.CoinDetail, error)
	Global(ctx context.Context) (*coingecko.GlobalData, error)
	MarketChart(ctx context.Context, id, vsCurrency string, days int) (*coingecko.MarketChart, error)
	Search(ctx context.Context, query string) (*coingecko.SearchResponse, error)
}

type RateProvider interface {
	Latest(ctx context.Context) (*exchangerate.Response, error)
}

type Service struct {
	cache  *cache.Cache
	coins  CoinProvider
	rates  RateProvider
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock sets the clock used for fallback timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(c *cache.Cache, coins CoinProvider, rates RateProvider, opts ...Option) *Service {
	s := &Service{
		cache:  c,
		coins:  coins,
		rates:  rates,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CacheLen reports the number of cached entries, or -1 when unknown.
func (s *Service) CacheLen(ctx context.Context) int {
	return s.cache.Len(ctx)
}

func (p ListParams) normalize() ListParams {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	p.VsCurrency = strings.ToLower(strings.TrimSpace(p.VsCurrency))
	if p.VsCurrency == "" {
		p.VsCurrency = coingecko.DefaultVsCurrency
	}
	return p
}

// FetchQuotes returns one page of assets ordered by market cap.
func (s *Service) FetchQuotes(ctx context.Context, p ListParams) ([]Quote, error) {
	p = p.normalize()
	quotes, err := cache.Fetch(ctx, s.cache, listKey(p), func(ctx context.Context) ([]Quote, error) {
		coins, err := s.coins.Markets(ctx, coingecko.MarketsParams{
			VsCurrency:            p.VsCurrency,
			PerPage:               p.Limit,
			Page:                  p.Page,
			PriceChangePercentage: "24h",
		})
		if err != nil {
			return nil, newFetchError("quotes", err)
		}
		return quotesFromMarkets(coins), nil
	})
	if err != nil {
		return nil, err
	}
	if quotes == nil {
		quotes = []Quote{}
	}
	return quotes, nil
}

// FetchQuote returns the detailed quote for one asset id.
func (s *Service) FetchQuote(ctx context.Context, id string) (*Quote, error) {
	id = strings.TrimSpace(id)
	q, err := cache.Fetch(ctx, s.cache, quoteKey(id), func(ctx context.Context) (Quote, error) {
		detail, err := s.coins.Coin(ctx, id)
		if err != nil {
			return Quote{}, newFetchError("quote", err)
		}
		return quoteFromDetail(detail, s.now()), nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *Service) FetchGlobal(ctx context.Context) (*GlobalStats, error) {
	g, err := cache.Fetch(ctx, s.cache, globalKey, func(ctx context.Context) (GlobalStats, error) {
		data, err := s.coins.Global(ctx)
		if err != nil {
			return GlobalStats{}, newFetchError("global", err)
		}
		return globalFromData(data), nil
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// FetchRates returns units of each currency per 1 USD.
func (s *Service) FetchRates(ctx context.Context) (ExchangeRateTable, error) {
	table, err := cache.Fetch(ctx, s.cache, ratesKey, func(ctx context.Context) (ExchangeRateTable, error) {
		resp, err := s.rates.Latest(ctx)
		if err != nil {
			return nil, newFetchError("rates", err)
		}
		table := make(ExchangeRateTable, len(resp.Rates))
		for code, rate := range resp.Rates {
			table[code] = rate
		}
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	if table == nil {
		table = ExchangeRateTable{}
	}
	return table, nil
}

// FetchHistory returns the price series of id over the last days days.
func (s *Service) FetchHistory(ctx context.Context, id string, days int, vsCurrency string) ([]PricePoint, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	vsCurrency = strings.ToLower(strings.TrimSpace(vsCurrency))
	if vsCurrency == "" {
		vsCurrency = coingecko.DefaultVsCurrency
	}

	points, err := cache.Fetch(ctx, s.cache, historyKey(id, days, vsCurrency), func(ctx context.Context) ([]PricePoint, error) {
		chart, err := s.coins.MarketChart(ctx, id, vsCurrency, days)
		if err != nil {
			return nil, newFetchError("history", err)
		}
		return zipHistory(chart), nil
	})
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []PricePoint{}
	}
	return points, nil
}

// FetchSearch resolves a free-text query to full quotes. Queries shorter than
// two characters and searches without hits return an empty list and are not
// cached.
func (s *Service) FetchSearch(ctx context.Context, query string) ([]Quote, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchLength {
		return []Quote{}, nil
	}

	key := searchKey(query)
	var cached []Quote
	if s.cache.Get(ctx, key, &cached) {
		if cached == nil {
			cached = []Quote{}
		}
		return cached, nil
	}

	resp, err := s.coins.Search(ctx, query)
	if err != nil {
		return nil, newFetchError("search", err)
	}

	ids := make([]string, 0, coingecko.SearchResultLimit)
	for _, c := range resp.Coins {
		if len(ids) == coingecko.SearchResultLimit {
			break
		}
		ids = append(ids, c.ID)
	}
	if len(ids) == 0 {
		return []Quote{}, nil
	}

	coins, err := s.coins.Markets(ctx, coingecko.MarketsParams{
		VsCurrency: coingecko.DefaultVsCurrency,
		IDs:        ids,
	})
	if err != nil {
		return nil, newFetchError("search", err)
	}

	quotes := quotesFromMarkets(coins)
	if err := s.cache.Set(ctx, key, quotes); err != nil {
		s.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
	return quotes, nil
}

func (s *Service) warn(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	s.logger.Warn("market data unavailable", fields...)
}

// Quotes is FetchQuotes that returns an empty list on failure.
func (s *Service) Quotes(ctx context.Context, p ListParams) []Quote {
	quotes, err := s.FetchQuotes(ctx, p)
	if err != nil {
		s.warn("quotes", err)
		return []Quote{}
	}
	return quotes
}

// Quote is FetchQuote that returns nil on failure.
func (s *Service) Quote(ctx context.Context, id string) *Quote {
	q, err := s.FetchQuote(ctx, id)
	if err != nil {
		s.warn("quote", err, zap.String("id", id))
		return nil
	}
	return q
}

func (s *Service) Global(ctx context.Context) *GlobalStats {
	g, err := s.FetchGlobal(ctx)
	if err != nil {
		s.warn("global", err)
		return nil
	}
	return g
}

// Rates is FetchRates that returns an empty table on failure.
func (s *Service) Rates(ctx context.Context) ExchangeRateTable {
	table, err := s.FetchRates(ctx)
	if err != nil {
		s.warn("rates", err)
		return ExchangeRateTable{}
	}
	return table
}

func (s *Service) History(ctx context.Context, id string, days int, vsCurrency string) []PricePoint {
	points, err := s.FetchHistory(ctx, id, days, vsCurrency)
	if err != nil {
		s.warn("history", err, zap.String("id", id), zap.Int("days", days))
		return []PricePoint{}
	}
	return points
}

func (s *Service) Search(ctx context.Context, query string) []Quote {
	quotes, err := s.FetchSearch(ctx, query)
	if err != nil {
		s.warn("search", err, zap.String("query", query))
		return []Quote{}
	}
	return quotes
}
