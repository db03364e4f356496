package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrDecode marks a response body that could not be parsed.
var ErrDecode = errors.New("decode response")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("coingecko error: HTTP %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

type Option func(*Client)

// WithAPIKey sends the key as x-cg-demo-api-key on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// MarketsParams are the /coins/markets query parameters. Zero values are omitted.
type MarketsParams struct {
	VsCurrency            string
	IDs                   []string
	PerPage               int
	Page                  int
	PriceChangePercentage string
}

func (p MarketsParams) values() url.Values {
	q := url.Values{}
	vs := p.VsCurrency
	if vs == "" {
		vs = DefaultVsCurrency
	}
	q.Set("vs_currency", vs)
	if len(p.IDs) > 0 {
		q.Set("ids", strings.Join(p.IDs, ","))
	}
	q.Set("order", orderMarketCapDesc)
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	q.Set("sparkline", "false")
	if p.PriceChangePercentage != "" {
		q.Set("price_change_percentage", p.PriceChangePercentage)
	}
	return q
}

// Markets lists coins sorted by market capitalisation, descending.
func (c *Client) Markets(ctx context.Context, params MarketsParams) ([]MarketCoin, error) {
	var coins []MarketCoin
	if err := c.get(ctx, "/coins/markets", params.values(), &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// Coin fetches a single coin with market data only.
func (c *Client) Coin(ctx context.Context, id string) (*CoinDetail, error) {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("market_data", "true")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")
	q.Set("sparkline", "false")

	var detail CoinDetail
	if err := c.get(ctx, "/coins/"+url.PathEscape(id), q, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Global fetches aggregate market statistics.
func (c *Client) Global(ctx context.Context) (*GlobalData, error) {
	var resp GlobalResponse
	if err := c.get(ctx, "/global", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// MarketChart fetches historical price, market cap and volume series.
func (c *Client) MarketChart(ctx context.Context, id, vsCurrency string, days int) (*MarketChart, error) {
	if vsCurrency == "" {
		vsCurrency = DefaultVsCurrency
	}
	q := url.Values{}
	q.Set("vs_currency", vsCurrency)
	q.Set("days", strconv.Itoa(days))
	q.Set("interval", string(IntervalForDays(days)))

	var chart MarketChart
	if err := c.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", q, &chart); err != nil {
		return nil, err
	}
	return &chart, nil
}

// Search runs the provider's free-text search.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("query", query)

	var resp SearchResponse
	if err := c.get(ctx, "/search", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}
