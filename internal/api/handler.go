// Package api exposes the market, form and affiliate services over HTTP.
package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"cryptoconvert/internal/affiliate"
	"cryptoconvert/internal/forms"
	"cryptoconvert/internal/market"
	"cryptoconvert/pkg/storage/postgres"
)

type MarketService interface {
	Quotes(ctx context.Context, p market.ListParams) []market.Quote
	Quote(ctx context.Context, id string) *market.Quote
	Global(ctx context.Context) *market.GlobalStats
	Rates(ctx context.Context) market.ExchangeRateTable
	History(ctx context.Context, id string, days int, vsCurrency string) []market.PricePoint
	Search(ctx context.Context, query string) []market.Quote
	Convert(ctx context.Context, req market.ConvertRequest) (*market.ConvertResult, error)
	CacheLen(ctx context.Context) int
}

type FormService interface {
	SubmitContact(ctx context.Context, c forms.Contact) (*postgres.ContactSubmission, error)
	Subscribe(ctx context.Context, in forms.Subscription) (bool, error)
	Unsubscribe(ctx context.Context, email string) error
}

type AffiliateService interface {
	RecordClick(ctx context.Context, c affiliate.Click) (*affiliate.ClickResult, error)
	RecordConversion(ctx context.Context, c affiliate.Conversion) (*postgres.AffiliateConversion, error)
	Partners(ctx context.Context, f postgres.PartnerFilter) ([]postgres.AffiliatePartner, error)
	Metrics(ctx context.Context, days int) (*affiliate.Metrics, error)
}

type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

type Handler struct {
	responder
	market    MarketService
	forms     FormService
	affiliate AffiliateService
	db        HealthChecker
}

func NewHandler(logger *zap.Logger, m MarketService, f FormService, a AffiliateService, db HealthChecker) *Handler {
	return &Handler{
		responder: responder{logger: logger},
		market:    m,
		forms:     f,
		affiliate: a,
		db:        db,
	}
}

type health struct {
	Database     string `json:"database"`
	CacheEntries int    `json:"cacheEntries"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := health{Database: "ok", CacheEntries: h.market.CacheLen(r.Context())}
	code := http.StatusOK
	if !h.db.IsHealthy(r.Context()) {
		status.Database = "unavailable"
		code = http.StatusServiceUnavailable
	}
	h.WriteResponse(w, code, Envelope{Success: code == http.StatusOK, Data: status})
}
