package api

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

func addRoutes(mux *http.ServeMux, h *Handler, prices http.Handler) {
	mux.HandleFunc("GET /api/cryptocurrencies", h.ListCryptocurrencies)
	mux.HandleFunc("GET /api/cryptocurrency/{id}", h.GetCryptocurrency)
	mux.HandleFunc("GET /api/market-data", h.MarketData)
	mux.HandleFunc("GET /api/exchange-rates", h.ExchangeRates)
	mux.HandleFunc("GET /api/price-history/{id}", h.PriceHistory)
	mux.HandleFunc("GET /api/search", h.Search)
	mux.HandleFunc("GET /api/convert", h.Convert)

	mux.HandleFunc("POST /api/contact", h.Contact)
	mux.HandleFunc("POST /api/newsletter/subscribe", h.Subscribe)
	mux.HandleFunc("POST /api/newsletter/unsubscribe", h.Unsubscribe)

	mux.HandleFunc("POST /api/affiliate/click", h.AffiliateClick)
	mux.HandleFunc("POST /api/affiliate/conversion", h.AffiliateConversion)
	mux.HandleFunc("GET /api/affiliate/partners", h.AffiliatePartners)
	mux.HandleFunc("GET /api/monetization/metrics", h.MonetizationMetrics)

	mux.HandleFunc("GET /healthz", h.Health)
	if prices != nil {
		mux.Handle("GET /ws/prices", prices)
	}
}

// NewServer builds the router. prices may be nil when streaming is disabled.
func NewServer(logger *zap.Logger, h *Handler, prices http.Handler) http.Handler {
	mux := http.NewServeMux()
	addRoutes(mux, h, prices)

	var handler http.Handler = mux
	handler = recoverPanics(logger, handler)
	handler = logRequests(logger, handler)
	return handler
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrade through the recorder.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func logRequests(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func recoverPanics(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.Error("panic serving request", zap.Any("panic", v), zap.String("path", r.URL.Path), zap.Stack("stack"))
				responder{logger: logger}.WriteResponse(w, http.StatusInternalServerError, Envelope{Error: "Internal Server Error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
