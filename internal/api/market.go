package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"cryptoconvert/internal/convert"
	"cryptoconvert/internal/market"
)

const (
	maxListLimit   = 250
	maxHistoryDays = 365
)

func (h *Handler) ListCryptocurrencies(w http.ResponseWriter, r *http.Request) {
	quotes := h.market.Quotes(r.Context(), market.ListParams{
		Limit:      queryInt(r, "limit", market.DefaultLimit, maxListLimit),
		Page:       queryInt(r, "page", market.DefaultPage, 0),
		VsCurrency: r.URL.Query().Get("vs_currency"),
	})
	h.WriteResponse(w, http.StatusOK, okCount(quotes, len(quotes)))
}

func (h *Handler) GetCryptocurrency(w http.ResponseWriter, r *http.Request) {
	q := h.market.Quote(r.Context(), r.PathValue("id"))
	if q == nil {
		h.WriteError(w, r, WrapError(ErrNotFound, "Cryptocurrency not found", http.StatusNotFound))
		return
	}
	h.WriteResponse(w, http.StatusOK, ok(q))
}

func (h *Handler) MarketData(w http.ResponseWriter, r *http.Request) {
	h.WriteResponse(w, http.StatusOK, Envelope{Success: true, Data: h.market.Global(r.Context())})
}

func (h *Handler) ExchangeRates(w http.ResponseWriter, r *http.Request) {
	h.WriteResponse(w, http.StatusOK, ok(h.market.Rates(r.Context())))
}

func (h *Handler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	points := h.market.History(r.Context(),
		r.PathValue("id"),
		queryInt(r, "days", market.DefaultHistoryDays, maxHistoryDays),
		r.URL.Query().Get("vs_currency"),
	)
	h.WriteResponse(w, http.StatusOK, okCount(points, len(points)))
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	quotes := h.market.Search(r.Context(), r.URL.Query().Get("q"))
	h.WriteResponse(w, http.StatusOK, okCount(quotes, len(quotes)))
}

func kindParam(raw string, def convert.Kind) convert.Kind {
	if raw == "" {
		return def
	}
	return convert.Kind(strings.ToLower(raw))
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount := 1.0
	if raw := q.Get("amount"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.WriteError(w, r, WrapError(err, "amount must be a number", http.StatusBadRequest))
			return
		}
		amount = v
	}

	res, err := h.market.Convert(r.Context(), market.ConvertRequest{
		Amount:   amount,
		From:     q.Get("from"),
		FromKind: kindParam(q.Get("from_type"), convert.KindCrypto),
		To:       q.Get("to"),
		ToKind:   kindParam(q.Get("to_type"), convert.KindFiat),
		Locale:   q.Get("locale"),
	})
	switch {
	case errors.Is(err, market.ErrInvalidAmount), errors.Is(err, market.ErrInvalidKind), errors.Is(err, market.ErrMissingAsset):
		h.WriteError(w, r, WrapError(err, err.Error(), http.StatusBadRequest))
		return
	case err != nil:
		h.WriteError(w, r, err)
		return
	}
	h.WriteResponse(w, http.StatusOK, ok(res))
}
