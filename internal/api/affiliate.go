package api

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"cryptoconvert/internal/affiliate"
	"cryptoconvert/pkg/storage/postgres"
)

type clickRequest struct {
	LinkID    string `json:"linkId"`
	SessionID string `json:"sessionId"`
}

func (h *Handler) AffiliateClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	res, err := h.affiliate.RecordClick(r.Context(), affiliate.Click{
		LinkID:    req.LinkID,
		SessionID: req.SessionID,
		IPAddress: ClientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	})
	switch {
	case errors.Is(err, affiliate.ErrLinkRequired):
		h.WriteError(w, r, WrapError(err, "Link ID is required", http.StatusBadRequest))
		return
	case errors.Is(err, affiliate.ErrLinkNotFound):
		h.WriteError(w, r, WrapError(err, "Invalid or inactive link", http.StatusNotFound))
		return
	case err != nil:
		h.WriteError(w, r, WrapError(err, "Failed to track click", http.StatusInternalServerError))
		return
	}
	h.WriteResponse(w, http.StatusOK, ok(res))
}

type conversionRequest struct {
	PartnerID  string          `json:"partnerId"`
	ClickID    string          `json:"clickId"`
	SessionID  string          `json:"sessionId"`
	Commission decimal.Decimal `json:"commission"`
	Status     string          `json:"status"`
}

func (h *Handler) AffiliateConversion(w http.ResponseWriter, r *http.Request) {
	var req conversionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	conv, err := h.affiliate.RecordConversion(r.Context(), affiliate.Conversion{
		PartnerID:  req.PartnerID,
		ClickID:    req.ClickID,
		SessionID:  req.SessionID,
		Commission: req.Commission,
		Status:     req.Status,
	})
	switch {
	case errors.Is(err, affiliate.ErrPartnerNotFound):
		h.WriteError(w, r, WrapError(err, "Partner not found", http.StatusNotFound))
		return
	case errors.Is(err, affiliate.ErrInvalidClickID), errors.Is(err, affiliate.ErrInvalidCommission), errors.Is(err, affiliate.ErrInvalidStatus):
		h.WriteError(w, r, WrapError(err, err.Error(), http.StatusBadRequest))
		return
	case err != nil:
		h.WriteError(w, r, WrapError(err, "Failed to record conversion", http.StatusInternalServerError))
		return
	}
	h.WriteResponse(w, http.StatusCreated, ok(conv))
}

func (h *Handler) AffiliatePartners(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	partners, err := h.affiliate.Partners(r.Context(), postgres.PartnerFilter{
		Category:    q.Get("category"),
		Placement:   q.Get("placement"),
		PageContext: q.Get("pageContext"),
		Limit:       queryInt(r, "limit", affiliate.DefaultPartnerLimit, 100),
	})
	if err != nil {
		h.WriteError(w, r, WrapError(err, "Failed to fetch affiliate partners", http.StatusInternalServerError))
		return
	}
	h.WriteResponse(w, http.StatusOK, okCount(partners, len(partners)))
}

func (h *Handler) MonetizationMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.affiliate.Metrics(r.Context(), queryInt(r, "days", affiliate.DefaultMetricsDays, 3650))
	if err != nil {
		h.WriteError(w, r, WrapError(err, "Failed to fetch metrics", http.StatusInternalServerError))
		return
	}
	h.WriteResponse(w, http.StatusOK, ok(m))
}
