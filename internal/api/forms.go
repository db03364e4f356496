package api

import (
	"errors"
	"net/http"

	"cryptoconvert/internal/forms"
)

type contactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	FormType string `json:"formType"`
}

func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	_, err := h.forms.SubmitContact(r.Context(), forms.Contact{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		FormType:  req.FormType,
		IPAddress: ClientIP(r),
		UserAgent: r.UserAgent(),
		Source:    r.Referer(),
	})
	switch {
	case errors.Is(err, forms.ErrMissingFields):
		h.WriteError(w, r, WrapError(err, "Name, email, and message are required", http.StatusBadRequest))
		return
	case errors.Is(err, forms.ErrInvalidEmail):
		h.WriteError(w, r, WrapError(err, "Valid email is required", http.StatusBadRequest))
		return
	case err != nil:
		h.WriteError(w, r, WrapError(err, "Failed to send message", http.StatusInternalServerError))
		return
	}
	h.WriteResponse(w, http.StatusOK, okMessage("Your message has been sent successfully"))
}

type newsletterRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	_, err := h.forms.Subscribe(r.Context(), forms.Subscription{
		Email:     req.Email,
		Name:      req.Name,
		Source:    req.Source,
		IPAddress: ClientIP(r),
	})
	switch {
	case errors.Is(err, forms.ErrInvalidEmail):
		h.WriteError(w, r, WrapError(err, "Valid email is required", http.StatusBadRequest))
		return
	case errors.Is(err, forms.ErrAlreadySubscribed):
		h.WriteError(w, r, WrapError(err, "Email already subscribed", http.StatusConflict))
		return
	case err != nil:
		h.WriteError(w, r, WrapError(err, "Failed to subscribe", http.StatusInternalServerError))
		return
	}
	h.WriteResponse(w, http.StatusOK, okMessage("Successfully subscribed to newsletter"))
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	err := h.forms.Unsubscribe(r.Context(), req.Email)
	switch {
	case errors.Is(err, forms.ErrInvalidEmail):
		h.WriteError(w, r, WrapError(err, "Valid email is required", http.StatusBadRequest))
		return
	case errors.Is(err, forms.ErrNotSubscribed):
		h.WriteError(w, r, WrapError(err, "Email is not subscribed", http.StatusNotFound))
		return
	case err != nil:
		h.WriteError(w, r, WrapError(err, "Failed to unsubscribe", http.StatusInternalServerError))
		return
	}
	h.WriteResponse(w, http.StatusOK, okMessage("Successfully unsubscribed from newsletter"))
}
