package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("requested resource not found")
	ErrInvalidInput  = errors.New("invalid input provided")
	ErrInternalError = errors.New("internal server error")
)

// AppError carries the HTTP status and the user-facing message for a failure.
// Err is only logged.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func WrapError(err error, message string, code int) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

func okCount(data any, n int) Envelope {
	return Envelope{Success: true, Data: data, Count: &n}
}

func okMessage(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

type responder struct {
	logger *zap.Logger
}

func (rs responder) WriteResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		rs.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

func (rs responder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = WrapError(err, "Internal Server Error", http.StatusInternalServerError)
	}

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", appErr.Code),
		zap.String("message", appErr.Message),
		zap.Error(appErr.Err),
	}
	if appErr.Code >= http.StatusInternalServerError {
		rs.logger.Error("request failed", fields...)
	} else {
		rs.logger.Debug("request rejected", fields...)
	}

	rs.WriteResponse(w, appErr.Code, Envelope{Success: false, Error: appErr.Message})
}
