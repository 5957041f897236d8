package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/kanap/cart-service/internal/catalog"
	"github.com/fjod/kanap/cart-service/internal/domain"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps service errors to HTTP status codes.
func handleError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		httpStatus int
		code       string
		message    string
	)

	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		httpStatus, code, message = http.StatusNotFound, "not_found", "product not found"
	case errors.Is(err, domain.ErrEmptyCart):
		httpStatus, code, message = http.StatusConflict, "empty_cart", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code, message = http.StatusGatewayTimeout, "timeout", "request timed out"
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		httpStatus, code, message = http.StatusServiceUnavailable, "service_unavailable", "catalog unavailable"
	default:
		httpStatus, code, message = http.StatusInternalServerError, "internal_error", "internal server error"
	}

	if httpStatus >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("code", code), zap.Error(err))
	}
	respondError(w, httpStatus, code, message)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
