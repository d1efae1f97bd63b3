package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// ErrorCode is the machine-readable "code" of an error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeProductNotFound  ErrorCode = "product_not_found"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeSearchFailed     ErrorCode = "search_failed"
	CodeInternalError    ErrorCode = "internal_error"
	CodeNotFound         ErrorCode = "not_found"
	CodeMethodNotAllowed ErrorCode = "method_not_allowed"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, CodeProductNotFound, "Product not found"),
		sentinelHandler(domain.ErrSearchFailed, http.StatusInternalServerError, CodeSearchFailed, "Failed to search products"),
	}
}

// sentinelHandler matches a single sentinel error. An empty message falls back to the sentinel text.
func sentinelHandler(sentinel error, status int, code ErrorCode, message string) errorHandler {
	if message == "" {
		message = sentinel.Error()
	}
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, message)
		return true
	}
}

// validationHandler exposes the validation detail; validation messages carry no internals.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidProduct) && !errors.Is(err, domain.ErrInvalidQuery) {
		return false
	}
	writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
