package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"storefront/internal/service"

	"go.uber.org/zap"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithErrorDetails(w, statusCode, message, nil)
}

func respondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      http.StatusText(statusCode),
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	json.NewEncoder(w).Encode(response)
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, fields []service.FieldError) {
	details := map[string]interface{}{
		"validation_errors": fields,
	}
	respondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
}

// StatusFor maps a service error kind to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateName), errors.Is(err, service.ErrCategoryInUse):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDisabled):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithServiceError writes the response for an error returned by a
// service. Unclassified errors are logged and reported without detail.
func RespondWithServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		RespondWithValidationErrors(w, verr.Fields)
		return
	}

	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		if !errors.Is(err, service.ErrInternal) {
			logger.Error("Unhandled service error", zap.Error(err))
		}
		RespondWithError(w, status, "internal server error")
		return
	}

	RespondWithError(w, status, publicMessage(err))
}

// publicMessage prefers the most specific wrapped error, so a not found
// error reads "product not found" rather than the generic kind.
func publicMessage(err error) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if inner := joined.Unwrap(); len(inner) > 0 {
			return inner[len(inner)-1].Error()
		}
	}
	return err.Error()
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("Panic recovered",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
