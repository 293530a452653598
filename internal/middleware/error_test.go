package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

// Feature: storefront, Property 11: Errors have consistent structure
func TestProperty_ErrorsHaveConsistentStructure(t *testing.T) {
	properties := gopter.NewProperties(nil)

	standardCodes := []int{
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusConflict,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
	}

	properties.Property("all error responses share one envelope", prop.ForAll(
		func(message string, index int) bool {
			statusCode := standardCodes[index]

			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, message)

			if w.Code != statusCode || w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			if response.Error.Code != http.StatusText(statusCode) || response.Error.Message != message {
				return false
			}

			_, err := time.Parse(time.RFC3339, response.Error.Timestamp)
			return err == nil
		},
		gen.AlphaString(),
		gen.IntRange(0, len(standardCodes)-1),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&service.ValidationError{Fields: []service.FieldError{{Field: "name", Message: "required"}}}, http.StatusBadRequest},
		{service.ErrDuplicateName, http.StatusConflict},
		{service.ErrCategoryInUse, http.StatusConflict},
		{fmt.Errorf("%w: %w", service.ErrNotFound, repository.ErrProductNotFound), http.StatusNotFound},
		{service.ErrDisabled, http.StatusForbidden},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrInternal, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var response ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid error body %q: %v", w.Body.String(), err)
	}
	return response.Error
}

func TestRespondWithServiceError(t *testing.T) {
	t.Run("not found names the entity", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondWithServiceError(w, fmt.Errorf("%w: %w", service.ErrNotFound, repository.ErrCategoryNotFound), zap.NewNop())

		detail := decodeError(t, w)
		if w.Code != http.StatusNotFound || detail.Message != "category not found" {
			t.Fatalf("got %d %q", w.Code, detail.Message)
		}
	})

	t.Run("validation lists fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := &service.ValidationError{Fields: []service.FieldError{{Field: "images", Message: "too many"}}}
		RespondWithServiceError(w, err, zap.NewNop())

		detail := decodeError(t, w)
		if w.Code != http.StatusBadRequest || detail.Details["validation_errors"] == nil {
			t.Fatalf("got %d %+v", w.Code, detail)
		}
	})

	t.Run("internal errors hide detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondWithServiceError(w, errors.New("pq: relation does not exist"), zap.NewNop())

		detail := decodeError(t, w)
		if w.Code != http.StatusInternalServerError || contains(detail.Message, "relation") {
			t.Fatalf("got %d %q", w.Code, detail.Message)
		}
	})
}

func TestErrorHandlingMiddlewareRecoversPanics(t *testing.T) {
	handler := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
