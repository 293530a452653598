package middleware

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountResolver loads the account behind an authenticated request
type AccountResolver interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// RequireAdmin ensures the caller's stored account is enabled and has the
// admin role. The role claimed by the token is not trusted.
func RequireAdmin(accounts AccountResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				logger.Warn("User ID not found in context")
				RespondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			account, err := accounts.GetAccount(r.Context(), userID)
			if err != nil {
				if errors.Is(err, service.ErrNotFound) {
					RespondWithError(w, http.StatusUnauthorized, "account no longer exists")
					return
				}
				logger.Error("Failed to resolve account", zap.Error(err))
				RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if account.IsDisabled {
				logger.Warn("Disabled account attempted to access admin endpoint",
					zap.String("user_id", userID.String()),
				)
				RespondWithError(w, http.StatusForbidden, "account is disabled")
				return
			}

			if !account.IsAdmin() {
				claimed, _ := GetUserRole(r.Context())
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("user_id", userID.String()),
					zap.String("role", account.Role),
					zap.String("claimed_role", claimed),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), AccountKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAccount returns the account resolved by RequireAdmin
func GetAccount(ctx context.Context) (*domain.Account, bool) {
	account, ok := ctx.Value(AccountKey).(*domain.Account)
	return account, ok
}
