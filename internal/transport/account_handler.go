package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SignupRequest represents the signup request payload
type SignupRequest struct {
	FName    string `json:"fname"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateAccountRequest is the set of account fields an admin may change
type UpdateAccountRequest struct {
	FName      *string           `json:"fname"`
	Email      *string           `json:"email"`
	Password   *string           `json:"password" validate:"omitempty,min=1"`
	Role       *string           `json:"role" validate:"omitempty,oneof=admin user"`
	IsDisabled *domain.LooseBool `json:"isDisabled"`
}

// SignupResponse confirms a new account
type SignupResponse struct {
	Message string          `json:"message"`
	User    *domain.Account `json:"user"`
}

// ToggleResponse reports the disabled flag after a toggle
type ToggleResponse struct {
	ID         string `json:"id"`
	IsDisabled bool   `json:"isDisabled"`
}

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accounts service.AccountService
	logger   *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// RegisterRoutes registers the public, authenticated and admin account routes
func (h *AccountHandler) RegisterRoutes(r chi.Router, rateLimit, auth, admin func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimit)
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/me", h.Me)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth, admin)
			r.Get("/", h.ListUsers)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.ToggleUser)
		})
	})
}

// Signup handles account creation
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Signup validation failed", zap.Error(err))
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	account, err := h.accounts.Signup(r.Context(), req.FName, req.Email, req.Password)
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("Account created", zap.String("user_id", account.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, SignupResponse{
		Message: "account created",
		User:    account,
	})
}

// Login handles authentication
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("User logged in", zap.String("user_id", result.Account.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// Me returns the caller's own account
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), userID)
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, account)
}

// ListUsers returns every account, disabled ones included
func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, accounts)
}

// UpdateUser applies an admin edit to an account
func (h *AccountHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	account, err := h.accounts.UpdateAccount(r.Context(), id, service.AccountUpdate{
		FName:      req.FName,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		IsDisabled: req.IsDisabled,
	})
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	if admin, ok := middleware.GetAccount(r.Context()); ok {
		h.logger.Info("Account updated",
			zap.String("user_id", account.ID.String()),
			zap.String("by", admin.ID.String()),
		)
	}
	middleware.RespondWithJSON(w, http.StatusOK, account)
}

// ToggleUser flips an account between enabled and disabled
func (h *AccountHandler) ToggleUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	disabled, err := h.accounts.ToggleDisabled(r.Context(), id)
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ToggleResponse{
		ID:         id.String(),
		IsDisabled: disabled,
	})
}
