package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoginResult is returned by a successful login
type LoginResult struct {
	Role        string          `json:"role"`
	Account     *domain.Account `json:"user"`
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// AccountUpdate holds the fields an account update may change. Nil fields
// keep their stored value.
type AccountUpdate struct {
	FName      *string           `json:"fname"`
	Email      *string           `json:"email"`
	Password   *string           `json:"password"`
	Role       *string           `json:"role"`
	IsDisabled *domain.LooseBool `json:"isDisabled"`
}

// AccountService defines the interface for account business logic
type AccountService interface {
	Signup(ctx context.Context, fname, email, password string) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, update AccountUpdate) (*domain.Account, error)
	ToggleDisabled(ctx context.Context, id uuid.UUID) (bool, error)
	Promote(ctx context.Context, email string) (*domain.Account, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type accountService struct {
	accountRepo repository.AccountRepository
	verifier    CredentialVerifier
	tokens      *TokenIssuer
	logger      *zap.Logger
}

// NewAccountService creates a new instance of AccountService
func NewAccountService(
	accountRepo repository.AccountRepository,
	verifier CredentialVerifier,
	tokens *TokenIssuer,
	logger *zap.Logger,
) AccountService {
	return &accountService{
		accountRepo: accountRepo,
		verifier:    verifier,
		tokens:      tokens,
		logger:      logger,
	}
}

// Signup creates an enabled account with the user role. Email addresses
// are not required to be unique and are not checked against existing
// accounts.
func (s *accountService) Signup(ctx context.Context, fname, email, password string) (*domain.Account, error) {
	sealed, err := s.seal("signup.seal", password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	account := &domain.Account{
		ID:         uuid.New(),
		FName:      fname,
		Email:      email,
		Password:   sealed,
		Role:       domain.RoleUser,
		IsDisabled: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, internal(s.logger, "signup.create", err)
	}

	return account, nil
}

// Login authenticates an account. Checks run in a fixed order: unknown
// email, then disabled account, then credential mismatch.
func (s *accountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, notFound(err)
		}
		return nil, internal(s.logger, "login.find", err)
	}

	if account.IsDisabled {
		return nil, ErrDisabled
	}

	if !s.verifier.Verify(account.Password, password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		return nil, internal(s.logger, "login.issue_token", err)
	}

	return &LoginResult{
		Role:        account.Role,
		Account:     account,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// ListAccounts returns every account, disabled ones included
func (s *accountService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, internal(s.logger, "list_accounts", err)
	}
	return accounts, nil
}

// GetAccount returns an account by ID
func (s *accountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, notFound(err)
		}
		return nil, internal(s.logger, "get_account", err)
	}
	return account, nil
}

// UpdateAccount applies the supplied fields to an account
func (s *accountService) UpdateAccount(ctx context.Context, id uuid.UUID, update AccountUpdate) (*domain.Account, error) {
	verr := &ValidationError{}
	if update.Role != nil && !domain.ValidRole(*update.Role) {
		verr.add("role", "role must be admin or user")
	}
	if update.Password != nil && *update.Password == "" {
		verr.add("password", "password must not be empty")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.FName != nil {
		account.FName = *update.FName
	}
	if update.Email != nil {
		account.Email = *update.Email
	}
	if update.Password != nil {
		sealed, err := s.seal("update_account.seal", *update.Password)
		if err != nil {
			return nil, err
		}
		account.Password = sealed
	}
	if update.Role != nil {
		account.Role = *update.Role
	}
	if update.IsDisabled != nil {
		account.IsDisabled = update.IsDisabled.Bool()
	}
	account.UpdatedAt = time.Now()

	if err := s.accountRepo.Update(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, notFound(err)
		}
		return nil, internal(s.logger, "update_account", err)
	}

	return account, nil
}

// ToggleDisabled flips the disabled flag and returns the new value
func (s *accountService) ToggleDisabled(ctx context.Context, id uuid.UUID) (bool, error) {
	disabled, err := s.accountRepo.ToggleDisabled(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return false, notFound(err)
		}
		return false, internal(s.logger, "toggle_disabled", err)
	}

	s.logger.Info("Account disabled flag toggled",
		zap.String("account_id", id.String()),
		zap.Bool("disabled", disabled),
	)

	return disabled, nil
}

// Promote grants the admin role to the account registered under email
func (s *accountService) Promote(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, notFound(err)
		}
		return nil, internal(s.logger, "promote.find", err)
	}

	role := domain.RoleAdmin
	return s.UpdateAccount(ctx, account.ID, AccountUpdate{Role: &role})
}

func (s *accountService) seal(op, password string) (string, error) {
	sealed, err := s.verifier.Seal(password)
	if errors.Is(err, ErrPasswordTooLong) {
		return "", invalidField("password", fmt.Sprintf("password must be at most %d bytes", MaxBcryptPasswordBytes))
	}
	if err != nil {
		return "", internal(s.logger, op, err)
	}
	return sealed, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *accountService) ValidateToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}
