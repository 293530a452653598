package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrAccountNotFound = errors.New("account not found")
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	ToggleDisabled(ctx context.Context, id uuid.UUID) (bool, error)
}

type accountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new instance of AccountRepository
func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, fname, email, password, role, is_disabled, created_at, updated_at`

// Create inserts a new account. Email addresses are not required to be unique.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		account.ID,
		account.FName,
		account.Email,
		account.Password,
		account.Role,
		account.IsDisabled,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// Update writes every mutable column of an existing account
func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET fname = $2, email = $3, password = $4, role = $5, is_disabled = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		account.ID,
		account.FName,
		account.Email,
		account.Password,
		account.Role,
		account.IsDisabled,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// FindByEmail retrieves the oldest account registered with the given email
func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`

	account := &domain.Account{}
	err := scanAccount(r.db.QueryRowContext(ctx, query, email), account)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}

	return account, nil
}

// FindByID retrieves an account by ID using parameterized queries
func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	account := &domain.Account{}
	err := scanAccount(r.db.QueryRowContext(ctx, query, id), account)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID: %w", err)
	}

	return account, nil
}

// List retrieves all accounts, disabled ones included
func (r *accountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*domain.Account{}
	for rows.Next() {
		account := &domain.Account{}
		if err := scanAccount(rows, account); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// ToggleDisabled flips the disabled flag in a single statement and returns
// the new value
func (r *accountRepository) ToggleDisabled(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE accounts
		SET is_disabled = NOT is_disabled, updated_at = NOW()
		WHERE id = $1
		RETURNING is_disabled
	`

	var disabled bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&disabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrAccountNotFound
		}
		return false, fmt.Errorf("failed to toggle account status: %w", err)
	}

	return disabled, nil
}

func scanAccount(row scanner, account *domain.Account) error {
	return row.Scan(
		&account.ID,
		&account.FName,
		&account.Email,
		&account.Password,
		&account.Role,
		&account.IsDisabled,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
}
