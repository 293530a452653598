package service

import (
	"context"
	"errors"
	"sort"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("connection refused")

// Mock repositories for testing
type mockCategoryRepository struct {
	categories []*domain.Category
	inUse      map[uuid.UUID]bool
	failWith   error
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{inUse: make(map[uuid.UUID]bool)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if m.failWith != nil {
		return m.failWith
	}
	for _, c := range m.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	stored := *category
	m.categories = append(m.categories, &stored)
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	for _, c := range m.categories {
		if c.Name == category.Name && c.ID != category.ID {
			return repository.ErrCategoryAlreadyExists
		}
	}
	for i, c := range m.categories {
		if c.ID == category.ID {
			stored := *category
			m.categories[i] = &stored
			return nil
		}
	}
	return repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for i, c := range m.categories {
		if c.ID == id {
			if m.inUse[id] {
				return repository.ErrCategoryInUse
			}
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]*domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, c := range m.categories {
		if c.Name == name {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

type mockProductRepository struct {
	products   []*domain.Product
	categories *mockCategoryRepository
	failCreate error
}

func newMockProductRepository(categories *mockCategoryRepository) *mockProductRepository {
	return &mockProductRepository{categories: categories}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	stored := *product
	stored.Images = append([]string(nil), product.Images...)
	m.products = append(m.products, &stored)
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	for i, p := range m.products {
		if p.ID == product.ID {
			stored := *product
			stored.Images = append([]string(nil), product.Images...)
			m.products[i] = &stored
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			copied := *p
			copied.Images = append([]string(nil), p.Images...)
			return &copied, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, expandCategory bool) ([]*domain.ProductListing, error) {
	listings := make([]*domain.ProductListing, 0, len(m.products))
	for _, p := range m.products {
		listing := &domain.ProductListing{Product: *p}
		if expandCategory && p.CategoryID != nil {
			if category, err := m.categories.FindByID(ctx, *p.CategoryID); err == nil {
				listing.Category = category
			}
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (m *mockProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	count := 0
	for _, p := range m.products {
		if p.InCategory(categoryID) {
			count++
		}
	}
	return count, nil
}

func (m *mockProductRepository) ReferencedImages(ctx context.Context) (map[string]struct{}, error) {
	referenced := make(map[string]struct{})
	for _, p := range m.products {
		for _, image := range p.Images {
			referenced[image] = struct{}{}
		}
	}
	return referenced, nil
}

type mockAccountRepository struct {
	accounts []*domain.Account
	failWith error
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{}
}

func (m *mockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.failWith != nil {
		return m.failWith
	}
	stored := *account
	m.accounts = append(m.accounts, &stored)
	return nil
}

func (m *mockAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	for i, a := range m.accounts {
		if a.ID == account.ID {
			stored := *account
			m.accounts[i] = &stored
			return nil
		}
	}
	return repository.ErrAccountNotFound
}

// FindByEmail returns the first account created with the address
func (m *mockAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, a := range m.accounts {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (m *mockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (m *mockAccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	out := make([]*domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockAccountRepository) ToggleDisabled(ctx context.Context, id uuid.UUID) (bool, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			a.IsDisabled = !a.IsDisabled
			return a.IsDisabled, nil
		}
	}
	return false, repository.ErrAccountNotFound
}

// countingVerifier records whether a password comparison happened
type countingVerifier struct {
	PlaintextVerifier
	verifications int
}

func (v *countingVerifier) Verify(stored, supplied string) bool {
	v.verifications++
	return v.PlaintextVerifier.Verify(stored, supplied)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
