package transport

import (
	"context"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing
type mockCategoryRepository struct {
	mu         sync.Mutex
	categories []*domain.Category
	products   *mockProductRepository
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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
	m.mu.Lock()
	defer m.mu.Unlock()
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
	if n, _ := m.products.CountByCategory(ctx, id); n > 0 {
		if _, err := m.FindByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrCategoryInUse
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.categories {
		if c.ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Name == name {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

type mockProductRepository struct {
	mu         sync.Mutex
	products   []*domain.Product
	categories *mockCategoryRepository
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *product
	m.products = append(m.products, &stored)
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.ID == product.ID {
			stored := *product
			m.products[i] = &stored
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, expandCategory bool) ([]*domain.ProductListing, error) {
	m.mu.Lock()
	products := append([]*domain.Product(nil), m.products...)
	m.mu.Unlock()

	listings := make([]*domain.ProductListing, 0, len(products))
	for _, p := range products {
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
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, p := range m.products {
		if p.InCategory(categoryID) {
			count++
		}
	}
	return count, nil
}

func (m *mockProductRepository) ReferencedImages(ctx context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	referenced := make(map[string]struct{})
	for _, p := range m.products {
		for _, image := range p.Images {
			referenced[image] = struct{}{}
		}
	}
	return referenced, nil
}

type mockAccountRepository struct {
	mu       sync.Mutex
	accounts []*domain.Account
}

func (m *mockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *account
	m.accounts = append(m.accounts, &stored)
	return nil
}

func (m *mockAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.accounts {
		if a.ID == account.ID {
			stored := *account
			m.accounts[i] = &stored
			return nil
		}
	}
	return repository.ErrAccountNotFound
}

func (m *mockAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (m *mockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (m *mockAccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockAccountRepository) ToggleDisabled(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ID == id {
			a.IsDisabled = !a.IsDisabled
			return a.IsDisabled, nil
		}
	}
	return false, repository.ErrAccountNotFound
}
