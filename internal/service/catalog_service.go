package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"storefront/internal/assets"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageAssets is the part of the asset handler the catalog depends on
type ImageAssets interface {
	StoreAll(ctx context.Context, uploads []assets.Upload) ([]string, error)
	Replace(ctx context.Context, upload assets.Upload) ([]string, error)
	RemoveAll(ctx context.Context, names []string)
}

// ProductInput holds the fields of a new product
type ProductInput struct {
	Name        string
	Price       float64
	CategoryID  *uuid.UUID
	Description string
	Stock       int
}

// ProductUpdate holds the fields an update may change. Nil fields keep
// their stored value.
type ProductUpdate struct {
	Name        *string           `json:"name"`
	Price       *float64          `json:"price"`
	CategoryID  *uuid.UUID        `json:"category"`
	Description *string           `json:"description"`
	Stock       *int              `json:"stock"`
	IsAvailable *domain.LooseBool `json:"isAvailable"`
}

// CatalogService defines the interface for category and product business logic
type CatalogService interface {
	AddCategory(ctx context.Context, name, description string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	AddProduct(ctx context.Context, input ProductInput, uploads []assets.Upload) (*domain.Product, error)
	ListProducts(ctx context.Context, expand bool) ([]*domain.ProductListing, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, update ProductUpdate, image *assets.Upload) (*domain.Product, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	images       ImageAssets
	logger       *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	images ImageAssets,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		images:       images,
		logger:       logger,
	}
}

// AddCategory creates a category unless one with the same name exists
func (s *catalogService) AddCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalidField("name", "name is required")
	}

	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, internal(s.logger, "add_category.find", err)
	}
	if existing != nil {
		return nil, ErrDuplicateName
	}

	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		// Lost a race with a concurrent insert of the same name
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, ErrDuplicateName
		}
		return nil, internal(s.logger, "add_category.create", err)
	}

	return category, nil
}

// ListCategories returns all categories in insertion order
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, internal(s.logger, "list_categories", err)
	}
	return categories, nil
}

// GetCategory returns a category by ID
func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, notFound(err)
		}
		return nil, internal(s.logger, "get_category", err)
	}
	return category, nil
}

// UpdateCategory replaces the name and description of a category
func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalidField("name", "name is required")
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Description = description

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, notFound(err)
		case errors.Is(err, repository.ErrCategoryAlreadyExists):
			return nil, ErrDuplicateName
		}
		return nil, internal(s.logger, "update_category", err)
	}

	return category, nil
}

// DeleteCategory removes a category that no product references
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return notFound(err)
		case errors.Is(err, repository.ErrCategoryInUse):
			return ErrCategoryInUse
		}
		return internal(s.logger, "delete_category", err)
	}
	return nil
}

// AddProduct stores the uploaded images and then persists the product.
// New products are always available.
func (s *catalogService) AddProduct(ctx context.Context, input ProductInput, uploads []assets.Upload) (*domain.Product, error) {
	if err := validateProductInput(input, len(uploads)); err != nil {
		return nil, err
	}

	names, err := s.images.StoreAll(ctx, uploads)
	if err != nil {
		if isUploadError(err) {
			return nil, invalidField("images", err.Error())
		}
		return nil, internal(s.logger, "add_product.store_images", err)
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       roundPrice(input.Price),
		CategoryID:  input.CategoryID,
		Stock:       input.Stock,
		Images:      names,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.images.RemoveAll(ctx, names)
		return nil, internal(s.logger, "add_product.create", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.Int("images", len(names)),
	)

	return product, nil
}

// ListProducts returns all products, optionally with their category resolved
func (s *catalogService) ListProducts(ctx context.Context, expand bool) ([]*domain.ProductListing, error) {
	listings, err := s.productRepo.List(ctx, expand)
	if err != nil {
		return nil, internal(s.logger, "list_products", err)
	}
	return listings, nil
}

// UpdateProduct applies the supplied fields to a product. A replacement
// image replaces the whole image sequence.
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, update ProductUpdate, image *assets.Upload) (*domain.Product, error) {
	if err := validateProductUpdate(update); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFound(err)
		}
		return nil, internal(s.logger, "update_product.find", err)
	}

	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Price != nil {
		product.Price = roundPrice(*update.Price)
	}
	if update.CategoryID != nil {
		categoryID := *update.CategoryID
		product.CategoryID = &categoryID
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Stock != nil {
		product.Stock = *update.Stock
	}
	if update.IsAvailable != nil {
		product.IsAvailable = update.IsAvailable.Bool()
	}

	var replaced []string
	if image != nil {
		replaced, err = s.images.Replace(ctx, *image)
		if err != nil {
			if isUploadError(err) {
				return nil, invalidField("image", err.Error())
			}
			return nil, internal(s.logger, "update_product.store_image", err)
		}
		product.Images = replaced
	}

	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.images.RemoveAll(ctx, replaced)
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFound(err)
		}
		return nil, internal(s.logger, "update_product.update", err)
	}

	return product, nil
}

// Storefront returns the listings a shopper sees: available products,
// limited to one category when categoryID is set. Stock plays no part.
func Storefront(listings []*domain.ProductListing, categoryID *uuid.UUID) []*domain.ProductListing {
	visible := make([]*domain.ProductListing, 0, len(listings))
	for _, listing := range listings {
		if !listing.IsAvailable {
			continue
		}
		if categoryID != nil && !listing.InCategory(*categoryID) {
			continue
		}
		visible = append(visible, listing)
	}
	return visible
}

func validateProductInput(input ProductInput, uploads int) error {
	verr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		verr.add("name", "name is required")
	}
	if input.Price < 0 {
		verr.add("price", "price must not be negative")
	}
	if uploads == 0 {
		verr.add("images", "at least one image is required")
	}
	if uploads > domain.MaxProductImages {
		verr.add("images", "at most 5 images are allowed")
	}
	return verr.orNil()
}

func validateProductUpdate(update ProductUpdate) error {
	verr := &ValidationError{}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		verr.add("name", "name must not be blank")
	}
	if update.Price != nil && *update.Price < 0 {
		verr.add("price", "price must not be negative")
	}
	return verr.orNil()
}

func isUploadError(err error) bool {
	return errors.Is(err, assets.ErrNoFiles) ||
		errors.Is(err, assets.ErrTooManyFiles) ||
		errors.Is(err, assets.ErrMissingUpload) ||
		errors.Is(err, assets.ErrInvalidName)
}

// roundPrice matches the two decimal places the price column stores.
func roundPrice(price float64) float64 {
	return math.Round(price*100) / 100
}
