package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, expandCategory bool) ([]*domain.ProductListing, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
	ReferencedImages(ctx context.Context) (map[string]struct{}, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.name, p.description, p.price, p.category_id, p.stock, p.images, p.is_available, p.created_at, p.updated_at`

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, category_id, stock, images, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		nullableUUID(product.CategoryID),
		product.Stock,
		imagesParam(product.Images),
		product.IsAvailable,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update writes every mutable column of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, category_id = $5,
		    stock = $6, images = $7, is_available = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		nullableUUID(product.CategoryID),
		product.Stock,
		imagesParam(product.Images),
		product.IsAvailable,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.id = $1
	`

	typeMap := pgtype.NewMap()
	product := &domain.Product{}
	var categoryID uuid.NullUUID

	err := r.db.QueryRowContext(ctx, query, id).Scan(productDest(typeMap, product, &categoryID)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	product.CategoryID = uuidPtr(categoryID)

	return product, nil
}

// List retrieves every product in insertion order. With expandCategory set,
// each listing carries its category record when the reference resolves.
func (r *productRepository) List(ctx context.Context, expandCategory bool) ([]*domain.ProductListing, error) {
	query := `
		SELECT ` + productColumns + `, c.id, c.name, c.description, c.created_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY p.created_at ASC, p.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	typeMap := pgtype.NewMap()
	listings := []*domain.ProductListing{}
	for rows.Next() {
		listing := &domain.ProductListing{}
		var (
			categoryID    uuid.NullUUID
			joinedID      uuid.NullUUID
			joinedName    sql.NullString
			joinedDesc    sql.NullString
			joinedCreated sql.NullTime
		)

		dest := append(productDest(typeMap, &listing.Product, &categoryID),
			&joinedID, &joinedName, &joinedDesc, &joinedCreated)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		listing.CategoryID = uuidPtr(categoryID)
		if expandCategory && joinedID.Valid {
			listing.Category = &domain.Category{
				ID:          joinedID.UUID,
				Name:        joinedName.String,
				Description: joinedDesc.String,
				CreatedAt:   joinedCreated.Time,
			}
		}
		listings = append(listings, listing)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return listings, nil
}

// CountByCategory returns how many products reference a category
func (r *productRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// ReferencedImages returns the set of image filenames any product points at
func (r *productRepository) ReferencedImages(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT unnest(images) FROM products`)
	if err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}
	defer rows.Close()

	referenced := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan image name: %w", err)
		}
		referenced[name] = struct{}{}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}

	return referenced, nil
}

func productDest(typeMap *pgtype.Map, product *domain.Product, categoryID *uuid.NullUUID) []interface{} {
	return []interface{}{
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		categoryID,
		&product.Stock,
		typeMap.SQLScanner(&product.Images),
		&product.IsAvailable,
		&product.CreatedAt,
		&product.UpdatedAt,
	}
}

func imagesParam(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := id.UUID
	return &v
}
