package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxProductImages is the most images a product can carry.
const MaxProductImages = 5

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Price       float64    `json:"price" db:"price"`
	CategoryID  *uuid.UUID `json:"category_id" db:"category_id"`
	Stock       int        `json:"stock" db:"stock"`
	Images      []string   `json:"images" db:"images"`
	IsAvailable bool       `json:"isAvailable" db:"is_available"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ProductListing is a product as returned by a catalog listing. Category is
// only set when expansion was requested and the reference still resolves.
type ProductListing struct {
	Product
	Category *Category `json:"category"`
}

// InCategory reports whether the product references the given category.
func (p *Product) InCategory(id uuid.UUID) bool {
	return p.CategoryID != nil && *p.CategoryID == id
}
