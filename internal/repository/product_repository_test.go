package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newProduct(name string, categoryID *uuid.UUID, images []string) *domain.Product {
	now := time.Now()
	return &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: "description of " + name,
		Price:       19.99,
		CategoryID:  categoryID,
		Stock:       10,
		Images:      images,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Feature: storefront, Property 4: Product images keep their upload order
func TestProperty_ProductImagesKeepOrder(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("stored image sequences round-trip in order", prop.ForAll(
		func(count int, stock int, price float64) bool {
			images := make([]string, count)
			for i := range images {
				images[i] = fmt.Sprintf("%d-%s.png", i, uuid.NewString()[:8])
			}

			product := newProduct("Product "+uuid.NewString()[:8], nil, images)
			product.Stock = stock
			product.Price = price

			if err := repo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			retrieved, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if !reflect.DeepEqual(retrieved.Images, images) {
				t.Logf("FAIL: Images mismatch. Expected %v, got %v", images, retrieved.Images)
				return false
			}
			if retrieved.Stock != stock || !retrieved.IsAvailable || retrieved.CategoryID != nil {
				t.Logf("FAIL: Attributes mismatch: %+v", retrieved)
				return false
			}
			if retrieved.Price < price-0.01 || retrieved.Price > price+0.01 {
				t.Logf("FAIL: Price mismatch. Expected %f, got %f", price, retrieved.Price)
				return false
			}
			return true
		},
		gen.IntRange(1, domain.MaxProductImages),
		gen.IntRange(0, 1000),
		gen.Float64Range(0.01, 9999.99),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductRejectsMoreThanFiveImages(t *testing.T) {
	repo := NewProductRepository(testDB)

	product := newProduct("Overloaded", nil, []string{"1", "2", "3", "4", "5", "6"})
	if err := repo.Create(context.Background(), product); err == nil {
		t.Fatal("Expected the images check constraint to reject six images")
	}
}

// Feature: storefront, Property 5: Product updates are reflected
func TestProperty_ProductUpdatesAreReflected(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("updating a product and retrieving it shows the updated values", prop.ForAll(
		func(name string, stock int, available bool) bool {
			product := newProduct("Original", nil, []string{"old-1.png", "old-2.png"})
			if err := repo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			categoryID := uuid.New()
			product.Name = name
			product.Stock = stock
			product.IsAvailable = available
			product.CategoryID = &categoryID
			product.Images = []string{"new.png"}
			product.UpdatedAt = time.Now()

			if err := repo.Update(ctx, product); err != nil {
				t.Logf("FAIL: Failed to update product: %v", err)
				return false
			}

			retrieved, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			return retrieved.Name == name &&
				retrieved.Stock == stock &&
				retrieved.IsAvailable == available &&
				retrieved.InCategory(categoryID) &&
				reflect.DeepEqual(retrieved.Images, []string{"new.png"})
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`),
		gen.IntRange(0, 1000),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductUpdateMissing(t *testing.T) {
	repo := NewProductRepository(testDB)

	err := repo.Update(context.Background(), newProduct("Ghost", nil, nil))
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
	if _, err := repo.FindByID(context.Background(), uuid.New()); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}

func TestProductListExpandsCategories(t *testing.T) {
	resetTables(t)
	categories := NewCategoryRepository(testDB)
	products := NewProductRepository(testDB)
	ctx := context.Background()

	supplements := newCategory("Supplements")
	if err := categories.Create(ctx, supplements); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	dangling := uuid.New()
	whey := newProduct("Whey", &supplements.ID, []string{"w1.png", "w2.png"})
	orphan := newProduct("Orphan", &dangling, []string{"o.png"})
	orphan.CreatedAt = whey.CreatedAt.Add(time.Second)
	for _, p := range []*domain.Product{whey, orphan} {
		if err := products.Create(ctx, p); err != nil {
			t.Fatalf("Failed to create product: %v", err)
		}
	}

	expanded, err := products.List(ctx, true)
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	if len(expanded) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(expanded))
	}

	if expanded[0].Category == nil || expanded[0].Category.Name != "Supplements" {
		t.Errorf("Expected Whey to expand to Supplements, got %+v", expanded[0].Category)
	}
	if len(expanded[0].Images) != 2 {
		t.Errorf("Expected 2 images, got %d", len(expanded[0].Images))
	}
	if expanded[1].Category != nil {
		t.Errorf("Dangling category should expand to nil, got %+v", expanded[1].Category)
	}
	if !expanded[1].InCategory(dangling) {
		t.Error("Dangling category id should still be reported")
	}

	flat, err := products.List(ctx, false)
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	for _, listing := range flat {
		if listing.Category != nil {
			t.Errorf("Unexpanded listing carries a category: %+v", listing.Category)
		}
	}

	count, err := products.CountByCategory(ctx, supplements.ID)
	if err != nil || count != 1 {
		t.Errorf("Expected 1 product in category, got %d (%v)", count, err)
	}

	referenced, err := products.ReferencedImages(ctx)
	if err != nil {
		t.Fatalf("Failed to list referenced images: %v", err)
	}
	for _, name := range []string{"w1.png", "w2.png", "o.png"} {
		if _, ok := referenced[name]; !ok {
			t.Errorf("Expected %s to be referenced", name)
		}
	}
}
