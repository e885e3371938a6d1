package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a shelf item available for sale.
type Product struct {
	ID         int64
	Name       string
	Brand      string
	Price      decimal.Decimal
	CategoryID int64
	// Category is the joined category name, populated on reads.
	Category string
	// SKU is the supplier stock keeping unit, set by catalog ingestion.
	// Empty for products created through the API.
	SKU string
}

// Update holds the mutable product fields for PUT requests.
type Update struct {
	Name       string
	Brand      string
	Price      decimal.Decimal
	CategoryID int64
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	// Search returns products whose name or category name contains the
	// given term, case-insensitively. An empty term returns all products.
	Search(ctx context.Context, term string) ([]Product, error)
	Update(ctx context.Context, id int64, upd Update) error
	// UpsertBySKU inserts the product or, when a product with the same SKU
	// already exists, refreshes its name, brand, price, and category.
	UpsertBySKU(ctx context.Context, p *Product) error
}
