package category

import (
	"context"
)

// Category groups products on the shelf (Dairy, Bread, Produce, ...).
type Category struct {
	ID   int64
	Name string
}

// Repository defines persistence operations for categories.
type Repository interface {
	Create(ctx context.Context, c *Category) error
	List(ctx context.Context) ([]Category, error)
	// EnsureByName returns the category with the given name, creating it
	// first when it does not exist yet. Used by catalog feed ingestion.
	EnsureByName(ctx context.Context, name string) (*Category, error)
}
