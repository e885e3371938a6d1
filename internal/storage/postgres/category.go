package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/corner-store/internal/domain/category"
)

const (
	createCategorySQL = `INSERT INTO categories (name) VALUES ($1) RETURNING id`

	listCategoriesSQL = `SELECT id, name FROM categories ORDER BY id`

	ensureCategorySQL = `INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`
)

var _ category.Repository = (*CategoryRepository)(nil)

// CategoryRepository implements category.Repository backed by PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create persists a new category and fills in the generated identity.
func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	err := r.pool.QueryRow(ctx, createCategorySQL, c.Name).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}
	return nil
}

// List returns all categories ordered by ID.
func (r *CategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (category.Category, error) {
		var c category.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
}

// EnsureByName returns the category with the given name, creating it when
// missing. The upsert always returns a row, so no not-found path exists.
func (r *CategoryRepository) EnsureByName(ctx context.Context, name string) (*category.Category, error) {
	var c category.Category
	err := r.pool.QueryRow(ctx, ensureCategorySQL, name).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, fmt.Errorf("ensuring category %q: %w", name, err)
	}
	return &c, nil
}
