package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/corner-store/internal/domain/product"
)

const (
	createProductSQL = `INSERT INTO products (name, brand, price, category_id, sku)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	getProductByIDSQL = `SELECT p.id, p.name, p.brand, p.price, p.category_id, c.name, p.sku
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`

	searchProductsSQL = `SELECT p.id, p.name, p.brand, p.price, p.category_id, c.name, p.sku
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE $1 = '' OR p.name ILIKE '%' || $1 || '%' OR c.name ILIKE '%' || $1 || '%'
		ORDER BY p.id`

	updateProductSQL = `UPDATE products
		SET name = $2, brand = $3, price = $4, category_id = $5
		WHERE id = $1`

	upsertProductBySKUSQL = `INSERT INTO products (name, brand, price, category_id, sku)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sku) WHERE sku <> '' DO UPDATE
		SET name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			price = EXCLUDED.price,
			category_id = EXCLUDED.category_id
		RETURNING id`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create persists a new product and fills in the generated identity.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, createProductSQL,
		p.Name, p.Brand, p.Price, p.CategoryID, p.SKU,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("creating product: %w", err)
	}
	return nil
}

// GetByID returns a single product with its category name joined in.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// Search returns products whose name or category name contains the term,
// case-insensitively. An empty term returns the whole catalog.
func (r *ProductRepository) Search(ctx context.Context, term string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, searchProductsSQL, term)
	if err != nil {
		return nil, fmt.Errorf("searching products %q: %w", term, err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Update overwrites the mutable fields of an existing product.
func (r *ProductRepository) Update(ctx context.Context, id int64, upd product.Update) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		id, upd.Name, upd.Brand, upd.Price, upd.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("updating product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// UpsertBySKU inserts the product or refreshes the existing row that carries
// the same supplier SKU.
func (r *ProductRepository) UpsertBySKU(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, upsertProductBySKUSQL,
		p.Name, p.Brand, p.Price, p.CategoryID, p.SKU,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.SKU, err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
	)
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &price, &p.CategoryID, &p.Category, &p.SKU)
	p.Price = price
	return p, err
}
