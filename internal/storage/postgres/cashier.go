package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/corner-store/internal/domain/cashier"
)

const (
	createCashierSQL = `INSERT INTO cashiers (first_name, last_name)
		VALUES ($1, $2) RETURNING id`

	getCashierByIDSQL = `SELECT id, first_name, last_name FROM cashiers WHERE id = $1`
)

var _ cashier.Repository = (*CashierRepository)(nil)

// CashierRepository implements cashier.Repository backed by PostgreSQL.
type CashierRepository struct {
	pool *pgxpool.Pool
}

// NewCashierRepository returns a CashierRepository that uses the given pool.
func NewCashierRepository(pool *pgxpool.Pool) *CashierRepository {
	return &CashierRepository{pool: pool}
}

// Create persists a new cashier and fills in the generated identity.
func (r *CashierRepository) Create(ctx context.Context, c *cashier.Cashier) error {
	err := r.pool.QueryRow(ctx, createCashierSQL, c.FirstName, c.LastName).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("creating cashier: %w", err)
	}
	return nil
}

// GetByID returns a single cashier by its identifier.
func (r *CashierRepository) GetByID(ctx context.Context, id int64) (*cashier.Cashier, error) {
	var c cashier.Cashier
	err := r.pool.QueryRow(ctx, getCashierByIDSQL, id).Scan(&c.ID, &c.FirstName, &c.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cashier.ErrNotFound
		}
		return nil, fmt.Errorf("getting cashier %d: %w", id, err)
	}
	return &c, nil
}
