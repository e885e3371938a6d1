package cashier

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested cashier does not exist.
var ErrNotFound = errors.New("cashier not found")

// Cashier represents a store employee who rings up orders.
type Cashier struct {
	ID        int64
	FirstName string
	LastName  string
}

// FullName returns the cashier's display name.
func (c Cashier) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Repository defines persistence operations for cashiers.
type Repository interface {
	Create(ctx context.Context, c *Cashier) error
	GetByID(ctx context.Context, id int64) (*Cashier, error)
}
