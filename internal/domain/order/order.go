package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/corner-store/internal/domain/cashier"
	"github.com/xenking/corner-store/internal/domain/product"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Order represents a customer order rung up by a cashier. PaidOnDate is nil
// until the order is settled.
type Order struct {
	ID         int64
	CashierID  int64
	PaidOnDate *time.Time
	Items      []LineItem

	// Cashier is populated on detail reads.
	Cashier *cashier.Cashier
}

// LineItem is one product line within an order.
type LineItem struct {
	ID        int64
	ProductID int64
	Quantity  int

	// Product is populated when the order is loaded with its catalog data.
	// It may be nil on partially loaded orders.
	Product *product.Product
}

// Total returns the sum of product price times quantity across the order's
// loaded line items. It is a pure projection over current catalog prices:
// totals are derived on demand and never stored, so they shift if a product
// price changes after the order was placed.
//
// A line item whose product is not loaded contributes zero rather than
// failing the computation; an order with no loaded items totals exactly zero.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		if item.Product == nil {
			continue
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		total = total.Add(item.Product.Price.Mul(qty))
	}
	return total
}

// ListFilter narrows order list queries.
type ListFilter struct {
	// PaidOn, when set, keeps only orders whose paid-on date falls on the
	// given calendar day.
	PaidOn *time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order together with its line items as a single
	// unit, filling in generated identities.
	Create(ctx context.Context, o *Order) error
	// GetByID returns the order with its cashier, line items, and each
	// item's product (with category name) loaded.
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	// ListByCashier returns a cashier's orders with line items and products
	// loaded, for the cashier detail view.
	ListByCashier(ctx context.Context, cashierID int64) ([]Order, error)
	Delete(ctx context.Context, id int64) error
}
