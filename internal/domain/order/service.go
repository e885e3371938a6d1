package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/corner-store/internal/domain/cashier"
	"github.com/xenking/corner-store/internal/domain/product"
)

// ErrEmptyOrder is returned when an order is submitted without line items.
var ErrEmptyOrder = errors.New("order must have at least one product")

// InvalidCashierError indicates the submitted cashier does not exist.
type InvalidCashierError struct {
	CashierID int64
}

func (e *InvalidCashierError) Error() string {
	return fmt.Sprintf("invalid cashier %d", e.CashierID)
}

// InvalidProductError indicates a line item references a product that does
// not exist.
type InvalidProductError struct {
	ProductID int64
}

func (e *InvalidProductError) Error() string {
	return fmt.Sprintf("invalid product %d", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// Item is one (product, quantity) pair of a proposed order.
type Item struct {
	ProductID int64
	Quantity  int
}

// PlaceOrderRequest holds the input for submitting an order.
type PlaceOrderRequest struct {
	CashierID int64
	Items     []Item
}

// Service encapsulates order submission business logic.
type Service struct {
	cashiers cashier.Repository
	products product.Repository
	orders   Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	cashiers cashier.Repository,
	products product.Repository,
	orders Repository,
) *Service {
	return &Service{
		cashiers: cashiers,
		products: products,
		orders:   orders,
	}
}

// PlaceOrder validates the proposed order and persists it with its line
// items as a single unit. The checks short-circuit at the first failure:
// the cashier must exist, the line items must be non-empty, and every
// referenced product must exist. The paid-on date is always nil on the
// created order regardless of caller input, and the returned order carries
// its loaded products so Total reflects current catalog prices.
//
// A failed call writes nothing. Validation runs before the write without
// locking, so a product deleted in between surfaces as a foreign key
// violation from the repository rather than a typed rejection.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if _, err := s.cashiers.GetByID(ctx, req.CashierID); err != nil {
		if errors.Is(err, cashier.ErrNotFound) {
			return nil, &InvalidCashierError{CashierID: req.CashierID}
		}
		return nil, errors.Wrapf(err, "get cashier %d", req.CashierID)
	}

	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]LineItem, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}

		p, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, &InvalidProductError{ProductID: item.ProductID}
			}
			return nil, errors.Wrapf(err, "get product %d", item.ProductID)
		}

		items[i] = LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Product:   p,
		}
	}

	o := &Order{
		CashierID:  req.CashierID,
		PaidOnDate: nil,
		Items:      items,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}
