package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/corner-store/internal/domain/cashier"
	"github.com/xenking/corner-store/internal/domain/product"
)

// --- Mock implementations ---

type mockCashierRepo struct {
	byID map[int64]*cashier.Cashier
}

func (m *mockCashierRepo) Create(_ context.Context, _ *cashier.Cashier) error { return nil }

func (m *mockCashierRepo) GetByID(_ context.Context, id int64) (*cashier.Cashier, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, cashier.ErrNotFound
	}
	return c, nil
}

type mockProductRepo struct {
	byID   map[int64]*product.Product
	getErr error
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) Search(_ context.Context, _ string) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) Update(_ context.Context, _ int64, _ product.Update) error { return nil }

func (m *mockProductRepo) UpsertBySKU(_ context.Context, _ *product.Product) error { return nil }

type mockOrderRepo struct {
	lastOrder *Order
	creates   int
	err       error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.err != nil {
		return m.err
	}
	m.creates++
	o.ID = 42
	m.lastOrder = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, _ int64) (*Order, error) { return nil, ErrNotFound }

func (m *mockOrderRepo) List(_ context.Context, _ ListFilter) ([]Order, error) { return nil, nil }

func (m *mockOrderRepo) ListByCashier(_ context.Context, _ int64) ([]Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) Delete(_ context.Context, _ int64) error { return ErrNotFound }

// --- Helpers ---

func newCashierRepo(cashiers ...cashier.Cashier) *mockCashierRepo {
	byID := make(map[int64]*cashier.Cashier, len(cashiers))
	for i := range cashiers {
		byID[cashiers[i].ID] = &cashiers[i]
	}
	return &mockCashierRepo{byID: byID}
}

func newProductRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[int64]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockProductRepo{byID: byID}
}

func testProduct(id int64, name, price string) product.Product {
	return product.Product{
		ID:       id,
		Name:     name,
		Brand:    "Test Brand",
		Price:    decimal.RequireFromString(price),
		Category: "test",
	}
}

// --- Tests ---

func TestPlaceOrder_InvalidCashier(t *testing.T) {
	svc := NewService(
		newCashierRepo(),
		newProductRepo(testProduct(1, "Sourdough Bread", "3.50")),
		&mockOrderRepo{},
	)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CashierID: 999,
		Items:     []Item{{ProductID: 1, Quantity: 1}},
	})

	var icErr *InvalidCashierError
	require.ErrorAs(t, err, &icErr)
	assert.Equal(t, int64(999), icErr.CashierID)
}

func TestPlaceOrder_InvalidCashierWinsOverEmptyItems(t *testing.T) {
	svc := NewService(newCashierRepo(), newProductRepo(), &mockOrderRepo{})

	// Cashier existence is checked first, regardless of line item contents.
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{CashierID: 999})

	var icErr *InvalidCashierError
	require.ErrorAs(t, err, &icErr)
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	svc := NewService(
		newCashierRepo(cashier.Cashier{ID: 1, FirstName: "Jim", LastName: "Bob"}),
		newProductRepo(),
		&mockOrderRepo{},
	)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{CashierID: 1})
	require.ErrorIs(t, err, ErrEmptyOrder)
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	svc := NewService(
		newCashierRepo(cashier.Cashier{ID: 1}),
		newProductRepo(testProduct(1, "Almond Milk", "4.25")),
		&mockOrderRepo{},
	)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CashierID: 1,
		Items:     []Item{{ProductID: 1, Quantity: 0}},
	})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, int64(1), iqErr.ProductID)
}

func TestPlaceOrder_InvalidProduct(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(
		newCashierRepo(cashier.Cashier{ID: 1}),
		newProductRepo(testProduct(1, "Almond Milk", "4.25")),
		repo,
	)

	// One valid and one missing product: the first missing lookup fails the
	// call, naming the offending id, and nothing is persisted.
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CashierID: 1,
		Items: []Item{
			{ProductID: 1, Quantity: 1},
			{ProductID: 404, Quantity: 2},
		},
	})

	var ipErr *InvalidProductError
	require.ErrorAs(t, err, &ipErr)
	assert.Equal(t, int64(404), ipErr.ProductID)
	assert.Zero(t, repo.creates)
}

func TestPlaceOrder_Success(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(
		newCashierRepo(cashier.Cashier{ID: 1, FirstName: "Jim", LastName: "Bob"}),
		newProductRepo(
			testProduct(1, "Sourdough Bread", "2.50"),
			testProduct(2, "Pork Tenderloin", "10.00"),
		),
		repo,
	)

	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CashierID: 1,
		Items: []Item{
			{ProductID: 1, Quantity: 3},
			{ProductID: 2, Quantity: 1},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), o.ID)
	assert.Nil(t, o.PaidOnDate)
	assert.Len(t, o.Items, 2)
	assert.True(t, decimal.RequireFromString("17.50").Equal(o.Total()))
	assert.Same(t, o, repo.lastOrder)
}

func TestPlaceOrder_ProductLookupError(t *testing.T) {
	svc := NewService(
		newCashierRepo(cashier.Cashier{ID: 1}),
		&mockProductRepo{getErr: errors.New("connection refused")},
		&mockOrderRepo{},
	)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CashierID: 1,
		Items:     []Item{{ProductID: 1, Quantity: 1}},
	})

	// Storage failures propagate unclassified, not as a typed rejection.
	require.Error(t, err)
	var ipErr *InvalidProductError
	assert.False(t, errors.As(err, &ipErr))
}

func TestPlaceOrder_OrderCreateError(t *testing.T) {
	svc := NewService(
		newCashierRepo(cashier.Cashier{ID: 1}),
		newProductRepo(testProduct(1, "Sourdough Bread", "3.50")),
		&mockOrderRepo{err: errors.New("db write failed")},
	)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CashierID: 1,
		Items:     []Item{{ProductID: 1, Quantity: 1}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
}
