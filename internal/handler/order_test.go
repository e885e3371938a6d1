package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/corner-store/internal/domain/cashier"
	"github.com/xenking/corner-store/internal/domain/category"
	"github.com/xenking/corner-store/internal/domain/order"
	"github.com/xenking/corner-store/internal/domain/product"
)

// --- Mock repositories ---

type mockCashierRepo struct {
	byID map[int64]*cashier.Cashier
}

func (m *mockCashierRepo) Create(_ context.Context, c *cashier.Cashier) error {
	c.ID = int64(len(m.byID) + 1)
	m.byID[c.ID] = c
	return nil
}

func (m *mockCashierRepo) GetByID(_ context.Context, id int64) (*cashier.Cashier, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, cashier.ErrNotFound
	}
	return c, nil
}

type mockCategoryRepo struct {
	categories []category.Category
}

func (m *mockCategoryRepo) Create(_ context.Context, c *category.Category) error {
	c.ID = int64(len(m.categories) + 1)
	m.categories = append(m.categories, *c)
	return nil
}

func (m *mockCategoryRepo) List(_ context.Context) ([]category.Category, error) {
	return m.categories, nil
}

func (m *mockCategoryRepo) EnsureByName(_ context.Context, name string) (*category.Category, error) {
	for i := range m.categories {
		if m.categories[i].Name == name {
			return &m.categories[i], nil
		}
	}
	c := category.Category{Name: name}
	if err := m.Create(context.Background(), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

type mockProductRepo struct {
	byID map[int64]*product.Product
}

func (m *mockProductRepo) Create(_ context.Context, p *product.Product) error {
	p.ID = int64(len(m.byID) + 1)
	m.byID[p.ID] = p
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) Search(_ context.Context, term string) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.byID {
		if term == "" ||
			strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) ||
			strings.Contains(strings.ToLower(p.Category), strings.ToLower(term)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Update(_ context.Context, id int64, upd product.Update) error {
	p, ok := m.byID[id]
	if !ok {
		return product.ErrNotFound
	}
	p.Name, p.Brand, p.Price, p.CategoryID = upd.Name, upd.Brand, upd.Price, upd.CategoryID
	return nil
}

func (m *mockProductRepo) UpsertBySKU(_ context.Context, _ *product.Product) error { return nil }

type mockOrderRepo struct {
	byID   map[int64]*order.Order
	nextID int64
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	m.nextID++
	o.ID = m.nextID
	for i := range o.Items {
		o.Items[i].ID = m.nextID*100 + int64(i)
	}
	m.byID[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) List(_ context.Context, filter order.ListFilter) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		if filter.PaidOn != nil {
			if o.PaidOnDate == nil {
				continue
			}
			y1, m1, d1 := o.PaidOnDate.Date()
			y2, m2, d2 := filter.PaidOn.Date()
			if y1 != y2 || m1 != m2 || d1 != d2 {
				continue
			}
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) ListByCashier(_ context.Context, cashierID int64) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		if o.CashierID == cashierID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return order.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// --- Harness ---

type fixture struct {
	handler  *Handler
	cashiers *mockCashierRepo
	products *mockProductRepo
	orders   *mockOrderRepo
	mux      *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cashiers := &mockCashierRepo{byID: map[int64]*cashier.Cashier{
		1: {ID: 1, FirstName: "Jim", LastName: "Bob"},
	}}
	products := &mockProductRepo{byID: map[int64]*product.Product{
		1: {ID: 1, Name: "Sourdough Bread", Brand: "Wheaties", Price: decimal.RequireFromString("2.50"), CategoryID: 2, Category: "Bread"},
		2: {ID: 2, Name: "Almond Milk", Brand: "Silk", Price: decimal.RequireFromString("10.00"), CategoryID: 1, Category: "Dairy"},
	}}
	orders := &mockOrderRepo{byID: map[int64]*order.Order{}}
	categories := &mockCategoryRepo{categories: []category.Category{
		{ID: 1, Name: "Dairy"}, {ID: 2, Name: "Bread"},
	}}

	svc := order.NewService(cashiers, products, orders)
	h, err := NewHandler(cashiers, categories, products, orders, svc, noop.NewMeterProvider())
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Routes(mux)

	return &fixture{handler: h, cashiers: cashiers, products: products, orders: orders, mux: mux}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

// --- Tests ---

func TestPlaceOrder_Success(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders",
		`{"cashierId":1,"items":[{"productId":1,"quantity":3},{"productId":2,"quantity":1}]}`)

	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody[orderResponse](t, w)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, int64(1), resp.CashierID)
	assert.Nil(t, resp.PaidOnDate)
	assert.InDelta(t, 17.50, resp.Total, 1e-9)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 3, resp.Items[0].Quantity)
}

func TestPlaceOrder_ForcesPaidOnDateNull(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders",
		`{"cashierId":1,"paidOnDate":"2023-09-29T00:00:00Z","items":[{"productId":1,"quantity":1}]}`)

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody[orderResponse](t, w)
	assert.Nil(t, resp.PaidOnDate)
}

func TestPlaceOrder_InvalidCashier(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders",
		`{"cashierId":999,"items":[{"productId":1,"quantity":1}]}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody[errorResponse](t, w)
	assert.Equal(t, "Invalid CashierId", resp.Message)
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders", `{"cashierId":1,"items":[]}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody[errorResponse](t, w)
	assert.Equal(t, "Order must have at least one product", resp.Message)
}

func TestPlaceOrder_InvalidProduct(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders",
		`{"cashierId":1,"items":[{"productId":1,"quantity":1},{"productId":404,"quantity":2}]}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody[errorResponse](t, w)
	assert.Equal(t, "Invalid ProductId: 404", resp.Message)
	assert.Empty(t, f.orders.byID)
}

func TestPlaceOrder_InvalidBody(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders", `{"cashierId":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/orders/12345", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrder_ReturnsDerivedTotal(t *testing.T) {
	f := newFixture(t)

	created := decodeBody[orderResponse](t, f.do(t, http.MethodPost, "/orders",
		`{"cashierId":1,"items":[{"productId":1,"quantity":2}]}`))

	w := f.do(t, http.MethodGet, "/orders/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[orderResponse](t, w)
	assert.Equal(t, created.ID, resp.ID)
	assert.InDelta(t, 5.00, resp.Total, 1e-9)

	// Totals track current catalog prices, not creation-time snapshots.
	f.products.byID[1].Price = decimal.RequireFromString("4.00")
	resp = decodeBody[orderResponse](t, f.do(t, http.MethodGet, "/orders/1", ""))
	assert.InDelta(t, 8.00, resp.Total, 1e-9)
}

func TestListOrders_FilterByPaidDate(t *testing.T) {
	f := newFixture(t)

	paid := time.Date(2023, 9, 29, 14, 30, 0, 0, time.UTC)
	f.orders.byID[7] = &order.Order{ID: 7, CashierID: 1, PaidOnDate: &paid}
	f.orders.byID[8] = &order.Order{ID: 8, CashierID: 1}

	w := f.do(t, http.MethodGet, "/orders?orderDate=2023-09-29", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[[]orderResponse](t, w)
	require.Len(t, resp, 1)
	assert.Equal(t, int64(7), resp[0].ID)
}

func TestListOrders_IgnoresUnparsableDate(t *testing.T) {
	f := newFixture(t)

	f.orders.byID[7] = &order.Order{ID: 7, CashierID: 1}

	w := f.do(t, http.MethodGet, "/orders?orderDate=not-a-date", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[[]orderResponse](t, w)
	assert.Len(t, resp, 1)
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t)

	f.orders.byID[3] = &order.Order{ID: 3, CashierID: 1}

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/orders/3", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/orders/3", "").Code)
}
