package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchProducts_All(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[[]productResponse](t, w)
	assert.Len(t, resp, 2)
}

func TestSearchProducts_MatchesCategoryName(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products?search=dai", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[[]productResponse](t, w)
	require.Len(t, resp, 1)
	assert.Equal(t, "Almond Milk", resp[0].Name)
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/products",
		`{"name":"Cheddar","brand":"Tillamook","price":6.99,"categoryId":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody[productResponse](t, w)
	assert.NotZero(t, resp.ID)
	assert.InDelta(t, 6.99, resp.Price, 1e-9)
}

func TestCreateProduct_NegativePrice(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/products",
		`{"name":"Cheddar","brand":"Tillamook","price":-1,"categoryId":1}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/products/1",
		`{"name":"Rye Bread","brand":"Wheaties","price":3.75,"categoryId":2}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, "Rye Bread", f.products.byID[1].Name)
	assert.Equal(t, "3.75", f.products.byID[1].Price.String())
}

func TestUpdateProduct_NotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/products/999",
		`{"name":"Rye Bread","brand":"Wheaties","price":3.75,"categoryId":2}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCashier_WithOrders(t *testing.T) {
	f := newFixture(t)

	created := f.do(t, http.MethodPost, "/orders",
		`{"cashierId":1,"items":[{"productId":2,"quantity":2}]}`)
	require.Equal(t, http.StatusCreated, created.Code)

	w := f.do(t, http.MethodGet, "/cashiers/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[cashierDetailResponse](t, w)
	assert.Equal(t, "Jim", resp.FirstName)
	require.Len(t, resp.Orders, 1)
	assert.InDelta(t, 20.00, resp.Orders[0].Total, 1e-9)
}

func TestGetCashier_NotFound(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/cashiers/999", "").Code)
}

func TestCreateCashier(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/cashiers", `{"firstName":"Steve","lastName":"Texas"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody[cashierResponse](t, w)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "Steve", resp.FirstName)
}

func TestCreateCategory(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/categories", `{"name":"Frozen"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	list := decodeBody[[]categoryResponse](t, f.do(t, http.MethodGet, "/categories", ""))
	assert.Len(t, list, 3)
}
