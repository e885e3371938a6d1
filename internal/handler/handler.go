// Package handler exposes the store API over HTTP. Handlers translate JSON
// requests into domain calls and map domain errors onto status codes.
package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/corner-store/internal/domain/cashier"
	"github.com/xenking/corner-store/internal/domain/category"
	"github.com/xenking/corner-store/internal/domain/order"
	"github.com/xenking/corner-store/internal/domain/product"
)

// Handler serves the store API, delegating business logic to the order
// service and the domain repositories.
type Handler struct {
	cashiers     cashier.Repository
	categories   category.Repository
	products     product.Repository
	orders       order.Repository
	orderService *order.Service

	ordersPlaced   metric.Int64Counter
	ordersRejected metric.Int64Counter
}

// NewHandler constructs a Handler with the required domain dependencies and
// registers its order metrics on the given meter provider.
func NewHandler(
	cashiers cashier.Repository,
	categories category.Repository,
	products product.Repository,
	orders order.Repository,
	orderService *order.Service,
	mp metric.MeterProvider,
) (*Handler, error) {
	meter := mp.Meter("corner-store/handler")

	ordersPlaced, err := meter.Int64Counter("orders.placed",
		metric.WithDescription("Orders accepted and persisted"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders.placed counter")
	}
	ordersRejected, err := meter.Int64Counter("orders.rejected",
		metric.WithDescription("Order submissions rejected by validation"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders.rejected counter")
	}

	return &Handler{
		cashiers:       cashiers,
		categories:     categories,
		products:       products,
		orders:         orders,
		orderService:   orderService,
		ordersPlaced:   ordersPlaced,
		ordersRejected: ordersRejected,
	}, nil
}

// Routes registers every API endpoint on the given mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /cashiers", h.createCashier)
	mux.HandleFunc("GET /cashiers/{id}", h.getCashier)

	mux.HandleFunc("POST /categories", h.createCategory)
	mux.HandleFunc("GET /categories", h.listCategories)

	mux.HandleFunc("GET /products", h.searchProducts)
	mux.HandleFunc("POST /products", h.createProduct)
	mux.HandleFunc("PUT /products/{id}", h.updateProduct)

	mux.HandleFunc("GET /orders", h.listOrders)
	mux.HandleFunc("POST /orders", h.placeOrder)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("DELETE /orders/{id}", h.deleteOrder)
}
