package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/corner-store/internal/domain/order"
)

type placeOrderRequest struct {
	CashierID int64            `json:"cashierId"`
	Items     []placeOrderItem `json:"items"`
	// PaidOnDate is accepted but ignored: orders are always created unpaid.
	PaidOnDate *time.Time `json:"paidOnDate,omitempty"`
}

type placeOrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// placeOrder submits a proposed order through the validation and pricing
// flow. Validation failures come back as 400 with a reason; success returns
// the created order with its derived total and a null paid-on date.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req placeOrderRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]order.Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.Item{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	o, err := h.orderService.PlaceOrder(ctx, order.PlaceOrderRequest{
		CashierID: req.CashierID,
		Items:     items,
	})
	if err != nil {
		status, message := mapOrderError(err)
		if status == 0 {
			writeInternalError(w, r, err)
			return
		}
		h.ordersRejected.Add(ctx, 1, metric.WithAttributes(
			attribute.String("reason", rejectionReason(err)),
		))
		writeError(w, r, status, message)
		return
	}

	h.ordersPlaced.Add(ctx, 1)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("order.id", o.ID),
		attribute.Int("order.items", len(o.Items)),
	)

	writeJSON(w, r, http.StatusCreated, toOrderResponse(*o))
}

// mapOrderError converts order validation errors into a status and caller
// facing message. It returns status 0 for unclassified errors.
func mapOrderError(err error) (int, string) {
	var (
		icErr *order.InvalidCashierError
		ipErr *order.InvalidProductError
		iqErr *order.InvalidQuantityError
	)
	switch {
	case errors.As(err, &icErr):
		return http.StatusBadRequest, "Invalid CashierId"
	case errors.Is(err, order.ErrEmptyOrder):
		return http.StatusBadRequest, "Order must have at least one product"
	case errors.As(err, &ipErr):
		return http.StatusBadRequest, fmt.Sprintf("Invalid ProductId: %d", ipErr.ProductID)
	case errors.As(err, &iqErr):
		return http.StatusBadRequest, fmt.Sprintf("Quantity must be greater than 0 for product %d", iqErr.ProductID)
	default:
		return 0, ""
	}
}

func rejectionReason(err error) string {
	var (
		icErr *order.InvalidCashierError
		ipErr *order.InvalidProductError
		iqErr *order.InvalidQuantityError
	)
	switch {
	case errors.As(err, &icErr):
		return "invalid_cashier"
	case errors.Is(err, order.ErrEmptyOrder):
		return "empty_order"
	case errors.As(err, &ipErr):
		return "invalid_product"
	case errors.As(err, &iqErr):
		return "invalid_quantity"
	default:
		return "unknown"
	}
}

// getOrder returns an order with its cashier, line items, products, and
// derived total.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toOrderResponse(*o))
}

// listOrders returns all orders, or only the ones paid on the given calendar
// day when orderDate parses. Unparsable values are ignored, not rejected.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var filter order.ListFilter
	if raw := r.URL.Query().Get("orderDate"); raw != "" {
		if day, err := time.Parse("2006-01-02", raw); err == nil {
			filter.PaidOn = &day
		}
	}

	orders, err := h.orders.List(r.Context(), filter)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
