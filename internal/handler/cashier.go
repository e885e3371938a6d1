package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/corner-store/internal/domain/cashier"
)

type createCashierRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *Handler) createCashier(w http.ResponseWriter, r *http.Request) {
	var req createCashierRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		writeError(w, r, http.StatusBadRequest, "firstName and lastName are required")
		return
	}

	c := &cashier.Cashier{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := h.cashiers.Create(r.Context(), c); err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toCashierResponse(*c))
}

// getCashier returns the cashier together with their orders, each carrying
// its line items, products, and derived total.
func (h *Handler) getCashier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid cashier id")
		return
	}

	c, err := h.cashiers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, cashier.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "cashier not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	orders, err := h.orders.ListByCashier(r.Context(), id)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	resp := cashierDetailResponse{
		cashierResponse: toCashierResponse(*c),
		Orders:          make([]orderResponse, len(orders)),
	}
	for i, o := range orders {
		resp.Orders[i] = toOrderResponse(o)
	}
	writeJSON(w, r, http.StatusOK, resp)
}
