package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/corner-store/internal/domain/product"
)

type productRequest struct {
	Name       string          `json:"name"`
	Brand      string          `json:"brand"`
	Price      decimal.Decimal `json:"price"`
	CategoryID int64           `json:"categoryId"`
}

func (req *productRequest) validate() string {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return "name is required"
	case req.Price.IsNegative():
		return "price must not be negative"
	case req.CategoryID <= 0:
		return "categoryId is required"
	default:
		return ""
	}
}

// searchProducts lists the catalog, optionally filtered by a search term
// matched case-insensitively against product and category names.
func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")

	products, err := h.products.Search(r.Context(), term)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	p := &product.Product{
		Name:       req.Name,
		Brand:      req.Brand,
		Price:      req.Price,
		CategoryID: req.CategoryID,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toProductResponse(*p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	upd := product.Update{
		Name:       req.Name,
		Brand:      req.Brand,
		Price:      req.Price,
		CategoryID: req.CategoryID,
	}
	if err := h.products.Update(r.Context(), id, upd); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
