package handler

import (
	"time"

	"github.com/xenking/corner-store/internal/domain/cashier"
	"github.com/xenking/corner-store/internal/domain/category"
	"github.com/xenking/corner-store/internal/domain/order"
	"github.com/xenking/corner-store/internal/domain/product"
)

type cashierResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type cashierDetailResponse struct {
	cashierResponse
	Orders []orderResponse `json:"orders"`
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type productResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Brand      string  `json:"brand"`
	Price      float64 `json:"price"`
	CategoryID int64   `json:"categoryId"`
	Category   string  `json:"category,omitempty"`
	SKU        string  `json:"sku,omitempty"`
}

type lineItemResponse struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *productResponse `json:"product,omitempty"`
}

type orderResponse struct {
	ID         int64              `json:"id"`
	CashierID  int64              `json:"cashierId"`
	PaidOnDate *time.Time         `json:"paidOnDate"`
	Total      float64            `json:"total"`
	Items      []lineItemResponse `json:"items"`
	Cashier    *cashierResponse   `json:"cashier,omitempty"`
}

func toCashierResponse(c cashier.Cashier) cashierResponse {
	return cashierResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}
}

func toCategoryResponse(c category.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name}
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:         p.ID,
		Name:       p.Name,
		Brand:      p.Brand,
		Price:      p.Price.InexactFloat64(),
		CategoryID: p.CategoryID,
		Category:   p.Category,
		SKU:        p.SKU,
	}
}

func toOrderResponse(o order.Order) orderResponse {
	items := make([]lineItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = lineItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			p := toProductResponse(*item.Product)
			items[i].Product = &p
		}
	}

	resp := orderResponse{
		ID:         o.ID,
		CashierID:  o.CashierID,
		PaidOnDate: o.PaidOnDate,
		Total:      o.Total().InexactFloat64(),
		Items:      items,
	}
	if o.Cashier != nil {
		c := toCashierResponse(*o.Cashier)
		resp.Cashier = &c
	}
	return resp
}
