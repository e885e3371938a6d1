package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/corner-store/internal/domain/cashier"
	"github.com/xenking/corner-store/internal/domain/order"
	"github.com/xenking/corner-store/internal/domain/product"
)

const (
	insertOrderSQL = `INSERT INTO orders (cashier_id, paid_on_date)
		VALUES ($1, $2) RETURNING id`

	insertLineItemSQL = `INSERT INTO order_products (order_id, product_id, quantity)
		VALUES ($1, $2, $3) RETURNING id`

	getOrderByIDSQL = `SELECT o.id, o.cashier_id, o.paid_on_date, c.first_name, c.last_name
		FROM orders o
		JOIN cashiers c ON c.id = o.cashier_id
		WHERE o.id = $1`

	listOrdersSQL = `SELECT id, cashier_id, paid_on_date FROM orders ORDER BY id`

	listOrdersPaidOnSQL = `SELECT id, cashier_id, paid_on_date FROM orders
		WHERE paid_on_date IS NOT NULL AND paid_on_date::date = $1::date
		ORDER BY id`

	listOrdersByCashierSQL = `SELECT id, cashier_id, paid_on_date FROM orders
		WHERE cashier_id = $1 ORDER BY id`

	listLineItemsSQL = `SELECT op.id, op.order_id, op.product_id, op.quantity,
			p.name, p.brand, p.price, p.category_id, cat.name, p.sku
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		JOIN categories cat ON cat.id = p.category_id
		WHERE op.order_id = ANY($1)
		ORDER BY op.id`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order and its line items within a single transaction,
// filling in the generated identities. Either every row is written or none.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, insertOrderSQL, o.CashierID, o.PaidOnDate).Scan(&o.ID); err != nil {
		return fmt.Errorf("creating order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		err := tx.QueryRow(ctx, insertLineItemSQL, o.ID, item.ProductID, item.Quantity).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("creating line item for product %d: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %d: %w", o.ID, err)
	}
	return nil
}

// GetByID returns the order with its cashier and its line items, each with
// the product and category name loaded.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var (
		o order.Order
		c cashier.Cashier
	)
	err := r.pool.QueryRow(ctx, getOrderByIDSQL, id).Scan(
		&o.ID, &o.CashierID, &o.PaidOnDate, &c.FirstName, &c.LastName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	c.ID = o.CashierID
	o.Cashier = &c

	itemsByOrder, err := r.loadLineItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = itemsByOrder[o.ID]
	return &o, nil
}

// List returns orders without their line items, matching the filter. Orders
// in the result therefore total zero until loaded in full.
func (r *OrderRepository) List(ctx context.Context, filter order.ListFilter) ([]order.Order, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if filter.PaidOn != nil {
		rows, err = r.pool.Query(ctx, listOrdersPaidOnSQL, *filter.PaidOn)
	} else {
		rows, err = r.pool.Query(ctx, listOrdersSQL)
	}
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListByCashier returns a cashier's orders with line items and products
// loaded, for the cashier detail view.
func (r *OrderRepository) ListByCashier(ctx context.Context, cashierID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByCashierSQL, cashierID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for cashier %d: %w", cashierID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for cashier %d: %w", cashierID, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	itemsByOrder, err := r.loadLineItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
	}
	return orders, nil
}

// Delete removes the order; its line items go with it via ON DELETE CASCADE.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// loadLineItems fetches the line items for the given order ids, keyed by
// order id, with each item's product loaded.
func (r *OrderRepository) loadLineItems(ctx context.Context, orderIDs []int64) (map[int64][]order.LineItem, error) {
	rows, err := r.pool.Query(ctx, listLineItemsSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("loading line items: %w", err)
	}
	defer rows.Close()

	itemsByOrder := make(map[int64][]order.LineItem)
	for rows.Next() {
		var (
			item    order.LineItem
			orderID int64
			p       product.Product
			price   decimal.Decimal
		)
		err := rows.Scan(
			&item.ID, &orderID, &item.ProductID, &item.Quantity,
			&p.Name, &p.Brand, &price, &p.CategoryID, &p.Category, &p.SKU,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning line item: %w", err)
		}
		p.ID = item.ProductID
		p.Price = price
		item.Product = &p
		itemsByOrder[orderID] = append(itemsByOrder[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading line items: %w", err)
	}
	return itemsByOrder, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.CashierID, &o.PaidOnDate)
	return o, err
}
