package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shopfloor/storefront/internal/domain/order"
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

// lockCartSQL reads the user's cart joined with live prices and locks the
// cart rows. The FOR UPDATE OF lines serializes concurrent checkouts for the
// same user: the second transaction blocks here until the first commits, then
// sees no rows and reports an empty cart instead of creating a second order.
const lockCartSQL = `SELECT l.id, l.product_id, l.quantity, p.price
FROM cart_lines l JOIN products p ON p.id = l.product_id
WHERE l.user_id = $1
ORDER BY l.id
FOR UPDATE OF l`

const insertOrderSQL = `INSERT INTO orders (id, user_id, total)
	VALUES ($1, $2, $3) RETURNING created_at`

const insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, price)
	VALUES ($1, $2, $3, $4) RETURNING id`

// FinalizeCart converts the user's entire cart into one order inside a single
// transaction: read lines with live prices, compute the total, insert the
// order and its items with those prices frozen, delete the cart lines, and
// commit. Any failure rolls the whole sequence back, leaving the cart intact
// and no order behind.
func (r *OrderRepository) FinalizeCart(ctx context.Context, orderID, userID string) (*order.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("beginning checkout transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	rows, err := tx.Query(ctx, lockCartSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("reading cart for user %q: %w", userID, err)
	}

	var lineIDs []int64
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Item, error) {
		var (
			lineID int64
			it     order.Item
		)
		if err := row.Scan(&lineID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return it, err
		}
		lineIDs = append(lineIDs, lineID)
		return it, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning cart lines: %w", err)
	}
	if len(items) == 0 {
		return nil, order.ErrEmptyCart
	}

	total := decimal.Zero
	for i := range items {
		items[i].OrderID = orderID
		total = total.Add(items[i].Subtotal())
	}
	total = total.Round(2)

	o := &order.Order{
		ID:     orderID,
		UserID: userID,
		Total:  total,
		Items:  items,
	}
	if err := tx.QueryRow(ctx, insertOrderSQL, o.ID, o.UserID, o.Total).Scan(&o.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting order %q: %w", orderID, err)
	}

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(insertOrderItemSQL, it.OrderID, it.ProductID, it.Quantity, it.Price)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range items {
		if err := results.QueryRow().Scan(&o.Items[i].ID); err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("inserting order item %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("closing order item batch: %w", err)
	}

	// Delete exactly the rows read and locked above, not everything the user
	// owns: a line inserted by a concurrent add commits after this transaction
	// and must survive the checkout rather than vanish without an order item.
	if _, err := tx.Exec(ctx, "DELETE FROM cart_lines WHERE id = ANY($1)", lineIDs); err != nil {
		return nil, fmt.Errorf("clearing cart for user %q: %w", userID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing checkout: %w", err)
	}
	return o, nil
}

const listOrdersSQL = `SELECT id, user_id, total, created_at
FROM orders WHERE user_id = $1
ORDER BY created_at DESC, id`

// ListByUser returns the user's orders most-recent-first, without items.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		var o order.Order
		err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.CreatedAt)
		return o, err
	})
}

const getOrderSQL = `SELECT id, user_id, total, created_at
FROM orders WHERE id = $2 AND user_id = $1`

const getOrderItemsSQL = `SELECT id, order_id, product_id, quantity, price
FROM order_items WHERE order_id = $1
ORDER BY id`

// GetByID returns the user's order with its items. The user scope in the
// WHERE clause makes foreign orders indistinguishable from missing ones.
func (r *OrderRepository) GetByID(ctx context.Context, userID, orderID string) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, getOrderSQL, userID, orderID).
		Scan(&o.ID, &o.UserID, &o.Total, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", orderID, err)
	}

	rows, err := r.pool.Query(ctx, getOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing items for order %q: %w", orderID, err)
	}

	o.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Item, error) {
		var it order.Item
		err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning items for order %q: %w", orderID, err)
	}

	return &o, nil
}
