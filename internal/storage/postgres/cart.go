package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopfloor/storefront/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. The
// (user_id, product_id) unique constraint guarantees at most one line per
// product even under concurrent adds.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

const addCartLineSQL = `WITH line AS (
	INSERT INTO cart_lines (user_id, product_id, quantity)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, product_id)
	DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
	RETURNING id, user_id, product_id, quantity, created_at
)
SELECT l.id, l.user_id, l.product_id, p.name, p.price, l.quantity, l.created_at
FROM line l JOIN products p ON p.id = l.product_id`

// Add upserts a line for (user, product): the insert either creates the row
// with quantity=delta or increments the existing row's quantity.
func (r *CartRepository) Add(ctx context.Context, userID, productID string, delta int) (*cart.Line, error) {
	row := r.pool.QueryRow(ctx, addCartLineSQL, userID, productID, delta)

	line, err := scanCartLine(row)
	if err != nil {
		return nil, fmt.Errorf("adding cart line for user %q: %w", userID, err)
	}
	return line, nil
}

const setCartQuantitySQL = `WITH line AS (
	UPDATE cart_lines SET quantity = $3
	WHERE id = $2 AND user_id = $1
	RETURNING id, user_id, product_id, quantity, created_at
)
SELECT l.id, l.user_id, l.product_id, p.name, p.price, l.quantity, l.created_at
FROM line l JOIN products p ON p.id = l.product_id`

// SetQuantity overwrites the quantity of the user's line. The user scope in
// the WHERE clause makes foreign lines indistinguishable from missing ones.
func (r *CartRepository) SetQuantity(ctx context.Context, userID string, lineID int64, quantity int) (*cart.Line, error) {
	row := r.pool.QueryRow(ctx, setCartQuantitySQL, userID, lineID, quantity)

	line, err := scanCartLine(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrLineNotFound
		}
		return nil, fmt.Errorf("updating cart line %d: %w", lineID, err)
	}
	return line, nil
}

// Remove deletes the user's line.
func (r *CartRepository) Remove(ctx context.Context, userID string, lineID int64) error {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM cart_lines WHERE id = $2 AND user_id = $1", userID, lineID)
	if err != nil {
		return fmt.Errorf("removing cart line %d: %w", lineID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

const listCartLinesSQL = `SELECT l.id, l.user_id, l.product_id, p.name, p.price, l.quantity, l.created_at
FROM cart_lines l JOIN products p ON p.id = l.product_id
WHERE l.user_id = $1
ORDER BY l.id`

// List returns the user's lines in insertion order with live product data.
func (r *CartRepository) List(ctx context.Context, userID string) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, listCartLinesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart lines for user %q: %w", userID, err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Line, error) {
		l, err := scanCartLine(row)
		if err != nil {
			return cart.Line{}, err
		}
		return *l, nil
	})
}

func scanCartLine(row pgx.Row) (*cart.Line, error) {
	var l cart.Line
	err := row.Scan(&l.ID, &l.UserID, &l.ProductID, &l.ProductName, &l.UnitPrice, &l.Quantity, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
