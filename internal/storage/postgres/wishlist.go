package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopfloor/storefront/internal/domain/wishlist"
)

var _ wishlist.Repository = (*WishlistRepository)(nil)

// WishlistRepository implements wishlist.Repository backed by PostgreSQL.
type WishlistRepository struct {
	pool *pgxpool.Pool
}

// NewWishlistRepository returns a WishlistRepository that uses the given pool.
func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

const addWishlistSQL = `INSERT INTO wishlist_items (user_id, product_id)
	VALUES ($1, $2)
	ON CONFLICT (user_id, product_id) DO NOTHING`

// Add saves the product for the user; re-adding is a no-op. The command tag
// distinguishes a fresh insert from a conflict skip.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, addWishlistSQL, userID, productID)
	if err != nil {
		return false, fmt.Errorf("adding wishlist entry for user %q: %w", userID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Remove deletes the user's entry for the product.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2", userID, productID)
	if err != nil {
		return fmt.Errorf("removing wishlist entry for user %q: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return wishlist.ErrNotFound
	}
	return nil
}

const listWishlistSQL = `SELECT id, user_id, product_id, created_at
FROM wishlist_items WHERE user_id = $1
ORDER BY created_at DESC, id DESC`

// List returns the user's entries, most recently saved first.
func (r *WishlistRepository) List(ctx context.Context, userID string) ([]wishlist.Entry, error) {
	rows, err := r.pool.Query(ctx, listWishlistSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing wishlist for user %q: %w", userID, err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (wishlist.Entry, error) {
		var e wishlist.Entry
		err := row.Scan(&e.ID, &e.UserID, &e.ProductID, &e.CreatedAt)
		return e, err
	})
}

// Contains reports whether the product is on the user's wishlist.
func (r *WishlistRepository) Contains(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2)",
		userID, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking wishlist for user %q: %w", userID, err)
	}
	return exists, nil
}
