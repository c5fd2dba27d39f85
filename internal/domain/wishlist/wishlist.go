// Package wishlist implements per-user product wishlists.
package wishlist

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when removing a product that is not on the user's
// wishlist.
var ErrNotFound = errors.New("wishlist entry not found")

// Entry marks one product a user saved for later.
type Entry struct {
	ID        int64
	UserID    string
	ProductID string
	CreatedAt time.Time
}

// Repository defines persistence operations for wishlist entries. Adds rely
// on the store's (user_id, product_id) uniqueness for idempotency.
type Repository interface {
	// Add saves the product for the user. Created reports whether a new entry
	// was made; adding an already-saved product is a no-op with created=false.
	Add(ctx context.Context, userID, productID string) (created bool, err error)
	// Remove deletes the user's entry for the product, or returns ErrNotFound.
	Remove(ctx context.Context, userID, productID string) error
	// List returns the user's entries, most recently saved first.
	List(ctx context.Context, userID string) ([]Entry, error)
	// Contains reports whether the product is on the user's wishlist.
	Contains(ctx context.Context, userID, productID string) (bool, error)
}
