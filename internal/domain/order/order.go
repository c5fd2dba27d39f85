// Package order implements order finalization: the atomic conversion of a
// user's cart into an immutable order with price snapshots.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order operations.
var (
	// ErrNotFound is returned when an order does not exist or belongs to a
	// different user; the two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("order not found")
	// ErrEmptyCart is returned when checkout is attempted with no cart lines.
	// It is user-correctable, not fatal.
	ErrEmptyCart = errors.New("cart is empty")
)

// Order is an immutable record of a completed purchase. Total is fixed at
// creation time and never recomputed from live product prices.
type Order struct {
	ID        string
	UserID    string
	Total     decimal.Decimal
	CreatedAt time.Time
	Items     []Item
}

// Item is a frozen snapshot of one cart line at the moment of purchase.
// Price is copied from the product at checkout and never changes afterwards,
// regardless of later catalog edits.
type Item struct {
	ID        int64
	OrderID   string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Subtotal is the frozen price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Repository defines persistence operations for orders.
//
// FinalizeCart must execute as a single all-or-nothing transaction: read the
// user's cart lines with live prices, insert the order and its items, and
// delete the cart lines. A mid-sequence failure must leave the cart intact
// and no order behind. Implementations must also serialize concurrent
// finalizations for the same user (row locks suffice) so that two racing
// checkouts cannot both consume the same cart; the loser observes an empty
// cart and returns ErrEmptyCart.
type Repository interface {
	FinalizeCart(ctx context.Context, orderID, userID string) (*Order, error)
	// ListByUser returns the user's orders most-recent-first, without items.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// GetByID returns the user's order with its items, or ErrNotFound.
	GetByID(ctx context.Context, userID, orderID string) (*Order, error)
}
