// Package cart implements the mutable shopping cart: one line per
// (user, product) pair, with quantities merged on repeated adds.
package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrLineNotFound is returned when a cart line does not exist or belongs to a
// different user. The two cases are indistinguishable on purpose so callers
// cannot probe for other users' lines.
var ErrLineNotFound = errors.New("cart line not found")

// Line is one product a user intends to buy. UnitPrice and ProductName are
// read live from the catalog on every fetch, never stored in the cart; the
// price is only frozen when an order is finalized.
type Line struct {
	ID          int64
	UserID      string
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	CreatedAt   time.Time
}

// Subtotal is quantity times the live unit price.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Repository defines persistence operations for cart lines. Add must rely on
// the store's (user_id, product_id) uniqueness so concurrent adds merge into
// one row instead of duplicating it.
type Repository interface {
	// Add upserts a line: inserts with quantity=delta, or increments an
	// existing line's quantity by delta. Returns the resulting line with live
	// product data.
	Add(ctx context.Context, userID, productID string, delta int) (*Line, error)
	// SetQuantity overwrites the quantity of the user's line. Returns
	// ErrLineNotFound for missing or foreign lines.
	SetQuantity(ctx context.Context, userID string, lineID int64, quantity int) (*Line, error)
	// Remove deletes the user's line. Returns ErrLineNotFound for missing or
	// foreign lines.
	Remove(ctx context.Context, userID string, lineID int64) error
	// List returns the user's lines in insertion order, each joined with the
	// current product price and name.
	List(ctx context.Context, userID string) ([]Line, error)
}
