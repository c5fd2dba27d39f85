package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shopfloor/storefront/internal/domain/product"
)

// InvalidQuantityError indicates a non-positive add delta.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0, got %d", e.Quantity)
}

// Service encapsulates cart business rules on top of the line repository.
type Service struct {
	lines    Repository
	products product.Repository
}

// NewService creates a cart Service with the required dependencies.
func NewService(lines Repository, products product.Repository) *Service {
	return &Service{
		lines:    lines,
		products: products,
	}
}

// Add puts delta units of a product into the user's cart. A second add of the
// same product increments the existing line instead of creating another one.
func (s *Service) Add(ctx context.Context, userID, productID string, delta int) (*Line, error) {
	if delta <= 0 {
		return nil, &InvalidQuantityError{Quantity: delta}
	}

	// Validate the product before touching the cart so a bad ID surfaces as
	// a catalog error, not a foreign key failure.
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	line, err := s.lines.Add(ctx, userID, productID, delta)
	if err != nil {
		return nil, errors.Wrap(err, "add cart line")
	}
	return line, nil
}

// SetQuantity overwrites a line's quantity. A quantity of zero or below
// removes the line entirely; the returned line is nil in that case.
func (s *Service) SetQuantity(ctx context.Context, userID string, lineID int64, quantity int) (*Line, error) {
	if quantity <= 0 {
		if err := s.lines.Remove(ctx, userID, lineID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	line, err := s.lines.SetQuantity(ctx, userID, lineID, quantity)
	if err != nil {
		return nil, err
	}
	return line, nil
}

// Remove deletes a single line from the user's cart.
func (s *Service) Remove(ctx context.Context, userID string, lineID int64) error {
	return s.lines.Remove(ctx, userID, lineID)
}

// List returns the user's cart lines in insertion order.
func (s *Service) List(ctx context.Context, userID string) ([]Line, error) {
	return s.lines.List(ctx, userID)
}

// Total sums quantity times live product price across the user's lines.
// Because prices are read live, the total can drift between page loads when
// the catalog changes; it is only frozen at checkout.
func (s *Service) Total(ctx context.Context, userID string) (decimal.Decimal, error) {
	lines, err := s.lines.List(ctx, userID)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "list cart lines")
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total, nil
}
