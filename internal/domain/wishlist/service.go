package wishlist

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/shopfloor/storefront/internal/domain/product"
)

// Service wraps the wishlist repository with product validation.
type Service struct {
	entries  Repository
	products product.Repository
}

// NewService creates a wishlist Service with the required dependencies.
func NewService(entries Repository, products product.Repository) *Service {
	return &Service{
		entries:  entries,
		products: products,
	}
}

// Add saves a product to the user's wishlist. Re-adding is idempotent;
// created reports whether the entry is new.
func (s *Service) Add(ctx context.Context, userID, productID string) (created bool, err error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return false, err
	}

	created, err = s.entries.Add(ctx, userID, productID)
	if err != nil {
		return false, errors.Wrap(err, "add wishlist entry")
	}
	return created, nil
}

// Remove deletes a product from the user's wishlist.
func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	return s.entries.Remove(ctx, userID, productID)
}

// List returns the user's saved products, most recent first.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	return s.entries.List(ctx, userID)
}

// Contains reports whether the product is already saved by the user.
func (s *Service) Contains(ctx context.Context, userID, productID string) (bool, error) {
	return s.entries.Contains(ctx, userID, productID)
}
