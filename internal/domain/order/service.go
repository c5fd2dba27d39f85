package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Service encapsulates order finalization and retrieval.
type Service struct {
	orders Repository
}

// NewService creates an order Service backed by the given repository.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// Checkout converts the user's entire cart into one order. The repository
// performs the read-compute-write-clear sequence inside a single transaction,
// freezing each line's price into an order item and emptying the cart. An
// empty cart yields ErrEmptyCart and creates nothing.
func (s *Service) Checkout(ctx context.Context, userID string) (*Order, error) {
	o, err := s.orders.FinalizeCart(ctx, uuid.New().String(), userID)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			return nil, ErrEmptyCart
		}
		return nil, errors.Wrap(err, "finalize cart")
	}
	return o, nil
}

// History returns the user's orders, most recent first.
func (s *Service) History(ctx context.Context, userID string) ([]Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// Get returns one of the user's orders with its items. Orders belonging to
// other users are reported as ErrNotFound, never as a permission error.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get order")
	}
	return o, nil
}
