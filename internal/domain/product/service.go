package product

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvalidFieldError indicates a malformed value in a create/update request.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CreateRequest holds the input for adding a product to the catalog.
type CreateRequest struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Stock       int
	Image       Image
}

// UpdateRequest holds the input for editing a product. Zero-value fields are
// still applied; callers send the full desired state.
type UpdateRequest struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Stock       int
	Image       Image
}

// Service encapsulates catalog management rules: validation, slug assignment,
// and creator-or-staff ownership checks.
type Service struct {
	products Repository
}

// NewService creates a catalog Service backed by the given repository.
func NewService(products Repository) *Service {
	return &Service{products: products}
}

// Create validates the request and inserts a new product owned by userID.
// Only staff may add to the catalog; editing an existing product follows the
// looser creator-or-staff rule instead.
func (s *Service) Create(ctx context.Context, userID string, staff bool, req CreateRequest) (*Product, error) {
	if !staff {
		return nil, ErrPermissionDenied
	}
	if err := validateFields(req.Name, req.Price, req.Stock); err != nil {
		return nil, err
	}

	p := &Product{
		ID:          uuid.New().String(),
		Slug:        Slugify(req.Name),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		CreatedBy:   userID,
		Image:       req.Image,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return p, nil
}

// Update applies req to the product identified by slug. Only the creator or a
// staff user may edit; everyone else gets ErrPermissionDenied.
func (s *Service) Update(ctx context.Context, userID string, staff bool, slug string, req UpdateRequest) (*Product, error) {
	p, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !staff && p.CreatedBy != userID {
		return nil, ErrPermissionDenied
	}
	if err := validateFields(req.Name, req.Price, req.Stock); err != nil {
		return nil, err
	}

	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.Category = req.Category
	p.Stock = req.Stock
	p.Image = req.Image

	if err := s.products.Update(ctx, p); err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	return p, nil
}

// Delete removes the product identified by slug, subject to the same
// creator-or-staff rule as Update.
func (s *Service) Delete(ctx context.Context, userID string, staff bool, slug string) error {
	p, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if !staff && p.CreatedBy != userID {
		return ErrPermissionDenied
	}
	if err := s.products.Delete(ctx, p.ID); err != nil {
		return errors.Wrap(err, "delete product")
	}
	return nil
}

func validateFields(name string, price decimal.Decimal, stock int) error {
	if strings.TrimSpace(name) == "" {
		return &InvalidFieldError{Field: "name", Reason: "must not be empty"}
	}
	if price.IsNegative() {
		return &InvalidFieldError{Field: "price", Reason: "must not be negative"}
	}
	if stock < 0 {
		return &InvalidFieldError{Field: "stock", Reason: "must not be negative"}
	}
	return nil
}

// Slugify converts a product name into a URL-safe slug: lowercase ASCII
// letters and digits, runs of anything else collapsed to single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	hyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		default:
			hyphen = true
		}
	}
	return b.String()
}
