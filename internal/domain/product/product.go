// Package product defines the catalog entities and the operations the rest of
// the application performs against them.
package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog operations.
var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrSlugTaken is returned when creating a product whose slug is already in use.
	ErrSlugTaken = errors.New("product slug already in use")
	// ErrPermissionDenied is returned when a user attempts to modify a product
	// they do not own and is not a staff member.
	ErrPermissionDenied = errors.New("permission denied")
)

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string
	Slug        string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Stock       int
	CreatedBy   string
	CreatedAt   time.Time
	Image       Image
}

// Image holds responsive image URLs for a product.
type Image struct {
	Thumbnail string
	Mobile    string
	Tablet    string
	Desktop   string
}

// Category groups products for browsing and filtering.
type Category struct {
	Slug string
	Name string
}

// PriceRange is a browse-filter bucket over product prices.
type PriceRange string

const (
	PriceRangeAny       PriceRange = ""
	PriceRangeUnder100  PriceRange = "0-100"
	PriceRange100To500  PriceRange = "100-500"
	PriceRange500To1000 PriceRange = "500-1000"
	PriceRangeAbove1000 PriceRange = "1000+"
)

// Valid reports whether r is one of the supported buckets.
func (r PriceRange) Valid() bool {
	switch r {
	case PriceRangeAny, PriceRangeUnder100, PriceRange100To500, PriceRange500To1000, PriceRangeAbove1000:
		return true
	}
	return false
}

// DefaultPageSize is the number of products per catalog page.
const DefaultPageSize = 12

// Filter narrows and paginates a catalog listing. The zero value lists
// everything, first page.
type Filter struct {
	// Query matches case-insensitively against name and description.
	Query string
	// Category restricts results to a category slug.
	Category string
	// PriceRange restricts results to a price bucket.
	PriceRange PriceRange
	// Page is 1-based; values below 1 are treated as 1.
	Page int
	// PageSize defaults to DefaultPageSize when not positive.
	PageSize int
}

// Page holds one page of listing results together with the total match count.
type Page struct {
	Products []Product
	Total    int
	Page     int
	PageSize int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context, f Filter) (*Page, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	// Related returns up to limit products sharing a category with p,
	// excluding p itself.
	Related(ctx context.Context, p *Product, limit int) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]Category, error)
}
