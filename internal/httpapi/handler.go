// Package httpapi exposes the storefront over JSON HTTP. Handlers translate
// requests into domain service calls and domain results (or errors) back into
// responses; no business rules live here.
package httpapi

import (
	"net/http"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/shopfloor/storefront/internal/domain/cart"
	"github.com/shopfloor/storefront/internal/domain/order"
	"github.com/shopfloor/storefront/internal/domain/product"
	"github.com/shopfloor/storefront/internal/domain/user"
	"github.com/shopfloor/storefront/internal/domain/wishlist"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string

	// MeterProvider backs the handler's business metrics. Nil means no-op.
	MeterProvider metric.MeterProvider
}

// Handler implements the storefront HTTP API.
type Handler struct {
	products     product.Repository
	catalog      *product.Service
	carts        *cart.Service
	orders       *order.Service
	wishlists    *wishlist.Service
	users        *user.Service
	tokens       *user.TokenIssuer
	imageBaseURL string

	ordersPlaced metric.Int64Counter
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	products product.Repository,
	catalog *product.Service,
	carts *cart.Service,
	orders *order.Service,
	wishlists *wishlist.Service,
	users *user.Service,
	tokens *user.TokenIssuer,
) *Handler {
	mp := cfg.MeterProvider
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter("github.com/shopfloor/storefront/internal/httpapi")
	ordersPlaced, _ := meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders created through checkout"),
	)

	return &Handler{
		products:     products,
		catalog:      catalog,
		carts:        carts,
		orders:       orders,
		wishlists:    wishlists,
		users:        users,
		tokens:       tokens,
		imageBaseURL: cfg.ImageBaseURL,
		ordersPlaced: ordersPlaced,
	}
}

// Routes registers every API route on the mux. Mutating and user-scoped
// routes are wrapped with the authentication middleware.
func (h *Handler) Routes(mux *http.ServeMux) {
	authed := h.requireAuth

	// Catalog.
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{slug}", h.getProduct)
	mux.HandleFunc("GET /api/products/{slug}/related", h.relatedProducts)
	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.Handle("POST /api/products", authed(h.createProduct))
	mux.Handle("PUT /api/products/{slug}", authed(h.updateProduct))
	mux.Handle("DELETE /api/products/{slug}", authed(h.deleteProduct))

	// Cart.
	mux.Handle("GET /api/cart", authed(h.getCart))
	mux.Handle("POST /api/cart/items", authed(h.addCartItem))
	mux.Handle("PUT /api/cart/items/{id}", authed(h.updateCartItem))
	mux.Handle("DELETE /api/cart/items/{id}", authed(h.removeCartItem))

	// Orders.
	mux.Handle("POST /api/checkout", authed(h.checkout))
	mux.Handle("GET /api/orders", authed(h.listOrders))
	mux.Handle("GET /api/orders/{id}", authed(h.getOrder))

	// Wishlist.
	mux.Handle("GET /api/wishlist", authed(h.getWishlist))
	mux.Handle("POST /api/wishlist", authed(h.addWishlistItem))
	mux.Handle("DELETE /api/wishlist/{productID}", authed(h.removeWishlistItem))

	// Accounts.
	mux.HandleFunc("POST /api/register", h.register)
	mux.HandleFunc("POST /api/login", h.login)
}
