package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/shopfloor/storefront/internal/domain/product"
)

// relatedLimit caps the "related products" strip on a product page.
const relatedLimit = 4

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	priceRange := product.PriceRange(q.Get("price_range"))
	if !priceRange.Valid() {
		writeError(w, http.StatusBadRequest, "unknown price_range value")
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))

	result, err := h.products.List(r.Context(), product.Filter{
		Query:      q.Get("query"),
		Category:   q.Get("category"),
		PriceRange: priceRange,
		Page:       page,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("products", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for i := range result.Products {
						h.encodeProduct(e, &result.Products[i])
					}
				})
			})
			e.Field("total", func(e *jx.Encoder) { e.Int(result.Total) })
			e.Field("page", func(e *jx.Encoder) { e.Int(result.Page) })
			e.Field("page_size", func(e *jx.Encoder) { e.Int(result.PageSize) })
		})
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	// The wishlist marker is only meaningful for authenticated browsers.
	saved := false
	if id, ok := h.optionalIdentity(r); ok {
		saved, err = h.wishlists.Contains(r.Context(), id.UserID, p.ID)
		if err != nil {
			respondError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("product", func(e *jx.Encoder) { h.encodeProduct(e, p) })
			e.Field("in_wishlist", func(e *jx.Encoder) { e.Bool(saved) })
		})
	})
}

func (h *Handler) relatedProducts(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	related, err := h.products.Related(r.Context(), p, relatedLimit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range related {
				h.encodeProduct(e, &related[i])
			}
		})
	})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.Categories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, c := range categories {
				e.Obj(func(e *jx.Encoder) {
					e.Field("slug", func(e *jx.Encoder) { e.Str(c.Slug) })
					e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
				})
			}
		})
	})
}

type productRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       string       `json:"price"`
	Category    string       `json:"category"`
	Stock       int          `json:"stock"`
	Image       productImage `json:"image"`
}

type productImage struct {
	Thumbnail string `json:"thumbnail"`
	Mobile    string `json:"mobile"`
	Tablet    string `json:"tablet"`
	Desktop   string `json:"desktop"`
}

// parsePrice converts the request's decimal string, rejecting garbage with a
// field-level validation error.
func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &product.InvalidFieldError{Field: "price", Reason: "not a valid decimal"}
	}
	return d, nil
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.catalog.Create(r.Context(), id.UserID, id.Staff, product.CreateRequest{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Category:    req.Category,
		Stock:       req.Stock,
		Image:       product.Image(req.Image),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		h.encodeProduct(e, p)
	})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.catalog.Update(r.Context(), id.UserID, id.Staff, r.PathValue("slug"), product.UpdateRequest{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Category:    req.Category,
		Stock:       req.Stock,
		Image:       product.Image(req.Image),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		h.encodeProduct(e, p)
	})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	if err := h.catalog.Delete(r.Context(), id.UserID, id.Staff, r.PathValue("slug")); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// encodeProduct writes one product object, prefixing image paths with the
// configured base URL.
func (h *Handler) encodeProduct(e *jx.Encoder, p *product.Product) {
	base := h.imageBaseURL
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("slug", func(e *jx.Encoder) { e.Str(p.Slug) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(p.Price.StringFixed(2))) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
		e.Field("stock", func(e *jx.Encoder) { e.Int(p.Stock) })
		e.Field("image", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("thumbnail", func(e *jx.Encoder) { e.Str(base + p.Image.Thumbnail) })
				e.Field("mobile", func(e *jx.Encoder) { e.Str(base + p.Image.Mobile) })
				e.Field("tablet", func(e *jx.Encoder) { e.Str(base + p.Image.Tablet) })
				e.Field("desktop", func(e *jx.Encoder) { e.Str(base + p.Image.Desktop) })
			})
		})
	})
}
