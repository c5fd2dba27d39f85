package httpapi

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/shopfloor/storefront/internal/domain/product"
)

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	entries, err := h.wishlists.List(r.Context(), id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Resolve product details for display; entries whose product vanished
	// from the catalog are skipped rather than failing the whole page.
	type row struct {
		savedAt time.Time
		product *product.Product
	}
	rows := make([]row, 0, len(entries))
	for _, entry := range entries {
		p, err := h.products.GetByID(r.Context(), entry.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				continue
			}
			respondError(w, r, err)
			return
		}
		rows = append(rows, row{savedAt: entry.CreatedAt, product: p})
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, row := range rows {
				e.Obj(func(e *jx.Encoder) {
					e.Field("saved_at", func(e *jx.Encoder) { e.Str(row.savedAt.Format(time.RFC3339)) })
					e.Field("product", func(e *jx.Encoder) { h.encodeProduct(e, row.product) })
				})
			}
		})
	})
}

type addWishlistRequest struct {
	ProductID string `json:"product_id"`
}

func (h *Handler) addWishlistItem(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req addWishlistRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.wishlists.Add(r.Context(), id.UserID, req.ProductID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("product_id", func(e *jx.Encoder) { e.Str(req.ProductID) })
			e.Field("created", func(e *jx.Encoder) { e.Bool(created) })
		})
	})
}

func (h *Handler) removeWishlistItem(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	if err := h.wishlists.Remove(r.Context(), id.UserID, r.PathValue("productID")); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
