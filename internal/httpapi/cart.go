package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/shopfloor/storefront/internal/domain/cart"
)

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	lines, err := h.carts.List(r.Context(), id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	total, err := h.carts.Total(r.Context(), id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("items", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for i := range lines {
						encodeCartLine(e, &lines[i])
					}
				})
			})
			e.Field("total", func(e *jx.Encoder) { e.Num(jx.Num(total.StringFixed(2))) })
		})
	})
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity,omitempty"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req addCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Quantity defaults to one, matching an "add to cart" button press.
	delta := 1
	if req.Quantity != nil {
		delta = *req.Quantity
	}

	line, err := h.carts.Add(r.Context(), id.UserID, req.ProductID, delta)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeCartLine(e, line)
	})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	lineID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed cart item id")
		return
	}

	var req updateCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	line, err := h.carts.SetQuantity(r.Context(), id.UserID, lineID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	// A non-positive quantity removed the line.
	if line == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartLine(e, line)
	})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	lineID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed cart item id")
		return
	}

	if err := h.carts.Remove(r.Context(), id.UserID, lineID); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func encodeCartLine(e *jx.Encoder, l *cart.Line) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(l.ID) })
		e.Field("product_id", func(e *jx.Encoder) { e.Str(l.ProductID) })
		e.Field("product_name", func(e *jx.Encoder) { e.Str(l.ProductName) })
		e.Field("unit_price", func(e *jx.Encoder) { e.Num(jx.Num(l.UnitPrice.StringFixed(2))) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
		e.Field("subtotal", func(e *jx.Encoder) { e.Num(jx.Num(l.Subtotal().StringFixed(2))) })
	})
}
