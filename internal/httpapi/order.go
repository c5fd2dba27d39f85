package httpapi

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/shopfloor/storefront/internal/domain/order"
)

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	o, err := h.orders.Checkout(r.Context(), id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.ordersPlaced.Add(r.Context(), 1)

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeOrder(e, o, true)
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	orders, err := h.orders.History(r.Context(), id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range orders {
				encodeOrder(e, &orders[i], false)
			}
		})
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	o, err := h.orders.Get(r.Context(), id.UserID, r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, o, true)
	})
}

func encodeOrder(e *jx.Encoder, o *order.Order, withItems bool) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("total", func(e *jx.Encoder) { e.Num(jx.Num(o.Total.StringFixed(2))) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(o.CreatedAt.Format(time.RFC3339)) })
		if !withItems {
			return
		}
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("product_id", func(e *jx.Encoder) { e.Str(it.ProductID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
						e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(it.Price.StringFixed(2))) })
					})
				}
			})
		})
	})
}
