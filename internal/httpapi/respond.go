package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/shopfloor/storefront/internal/domain/cart"
	"github.com/shopfloor/storefront/internal/domain/order"
	"github.com/shopfloor/storefront/internal/domain/product"
	"github.com/shopfloor/storefront/internal/domain/user"
	"github.com/shopfloor/storefront/internal/domain/wishlist"
)

// maxBodyBytes caps request body size; the API only accepts small JSON
// documents.
const maxBodyBytes = 1 << 20

// writeJSON encodes a response body with jx and writes it with the status.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the standard {code, message} error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// decodeBody unmarshals a JSON request body into dst, enforcing the size cap.
// A malformed body is reported to the client as 400 and decodeBody returns
// false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

// respondError maps domain errors to HTTP status codes. Anything unmapped is
// logged and reported as a generic 500 so internals never leak to clients.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalidQty *cart.InvalidQuantityError
		badProduct *product.InvalidFieldError
		badAccount *user.InvalidFieldError
	)

	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, wishlist.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, user.ErrUnauthenticated),
		errors.Is(err, user.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, product.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, product.ErrSlugTaken):
		writeError(w, http.StatusConflict, err.Error())

	case errors.As(err, &invalidQty),
		errors.As(err, &badProduct),
		errors.As(err, &badAccount):
		writeError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		span := trace.SpanFromContext(r.Context())
		span.RecordError(err)
		span.SetStatus(codes.Error, "internal error")
		zctx.From(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
