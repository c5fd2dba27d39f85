package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-faster/jx"

	"github.com/shopfloor/storefront/internal/domain/user"
)

// identityKey is the context key for the authenticated caller.
type identityKey struct{}

// identityFrom extracts the authenticated identity from the context. The
// second return is false for anonymous requests.
func identityFrom(ctx context.Context) (*user.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*user.Identity)
	return id, ok
}

// requireAuth wraps a handler so it only runs with a resolved user identity.
// Anonymous or invalid-token requests get 401 without reaching the handler.
func (h *Handler) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondError(w, r, user.ErrUnauthenticated)
			return
		}

		id, err := h.tokens.Verify(token)
		if err != nil {
			respondError(w, r, user.ErrUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalIdentity resolves the caller from a bearer token when one is
// present and valid. Public pages use it to personalize without demanding a
// login.
func (h *Handler) optionalIdentity(r *http.Request) (*user.Identity, bool) {
	if id, ok := identityFrom(r.Context()); ok {
		return id, true
	}
	token, ok := bearerToken(r)
	if !ok {
		return nil, false
	}
	id, err := h.tokens.Verify(token)
	if err != nil {
		return nil, false
	}
	return id, true
}

// bearerToken extracts the token from an "Authorization: Bearer ..." header.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return auth[len(prefix):], true
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, token, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeSession(e, u, token)
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, token, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeSession(e, u, token)
	})
}

func encodeSession(e *jx.Encoder, u *user.User, token string) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("token", func(e *jx.Encoder) { e.Str(token) })
		e.Field("user", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("id", func(e *jx.Encoder) { e.Str(u.ID) })
				e.Field("username", func(e *jx.Encoder) { e.Str(u.Username) })
				e.Field("email", func(e *jx.Encoder) { e.Str(u.Email) })
				e.Field("staff", func(e *jx.Encoder) { e.Bool(u.Staff) })
			})
		})
	})
}
