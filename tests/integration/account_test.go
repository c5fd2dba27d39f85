//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	username := uniqueUser("account")

	resp := doRequest(t, http.MethodPost, "/api/register", "", map[string]any{
		"username": username,
		"password": "integration-pw-1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	session := decodeJSON[sessionResponse](t, resp)
	resp.Body.Close()
	if session.Token == "" {
		t.Fatal("register returned an empty token")
	}

	resp = doRequest(t, http.MethodPost, "/api/login", "", map[string]any{
		"username": username,
		"password": "integration-pw-1",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	if decodeJSON[sessionResponse](t, resp).Token == "" {
		t.Fatal("login returned an empty token")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	username := uniqueUser("dup")
	registerUser(t, username)

	resp := doRequest(t, http.MethodPost, "/api/register", "", map[string]any{
		"username": username,
		"password": "another-password",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	username := uniqueUser("login")
	registerUser(t, username)

	resp := doRequest(t, http.MethodPost, "/api/login", "", map[string]any{
		"username": username,
		"password": "not-the-password",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestWishlistFlow(t *testing.T) {
	token := registerUser(t, uniqueUser("wish"))
	pid := lookupProductID(t, "ceramic-planter")

	resp := doRequest(t, http.MethodPost, "/api/wishlist", token, map[string]any{
		"product_id": pid,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", resp.StatusCode)
	}

	// Re-adding is idempotent.
	resp = doRequest(t, http.MethodPost, "/api/wishlist", token, map[string]any{
		"product_id": pid,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("re-add: expected 200, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, "/api/wishlist", token, nil)
	saved := decodeJSON[[]wishlistEntryResponse](t, resp)
	resp.Body.Close()
	if len(saved) != 1 || saved[0].Product.Slug != "ceramic-planter" {
		t.Fatalf("unexpected wishlist contents: %+v", saved)
	}
	if saved[0].SavedAt == "" {
		t.Error("saved_at missing from wishlist entry")
	}

	// The product page reflects wishlist membership.
	resp = doRequest(t, http.MethodGet, "/api/products/ceramic-planter", token, nil)
	page := decodeJSON[productPageResponse](t, resp)
	resp.Body.Close()
	if !page.InWishlist {
		t.Error("expected in_wishlist=true after adding")
	}

	resp = doRequest(t, http.MethodDelete, "/api/wishlist/"+pid, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("remove: expected 204, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodDelete, "/api/wishlist/"+pid, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("remove again: expected 404, got %d", resp.StatusCode)
	}
}
