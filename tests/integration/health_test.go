//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestHealthProbes(t *testing.T) {
	t.Run("livez", func(t *testing.T) {
		resp := doGet(t, "/livez")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %q", ct)
		}

		body := decodeJSON[healthResponse](t, resp)
		if body.Status != "ok" {
			t.Fatalf("status: got %q, want ok", body.Status)
		}
		for _, name := range []string{"goroutines", "heap"} {
			if body.Checks[name] != "ok" {
				t.Errorf("%s check: got %q, want ok", name, body.Checks[name])
			}
		}
	})

	t.Run("readyz", func(t *testing.T) {
		resp := doGet(t, "/readyz")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		// The database probe must be wired and passing once the API is up.
		body := decodeJSON[healthResponse](t, resp)
		if body.Status != "ok" {
			t.Fatalf("status: got %q, want ok", body.Status)
		}
		if body.Checks["postgres"] != "ok" {
			t.Errorf("postgres check: got %q, want ok", body.Checks["postgres"])
		}
	})
}
