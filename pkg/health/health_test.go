package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probeLive(h *Health) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	return w
}

func probeReady(h *Health) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	return w
}

func decodeProbe(t *testing.T, w *httptest.ResponseRecorder) (status string, checks map[string]string) {
	t.Helper()
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Status, body.Checks
}

func TestLiveOKWithoutChecks(t *testing.T) {
	h := New()

	w := probeLive(h)

	assert.Equal(t, http.StatusOK, w.Code)
	status, _ := decodeProbe(t, w)
	assert.Equal(t, "ok", status)
}

func TestReadyRequiresManualGate(t *testing.T) {
	h := New()

	w := probeReady(h)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	_, checks := decodeProbe(t, w)
	assert.Contains(t, checks, "service")

	h.SetReady(true)
	assert.Equal(t, http.StatusOK, probeReady(h).Code)
	assert.True(t, h.IsReady())

	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestCheckFailsAfterThreshold(t *testing.T) {
	c := newCheck("db", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})

	for i := 0; i < failureThreshold-1; i++ {
		c.probe(context.Background())
		ok, _ := c.status()
		assert.True(t, ok, "probe %d should not flip the check yet", i+1)
	}

	c.probe(context.Background())
	ok, err := c.status()
	assert.False(t, ok)
	assert.EqualError(t, err, "connection refused")
}

func TestCheckRecoversOnSuccess(t *testing.T) {
	healthy := false
	c := newCheck("db", time.Second, func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	})

	for i := 0; i < failureThreshold; i++ {
		c.probe(context.Background())
	}
	ok, _ := c.status()
	require.False(t, ok)

	healthy = true
	c.probe(context.Background())
	ok, err := c.status()
	assert.True(t, ok)
	assert.NoError(t, err)
}

func TestProbeReportsPassingChecks(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("db", time.Second, func(context.Context) error { return nil })
	h.readiness[0].probe(context.Background())

	w := probeReady(h)
	assert.Equal(t, http.StatusOK, w.Code)
	status, checks := decodeProbe(t, w)
	assert.Equal(t, "ok", status)
	assert.Equal(t, "ok", checks["db"])
}

func TestReadyEndpointReportsFailedCheck(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("db", time.Second, func(context.Context) error {
		return errors.New("no route to host")
	})

	// Drive the probe directly instead of waiting on the Start loop.
	for i := 0; i < failureThreshold; i++ {
		h.readiness[0].probe(context.Background())
	}

	w := probeReady(h)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	status, checks := decodeProbe(t, w)
	assert.Equal(t, "unhealthy", status)
	assert.Equal(t, "no route to host", checks["db"])
	assert.False(t, h.IsReady())
}

func TestStartProbesImmediately(t *testing.T) {
	probed := make(chan struct{})
	h := New()
	h.AddLivenessCheck("once", time.Second, func(context.Context) error {
		select {
		case probed <- struct{}{}:
		default:
		}
		return nil
	})

	h.Start(context.Background(), time.Hour)
	defer h.Stop()

	select {
	case <-probed:
	case <-time.After(2 * time.Second):
		t.Fatal("check was not probed after Start")
	}
}

func TestCheckTimeoutPropagates(t *testing.T) {
	c := newCheck("slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	for i := 0; i < failureThreshold; i++ {
		c.probe(context.Background())
	}
	ok, err := c.status()
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}

func TestHeapAllocCheck(t *testing.T) {
	assert.NoError(t, HeapAllocCheck(1<<40)(context.Background()))
	assert.Error(t, HeapAllocCheck(1)(context.Background()))
}

func TestDatabaseCheck(t *testing.T) {
	assert.NoError(t, DatabaseCheck(pingerFunc(func(context.Context) error {
		return nil
	}))(context.Background()))

	err := DatabaseCheck(pingerFunc(func(context.Context) error {
		return errors.New("dial tcp: refused")
	}))(context.Background())
	assert.ErrorContains(t, err, "ping database")
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
