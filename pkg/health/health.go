// Package health implements liveness and readiness probes in the Kubernetes
// style. Checks are probed periodically by a single background goroutine;
// a check flips to unhealthy only after failing several times in a row, so a
// single slow database ping does not take the service out of rotation.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// failureThreshold is how many consecutive failures mark a check unhealthy.
// A single success restores it.
const failureThreshold = 3

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	mu      sync.Mutex
	fails   int
	healthy bool
	lastErr error
}

func newCheck(name string, timeout time.Duration, fn CheckFunc) *check {
	return &check{
		name:    name,
		timeout: timeout,
		fn:      fn,
		healthy: true,
	}
}

func (c *check) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	err := c.fn(ctx)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	if err != nil {
		c.fails++
		if c.fails >= failureThreshold {
			c.healthy = false
		}
		return
	}
	c.fails = 0
	c.healthy = true
}

// status returns the current verdict and the error behind it, if any.
func (c *check) status() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy, c.lastErr
}

// Health tracks a service's probes and serves the /livez and /readyz
// endpoints. The zero state is not ready; call SetReady(true) once startup
// finishes and SetReady(false) when shutdown begins.
type Health struct {
	mu        sync.Mutex
	liveness  []*check
	readiness []*check
	ready     bool
	cancel    context.CancelFunc
}

func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a probe for /livez. Liveness failures mean the
// process itself is broken and should be restarted.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newCheck(name, timeout, fn))
}

// AddReadinessCheck registers a probe for /readyz. Readiness failures mean
// the service should be taken out of rotation until a dependency recovers.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newCheck(name, timeout, fn))
}

// Start probes every registered check once immediately and then at the given
// interval, until ctx is cancelled or Stop is called. Register all checks
// before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := make([]*check, 0, len(h.liveness)+len(h.readiness))
	checks = append(checks, h.liveness...)
	checks = append(checks, h.readiness...)
	h.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			for _, c := range checks {
				c.probe(ctx)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop halts the probe loop. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate.
func (h *Health) SetReady(ready bool) {
	h.mu.Lock()
	h.ready = ready
	h.mu.Unlock()
}

// IsReady reports whether the service should receive traffic: the manual
// gate is open and every readiness probe is passing.
func (h *Health) IsReady() bool {
	h.mu.Lock()
	ready := h.ready
	checks := h.readiness
	h.mu.Unlock()

	if !ready {
		return false
	}
	for _, c := range checks {
		if ok, _ := c.status(); !ok {
			return false
		}
	}
	return true
}

// LiveEndpoint serves the liveness probe. 200 when all liveness checks pass,
// 503 otherwise; the body carries every check's verdict either way.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	checks := h.liveness
	h.mu.Unlock()

	verdicts, healthy := statuses(checks)
	writeProbe(w, verdicts, healthy)
}

// ReadyEndpoint serves the readiness probe. 200 only when the manual gate is
// open and all readiness checks pass.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	ready := h.ready
	checks := h.readiness
	h.mu.Unlock()

	verdicts, healthy := statuses(checks)
	if !ready {
		verdicts["service"] = "not ready"
		healthy = false
	}
	writeProbe(w, verdicts, healthy)
}

// statuses collects every check's verdict: "ok" when passing, the last error
// (or "unhealthy") when not.
func statuses(checks []*check) (map[string]string, bool) {
	verdicts := make(map[string]string, len(checks))
	healthy := true
	for _, c := range checks {
		ok, err := c.status()
		switch {
		case ok:
			verdicts[c.name] = "ok"
		case err != nil:
			verdicts[c.name] = err.Error()
			healthy = false
		default:
			verdicts[c.name] = "unhealthy"
			healthy = false
		}
	}
	return verdicts, healthy
}

func writeProbe(w http.ResponseWriter, checks map[string]string, healthy bool) {
	type probeResponse struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}

	resp := probeResponse{Status: "ok", Checks: checks}
	code := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
