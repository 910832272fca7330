// Package health implements the liveness and readiness endpoints. Critical
// checks (Postgres) gate readiness; non-critical checks (Redis, Kafka) are
// reported but never fail the probe.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Checker probes one dependency.
type Checker func(ctx context.Context) error

// Status is the reported state of the service or one of its checks.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Response is the JSON body returned by the health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
	Critical bool   `json:"critical"`
}

type registration struct {
	checker  Checker
	critical bool
}

// Handler serves the liveness and readiness endpoints.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]registration
}

func NewHandler() *Handler {
	return &Handler{checkers: make(map[string]registration)}
}

// RegisterCritical adds a checker whose failure marks the service as not
// ready.
func (h *Handler) RegisterCritical(name string, checker Checker) {
	h.register(name, checker, true)
}

// RegisterNonCritical adds a checker that is reported but never affects
// readiness.
func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.register(name, checker, false)
}

func (h *Handler) register(name string, checker Checker, critical bool) {
	h.mu.Lock()
	h.checkers[name] = registration{checker: checker, critical: critical}
	h.mu.Unlock()
}

// snapshot copies the registrations so checks run without holding the lock.
func (h *Handler) snapshot() map[string]registration {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]registration, len(h.checkers))
	for name, reg := range h.checkers {
		out[name] = reg
	}
	return out
}

// runChecks probes every registered dependency and reports the overall
// status alongside per-check results.
func (h *Handler) runChecks(ctx context.Context) (Status, map[string]CheckResult) {
	regs := h.snapshot()
	checks := make(map[string]CheckResult, len(regs))
	overall := StatusUp

	for name, reg := range regs {
		result := CheckResult{Status: StatusUp, Critical: reg.critical}
		if err := reg.checker(ctx); err != nil {
			result.Status = StatusDown
			result.Error = err.Error()
			if reg.critical {
				overall = StatusDown
			}
		}
		checks[name] = result
	}
	return overall, checks
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// LivenessHandler answers 200 while the process runs.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler probes all dependencies and answers 200 when every
// critical check passes, 503 otherwise.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		overall, checks := h.runChecks(ctx)

		status := http.StatusOK
		if overall == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeResponse(w, status, Response{
			Status:    overall,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
	}
}
