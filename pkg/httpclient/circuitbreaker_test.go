package httpclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBreaker wires a no-retry client behind a breaker that needs three
// samples and trips at a 50% failure ratio.
func newBreaker(t *testing.T, name string, openTimeout time.Duration, handler http.HandlerFunc) (*CircuitBreakerClient, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cb := NewCircuitBreakerClient(
		New(Config{Timeout: 5 * time.Second, MaxConnsPerHost: 10}),
		CircuitBreakerConfig{
			Name:         name,
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      openTimeout,
			FailureRatio: 0.5,
			MinRequests:  3,
		},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return cb, srv
}

func TestCircuitBreaker_PassesThroughWhileClosed(t *testing.T) {
	cb, srv := newBreaker(t, "jwks-closed", time.Second, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"keys":[]}`))
	})

	resp, err := cb.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_ServerErrorsTripBreaker(t *testing.T) {
	cb, srv := newBreaker(t, "jwks-trip", time.Minute, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	})

	// 5xx responses count as failures. Three in a row meet MinRequests
	// and exceed the ratio, so the breaker opens.
	for range 3 {
		_, err := cb.Get(context.Background(), srv.URL)
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_OpenShortCircuitsTheServer(t *testing.T) {
	var hits atomic.Int32
	cb, srv := newBreaker(t, "jwks-reject", time.Minute, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for range 3 {
		_, _ = cb.Get(context.Background(), srv.URL)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())
	tripped := hits.Load()

	for range 5 {
		_, err := cb.Get(context.Background(), srv.URL)
		assert.ErrorIs(t, err, ErrCircuitOpen)
	}

	assert.Equal(t, tripped, hits.Load(), "rejected requests never reach the server")
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	cb, srv := newBreaker(t, "jwks-recover", 100*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"keys":[]}`))
	})

	for range 3 {
		_, _ = cb.Get(context.Background(), srv.URL)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	// Wait out the open timeout, then let the half-open probe succeed.
	time.Sleep(150 * time.Millisecond)
	failing.Store(false)

	resp, err := cb.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	cb, srv := newBreaker(t, "jwks-4xx", time.Second, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unknown kid"}`, http.StatusBadRequest)
	})

	for range 5 {
		resp, err := cb.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_ContextCancellation(t *testing.T) {
	cb, srv := newBreaker(t, "jwks-ctx", time.Second, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := cb.Get(ctx, srv.URL)
	require.Error(t, err)
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("jwks")

	assert.Equal(t, "jwks", cfg.Name)
	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, time.Minute, cfg.Interval)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0.5, cfg.FailureRatio)
	assert.Equal(t, uint32(5), cfg.MinRequests)
}
