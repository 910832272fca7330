package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("booking", "bkg-42"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"invalid input", InvalidInput("title is required"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("token expired"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("not the owner"), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"conflict", Conflict("cannot book your own service"), "CONFLICT", http.StatusConflict, ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestNotFound_MessageNamesResourceAndID(t *testing.T) {
	err := NotFound("service", "svc-9f2")

	assert.Contains(t, err.Message, "service")
	assert.Contains(t, err.Message, "svc-9f2")
}

func TestInternal_HidesCauseFromClientMessage(t *testing.T) {
	cause := fmt.Errorf("pq: connection refused")
	err := Internal(cause)

	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	// The client-facing message stays generic; the cause only shows up in
	// the full Error() string used for logging.
	assert.NotContains(t, err.Message, "connection refused")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestAppError_ErrorString(t *testing.T) {
	bare := &AppError{Code: "NOT_FOUND", Message: "service not found"}
	assert.Equal(t, "NOT_FOUND: service not found", bare.Error())
	assert.Nil(t, bare.Unwrap())

	wrapped := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: errors.New("db connection lost")}
	assert.Equal(t, "INTERNAL_ERROR: something broke: db connection lost", wrapped.Error())
}

func TestWrap_PreservesSentinel(t *testing.T) {
	wrapped := Wrap(ErrConflict, "create booking")

	assert.Contains(t, wrapped.Error(), "create booking")
	assert.ErrorIs(t, wrapped, ErrConflict)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error wins", NotFound("review", "1"), http.StatusNotFound},
		{"bare sentinel", ErrUnauthorized, http.StatusUnauthorized},
		{"wrapped sentinel", fmt.Errorf("list bookings: %w", ErrForbidden), http.StatusForbidden},
		{"deeply wrapped", Wrap(Wrap(ErrConflict, "inner"), "outer"), http.StatusConflict},
		{"service unavailable", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"unknown error", errors.New("disk full"), http.StatusInternalServerError},
		{"bare internal sentinel", ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestSentinels_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized,
		ErrForbidden, ErrConflict, ErrInternal, ErrServiceUnavail,
	}
	for i, a := range sentinels {
		for _, b := range sentinels[i+1:] {
			assert.NotErrorIs(t, a, b)
		}
	}
}
