// Package httputil implements the JSON response envelope shared by every
// handler: {"data": ...} on success, {"error": {...}} on failure.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/Shorabul/Homigo-Server/pkg/errors"
	"github.com/Shorabul/Homigo-Server/pkg/logger"
	"github.com/Shorabul/Homigo-Server/pkg/validator"
)

// Response is the JSON envelope. Exactly one of Data or Error is set.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error half of the envelope.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// DeleteResult reports how many rows a delete removed. Deleting an absent
// resource yields a zero count rather than an error.
type DeleteResult struct {
	DeletedCount int64 `json:"deleted_count"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already on the wire, so an encode failure here
	// cannot be reported to the client.
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Response{
		Error: &ErrorResponse{Code: code, Message: message, RequestID: requestID},
	})
}

// codeAndMessage maps a non-AppError err to the client-facing code and
// message. Validation and conflict messages are safe to echo; everything
// unexpected collapses to the generic internal error.
func codeAndMessage(err error) (string, string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "NOT_FOUND", "resource not found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "INVALID_INPUT", err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		return "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, apperrors.ErrConflict):
		return "CONFLICT", err.Error()
	}
	return "INTERNAL_ERROR", "an internal error occurred"
}

// WriteError translates err into the error envelope. It prefers the
// request-scoped logger from the context over the fallback, and logs 500s
// server-side while keeping their cause out of the response body.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	ctx := r.Context()
	l := logger.FromContext(ctx)
	if l == slog.Default() {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(ctx)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeErrorBody(w, appErr.Status, appErr.Code, appErr.Message, requestID)
		return
	}

	status := apperrors.HTTPStatus(err)
	code, message := codeAndMessage(err)

	if status == http.StatusInternalServerError {
		l.ErrorContext(ctx, "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	writeErrorBody(w, status, code, message, requestID)
}

// WriteValidationError writes a 400 with per-field details when err comes
// from the validator package, or a plain INVALID_INPUT otherwise.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}
	writeErrorBody(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), "")
}

// ParseUUID parses a path parameter as a UUID. On failure it writes the 400
// response itself and returns false so the handler can return early.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		writeErrorBody(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid identifier: "+param, "")
		return uuid.Nil, false
	}
	return id, true
}
