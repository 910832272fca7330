package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shorabul/Homigo-Server/internal/service"
	"github.com/Shorabul/Homigo-Server/pkg/httputil"
	"github.com/Shorabul/Homigo-Server/pkg/middleware"
	"github.com/Shorabul/Homigo-Server/pkg/validator"
)

// BookingHandler handles HTTP requests for booking endpoints.
type BookingHandler struct {
	bookings *service.BookingService
	logger   *slog.Logger
}

// NewBookingHandler creates a new booking HTTP handler.
func NewBookingHandler(bookings *service.BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		logger:   logger,
	}
}

// CreateBookingRequest is the JSON request body for creating a booking.
// user_email defaults to the authenticated caller when omitted.
type CreateBookingRequest struct {
	ServiceID string `json:"service_id" validate:"required,uuid"`
	UserEmail string `json:"user_email" validate:"omitempty,email"`
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if req.UserEmail == "" {
		if p := middleware.PrincipalFromContext(r.Context()); p != nil {
			req.UserEmail = p.Email
		}
	}

	booking, err := h.bookings.CreateBooking(r.Context(), service.CreateBookingInput{
		ServiceID: req.ServiceID,
		UserEmail: req.UserEmail,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: booking})
}

// ListMyBookings handles GET /api/v1/my-bookings
func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		if p := middleware.PrincipalFromContext(r.Context()); p != nil {
			email = p.Email
		}
	}

	bookings, err := h.bookings.ListBookings(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: bookings})
}

// DeleteBooking handles DELETE /api/v1/bookings/{id}
func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	count, err := h.bookings.DeleteBooking(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: httputil.DeleteResult{DeletedCount: count}})
}
