package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Shorabul/Homigo-Server/internal/repository"
	"github.com/Shorabul/Homigo-Server/internal/service"
	"github.com/Shorabul/Homigo-Server/pkg/httputil"
	"github.com/Shorabul/Homigo-Server/pkg/middleware"
	"github.com/Shorabul/Homigo-Server/pkg/validator"
)

// ServiceHandler handles HTTP requests for catalog endpoints.
type ServiceHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewServiceHandler creates a new catalog HTTP handler.
func NewServiceHandler(catalog *service.CatalogService, logger *slog.Logger) *ServiceHandler {
	return &ServiceHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateServiceRequest is the JSON request body for publishing a service.
type CreateServiceRequest struct {
	ProviderEmail string `json:"provider_email" validate:"required,email"`
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	Price         int64  `json:"price" validate:"gte=0"`
	ImageURL      string `json:"image_url"`
}

// UpdateServiceRequest is the JSON request body for a partial service update.
// Absent fields are left unchanged.
type UpdateServiceRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	ImageURL    *string `json:"image_url"`
}

// --- Handlers ---

// ListServices handles GET /api/v1/services
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	var filter repository.ServiceFilter

	if v := r.URL.Query().Get("min_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "min_price must be a valid integer"},
			})
			return
		}
		filter.MinPrice = &price
	}
	if v := r.URL.Query().Get("max_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "max_price must be a valid integer"},
			})
			return
		}
		filter.MaxPrice = &price
	}

	services, err := h.catalog.ListServices(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: services})
}

// ListTopRated handles GET /api/v1/services/top-rated
func (h *ServiceHandler) ListTopRated(w http.ResponseWriter, r *http.Request) {
	limit := service.TopRatedLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "limit must be a valid positive integer"},
			})
			return
		}
		limit = n
	}

	services, err := h.catalog.ListTopRated(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: services})
}

// ListBanner handles GET /api/v1/services/banner
func (h *ServiceHandler) ListBanner(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListBanner(r.Context(), service.BannerLimit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}

// GetService handles GET /api/v1/services/{id}
func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	svc, err := h.catalog.GetService(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: svc})
}

// CreateService handles POST /api/v1/services
func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateServiceRequest
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

	svc, err := h.catalog.CreateService(r.Context(), service.CreateServiceInput{
		ProviderEmail: req.ProviderEmail,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: svc})
}

// UpdateService handles PATCH /api/v1/services/{id}
func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateServiceRequest
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

	svc, err := h.catalog.UpdateService(r.Context(), id.String(), repository.ServicePatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: svc})
}

// DeleteService handles DELETE /api/v1/services/{id}
func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	count, err := h.catalog.DeleteService(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: httputil.DeleteResult{DeletedCount: count}})
}

// ListMyServices handles GET /api/v1/my-services
func (h *ServiceHandler) ListMyServices(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		if p := middleware.PrincipalFromContext(r.Context()); p != nil {
			email = p.Email
		}
	}

	services, err := h.catalog.ListByProvider(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: services})
}
