package handlers

import (
	"context"
	"net/http"

	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/query"
)

// ServiceCatalog defines the service operations used by the handler
type ServiceCatalog interface {
	List(ctx context.Context, spec query.Spec) (*query.Page[*services.ServiceView], error)
	ListForBusiness(ctx context.Context, businessID string) ([]*entities.Service, error)
	GetByID(ctx context.Context, id string) (*services.ServiceView, error)
	Create(ctx context.Context, user *entities.User, businessID string, in services.ServiceInput) (*entities.Service, error)
	Update(ctx context.Context, user *entities.User, id string, in services.ServiceUpdateInput) (*entities.Service, error)
	Delete(ctx context.Context, user *entities.User, id string) error
}

// ServiceHandler handles service-related HTTP requests
type ServiceHandler struct {
	service ServiceCatalog
	parser  *query.Parser
}

// NewServiceHandler creates a new service handler
func NewServiceHandler(service ServiceCatalog) *ServiceHandler {
	return &ServiceHandler{
		service: service,
		parser:  query.NewParser(repositories.ServiceSchema),
	}
}

// ListServices handles GET /api/v1/services
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	spec, err := h.parser.Parse(r.URL.Query())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	page, err := h.service.List(r.Context(), spec)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithPage(w, r, page, spec.Select)
}

// ListBusinessServices handles GET /api/v1/businesses/{businessId}/services
func (h *ServiceHandler) ListBusinessServices(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListForBusiness(r.Context(), r.PathValue("businessId"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, countResponse{Success: true, Count: len(items), Data: items})
}

// GetService handles GET /api/v1/services/{id}
func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, svc)
}

// CreateService handles POST /api/v1/businesses/{businessId}/services
func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var in services.ServiceInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	svc, err := h.service.Create(r.Context(), currentUser(r), r.PathValue("businessId"), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, svc)
}

// UpdateService handles PUT /api/v1/services/{id}
func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var in services.ServiceUpdateInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	svc, err := h.service.Update(r.Context(), currentUser(r), r.PathValue("id"), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, svc)
}

// DeleteService handles DELETE /api/v1/services/{id}
func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), currentUser(r), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, map[string]interface{}{})
}
