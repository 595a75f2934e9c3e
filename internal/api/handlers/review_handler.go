package handlers

import (
	"context"
	"net/http"

	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/query"
)

// ReviewService defines the review operations used by the handler
type ReviewService interface {
	List(ctx context.Context, spec query.Spec) (*query.Page[*services.ReviewView], error)
	ListForBusiness(ctx context.Context, businessID string, spec query.Spec) (*query.Page[*entities.Review], error)
	GetByID(ctx context.Context, id string) (*services.ReviewView, error)
	Create(ctx context.Context, user *entities.User, businessID string, in services.ReviewInput) (*entities.Review, error)
	Update(ctx context.Context, user *entities.User, id string, in services.ReviewUpdateInput) (*entities.Review, error)
	Delete(ctx context.Context, user *entities.User, id string) error
}

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	service ReviewService
	parser  *query.Parser
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		parser:  query.NewParser(repositories.ReviewSchema),
	}
}

// ListReviews handles GET /api/v1/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
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

// ListBusinessReviews handles GET /api/v1/businesses/{businessId}/reviews
func (h *ReviewHandler) ListBusinessReviews(w http.ResponseWriter, r *http.Request) {
	spec, err := h.parser.Parse(r.URL.Query())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	page, err := h.service.ListForBusiness(r.Context(), r.PathValue("businessId"), spec)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithPage(w, r, page, spec.Select)
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, review)
}

// CreateReview handles POST /api/v1/businesses/{businessId}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var in services.ReviewInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	review, err := h.service.Create(r.Context(), currentUser(r), r.PathValue("businessId"), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, review)
}

// UpdateReview handles PUT /api/v1/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var in services.ReviewUpdateInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	review, err := h.service.Update(r.Context(), currentUser(r), r.PathValue("id"), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, review)
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), currentUser(r), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, map[string]interface{}{})
}
