package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

// BusinessService defines the business operations used by the handler
type BusinessService interface {
	List(ctx context.Context, spec query.Spec) (*query.Page[*services.BusinessView], error)
	GetByID(ctx context.Context, id string) (*services.BusinessView, error)
	Create(ctx context.Context, user *entities.User, in services.CreateBusinessInput) (*entities.Business, error)
	Update(ctx context.Context, user *entities.User, id string, in services.UpdateBusinessInput) (*entities.Business, error)
	Delete(ctx context.Context, user *entities.User, id string) error
	WithinRadius(ctx context.Context, zipcode, distance string) ([]*entities.Business, error)
	UploadPhoto(ctx context.Context, user *entities.User, id string, upload services.PhotoUpload) (string, error)
	Search(ctx context.Context, params repositories.BusinessSearchParams) (*query.Page[*entities.Business], error)
}

// BusinessHandler handles business-related HTTP requests
type BusinessHandler struct {
	service   BusinessService
	parser    *query.Parser
	maxUpload int64
}

// NewBusinessHandler creates a new business handler
func NewBusinessHandler(service BusinessService, maxUpload int64) *BusinessHandler {
	return &BusinessHandler{
		service:   service,
		parser:    query.NewParser(repositories.BusinessSchema),
		maxUpload: maxUpload,
	}
}

// ListBusinesses handles GET /api/v1/businesses
func (h *BusinessHandler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
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

// GetBusiness handles GET /api/v1/businesses/{id}
func (h *BusinessHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	business, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, business)
}

// CreateBusiness handles POST /api/v1/businesses
func (h *BusinessHandler) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	var in services.CreateBusinessInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	business, err := h.service.Create(r.Context(), currentUser(r), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, business)
}

// UpdateBusiness handles PUT /api/v1/businesses/{id}
func (h *BusinessHandler) UpdateBusiness(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateBusinessInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	business, err := h.service.Update(r.Context(), currentUser(r), r.PathValue("id"), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, business)
}

// DeleteBusiness handles DELETE /api/v1/businesses/{id}
func (h *BusinessHandler) DeleteBusiness(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), currentUser(r), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, map[string]interface{}{})
}

// GetBusinessesInRadius handles GET /api/v1/businesses/radius/{zipcode}/{distance}
func (h *BusinessHandler) GetBusinessesInRadius(w http.ResponseWriter, r *http.Request) {
	businesses, err := h.service.WithinRadius(r.Context(), r.PathValue("zipcode"), r.PathValue("distance"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if businesses == nil {
		businesses = []*entities.Business{}
	}
	respondWithJSON(w, http.StatusOK, countResponse{Success: true, Count: len(businesses), Data: businesses})
}

// UploadPhoto handles PUT /api/v1/businesses/{id}/photo as multipart field "file"
func (h *BusinessHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload + 1<<20); err != nil {
		respondWithError(w, http.StatusBadRequest, "Please upload a file")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Please upload a file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithAppError(w, r, apperrors.NewValidationError("Problem with file upload"))
		return
	}

	name, err := h.service.UploadPhoto(r.Context(), currentUser(r), r.PathValue("id"), services.PhotoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, name)
}

// SearchBusinesses handles GET /api/v1/businesses/search?q=&city=&minRating=
func (h *BusinessHandler) SearchBusinesses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := repositories.BusinessSearchParams{
		Query: q.Get("q"),
		City:  q.Get("city"),
	}
	if raw := q.Get("minRating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondWithAppError(w, r, apperrors.NewInvalidQueryError("minRating must be a number"))
			return
		}
		params.MinRate = &v
	}
	params.Page, _ = strconv.Atoi(q.Get("page"))
	params.Limit, _ = strconv.Atoi(q.Get("limit"))

	page, err := h.service.Search(r.Context(), params)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithPage(w, r, page, nil)
}
