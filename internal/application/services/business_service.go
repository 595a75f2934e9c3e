package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Josh363/small-business-app/internal/application/loaders"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/geo"
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/infrastructure/observability"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

// CreateBusinessInput is the payload of a business create
type CreateBusinessInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"required,max=500"`
	Website     string `json:"website" validate:"omitempty,url"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	Email       string `json:"email" validate:"omitempty,email"`
	Address     string `json:"address" validate:"required"`
}

// UpdateBusinessInput is the payload of a business update; nil fields are left unchanged
type UpdateBusinessInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description" validate:"omitempty,min=1,max=500"`
	Website     *string `json:"website" validate:"omitempty,url"`
	Phone       *string `json:"phone" validate:"omitempty,max=20"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Address     *string `json:"address" validate:"omitempty,min=1"`
}

// PhotoUpload is an uploaded business photo
type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BusinessService handles business listing, ownership and geocoding
type BusinessService struct {
	repo        repositories.BusinessRepository
	serviceRepo repositories.ServiceRepository
	searchRepo  repositories.BusinessSearchRepository
	geocoder    providers.GeolocationProvider
	storage     providers.FileStorage
	eventBus    providers.EventBus
	maxUpload   int64
}

// NewBusinessService creates a new business service. searchRepo, storage and
// eventBus may be nil; the features that need them are then unavailable.
func NewBusinessService(
	repo repositories.BusinessRepository,
	serviceRepo repositories.ServiceRepository,
	searchRepo repositories.BusinessSearchRepository,
	geocoder providers.GeolocationProvider,
	storage providers.FileStorage,
	eventBus providers.EventBus,
	maxUpload int64,
) *BusinessService {
	return &BusinessService{
		repo:        repo,
		serviceRepo: serviceRepo,
		searchRepo:  searchRepo,
		geocoder:    geocoder,
		storage:     storage,
		eventBus:    eventBus,
		maxUpload:   maxUpload,
	}
}

// List returns one page of businesses with their services
func (s *BusinessService) List(ctx context.Context, spec query.Spec) (*query.Page[*BusinessView], error) {
	ctx, span := observability.StartSpan(ctx, "BusinessService.List")
	defer span.End()

	items, total, err := s.repo.List(ctx, spec)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	views, err := s.withServices(ctx, items, wantsField(spec, "services"))
	if err != nil {
		return nil, err
	}
	return query.NewPage(views, total, spec), nil
}

// GetByID retrieves a business with its services
func (s *BusinessService) GetByID(ctx context.Context, id string) (*BusinessView, error) {
	business, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withServices(ctx, []*entities.Business{business}, true)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *BusinessService) withServices(ctx context.Context, items []*entities.Business, include bool) ([]*BusinessView, error) {
	views := make([]*BusinessView, len(items))
	for i, b := range items {
		views[i] = &BusinessView{Business: b}
	}
	if !include || len(items) == 0 {
		return views, nil
	}

	ids := make([]string, len(items))
	for i, b := range items {
		ids[i] = b.ID
	}
	l := loadersFor(ctx, s.repo, s.serviceRepo)
	byBusiness, err := l.ServicesByBusiness.Resolve(ctx, ids)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to resolve business services", err)
	}
	for _, v := range views {
		v.Services = byBusiness[v.ID]
		if v.Services == nil {
			v.Services = []*entities.Service{}
		}
	}
	return views, nil
}

// Create creates a business owned by user. A non-admin may own only one business.
func (s *BusinessService) Create(ctx context.Context, user *entities.User, in CreateBusinessInput) (*entities.Business, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if !user.IsAdmin() {
		owned, err := s.repo.CountByOwner(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if owned > 0 {
			return nil, apperrors.NewConflictError(fmt.Sprintf("The user with ID %s has already published a business", user.ID))
		}
	}

	location, err := s.locate(ctx, in.Address)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	business := &entities.Business{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Website:     in.Website,
		Phone:       in.Phone,
		Email:       in.Email,
		Address:     in.Address,
		Location:    location,
		Photo:       entities.DefaultPhoto,
		UserID:      user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, business); err != nil {
		return nil, err
	}

	publish(ctx, s.eventBus, entities.NewBusinessEvent(business.ID, entities.BusinessEventCreated, nil))
	return business, nil
}

// Update changes the fields set in in. Only the owner or an admin may update.
func (s *BusinessService) Update(ctx context.Context, user *entities.User, id string, in UpdateBusinessInput) (*entities.Business, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	business, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanMutate(user, business.UserID) {
		return nil, apperrors.NewUnauthorizedError(fmt.Sprintf("User %s is not authorized to update this business", user.ID))
	}

	changed := map[string]interface{}{}
	set := func(field string, dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			changed[field] = *src
		}
	}
	set("name", &business.Name, in.Name)
	set("description", &business.Description, in.Description)
	set("website", &business.Website, in.Website)
	set("phone", &business.Phone, in.Phone)
	set("email", &business.Email, in.Email)

	if in.Address != nil && *in.Address != business.Address {
		location, err := s.locate(ctx, *in.Address)
		if err != nil {
			return nil, err
		}
		business.Address = *in.Address
		business.Location = location
		changed["address"] = *in.Address
	}

	if len(changed) == 0 {
		return business, nil
	}

	business.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, business); err != nil {
		return nil, err
	}
	if l := loaders.For(ctx); l != nil {
		l.Businesses.Clear(ctx, business.ID)
	}

	publish(ctx, s.eventBus, entities.NewBusinessEvent(business.ID, entities.BusinessEventUpdated, changed))
	return business, nil
}

// Delete removes a business together with its services and reviews
func (s *BusinessService) Delete(ctx context.Context, user *entities.User, id string) error {
	business, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutate(user, business.UserID) {
		return apperrors.NewUnauthorizedError(fmt.Sprintf("User %s is not authorized to delete this business", user.ID))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.eventBus, entities.NewBusinessEvent(id, entities.BusinessEventDeleted, nil))
	return nil
}

// WithinRadius finds businesses within distance miles of the location of zipcode
func (s *BusinessService) WithinRadius(ctx context.Context, zipcode, distance string) ([]*entities.Business, error) {
	miles, err := strconv.ParseFloat(distance, 64)
	if err != nil || !(miles > 0) {
		return nil, apperrors.NewInvalidQueryError(fmt.Sprintf("Invalid distance %q", distance))
	}

	addr, err := s.geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, upstream("Geocoder", err)
	}

	center := geo.Point{Latitude: addr.Coordinates.Latitude, Longitude: addr.Coordinates.Longitude}
	return s.repo.WithinRadius(ctx, center, geo.AngularRadius(miles))
}

// UploadPhoto stores an image as the business photo and returns its name
func (s *BusinessService) UploadPhoto(ctx context.Context, user *entities.User, id string, upload PhotoUpload) (string, error) {
	if s.storage == nil {
		return "", apperrors.NewInternalError("file storage is not configured", nil)
	}

	business, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !CanMutate(user, business.UserID) {
		return "", apperrors.NewUnauthorizedError(fmt.Sprintf("User %s is not authorized to update this business", user.ID))
	}

	if len(upload.Data) == 0 {
		return "", apperrors.NewValidationError("Please upload a file")
	}
	if !strings.HasPrefix(upload.ContentType, "image") {
		return "", apperrors.NewValidationError("Please upload an image file")
	}
	if s.maxUpload > 0 && int64(len(upload.Data)) > s.maxUpload {
		return "", apperrors.NewValidationError(fmt.Sprintf("Please upload an image less than %d", s.maxUpload))
	}

	name := fmt.Sprintf("photo_%s%s", business.ID, strings.ToLower(filepath.Ext(upload.Filename)))
	stored, err := s.storage.Put(ctx, name, upload.ContentType, upload.Data)
	if err != nil {
		return "", upstream("Problem with file upload", err)
	}

	business.Photo = stored
	business.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, business); err != nil {
		return "", err
	}

	publish(ctx, s.eventBus, entities.NewBusinessEvent(business.ID, entities.BusinessEventUpdated, map[string]interface{}{"photo": stored}))
	return stored, nil
}

// Search runs a full-text query against the search index and loads the hits
// from the store, preserving relevance order.
func (s *BusinessService) Search(ctx context.Context, params repositories.BusinessSearchParams) (*query.Page[*entities.Business], error) {
	if s.searchRepo == nil {
		return nil, apperrors.NewExternalError("search is not available", nil)
	}
	if params.Page < 1 {
		params.Page = query.DefaultPage
	}
	if params.Limit < 1 {
		params.Limit = query.DefaultLimit
	}

	ids, total, err := s.searchRepo.Search(ctx, params)
	if err != nil {
		return nil, upstream("Search failed", err)
	}

	found, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entities.Business, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	ordered := make([]*entities.Business, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}

	return query.NewPage(ordered, total, query.Spec{Page: params.Page, Limit: params.Limit}), nil
}

// locate geocodes address into a business location
func (s *BusinessService) locate(ctx context.Context, address string) (entities.Location, error) {
	addr, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return entities.Location{}, upstream("Geocoder", err)
	}
	return entities.Location{
		Latitude:         addr.Coordinates.Latitude,
		Longitude:        addr.Coordinates.Longitude,
		FormattedAddress: addr.FormattedAddress,
		Street:           addr.Street,
		City:             addr.City,
		State:            addr.State,
		Zipcode:          addr.ZipCode,
		Country:          addr.Country,
	}, nil
}

// upstream keeps classified errors and wraps anything else as an external failure
func upstream(msg string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.NewExternalError(msg, err)
}
