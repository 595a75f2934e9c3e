package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

// ServiceInput is the payload of a service create
type ServiceInput struct {
	Name            string  `json:"name" validate:"required"`
	Description     string  `json:"description" validate:"required"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	ServiceType     string  `json:"serviceType" validate:"required"`
	CreditAvailable bool    `json:"creditAvailable"`
}

// ServiceUpdateInput is the payload of a service update; nil fields are left unchanged
type ServiceUpdateInput struct {
	Name            *string  `json:"name" validate:"omitempty,min=1"`
	Description     *string  `json:"description" validate:"omitempty,min=1"`
	Price           *float64 `json:"price" validate:"omitempty,gt=0"`
	ServiceType     *string  `json:"serviceType" validate:"omitempty,min=1"`
	CreditAvailable *bool    `json:"creditAvailable"`
}

// ServiceCatalogService manages the services a business offers
type ServiceCatalogService struct {
	repo         repositories.ServiceRepository
	businessRepo repositories.BusinessRepository
	aggregates   *AggregateService
}

// NewServiceCatalogService creates a new service catalog service
func NewServiceCatalogService(repo repositories.ServiceRepository, businessRepo repositories.BusinessRepository, aggregates *AggregateService) *ServiceCatalogService {
	return &ServiceCatalogService{repo: repo, businessRepo: businessRepo, aggregates: aggregates}
}

// List returns one page of services with their business summaries
func (s *ServiceCatalogService) List(ctx context.Context, spec query.Spec) (*query.Page[*ServiceView], error) {
	items, total, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, err
	}
	views, err := s.withBusiness(ctx, items, wantsField(spec, "business"))
	if err != nil {
		return nil, err
	}
	return query.NewPage(views, total, spec), nil
}

// ListForBusiness returns every service of one business
func (s *ServiceCatalogService) ListForBusiness(ctx context.Context, businessID string) ([]*entities.Service, error) {
	items, err := s.repo.ListByBusinessIDs(ctx, []string{businessID})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("There are no services for business %s", businessID))
	}
	return items, nil
}

// GetByID retrieves a service with its business summary
func (s *ServiceCatalogService) GetByID(ctx context.Context, id string) (*ServiceView, error) {
	service, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withBusiness(ctx, []*entities.Service{service}, true)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ServiceCatalogService) withBusiness(ctx context.Context, items []*entities.Service, include bool) ([]*ServiceView, error) {
	views := make([]*ServiceView, len(items))
	for i, item := range items {
		views[i] = &ServiceView{Service: item}
	}
	if !include || len(items) == 0 {
		return views, nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.BusinessID
	}
	summaries, err := resolveSummaries(ctx, loadersFor(ctx, s.businessRepo, s.repo), ids)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		v.Business = summaries[v.BusinessID]
	}
	return views, nil
}

// Create adds a service to a business. Only the business owner or an admin may add one.
func (s *ServiceCatalogService) Create(ctx context.Context, user *entities.User, businessID string, in ServiceInput) (*entities.Service, error) {
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("No business with the id of %s", businessID))
		}
		return nil, err
	}
	if !CanMutate(user, business.UserID) {
		return nil, apperrors.NewUnauthorizedError(fmt.Sprintf("User %s is not authorized to add a service to business %s", user.ID, business.ID))
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	service := &entities.Service{
		ID:              uuid.New().String(),
		Name:            in.Name,
		Description:     in.Description,
		Price:           in.Price,
		ServiceType:     in.ServiceType,
		CreditAvailable: in.CreditAvailable,
		BusinessID:      business.ID,
		UserID:          user.ID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, service); err != nil {
		return nil, err
	}

	s.aggregates.OnChildChanged(ctx, business.ID, entities.StatCost)
	return service, nil
}

// Update changes a service. Only its creator or an admin may update it.
func (s *ServiceCatalogService) Update(ctx context.Context, user *entities.User, id string, in ServiceUpdateInput) (*entities.Service, error) {
	service, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanMutate(user, service.UserID) {
		return nil, apperrors.NewUnauthorizedError(fmt.Sprintf("User %s is not authorized to update service %s", user.ID, service.ID))
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	priceChanged := in.Price != nil && *in.Price != service.Price
	if in.Name != nil {
		service.Name = *in.Name
	}
	if in.Description != nil {
		service.Description = *in.Description
	}
	if in.Price != nil {
		service.Price = *in.Price
	}
	if in.ServiceType != nil {
		service.ServiceType = *in.ServiceType
	}
	if in.CreditAvailable != nil {
		service.CreditAvailable = *in.CreditAvailable
	}

	if err := s.repo.Update(ctx, service); err != nil {
		return nil, err
	}
	if priceChanged {
		s.aggregates.OnChildChanged(ctx, service.BusinessID, entities.StatCost)
	} else {
		s.aggregates.OnChildEdited(ctx, service.BusinessID, entities.StatCost)
	}
	return service, nil
}

// Delete removes a service. Only its creator or an admin may delete it.
func (s *ServiceCatalogService) Delete(ctx context.Context, user *entities.User, id string) error {
	service, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutate(user, service.UserID) {
		return apperrors.NewUnauthorizedError(fmt.Sprintf("User %s is not authorized to delete service %s", user.ID, service.ID))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.aggregates.OnChildChanged(ctx, service.BusinessID, entities.StatCost)
	return nil
}
