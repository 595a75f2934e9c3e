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

// ReviewInput is the payload of a review create
type ReviewInput struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=10"`
}

// ReviewUpdateInput is the payload of a review update; nil fields are left unchanged
type ReviewUpdateInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	Rating      *int    `json:"rating" validate:"omitempty,min=1,max=10"`
}

// ReviewService manages business reviews
type ReviewService struct {
	repo         repositories.ReviewRepository
	businessRepo repositories.BusinessRepository
	serviceRepo  repositories.ServiceRepository
	aggregates   *AggregateService
}

// NewReviewService creates a new review service
func NewReviewService(
	repo repositories.ReviewRepository,
	businessRepo repositories.BusinessRepository,
	serviceRepo repositories.ServiceRepository,
	aggregates *AggregateService,
) *ReviewService {
	return &ReviewService{repo: repo, businessRepo: businessRepo, serviceRepo: serviceRepo, aggregates: aggregates}
}

// List returns one page of reviews with their business summaries
func (s *ReviewService) List(ctx context.Context, spec query.Spec) (*query.Page[*ReviewView], error) {
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

// ListForBusiness returns the reviews of one business, paginated by spec
func (s *ReviewService) ListForBusiness(ctx context.Context, businessID string, spec query.Spec) (*query.Page[*entities.Review], error) {
	items, total, err := s.repo.List(ctx, spec.With("business", "business_id", businessID))
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("There are no reviews for business %s", businessID))
	}
	return query.NewPage(items, total, spec), nil
}

// GetByID retrieves a review with its business summary
func (s *ReviewService) GetByID(ctx context.Context, id string) (*ReviewView, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withBusiness(ctx, []*entities.Review{review}, true)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ReviewService) withBusiness(ctx context.Context, items []*entities.Review, include bool) ([]*ReviewView, error) {
	views := make([]*ReviewView, len(items))
	for i, item := range items {
		views[i] = &ReviewView{Review: item}
	}
	if !include || len(items) == 0 {
		return views, nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.BusinessID
	}
	summaries, err := resolveSummaries(ctx, loadersFor(ctx, s.businessRepo, s.serviceRepo), ids)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		v.Business = summaries[v.BusinessID]
	}
	return views, nil
}

// Create adds user's review of a business. Only the business owner or an admin
// may review it, and each user reviews a business at most once.
func (s *ReviewService) Create(ctx context.Context, user *entities.User, businessID string, in ReviewInput) (*entities.Review, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("No business with the id of %s", businessID))
		}
		return nil, err
	}
	if !CanMutate(user, business.UserID) {
		return nil, apperrors.NewUnauthorizedError(fmt.Sprintf("User %s is not authorized to add a review to business %s", user.ID, business.ID))
	}

	review := &entities.Review{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Rating:      in.Rating,
		BusinessID:  business.ID,
		UserID:      user.ID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.aggregates.OnChildChanged(ctx, business.ID, entities.StatRating)
	return review, nil
}

// Update changes a review. Only its author or an admin may update it.
func (s *ReviewService) Update(ctx context.Context, user *entities.User, id string, in ReviewUpdateInput) (*entities.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanMutate(user, review.UserID) {
		return nil, apperrors.NewUnauthorizedError(fmt.Sprintf("User %s is not authorized to update review %s", user.ID, review.ID))
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	ratingChanged := in.Rating != nil && *in.Rating != review.Rating
	if in.Title != nil {
		review.Title = *in.Title
	}
	if in.Description != nil {
		review.Description = *in.Description
	}
	if in.Rating != nil {
		review.Rating = *in.Rating
	}

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, err
	}
	if ratingChanged {
		s.aggregates.OnChildChanged(ctx, review.BusinessID, entities.StatRating)
	} else {
		s.aggregates.OnChildEdited(ctx, review.BusinessID, entities.StatRating)
	}
	return review, nil
}

// Delete removes a review. Only its author or an admin may delete it.
func (s *ReviewService) Delete(ctx context.Context, user *entities.User, id string) error {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutate(user, review.UserID) {
		return apperrors.NewUnauthorizedError(fmt.Sprintf("User %s is not authorized to delete review %s", user.ID, review.ID))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.aggregates.OnChildChanged(ctx, review.BusinessID, entities.StatRating)
	return nil
}
