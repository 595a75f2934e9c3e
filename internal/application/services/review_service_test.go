package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/mocks"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

type reviewFixture struct {
	businesses *mocks.BusinessRepository
	reviews    *mocks.ReviewRepository
	svc        *services.ReviewService
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		businesses: &mocks.BusinessRepository{},
		reviews:    &mocks.ReviewRepository{},
	}
	serviceRepo := &mocks.ServiceRepository{}
	aggregates := services.NewAggregateService(f.businesses, serviceRepo, f.reviews, nil, nil)
	f.svc = services.NewReviewService(f.reviews, f.businesses, serviceRepo, aggregates)
	return f
}

func TestReviewService_CreateRecomputesRating(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()

	f.businesses.On("GetByID", ctx, "b1").Return(bizOwned, nil)
	f.reviews.On("Create", ctx, mock.MatchedBy(func(r *entities.Review) bool {
		return r.BusinessID == "b1" && r.UserID == "owner" && r.Rating == 8
	})).Return(nil)
	f.reviews.On("RatingStats", ctx, "b1").Return(&repositories.ChildStats{Mean: 7, Count: 2}, nil)
	f.businesses.On("SetAggregate", ctx, "b1", entities.StatRating, floatIs(7)).Return(nil)

	_, err := f.svc.Create(ctx, owner, "b1", services.ReviewInput{Title: "Great", Description: "Fresh", Rating: 8})
	require.NoError(t, err)
	f.reviews.AssertExpectations(t)
	f.businesses.AssertExpectations(t)
}

func TestReviewService_CreateRejectsOutOfRangeRating(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()

	for _, rating := range []int{0, 11} {
		_, err := f.svc.Create(ctx, reviewer, "b1", services.ReviewInput{Title: "t", Description: "d", Rating: rating})
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation), "rating %d", rating)
	}
	f.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_DuplicateReviewIsConflict(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()

	f.businesses.On("GetByID", ctx, "b1").Return(bizOwned, nil)
	f.reviews.On("Create", ctx, mock.Anything).Return(apperrors.NewConflictError("You have already reviewed this business"))

	_, err := f.svc.Create(ctx, owner, "b1", services.ReviewInput{Title: "t", Description: "d", Rating: 5})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConflict))
	f.reviews.AssertNotCalled(t, "RatingStats", mock.Anything, mock.Anything)
}

func TestReviewService_CreateRequiresBusinessOwnerOrAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("non-owner is rejected before any write", func(t *testing.T) {
		f := newReviewFixture()
		f.businesses.On("GetByID", ctx, "b1").Return(bizOwned, nil)

		for _, user := range []*entities.User{reviewer, stranger} {
			_, err := f.svc.Create(ctx, user, "b1", services.ReviewInput{Title: "t", Description: "d", Rating: 5})
			require.True(t, apperrors.Is(err, apperrors.ErrorTypeUnauthorized), "user %s", user.ID)
		}
		f.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.reviews.AssertNotCalled(t, "RatingStats", mock.Anything, mock.Anything)
		f.businesses.AssertNotCalled(t, "SetAggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin may review any business", func(t *testing.T) {
		f := newReviewFixture()
		f.businesses.On("GetByID", ctx, "b1").Return(bizOwned, nil)
		f.reviews.On("Create", ctx, mock.Anything).Return(nil)
		f.reviews.On("RatingStats", ctx, "b1").Return(&repositories.ChildStats{Mean: 5, Count: 1}, nil)
		f.businesses.On("SetAggregate", ctx, "b1", entities.StatRating, floatIs(5)).Return(nil)

		review, err := f.svc.Create(ctx, admin, "b1", services.ReviewInput{Title: "t", Description: "d", Rating: 5})
		require.NoError(t, err)
		assert.Equal(t, "admin", review.UserID)
	})
}

func TestReviewService_StrangerCannotChangeReview(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()
	review := &entities.Review{ID: "r1", Title: "Good", Rating: 6, BusinessID: "b1", UserID: "reviewer"}
	f.reviews.On("GetByID", ctx, "r1").Return(review, nil)

	rating := 1
	_, err := f.svc.Update(ctx, stranger, "r1", services.ReviewUpdateInput{Rating: &rating})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeUnauthorized))
	assert.Equal(t, 6, review.Rating)

	err = f.svc.Delete(ctx, stranger, "r1")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeUnauthorized))

	f.reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.reviews.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestReviewService_UpdateRatingRecomputes(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()
	f.reviews.On("GetByID", ctx, "r1").Return(&entities.Review{ID: "r1", Rating: 6, BusinessID: "b1", UserID: "reviewer"}, nil)
	f.reviews.On("Update", ctx, mock.Anything).Return(nil)
	f.reviews.On("RatingStats", ctx, "b1").Return(&repositories.ChildStats{Mean: 9, Count: 1}, nil)
	f.businesses.On("SetAggregate", ctx, "b1", entities.StatRating, floatIs(9)).Return(nil)

	rating := 9
	updated, err := f.svc.Update(ctx, reviewer, "r1", services.ReviewUpdateInput{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Rating)
	f.businesses.AssertExpectations(t)
}

func TestReviewService_UpdateTitleOnlySkipsRecompute(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()
	f.reviews.On("GetByID", ctx, "r1").Return(&entities.Review{ID: "r1", Rating: 6, BusinessID: "b1", UserID: "reviewer"}, nil)
	f.reviews.On("Update", ctx, mock.Anything).Return(nil)

	title := "Better"
	_, err := f.svc.Update(ctx, admin, "r1", services.ReviewUpdateInput{Title: &title})
	require.NoError(t, err)
	f.reviews.AssertNotCalled(t, "RatingStats", mock.Anything, mock.Anything)
}

func TestReviewService_ListForBusinessEmpty(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()
	spec := query.Spec{Page: 1, Limit: 20}
	f.reviews.On("List", ctx, spec.With("business", "business_id", "b1")).Return([]*entities.Review{}, int64(0), nil)

	_, err := f.svc.ListForBusiness(ctx, "b1", spec)
	require.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "There are no reviews for business b1")
}
