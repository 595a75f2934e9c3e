package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/mocks"
)

func floatIs(want float64) interface{} {
	return mock.MatchedBy(func(v *float64) bool { return v != nil && *v == want })
}

func floatNil() interface{} {
	return mock.MatchedBy(func(v *float64) bool { return v == nil })
}

func TestAggregateService_RatingFollowsReviews(t *testing.T) {
	ctx := context.Background()
	businessRepo := &mocks.BusinessRepository{}
	reviewRepo := &mocks.ReviewRepository{}
	svc := services.NewAggregateService(businessRepo, &mocks.ServiceRepository{}, reviewRepo, nil, nil)

	// ratings 6 and 8
	reviewRepo.On("RatingStats", ctx, "b1").Return(&repositories.ChildStats{BusinessID: "b1", Mean: 7, Count: 2}, nil).Once()
	businessRepo.On("SetAggregate", ctx, "b1", entities.StatRating, floatIs(7)).Return(nil).Once()

	value, err := svc.Recompute(ctx, "b1", entities.StatRating)
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, 7.0, *value)

	// a third review rated 10
	reviewRepo.On("RatingStats", ctx, "b1").Return(&repositories.ChildStats{BusinessID: "b1", Mean: 8, Count: 3}, nil).Once()
	businessRepo.On("SetAggregate", ctx, "b1", entities.StatRating, floatIs(8)).Return(nil).Once()

	value, err = svc.Recompute(ctx, "b1", entities.StatRating)
	require.NoError(t, err)
	assert.Equal(t, 8.0, *value)

	// every review deleted
	reviewRepo.On("RatingStats", ctx, "b1").Return(&repositories.ChildStats{BusinessID: "b1"}, nil).Once()
	businessRepo.On("SetAggregate", ctx, "b1", entities.StatRating, floatNil()).Return(nil).Once()

	value, err = svc.Recompute(ctx, "b1", entities.StatRating)
	require.NoError(t, err)
	assert.Nil(t, value)

	businessRepo.AssertExpectations(t)
	reviewRepo.AssertExpectations(t)
}

func TestAggregateService_CostIsRoundedToCents(t *testing.T) {
	ctx := context.Background()
	businessRepo := &mocks.BusinessRepository{}
	serviceRepo := &mocks.ServiceRepository{}
	svc := services.NewAggregateService(businessRepo, serviceRepo, &mocks.ReviewRepository{}, nil, nil)

	serviceRepo.On("PriceStats", ctx, "b1").Return(&repositories.ChildStats{Mean: 33.336666, Count: 3}, nil)
	businessRepo.On("SetAggregate", ctx, "b1", entities.StatCost, floatIs(33.34)).Return(nil)

	value, err := svc.Recompute(ctx, "b1", entities.StatCost)
	require.NoError(t, err)
	assert.Equal(t, 33.34, *value)
}

func TestAggregateService_PublishesAggregateEvent(t *testing.T) {
	ctx := context.Background()
	businessRepo := &mocks.BusinessRepository{}
	reviewRepo := &mocks.ReviewRepository{}
	bus := &mocks.EventBus{}
	svc := services.NewAggregateService(businessRepo, &mocks.ServiceRepository{}, reviewRepo, bus, nil)

	reviewRepo.On("RatingStats", ctx, "b1").Return(&repositories.ChildStats{Mean: 5, Count: 1}, nil)
	businessRepo.On("SetAggregate", ctx, "b1", entities.StatRating, floatIs(5)).Return(nil)
	bus.On("Publish", ctx, providers.EventChannelBusinessUpdates, mock.MatchedBy(func(e *entities.BusinessEvent) bool {
		return e.BusinessID == "b1" && e.EventType == entities.BusinessEventAggregateUpdated && e.ChangedFields["averageRating"] == 5.0
	})).Return(nil)

	_, err := svc.Recompute(ctx, "b1", entities.StatRating)
	require.NoError(t, err)
	bus.AssertExpectations(t)
}

func TestChildEditsWithoutStatChangePublishEvent(t *testing.T) {
	ctx := context.Background()
	childEvent := func(kind entities.StatKind) interface{} {
		return mock.MatchedBy(func(e *entities.BusinessEvent) bool {
			return e.BusinessID == "b1" && e.EventType == entities.BusinessEventChildUpdated && e.ChangedFields["child"] == string(kind)
		})
	}

	t.Run("review title", func(t *testing.T) {
		businessRepo := &mocks.BusinessRepository{}
		reviewRepo := &mocks.ReviewRepository{}
		bus := &mocks.EventBus{}
		aggregates := services.NewAggregateService(businessRepo, &mocks.ServiceRepository{}, reviewRepo, bus, nil)
		svc := services.NewReviewService(reviewRepo, businessRepo, &mocks.ServiceRepository{}, aggregates)

		reviewRepo.On("GetByID", ctx, "r1").Return(&entities.Review{ID: "r1", Rating: 6, BusinessID: "b1", UserID: "owner"}, nil)
		reviewRepo.On("Update", ctx, mock.Anything).Return(nil)
		bus.On("Publish", ctx, providers.EventChannelBusinessUpdates, childEvent(entities.StatRating)).Return(nil).Once()

		title := "Renamed"
		_, err := svc.Update(ctx, owner, "r1", services.ReviewUpdateInput{Title: &title})
		require.NoError(t, err)
		bus.AssertExpectations(t)
		reviewRepo.AssertNotCalled(t, "RatingStats", mock.Anything, mock.Anything)
	})

	t.Run("service name", func(t *testing.T) {
		businessRepo := &mocks.BusinessRepository{}
		serviceRepo := &mocks.ServiceRepository{}
		bus := &mocks.EventBus{}
		aggregates := services.NewAggregateService(businessRepo, serviceRepo, &mocks.ReviewRepository{}, bus, nil)
		svc := services.NewServiceCatalogService(serviceRepo, businessRepo, aggregates)

		serviceRepo.On("GetByID", ctx, "s1").Return(&entities.Service{ID: "s1", Price: 40, BusinessID: "b1", UserID: "owner"}, nil)
		serviceRepo.On("Update", ctx, mock.Anything).Return(nil)
		bus.On("Publish", ctx, providers.EventChannelBusinessUpdates, childEvent(entities.StatCost)).Return(nil).Once()

		name := "Deep clean"
		_, err := svc.Update(ctx, owner, "s1", services.ServiceUpdateInput{Name: &name})
		require.NoError(t, err)
		bus.AssertExpectations(t)
		serviceRepo.AssertNotCalled(t, "PriceStats", mock.Anything, mock.Anything)
	})
}

func TestAggregateService_OnChildChangedSwallowsErrors(t *testing.T) {
	ctx := context.Background()
	businessRepo := &mocks.BusinessRepository{}
	reviewRepo := &mocks.ReviewRepository{}
	svc := services.NewAggregateService(businessRepo, &mocks.ServiceRepository{}, reviewRepo, nil, nil)

	reviewRepo.On("RatingStats", ctx, "b1").Return(nil, errors.New("connection reset"))

	assert.NotPanics(t, func() {
		svc.OnChildChanged(ctx, "b1", entities.StatRating)
	})
	businessRepo.AssertNotCalled(t, "SetAggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregateService_ReconcileAll(t *testing.T) {
	ctx := context.Background()
	businessRepo := &mocks.BusinessRepository{}
	serviceRepo := &mocks.ServiceRepository{}
	reviewRepo := &mocks.ReviewRepository{}
	svc := services.NewAggregateService(businessRepo, serviceRepo, reviewRepo, nil, nil)

	businessRepo.On("ListIDs", ctx).Return([]string{"b1", "b2"}, nil)
	reviewRepo.On("RatingStats", ctx, "b1").Return(&repositories.ChildStats{Mean: 4, Count: 1}, nil)
	serviceRepo.On("PriceStats", ctx, "b1").Return(&repositories.ChildStats{}, nil)
	reviewRepo.On("RatingStats", ctx, "b2").Return(nil, errors.New("timeout"))
	serviceRepo.On("PriceStats", ctx, "b2").Return(&repositories.ChildStats{Mean: 10, Count: 1}, nil)
	businessRepo.On("SetAggregate", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ok, err := svc.ReconcileAll(ctx)
	assert.Equal(t, 1, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b2 averageRating")
	businessRepo.AssertNumberOfCalls(t, "SetAggregate", 3)
}
