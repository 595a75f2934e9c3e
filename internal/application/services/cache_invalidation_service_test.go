package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/internal/mocks"
)

func TestCacheInvalidationService_DropsRoutesOnEvent(t *testing.T) {
	cache := &mocks.CacheProvider{}
	bus := &mocks.EventBus{}
	events := make(chan *entities.BusinessEvent, 1)
	bus.On("Subscribe", mock.Anything, providers.EventChannelBusinessUpdates).Return((<-chan *entities.BusinessEvent)(events), nil)

	done := make(chan string, len(services.CachedRoutePatterns))
	cache.On("DeletePattern", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		done <- args.String(1)
	}).Return(nil)

	svc := services.NewCacheInvalidationService(cache, bus)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	events <- entities.NewBusinessEvent("b1", entities.BusinessEventUpdated, nil)

	var got []string
	for range services.CachedRoutePatterns {
		select {
		case p := <-done:
			got = append(got, p)
		case <-time.After(2 * time.Second):
			t.Fatal("cache was not invalidated")
		}
	}
	assert.Equal(t, services.CachedRoutePatterns, got)
}

func TestCacheInvalidationService_InvalidateAllStopsOnError(t *testing.T) {
	cache := &mocks.CacheProvider{}
	cache.On("DeletePattern", mock.Anything, "http:cache:/api/v1/businesses*").Return(errors.New("redis down"))

	svc := services.NewCacheInvalidationService(cache, &mocks.EventBus{})
	err := svc.InvalidateAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	cache.AssertNumberOfCalls(t, "DeletePattern", 1)
}
