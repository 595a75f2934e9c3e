package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/providers"
)

// CachedRoutePatterns are the response cache keys that can embed business data.
// Services and reviews embed a business summary; businesses embed their services.
var CachedRoutePatterns = []string{
	"http:cache:/api/v1/businesses*",
	"http:cache:/api/v1/services*",
	"http:cache:/api/v1/reviews*",
}

// CacheInvalidationService drops cached list responses when a business changes
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for business events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelBusinessUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to business updates: %w", err)
	}

	go consume(s.ctx, eventChan, s.handleEvent)
	log.Info().Msg("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) handleEvent(event *entities.BusinessEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Str("business_id", event.BusinessID).Str("type", string(event.EventType)).Msg("Failed to invalidate response cache")
		return
	}
	log.Debug().Str("business_id", event.BusinessID).Str("type", string(event.EventType)).Msg("Invalidated response cache")
}

// InvalidateAll deletes every cached response that may embed business data
func (s *CacheInvalidationService) InvalidateAll(ctx context.Context) error {
	for _, pattern := range CachedRoutePatterns {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
		}
	}
	return nil
}
