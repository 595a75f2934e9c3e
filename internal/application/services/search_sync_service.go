package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

const reindexBatchSize = 100

// SearchSyncService keeps the business search index in step with the store
type SearchSyncService struct {
	repo     repositories.BusinessRepository
	search   repositories.BusinessSearchRepository
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewSearchSyncService creates a new search sync service. eventBus may be nil
// when the service is only used for a full reindex.
func NewSearchSyncService(repo repositories.BusinessRepository, search repositories.BusinessSearchRepository, eventBus providers.EventBus) *SearchSyncService {
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchSyncService{
		repo:     repo,
		search:   search,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for business events
func (s *SearchSyncService) Start() error {
	if s.eventBus == nil {
		return errors.New("search sync requires an event bus")
	}
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelBusinessUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to business updates: %w", err)
	}

	go consume(s.ctx, eventChan, func(event *entities.BusinessEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Sync(ctx, event); err != nil {
			log.Warn().Err(err).Str("business_id", event.BusinessID).Str("type", string(event.EventType)).Msg("Failed to sync search index")
		}
	})
	log.Info().Msg("Search sync service started")
	return nil
}

// Stop stops the search sync service
func (s *SearchSyncService) Stop() {
	s.cancel()
	log.Info().Msg("Search sync service stopped")
}

// Sync applies one business event to the index
func (s *SearchSyncService) Sync(ctx context.Context, event *entities.BusinessEvent) error {
	switch event.EventType {
	case entities.BusinessEventDeleted:
		return s.search.Delete(ctx, event.BusinessID)
	case entities.BusinessEventChildUpdated:
		// indexed fields live on the business row only
		return nil
	}

	business, err := s.repo.GetByID(ctx, event.BusinessID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return s.search.Delete(ctx, event.BusinessID)
		}
		return err
	}
	return s.search.Index(ctx, business)
}

// Reindex upserts every stored business and returns how many were indexed
func (s *SearchSyncService) Reindex(ctx context.Context) (int, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	indexed := 0
	for start := 0; start < len(ids); start += reindexBatchSize {
		end := min(start+reindexBatchSize, len(ids))
		batch, err := s.repo.GetByIDs(ctx, ids[start:end])
		if err != nil {
			return indexed, err
		}
		for _, b := range batch {
			if err := s.search.Index(ctx, b); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", b.ID, err))
				continue
			}
			indexed++
		}
		log.Info().Int("indexed", indexed).Int("total", len(ids)).Msg("Reindex progress")
	}
	return indexed, errors.Join(errs...)
}
