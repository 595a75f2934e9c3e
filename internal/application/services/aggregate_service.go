package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/infrastructure/observability"
)

// AggregateService keeps the derived averageRating and averageCost of a
// business in step with its reviews and services.
type AggregateService struct {
	businessRepo repositories.BusinessRepository
	serviceRepo  repositories.ServiceRepository
	reviewRepo   repositories.ReviewRepository
	eventBus     providers.EventBus
	metrics      *observability.Metrics
}

// NewAggregateService creates a new aggregate service. eventBus and metrics may be nil.
func NewAggregateService(
	businessRepo repositories.BusinessRepository,
	serviceRepo repositories.ServiceRepository,
	reviewRepo repositories.ReviewRepository,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
) *AggregateService {
	return &AggregateService{
		businessRepo: businessRepo,
		serviceRepo:  serviceRepo,
		reviewRepo:   reviewRepo,
		eventBus:     eventBus,
		metrics:      metrics,
	}
}

// OnChildChanged recomputes one statistic after a child create, update or
// delete has been persisted. Failures are logged, never returned: the child
// write stands even when the parent statistic could not be refreshed.
func (s *AggregateService) OnChildChanged(ctx context.Context, businessID string, kind entities.StatKind) {
	value, err := s.Recompute(ctx, businessID, kind)
	observability.RecordAggregateRecompute(ctx, s.metrics, string(kind), err)

	logger := observability.LoggerFromContext(ctx)
	if err != nil {
		logger.Error().Err(err).Str("business_id", businessID).Str("stat", string(kind)).Msg("Failed to recompute business aggregate")
		return
	}
	event := logger.Debug().Str("business_id", businessID).Str("stat", string(kind))
	if value != nil {
		event = event.Float64("value", *value)
	}
	event.Msg("Recomputed business aggregate")
}

// OnChildEdited announces a child write that left the statistic untouched,
// so listeners holding copies of the child can drop them.
func (s *AggregateService) OnChildEdited(ctx context.Context, businessID string, kind entities.StatKind) {
	publish(ctx, s.eventBus, entities.NewBusinessEvent(businessID, entities.BusinessEventChildUpdated, map[string]interface{}{
		"child": string(kind),
	}))
}

// Recompute averages the children of kind for one business and stores the
// result, or NULL when the business has no such children.
func (s *AggregateService) Recompute(ctx context.Context, businessID string, kind entities.StatKind) (*float64, error) {
	stats, err := s.stats(ctx, businessID, kind)
	if err != nil {
		return nil, err
	}

	var value *float64
	if stats.Count > 0 {
		v := roundTo2(stats.Mean)
		value = &v
	}

	if err := s.businessRepo.SetAggregate(ctx, businessID, kind, value); err != nil {
		return nil, err
	}

	var changed interface{}
	if value != nil {
		changed = *value
	}
	publish(ctx, s.eventBus, entities.NewBusinessEvent(businessID, entities.BusinessEventAggregateUpdated, map[string]interface{}{
		string(kind): changed,
	}))
	return value, nil
}

func (s *AggregateService) stats(ctx context.Context, businessID string, kind entities.StatKind) (*repositories.ChildStats, error) {
	switch kind {
	case entities.StatRating:
		return s.reviewRepo.RatingStats(ctx, businessID)
	case entities.StatCost:
		return s.serviceRepo.PriceStats(ctx, businessID)
	}
	return nil, fmt.Errorf("unknown statistic %q", kind)
}

// ReconcileAll recomputes both statistics of every business and returns how
// many businesses were refreshed without error.
func (s *AggregateService) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := s.businessRepo.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	ok := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return ok, err
		}
		failed := false
		for _, kind := range []entities.StatKind{entities.StatRating, entities.StatCost} {
			if _, err := s.Recompute(ctx, id, kind); err != nil {
				errs = append(errs, fmt.Errorf("%s %s: %w", id, kind, err))
				failed = true
			}
		}
		if !failed {
			ok++
		}
	}

	log.Info().Int("businesses", len(ids)).Int("reconciled", ok).Int("errors", len(errs)).Msg("Aggregate reconciliation finished")
	return ok, errors.Join(errs...)
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
