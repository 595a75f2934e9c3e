package database

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
)

const businessByIDTTL = 300

// CachedBusinessAdapter keeps single businesses in the cache provider. Every
// write through it drops the cached copy; list and radius queries go straight
// to the wrapped repository.
type CachedBusinessAdapter struct {
	repositories.BusinessRepository
	cache providers.CacheProvider
}

// NewCachedBusinessAdapter wraps adapter with a read-through business cache
func NewCachedBusinessAdapter(adapter repositories.BusinessRepository, cache providers.CacheProvider) repositories.BusinessRepository {
	return &CachedBusinessAdapter{BusinessRepository: adapter, cache: cache}
}

func businessCacheKey(id string) string {
	return "business:" + id
}

// GetByID retrieves a business, preferring the cached copy
func (a *CachedBusinessAdapter) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	if b, ok := a.cached(ctx, id); ok {
		return b, nil
	}

	business, err := a.BusinessRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.store(ctx, business)
	return business, nil
}

// GetByIDs serves what it can from the cache and loads the rest in one query
func (a *CachedBusinessAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Business, error) {
	if len(ids) == 0 {
		return []*entities.Business{}, nil
	}

	found := make([]*entities.Business, 0, len(ids))
	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if b, ok := a.cached(ctx, id); ok {
			found = append(found, b)
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return found, nil
	}

	loaded, err := a.BusinessRepository.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, b := range loaded {
		a.store(ctx, b)
	}
	return append(found, loaded...), nil
}

// Update updates a business and drops its cached copy
func (a *CachedBusinessAdapter) Update(ctx context.Context, business *entities.Business) error {
	if err := a.BusinessRepository.Update(ctx, business); err != nil {
		return err
	}
	a.invalidate(ctx, business.ID)
	return nil
}

// Delete deletes a business and drops its cached copy
func (a *CachedBusinessAdapter) Delete(ctx context.Context, id string) error {
	if err := a.BusinessRepository.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, id)
	return nil
}

// SetAggregate writes a statistic and drops the cached copy
func (a *CachedBusinessAdapter) SetAggregate(ctx context.Context, id string, kind entities.StatKind, value *float64) error {
	if err := a.BusinessRepository.SetAggregate(ctx, id, kind, value); err != nil {
		return err
	}
	a.invalidate(ctx, id)
	return nil
}

func (a *CachedBusinessAdapter) cached(ctx context.Context, id string) (*entities.Business, bool) {
	data, err := a.cache.Get(ctx, businessCacheKey(id))
	if err != nil {
		return nil, false
	}
	var b entities.Business
	if err := json.Unmarshal(data, &b); err != nil {
		log.Warn().Err(err).Str("business_id", id).Msg("Discarding unreadable cached business")
		return nil, false
	}
	return &b, true
}

func (a *CachedBusinessAdapter) store(ctx context.Context, b *entities.Business) {
	data, err := json.Marshal(b)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, businessCacheKey(b.ID), data, businessByIDTTL); err != nil {
		log.Warn().Err(err).Str("business_id", b.ID).Msg("Failed to cache business")
	}
}

func (a *CachedBusinessAdapter) invalidate(ctx context.Context, id string) {
	if err := a.cache.Delete(ctx, businessCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("business_id", id).Msg("Failed to invalidate cached business")
	}
}
