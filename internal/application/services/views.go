package services

import (
	"context"

	"github.com/Josh363/small-business-app/internal/application/loaders"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

// BusinessView is a business with its services embedded
type BusinessView struct {
	*entities.Business
	Services []*entities.Service `json:"services"`
}

// ServiceView is a service whose business reference is expanded to a summary.
// Business is nil when the referenced business no longer exists.
type ServiceView struct {
	*entities.Service
	Business *entities.BusinessSummary `json:"business"`
}

// ReviewView is a review whose business reference is expanded to a summary
type ReviewView struct {
	*entities.Review
	Business *entities.BusinessSummary `json:"business"`
}

// wantsField reports whether a projection includes field; no projection means every field.
func wantsField(spec query.Spec, field string) bool {
	if len(spec.Select) == 0 {
		return true
	}
	for _, f := range spec.Select {
		if f == field {
			return true
		}
	}
	return false
}

// loadersFor returns the request loaders, or a private set when none are attached.
func loadersFor(ctx context.Context, businessRepo repositories.BusinessRepository, serviceRepo repositories.ServiceRepository) *loaders.Loaders {
	if l := loaders.For(ctx); l != nil {
		return l
	}
	return loaders.NewLoaders(businessRepo, serviceRepo)
}

// resolveSummaries expands business references. Missing businesses are
// absent from the map; a store failure is an upstream error.
func resolveSummaries(ctx context.Context, l *loaders.Loaders, ids []string) (map[string]*entities.BusinessSummary, error) {
	found, err := l.Businesses.Resolve(ctx, ids)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to resolve businesses", err)
	}
	out := make(map[string]*entities.BusinessSummary, len(found))
	for id, b := range found {
		out[id] = b.Summary()
	}
	return out, nil
}
