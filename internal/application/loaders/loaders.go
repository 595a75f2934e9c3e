// Package loaders holds the per-request batched loaders that resolve
// relations between businesses and their services and reviews.
package loaders

import (
	"context"
	"net/http"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/query"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Loaders contains all the dataloaders for one request
type Loaders struct {
	// Businesses resolves a child's business reference
	Businesses *query.Resolver[string, *entities.Business]

	// ServicesByBusiness resolves the services back-reference of a business
	ServicesByBusiness *query.Resolver[string, []*entities.Service]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(businessRepo repositories.BusinessRepository, serviceRepo repositories.ServiceRepository) *Loaders {
	return &Loaders{
		Businesses: query.NewResolver(func(ctx context.Context, ids []string) (map[string]*entities.Business, error) {
			businesses, err := businessRepo.GetByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			found := make(map[string]*entities.Business, len(businesses))
			for _, b := range businesses {
				found[b.ID] = b
			}
			return found, nil
		}),
		ServicesByBusiness: query.NewResolver(func(ctx context.Context, ids []string) (map[string][]*entities.Service, error) {
			services, err := serviceRepo.ListByBusinessIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			grouped := make(map[string][]*entities.Service, len(ids))
			for _, id := range ids {
				grouped[id] = []*entities.Service{}
			}
			for _, s := range services {
				grouped[s.BusinessID] = append(grouped[s.BusinessID], s)
			}
			return grouped, nil
		}),
	}
}

// For returns the loaders for a given context, or nil when none are attached
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Middleware attaches fresh loaders to every request
func Middleware(businessRepo repositories.BusinessRepository, serviceRepo repositories.ServiceRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(businessRepo, serviceRepo))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
