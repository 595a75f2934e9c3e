package repositories

import (
	"context"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/query"
)

// ServiceSchema lists the service fields clients may filter, select and sort on
var ServiceSchema = query.Schema{
	"id":              {Column: "id", Kind: query.KindUUID},
	"name":            {Column: "name", Kind: query.KindString},
	"description":     {Column: "description", Kind: query.KindString},
	"price":           {Column: "price", Kind: query.KindNumber},
	"serviceType":     {Column: "service_type", Kind: query.KindString},
	"creditAvailable": {Column: "credit_available", Kind: query.KindBool},
	"business":        {Column: "business_id", Kind: query.KindUUID},
	"user":            {Column: "user_id", Kind: query.KindUUID},
	"createdAt":       {Column: "created_at", Kind: query.KindTime},
}

// ChildStats is the mean of one numeric child field for a single business
type ChildStats struct {
	BusinessID string
	Mean       float64
	Count      int64
}

// ServiceRepository defines the interface for service data operations
type ServiceRepository interface {
	Create(ctx context.Context, service *entities.Service) error
	GetByID(ctx context.Context, id string) (*entities.Service, error)
	Update(ctx context.Context, service *entities.Service) error
	Delete(ctx context.Context, id string) error

	// List returns one page of services and the filtered total
	List(ctx context.Context, spec query.Spec) ([]*entities.Service, int64, error)

	// ListByBusinessIDs returns every service of the given businesses
	ListByBusinessIDs(ctx context.Context, businessIDs []string) ([]*entities.Service, error)

	// PriceStats averages the prices of a business's services; Count is 0 when it has none
	PriceStats(ctx context.Context, businessID string) (*ChildStats, error)
}
