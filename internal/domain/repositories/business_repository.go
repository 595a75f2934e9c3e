package repositories

import (
	"context"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/geo"
	"github.com/Josh363/small-business-app/internal/query"
)

// BusinessSchema lists the business fields clients may filter, select and sort on
var BusinessSchema = query.Schema{
	"id":               {Column: "id", Kind: query.KindUUID},
	"name":             {Column: "name", Kind: query.KindString},
	"description":      {Column: "description", Kind: query.KindString},
	"website":          {Column: "website", Kind: query.KindString},
	"phone":            {Column: "phone", Kind: query.KindString},
	"email":            {Column: "email", Kind: query.KindString},
	"address":          {Column: "address", Kind: query.KindString},
	"location":         {Kind: query.KindString},
	"location.street":  {Column: "street", Kind: query.KindString},
	"location.city":    {Column: "city", Kind: query.KindString},
	"location.state":   {Column: "state", Kind: query.KindString},
	"location.zipcode": {Column: "zipcode", Kind: query.KindString},
	"location.country": {Column: "country", Kind: query.KindString},
	"services":         {Kind: query.KindString},
	"photo":            {Column: "photo", Kind: query.KindString},
	"averageRating":    {Column: "average_rating", Kind: query.KindNumber},
	"averageCost":      {Column: "average_cost", Kind: query.KindNumber},
	"user":             {Column: "user_id", Kind: query.KindUUID},
	"createdAt":        {Column: "created_at", Kind: query.KindTime},
	"updatedAt":        {Column: "updated_at", Kind: query.KindTime},
}

// BusinessRepository defines the interface for business data operations
type BusinessRepository interface {
	// Create creates a new business
	Create(ctx context.Context, business *entities.Business) error

	// GetByID retrieves a business by ID
	GetByID(ctx context.Context, id string) (*entities.Business, error)

	// GetByIDs retrieves the businesses that exist among ids
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Business, error)

	// CountByOwner counts the businesses owned by a user
	CountByOwner(ctx context.Context, userID string) (int64, error)

	// Update updates the editable fields of a business
	Update(ctx context.Context, business *entities.Business) error

	// Delete deletes a business together with its services and reviews
	Delete(ctx context.Context, id string) error

	// List returns one page of businesses and the filtered total
	List(ctx context.Context, spec query.Spec) ([]*entities.Business, int64, error)

	// ListIDs returns every business id, used by maintenance jobs
	ListIDs(ctx context.Context) ([]string, error)

	// WithinRadius returns businesses inside the spherical cap of radius radians around center
	WithinRadius(ctx context.Context, center geo.Point, radius float64) ([]*entities.Business, error)

	// SetAggregate writes a derived statistic; nil clears it
	SetAggregate(ctx context.Context, id string, kind entities.StatKind, value *float64) error
}

// BusinessSearchParams are the inputs of a full-text business search
type BusinessSearchParams struct {
	Query   string
	City    string
	MinRate *float64
	Page    int
	Limit   int
}

// BusinessSearchRepository defines the interface for the business search index (Typesense)
type BusinessSearchRepository interface {
	// Search returns matching business ids in relevance order and the total hit count
	Search(ctx context.Context, params BusinessSearchParams) ([]string, int64, error)

	// Index upserts a business document
	Index(ctx context.Context, business *entities.Business) error

	// Delete removes a business from the index
	Delete(ctx context.Context, id string) error
}
