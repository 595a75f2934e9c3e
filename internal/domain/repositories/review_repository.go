package repositories

import (
	"context"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/query"
)

// ReviewSchema lists the review fields clients may filter, select and sort on
var ReviewSchema = query.Schema{
	"id":          {Column: "id", Kind: query.KindUUID},
	"title":       {Column: "title", Kind: query.KindString},
	"description": {Column: "description", Kind: query.KindString},
	"rating":      {Column: "rating", Kind: query.KindInt},
	"business":    {Column: "business_id", Kind: query.KindUUID},
	"user":        {Column: "user_id", Kind: query.KindUUID},
	"createdAt":   {Column: "created_at", Kind: query.KindTime},
}

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	// Create creates a review; a second review of the same business by the same user is a conflict
	Create(ctx context.Context, review *entities.Review) error
	GetByID(ctx context.Context, id string) (*entities.Review, error)
	Update(ctx context.Context, review *entities.Review) error
	Delete(ctx context.Context, id string) error

	// List returns one page of reviews and the filtered total
	List(ctx context.Context, spec query.Spec) ([]*entities.Review, int64, error)

	// RatingStats averages the ratings of a business's reviews; Count is 0 when it has none
	RatingStats(ctx context.Context, businessID string) (*ChildStats, error)
}
