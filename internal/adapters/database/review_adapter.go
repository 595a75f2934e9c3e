package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/infrastructure/clients/postgres"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

const reviewsTable = "reviews"

var reviewColumns = []interface{}{
	"id", "title", "description", "rating", "business_id", "user_id", "created_at",
}

type reviewRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Rating      int       `db:"rating"`
	BusinessID  string    `db:"business_id"`
	UserID      string    `db:"user_id"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r reviewRow) toEntity() *entities.Review {
	return &entities.Review{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Rating:      r.Rating,
		BusinessID:  r.BusinessID,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
	}
}

// ReviewAdapter implements the ReviewRepository interface
type ReviewAdapter struct {
	client *postgres.Client
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) repositories.ReviewRepository {
	return &ReviewAdapter{client: client}
}

// Create creates a new review
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	q, args, err := dialect.Insert(reviewsTable).Prepared(true).Rows(goqu.Record{
		"id":          review.ID,
		"title":       review.Title,
		"description": review.Description,
		"rating":      review.Rating,
		"business_id": review.BusinessID,
		"user_id":     review.UserID,
		"created_at":  review.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review insert query", err)
	}
	if _, err := a.client.DBX().ExecContext(ctx, q, args...); err != nil {
		return mapWriteError(err, "create review")
	}
	return nil
}

// GetByID retrieves a review by ID
func (a *ReviewAdapter) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	row, err := getOne[reviewRow](ctx, a.client.DBX(), reviewsTable, reviewColumns, id, "Review")
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// Update writes the editable fields of a review
func (a *ReviewAdapter) Update(ctx context.Context, review *entities.Review) error {
	q, args, err := dialect.Update(reviewsTable).Prepared(true).
		Set(goqu.Record{
			"title":       review.Title,
			"description": review.Description,
			"rating":      review.Rating,
		}).
		Where(goqu.C("id").Eq(review.ID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review update query", err)
	}

	res, err := a.client.DBX().ExecContext(ctx, q, args...)
	if err != nil {
		return mapWriteError(err, "update review")
	}
	return expectAffected(res, "Review", review.ID)
}

// Delete deletes a review
func (a *ReviewAdapter) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, a.client.DBX(), reviewsTable, id, "Review")
}

// List returns one page of reviews and the filtered total
func (a *ReviewAdapter) List(ctx context.Context, spec query.Spec) ([]*entities.Review, int64, error) {
	rows, total, err := listPage[reviewRow](ctx, a.client.DBX(), reviewsTable, reviewColumns, spec)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*entities.Review, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, total, nil
}

// RatingStats averages the ratings of a business's reviews
func (a *ReviewAdapter) RatingStats(ctx context.Context, businessID string) (*repositories.ChildStats, error) {
	mean, count, err := childStats(ctx, a.client.DBX(), reviewsTable, "rating", businessID)
	if err != nil {
		return nil, err
	}
	return &repositories.ChildStats{BusinessID: businessID, Mean: mean, Count: count}, nil
}
