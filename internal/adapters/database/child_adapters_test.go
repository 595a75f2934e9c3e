package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh363/small-business-app/internal/adapters/database"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

func TestReviewAdapter_RatingStats(t *testing.T) {
	ctx := context.Background()

	t.Run("averages ratings", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectQuery(q(`SELECT AVG("rating") AS "mean", COUNT(*) AS "count" FROM "reviews" WHERE ("business_id" = $1) GROUP BY "business_id"`)).
			WithArgs(businessID).
			WillReturnRows(sqlmock.NewRows([]string{"mean", "count"}).AddRow(7.0, 2))

		stats, err := database.NewReviewAdapter(client).RatingStats(ctx, businessID)
		require.NoError(t, err)
		assert.Equal(t, 7.0, stats.Mean)
		assert.Equal(t, int64(2), stats.Count)
	})

	t.Run("no reviews yields zero count", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectQuery(q(`FROM "reviews"`)).
			WillReturnRows(sqlmock.NewRows([]string{"mean", "count"}))

		stats, err := database.NewReviewAdapter(client).RatingStats(ctx, businessID)
		require.NoError(t, err)
		assert.Zero(t, stats.Count)
		assert.Equal(t, businessID, stats.BusinessID)
	})
}

func TestReviewAdapter_Create_SecondReviewConflicts(t *testing.T) {
	client, mock := newMock(t)
	mock.ExpectExec(q(`INSERT INTO "reviews"`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "reviews_business_id_user_id_key"})

	err := database.NewReviewAdapter(client).Create(context.Background(), &entities.Review{
		ID: "r1", BusinessID: businessID, UserID: ownerID, Rating: 8, Title: "Great",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConflict))
}

func TestServiceAdapter_PriceStats(t *testing.T) {
	client, mock := newMock(t)
	mock.ExpectQuery(q(`SELECT AVG("price") AS "mean", COUNT(*) AS "count" FROM "services"`)).
		WillReturnRows(sqlmock.NewRows([]string{"mean", "count"}).AddRow(9000.0, 2))

	stats, err := database.NewServiceAdapter(client).PriceStats(context.Background(), businessID)
	require.NoError(t, err)
	assert.Equal(t, 9000.0, stats.Mean)
}

func TestServiceAdapter_ListByBusinessIDs(t *testing.T) {
	client, mock := newMock(t)
	cols := []string{"id", "name", "description", "price", "service_type", "credit_available", "business_id", "user_id", "created_at"}
	mock.ExpectQuery(q(`FROM "services" WHERE ("business_id" IN ($1, $2)) ORDER BY "created_at" ASC, "id" ASC`)).
		WithArgs(businessID, "other").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("s1", "Front End Web Development", "HTML, CSS", 8000.0, "bootcamp", true, businessID, ownerID, time.Now()))

	services, err := database.NewServiceAdapter(client).ListByBusinessIDs(context.Background(), []string{businessID, "other"})
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.True(t, services[0].CreditAvailable)
	assert.Equal(t, businessID, services[0].BusinessID)
}

func TestServiceAdapter_Delete_NotFound(t *testing.T) {
	client, mock := newMock(t)
	mock.ExpectExec(q(`DELETE FROM "services" WHERE ("id" = $1)`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := database.NewServiceAdapter(client).Delete(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserAdapter_GetByResetToken(t *testing.T) {
	ctx := context.Background()
	cols := []string{"id", "name", "email", "role", "password", "reset_password_token", "reset_password_expire", "created_at"}

	t.Run("returns holder of unexpired token", func(t *testing.T) {
		client, mock := newMock(t)
		expire := time.Now().Add(5 * time.Minute)
		mock.ExpectQuery(q(`WHERE (("reset_password_token" = $1) AND ("reset_password_expire" > $2))`)).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(ownerID, "John Doe", "john@gmail.com", "publisher", "hash", "hashed-token", expire, time.Now()))

		u, err := database.NewUserAdapter(client).GetByResetToken(ctx, "hashed-token")
		require.NoError(t, err)
		assert.Equal(t, entities.RolePublisher, u.Role)
		require.NotNil(t, u.ResetPasswordExpire)
	})

	t.Run("unknown token", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectQuery(q(`FROM "users"`)).WillReturnRows(sqlmock.NewRows(cols))

		_, err := database.NewUserAdapter(client).GetByResetToken(ctx, "nope")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUserAdapter_Create_DuplicateEmail(t *testing.T) {
	client, mock := newMock(t)
	mock.ExpectExec(q(`INSERT INTO "users"`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := database.NewUserAdapter(client).Create(context.Background(), &entities.User{
		ID: ownerID, Email: "john@gmail.com", Role: entities.RoleUser,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email is already registered")
}
