package database_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh363/small-business-app/internal/adapters/database"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/geo"
	"github.com/Josh363/small-business-app/internal/infrastructure/clients/postgres"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

const (
	businessID = "5d713995-b721-c3a5-4ec5-1e3a30c10b81"
	ownerID    = "5c8a1d5b-0190-4c66-a05a-5f6e62d5b8c1"
)

func newMock(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return postgres.NewClientFromDB(db), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

var businessCols = []string{
	"id", "name", "description", "website", "phone", "email", "address",
	"latitude", "longitude", "formatted_address", "street", "city", "state", "zipcode", "country",
	"photo", "average_rating", "average_cost", "user_id", "created_at", "updated_at",
}

func businessRows() *sqlmock.Rows {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(businessCols).AddRow(
		businessID, "Devworks Bootcamp", "Coding bootcamp", "https://devworks.com", "(111) 111-1111", nil, "233 Bay State Rd Boston MA 02215",
		42.350846, -71.10286, "233 Bay State Rd, Boston, MA 02215-1405, US", "233 Bay State Rd", "Boston", "MA", "02215", "US",
		entities.DefaultPhoto, 7.5, nil, ownerID, now, now,
	)
}

func TestBusinessAdapter_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("maps row to entity", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectQuery(q(`FROM "businesses" WHERE ("id" = $1)`)).
			WithArgs(businessID).
			WillReturnRows(businessRows())

		b, err := database.NewBusinessAdapter(client).GetByID(ctx, businessID)
		require.NoError(t, err)

		assert.Equal(t, "Devworks Bootcamp", b.Name)
		assert.Equal(t, "Boston", b.Location.City)
		assert.Equal(t, 42.350846, b.Location.Latitude)
		assert.Empty(t, b.Email)
		require.NotNil(t, b.AverageRating)
		assert.Equal(t, 7.5, *b.AverageRating)
		assert.Nil(t, b.AverageCost)
		assert.Equal(t, ownerID, b.UserID)
	})

	t.Run("missing row is not found", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectQuery(q(`FROM "businesses"`)).
			WillReturnRows(sqlmock.NewRows(businessCols))

		_, err := database.NewBusinessAdapter(client).GetByID(ctx, businessID)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Contains(t, err.Error(), businessID)
	})
}

func TestBusinessAdapter_Create_DuplicateName(t *testing.T) {
	client, mock := newMock(t)
	mock.ExpectExec(q(`INSERT INTO "businesses"`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "businesses_name_key"})

	err := database.NewBusinessAdapter(client).Create(context.Background(), &entities.Business{
		ID: businessID, Name: "Devworks Bootcamp", UserID: ownerID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConflict))
	assert.Contains(t, err.Error(), "already exists")
}

func TestBusinessAdapter_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes children then business in one transaction", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(q(`DELETE FROM "reviews" WHERE ("business_id" = $1)`)).
			WithArgs(businessID).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(q(`DELETE FROM "services" WHERE ("business_id" = $1)`)).
			WithArgs(businessID).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(q(`DELETE FROM "businesses" WHERE ("id" = $1)`)).
			WithArgs(businessID).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, database.NewBusinessAdapter(client).Delete(ctx, businessID))
	})

	t.Run("unknown business rolls back", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(q(`DELETE FROM "reviews"`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(q(`DELETE FROM "services"`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(q(`DELETE FROM "businesses"`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := database.NewBusinessAdapter(client).Delete(ctx, businessID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestBusinessAdapter_List(t *testing.T) {
	ctx := context.Background()
	spec := query.Spec{
		Filters: []query.Filter{{Field: "averageCost", Column: "average_cost", Op: query.OpLte, Value: 10000.0}},
		Sort:    []query.SortKey{{Field: "createdAt", Column: "created_at", Desc: true}},
		Page:    1,
		Limit:   2,
	}

	t.Run("counts then loads the window", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectQuery(q(`SELECT COUNT(*) FROM "businesses" WHERE ("average_cost" <= $1)`)).
			WithArgs(10000.0).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(q(`WHERE ("average_cost" <= $1) ORDER BY "created_at" DESC, "id" ASC LIMIT`)).
			WillReturnRows(businessRows())

		items, total, err := database.NewBusinessAdapter(client).List(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 1)
		assert.Equal(t, businessID, items[0].ID)
	})

	t.Run("skips the page query when nothing matches", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectQuery(q(`SELECT COUNT(*) FROM "businesses"`)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		items, total, err := database.NewBusinessAdapter(client).List(ctx, spec)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)
		assert.NotNil(t, items)
	})
}

func TestBusinessAdapter_WithinRadius(t *testing.T) {
	client, mock := newMock(t)
	mock.ExpectQuery(`FROM "businesses" WHERE \(\("latitude" BETWEEN .+ AND .+\) AND \("longitude" BETWEEN .+ AND .+\) AND \(acos\(.+\) <= .+\)\) ORDER BY acos`).
		WillReturnRows(businessRows())

	center := geo.Point{Latitude: 42.35, Longitude: -71.1}
	items, err := database.NewBusinessAdapter(client).WithinRadius(context.Background(), center, geo.AngularRadius(10))
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestBusinessAdapter_SetAggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("clears the statistic with NULL", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectExec(q(`UPDATE "businesses" SET "average_rating"=NULL WHERE ("id" = $1)`)).
			WithArgs(businessID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := database.NewBusinessAdapter(client).SetAggregate(ctx, businessID, entities.StatRating, nil)
		require.NoError(t, err)
	})

	t.Run("writes the cost average", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectExec(q(`UPDATE "businesses" SET "average_cost"=$1 WHERE ("id" = $2)`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		v := 8500.0
		err := database.NewBusinessAdapter(client).SetAggregate(ctx, businessID, entities.StatCost, &v)
		require.NoError(t, err)
	})
}

func TestAdapters_MalformedIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	invalid := &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}

	t.Run("get", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectQuery(q(`FROM "businesses" WHERE ("id" = $1)`)).
			WithArgs("abc").
			WillReturnError(invalid)

		_, err := database.NewBusinessAdapter(client).GetByID(ctx, "abc")
		require.Error(t, err)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, 404, appErr.HTTPStatus())
	})

	t.Run("cascade delete", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(q(`DELETE FROM "reviews"`)).WillReturnError(invalid)
		mock.ExpectRollback()

		err := database.NewBusinessAdapter(client).Delete(ctx, "abc")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("single row delete", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectExec(q(`DELETE FROM "reviews" WHERE ("id" = $1)`)).WillReturnError(invalid)

		err := database.NewReviewAdapter(client).Delete(ctx, "abc")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("nested list matches nothing", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectQuery(q(`SELECT COUNT(*) FROM "reviews" WHERE ("business_id" = $1)`)).
			WithArgs("abc").
			WillReturnError(invalid)

		spec := query.Spec{Page: 1, Limit: 20}.With("business", "business_id", "abc")
		items, total, err := database.NewReviewAdapter(client).List(ctx, spec)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)
	})
}
