package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/geo"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/infrastructure/clients/postgres"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

const businessesTable = "businesses"

var businessColumns = []interface{}{
	"id", "name", "description", "website", "phone", "email", "address",
	"latitude", "longitude", "formatted_address", "street", "city", "state", "zipcode", "country",
	"photo", "average_rating", "average_cost", "user_id", "created_at", "updated_at",
}

var statColumns = map[entities.StatKind]string{
	entities.StatRating: "average_rating",
	entities.StatCost:   "average_cost",
}

type businessRow struct {
	ID               string          `db:"id"`
	Name             string          `db:"name"`
	Description      string          `db:"description"`
	Website          sql.NullString  `db:"website"`
	Phone            sql.NullString  `db:"phone"`
	Email            sql.NullString  `db:"email"`
	Address          sql.NullString  `db:"address"`
	Latitude         float64         `db:"latitude"`
	Longitude        float64         `db:"longitude"`
	FormattedAddress sql.NullString  `db:"formatted_address"`
	Street           sql.NullString  `db:"street"`
	City             sql.NullString  `db:"city"`
	State            sql.NullString  `db:"state"`
	Zipcode          sql.NullString  `db:"zipcode"`
	Country          sql.NullString  `db:"country"`
	Photo            string          `db:"photo"`
	AverageRating    sql.NullFloat64 `db:"average_rating"`
	AverageCost      sql.NullFloat64 `db:"average_cost"`
	UserID           string          `db:"user_id"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r businessRow) toEntity() *entities.Business {
	return &entities.Business{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Website:     r.Website.String,
		Phone:       r.Phone.String,
		Email:       r.Email.String,
		Address:     r.Address.String,
		Location: entities.Location{
			Latitude:         r.Latitude,
			Longitude:        r.Longitude,
			FormattedAddress: r.FormattedAddress.String,
			Street:           r.Street.String,
			City:             r.City.String,
			State:            r.State.String,
			Zipcode:          r.Zipcode.String,
			Country:          r.Country.String,
		},
		Photo:         r.Photo,
		AverageRating: floatPtr(r.AverageRating),
		AverageCost:   floatPtr(r.AverageCost),
		UserID:        r.UserID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func businessRecord(b *entities.Business) goqu.Record {
	return goqu.Record{
		"name":              b.Name,
		"description":       b.Description,
		"website":           nullString(b.Website),
		"phone":             nullString(b.Phone),
		"email":             nullString(b.Email),
		"address":           nullString(b.Address),
		"latitude":          b.Location.Latitude,
		"longitude":         b.Location.Longitude,
		"formatted_address": nullString(b.Location.FormattedAddress),
		"street":            nullString(b.Location.Street),
		"city":              nullString(b.Location.City),
		"state":             nullString(b.Location.State),
		"zipcode":           nullString(b.Location.Zipcode),
		"country":           nullString(b.Location.Country),
		"photo":             b.Photo,
		"updated_at":        b.UpdatedAt,
	}
}

func toBusinesses(rows []businessRow) []*entities.Business {
	out := make([]*entities.Business, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out
}

// BusinessAdapter implements the BusinessRepository interface
type BusinessAdapter struct {
	client *postgres.Client
}

// NewBusinessAdapter creates a new business adapter
func NewBusinessAdapter(client *postgres.Client) repositories.BusinessRepository {
	return &BusinessAdapter{client: client}
}

// Create creates a new business
func (a *BusinessAdapter) Create(ctx context.Context, business *entities.Business) error {
	record := businessRecord(business)
	record["id"] = business.ID
	record["user_id"] = business.UserID
	record["created_at"] = business.CreatedAt

	q, args, err := dialect.Insert(businessesTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build business insert query", err)
	}
	if _, err := a.client.DBX().ExecContext(ctx, q, args...); err != nil {
		return mapWriteError(err, "create business")
	}
	return nil
}

// GetByID retrieves a business by ID
func (a *BusinessAdapter) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	row, err := getOne[businessRow](ctx, a.client.DBX(), businessesTable, businessColumns, id, "Business")
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// GetByIDs retrieves the businesses that exist among ids
func (a *BusinessAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Business, error) {
	if len(ids) == 0 {
		return []*entities.Business{}, nil
	}
	q, args, err := from(businessesTable).Select(businessColumns...).Where(goqu.C("id").In(ids)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build businesses query", err)
	}

	var rows []businessRow
	if err := a.client.DBX().SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to get businesses", err)
	}
	return toBusinesses(rows), nil
}

// CountByOwner counts the businesses owned by a user
func (a *BusinessAdapter) CountByOwner(ctx context.Context, userID string) (int64, error) {
	q, args, err := from(businessesTable).Select(goqu.COUNT("*")).Where(goqu.C("user_id").Eq(userID)).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build owner count query", err)
	}

	var n int64
	if err := a.client.DBX().GetContext(ctx, &n, q, args...); err != nil {
		return 0, apperrors.NewInternalError("failed to count businesses by owner", err)
	}
	return n, nil
}

// Update updates the editable fields of a business
func (a *BusinessAdapter) Update(ctx context.Context, business *entities.Business) error {
	q, args, err := dialect.Update(businessesTable).Prepared(true).
		Set(businessRecord(business)).
		Where(goqu.C("id").Eq(business.ID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build business update query", err)
	}

	res, err := a.client.DBX().ExecContext(ctx, q, args...)
	if err != nil {
		return mapWriteError(err, "update business")
	}
	return expectAffected(res, "Business", business.ID)
}

// Delete removes a business and its services and reviews in one transaction
func (a *BusinessAdapter) Delete(ctx context.Context, id string) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	for _, table := range []string{reviewsTable, servicesTable} {
		q, args, err := dialect.Delete(table).Prepared(true).Where(goqu.C("business_id").Eq(id)).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build cascade delete query", err)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			if isInvalidText(err) {
				return apperrors.NewNotFoundError(fmt.Sprintf("Business not found with id of %s", id))
			}
			return apperrors.NewInternalError(fmt.Sprintf("failed to delete %s of business", table), err)
		}
	}

	q, args, err := dialect.Delete(businessesTable).Prepared(true).Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build business delete query", err)
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete business", err)
	}
	if err := expectAffected(res, "Business", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit business delete", err)
	}
	return nil
}

// List returns one page of businesses and the filtered total
func (a *BusinessAdapter) List(ctx context.Context, spec query.Spec) ([]*entities.Business, int64, error) {
	rows, total, err := listPage[businessRow](ctx, a.client.DBX(), businessesTable, businessColumns, spec)
	if err != nil {
		return nil, 0, err
	}
	return toBusinesses(rows), total, nil
}

// ListIDs returns every business id
func (a *BusinessAdapter) ListIDs(ctx context.Context) ([]string, error) {
	q, args, err := from(businessesTable).Select("id").Order(goqu.C("created_at").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build business id query", err)
	}

	var ids []string
	if err := a.client.DBX().SelectContext(ctx, &ids, q, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list business ids", err)
	}
	return ids, nil
}

// WithinRadius returns businesses inside the spherical cap around center,
// nearest first. A bounding box on the indexed coordinates narrows the scan
// before the exact great-circle test.
func (a *BusinessAdapter) WithinRadius(ctx context.Context, center geo.Point, radius float64) ([]*entities.Business, error) {
	minLat, maxLat, minLon, maxLon := geo.BoundingBox(center, radius)

	angle := goqu.L(
		"acos(LEAST(1, GREATEST(-1, sin(radians(?)) * sin(radians(latitude)) + cos(radians(?)) * cos(radians(latitude)) * cos(radians(longitude) - radians(?)))))",
		center.Latitude, center.Latitude, center.Longitude,
	)

	q, args, err := from(businessesTable).
		Select(businessColumns...).
		Where(
			goqu.C("latitude").Between(goqu.Range(minLat, maxLat)),
			goqu.C("longitude").Between(goqu.Range(minLon, maxLon)),
			angle.Lte(radius),
		).
		Order(angle.Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build radius query", err)
	}

	var rows []businessRow
	if err := a.client.DBX().SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to search businesses by radius", err)
	}
	return toBusinesses(rows), nil
}

// SetAggregate writes a derived statistic; nil stores NULL
func (a *BusinessAdapter) SetAggregate(ctx context.Context, id string, kind entities.StatKind, value *float64) error {
	column, ok := statColumns[kind]
	if !ok {
		return apperrors.NewInternalError(fmt.Sprintf("unknown statistic %q", kind), nil)
	}

	q, args, err := dialect.Update(businessesTable).Prepared(true).
		Set(goqu.Record{column: nullFloat(value)}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build aggregate update query", err)
	}

	res, err := a.client.DBX().ExecContext(ctx, q, args...)
	if err != nil {
		return mapWriteError(err, "update business "+column)
	}
	return expectAffected(res, "Business", id)
}
