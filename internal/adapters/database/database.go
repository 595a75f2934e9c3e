package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	// pqInvalidText is raised when an id that is not a UUID is compared to a uuid column.
	pqInvalidText = "22P02"
)

var dialect = goqu.Dialect("postgres")

// from starts a prepared-statement dataset on table.
func from(table string) *goqu.SelectDataset {
	return dialect.From(table).Prepared(true)
}

// conflictMessages maps constraint names to client-facing conflict messages.
var conflictMessages = map[string]string{
	"businesses_name_key":             "A business with that name already exists",
	"reviews_business_id_user_id_key": "User has already submitted a review for this business",
	"users_email_key":                 "Email is already registered",
}

// isInvalidText reports whether err is a malformed-literal error, which for
// this schema means a caller-supplied id is not a UUID.
func isInvalidText(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqInvalidText
}

// mapWriteError converts driver errors from inserts and updates into app errors.
func mapWriteError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			if msg, ok := conflictMessages[pqErr.Constraint]; ok {
				return apperrors.NewConflictError(msg)
			}
			return apperrors.NewConflictError("Duplicate field value entered")
		case pqForeignKeyViolation:
			return apperrors.NewConflictError("Referenced resource is missing or still in use")
		case pqInvalidText:
			return apperrors.NewNotFoundError("Resource not found")
		}
	}
	return apperrors.NewInternalError(fmt.Sprintf("failed to %s", op), err)
}

// listPage counts the rows matching spec and loads the requested window.
// Both statements share the same WHERE clause.
func listPage[R any](ctx context.Context, db *sqlx.DB, table string, columns []interface{}, spec query.Spec) ([]R, int64, error) {
	countSQL, countArgs, err := query.Count(from(table), spec).ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError(fmt.Sprintf("failed to build %s count query", table), err)
	}

	var total int64
	if err := db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		if isInvalidText(err) {
			// a malformed id in a filter matches nothing
			return []R{}, 0, nil
		}
		return nil, 0, apperrors.NewInternalError(fmt.Sprintf("failed to count %s", table), err)
	}
	if total == 0 || int64(spec.StartIndex()) >= total {
		return []R{}, total, nil
	}

	ds := query.Window(query.Where(from(table).Select(columns...), spec), spec)
	pageSQL, pageArgs, err := ds.ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError(fmt.Sprintf("failed to build %s list query", table), err)
	}

	var rows []R
	if err := db.SelectContext(ctx, &rows, pageSQL, pageArgs...); err != nil {
		return nil, 0, apperrors.NewInternalError(fmt.Sprintf("failed to list %s", table), err)
	}
	return rows, total, nil
}

// getOne loads a single row by id.
func getOne[R any](ctx context.Context, db *sqlx.DB, table string, columns []interface{}, id, label string) (*R, error) {
	q, args, err := from(table).Select(columns...).Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to build %s query", label), err)
	}

	var row R
	err = db.GetContext(ctx, &row, q, args...)
	if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s not found with id of %s", label, id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to get %s", label), err)
	}
	return &row, nil
}

// deleteByID removes one row and reports NotFound when nothing was deleted.
func deleteByID(ctx context.Context, db *sqlx.DB, table, id, label string) error {
	q, args, err := dialect.Delete(table).Prepared(true).Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to build %s delete query", label), err)
	}
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return mapWriteError(err, "delete "+label)
	}
	return expectAffected(res, label, id)
}

func expectAffected(res sql.Result, label, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read affected rows", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s not found with id of %s", label, id))
	}
	return nil
}

// childStats averages column over the rows of table owned by businessID.
func childStats(ctx context.Context, db *sqlx.DB, table, column, businessID string) (float64, int64, error) {
	q, args, err := from(table).
		Select(
			goqu.AVG(column).As("mean"),
			goqu.COUNT("*").As("count"),
		).
		Where(goqu.C("business_id").Eq(businessID)).
		GroupBy("business_id").
		ToSQL()
	if err != nil {
		return 0, 0, apperrors.NewInternalError("failed to build aggregate query", err)
	}

	var row struct {
		Mean  sql.NullFloat64 `db:"mean"`
		Count int64           `db:"count"`
	}
	err = db.GetContext(ctx, &row, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, apperrors.NewInternalError(fmt.Sprintf("failed to aggregate %s.%s", table, column), err)
	}
	return row.Mean.Float64, row.Count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
