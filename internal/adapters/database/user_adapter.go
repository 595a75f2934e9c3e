package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/infrastructure/clients/postgres"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

const usersTable = "users"

var userColumns = []interface{}{
	"id", "name", "email", "role", "password", "reset_password_token", "reset_password_expire", "created_at",
}

type userRow struct {
	ID                  string         `db:"id"`
	Name                string         `db:"name"`
	Email               string         `db:"email"`
	Role                string         `db:"role"`
	Password            string         `db:"password"`
	ResetPasswordToken  sql.NullString `db:"reset_password_token"`
	ResetPasswordExpire sql.NullTime   `db:"reset_password_expire"`
	CreatedAt           time.Time      `db:"created_at"`
}

func (r userRow) toEntity() *entities.User {
	u := &entities.User{
		ID:                 r.ID,
		Name:               r.Name,
		Email:              r.Email,
		Role:               entities.Role(r.Role),
		Password:           r.Password,
		ResetPasswordToken: r.ResetPasswordToken.String,
		CreatedAt:          r.CreatedAt,
	}
	if r.ResetPasswordExpire.Valid {
		t := r.ResetPasswordExpire.Time
		u.ResetPasswordExpire = &t
	}
	return u
}

func resetExpire(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{client: client}
}

// Create creates a new user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	q, args, err := dialect.Insert(usersTable).Prepared(true).Rows(goqu.Record{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"role":       string(user.Role),
		"password":   user.Password,
		"created_at": user.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build user insert query", err)
	}
	if _, err := a.client.DBX().ExecContext(ctx, q, args...); err != nil {
		return mapWriteError(err, "create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	row, err := getOne[userRow](ctx, a.client.DBX(), usersTable, userColumns, id, "User")
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (a *UserAdapter) getWhere(ctx context.Context, notFound string, conds ...exp.Expression) (*entities.User, error) {
	q, args, err := from(usersTable).Select(userColumns...).Where(conds...).Limit(1).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build user query", err)
	}

	var row userRow
	err = a.client.DBX().GetContext(ctx, &row, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	return row.toEntity(), nil
}

// GetByEmail retrieves a user by email
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return a.getWhere(ctx, "User not found", goqu.C("email").Eq(email))
}

// GetByResetToken retrieves the user holding an unexpired hashed reset token
func (a *UserAdapter) GetByResetToken(ctx context.Context, hashedToken string) (*entities.User, error) {
	return a.getWhere(ctx, "Invalid token",
		goqu.C("reset_password_token").Eq(hashedToken),
		goqu.C("reset_password_expire").Gt(time.Now()),
	)
}

// Update writes name, email, role, password and reset token fields
func (a *UserAdapter) Update(ctx context.Context, user *entities.User) error {
	q, args, err := dialect.Update(usersTable).Prepared(true).
		Set(goqu.Record{
			"name":                  user.Name,
			"email":                 user.Email,
			"role":                  string(user.Role),
			"password":              user.Password,
			"reset_password_token":  nullString(user.ResetPasswordToken),
			"reset_password_expire": resetExpire(user.ResetPasswordExpire),
		}).
		Where(goqu.C("id").Eq(user.ID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build user update query", err)
	}

	res, err := a.client.DBX().ExecContext(ctx, q, args...)
	if err != nil {
		return mapWriteError(err, "update user")
	}
	return expectAffected(res, "User", user.ID)
}

// Delete deletes a user
func (a *UserAdapter) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, a.client.DBX(), usersTable, id, "User")
}

// List returns one page of users and the filtered total
func (a *UserAdapter) List(ctx context.Context, spec query.Spec) ([]*entities.User, int64, error) {
	rows, total, err := listPage[userRow](ctx, a.client.DBX(), usersTable, userColumns, spec)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*entities.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, total, nil
}
