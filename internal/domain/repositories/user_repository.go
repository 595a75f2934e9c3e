package repositories

import (
	"context"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/query"
)

// UserSchema lists the user fields admins may filter, select and sort on
var UserSchema = query.Schema{
	"id":        {Column: "id", Kind: query.KindUUID},
	"name":      {Column: "name", Kind: query.KindString},
	"email":     {Column: "email", Kind: query.KindString},
	"role":      {Column: "role", Kind: query.KindString},
	"createdAt": {Column: "created_at", Kind: query.KindTime},
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a user; a duplicate email is a conflict
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByEmail retrieves a user, including the password hash, by email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// GetByResetToken retrieves the user holding an unexpired hashed reset token
	GetByResetToken(ctx context.Context, hashedToken string) (*entities.User, error)

	// Update writes name, email, role, password and reset token fields
	Update(ctx context.Context, user *entities.User) error

	// Delete deletes a user
	Delete(ctx context.Context, id string) error

	// List returns one page of users and the filtered total
	List(ctx context.Context, spec query.Spec) ([]*entities.User, int64, error)
}
