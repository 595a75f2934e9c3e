package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/query"
)

// CreateUserInput is the payload of an admin user create
type CreateUserInput struct {
	Name     string        `json:"name" validate:"required"`
	Email    string        `json:"email" validate:"required,email"`
	Password string        `json:"password" validate:"required,min=6"`
	Role     entities.Role `json:"role" validate:"omitempty,oneof=user publisher admin"`
}

// UpdateUserInput is the payload of an admin user update
type UpdateUserInput struct {
	Name  *string        `json:"name" validate:"omitempty,min=1"`
	Email *string        `json:"email" validate:"omitempty,email"`
	Role  *entities.Role `json:"role" validate:"omitempty,oneof=user publisher admin"`
}

// UserService is the admin view of user accounts
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) List(ctx context.Context, spec query.Spec) (*query.Page[*entities.User], error) {
	items, total, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, err
	}
	return query.NewPage(items, total, spec), nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*entities.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = entities.RoleUser
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &entities.User{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     strings.ToLower(in.Email),
		Role:      in.Role,
		Password:  hash,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*entities.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = strings.ToLower(*in.Email)
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
