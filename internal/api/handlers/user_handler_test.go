package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh363/small-business-app/internal/api/handlers"
	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

type stubUserService struct {
	users   []*entities.User
	created *services.CreateUserInput
}

func (s *stubUserService) List(ctx context.Context, spec query.Spec) (*query.Page[*entities.User], error) {
	return query.NewPage(s.users, int64(len(s.users)), spec), nil
}

func (s *stubUserService) GetByID(ctx context.Context, id string) (*entities.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.NewNotFoundError("No user with the id of " + id)
}

func (s *stubUserService) Create(ctx context.Context, in services.CreateUserInput) (*entities.User, error) {
	s.created = &in
	return &entities.User{ID: "u-new", Name: in.Name, Email: in.Email, Role: in.Role}, nil
}

func (s *stubUserService) Update(ctx context.Context, id string, in services.UpdateUserInput) (*entities.User, error) {
	return &entities.User{ID: id, Role: *in.Role}, nil
}

func (s *stubUserService) Delete(ctx context.Context, id string) error {
	_, err := s.GetByID(ctx, id)
	return err
}

func TestUserHandler_ListUsers_HidesSecrets(t *testing.T) {
	svc := &stubUserService{users: []*entities.User{
		{ID: "u1", Name: "Admin", Email: "admin@gmail.com", Role: entities.RoleAdmin, Password: "$2a$10$hash", ResetPasswordToken: "deadbeef"},
	}}
	handler := handlers.NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?role=admin", nil)
	w := httptest.NewRecorder()
	handler.ListUsers(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$10$hash")
	assert.NotContains(t, w.Body.String(), "deadbeef")
	body := decodeList(t, w)
	assert.Equal(t, "admin@gmail.com", body.Data[0]["email"])
}

func TestUserHandler_CreateAndUpdate(t *testing.T) {
	svc := &stubUserService{}
	handler := handlers.NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{"name":"Jane","email":"jane@gmail.com","password":"123456","role":"publisher"}`))
	w := httptest.NewRecorder()
	handler.CreateUser(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, entities.RolePublisher, svc.created.Role)

	req = httptest.NewRequest(http.MethodPut, "/api/v1/users/u-new", strings.NewReader(`{"role":"admin"}`))
	req.SetPathValue("id", "u-new")
	w = httptest.NewRecorder()
	handler.UpdateUser(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestUserHandler_DeleteUser_NotFound(t *testing.T) {
	handler := handlers.NewUserHandler(&stubUserService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/ghost", nil)
	req.SetPathValue("id", "ghost")
	w := httptest.NewRecorder()
	handler.DeleteUser(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No user with the id of ghost", errorMessage(t, w))
}
