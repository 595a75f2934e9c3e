package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh363/small-business-app/internal/api/middleware"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

type stubAuthenticator map[string]*entities.User

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, apperrors.NewUnauthenticatedError("Not authorized to access this route")
}

var tokens = stubAuthenticator{
	"pub":  {ID: "u1", Role: entities.RolePublisher},
	"user": {ID: "u2", Role: entities.RoleUser},
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(middleware.UserFromContext(r.Context()).ID))
}

func decodeError(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.False(t, resp.Success)
	return resp.Error
}

func TestProtect_ReadsBearerAndCookie(t *testing.T) {
	h := middleware.Protect(tokens)(http.HandlerFunc(whoAmI))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer pub")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: "user"})
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "u2", w.Body.String())
}

func TestProtect_MissingToken(t *testing.T) {
	h := middleware.Protect(tokens)(http.HandlerFunc(whoAmI))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized to access this route", decodeError(t, w.Body.Bytes()))
}

func TestAuthorize_RejectsOtherRoles(t *testing.T) {
	h := middleware.Protect(tokens)(middleware.Authorize(entities.RolePublisher, entities.RoleAdmin)(http.HandlerFunc(whoAmI)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/businesses", nil)
	req.Header.Set("Authorization", "Bearer user")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User role user is not authorized to access this route", decodeError(t, w.Body.Bytes()))

	req = httptest.NewRequest(http.MethodPost, "/api/v1/businesses", nil)
	req.Header.Set("Authorization", "Bearer pub")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
