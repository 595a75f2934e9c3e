package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh363/small-business-app/internal/api/handlers"
	"github.com/Josh363/small-business-app/internal/api/middleware"
	"github.com/Josh363/small-business-app/internal/api/routes"
	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

type tokens map[string]*entities.User

func (t tokens) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	if u, ok := t[token]; ok {
		return u, nil
	}
	return nil, apperrors.NewUnauthenticatedError("Not authorized to access this route")
}

type businesses struct{ handlers.BusinessService }

func (businesses) List(ctx context.Context, spec query.Spec) (*query.Page[*services.BusinessView], error) {
	return query.NewPage([]*services.BusinessView{}, 0, spec), nil
}

func (businesses) Search(ctx context.Context, params repositories.BusinessSearchParams) (*query.Page[*entities.Business], error) {
	return query.NewPage([]*entities.Business{}, 0, query.Spec{Page: 1, Limit: 20}), nil
}

type users struct{ handlers.UserService }

func (users) List(ctx context.Context, spec query.Spec) (*query.Page[*entities.User], error) {
	return query.NewPage([]*entities.User{}, 0, spec), nil
}

type ok struct{}

func (ok) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo_b1.jpg"), []byte("jpeg"), 0o644))

	return routes.NewRouter(routes.Options{
		BusinessHandler: handlers.NewBusinessHandler(businesses{}, 1<<20),
		ServiceHandler:  handlers.NewServiceHandler(nil),
		ReviewHandler:   handlers.NewReviewHandler(nil),
		AuthHandler:     handlers.NewAuthHandler(nil, handlers.CookieOptions{ExpireDays: 30}),
		UserHandler:     handlers.NewUserHandler(users{}),
		HealthHandler:   handlers.NewHealthHandler(map[string]handlers.Pinger{"postgres": ok{}}),
		Authenticator: tokens{
			"pub":   {ID: "u1", Role: entities.RolePublisher},
			"admin": {ID: "u2", Role: entities.RoleAdmin},
		},
		RateLimiter:    middleware.NewRateLimiter(100, 10*time.Minute),
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxBodyBytes:   2 << 20,
		UploadDir:      dir,
	}).SetupRoutes()
}

func serve(h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	h := newTestRouter(t)

	w := serve(h, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = serve(h, http.MethodGet, "/api/v1/businesses?limit=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"count":0,"pagination":{},"data":[]}`, w.Body.String())

	w = serve(h, http.MethodGet, "/api/v1/businesses/search?q=bread", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(h, http.MethodGet, "/uploads/photo_b1.jpg", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg", w.Body.String())
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		token  string
		want   int
	}{
		{"create business anonymous", http.MethodPost, "/api/v1/businesses", "", http.StatusUnauthorized},
		{"create review anonymous", http.MethodPost, "/api/v1/businesses/b1/reviews", "", http.StatusUnauthorized},
		{"list users as publisher", http.MethodGet, "/api/v1/users", "pub", http.StatusUnauthorized},
		{"list users as admin", http.MethodGet, "/api/v1/users", "admin", http.StatusOK},
		{"me with bad token", http.MethodGet, "/api/v1/auth/me", "forged", http.StatusUnauthorized},
		{"wrong method", http.MethodPatch, "/api/v1/businesses", "", http.StatusMethodNotAllowed},
		{"unknown route", http.MethodGet, "/api/v1/bootcamps", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h, tt.method, tt.target, tt.token)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/businesses", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
