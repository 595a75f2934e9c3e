package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Josh363/small-business-app/internal/api/middleware"
	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/domain/entities"
)

// AuthService defines the account operations used by the handler
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*entities.User, string, error)
	Login(ctx context.Context, email, password string) (*entities.User, string, error)
	Me(ctx context.Context, user *entities.User) (*entities.User, error)
	ForgotPassword(ctx context.Context, email string, resetURL func(token string) string) error
	ResetPassword(ctx context.Context, token, password string) (*entities.User, string, error)
	UpdateDetails(ctx context.Context, user *entities.User, in services.UpdateDetailsInput) (*entities.User, error)
	UpdatePassword(ctx context.Context, user *entities.User, currentPassword, newPassword string) (*entities.User, string, error)
}

// CookieOptions controls the token cookie set on login
type CookieOptions struct {
	ExpireDays int
	Secure     bool
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	service AuthService
	cookie  CookieOptions
	now     func() time.Time
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie, now: time.Now}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	_, token, err := h.service.Register(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.sendToken(w, http.StatusOK, token)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	_, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.sendToken(w, http.StatusOK, token)
}

// Logout handles GET /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "none",
		Path:     "/",
		Expires:  h.now().Add(10 * time.Second),
		HttpOnly: true,
	})
	respondWithData(w, http.StatusOK, map[string]interface{}{})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context(), currentUser(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, user)
}

// ForgotPassword handles POST /api/v1/auth/forgotpassword
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	base := requestScheme(r) + "://" + r.Host + "/api/v1/auth/resetpassword/"
	err := h.service.ForgotPassword(r.Context(), req.Email, func(token string) string {
		return base + token
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "Email sent")
}

// ResetPassword handles PUT /api/v1/auth/resetpassword/{resettoken}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	_, token, err := h.service.ResetPassword(r.Context(), r.PathValue("resettoken"), req.Password)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.sendToken(w, http.StatusOK, token)
}

// UpdateDetails handles PUT /api/v1/auth/updatedetails
func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateDetailsInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	user, err := h.service.UpdateDetails(r.Context(), currentUser(r), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, user)
}

// UpdatePassword handles PUT /api/v1/auth/updatepassword
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	_, token, err := h.service.UpdatePassword(r.Context(), currentUser(r), req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.sendToken(w, http.StatusOK, token)
}

func (h *AuthHandler) sendToken(w http.ResponseWriter, status int, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  h.now().Add(time.Duration(h.cookie.ExpireDays) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondWithJSON(w, status, map[string]interface{}{
		"success": true,
		"token":   token,
	})
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
