package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/infrastructure/observability"
	"github.com/Josh363/small-business-app/pkg/config"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

// Claims are the JWT claims issued on login
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// RegisterInput is the payload of a sign-up
type RegisterInput struct {
	Name     string        `json:"name" validate:"required"`
	Email    string        `json:"email" validate:"required,email"`
	Password string        `json:"password" validate:"required,min=6"`
	Role     entities.Role `json:"role" validate:"omitempty,oneof=user publisher"`
}

// UpdateDetailsInput is the payload of a profile update
type UpdateDetailsInput struct {
	Name  string `json:"name" validate:"omitempty"`
	Email string `json:"email" validate:"omitempty,email"`
}

// AuthService issues and verifies tokens and manages the caller's own account
type AuthService struct {
	users  repositories.UserRepository
	mailer providers.Mailer
	cfg    config.AuthConfig
	now    func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.UserRepository, mailer providers.Mailer, cfg config.AuthConfig) *AuthService {
	return &AuthService{users: users, mailer: mailer, cfg: cfg, now: time.Now}
}

// Register creates a user account and returns a signed token for it
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entities.User, string, error) {
	if err := validateInput(in); err != nil {
		return nil, "", err
	}
	if in.Role == "" {
		in.Role = entities.RoleUser
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	user := &entities.User{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     strings.ToLower(in.Email),
		Role:      in.Role,
		Password:  hash,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks credentials and returns a signed token
func (s *AuthService) Login(ctx context.Context, email, password string) (*entities.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperrors.NewValidationError("Please provide an email and password")
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, "", apperrors.NewUnauthenticatedError("Invalid credentials")
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", apperrors.NewUnauthenticatedError("Invalid credentials")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs an HS256 token for user
func (s *AuthService) IssueToken(user *entities.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpire)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", apperrors.NewInternalError("failed to sign token", err)
	}
	return signed, nil
}

// Authenticate verifies a token and loads the user it was issued to
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	denied := apperrors.NewUnauthenticatedError("Not authorized to access this route")
	if token == "" {
		return nil, denied
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || claims.UserID == "" {
		return nil, denied
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, denied
		}
		return nil, err
	}
	return user, nil
}

// Me returns the current state of the caller's account
func (s *AuthService) Me(ctx context.Context, user *entities.User) (*entities.User, error) {
	return s.users.GetByID(ctx, user.ID)
}

// ForgotPassword stores a hashed reset token and mails the raw token inside resetURL.
// resetURL receives the raw token and returns the link sent to the user.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, resetURL func(token string) string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFoundError("There is no user with that email")
		}
		return err
	}

	raw, err := newResetToken()
	if err != nil {
		return apperrors.NewInternalError("failed to generate reset token", err)
	}
	expire := s.now().Add(s.cfg.ResetTokenTTL)
	user.ResetPasswordToken = hashResetToken(raw)
	user.ResetPasswordExpire = &expire
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	msg := providers.Message{
		To:      user.Email,
		Subject: "Password reset token",
		Body: "You are receiving this email because you (or someone else) has requested the reset of a password. " +
			"Please make a PUT request to:\n\n" + resetURL(raw),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("user_id", user.ID).Msg("Failed to send reset email")

		user.ResetPasswordToken = ""
		user.ResetPasswordExpire = nil
		if clearErr := s.users.Update(ctx, user); clearErr != nil {
			return apperrors.NewInternalError("failed to clear reset token", errors.Join(err, clearErr))
		}
		return apperrors.NewExternalError("Email could not be sent", err)
	}
	return nil
}

// ResetPassword sets a new password for the holder of an unexpired reset token
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (*entities.User, string, error) {
	if len(password) < 6 {
		return nil, "", apperrors.NewValidationError("Password must be at least 6 characters")
	}

	user, err := s.users.GetByResetToken(ctx, hashResetToken(token))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, "", apperrors.NewValidationError("Invalid token")
		}
		return nil, "", err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, "", err
	}
	user.Password = hash
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, "", err
	}

	signed, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}

// UpdateDetails changes the caller's name and email
func (s *AuthService) UpdateDetails(ctx context.Context, user *entities.User, in UpdateDetailsInput) (*entities.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	current, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		current.Name = in.Name
	}
	if in.Email != "" {
		current.Email = strings.ToLower(in.Email)
	}
	if err := s.users.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// UpdatePassword changes the caller's password after checking the current one
func (s *AuthService) UpdatePassword(ctx context.Context, user *entities.User, currentPassword, newPassword string) (*entities.User, string, error) {
	if len(newPassword) < 6 {
		return nil, "", apperrors.NewValidationError("Password must be at least 6 characters")
	}

	current, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(current.Password), []byte(currentPassword)) != nil {
		return nil, "", apperrors.NewUnauthenticatedError("Password is incorrect")
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return nil, "", err
	}
	current.Password = hash
	if err := s.users.Update(ctx, current); err != nil {
		return nil, "", err
	}

	signed, err := s.IssueToken(current)
	if err != nil {
		return nil, "", err
	}
	return current, signed, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.NewInternalError("failed to hash password", err)
	}
	return string(hash), nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
