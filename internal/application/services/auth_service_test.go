package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/internal/mocks"
	"github.com/Josh363/small-business-app/pkg/config"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:     "test-secret",
	JWTExpire:     time.Hour,
	ResetTokenTTL: 10 * time.Minute,
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_RegisterIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	users := &mocks.UserRepository{}
	auth := services.NewAuthService(users, &mocks.Mailer{}, testAuthConfig)

	var stored *entities.User
	users.On("Create", ctx, mock.AnythingOfType("*entities.User")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*entities.User)
	}).Return(nil)

	user, token, err := auth.Register(ctx, services.RegisterInput{Name: "Jane", Email: "Jane@Example.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, entities.RoleUser, user.Role)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.NotEqual(t, "123456", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("123456")))

	users.On("GetByID", ctx, user.ID).Return(stored, nil)
	authed, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestAuthService_RegisterRejectsAdminRole(t *testing.T) {
	users := &mocks.UserRepository{}
	auth := services.NewAuthService(users, &mocks.Mailer{}, testAuthConfig)

	_, _, err := auth.Register(context.Background(), services.RegisterInput{Name: "Eve", Email: "eve@example.com", Password: "123456", Role: entities.RoleAdmin})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	users := &mocks.UserRepository{}
	auth := services.NewAuthService(users, &mocks.Mailer{}, testAuthConfig)
	user := &entities.User{ID: "u1", Email: "jane@example.com", Role: entities.RoleUser, Password: hashed(t, "123456")}
	users.On("GetByEmail", ctx, "jane@example.com").Return(user, nil)
	users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.NewNotFoundError("User not found"))

	_, token, err := auth.Login(ctx, "jane@example.com", "123456")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = auth.Login(ctx, "jane@example.com", "wrong")
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeUnauthenticated))
	assert.Contains(t, err.Error(), "Invalid credentials")

	_, _, err = auth.Login(ctx, "nobody@example.com", "123456")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeUnauthenticated))

	_, _, err = auth.Login(ctx, "", "")
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "Please provide an email and password")
}

func TestAuthService_AuthenticateRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	users := &mocks.UserRepository{}
	auth := services.NewAuthService(users, &mocks.Mailer{}, testAuthConfig)

	other := services.NewAuthService(users, &mocks.Mailer{}, config.AuthConfig{JWTSecret: "other", JWTExpire: time.Hour})
	foreign, err := other.IssueToken(&entities.User{ID: "u1"})
	require.NoError(t, err)

	expiredIssuer := services.NewAuthService(users, &mocks.Mailer{}, config.AuthConfig{JWTSecret: "test-secret", JWTExpire: -time.Minute})
	expired, err := expiredIssuer.IssueToken(&entities.User{ID: "u1"})
	require.NoError(t, err)

	for name, token := range map[string]string{"empty": "", "garbage": "abc.def.ghi", "wrong key": foreign, "expired": expired} {
		_, err := auth.Authenticate(ctx, token)
		require.True(t, apperrors.Is(err, apperrors.ErrorTypeUnauthenticated), name)
		assert.Contains(t, err.Error(), "Not authorized to access this route", name)
	}
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAuthService_ForgotPasswordMailFailureClearsToken(t *testing.T) {
	ctx := context.Background()
	users := &mocks.UserRepository{}
	mailer := &mocks.Mailer{}
	auth := services.NewAuthService(users, mailer, testAuthConfig)
	user := &entities.User{ID: "u1", Email: "jane@example.com"}

	var tokens []string
	users.On("GetByEmail", ctx, "jane@example.com").Return(user, nil)
	users.On("Update", ctx, user).Run(func(args mock.Arguments) {
		tokens = append(tokens, args.Get(1).(*entities.User).ResetPasswordToken)
	}).Return(nil)
	mailer.On("Send", ctx, mock.MatchedBy(func(m providers.Message) bool {
		return m.To == "jane@example.com" && strings.Contains(m.Body, "https://app.test/resetpassword/")
	})).Return(errors.New("smtp: 421"))

	err := auth.ForgotPassword(ctx, "jane@example.com", func(token string) string {
		return "https://app.test/resetpassword/" + token
	})
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeExternal))
	assert.Contains(t, err.Error(), "Email could not be sent")

	require.Len(t, tokens, 2)
	assert.Len(t, tokens[0], 64)
	assert.Empty(t, tokens[1])
	assert.Nil(t, user.ResetPasswordExpire)
}

func TestAuthService_ForgotThenResetPassword(t *testing.T) {
	ctx := context.Background()
	users := &mocks.UserRepository{}
	mailer := &mocks.Mailer{}
	auth := services.NewAuthService(users, mailer, testAuthConfig)
	user := &entities.User{ID: "u1", Email: "jane@example.com", Password: hashed(t, "old-password")}

	var rawToken string
	users.On("GetByEmail", ctx, "jane@example.com").Return(user, nil)
	users.On("Update", ctx, user).Return(nil)
	mailer.On("Send", ctx, mock.Anything).Return(nil)

	require.NoError(t, auth.ForgotPassword(ctx, "jane@example.com", func(token string) string {
		rawToken = token
		return token
	}))
	require.Len(t, rawToken, 40)
	require.NotNil(t, user.ResetPasswordExpire)
	assert.NotEqual(t, rawToken, user.ResetPasswordToken)

	users.On("GetByResetToken", ctx, user.ResetPasswordToken).Return(user, nil)
	users.On("GetByResetToken", ctx, mock.Anything).Return(nil, apperrors.NewNotFoundError("Invalid token"))

	_, _, err := auth.ResetPassword(ctx, "not-the-token", "new-password")
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "Invalid token")

	_, token, err := auth.ResetPassword(ctx, rawToken, "new-password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Empty(t, user.ResetPasswordToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("new-password")))
}

func TestAuthService_UpdatePasswordChecksCurrent(t *testing.T) {
	ctx := context.Background()
	users := &mocks.UserRepository{}
	auth := services.NewAuthService(users, &mocks.Mailer{}, testAuthConfig)
	user := &entities.User{ID: "u1", Password: hashed(t, "current")}
	users.On("GetByID", ctx, "u1").Return(user, nil)

	_, _, err := auth.UpdatePassword(ctx, &entities.User{ID: "u1"}, "wrong", "replacement")
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeUnauthenticated))
	assert.Contains(t, err.Error(), "Password is incorrect")
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

	users.On("Update", ctx, user).Return(nil)
	_, token, err := auth.UpdatePassword(ctx, &entities.User{ID: "u1"}, "current", "replacement")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestAuthService_UpdateDetails(t *testing.T) {
	ctx := context.Background()
	users := &mocks.UserRepository{}
	auth := services.NewAuthService(users, &mocks.Mailer{}, testAuthConfig)
	user := &entities.User{ID: "u1", Name: "Jane", Email: "jane@example.com"}
	users.On("GetByID", ctx, "u1").Return(user, nil)
	users.On("Update", ctx, user).Return(nil)

	updated, err := auth.UpdateDetails(ctx, &entities.User{ID: "u1"}, services.UpdateDetailsInput{Email: "JANE@new.example"})
	require.NoError(t, err)
	assert.Equal(t, "Jane", updated.Name)
	assert.Equal(t, "jane@new.example", updated.Email)
}
