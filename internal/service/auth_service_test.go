package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lifebridge/internal/config"
	"github.com/spec-kit/lifebridge/internal/domain"
	apperrors "github.com/spec-kit/lifebridge/pkg/util"
)

func newAuthService(users *memUserRepo) *AuthService {
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 60
	cfg.Auth.BcryptCost = 4
	return NewAuthService(cfg, users)
}

func TestRegisterAndLogin(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users)

	user, token, exp, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Alice",
		Email:      "Alice@Example.com",
		Password:   "s3cret",
		Role:       domain.RoleRecipient,
		BloodGroup: "O+",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.EmailOptIn)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleRecipient, claims.Role)

	logged, token, _, err := svc.Login(context.Background(), "ALICE@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, token)
}

func TestRegisterValidation(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users)

	tests := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{"missing name", RegisterInput{Email: "a@b.c", Password: "x", Role: domain.RoleDonor}, "name"},
		{"missing email", RegisterInput{Name: "a", Password: "x", Role: domain.RoleDonor}, "email"},
		{"missing password", RegisterInput{Name: "a", Email: "a@b.c", Role: domain.RoleDonor}, "password"},
		{"admin not assignable", RegisterInput{Name: "a", Email: "a@b.c", Password: "x", Role: domain.RoleAdmin}, "role"},
		{"bad blood group", RegisterInput{Name: "a", Email: "a@b.c", Password: "x", Role: domain.RoleDonor, BloodGroup: "Z+"}, "bloodGroup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := svc.Register(context.Background(), tt.input)
			require.Error(t, err)
			domainErr := apperrors.ToDomainError(err)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			assert.Contains(t, domainErr.Details, tt.field)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users)

	input := RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "x", Role: domain.RoleDonor}
	_, _, _, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), input)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Equal(t, "User already exists", domainErr.Message)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users)

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "s3cret", Role: domain.RoleDonor,
	})
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
	assert.Equal(t, "Invalid email or password", domainErr.Message)

	_, _, _, err = svc.Login(context.Background(), "nobody@example.com", "s3cret")
	domainErr = apperrors.ToDomainError(err)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
	assert.Equal(t, "Invalid email or password", domainErr.Message)
}
