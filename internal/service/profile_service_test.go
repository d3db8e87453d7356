package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lifebridge/internal/domain"
	apperrors "github.com/spec-kit/lifebridge/pkg/util"
)

func TestUpdateProfilePartial(t *testing.T) {
	users := newMemUserRepo()
	svc := NewProfileService(users)
	user := seedUser(t, users, "alice", domain.RoleDonor)

	phone := "555-0101"
	group := "B-"
	optOut := false
	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{
		Phone:      &phone,
		BloodGroup: &group,
		EmailOptIn: &optOut,
	})
	require.NoError(t, err)
	assert.Equal(t, "555-0101", updated.Phone)
	assert.Equal(t, "B-", updated.BloodGroup)
	assert.False(t, updated.EmailOptIn)
	// untouched fields survive the partial update
	assert.Equal(t, "alice", updated.Name)
	assert.Equal(t, user.Email, updated.Email)
	assert.Equal(t, domain.RoleDonor, updated.Role)
}

func TestUpdateProfileRejectsBadBloodGroup(t *testing.T) {
	users := newMemUserRepo()
	svc := NewProfileService(users)
	user := seedUser(t, users, "alice", domain.RoleDonor)

	group := "Q+"
	_, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateInput{BloodGroup: &group})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestGetProfileUnknownUser(t *testing.T) {
	svc := NewProfileService(newMemUserRepo())

	_, err := svc.GetProfile(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
