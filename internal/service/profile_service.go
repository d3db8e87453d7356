package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lifebridge/internal/domain"
	"github.com/spec-kit/lifebridge/internal/repository"
	apperrors "github.com/spec-kit/lifebridge/pkg/util"
)

// ProfileService reads and updates user profiles. Data is fetched
// fresh per call; there is no process-wide cache.
type ProfileService struct {
	users repository.UserRepository
}

// ProfileUpdateInput carries optional profile fields; nil means keep.
type ProfileUpdateInput struct {
	Name       *string
	Age        *int
	BloodGroup *string
	Phone      *string
	Hospital   *string
	Location   *domain.Location
	EmailOptIn *bool
}

// NewProfileService constructs the service.
func NewProfileService(users repository.UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

// GetProfile loads the caller's profile.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateProfile applies a partial update. Email and role never change
// through this path.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.BloodGroup != nil && *input.BloodGroup != "" && !domain.ValidBloodGroup(*input.BloodGroup) {
		return nil, apperrors.NewValidationError("invalid profile payload", map[string]any{
			"bloodGroup": fmt.Sprintf("Invalid blood group: must be one of %s", strings.Join(domain.BloodGroups, ", ")),
		})
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Age != nil {
		user.Age = input.Age
	}
	if input.BloodGroup != nil && *input.BloodGroup != "" {
		user.BloodGroup = *input.BloodGroup
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Hospital != nil {
		user.Hospital = *input.Hospital
	}
	if input.Location != nil {
		user.Location = *input.Location
	}
	if input.EmailOptIn != nil {
		user.EmailOptIn = *input.EmailOptIn
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
