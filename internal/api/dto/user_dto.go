package dto

import (
	"time"

	"github.com/spec-kit/lifebridge/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Age        *int     `json:"age"`
	BloodGroup string   `json:"bloodGroup"`
	Role       string   `json:"role"`
	Phone      string   `json:"phone"`
	Hospital   string   `json:"hospital"`
	Location   string   `json:"location"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UpdateProfileRequest carries optional profile fields.
type UpdateProfileRequest struct {
	Name       *string  `json:"name"`
	Age        *int     `json:"age"`
	BloodGroup *string  `json:"bloodGroup"`
	Phone      *string  `json:"phone"`
	Hospital   *string  `json:"hospital"`
	Location   *string  `json:"location"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	EmailOptIn *bool    `json:"emailOptIn"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       domain.UserRole `json:"role"`
	BloodGroup string          `json:"bloodGroup,omitempty"`
	Age        *int            `json:"age,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	Hospital   string          `json:"hospital,omitempty"`
	Location   domain.Location `json:"location"`
	EmailOptIn bool            `json:"emailOptIn"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewUserResponse maps a domain user to its public view.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		BloodGroup: user.BloodGroup,
		Age:        user.Age,
		Phone:      user.Phone,
		Hospital:   user.Hospital,
		Location:   user.Location,
		EmailOptIn: user.EmailOptIn,
		CreatedAt:  user.CreatedAt,
	}
}
