package domain

import "time"

// UserRole separates donors from recipients; admins bypass role guards.
type UserRole string

const (
	RoleDonor     UserRole = "donor"
	RoleRecipient UserRole = "recipient"
	RoleAdmin     UserRole = "admin"
)

// Location is a free-text address with optional coordinates.
type Location struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// User is the domain model for donors, recipients and admins.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	BloodGroup   string
	Age          *int
	Phone        string
	Hospital     string
	Location     Location
	EmailOptIn   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
