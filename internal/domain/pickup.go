package domain

import "time"

// PickupStatus enumerates lifecycle states for scheduled donations.
type PickupStatus string

const (
	PickupStatusScheduled PickupStatus = "scheduled"
	PickupStatusCompleted PickupStatus = "completed"
	PickupStatusCancelled PickupStatus = "cancelled"
)

// Pickup links one donor to one request at a time and place.
type Pickup struct {
	ID        string
	DonorID   string
	RequestID string
	Date      string
	Time      string
	Location  string
	Status    PickupStatus
	CreatedAt time.Time
}

// DonationRecord is a pickup flattened with request and recipient
// details for the donor's history view.
type DonationRecord struct {
	Pickup
	BloodGroup        string
	Units             int
	RecipientName     string
	RecipientHospital string
}
