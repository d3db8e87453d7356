package events

import (
	"time"

	"github.com/spec-kit/lifebridge/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventDonorOffered         EventType = "donor_offered"
	EventPickupScheduled      EventType = "pickup_scheduled"
	EventRequestStatusChanged EventType = "request_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	Request domain.BloodRequest `json:"request"`
}

// DonorOfferedPayload payload.
type DonorOfferedPayload struct {
	DonorID      string    `json:"donor_id"`
	DonorName    string    `json:"donor_name"`
	DonationDate time.Time `json:"donation_date"`
	OwnerID      string    `json:"owner_id"`
}

// PickupScheduledPayload payload.
type PickupScheduledPayload struct {
	Pickup  domain.Pickup `json:"pickup"`
	DonorID string        `json:"donor_id"`
	OwnerID string        `json:"owner_id"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
}
