package domain

import "time"

// NotificationStatus records the outcome of one delivery attempt.
type NotificationStatus string

const (
	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"
)

// NotificationRecord is one per-recipient entry of a fan-out.
// Delivery is at-most-once; a failed record is the operator's signal
// to retrigger, nothing retries automatically.
type NotificationRecord struct {
	ID             string
	RequestID      string
	RecipientEmail string
	Subject        string
	Status         NotificationStatus
	Error          string
	CreatedAt      time.Time
}
