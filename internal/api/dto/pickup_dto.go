package dto

import (
	"time"

	"github.com/spec-kit/lifebridge/internal/domain"
)

// SchedulePickupRequest is the pickup scheduling body.
type SchedulePickupRequest struct {
	RequestID string `json:"requestId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Location  string `json:"location"`
}

// PickupResponse is the public view of a pickup.
type PickupResponse struct {
	ID        string              `json:"id"`
	DonorID   string              `json:"donor"`
	RequestID string              `json:"request"`
	Date      string              `json:"date"`
	Time      string              `json:"time"`
	Location  string              `json:"location"`
	Status    domain.PickupStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// NewPickupResponse maps a pickup to its public view.
func NewPickupResponse(pickup *domain.Pickup) PickupResponse {
	return PickupResponse{
		ID:        pickup.ID,
		DonorID:   pickup.DonorID,
		RequestID: pickup.RequestID,
		Date:      pickup.Date,
		Time:      pickup.Time,
		Location:  pickup.Location,
		Status:    pickup.Status,
		CreatedAt: pickup.CreatedAt,
	}
}

// DonationResponse is one entry in the donor's history view.
type DonationResponse struct {
	ID         string              `json:"id"`
	Date       string              `json:"date"`
	Time       string              `json:"time"`
	Location   string              `json:"location"`
	BloodGroup string              `json:"bloodGroup"`
	Units      int                 `json:"units"`
	Recipient  RequesterResponse   `json:"recipient"`
	Status     domain.PickupStatus `json:"status"`
}

// NewDonationResponse flattens a pickup with request and recipient details.
func NewDonationResponse(record *domain.DonationRecord) DonationResponse {
	return DonationResponse{
		ID:         record.ID,
		Date:       record.Date,
		Time:       record.Time,
		Location:   record.Location,
		BloodGroup: record.BloodGroup,
		Units:      record.Units,
		Recipient: RequesterResponse{
			Name:     record.RecipientName,
			Hospital: record.RecipientHospital,
		},
		Status: record.Status,
	}
}
