package dto

import (
	"time"

	"github.com/spec-kit/lifebridge/internal/domain"
)

// CreateRequestPayload is the blood request creation body. Units is a
// float so that non-integer input reaches validation instead of
// failing JSON decoding.
type CreateRequestPayload struct {
	BloodGroup   string     `json:"bloodGroup"`
	Units        float64    `json:"units"`
	Location     string     `json:"location"`
	Lat          *float64   `json:"lat"`
	Lng          *float64   `json:"lng"`
	Urgency      string     `json:"urgency"`
	PatientName  string     `json:"patientName"`
	HospitalName string     `json:"hospitalName"`
	Notes        string     `json:"notes"`
	ContactPhone string     `json:"contactPhone"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

// DonateRequest carries a donor's offer.
type DonateRequest struct {
	DonationDate string `json:"donationDate"`
}

// DonorOfferResponse is the public view of one offer.
type DonorOfferResponse struct {
	ID           string             `json:"id"`
	DonorID      string             `json:"donor"`
	Status       domain.OfferStatus `json:"status"`
	DonationDate string             `json:"donationDate"`
	Units        int                `json:"units"`
}

// RequesterResponse is the owner's public display view.
type RequesterResponse struct {
	Name     string `json:"name"`
	Hospital string `json:"hospital,omitempty"`
}

// RequestResponse is the public view of a blood request.
type RequestResponse struct {
	ID           string                `json:"id"`
	BloodGroup   string                `json:"bloodGroup"`
	Units        int                   `json:"units"`
	Location     domain.Location       `json:"location"`
	RequestedBy  string                `json:"requestedBy"`
	Requester    RequesterResponse     `json:"requester"`
	Status       domain.RequestStatus  `json:"status"`
	Urgency      domain.RequestUrgency `json:"urgency"`
	PatientName  string                `json:"patientName,omitempty"`
	HospitalName string                `json:"hospitalName,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	ContactPhone string                `json:"contactPhone,omitempty"`
	ExpiresAt    *time.Time            `json:"expiresAt,omitempty"`
	Donors       []DonorOfferResponse  `json:"donors"`
	ViewCount    *int64                `json:"viewCount,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// NewRequestResponse maps a domain request to its public view.
func NewRequestResponse(request *domain.BloodRequest) RequestResponse {
	donors := make([]DonorOfferResponse, 0, len(request.Donors))
	for _, offer := range request.Donors {
		donors = append(donors, DonorOfferResponse{
			ID:           offer.ID,
			DonorID:      offer.DonorID,
			Status:       offer.Status,
			DonationDate: offer.DonationDate.Format("2006-01-02"),
			Units:        offer.Units,
		})
	}
	return RequestResponse{
		ID:          request.ID,
		BloodGroup:  request.BloodGroup,
		Units:       request.Units,
		Location:    request.Location,
		RequestedBy: request.RequestedBy,
		Requester: RequesterResponse{
			Name:     request.RequesterName,
			Hospital: request.RequesterHospital,
		},
		Status:       request.Status,
		Urgency:      request.Urgency,
		PatientName:  request.PatientName,
		HospitalName: request.HospitalName,
		Notes:        request.Notes,
		ContactPhone: request.ContactPhone,
		ExpiresAt:    request.ExpiresAt,
		Donors:       donors,
		CreatedAt:    request.CreatedAt,
		UpdatedAt:    request.UpdatedAt,
	}
}

// NotificationResponse is one fan-out outcome entry.
type NotificationResponse struct {
	ID             string                    `json:"id"`
	RecipientEmail string                    `json:"recipientEmail"`
	Subject        string                    `json:"subject"`
	Status         domain.NotificationStatus `json:"status"`
	Error          string                    `json:"error,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// NewNotificationResponse maps a delivery record to its API view.
func NewNotificationResponse(record *domain.NotificationRecord) NotificationResponse {
	return NotificationResponse{
		ID:             record.ID,
		RecipientEmail: record.RecipientEmail,
		Subject:        record.Subject,
		Status:         record.Status,
		Error:          record.Error,
		CreatedAt:      record.CreatedAt,
	}
}
