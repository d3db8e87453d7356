package domain

import "time"

// RequestStatus enumerates lifecycle states for blood requests.
type RequestStatus string

const (
	RequestStatusActive    RequestStatus = "active"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusExpired   RequestStatus = "expired"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// RequestUrgency enumerates how urgent a request is.
type RequestUrgency string

const (
	UrgencyLow      RequestUrgency = "low"
	UrgencyMedium   RequestUrgency = "medium"
	UrgencyHigh     RequestUrgency = "high"
	UrgencyCritical RequestUrgency = "critical"
)

// ValidUrgency reports whether the urgency value is recognized.
func ValidUrgency(urgency RequestUrgency) bool {
	switch urgency {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// OfferStatus enumerates states of an individual donor offer.
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusConfirmed OfferStatus = "confirmed"
	OfferStatusCompleted OfferStatus = "completed"
	OfferStatusCancelled OfferStatus = "cancelled"
)

// DonorOffer is a donor's declared commitment against a request.
type DonorOffer struct {
	ID           string
	RequestID    string
	DonorID      string
	Status       OfferStatus
	DonationDate time.Time
	Units        int
	CreatedAt    time.Time
}

// BloodRequest is the aggregate for a standing ask for blood.
type BloodRequest struct {
	ID           string
	BloodGroup   string
	Units        int
	Location     Location
	RequestedBy  string
	Status       RequestStatus
	Urgency      RequestUrgency
	PatientName  string
	HospitalName string
	Notes        string
	ContactPhone string
	ExpiresAt    *time.Time
	Donors       []DonorOffer
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Requester display fields populated on reads.
	RequesterName     string
	RequesterHospital string
}

// Terminal reports whether the request left the active state.
func (r *BloodRequest) Terminal() bool {
	return r.Status != RequestStatusActive
}

var allowedRequestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusActive:    {RequestStatusFulfilled, RequestStatusExpired, RequestStatusCancelled},
	RequestStatusFulfilled: {},
	RequestStatusExpired:   {},
	RequestStatusCancelled: {},
}

// ValidRequestTransition reports whether a status change is allowed.
// Transitions run forward only; nothing leaves a terminal state.
func ValidRequestTransition(current, next RequestStatus) bool {
	for _, candidate := range allowedRequestTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
