package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lifebridge/internal/domain"
	"github.com/spec-kit/lifebridge/internal/events"
	"github.com/spec-kit/lifebridge/internal/repository"
	apperrors "github.com/spec-kit/lifebridge/pkg/util"
)

// RequestService coordinates the blood request lifecycle: creation,
// donor offers and status transitions.
type RequestService struct {
	requests   repository.BloodRequestRepository
	users      repository.UserRepository
	log        repository.NotificationLogRepository
	views      repository.ViewCounter
	dispatcher events.Dispatcher
}

// RequestDependencies bundles repositories for the request service.
type RequestDependencies struct {
	RequestRepo         repository.BloodRequestRepository
	UserRepo            repository.UserRepository
	NotificationLogRepo repository.NotificationLogRepository
	Views               repository.ViewCounter
	Dispatcher          events.Dispatcher
}

// RequestCreateInput describes request creation payload. Units arrives
// as a float so that non-integer values are rejected with a field
// error instead of a decode failure.
type RequestCreateInput struct {
	BloodGroup   string
	Units        float64
	Location     domain.Location
	Urgency      domain.RequestUrgency
	PatientName  string
	HospitalName string
	Notes        string
	ContactPhone string
	ExpiresAt    *time.Time
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestRepo,
		users:      deps.UserRepo,
		log:        deps.NotificationLogRepo,
		views:      deps.Views,
		dispatcher: deps.Dispatcher,
	}
}

// CreateRequest validates and persists a new active blood request,
// then announces it so donors get notified. Notification is a
// best-effort side effect; it never rolls back the created request.
func (s *RequestService) CreateRequest(ctx context.Context, requesterID string, input RequestCreateInput) (*domain.BloodRequest, error) {
	fieldErrors := map[string]any{}

	if !domain.ValidBloodGroup(input.BloodGroup) {
		fieldErrors["bloodGroup"] = fmt.Sprintf("Invalid blood group: must be one of %s", strings.Join(domain.BloodGroups, ", "))
	}
	if input.Units <= 0 || input.Units != math.Trunc(input.Units) {
		fieldErrors["units"] = "Invalid units value: must be a positive integer"
	}
	address := strings.TrimSpace(input.Location.Address)
	if len(address) < 3 {
		fieldErrors["location"] = "Invalid location: must be at least 3 characters"
	}
	urgency := input.Urgency
	if urgency == "" {
		urgency = domain.UrgencyMedium
	} else if !domain.ValidUrgency(urgency) {
		fieldErrors["urgency"] = "Invalid urgency: must be one of low, medium, high, critical"
	}
	if len(fieldErrors) > 0 {
		return nil, apperrors.NewValidationError("invalid request payload", fieldErrors)
	}

	request := &domain.BloodRequest{
		BloodGroup: input.BloodGroup,
		Units:      int(input.Units),
		Location: domain.Location{
			Address: address,
			Lat:     input.Location.Lat,
			Lng:     input.Location.Lng,
		},
		RequestedBy:  requesterID,
		Status:       domain.RequestStatusActive,
		Urgency:      urgency,
		PatientName:  strings.TrimSpace(input.PatientName),
		HospitalName: strings.TrimSpace(input.HospitalName),
		Notes:        strings.TrimSpace(input.Notes),
		ContactPhone: strings.TrimSpace(input.ContactPhone),
		ExpiresAt:    input.ExpiresAt,
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: request.ID,
		ActorID:   requesterID,
		Payload:   events.RequestCreatedPayload{Request: *request},
	})
	return request, nil
}

// ListActiveRequests returns active requests, optionally narrowed to
// one blood group, each populated with requester display fields.
func (s *RequestService) ListActiveRequests(ctx context.Context, bloodGroup *string) ([]domain.BloodRequest, error) {
	if bloodGroup != nil && !domain.ValidBloodGroup(*bloodGroup) {
		return nil, apperrors.NewValidationError("invalid request payload", map[string]any{
			"bloodGroup": fmt.Sprintf("Invalid blood group: must be one of %s", strings.Join(domain.BloodGroups, ", ")),
		})
	}
	active := domain.RequestStatusActive
	result, err := s.requests.ListWithFilter(ctx, repository.RequestFilter{
		Status:     &active,
		BloodGroup: bloodGroup,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ListRequestsByOwner returns all of a user's requests, newest first,
// with the view count gathered for each so owners can see reach.
func (s *RequestService) ListRequestsByOwner(ctx context.Context, ownerID string) ([]domain.BloodRequest, map[string]int64, error) {
	result, err := s.requests.ListWithFilter(ctx, repository.RequestFilter{RequestedBy: &ownerID})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	views := make(map[string]int64, len(result))
	for i := range result {
		if count, err := s.views.Get(ctx, result[i].ID); err == nil && count > 0 {
			views[result[i].ID] = count
		}
	}
	return result, views, nil
}

// GetRequest fetches one request with its offers, counting the view.
// A request whose expiry has passed is transitioned out of active
// lazily here; no background scheduler drives expiry.
func (s *RequestService) GetRequest(ctx context.Context, requestID string) (*domain.BloodRequest, int64, error) {
	request, err := s.fetchRequest(ctx, requestID)
	if err != nil {
		return nil, 0, err
	}

	if request.Status == domain.RequestStatusActive && request.ExpiresAt != nil && request.ExpiresAt.Before(time.Now()) {
		swapped, err := s.requests.UpdateStatus(ctx, request.ID, domain.RequestStatusActive, domain.RequestStatusExpired)
		if err != nil {
			return nil, 0, apperrors.MapError(err)
		}
		if swapped {
			request.Status = domain.RequestStatusExpired
			s.publishEvent(ctx, events.Event{
				Type:      events.EventRequestStatusChanged,
				RequestID: request.ID,
				Payload: events.RequestStatusChangedPayload{
					OldStatus: domain.RequestStatusActive,
					NewStatus: domain.RequestStatusExpired,
				},
			})
		}
	}

	views, err := s.views.Increment(ctx, request.ID)
	if err != nil {
		// view counting is cosmetic; a Redis hiccup must not fail the read
		views = 0
	}
	return request, views, nil
}

// RecordDonorOffer appends a pending offer to a live request. It does
// not change the request status by itself.
func (s *RequestService) RecordDonorOffer(ctx context.Context, donor *domain.User, requestID, donationDate string) (*domain.DonorOffer, error) {
	request, err := s.fetchRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Terminal() {
		return nil, apperrors.NewConflict("request is no longer accepting donors", map[string]any{
			"status": request.Status,
		})
	}
	if strings.TrimSpace(donationDate) == "" {
		return nil, apperrors.NewValidationError("invalid request payload", map[string]any{
			"donationDate": "donationDate is required",
		})
	}
	date, err := parseDonationDate(donationDate)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid request payload", map[string]any{
			"donationDate": "Invalid donation date",
		})
	}

	offer := &domain.DonorOffer{
		RequestID:    request.ID,
		DonorID:      donor.ID,
		Status:       domain.OfferStatusPending,
		DonationDate: date,
		Units:        1,
	}
	if err := s.requests.AddDonorOffer(ctx, offer); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventDonorOffered,
		RequestID: request.ID,
		ActorID:   donor.ID,
		Payload: events.DonorOfferedPayload{
			DonorID:      donor.ID,
			DonorName:    donor.Name,
			DonationDate: date,
			OwnerID:      request.RequestedBy,
		},
	})
	return offer, nil
}

// CancelRequest moves an active request to cancelled. Only the owner
// or an admin may cancel.
func (s *RequestService) CancelRequest(ctx context.Context, actor *domain.User, requestID string) (*domain.BloodRequest, error) {
	return s.transition(ctx, actor, requestID, domain.RequestStatusCancelled)
}

// FulfillRequest moves an active request to fulfilled. The transition
// is a single compare-and-swap against the active status, never an
// implicit side effect of completing an offer.
func (s *RequestService) FulfillRequest(ctx context.Context, actor *domain.User, requestID string) (*domain.BloodRequest, error) {
	return s.transition(ctx, actor, requestID, domain.RequestStatusFulfilled)
}

// ListNotifications returns the fan-out outcome trail for a request so
// an operator can see which donors were reached.
func (s *RequestService) ListNotifications(ctx context.Context, actor *domain.User, requestID string) ([]domain.NotificationRecord, error) {
	request, err := s.fetchRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequestedBy != actor.ID && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only the request owner may view notifications")
	}
	records, err := s.log.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

func (s *RequestService) transition(ctx context.Context, actor *domain.User, requestID string, next domain.RequestStatus) (*domain.BloodRequest, error) {
	request, err := s.fetchRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequestedBy != actor.ID && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only the request owner may change its status")
	}
	if !domain.ValidRequestTransition(request.Status, next) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": request.Status,
			"to":   next,
		})
	}
	swapped, err := s.requests.UpdateStatus(ctx, request.ID, request.Status, next)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !swapped {
		return nil, apperrors.NewConflict("request status changed concurrently", nil)
	}

	oldStatus := request.Status
	request.Status = next
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestStatusChanged,
		RequestID: request.ID,
		ActorID:   actor.ID,
		Payload: events.RequestStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: next,
		},
	})
	return request, nil
}

func (s *RequestService) fetchRequest(ctx context.Context, requestID string) (*domain.BloodRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	return request, nil
}

func parseDonationDate(val string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, val)
}

func (s *RequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
