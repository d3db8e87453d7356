package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/lifebridge/internal/domain"
	"github.com/spec-kit/lifebridge/internal/events"
	"github.com/spec-kit/lifebridge/internal/mail"
	"github.com/spec-kit/lifebridge/internal/repository"
	apperrors "github.com/spec-kit/lifebridge/pkg/util"
)

// PickupService schedules donation pickups and notifies both parties.
type PickupService struct {
	pickups    repository.PickupRepository
	requests   repository.BloodRequestRepository
	users      repository.UserRepository
	log        repository.NotificationLogRepository
	mailer     mail.Mailer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PickupDependencies bundles collaborators for the pickup service.
type PickupDependencies struct {
	PickupRepo          repository.PickupRepository
	RequestRepo         repository.BloodRequestRepository
	UserRepo            repository.UserRepository
	NotificationLogRepo repository.NotificationLogRepository
	Mailer              mail.Mailer
	Dispatcher          events.Dispatcher
	Logger              *zap.Logger
}

// PickupScheduleInput describes the schedule form payload.
type PickupScheduleInput struct {
	RequestID string
	Date      string
	Time      string
	Location  string
}

// NewPickupService constructs the service.
func NewPickupService(deps PickupDependencies) *PickupService {
	return &PickupService{
		pickups:    deps.PickupRepo,
		requests:   deps.RequestRepo,
		users:      deps.UserRepo,
		log:        deps.NotificationLogRepo,
		mailer:     deps.Mailer,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// SchedulePickup persists a scheduled pickup, then emails the request
// owner and the donor. Mail failures are returned as warnings; the
// pickup stands regardless.
func (s *PickupService) SchedulePickup(ctx context.Context, donorID string, input PickupScheduleInput) (*domain.Pickup, []string, error) {
	fieldErrors := map[string]any{}
	if strings.TrimSpace(input.RequestID) == "" {
		fieldErrors["requestId"] = "requestId is required"
	}
	if strings.TrimSpace(input.Date) == "" {
		fieldErrors["date"] = "date is required"
	}
	if strings.TrimSpace(input.Time) == "" {
		fieldErrors["time"] = "time is required"
	}
	if strings.TrimSpace(input.Location) == "" {
		fieldErrors["location"] = "location is required"
	}
	if len(fieldErrors) > 0 {
		return nil, nil, apperrors.NewValidationError("invalid pickup payload", fieldErrors)
	}

	request, err := s.requests.GetByID(ctx, input.RequestID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.NewNotFound("request", map[string]any{"request_id": input.RequestID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	donor, err := s.users.GetByID(ctx, donorID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.NewNotFound("donor", map[string]any{"donor_id": donorID})
		}
		return nil, nil, apperrors.MapError(err)
	}

	pickup := &domain.Pickup{
		DonorID:   donor.ID,
		RequestID: request.ID,
		Date:      strings.TrimSpace(input.Date),
		Time:      strings.TrimSpace(input.Time),
		Location:  strings.TrimSpace(input.Location),
		Status:    domain.PickupStatusScheduled,
	}
	if err := s.pickups.Create(ctx, pickup); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	warnings := s.notifyParties(ctx, pickup, request, donor)

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventPickupScheduled,
			RequestID: request.ID,
			ActorID:   donor.ID,
			Timestamp: time.Now(),
			Payload: events.PickupScheduledPayload{
				Pickup:  *pickup,
				DonorID: donor.ID,
				OwnerID: request.RequestedBy,
			},
		})
	}

	return pickup, warnings, nil
}

// ListDonorPickups returns the donor's donation history, recipient
// populated, newest first.
func (s *PickupService) ListDonorPickups(ctx context.Context, donorID string) ([]domain.DonationRecord, error) {
	records, err := s.pickups.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

func (s *PickupService) notifyParties(ctx context.Context, pickup *domain.Pickup, request *domain.BloodRequest, donor *domain.User) []string {
	var warnings []string

	owner, err := s.users.GetByID(ctx, request.RequestedBy)
	if err != nil {
		s.logger.Warn("pickup scheduled but request owner could not be resolved",
			zap.String("request_id", request.ID), zap.Error(err))
		warnings = append(warnings, "failed to notify requester")
	} else {
		subject := "Donation pickup scheduled"
		body := fmt.Sprintf("Hello %s,\n\n%s has scheduled a donation for your blood request (%s, %d unit(s)).\n\nDate: %s\nTime: %s\nLocation: %s\n",
			owner.Name, donor.Name, request.BloodGroup, request.Units, pickup.Date, pickup.Time, pickup.Location)
		if !s.deliver(ctx, request.ID, owner.Email, subject, body) {
			warnings = append(warnings, "failed to notify requester")
		}
	}

	subject := "Your donation pickup is confirmed"
	body := fmt.Sprintf("Hello %s,\n\nThank you for scheduling a donation.\n\nDate: %s\nTime: %s\nLocation: %s\n",
		donor.Name, pickup.Date, pickup.Time, pickup.Location)
	if hospital := requestHospital(request, owner); hospital != "" {
		body += fmt.Sprintf("Recipient hospital: %s\n", hospital)
	}
	if !s.deliver(ctx, request.ID, donor.Email, subject, body) {
		warnings = append(warnings, "failed to notify donor")
	}

	return warnings
}

func requestHospital(request *domain.BloodRequest, owner *domain.User) string {
	if request.HospitalName != "" {
		return request.HospitalName
	}
	if owner != nil {
		return owner.Hospital
	}
	return ""
}

func (s *PickupService) deliver(ctx context.Context, requestID, to, subject, body string) bool {
	err := s.mailer.Send(to, subject, body)

	record := &domain.NotificationRecord{
		RequestID:      requestID,
		RecipientEmail: to,
		Subject:        subject,
		Status:         domain.NotificationStatusSent,
	}
	if err != nil {
		record.Status = domain.NotificationStatusFailed
		record.Error = err.Error()
		s.logger.Warn("pickup notification failed", zap.String("to", to), zap.Error(err))
	}
	if logErr := s.log.Create(ctx, record); logErr != nil {
		s.logger.Warn("failed to record pickup notification", zap.Error(logErr))
	}
	return err == nil
}
