package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/lifebridge/internal/domain"
	"github.com/spec-kit/lifebridge/internal/events"
	"github.com/spec-kit/lifebridge/internal/mail"
	"github.com/spec-kit/lifebridge/internal/observability"
	"github.com/spec-kit/lifebridge/internal/repository"
)

// NotificationService turns domain events into outbound email. Every
// delivery attempt is at-most-once and recorded in the notification
// log; nothing here retries or queues.
type NotificationService struct {
	users          repository.UserRepository
	log            repository.NotificationLogRepository
	mailer         mail.Mailer
	dispatcher     events.Dispatcher
	logger         *zap.Logger
	metrics        *observability.Metrics
	frontendOrigin string
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	UserRepo            repository.UserRepository
	NotificationLogRepo repository.NotificationLogRepository
	Mailer              mail.Mailer
	Dispatcher          events.Dispatcher
	Logger              *zap.Logger
	Metrics             *observability.Metrics
	FrontendOrigin      string
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		users:          deps.UserRepo,
		log:            deps.NotificationLogRepo,
		mailer:         deps.Mailer,
		dispatcher:     deps.Dispatcher,
		logger:         deps.Logger,
		metrics:        deps.Metrics,
		frontendOrigin: deps.FrontendOrigin,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRequestCreated, n.handleRequestCreated)
	n.dispatcher.Subscribe(events.EventDonorOffered, n.handleDonorOffered)
	n.dispatcher.Subscribe(events.EventPickupScheduled, n.handlePickupScheduled)
	n.dispatcher.Subscribe(events.EventRequestStatusChanged, n.handleRequestStatusChanged)
}

// handleRequestCreated launches the donor fan-out in the background so
// the create response never waits on email delivery.
func (n *NotificationService) handleRequestCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RequestCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}
	n.logger.Info("RequestCreated", zap.String("request_id", event.RequestID))

	// Detached context: the HTTP request finishes independently of the
	// fan-out, and a crash mid-batch leaves the request durably created
	// with only a subset of donors notified.
	go n.FanOutRequestAlert(context.Background(), &payload.Request)
	return nil
}

// FanOutRequestAlert notifies the candidate donor set: every user
// except the requester, with no compatibility or proximity filter.
// One email per candidate, dispatched concurrently, each outcome
// logged individually.
func (n *NotificationService) FanOutRequestAlert(ctx context.Context, request *domain.BloodRequest) {
	candidates, err := n.users.ListAllExcept(ctx, request.RequestedBy)
	if err != nil {
		n.logger.Error("donor discovery failed", zap.String("request_id", request.ID), zap.Error(err))
		return
	}

	subject := "Blood Request Alert"
	var wg sync.WaitGroup
	var mu sync.Mutex
	sent, failed := 0, 0

	for i := range candidates {
		donor := candidates[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			body := n.requestAlertBody(&donor, request)
			err := n.mailer.Send(donor.Email, subject, body)
			n.record(ctx, request.ID, donor.Email, subject, err)
			mu.Lock()
			if err != nil {
				failed++
			} else {
				sent++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	n.metrics.RecordFanOut()
	n.logger.Info("donor fan-out complete",
		zap.String("request_id", request.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
	)
}

func (n *NotificationService) requestAlertBody(donor *domain.User, request *domain.BloodRequest) string {
	return fmt.Sprintf("Hello %s,\n\nA new blood request has been made:\n\nBlood Group: %s\nUnits: %d\nLocation: %s\n\nPlease login to Life Bridge if you're available to donate.\n\n%s/donate/%s",
		donor.Name, request.BloodGroup, request.Units, request.Location.Address, n.frontendOrigin, request.ID)
}

// handleDonorOffered tells the request owner a donor responded,
// honoring the owner's email opt-in preference.
func (n *NotificationService) handleDonorOffered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DonorOfferedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}
	n.logger.Info("DonorOffered", zap.String("request_id", event.RequestID), zap.String("donor_id", payload.DonorID))

	owner, err := n.users.GetByID(ctx, payload.OwnerID)
	if err != nil {
		n.logger.Warn("request owner lookup failed", zap.String("owner_id", payload.OwnerID), zap.Error(err))
		return err
	}
	if !owner.EmailOptIn {
		return nil
	}

	subject := "A donor has responded to your blood request"
	body := fmt.Sprintf("Hello %s,\n\n%s is willing to donate and proposed %s as the donation date.\n\nPlease login to Life Bridge to coordinate the pickup.",
		owner.Name, payload.DonorName, payload.DonationDate.Format("2006-01-02"))

	err = n.mailer.Send(owner.Email, subject, body)
	n.record(ctx, event.RequestID, owner.Email, subject, err)
	return err
}

func (n *NotificationService) handlePickupScheduled(_ context.Context, event events.Event) error {
	// Pickup emails go out synchronously with scheduling; this handler
	// only traces the event.
	n.logger.Info("PickupScheduled", zap.String("request_id", event.RequestID), zap.String("actor_id", event.ActorID))
	return nil
}

func (n *NotificationService) handleRequestStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("RequestStatusChanged", zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) record(ctx context.Context, requestID, to, subject string, sendErr error) {
	record := &domain.NotificationRecord{
		RequestID:      requestID,
		RecipientEmail: to,
		Subject:        subject,
		Status:         domain.NotificationStatusSent,
	}
	if sendErr != nil {
		record.Status = domain.NotificationStatusFailed
		record.Error = sendErr.Error()
	}
	n.metrics.RecordEmail(sendErr == nil)
	if err := n.log.Create(ctx, record); err != nil {
		n.logger.Warn("failed to record notification outcome",
			zap.String("request_id", requestID), zap.String("to", to), zap.Error(err))
	}
}
