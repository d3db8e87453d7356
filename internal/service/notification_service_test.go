package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/lifebridge/internal/domain"
	"github.com/spec-kit/lifebridge/internal/events"
	"github.com/spec-kit/lifebridge/internal/observability"
)

func newNotificationService(users *memUserRepo, log *memNotificationLog, mailer *fakeMailer) (*NotificationService, *observability.Metrics) {
	metrics := observability.NewMetrics()
	svc := NewNotificationService(NotificationDependencies{
		UserRepo:            users,
		NotificationLogRepo: log,
		Mailer:              mailer,
		Dispatcher:          events.NewInMemoryDispatcher(),
		Logger:              zap.NewNop(),
		Metrics:             metrics,
		FrontendOrigin:      "http://localhost:3000",
	})
	return svc, metrics
}

func TestFanOutReachesEveryoneExceptRequester(t *testing.T) {
	users := newMemUserRepo()
	log := &memNotificationLog{}
	mailer := newFakeMailer()
	svc, metrics := newNotificationService(users, log, mailer)

	owner := seedUser(t, users, "alice", domain.RoleRecipient)
	seedUser(t, users, "bob", domain.RoleDonor)
	seedUser(t, users, "carol", domain.RoleDonor)
	seedUser(t, users, "dave", domain.RoleRecipient)

	request := &domain.BloodRequest{
		ID:          "req-1",
		BloodGroup:  "O+",
		Units:       2,
		Location:    domain.Location{Address: "Springfield General"},
		RequestedBy: owner.ID,
		Status:      domain.RequestStatusActive,
	}
	svc.FanOutRequestAlert(context.Background(), request)

	assert.Equal(t, 3, mailer.sentCount())
	assert.NotContains(t, mailer.recipients(), owner.Email)
	assert.Equal(t, 3, log.byStatus(domain.NotificationStatusSent))

	sent, failed := metrics.EmailCounts()
	assert.Equal(t, int64(3), sent)
	assert.Zero(t, failed)

	records, err := log.ListByRequest(context.Background(), request.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, record := range records {
		assert.Equal(t, "Blood Request Alert", record.Subject)
	}
}

func TestFanOutRecordsFailuresIndividually(t *testing.T) {
	users := newMemUserRepo()
	log := &memNotificationLog{}
	mailer := newFakeMailer()
	svc, metrics := newNotificationService(users, log, mailer)

	owner := seedUser(t, users, "alice", domain.RoleRecipient)
	seedUser(t, users, "bob", domain.RoleDonor)
	broken := seedUser(t, users, "carol", domain.RoleDonor)
	mailer.failFor[broken.Email] = errors.New("smtp: connection refused")

	request := &domain.BloodRequest{
		ID:          "req-1",
		BloodGroup:  "A-",
		Units:       1,
		Location:    domain.Location{Address: "Springfield General"},
		RequestedBy: owner.ID,
	}
	svc.FanOutRequestAlert(context.Background(), request)

	assert.Equal(t, 1, mailer.sentCount())
	assert.Equal(t, 1, log.byStatus(domain.NotificationStatusSent))
	assert.Equal(t, 1, log.byStatus(domain.NotificationStatusFailed))

	sent, failed := metrics.EmailCounts()
	assert.Equal(t, int64(1), sent)
	assert.Equal(t, int64(1), failed)

	records, err := log.ListByRequest(context.Background(), request.ID)
	require.NoError(t, err)
	for _, record := range records {
		if record.RecipientEmail == broken.Email {
			assert.Equal(t, domain.NotificationStatusFailed, record.Status)
			assert.Contains(t, record.Error, "connection refused")
		}
	}
}

func TestFanOutBodyMentionsRequestDetails(t *testing.T) {
	users := newMemUserRepo()
	log := &memNotificationLog{}
	mailer := newFakeMailer()
	svc, _ := newNotificationService(users, log, mailer)

	owner := seedUser(t, users, "alice", domain.RoleRecipient)
	seedUser(t, users, "bob", domain.RoleDonor)

	request := &domain.BloodRequest{
		ID:          "req-42",
		BloodGroup:  "AB+",
		Units:       4,
		Location:    domain.Location{Address: "12 Main Street"},
		RequestedBy: owner.ID,
	}
	svc.FanOutRequestAlert(context.Background(), request)

	require.Equal(t, 1, mailer.sentCount())
	body := mailer.sent[0].Body
	assert.Contains(t, body, "Blood Group: AB+")
	assert.Contains(t, body, "Units: 4")
	assert.Contains(t, body, "12 Main Street")
	assert.Contains(t, body, "http://localhost:3000/donate/req-42")
}

func TestDonorOfferedNotifiesOwner(t *testing.T) {
	users := newMemUserRepo()
	log := &memNotificationLog{}
	mailer := newFakeMailer()
	svc, _ := newNotificationService(users, log, mailer)

	owner := seedUser(t, users, "alice", domain.RoleRecipient)
	donor := seedUser(t, users, "bob", domain.RoleDonor)

	event := events.Event{
		ID:        "evt-1",
		Type:      events.EventDonorOffered,
		RequestID: "req-1",
		ActorID:   donor.ID,
		Timestamp: time.Now(),
		Payload: events.DonorOfferedPayload{
			DonorID:      donor.ID,
			DonorName:    donor.Name,
			DonationDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			OwnerID:      owner.ID,
		},
	}
	require.NoError(t, svc.handleDonorOffered(context.Background(), event))

	require.Equal(t, 1, mailer.sentCount())
	assert.Equal(t, owner.Email, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, "bob")
	assert.Contains(t, mailer.sent[0].Body, "2025-01-10")
}

func TestDonorOfferedHonorsOptOut(t *testing.T) {
	users := newMemUserRepo()
	log := &memNotificationLog{}
	mailer := newFakeMailer()
	svc, _ := newNotificationService(users, log, mailer)

	owner := seedUser(t, users, "alice", domain.RoleRecipient)
	optedOut, err := users.GetByID(context.Background(), owner.ID)
	require.NoError(t, err)
	optedOut.EmailOptIn = false
	require.NoError(t, users.Update(context.Background(), optedOut))

	event := events.Event{
		Type:      events.EventDonorOffered,
		RequestID: "req-1",
		Payload: events.DonorOfferedPayload{
			DonorID:      "donor-1",
			DonorName:    "bob",
			DonationDate: time.Now(),
			OwnerID:      owner.ID,
		},
	}
	require.NoError(t, svc.handleDonorOffered(context.Background(), event))
	assert.Zero(t, mailer.sentCount())
}
