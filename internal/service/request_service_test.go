package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lifebridge/internal/domain"
	"github.com/spec-kit/lifebridge/internal/events"
	apperrors "github.com/spec-kit/lifebridge/pkg/util"
)

func newRequestService(requests *memRequestRepo, users *memUserRepo, log *memNotificationLog) *RequestService {
	return NewRequestService(RequestDependencies{
		RequestRepo:         requests,
		UserRepo:            users,
		NotificationLogRepo: log,
		Views:               newMemViewCounter(),
		Dispatcher:          events.NewInMemoryDispatcher(),
	})
}

func seedUser(t *testing.T, users *memUserRepo, name string, role domain.UserRole) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:       name,
		Email:      name + "@example.com",
		Role:       role,
		EmailOptIn: true,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestCreateRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   RequestCreateInput
		field   string
		message string
	}{
		{
			name:    "unknown blood group",
			input:   RequestCreateInput{BloodGroup: "C+", Units: 2, Location: domain.Location{Address: "Springfield General"}},
			field:   "bloodGroup",
			message: "Invalid blood group: must be one of A+, A-, B+, B-, AB+, AB-, O+, O-",
		},
		{
			name:    "zero units",
			input:   RequestCreateInput{BloodGroup: "O+", Units: 0, Location: domain.Location{Address: "Springfield General"}},
			field:   "units",
			message: "Invalid units value: must be a positive integer",
		},
		{
			name:    "negative units",
			input:   RequestCreateInput{BloodGroup: "O+", Units: -1, Location: domain.Location{Address: "Springfield General"}},
			field:   "units",
			message: "Invalid units value: must be a positive integer",
		},
		{
			name:    "fractional units",
			input:   RequestCreateInput{BloodGroup: "O+", Units: 1.5, Location: domain.Location{Address: "Springfield General"}},
			field:   "units",
			message: "Invalid units value: must be a positive integer",
		},
		{
			name:    "location too short",
			input:   RequestCreateInput{BloodGroup: "O+", Units: 2, Location: domain.Location{Address: "NY"}},
			field:   "location",
			message: "Invalid location: must be at least 3 characters",
		},
		{
			name:    "whitespace-padded location still too short",
			input:   RequestCreateInput{BloodGroup: "O+", Units: 2, Location: domain.Location{Address: "  NY  "}},
			field:   "location",
			message: "Invalid location: must be at least 3 characters",
		},
		{
			name:    "unknown urgency",
			input:   RequestCreateInput{BloodGroup: "O+", Units: 2, Location: domain.Location{Address: "Springfield General"}, Urgency: "asap"},
			field:   "urgency",
			message: "Invalid urgency: must be one of low, medium, high, critical",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newMemUserRepo()
			svc := newRequestService(newMemRequestRepo(), users, &memNotificationLog{})
			owner := seedUser(t, users, "alice", domain.RoleRecipient)

			_, err := svc.CreateRequest(context.Background(), owner.ID, tt.input)
			require.Error(t, err)

			domainErr := apperrors.ToDomainError(err)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			assert.Equal(t, tt.message, domainErr.Details[tt.field])
		})
	}
}

func TestCreateRequestAcceptsEveryBloodGroup(t *testing.T) {
	users := newMemUserRepo()
	svc := newRequestService(newMemRequestRepo(), users, &memNotificationLog{})
	owner := seedUser(t, users, "alice", domain.RoleRecipient)

	for _, group := range domain.BloodGroups {
		request, err := svc.CreateRequest(context.Background(), owner.ID, RequestCreateInput{
			BloodGroup: group,
			Units:      2,
			Location:   domain.Location{Address: "Springfield General"},
		})
		require.NoError(t, err, group)
		assert.Equal(t, group, request.BloodGroup)
		assert.Equal(t, domain.RequestStatusActive, request.Status)
		assert.Equal(t, domain.UrgencyMedium, request.Urgency)
	}
}

func TestCreateRequestDefaultsAndTrims(t *testing.T) {
	users := newMemUserRepo()
	requests := newMemRequestRepo()
	svc := newRequestService(requests, users, &memNotificationLog{})
	owner := seedUser(t, users, "alice", domain.RoleRecipient)

	request, err := svc.CreateRequest(context.Background(), owner.ID, RequestCreateInput{
		BloodGroup:  "AB-",
		Units:       3,
		Location:    domain.Location{Address: "  12 Main Street  "},
		PatientName: "  John Doe ",
	})
	require.NoError(t, err)
	assert.Equal(t, "12 Main Street", request.Location.Address)
	assert.Equal(t, "John Doe", request.PatientName)
	assert.Equal(t, 3, request.Units)
	assert.Equal(t, owner.ID, request.RequestedBy)
	assert.NotEmpty(t, request.ID)
}

func TestListActiveRequestsFiltersByGroup(t *testing.T) {
	users := newMemUserRepo()
	requests := newMemRequestRepo()
	svc := newRequestService(requests, users, &memNotificationLog{})
	owner := seedUser(t, users, "alice", domain.RoleRecipient)

	for _, group := range []string{"O+", "O+", "A-"} {
		_, err := svc.CreateRequest(context.Background(), owner.ID, RequestCreateInput{
			BloodGroup: group,
			Units:      1,
			Location:   domain.Location{Address: "Springfield General"},
		})
		require.NoError(t, err)
	}

	all, err := svc.ListActiveRequests(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	group := "O+"
	filtered, err := svc.ListActiveRequests(context.Background(), &group)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	bogus := "C+"
	_, err = svc.ListActiveRequests(context.Background(), &bogus)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestGetRequestCountsViewsAndExpiresLazily(t *testing.T) {
	users := newMemUserRepo()
	requests := newMemRequestRepo()
	svc := newRequestService(requests, users, &memNotificationLog{})
	owner := seedUser(t, users, "alice", domain.RoleRecipient)

	past := time.Now().Add(-time.Hour)
	request, err := svc.CreateRequest(context.Background(), owner.ID, RequestCreateInput{
		BloodGroup: "B+",
		Units:      1,
		Location:   domain.Location{Address: "Springfield General"},
		ExpiresAt:  &past,
	})
	require.NoError(t, err)

	got, views, err := svc.GetRequest(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusExpired, got.Status)
	assert.Equal(t, int64(1), views)

	_, views, err = svc.GetRequest(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), views)

	_, _, err = svc.GetRequest(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestRecordDonorOffer(t *testing.T) {
	users := newMemUserRepo()
	requests := newMemRequestRepo()
	svc := newRequestService(requests, users, &memNotificationLog{})
	owner := seedUser(t, users, "alice", domain.RoleRecipient)
	donor := seedUser(t, users, "bob", domain.RoleDonor)

	request, err := svc.CreateRequest(context.Background(), owner.ID, RequestCreateInput{
		BloodGroup: "O+",
		Units:      2,
		Location:   domain.Location{Address: "Springfield General"},
	})
	require.NoError(t, err)

	offer, err := svc.RecordDonorOffer(context.Background(), donor, request.ID, "2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusPending, offer.Status)
	assert.Equal(t, donor.ID, offer.DonorID)
	assert.Equal(t, 1, offer.Units)
	assert.Equal(t, "2025-01-10", offer.DonationDate.Format("2006-01-02"))

	got, _, err := svc.GetRequest(context.Background(), request.ID)
	require.NoError(t, err)
	require.Len(t, got.Donors, 1)
	// an offer leaves the request active and its units untouched
	assert.Equal(t, domain.RequestStatusActive, got.Status)
	assert.Equal(t, 2, got.Units)
}

func TestRecordDonorOfferRejections(t *testing.T) {
	users := newMemUserRepo()
	requests := newMemRequestRepo()
	svc := newRequestService(requests, users, &memNotificationLog{})
	owner := seedUser(t, users, "alice", domain.RoleRecipient)
	donor := seedUser(t, users, "bob", domain.RoleDonor)

	request, err := svc.CreateRequest(context.Background(), owner.ID, RequestCreateInput{
		BloodGroup: "O+",
		Units:      2,
		Location:   domain.Location{Address: "Springfield General"},
	})
	require.NoError(t, err)

	_, err = svc.RecordDonorOffer(context.Background(), donor, "missing", "2025-01-10")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.RecordDonorOffer(context.Background(), donor, request.ID, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = svc.RecordDonorOffer(context.Background(), donor, request.ID, "next tuesday")
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, "Invalid donation date", domainErr.Details["donationDate"])

	_, err = svc.CancelRequest(context.Background(), owner, request.ID)
	require.NoError(t, err)

	_, err = svc.RecordDonorOffer(context.Background(), donor, request.ID, "2025-01-10")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestStatusTransitions(t *testing.T) {
	users := newMemUserRepo()
	requests := newMemRequestRepo()
	svc := newRequestService(requests, users, &memNotificationLog{})
	owner := seedUser(t, users, "alice", domain.RoleRecipient)
	stranger := seedUser(t, users, "mallory", domain.RoleRecipient)
	admin := seedUser(t, users, "root", domain.RoleAdmin)

	request, err := svc.CreateRequest(context.Background(), owner.ID, RequestCreateInput{
		BloodGroup: "A+",
		Units:      1,
		Location:   domain.Location{Address: "Springfield General"},
	})
	require.NoError(t, err)

	_, err = svc.CancelRequest(context.Background(), stranger, request.ID)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	updated, err := svc.FulfillRequest(context.Background(), owner, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusFulfilled, updated.Status)

	// terminal states never transition again
	_, err = svc.CancelRequest(context.Background(), owner, request.ID)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
	_, err = svc.FulfillRequest(context.Background(), admin, request.ID)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	second, err := svc.CreateRequest(context.Background(), owner.ID, RequestCreateInput{
		BloodGroup: "A+",
		Units:      1,
		Location:   domain.Location{Address: "Springfield General"},
	})
	require.NoError(t, err)

	// admin may transition someone else's request
	updated, err = svc.CancelRequest(context.Background(), admin, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCancelled, updated.Status)
}

func TestListNotificationsOwnerOnly(t *testing.T) {
	users := newMemUserRepo()
	requests := newMemRequestRepo()
	log := &memNotificationLog{}
	svc := newRequestService(requests, users, log)
	owner := seedUser(t, users, "alice", domain.RoleRecipient)
	stranger := seedUser(t, users, "mallory", domain.RoleDonor)
	admin := seedUser(t, users, "root", domain.RoleAdmin)

	request, err := svc.CreateRequest(context.Background(), owner.ID, RequestCreateInput{
		BloodGroup: "O-",
		Units:      1,
		Location:   domain.Location{Address: "Springfield General"},
	})
	require.NoError(t, err)

	require.NoError(t, log.Create(context.Background(), &domain.NotificationRecord{
		RequestID:      request.ID,
		RecipientEmail: "bob@example.com",
		Subject:        "Blood Request Alert",
		Status:         domain.NotificationStatusSent,
	}))

	_, err = svc.ListNotifications(context.Background(), stranger, request.ID)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	records, err := svc.ListNotifications(context.Background(), owner, request.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = svc.ListNotifications(context.Background(), admin, request.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
