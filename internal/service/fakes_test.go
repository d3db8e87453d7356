package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lifebridge/internal/domain"
	"github.com/spec-kit/lifebridge/internal/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListAllExcept(_ context.Context, excludedID string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if user.ID == excludedID {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

type memRequestRepo struct {
	mu       sync.Mutex
	seq      int
	requests map[string]*domain.BloodRequest
	offers   map[string][]domain.DonorOffer
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{
		requests: map[string]*domain.BloodRequest{},
		offers:   map[string][]domain.DonorOffer{},
	}
}

func (r *memRequestRepo) Create(_ context.Context, request *domain.BloodRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	request.ID = fmt.Sprintf("req-%d", r.seq)
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	clone := *request
	r.requests[request.ID] = &clone
	return nil
}

func (r *memRequestRepo) GetByID(_ context.Context, id string) (*domain.BloodRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *request
	clone.Donors = append([]domain.DonorOffer(nil), r.offers[id]...)
	return &clone, nil
}

func (r *memRequestRepo) ListWithFilter(_ context.Context, filter repository.RequestFilter) ([]domain.BloodRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.BloodRequest
	for _, request := range r.requests {
		if filter.Status != nil && request.Status != *filter.Status {
			continue
		}
		if filter.BloodGroup != nil && request.BloodGroup != *filter.BloodGroup {
			continue
		}
		if filter.RequestedBy != nil && request.RequestedBy != *filter.RequestedBy {
			continue
		}
		out = append(out, *request)
	}
	return out, nil
}

func (r *memRequestRepo) UpdateStatus(_ context.Context, id string, from, to domain.RequestStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if request.Status != from {
		return false, nil
	}
	request.Status = to
	request.UpdatedAt = time.Now()
	return true, nil
}

func (r *memRequestRepo) AddDonorOffer(_ context.Context, offer *domain.DonorOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	offer.ID = fmt.Sprintf("offer-%d", r.seq)
	offer.CreatedAt = time.Now()
	r.offers[offer.RequestID] = append(r.offers[offer.RequestID], *offer)
	return nil
}

func (r *memRequestRepo) ListOffers(_ context.Context, requestID string) ([]domain.DonorOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.DonorOffer(nil), r.offers[requestID]...), nil
}

type memPickupRepo struct {
	mu      sync.Mutex
	seq     int
	pickups []domain.Pickup

	requests *memRequestRepo
	users    *memUserRepo
}

func newMemPickupRepo(requests *memRequestRepo, users *memUserRepo) *memPickupRepo {
	return &memPickupRepo{requests: requests, users: users}
}

func (r *memPickupRepo) Create(_ context.Context, pickup *domain.Pickup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	pickup.ID = fmt.Sprintf("pickup-%d", r.seq)
	pickup.CreatedAt = time.Now()
	r.pickups = append(r.pickups, *pickup)
	return nil
}

func (r *memPickupRepo) ListByDonor(ctx context.Context, donorID string) ([]domain.DonationRecord, error) {
	r.mu.Lock()
	pickups := append([]domain.Pickup(nil), r.pickups...)
	r.mu.Unlock()

	var out []domain.DonationRecord
	for i := len(pickups) - 1; i >= 0; i-- {
		pickup := pickups[i]
		if pickup.DonorID != donorID {
			continue
		}
		record := domain.DonationRecord{Pickup: pickup}
		if request, err := r.requests.GetByID(ctx, pickup.RequestID); err == nil {
			record.BloodGroup = request.BloodGroup
			record.Units = request.Units
			if owner, err := r.users.GetByID(ctx, request.RequestedBy); err == nil {
				record.RecipientName = owner.Name
				record.RecipientHospital = owner.Hospital
			}
		}
		out = append(out, record)
	}
	return out, nil
}

type memNotificationLog struct {
	mu      sync.Mutex
	seq     int
	records []domain.NotificationRecord
}

func (r *memNotificationLog) Create(_ context.Context, record *domain.NotificationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	record.ID = fmt.Sprintf("note-%d", r.seq)
	record.CreatedAt = time.Now()
	r.records = append(r.records, *record)
	return nil
}

func (r *memNotificationLog) ListByRequest(_ context.Context, requestID string) ([]domain.NotificationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.NotificationRecord
	for _, record := range r.records {
		if record.RequestID == requestID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *memNotificationLog) byStatus(status domain.NotificationStatus) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, record := range r.records {
		if record.Status == status {
			count++
		}
	}
	return count
}

type memViewCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemViewCounter() *memViewCounter {
	return &memViewCounter{counts: map[string]int64{}}
}

func (c *memViewCounter) Increment(_ context.Context, requestID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[requestID]++
	return c.counts[requestID], nil
}

func (c *memViewCounter) Get(_ context.Context, requestID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[requestID], nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failFor: map[string]error{}}
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, mail := range m.sent {
		out = append(out, mail.To)
	}
	return out
}
