package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lifebridge/internal/domain"
)

// RequestFilter narrows blood request listings.
type RequestFilter struct {
	Status      *domain.RequestStatus
	BloodGroup  *string
	RequestedBy *string
}

// BloodRequestRepository encapsulates blood request persistence.
type BloodRequestRepository interface {
	Create(ctx context.Context, request *domain.BloodRequest) error
	GetByID(ctx context.Context, id string) (*domain.BloodRequest, error)
	ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.BloodRequest, error)
	// UpdateStatus performs a compare-and-swap transition; it reports
	// false when the row was not in the expected state.
	UpdateStatus(ctx context.Context, id string, from, to domain.RequestStatus) (bool, error)
	AddDonorOffer(ctx context.Context, offer *domain.DonorOffer) error
	ListOffers(ctx context.Context, requestID string) ([]domain.DonorOffer, error)
}

type bloodRequestRepository struct {
	pool *pgxpool.Pool
}

// NewBloodRequestRepository instantiates repository.
func NewBloodRequestRepository(pool *pgxpool.Pool) BloodRequestRepository {
	return &bloodRequestRepository{pool: pool}
}

const requestColumns = `r.id, r.blood_group, r.units, r.address, r.lat, r.lng, r.requested_by,
               r.status, r.urgency, r.patient_name, r.hospital_name, r.notes, r.contact_phone,
               r.expires_at, r.created_at, r.updated_at, u.name, u.hospital`

func (r *bloodRequestRepository) Create(ctx context.Context, request *domain.BloodRequest) error {
	const query = `
        INSERT INTO blood_requests (blood_group, units, address, lat, lng, requested_by, status, urgency,
            patient_name, hospital_name, notes, contact_phone, expires_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.BloodGroup,
		request.Units,
		request.Location.Address,
		request.Location.Lat,
		request.Location.Lng,
		request.RequestedBy,
		request.Status,
		request.Urgency,
		request.PatientName,
		request.HospitalName,
		request.Notes,
		request.ContactPhone,
		request.ExpiresAt,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *bloodRequestRepository) GetByID(ctx context.Context, id string) (*domain.BloodRequest, error) {
	const query = `
        SELECT ` + requestColumns + `
        FROM blood_requests r JOIN users u ON u.id = r.requested_by
        WHERE r.id=$1`

	request, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	offers, err := r.ListOffers(ctx, request.ID)
	if err != nil {
		return nil, err
	}
	request.Donors = offers
	return request, nil
}

func (r *bloodRequestRepository) ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.BloodRequest, error) {
	base := `SELECT ` + requestColumns + `
             FROM blood_requests r JOIN users u ON u.id = r.requested_by`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("r.status=$%d", len(args)))
	}
	if filter.BloodGroup != nil {
		args = append(args, *filter.BloodGroup)
		clauses = append(clauses, fmt.Sprintf("r.blood_group=$%d", len(args)))
	}
	if filter.RequestedBy != nil {
		args = append(args, *filter.RequestedBy)
		clauses = append(clauses, fmt.Sprintf("r.requested_by=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY r.created_at DESC`, base, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BloodRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *request)
	}
	return result, rows.Err()
}

func (r *bloodRequestRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RequestStatus) (bool, error) {
	const query = `
        UPDATE blood_requests SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3`
	cmd, err := r.pool.Exec(ctx, query, to, id, from)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *bloodRequestRepository) AddDonorOffer(ctx context.Context, offer *domain.DonorOffer) error {
	const query = `
        INSERT INTO request_donors (request_id, donor_id, status, donation_date, units)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		offer.RequestID,
		offer.DonorID,
		offer.Status,
		offer.DonationDate,
		offer.Units,
	).Scan(&offer.ID, &offer.CreatedAt)
}

func (r *bloodRequestRepository) ListOffers(ctx context.Context, requestID string) ([]domain.DonorOffer, error) {
	const query = `
        SELECT id, request_id, donor_id, status, donation_date, units, created_at
        FROM request_donors WHERE request_id=$1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DonorOffer
	for rows.Next() {
		var offer domain.DonorOffer
		if err := rows.Scan(
			&offer.ID,
			&offer.RequestID,
			&offer.DonorID,
			&offer.Status,
			&offer.DonationDate,
			&offer.Units,
			&offer.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, offer)
	}
	return result, rows.Err()
}

func scanRequest(row pgx.Row) (*domain.BloodRequest, error) {
	var request domain.BloodRequest
	if err := row.Scan(
		&request.ID,
		&request.BloodGroup,
		&request.Units,
		&request.Location.Address,
		&request.Location.Lat,
		&request.Location.Lng,
		&request.RequestedBy,
		&request.Status,
		&request.Urgency,
		&request.PatientName,
		&request.HospitalName,
		&request.Notes,
		&request.ContactPhone,
		&request.ExpiresAt,
		&request.CreatedAt,
		&request.UpdatedAt,
		&request.RequesterName,
		&request.RequesterHospital,
	); err != nil {
		return nil, err
	}
	return &request, nil
}
