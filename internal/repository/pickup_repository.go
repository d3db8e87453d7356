package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lifebridge/internal/domain"
)

// PickupRepository encapsulates pickup persistence.
type PickupRepository interface {
	Create(ctx context.Context, pickup *domain.Pickup) error
	// ListByDonor returns the donor's pickups newest first, flattened
	// with request blood group and recipient display fields.
	ListByDonor(ctx context.Context, donorID string) ([]domain.DonationRecord, error)
}

type pickupRepository struct {
	pool *pgxpool.Pool
}

// NewPickupRepository instantiates repository.
func NewPickupRepository(pool *pgxpool.Pool) PickupRepository {
	return &pickupRepository{pool: pool}
}

func (r *pickupRepository) Create(ctx context.Context, pickup *domain.Pickup) error {
	const query = `
        INSERT INTO pickups (donor_id, request_id, date, time, location, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		pickup.DonorID,
		pickup.RequestID,
		pickup.Date,
		pickup.Time,
		pickup.Location,
		pickup.Status,
	).Scan(&pickup.ID, &pickup.CreatedAt)
}

func (r *pickupRepository) ListByDonor(ctx context.Context, donorID string) ([]domain.DonationRecord, error) {
	const query = `
        SELECT p.id, p.donor_id, p.request_id, p.date, p.time, p.location, p.status, p.created_at,
               r.blood_group, r.units, u.name, u.hospital
        FROM pickups p
            JOIN blood_requests r ON r.id = p.request_id
            JOIN users u ON u.id = r.requested_by
        WHERE p.donor_id=$1
        ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, donorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DonationRecord
	for rows.Next() {
		var record domain.DonationRecord
		if err := rows.Scan(
			&record.ID,
			&record.DonorID,
			&record.RequestID,
			&record.Date,
			&record.Time,
			&record.Location,
			&record.Status,
			&record.CreatedAt,
			&record.BloodGroup,
			&record.Units,
			&record.RecipientName,
			&record.RecipientHospital,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
