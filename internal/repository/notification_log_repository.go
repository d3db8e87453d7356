package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lifebridge/internal/domain"
)

// NotificationLogRepository stores per-recipient fan-out outcomes.
type NotificationLogRepository interface {
	Create(ctx context.Context, record *domain.NotificationRecord) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.NotificationRecord, error)
}

type notificationLogRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationLogRepository builds repository.
func NewNotificationLogRepository(pool *pgxpool.Pool) NotificationLogRepository {
	return &notificationLogRepository{pool: pool}
}

func (r *notificationLogRepository) Create(ctx context.Context, record *domain.NotificationRecord) error {
	const query = `
        INSERT INTO notification_log (request_id, recipient_email, subject, status, error)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		record.RequestID,
		record.RecipientEmail,
		record.Subject,
		record.Status,
		record.Error,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *notificationLogRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.NotificationRecord, error) {
	const query = `
        SELECT id, request_id, recipient_email, subject, status, error, created_at
        FROM notification_log WHERE request_id=$1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.NotificationRecord
	for rows.Next() {
		var record domain.NotificationRecord
		if err := rows.Scan(
			&record.ID,
			&record.RequestID,
			&record.RecipientEmail,
			&record.Subject,
			&record.Status,
			&record.Error,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
