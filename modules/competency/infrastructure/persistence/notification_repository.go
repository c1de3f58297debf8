package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgc-hq/sgc/modules/competency/domain/notification"
)

// NotificationRepository persists alerts and queued emails. The outbox
// handler writes through the pool directly; delivery retries are the
// relay's concern, not a transaction's.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) CreateAlert(ctx context.Context, a *notification.Alert) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO alerts (unit_id, subprocess_id, message, created_at)
		 VALUES ($1, $2, $3, now())
		 RETURNING id, created_at`,
		a.UnitID, a.SubprocessID, a.Message,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *NotificationRepository) QueueEmail(ctx context.Context, e *notification.Email) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO emails (unit_id, subprocess_id, subject, template, created_at)
		 VALUES ($1, $2, $3, $4, now())
		 RETURNING id, created_at`,
		e.UnitID, e.SubprocessID, e.Subject, e.Template,
	).Scan(&e.ID, &e.CreatedAt)
}

// UnreadAlerts lists a unit's alerts that were not yet read, newest first.
func (r *NotificationRepository) UnreadAlerts(ctx context.Context, unitID int64) ([]notification.Alert, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, unit_id, subprocess_id, message, created_at, read_at
		   FROM alerts
		  WHERE unit_id = $1 AND read_at IS NULL
		  ORDER BY created_at DESC`, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []notification.Alert
	for rows.Next() {
		var a notification.Alert
		if err := rows.Scan(&a.ID, &a.UnitID, &a.SubprocessID, &a.Message, &a.CreatedAt, &a.ReadAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) MarkAlertRead(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE alerts SET read_at = now() WHERE id = $1 AND read_at IS NULL`, id)
	return err
}
