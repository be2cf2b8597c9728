package postgres

import (
	"context"
	"errors"
	"time"

	"go-hiring-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type outboxRepo struct {
	db DB
}

func NewOutboxRepository(db DB) domain.OutboxRepository {
	return &outboxRepo{db: db}
}

// insertOutboxEvent enqueues event inside the caller's transaction. A second event
// for the same (event_type, aggregate_id) is silently dropped.
func insertOutboxEvent(ctx context.Context, q querier, event *domain.OutboxEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	_, err := q.Exec(ctx, `
		INSERT INTO outbox_events (id, event_type, aggregate_id, payload, max_attempts)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_type, aggregate_id) DO NOTHING`,
		event.ID, event.EventType, event.AggregateID, []byte(event.Payload), event.MaxAttempts)
	return err
}

// claimSQL leases the oldest due event. FOR UPDATE SKIP LOCKED lets concurrent
// dispatchers move on instead of blocking on each other's rows.
const claimSQL = `
WITH candidate AS (
    SELECT id FROM outbox_events
    WHERE state        = 'pending'
      AND scheduled_at <= NOW()
    ORDER BY scheduled_at, created_at
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
UPDATE outbox_events o
SET
    state           = 'running',
    attempts        = o.attempts + 1,
    locked_by       = $1,
    locked_at       = NOW(),
    lock_expires_at = NOW() + ($2 * interval '1 millisecond'),
    updated_at      = NOW()
FROM candidate
WHERE o.id = candidate.id
RETURNING
    o.id, o.event_type, o.aggregate_id, o.payload, o.state, o.attempts, o.max_attempts,
    o.scheduled_at, o.locked_by, o.lock_expires_at, o.last_error, o.created_at, o.updated_at`

func (r *outboxRepo) Claim(ctx context.Context, workerID string, lease time.Duration) (*domain.OutboxEvent, error) {
	var event domain.OutboxEvent
	var payload []byte
	err := r.db.QueryRow(ctx, claimSQL, workerID, lease.Milliseconds()).Scan(
		&event.ID, &event.EventType, &event.AggregateID, &payload, &event.State,
		&event.Attempts, &event.MaxAttempts, &event.ScheduledAt, &event.LockedBy,
		&event.LockExpiresAt, &event.LastError, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	event.Payload = payload
	return &event, nil
}

func (r *outboxRepo) MarkCompleted(ctx context.Context, id uuid.UUID, workerID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE outbox_events SET
			state           = 'completed',
			completed_at    = NOW(),
			locked_by       = NULL,
			locked_at       = NULL,
			lock_expires_at = NULL,
			updated_at      = NOW()
		WHERE id = $1
		  AND state = 'running'
		  AND locked_by = $2
		  AND lock_expires_at > NOW()`, id, workerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *outboxRepo) MarkRetry(ctx context.Context, id uuid.UUID, workerID string, delay time.Duration, cause error) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE outbox_events SET
			state           = 'pending',
			scheduled_at    = NOW() + ($1 * interval '1 millisecond'),
			last_error      = $2,
			last_error_at   = NOW(),
			locked_by       = NULL,
			locked_at       = NULL,
			lock_expires_at = NULL,
			updated_at      = NOW()
		WHERE id = $3
		  AND state = 'running'
		  AND locked_by = $4
		  AND lock_expires_at > NOW()`,
		delay.Milliseconds(), errorText(cause), id, workerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *outboxRepo) MarkDead(ctx context.Context, id uuid.UUID, workerID string, cause error) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE outbox_events SET
			state           = 'dead',
			last_error      = $1,
			last_error_at   = NOW(),
			locked_by       = NULL,
			locked_at       = NULL,
			lock_expires_at = NULL,
			updated_at      = NOW()
		WHERE id = $2
		  AND state = 'running'
		  AND locked_by = $3
		  AND lock_expires_at > NOW()`,
		errorText(cause), id, workerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReclaimExpired requeues running events whose lease has lapsed. Events that have
// used all their attempts go to dead instead.
func (r *outboxRepo) ReclaimExpired(ctx context.Context, limit int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		WITH expired AS (
			SELECT id FROM outbox_events
			WHERE state = 'running' AND lock_expires_at < NOW()
			ORDER BY lock_expires_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE outbox_events o SET
			state           = CASE WHEN o.attempts >= o.max_attempts THEN 'dead' ELSE 'pending' END,
			scheduled_at    = NOW(),
			last_error      = 'lease expired',
			last_error_at   = NOW(),
			locked_by       = NULL,
			locked_at       = NULL,
			lock_expires_at = NULL,
			updated_at      = NOW()
		FROM expired
		WHERE o.id = expired.id`, limit)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
