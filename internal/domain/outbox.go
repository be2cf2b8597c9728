package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outbox event types
const (
	EventApplicationHired = "application.hired"
)

type OutboxState string

const (
	OutboxStatePending   OutboxState = "pending"
	OutboxStateRunning   OutboxState = "running"
	OutboxStateCompleted OutboxState = "completed"
	OutboxStateDead      OutboxState = "dead"
)

// OutboxEvent is a durable side effect recorded in the same transaction as the state
// change that caused it. (EventType, AggregateID) is unique.
type OutboxEvent struct {
	ID            uuid.UUID
	EventType     string
	AggregateID   int64
	Payload       json.RawMessage
	State         OutboxState
	Attempts      int
	MaxAttempts   int
	ScheduledAt   time.Time
	LockedBy      *string
	LockExpiresAt *time.Time
	LastError     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HireEvent is the payload of EventApplicationHired. Application carries its joined
// job and company fields.
type HireEvent struct {
	Application Application `json:"application"`
	EmployerID  string      `json:"employer_id"`
	HiredAt     time.Time   `json:"hired_at"`
}

func (h HireEvent) Validate() error {
	if h.Application.ID <= 0 {
		return fmt.Errorf("hire event: missing application id")
	}
	if h.Application.ApplicantID == "" {
		return fmt.Errorf("hire event %d: missing applicant", h.Application.ID)
	}
	if h.EmployerID == "" {
		return fmt.Errorf("hire event %d: missing employer", h.Application.ID)
	}
	if h.HiredAt.IsZero() {
		return fmt.Errorf("hire event %d: missing hire time", h.Application.ID)
	}
	return nil
}

// NewOutboxEvent builds a pending event for payload.
func NewOutboxEvent(eventType string, aggregateID int64, payload any, maxAttempts int) (*OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &OutboxEvent{
		ID:          uuid.New(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     raw,
		State:       OutboxStatePending,
		MaxAttempts: maxAttempts,
	}, nil
}

// OutboxRepository is the dispatcher's view of the outbox table. Every state change
// after Claim is fenced on the claiming worker id; false means the lease was lost.
type OutboxRepository interface {
	// Claim leases the next due event and increments its attempts. Returns nil, nil when idle.
	Claim(ctx context.Context, workerID string, lease time.Duration) (*OutboxEvent, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, workerID string) (bool, error)
	MarkRetry(ctx context.Context, id uuid.UUID, workerID string, delay time.Duration, cause error) (bool, error)
	MarkDead(ctx context.Context, id uuid.UUID, workerID string, cause error) (bool, error)
	// ReclaimExpired returns running events whose lease expired to pending.
	ReclaimExpired(ctx context.Context, limit int) (int64, error)
}

// OutboxNotifier wakes dispatchers after an event is committed. Best effort.
type OutboxNotifier interface {
	Notify(ctx context.Context, eventType string) error
}

// HireUsecase applies the side effects of a hire.
type HireUsecase interface {
	HandleHire(ctx context.Context, payload []byte) error
}
