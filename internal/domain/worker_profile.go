package domain

import (
	"context"
	"time"
)

// WorkerProfile is the projection of a worker's work experiences.
// WorkHistory holds work experience ids in insertion order without duplicates.
type WorkerProfile struct {
	UserID            string    `json:"user_id"`
	WorkHistory       []int64   `json:"work_history"`
	CurrentlyEmployed bool      `json:"currently_employed"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type WorkerProfileRepository interface {
	// GetByUserID returns an empty profile when the worker has none yet.
	GetByUserID(ctx context.Context, userID string) (*WorkerProfile, error)
}
