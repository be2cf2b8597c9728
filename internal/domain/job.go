package domain

import (
	"context"
	"time"
)

// Job status constants
const (
	JobStatusDraft  = "draft"
	JobStatusActive = "active"
	JobStatusPaused = "paused"
	JobStatusClosed = "closed"
)

// Job is the slice of a job posting the hiring workflow reads.
type Job struct {
	ID                int64     `json:"id"`
	EmployerID        string    `json:"employer_id"`
	CompanyID         *int64    `json:"company_id,omitempty"`
	CompanyName       string    `json:"company_name"`
	Title             string    `json:"title"`
	Status            string    `json:"status"`
	ApplicationsCount int       `json:"applications_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (j *Job) IsActive() bool {
	return j.Status == JobStatusActive
}

type JobRepository interface {
	GetByID(ctx context.Context, id int64) (*Job, error)
	// ReconcileApplicationCounts rewrites every drifted applications_count from the
	// applications table and returns the number of jobs corrected.
	ReconcileApplicationCounts(ctx context.Context) (int64, error)
}
