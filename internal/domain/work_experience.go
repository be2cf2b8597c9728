package domain

import (
	"context"
	"time"
)

// Who created a work experience record
const (
	AddedByEmployer = "employer"
	AddedByWorker   = "worker"
)

// WorkExperience is one entry in a worker's employment history. Records created from a
// hire are employer-added, verified and linked to the originating application.
type WorkExperience struct {
	ID                  int64      `json:"id"`
	WorkerID            string     `json:"worker_id"`
	EmployerID          *string    `json:"employer_id,omitempty"`
	LinkedApplicationID *int64     `json:"linked_application_id,omitempty"`
	CompanyID           *int64     `json:"company_id,omitempty"`
	CompanyName         string     `json:"company_name"`
	Role                string     `json:"role"`
	Description         *string    `json:"description,omitempty"`
	StartDate           time.Time  `json:"start_date"`
	EndDate             *time.Time `json:"end_date,omitempty"`
	IsCurrent           bool       `json:"is_current"`
	AddedBy             string     `json:"added_by"`
	IsVerified          bool       `json:"is_verified"`
	IsVisible           bool       `json:"is_visible"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// WorkerEditable reports whether the worker may edit or delete the record.
// Employer-verified records are read-only for the worker.
func (e *WorkExperience) WorkerEditable() bool {
	return e.AddedBy == AddedByWorker && !e.IsVerified
}

// CanEndEmployment reports whether callerID may end this employment: the employer,
// or the worker on an employer-verified record. Whether it is still current is
// checked separately.
func (e *WorkExperience) CanEndEmployment(callerID string) bool {
	if e.EmployerID != nil && *e.EmployerID == callerID {
		return true
	}
	return e.WorkerID == callerID && e.IsVerified
}

// WorkExperienceInput is the worker-editable part of a record.
type WorkExperienceInput struct {
	CompanyName string     `json:"company_name" validate:"required,max=120,valid_title,no_emoji"`
	Role        string     `json:"role" validate:"required,max=120,valid_title,no_emoji"`
	Description *string    `json:"description" validate:"omitempty,max=2000,no_emoji"`
	StartDate   time.Time  `json:"start_date" validate:"required,not_future"`
	EndDate     *time.Time `json:"end_date" validate:"omitempty,gtfield=StartDate"`
	IsCurrent   bool       `json:"is_current"`
}

// EmploymentEnded is the outcome of ending an employment.
type EmploymentEnded struct {
	Experience        *WorkExperience `json:"experience"`
	ApplicationEnded  bool            `json:"application_ended"`
	CurrentlyEmployed bool            `json:"currently_employed"`
}

// WorkExperienceRepository keeps work_experiences and the worker_profiles projection
// (work_history, currently_employed) consistent: every write recomputes the projection
// in the same transaction.
type WorkExperienceRepository interface {
	Create(ctx context.Context, exp *WorkExperience) error
	GetByID(ctx context.Context, id int64) (*WorkExperience, error)
	ListByWorker(ctx context.Context, workerID string, visibleOnly bool) ([]WorkExperience, error)
	// Update and Delete only touch worker-added unverified records owned by exp.WorkerID.
	// Returns ErrStateChanged when that no longer holds.
	Update(ctx context.Context, exp *WorkExperience) error
	Delete(ctx context.Context, id int64, workerID string) error
	ToggleVisibility(ctx context.Context, id int64, workerID string) (bool, error)
	// EndEmployment closes a current record and, when its linked application is hired,
	// moves that application to employment_ended. Returns ErrStateChanged when the
	// record is no longer current.
	EndEmployment(ctx context.Context, id int64, endedAt time.Time) (*EmploymentEnded, error)
	// CreateFromHire creates the verified record for a hire. It is idempotent on the
	// application id: created is false when the record already existed.
	CreateFromHire(ctx context.Context, hire HireEvent) (exp *WorkExperience, created bool, err error)
}

type WorkExperienceUsecase interface {
	// Worker operations
	Create(ctx context.Context, workerID string, in WorkExperienceInput) (*WorkExperience, error)
	Update(ctx context.Context, workerID string, id int64, in WorkExperienceInput) (*WorkExperience, error)
	Delete(ctx context.Context, workerID string, id int64) error
	ListMine(ctx context.Context, workerID string) ([]WorkExperience, error)
	ToggleVisibility(ctx context.Context, workerID string, id int64) (bool, error)
	GetProfile(ctx context.Context, workerID string) (*WorkerProfile, error)

	// Employer view of a worker
	ListVisible(ctx context.Context, workerID string) ([]WorkExperience, error)

	// Employer, or the worker on a verified record
	EndEmployment(ctx context.Context, callerID string, id int64) (*EmploymentEnded, error)
}
