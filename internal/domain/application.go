package domain

import (
	"context"
	"slices"
	"time"
)

type ApplicationStatus string

// Application status constants
const (
	ApplicationStatusPending         ApplicationStatus = "pending"
	ApplicationStatusViewed          ApplicationStatus = "viewed"
	ApplicationStatusShortlisted     ApplicationStatus = "shortlisted"
	ApplicationStatusRejected        ApplicationStatus = "rejected"
	ApplicationStatusHired           ApplicationStatus = "hired"
	ApplicationStatusEmploymentEnded ApplicationStatus = "employment_ended"
)

// MaxCoverNoteLength is counted in characters, not bytes.
const MaxCoverNoteLength = 500

// statusSources lists, for each status an employer may set, the statuses it may be set from.
// employment_ended is absent: only EndEmployment moves an application there.
var statusSources = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusViewed:      {ApplicationStatusPending},
	ApplicationStatusShortlisted: {ApplicationStatusPending, ApplicationStatusViewed},
	ApplicationStatusHired:       {ApplicationStatusPending, ApplicationStatusViewed, ApplicationStatusShortlisted},
	ApplicationStatusRejected:    {ApplicationStatusPending, ApplicationStatusViewed, ApplicationStatusShortlisted},
}

// WithdrawableStatuses are the statuses from which an applicant may withdraw.
var WithdrawableStatuses = []ApplicationStatus{ApplicationStatusPending, ApplicationStatusViewed}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusViewed, ApplicationStatusShortlisted,
		ApplicationStatusRejected, ApplicationStatusHired, ApplicationStatusEmploymentEnded:
		return true
	}
	return false
}

// IsTerminal reports whether no further UpdateStatus call may change s.
// Hired is not terminal, but it only leaves through EndEmployment.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusRejected || s == ApplicationStatusEmploymentEnded
}

// Settable reports whether an employer may request s through UpdateStatus.
func (s ApplicationStatus) Settable() bool {
	_, ok := statusSources[s]
	return ok
}

func (s ApplicationStatus) Withdrawable() bool {
	return slices.Contains(WithdrawableStatuses, s)
}

// StatusSources returns the statuses from which to may be reached via UpdateStatus.
func StatusSources(to ApplicationStatus) []ApplicationStatus {
	return slices.Clone(statusSources[to])
}

// CanTransition reports whether UpdateStatus may move an application from -> to.
func CanTransition(from, to ApplicationStatus) bool {
	return slices.Contains(statusSources[to], from)
}

// StatusChange is one append-only entry of an application's status history.
type StatusChange struct {
	Status    ApplicationStatus `json:"status"`
	ChangedAt time.Time         `json:"changed_at"`
}

// Application represents a worker's application to a job
type Application struct {
	ID            int64             `json:"id"`
	JobID         int64             `json:"job_id"`
	ApplicantID   string            `json:"applicant_id"`
	Status        ApplicationStatus `json:"status"`
	CoverNote     *string           `json:"cover_note,omitempty"`
	EmployerNotes *string           `json:"employer_notes,omitempty"`
	AppliedAt     time.Time         `json:"applied_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	StatusHistory []StatusChange    `json:"status_history"`

	// Joined job data
	JobTitle    *string `json:"job_title,omitempty"`
	CompanyID   *int64  `json:"company_id,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
}

// ApplicationPage is one page of a cursor-paginated application listing.
type ApplicationPage struct {
	Applications []Application `json:"applications"`
	HasMore      bool          `json:"hasMore"`
	NextCursor   string        `json:"nextCursor,omitempty"`
}

// StatusTransition is an atomic conditional status update: it only applies while
// the application's current status is one of From.
type StatusTransition struct {
	ApplicationID int64
	From          []ApplicationStatus
	To            ApplicationStatus
	EmployerNotes *string
	// Event, when set, is written to the outbox in the same transaction.
	Event *OutboxEvent
}

// ApplicationRepository defines data access methods for applications
type ApplicationRepository interface {
	// Create inserts the application with its initial history entry and increments the
	// job's applications_count in one transaction. Returns ErrDuplicate on a second
	// application for the same job and ErrStateChanged when the job is no longer active.
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	// ListByApplicant and ListByJob return up to page.Limit+1 rows, newest first.
	ListByApplicant(ctx context.Context, applicantID string, page PageRequest) ([]Application, error)
	ListByJob(ctx context.Context, jobID int64, page PageRequest) ([]Application, error)
	// TransitionStatus returns ErrStateChanged when the current status is not in t.From.
	TransitionStatus(ctx context.Context, t StatusTransition) (*Application, error)
	// DeleteWithdrawable deletes the application and decrements the job's counter in one
	// transaction, only while its status is in from. Returns ErrStateChanged otherwise.
	DeleteWithdrawable(ctx context.Context, id int64, applicantID string, from []ApplicationStatus) error
}

// ApplicationUsecase defines business logic for applications
type ApplicationUsecase interface {
	// Worker operations
	Apply(ctx context.Context, applicantID string, jobID int64, coverNote string) (*Application, error)
	ListMyApplications(ctx context.Context, applicantID string, cursor string, limit int) (*ApplicationPage, error)
	Withdraw(ctx context.Context, applicantID string, applicationID int64) error

	// Employer operations
	ListApplicants(ctx context.Context, employerID string, jobID int64, cursor string, limit int) (*ApplicationPage, error)
	UpdateStatus(ctx context.Context, employerID string, applicationID int64, status ApplicationStatus, notes string) (*Application, error)

	// Either party
	GetApplication(ctx context.Context, callerID string, applicationID int64) (*Application, error)
}
