package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go-hiring-backend/internal/domain"
	"go-hiring-backend/pkg/apperror"
	"go-hiring-backend/pkg/logger"
	"go-hiring-backend/pkg/metrics"
)

type applicationUsecase struct {
	applicationRepo domain.ApplicationRepository
	jobRepo         domain.JobRepository
	notifier        domain.OutboxNotifier
	maxAttempts     int
	now             func() time.Time
}

// NewApplicationUsecase creates a new application usecase.
// notifier may be nil; dispatchers then pick hire events up on their next poll.
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	notifier domain.OutboxNotifier,
	maxAttempts int,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		applicationRepo: appRepo,
		jobRepo:         jobRepo,
		notifier:        notifier,
		maxAttempts:     maxAttempts,
		now:             time.Now,
	}
}

// Apply submits a worker's application to an active job
func (uc *applicationUsecase) Apply(ctx context.Context, applicantID string, jobID int64, coverNote string) (*domain.Application, error) {
	// 1. Validate cover note
	coverNote = strings.TrimSpace(coverNote)
	if utf8.RuneCountInString(coverNote) > domain.MaxCoverNoteLength {
		return nil, apperror.BadRequest(fmt.Sprintf("Cover note must be at most %d characters", domain.MaxCoverNoteLength))
	}

	// 2. Validate job exists and is active
	job, err := uc.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsActive() {
		return nil, apperror.InvalidState("Job is not accepting applications")
	}

	// 3. Create application; uniqueness is enforced by the database
	var coverNotePtr *string
	if coverNote != "" {
		coverNotePtr = &coverNote
	}
	app := &domain.Application{
		JobID:       jobID,
		ApplicantID: applicantID,
		Status:      domain.ApplicationStatusPending,
		CoverNote:   coverNotePtr,
	}

	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			return nil, apperror.Conflict("You have already applied to this job")
		case errors.Is(err, domain.ErrStateChanged):
			return nil, apperror.InvalidState("Job is not accepting applications")
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperror.NotFound("Job not found")
		}
		return nil, apperror.Internal(err)
	}

	title := job.Title
	app.JobTitle = &title
	if job.CompanyName != "" {
		name := job.CompanyName
		app.CompanyName = &name
	}
	app.CompanyID = job.CompanyID

	metrics.ApplicationTransitions.WithLabelValues(string(domain.ApplicationStatusPending)).Inc()
	return app, nil
}

// ListMyApplications returns the worker's applications, newest first
func (uc *applicationUsecase) ListMyApplications(ctx context.Context, applicantID string, cursor string, limit int) (*domain.ApplicationPage, error) {
	page, err := domain.NewPageRequest(cursor, limit)
	if err != nil {
		return nil, apperror.BadRequest("Invalid cursor")
	}

	rows, err := uc.applicationRepo.ListByApplicant(ctx, applicantID, page)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewApplicationPage(rows, page), nil
}

// ListApplicants returns the applications to one of the employer's jobs, newest first
func (uc *applicationUsecase) ListApplicants(ctx context.Context, employerID string, jobID int64, cursor string, limit int) (*domain.ApplicationPage, error) {
	page, err := domain.NewPageRequest(cursor, limit)
	if err != nil {
		return nil, apperror.BadRequest("Invalid cursor")
	}

	if _, err := uc.ownedJob(ctx, employerID, jobID); err != nil {
		return nil, err
	}

	rows, err := uc.applicationRepo.ListByJob(ctx, jobID, page)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewApplicationPage(rows, page), nil
}

// GetApplication returns an application to its applicant or to the job's employer
func (uc *applicationUsecase) GetApplication(ctx context.Context, callerID string, applicationID int64) (*domain.Application, error) {
	app, err := uc.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID == callerID {
		return app, nil
	}

	if _, err := uc.ownedJob(ctx, callerID, app.JobID); err != nil {
		return nil, err
	}
	return app, nil
}

// UpdateStatus moves an application along the hiring pipeline.
// Status flow: pending → viewed → shortlisted → hired, with rejected reachable before hire.
func (uc *applicationUsecase) UpdateStatus(ctx context.Context, employerID string, applicationID int64, status domain.ApplicationStatus, notes string) (*domain.Application, error) {
	// 1. Validate requested status
	if !status.Valid() {
		return nil, apperror.BadRequest("Invalid status. Must be: viewed, shortlisted, hired, or rejected")
	}
	if !status.Settable() {
		return nil, apperror.InvalidState(fmt.Sprintf("Status %s cannot be set directly", status))
	}

	// 2. Load application and check ownership
	app, err := uc.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	job, err := uc.ownedJob(ctx, employerID, app.JobID)
	if err != nil {
		return nil, err
	}

	// 3. Validate transition against the observed status
	if !domain.CanTransition(app.Status, status) {
		if app.Status.IsTerminal() {
			return nil, apperror.InvalidState(fmt.Sprintf("Application is already %s", app.Status))
		}
		return nil, apperror.InvalidState(fmt.Sprintf("Cannot change status from %s to %s", app.Status, status))
	}

	transition := domain.StatusTransition{
		ApplicationID: applicationID,
		From:          domain.StatusSources(status),
		To:            status,
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		transition.EmployerNotes = &notes
	}

	// 4. A hire records its side effects in the outbox, in the same transaction
	if status == domain.ApplicationStatusHired {
		event, err := uc.hireEvent(app, job, employerID, transition.EmployerNotes)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		transition.Event = event
	}

	// 5. Conditional update: fails if the status moved since it was read
	updated, err := uc.applicationRepo.TransitionStatus(ctx, transition)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStateChanged):
			return nil, apperror.InvalidState("Application status changed, reload and try again")
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.Internal(err)
	}

	metrics.ApplicationTransitions.WithLabelValues(string(status)).Inc()

	if transition.Event != nil && uc.notifier != nil {
		if err := uc.notifier.Notify(ctx, transition.Event.EventType); err != nil {
			logger.Log.Warn("outbox wake-up failed",
				"application_id", applicationID,
				"error", err,
			)
		}
	}

	return updated, nil
}

// Withdraw deletes the worker's own application while the employer has not acted on it
func (uc *applicationUsecase) Withdraw(ctx context.Context, applicantID string, applicationID int64) error {
	app, err := uc.getApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.ApplicantID != applicantID {
		return apperror.Forbidden("You can only withdraw your own applications")
	}
	if !app.Status.Withdrawable() {
		return apperror.InvalidState(fmt.Sprintf("Cannot withdraw an application that is %s", app.Status))
	}

	err = uc.applicationRepo.DeleteWithdrawable(ctx, applicationID, applicantID, domain.WithdrawableStatuses)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStateChanged):
			return apperror.InvalidState("Application status changed, reload and try again")
		case errors.Is(err, domain.ErrNotFound):
			return apperror.NotFound("Application not found")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (uc *applicationUsecase) hireEvent(app *domain.Application, job *domain.Job, employerID string, notes *string) (*domain.OutboxEvent, error) {
	hiredAt := uc.now().UTC()

	hired := *app
	hired.Status = domain.ApplicationStatusHired
	hired.UpdatedAt = hiredAt
	hired.StatusHistory = append(append([]domain.StatusChange(nil), app.StatusHistory...),
		domain.StatusChange{Status: domain.ApplicationStatusHired, ChangedAt: hiredAt})
	if notes != nil {
		hired.EmployerNotes = notes
	}
	title := job.Title
	hired.JobTitle = &title
	hired.CompanyID = job.CompanyID
	if job.CompanyName != "" {
		name := job.CompanyName
		hired.CompanyName = &name
	}

	return domain.NewOutboxEvent(domain.EventApplicationHired, app.ID, domain.HireEvent{
		Application: hired,
		EmployerID:  employerID,
		HiredAt:     hiredAt,
	}, uc.maxAttempts)
}

func (uc *applicationUsecase) getApplication(ctx context.Context, id int64) (*domain.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.Internal(err)
	}
	return app, nil
}

func (uc *applicationUsecase) getJob(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := uc.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Job not found")
		}
		return nil, apperror.Internal(err)
	}
	return job, nil
}

// ownedJob loads the job and verifies employerID posted it
func (uc *applicationUsecase) ownedJob(ctx context.Context, employerID string, jobID int64) (*domain.Job, error) {
	job, err := uc.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != employerID {
		return nil, apperror.Forbidden("You do not have permission to access this job's applications")
	}
	return job, nil
}
