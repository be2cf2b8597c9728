package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-hiring-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type applicationRepo struct {
	db DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db DB) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

const applicationColumns = `
	a.id, a.job_id, a.applicant_id, a.status, a.cover_note, a.employer_notes,
	a.applied_at, a.updated_at, j.title, j.company_id, c.name`

const applicationFrom = `
	FROM applications a
	JOIN jobs j ON a.job_id = j.id
	LEFT JOIN companies c ON j.company_id = c.id`

// Create inserts a new application, its first history entry and bumps the job counter
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	now := time.Now().UTC()
	app.AppliedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = domain.ApplicationStatusPending
	}

	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO applications (job_id, applicant_id, status, cover_note, applied_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			app.JobID, app.ApplicantID, app.Status, app.CoverNote, app.AppliedAt, app.UpdatedAt,
		).Scan(&app.ID)
		if err != nil {
			return mapError(err)
		}

		if err := insertHistory(ctx, tx, app.ID, app.Status, now); err != nil {
			return err
		}
		app.StatusHistory = []domain.StatusChange{{Status: app.Status, ChangedAt: now}}

		tag, err := tx.Exec(ctx, `
			UPDATE jobs SET applications_count = applications_count + 1, updated_at = NOW()
			WHERE id = $1 AND status = 'active'`, app.JobID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrStateChanged
		}
		return nil
	})
}

// GetByID retrieves an application with its job data and status history
func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	return getApplication(ctx, r.db, id)
}

// ListByApplicant returns a worker's applications, newest first
func (r *applicationRepo) ListByApplicant(ctx context.Context, applicantID string, page domain.PageRequest) ([]domain.Application, error) {
	query := `SELECT` + applicationColumns + applicationFrom + `
		WHERE a.applicant_id = $1 AND ($2::bigint = 0 OR a.id < $2)
		ORDER BY a.id DESC
		LIMIT $3`
	return r.list(ctx, query, applicantID, page.Cursor, page.FetchLimit())
}

// ListByJob returns a job's applications, newest first
func (r *applicationRepo) ListByJob(ctx context.Context, jobID int64, page domain.PageRequest) ([]domain.Application, error) {
	query := `SELECT` + applicationColumns + applicationFrom + `
		WHERE a.job_id = $1 AND ($2::bigint = 0 OR a.id < $2)
		ORDER BY a.id DESC
		LIMIT $3`
	return r.list(ctx, query, jobID, page.Cursor, page.FetchLimit())
}

// TransitionStatus conditionally moves an application to t.To and records the history
// entry and any outbox event in the same transaction
func (r *applicationRepo) TransitionStatus(ctx context.Context, t domain.StatusTransition) (*domain.Application, error) {
	var app *domain.Application

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		tag, err := tx.Exec(ctx, `
			UPDATE applications
			SET status = $2, employer_notes = COALESCE($3, employer_notes), updated_at = $4
			WHERE id = $1 AND status = ANY($5::text[])`,
			t.ApplicationID, t.To, t.EmployerNotes, now, statusStrings(t.From))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return missOrChanged(ctx, tx, "applications", t.ApplicationID)
		}

		if err := insertHistory(ctx, tx, t.ApplicationID, t.To, now); err != nil {
			return err
		}
		if t.Event != nil {
			if err := insertOutboxEvent(ctx, tx, t.Event); err != nil {
				return err
			}
		}

		app, err = getApplication(ctx, tx, t.ApplicationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// DeleteWithdrawable removes an application the employer has not acted on yet
func (r *applicationRepo) DeleteWithdrawable(ctx context.Context, id int64, applicantID string, from []domain.ApplicationStatus) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		var jobID int64
		err := tx.QueryRow(ctx, `
			DELETE FROM applications
			WHERE id = $1 AND applicant_id = $2 AND status = ANY($3::text[])
			RETURNING job_id`,
			id, applicantID, statusStrings(from)).Scan(&jobID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return missOrChanged(ctx, tx, "applications", id)
			}
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE jobs SET applications_count = GREATEST(applications_count - 1, 0), updated_at = NOW()
			WHERE id = $1`, jobID)
		return err
	})
}

func (r *applicationRepo) list(ctx context.Context, query string, args ...any) ([]domain.Application, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	apps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Application, error) {
		var app domain.Application
		err := scanApplication(row, &app)
		return app, err
	})
	if err != nil {
		return nil, err
	}
	if err := attachHistory(ctx, r.db, apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func getApplication(ctx context.Context, q querier, id int64) (*domain.Application, error) {
	var app domain.Application
	row := q.QueryRow(ctx, `SELECT`+applicationColumns+applicationFrom+` WHERE a.id = $1`, id)
	if err := scanApplication(row, &app); err != nil {
		return nil, mapError(err)
	}

	apps := []domain.Application{app}
	if err := attachHistory(ctx, q, apps); err != nil {
		return nil, err
	}
	return &apps[0], nil
}

func scanApplication(row pgx.Row, app *domain.Application) error {
	return row.Scan(
		&app.ID, &app.JobID, &app.ApplicantID, &app.Status, &app.CoverNote, &app.EmployerNotes,
		&app.AppliedAt, &app.UpdatedAt, &app.JobTitle, &app.CompanyID, &app.CompanyName,
	)
}

// attachHistory loads status history for apps with one query, oldest entry first
func attachHistory(ctx context.Context, q querier, apps []domain.Application) error {
	if len(apps) == 0 {
		return nil
	}
	ids := make([]int64, len(apps))
	index := make(map[int64]int, len(apps))
	for i := range apps {
		ids[i] = apps[i].ID
		index[apps[i].ID] = i
		apps[i].StatusHistory = []domain.StatusChange{}
	}

	rows, err := q.Query(ctx, `
		SELECT application_id, status, changed_at
		FROM application_status_history
		WHERE application_id = ANY($1)
		ORDER BY application_id, id`, ids)
	if err != nil {
		return fmt.Errorf("load status history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var appID int64
		var change domain.StatusChange
		if err := rows.Scan(&appID, &change.Status, &change.ChangedAt); err != nil {
			return err
		}
		i := index[appID]
		apps[i].StatusHistory = append(apps[i].StatusHistory, change)
	}
	return rows.Err()
}

func insertHistory(ctx context.Context, q querier, appID int64, status domain.ApplicationStatus, at time.Time) error {
	_, err := q.Exec(ctx, `
		INSERT INTO application_status_history (application_id, status, changed_at)
		VALUES ($1, $2, $3)`, appID, status, at)
	return err
}
