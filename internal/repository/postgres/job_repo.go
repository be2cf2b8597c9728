package postgres

import (
	"context"

	"go-hiring-backend/internal/domain"
)

type jobRepo struct {
	db DB
}

func NewJobRepository(db DB) domain.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `
		SELECT j.id, j.employer_id, j.company_id, COALESCE(c.name, ''), j.title, j.status,
		       j.applications_count, j.created_at, j.updated_at
		FROM jobs j
		LEFT JOIN companies c ON j.company_id = c.id
		WHERE j.id = $1`

	var job domain.Job
	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.EmployerID, &job.CompanyID, &job.CompanyName, &job.Title, &job.Status,
		&job.ApplicationsCount, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &job, nil
}

// ReconcileApplicationCounts recounts applications per job and fixes drifted counters
func (r *jobRepo) ReconcileApplicationCounts(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		WITH actual AS (
			SELECT j.id, COUNT(a.id)::int AS n
			FROM jobs j
			LEFT JOIN applications a ON a.job_id = j.id
			GROUP BY j.id
		)
		UPDATE jobs
		SET applications_count = actual.n, updated_at = NOW()
		FROM actual
		WHERE jobs.id = actual.id AND jobs.applications_count <> actual.n`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
