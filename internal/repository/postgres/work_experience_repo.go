package postgres

import (
	"context"
	"errors"
	"time"

	"go-hiring-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type workExperienceRepo struct {
	db DB
}

func NewWorkExperienceRepository(db DB) domain.WorkExperienceRepository {
	return &workExperienceRepo{db: db}
}

const experienceColumns = `
	id, worker_id, employer_id, linked_application_id, company_id, company_name, role,
	description, start_date, end_date, is_current, added_by, is_verified, is_visible,
	created_at, updated_at`

func scanExperience(row pgx.Row, exp *domain.WorkExperience) error {
	return row.Scan(
		&exp.ID, &exp.WorkerID, &exp.EmployerID, &exp.LinkedApplicationID, &exp.CompanyID,
		&exp.CompanyName, &exp.Role, &exp.Description, &exp.StartDate, &exp.EndDate,
		&exp.IsCurrent, &exp.AddedBy, &exp.IsVerified, &exp.IsVisible,
		&exp.CreatedAt, &exp.UpdatedAt,
	)
}

// Create inserts a worker-added record and appends it to the worker's profile
func (r *workExperienceRepo) Create(ctx context.Context, exp *domain.WorkExperience) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		err := scanExperience(tx.QueryRow(ctx, `
			INSERT INTO work_experiences (
				worker_id, employer_id, linked_application_id, company_id, company_name, role,
				description, start_date, end_date, is_current, added_by, is_verified, is_visible,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
			RETURNING`+experienceColumns,
			exp.WorkerID, exp.EmployerID, exp.LinkedApplicationID, exp.CompanyID, exp.CompanyName,
			exp.Role, exp.Description, exp.StartDate, exp.EndDate, exp.IsCurrent, exp.AddedBy,
			exp.IsVerified, exp.IsVisible,
		), exp)
		if err != nil {
			return mapError(err)
		}

		_, err = syncProfile(ctx, tx, exp.WorkerID, exp.ID)
		return err
	})
}

func (r *workExperienceRepo) GetByID(ctx context.Context, id int64) (*domain.WorkExperience, error) {
	var exp domain.WorkExperience
	err := scanExperience(r.db.QueryRow(ctx, `SELECT`+experienceColumns+` FROM work_experiences WHERE id = $1`, id), &exp)
	if err != nil {
		return nil, mapError(err)
	}
	return &exp, nil
}

// ListByWorker returns current positions first, then by start date, newest first
func (r *workExperienceRepo) ListByWorker(ctx context.Context, workerID string, visibleOnly bool) ([]domain.WorkExperience, error) {
	rows, err := r.db.Query(ctx, `SELECT`+experienceColumns+`
		FROM work_experiences
		WHERE worker_id = $1 AND (NOT $2 OR is_visible)
		ORDER BY is_current DESC, start_date DESC, id DESC`, workerID, visibleOnly)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.WorkExperience, error) {
		var exp domain.WorkExperience
		err := scanExperience(row, &exp)
		return exp, err
	})
}

func (r *workExperienceRepo) Update(ctx context.Context, exp *domain.WorkExperience) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE work_experiences SET
				company_name = $3, role = $4, description = $5, start_date = $6,
				end_date = $7, is_current = $8, updated_at = NOW()
			WHERE id = $1 AND worker_id = $2 AND added_by = 'worker' AND NOT is_verified
			RETURNING updated_at`,
			exp.ID, exp.WorkerID, exp.CompanyName, exp.Role, exp.Description, exp.StartDate,
			exp.EndDate, exp.IsCurrent,
		).Scan(&exp.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrStateChanged
			}
			return err
		}

		_, err = syncProfile(ctx, tx, exp.WorkerID, 0)
		return err
	})
}

func (r *workExperienceRepo) Delete(ctx context.Context, id int64, workerID string) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM work_experiences
			WHERE id = $1 AND worker_id = $2 AND added_by = 'worker' AND NOT is_verified`,
			id, workerID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrStateChanged
		}

		_, err = tx.Exec(ctx, `
			UPDATE worker_profiles SET
				work_history       = array_remove(work_history, $2::bigint),
				currently_employed = EXISTS(SELECT 1 FROM work_experiences WHERE worker_id = $1 AND is_current),
				updated_at         = NOW()
			WHERE user_id = $1`, workerID, id)
		return err
	})
}

func (r *workExperienceRepo) ToggleVisibility(ctx context.Context, id int64, workerID string) (bool, error) {
	var visible bool
	err := r.db.QueryRow(ctx, `
		UPDATE work_experiences SET is_visible = NOT is_visible, updated_at = NOW()
		WHERE id = $1 AND worker_id = $2
		RETURNING is_visible`, id, workerID).Scan(&visible)
	if err != nil {
		return false, mapError(err)
	}
	return visible, nil
}

// EndEmployment closes the record, ends the linked hired application and recomputes
// the worker's employment flag in one transaction
func (r *workExperienceRepo) EndEmployment(ctx context.Context, id int64, endedAt time.Time) (*domain.EmploymentEnded, error) {
	result := &domain.EmploymentEnded{Experience: &domain.WorkExperience{}}

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		err := scanExperience(tx.QueryRow(ctx, `
			UPDATE work_experiences SET is_current = FALSE, end_date = $2, updated_at = NOW()
			WHERE id = $1 AND is_current
			RETURNING`+experienceColumns, id, endedAt), result.Experience)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return missOrChanged(ctx, tx, "work_experiences", id)
			}
			return err
		}

		if appID := result.Experience.LinkedApplicationID; appID != nil {
			tag, err := tx.Exec(ctx, `
				UPDATE applications SET status = 'employment_ended', updated_at = $2
				WHERE id = $1 AND status = 'hired'`, *appID, endedAt)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 1 {
				if err := insertHistory(ctx, tx, *appID, domain.ApplicationStatusEmploymentEnded, endedAt); err != nil {
					return err
				}
				result.ApplicationEnded = true
			}
		}

		result.CurrentlyEmployed, err = syncProfile(ctx, tx, result.Experience.WorkerID, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateFromHire inserts the verified record for a hired application. The unique
// linked_application_id makes redelivery a no-op.
func (r *workExperienceRepo) CreateFromHire(ctx context.Context, hire domain.HireEvent) (*domain.WorkExperience, bool, error) {
	app := hire.Application
	exp := &domain.WorkExperience{}
	created := true

	companyName := ""
	if app.CompanyName != nil {
		companyName = *app.CompanyName
	}
	role := ""
	if app.JobTitle != nil {
		role = *app.JobTitle
	}
	employerID := hire.EmployerID
	appID := app.ID

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		err := scanExperience(tx.QueryRow(ctx, `
			INSERT INTO work_experiences (
				worker_id, employer_id, linked_application_id, company_id, company_name, role,
				start_date, is_current, added_by, is_verified, is_visible, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, 'employer', TRUE, TRUE, NOW(), NOW())
			ON CONFLICT (linked_application_id) DO NOTHING
			RETURNING`+experienceColumns,
			app.ApplicantID, employerID, appID, app.CompanyID, companyName, role, hire.HiredAt,
		), exp)
		if errors.Is(err, pgx.ErrNoRows) {
			created = false
			err = scanExperience(tx.QueryRow(ctx,
				`SELECT`+experienceColumns+` FROM work_experiences WHERE linked_application_id = $1`, appID), exp)
		}
		if err != nil {
			return err
		}

		_, err = syncProfile(ctx, tx, exp.WorkerID, exp.ID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return exp, created, nil
}

// syncProfile upserts the worker's profile, appending addID to work_history when it is
// non-zero and not yet present, and recomputes currently_employed from the records.
func syncProfile(ctx context.Context, q querier, workerID string, addID int64) (bool, error) {
	var employed bool
	err := q.QueryRow(ctx, `
		INSERT INTO worker_profiles (user_id, work_history, currently_employed, updated_at)
		VALUES (
			$1,
			CASE WHEN $2::bigint = 0 THEN '{}'::bigint[] ELSE ARRAY[$2::bigint] END,
			EXISTS(SELECT 1 FROM work_experiences WHERE worker_id = $1 AND is_current),
			NOW()
		)
		ON CONFLICT (user_id) DO UPDATE SET
			work_history = CASE
				WHEN $2::bigint = 0 OR $2::bigint = ANY(worker_profiles.work_history)
				THEN worker_profiles.work_history
				ELSE array_append(worker_profiles.work_history, $2::bigint)
			END,
			currently_employed = EXCLUDED.currently_employed,
			updated_at         = NOW()
		RETURNING currently_employed`, workerID, addID).Scan(&employed)
	return employed, err
}
