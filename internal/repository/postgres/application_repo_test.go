package postgres

import (
	"context"
	"testing"
	"time"

	"go-hiring-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var applicationCols = []string{
	"id", "job_id", "applicant_id", "status", "cover_note", "employer_notes",
	"applied_at", "updated_at", "title", "company_id", "name",
}

func applicationRows(id int64, status domain.ApplicationStatus) *pgxmock.Rows {
	return pgxmock.NewRows(applicationCols).AddRow(
		id, int64(1), "w1", status, (*string)(nil), (*string)(nil),
		fixedNow, fixedNow, ptr("Forklift Operator"), ptr(int64(3)), ptr("Acme Logistics"),
	)
}

func historyRows(appID int64, statuses ...domain.ApplicationStatus) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"application_id", "status", "changed_at"})
	for i, s := range statuses {
		rows.AddRow(appID, s, fixedNow.Add(time.Duration(i)*time.Minute))
	}
	return rows
}

func TestApplicationRepo_Create(t *testing.T) {
	ctx := context.Background()
	insertApp := sqlLike("INSERT INTO applications", "RETURNING id")
	insertHist := sqlLike("INSERT INTO application_status_history")
	bumpCount := sqlLike(
		"UPDATE jobs SET applications_count = applications_count + 1",
		"WHERE id = $1 AND status = 'active'",
	)

	t.Run("Should insert, record history and bump the job counter", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(insertApp).
			WithArgs(int64(1), "w1", domain.ApplicationStatusPending, (*string)(nil), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
		mock.ExpectExec(insertHist).
			WithArgs(int64(5), domain.ApplicationStatusPending, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(bumpCount).
			WithArgs(int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		app := &domain.Application{JobID: 1, ApplicantID: "w1"}
		err := NewApplicationRepository(mock).Create(ctx, app)
		require.NoError(t, err)

		assert.Equal(t, int64(5), app.ID)
		assert.Equal(t, domain.ApplicationStatusPending, app.Status)
		require.Len(t, app.StatusHistory, 1)
		assert.Equal(t, domain.ApplicationStatusPending, app.StatusHistory[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should roll back when the job closed mid-apply", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(insertApp).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
		mock.ExpectExec(insertHist).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(bumpCount).
			WithArgs(int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()

		err := NewApplicationRepository(mock).Create(ctx, &domain.Application{JobID: 1, ApplicantID: "w1"})
		assert.ErrorIs(t, err, domain.ErrStateChanged)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplicationRepo_TransitionStatus(t *testing.T) {
	ctx := context.Background()
	update := sqlLike(
		"UPDATE applications",
		"SET status = $2, employer_notes = COALESCE($3, employer_notes), updated_at = $4",
		"WHERE id = $1 AND status = ANY($5::text[])",
	)
	from := []domain.ApplicationStatus{
		domain.ApplicationStatusPending, domain.ApplicationStatusViewed, domain.ApplicationStatusShortlisted,
	}

	t.Run("Should update, record history, enqueue the event and reload", func(t *testing.T) {
		hire := domain.HireEvent{
			Application: domain.Application{ID: 5, ApplicantID: "w1"},
			EmployerID:  "emp-1",
			HiredAt:     fixedNow,
		}
		event, err := domain.NewOutboxEvent(domain.EventApplicationHired, 5, hire, 10)
		require.NoError(t, err)

		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(update).
			WithArgs(int64(5), domain.ApplicationStatusHired, (*string)(nil), pgxmock.AnyArg(),
				[]string{"pending", "viewed", "shortlisted"}).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(sqlLike("INSERT INTO application_status_history")).
			WithArgs(int64(5), domain.ApplicationStatusHired, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(sqlLike("INSERT INTO outbox_events", "ON CONFLICT (event_type, aggregate_id) DO NOTHING")).
			WithArgs(pgxmock.AnyArg(), domain.EventApplicationHired, int64(5), []byte(event.Payload), 10).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery(sqlLike("FROM applications a", "WHERE a.id = $1")).
			WithArgs(int64(5)).
			WillReturnRows(applicationRows(5, domain.ApplicationStatusHired))
		mock.ExpectQuery(sqlLike("FROM application_status_history", "WHERE application_id = ANY($1)")).
			WithArgs([]int64{5}).
			WillReturnRows(historyRows(5, domain.ApplicationStatusPending, domain.ApplicationStatusHired))
		mock.ExpectCommit()

		app, err := NewApplicationRepository(mock).TransitionStatus(ctx, domain.StatusTransition{
			ApplicationID: 5,
			From:          from,
			To:            domain.ApplicationStatusHired,
			Event:         event,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.ApplicationStatusHired, app.Status)
		require.Len(t, app.StatusHistory, 2)
		assert.Equal(t, domain.ApplicationStatusPending, app.StatusHistory[0].Status)
		assert.Equal(t, domain.ApplicationStatusHired, app.StatusHistory[1].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should report a status that moved underneath", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(update).
			WithArgs(int64(5), domain.ApplicationStatusHired, (*string)(nil), pgxmock.AnyArg(),
				[]string{"pending", "viewed", "shortlisted"}).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(sqlLike("SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)")).
			WithArgs(int64(5)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := NewApplicationRepository(mock).TransitionStatus(ctx, domain.StatusTransition{
			ApplicationID: 5,
			From:          from,
			To:            domain.ApplicationStatusHired,
		})
		assert.ErrorIs(t, err, domain.ErrStateChanged)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should report a deleted application as not found", func(t *testing.T) {
		notes := "great interview"
		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(update).
			WithArgs(int64(5), domain.ApplicationStatusRejected, &notes, pgxmock.AnyArg(),
				[]string{"pending"}).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(sqlLike("SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)")).
			WithArgs(int64(5)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		_, err := NewApplicationRepository(mock).TransitionStatus(ctx, domain.StatusTransition{
			ApplicationID: 5,
			From:          []domain.ApplicationStatus{domain.ApplicationStatusPending},
			To:            domain.ApplicationStatusRejected,
			EmployerNotes: &notes,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplicationRepo_DeleteWithdrawable(t *testing.T) {
	ctx := context.Background()
	del := sqlLike(
		"DELETE FROM applications",
		"WHERE id = $1 AND applicant_id = $2 AND status = ANY($3::text[])",
		"RETURNING job_id",
	)
	withdrawable := []domain.ApplicationStatus{domain.ApplicationStatusPending, domain.ApplicationStatusViewed}

	t.Run("Should delete and decrement the job counter", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(del).
			WithArgs(int64(5), "w1", []string{"pending", "viewed"}).
			WillReturnRows(pgxmock.NewRows([]string{"job_id"}).AddRow(int64(1)))
		mock.ExpectExec(sqlLike("UPDATE jobs SET applications_count = GREATEST(applications_count - 1, 0)", "WHERE id = $1")).
			WithArgs(int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := NewApplicationRepository(mock).DeleteWithdrawable(ctx, 5, "w1", withdrawable)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should leave the counter alone once the employer acted", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(del).
			WithArgs(int64(5), "w1", []string{"pending", "viewed"}).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(sqlLike("SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)")).
			WithArgs(int64(5)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err := NewApplicationRepository(mock).DeleteWithdrawable(ctx, 5, "w1", withdrawable)
		assert.ErrorIs(t, err, domain.ErrStateChanged)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
