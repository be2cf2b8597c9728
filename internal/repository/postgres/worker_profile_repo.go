package postgres

import (
	"context"
	"errors"

	"go-hiring-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type workerProfileRepo struct {
	db DB
}

func NewWorkerProfileRepository(db DB) domain.WorkerProfileRepository {
	return &workerProfileRepo{db: db}
}

func (r *workerProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.WorkerProfile, error) {
	profile := domain.WorkerProfile{UserID: userID}
	err := r.db.QueryRow(ctx, `
		SELECT work_history, currently_employed, updated_at
		FROM worker_profiles WHERE user_id = $1`, userID,
	).Scan(&profile.WorkHistory, &profile.CurrentlyEmployed, &profile.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if profile.WorkHistory == nil {
		profile.WorkHistory = []int64{}
	}
	return &profile, nil
}
