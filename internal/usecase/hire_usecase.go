package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"go-hiring-backend/internal/dispatcher"
	"go-hiring-backend/internal/domain"
	"go-hiring-backend/pkg/logger"
)

type hireUsecase struct {
	experienceRepo domain.WorkExperienceRepository
}

// NewHireUsecase returns the handler for application.hired outbox events.
func NewHireUsecase(experienceRepo domain.WorkExperienceRepository) domain.HireUsecase {
	return &hireUsecase{experienceRepo: experienceRepo}
}

// HandleHire creates the verified work experience for a hire and updates the worker's
// profile projection. Redelivery of the same event is a no-op.
func (uc *hireUsecase) HandleHire(ctx context.Context, payload []byte) error {
	var event domain.HireEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return dispatcher.Fatal(fmt.Errorf("decode hire event: %w", err))
	}
	if err := event.Validate(); err != nil {
		return dispatcher.Fatal(err)
	}

	exp, created, err := uc.experienceRepo.CreateFromHire(ctx, event)
	if err != nil {
		return fmt.Errorf("create work experience for application %d: %w", event.Application.ID, err)
	}

	if created {
		logger.Log.Info("work experience created from hire",
			"application_id", event.Application.ID,
			"worker_id", event.Application.ApplicantID,
			"experience_id", exp.ID,
		)
	} else {
		logger.Log.Info("hire already applied",
			"application_id", event.Application.ID,
			"worker_id", event.Application.ApplicantID,
		)
	}
	return nil
}
