package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-hiring-backend/internal/domain"
	"go-hiring-backend/pkg/apperror"
	"go-hiring-backend/pkg/logger"
	"go-hiring-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type workExperienceUsecase struct {
	experienceRepo domain.WorkExperienceRepository
	profileRepo    domain.WorkerProfileRepository
	validate       *validator.Validate
	now            func() time.Time
}

func NewWorkExperienceUsecase(
	experienceRepo domain.WorkExperienceRepository,
	profileRepo domain.WorkerProfileRepository,
	validate *validator.Validate,
) domain.WorkExperienceUsecase {
	return &workExperienceUsecase{
		experienceRepo: experienceRepo,
		profileRepo:    profileRepo,
		validate:       validate,
		now:            time.Now,
	}
}

// Create adds a self-reported, unverified record to the worker's history
func (uc *workExperienceUsecase) Create(ctx context.Context, workerID string, in domain.WorkExperienceInput) (*domain.WorkExperience, error) {
	if err := uc.validateInput(in); err != nil {
		return nil, err
	}

	exp := &domain.WorkExperience{
		WorkerID:  workerID,
		AddedBy:   domain.AddedByWorker,
		IsVisible: true,
	}
	applyInput(exp, in)

	if err := uc.experienceRepo.Create(ctx, exp); err != nil {
		return nil, apperror.Internal(err)
	}
	return exp, nil
}

// Update edits a record the worker added themselves
func (uc *workExperienceUsecase) Update(ctx context.Context, workerID string, id int64, in domain.WorkExperienceInput) (*domain.WorkExperience, error) {
	exp, err := uc.ownedExperience(ctx, workerID, id)
	if err != nil {
		return nil, err
	}
	if !exp.WorkerEditable() {
		return nil, apperror.Forbidden("Verified work experience cannot be edited")
	}
	if err := uc.validateInput(in); err != nil {
		return nil, err
	}

	applyInput(exp, in)
	if err := uc.experienceRepo.Update(ctx, exp); err != nil {
		if errors.Is(err, domain.ErrStateChanged) {
			return nil, apperror.Forbidden("Verified work experience cannot be edited")
		}
		return nil, apperror.Internal(err)
	}
	return exp, nil
}

func (uc *workExperienceUsecase) Delete(ctx context.Context, workerID string, id int64) error {
	exp, err := uc.ownedExperience(ctx, workerID, id)
	if err != nil {
		return err
	}
	if !exp.WorkerEditable() {
		return apperror.Forbidden("Verified work experience cannot be deleted")
	}

	if err := uc.experienceRepo.Delete(ctx, id, workerID); err != nil {
		if errors.Is(err, domain.ErrStateChanged) {
			return apperror.Forbidden("Verified work experience cannot be deleted")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (uc *workExperienceUsecase) ListMine(ctx context.Context, workerID string) ([]domain.WorkExperience, error) {
	items, err := uc.experienceRepo.ListByWorker(ctx, workerID, false)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

// ListVisible returns what other parties may see of a worker's history
func (uc *workExperienceUsecase) ListVisible(ctx context.Context, workerID string) ([]domain.WorkExperience, error) {
	items, err := uc.experienceRepo.ListByWorker(ctx, workerID, true)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

// ToggleVisibility flips is_visible on any record the worker owns, verified or not
func (uc *workExperienceUsecase) ToggleVisibility(ctx context.Context, workerID string, id int64) (bool, error) {
	if _, err := uc.ownedExperience(ctx, workerID, id); err != nil {
		return false, err
	}

	visible, err := uc.experienceRepo.ToggleVisibility(ctx, id, workerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, apperror.NotFound("Work experience not found")
		}
		return false, apperror.Internal(err)
	}
	return visible, nil
}

func (uc *workExperienceUsecase) GetProfile(ctx context.Context, workerID string) (*domain.WorkerProfile, error) {
	profile, err := uc.profileRepo.GetByUserID(ctx, workerID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return profile, nil
}

// EndEmployment closes a current employment. The employer may always end it; the
// worker may end it only on a verified record. Both get InvalidState once it has ended.
func (uc *workExperienceUsecase) EndEmployment(ctx context.Context, callerID string, id int64) (*domain.EmploymentEnded, error) {
	exp, err := uc.getExperience(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exp.CanEndEmployment(callerID) {
		return nil, apperror.Forbidden("You do not have permission to end this employment")
	}
	if !exp.IsCurrent {
		return nil, apperror.InvalidState("Employment has already ended")
	}

	result, err := uc.experienceRepo.EndEmployment(ctx, id, uc.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStateChanged):
			return nil, apperror.InvalidState("Employment has already ended")
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperror.NotFound("Work experience not found")
		}
		return nil, apperror.Internal(err)
	}

	logger.Log.Info("employment ended",
		"experience_id", id,
		"worker_id", exp.WorkerID,
		"ended_by", callerID,
		"application_ended", result.ApplicationEnded,
	)
	return result, nil
}

func (uc *workExperienceUsecase) validateInput(in domain.WorkExperienceInput) error {
	if err := uc.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; "))
		}
		return apperror.BadRequest("Invalid work experience")
	}
	if in.IsCurrent && in.EndDate != nil {
		return apperror.BadRequest("A current position cannot have an end date")
	}
	if !in.IsCurrent && in.EndDate == nil {
		return apperror.BadRequest("End date is required for a past position")
	}
	return nil
}

func (uc *workExperienceUsecase) getExperience(ctx context.Context, id int64) (*domain.WorkExperience, error) {
	exp, err := uc.experienceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Work experience not found")
		}
		return nil, apperror.Internal(err)
	}
	return exp, nil
}

func (uc *workExperienceUsecase) ownedExperience(ctx context.Context, workerID string, id int64) (*domain.WorkExperience, error) {
	exp, err := uc.getExperience(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp.WorkerID != workerID {
		return nil, apperror.Forbidden("You can only manage your own work experience")
	}
	return exp, nil
}

func applyInput(exp *domain.WorkExperience, in domain.WorkExperienceInput) {
	exp.CompanyName = strings.TrimSpace(in.CompanyName)
	exp.Role = strings.TrimSpace(in.Role)
	exp.Description = in.Description
	exp.StartDate = in.StartDate
	exp.EndDate = in.EndDate
	exp.IsCurrent = in.IsCurrent
}
