package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-hiring-backend/internal/dispatcher"
	"go-hiring-backend/internal/domain"
	"go-hiring-backend/internal/usecase"
	"go-hiring-backend/pkg/apperror"
	"go-hiring-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newExperienceUsecase() (*MockExperienceRepo, *MockProfileRepo, domain.WorkExperienceUsecase) {
	repo := new(MockExperienceRepo)
	profiles := new(MockProfileRepo)
	return repo, profiles, usecase.NewWorkExperienceUsecase(repo, profiles, validation.New())
}

func validInput() domain.WorkExperienceInput {
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	return domain.WorkExperienceInput{
		CompanyName: "Harbor Freight Co.",
		Role:        "Warehouse Associate",
		StartDate:   time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     &end,
	}
}

func TestCreateExperience(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create an unverified visible record", func(t *testing.T) {
		repo, _, uc := newExperienceUsecase()
		repo.On("Create", ctx, mock.MatchedBy(func(e *domain.WorkExperience) bool {
			return e.WorkerID == "w1" && e.AddedBy == domain.AddedByWorker && !e.IsVerified && e.IsVisible
		})).Return(nil)

		exp, err := uc.Create(ctx, "w1", validInput())
		require.NoError(t, err)
		assert.Equal(t, "Warehouse Associate", exp.Role)
	})

	t.Run("Should reject invalid fields", func(t *testing.T) {
		_, _, uc := newExperienceUsecase()
		in := validInput()
		in.Role = ""

		_, err := uc.Create(ctx, "w1", in)
		assertKind(t, err, apperror.KindBadRequest)
		assert.Contains(t, err.Error(), "Role")
	})

	t.Run("Should reject an end date before the start", func(t *testing.T) {
		_, _, uc := newExperienceUsecase()
		in := validInput()
		early := in.StartDate.AddDate(0, -1, 0)
		in.EndDate = &early

		_, err := uc.Create(ctx, "w1", in)
		assertKind(t, err, apperror.KindBadRequest)
	})

	t.Run("Should reject a current position with an end date", func(t *testing.T) {
		_, _, uc := newExperienceUsecase()
		in := validInput()
		in.IsCurrent = true

		_, err := uc.Create(ctx, "w1", in)
		assertKind(t, err, apperror.KindBadRequest)
	})
}

func TestUpdateAndDeleteExperience(t *testing.T) {
	ctx := context.Background()
	employer := "emp-1"
	verified := &domain.WorkExperience{ID: 8, WorkerID: "w1", EmployerID: &employer, AddedBy: domain.AddedByEmployer, IsVerified: true, IsCurrent: true}
	own := &domain.WorkExperience{ID: 9, WorkerID: "w1", AddedBy: domain.AddedByWorker}

	t.Run("Should update the worker's own record", func(t *testing.T) {
		repo, _, uc := newExperienceUsecase()
		repo.On("GetByID", ctx, int64(9)).Return(&domain.WorkExperience{ID: 9, WorkerID: "w1", AddedBy: domain.AddedByWorker}, nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)

		exp, err := uc.Update(ctx, "w1", 9, validInput())
		require.NoError(t, err)
		assert.Equal(t, "Harbor Freight Co.", exp.CompanyName)
	})

	t.Run("Should forbid editing a verified record", func(t *testing.T) {
		repo, _, uc := newExperienceUsecase()
		repo.On("GetByID", ctx, int64(8)).Return(verified, nil)

		_, err := uc.Update(ctx, "w1", 8, validInput())
		assertKind(t, err, apperror.KindForbidden)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Should forbid deleting a verified record", func(t *testing.T) {
		repo, _, uc := newExperienceUsecase()
		repo.On("GetByID", ctx, int64(8)).Return(verified, nil)

		err := uc.Delete(ctx, "w1", 8)
		assertKind(t, err, apperror.KindForbidden)
	})

	t.Run("Should forbid deleting another worker's record", func(t *testing.T) {
		repo, _, uc := newExperienceUsecase()
		repo.On("GetByID", ctx, int64(9)).Return(own, nil)

		err := uc.Delete(ctx, "w2", 9)
		assertKind(t, err, apperror.KindForbidden)
	})

	t.Run("Should delete the worker's own record", func(t *testing.T) {
		repo, _, uc := newExperienceUsecase()
		repo.On("GetByID", ctx, int64(9)).Return(own, nil)
		repo.On("Delete", ctx, int64(9), "w1").Return(nil)

		assert.NoError(t, uc.Delete(ctx, "w1", 9))
	})

	t.Run("Should toggle visibility on a verified record", func(t *testing.T) {
		repo, _, uc := newExperienceUsecase()
		repo.On("GetByID", ctx, int64(8)).Return(verified, nil)
		repo.On("ToggleVisibility", ctx, int64(8), "w1").Return(false, nil)

		visible, err := uc.ToggleVisibility(ctx, "w1", 8)
		require.NoError(t, err)
		assert.False(t, visible)
	})
}

func TestListExperiences(t *testing.T) {
	ctx := context.Background()
	repo, profiles, uc := newExperienceUsecase()

	repo.On("ListByWorker", ctx, "w1", false).Return([]domain.WorkExperience{{ID: 1}, {ID: 2}}, nil)
	repo.On("ListByWorker", ctx, "w1", true).Return([]domain.WorkExperience{{ID: 1}}, nil)
	profiles.On("GetByUserID", ctx, "w1").Return(&domain.WorkerProfile{UserID: "w1", WorkHistory: []int64{1, 2}}, nil)

	mine, err := uc.ListMine(ctx, "w1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	visible, err := uc.ListVisible(ctx, "w1")
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	profile, err := uc.GetProfile(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, profile.WorkHistory)
}

func TestEndEmployment(t *testing.T) {
	ctx := context.Background()
	employer := "emp-1"
	appID := int64(5)

	current := func() *domain.WorkExperience {
		return &domain.WorkExperience{
			ID: 8, WorkerID: "w1", EmployerID: &employer, LinkedApplicationID: &appID,
			AddedBy: domain.AddedByEmployer, IsVerified: true, IsCurrent: true,
		}
	}

	t.Run("Should let the employer end employment", func(t *testing.T) {
		repo, _, uc := newExperienceUsecase()
		repo.On("GetByID", ctx, int64(8)).Return(current(), nil)
		repo.On("EndEmployment", ctx, int64(8), mock.AnythingOfType("time.Time")).
			Return(&domain.EmploymentEnded{Experience: current(), ApplicationEnded: true}, nil)

		result, err := uc.EndEmployment(ctx, "emp-1", 8)
		require.NoError(t, err)
		assert.True(t, result.ApplicationEnded)
		assert.False(t, result.CurrentlyEmployed)
	})

	t.Run("Should let the worker end a verified current record", func(t *testing.T) {
		repo, _, uc := newExperienceUsecase()
		repo.On("GetByID", ctx, int64(8)).Return(current(), nil)
		repo.On("EndEmployment", ctx, int64(8), mock.Anything).
			Return(&domain.EmploymentEnded{Experience: current()}, nil)

		_, err := uc.EndEmployment(ctx, "w1", 8)
		assert.NoError(t, err)
	})

	t.Run("Should forbid a stranger", func(t *testing.T) {
		repo, _, uc := newExperienceUsecase()
		repo.On("GetByID", ctx, int64(8)).Return(current(), nil)

		_, err := uc.EndEmployment(ctx, "emp-2", 8)
		assertKind(t, err, apperror.KindForbidden)
	})

	t.Run("Should refuse to end twice", func(t *testing.T) {
		for _, caller := range []string{"emp-1", "w1"} {
			repo, _, uc := newExperienceUsecase()
			ended := current()
			ended.IsCurrent = false
			repo.On("GetByID", ctx, int64(8)).Return(ended, nil)

			_, err := uc.EndEmployment(ctx, caller, 8)
			assertKind(t, err, apperror.KindInvalidState)
			repo.AssertNotCalled(t, "EndEmployment", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("Should forbid the worker on an unverified record", func(t *testing.T) {
		repo, _, uc := newExperienceUsecase()
		own := current()
		own.EmployerID = nil
		own.AddedBy = domain.AddedByWorker
		own.IsVerified = false
		repo.On("GetByID", ctx, int64(8)).Return(own, nil)

		_, err := uc.EndEmployment(ctx, "w1", 8)
		assertKind(t, err, apperror.KindForbidden)
	})

	t.Run("Should report a concurrent end as invalid state", func(t *testing.T) {
		repo, _, uc := newExperienceUsecase()
		repo.On("GetByID", ctx, int64(8)).Return(current(), nil)
		repo.On("EndEmployment", ctx, int64(8), mock.Anything).Return(nil, domain.ErrStateChanged)

		_, err := uc.EndEmployment(ctx, "emp-1", 8)
		assertKind(t, err, apperror.KindInvalidState)
	})
}

func TestHandleHire(t *testing.T) {
	ctx := context.Background()
	title := "Forklift Operator"
	hire := domain.HireEvent{
		Application: domain.Application{ID: 5, JobID: 1, ApplicantID: "w1", Status: domain.ApplicationStatusHired, JobTitle: &title},
		EmployerID:  "emp-1",
		HiredAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(hire)
	require.NoError(t, err)

	t.Run("Should create the verified record", func(t *testing.T) {
		repo := new(MockExperienceRepo)
		uc := usecase.NewHireUsecase(repo)
		repo.On("CreateFromHire", ctx, mock.MatchedBy(func(h domain.HireEvent) bool {
			return h.Application.ID == 5 && h.EmployerID == "emp-1" && h.HiredAt.Equal(hire.HiredAt)
		})).Return(&domain.WorkExperience{ID: 11}, true, nil)

		assert.NoError(t, uc.HandleHire(ctx, payload))
		repo.AssertExpectations(t)
	})

	t.Run("Should treat redelivery as success", func(t *testing.T) {
		repo := new(MockExperienceRepo)
		uc := usecase.NewHireUsecase(repo)
		repo.On("CreateFromHire", ctx, mock.Anything).Return(&domain.WorkExperience{ID: 11}, false, nil)

		assert.NoError(t, uc.HandleHire(ctx, payload))
	})

	t.Run("Should return a retryable error on storage failure", func(t *testing.T) {
		repo := new(MockExperienceRepo)
		uc := usecase.NewHireUsecase(repo)
		repo.On("CreateFromHire", ctx, mock.Anything).Return(nil, false, errors.New("deadlock detected"))

		err := uc.HandleHire(ctx, payload)
		assert.Error(t, err)
		var fatal *dispatcher.FatalError
		assert.False(t, errors.As(err, &fatal))
	})

	t.Run("Should mark a malformed payload fatal", func(t *testing.T) {
		repo := new(MockExperienceRepo)
		uc := usecase.NewHireUsecase(repo)

		var fatal *dispatcher.FatalError
		assert.True(t, errors.As(uc.HandleHire(ctx, []byte(`{not json`)), &fatal))
		assert.True(t, errors.As(uc.HandleHire(ctx, []byte(`{}`)), &fatal))
		repo.AssertNotCalled(t, "CreateFromHire", mock.Anything, mock.Anything)
	})
}
