package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-hiring-backend/internal/domain"
	"go-hiring-backend/internal/usecase"
	"go-hiring-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockApplicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) ListByApplicant(ctx context.Context, applicantID string, page domain.PageRequest) ([]domain.Application, error) {
	args := m.Called(ctx, applicantID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) ListByJob(ctx context.Context, jobID int64, page domain.PageRequest) ([]domain.Application, error) {
	args := m.Called(ctx, jobID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) TransitionStatus(ctx context.Context, t domain.StatusTransition) (*domain.Application, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) DeleteWithdrawable(ctx context.Context, id int64, applicantID string, from []domain.ApplicationStatus) error {
	return m.Called(ctx, id, applicantID, from).Error(0)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepo) ReconcileApplicationCounts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockExperienceRepo struct {
	mock.Mock
}

func (m *MockExperienceRepo) Create(ctx context.Context, exp *domain.WorkExperience) error {
	return m.Called(ctx, exp).Error(0)
}

func (m *MockExperienceRepo) GetByID(ctx context.Context, id int64) (*domain.WorkExperience, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkExperience), args.Error(1)
}

func (m *MockExperienceRepo) ListByWorker(ctx context.Context, workerID string, visibleOnly bool) ([]domain.WorkExperience, error) {
	args := m.Called(ctx, workerID, visibleOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkExperience), args.Error(1)
}

func (m *MockExperienceRepo) Update(ctx context.Context, exp *domain.WorkExperience) error {
	return m.Called(ctx, exp).Error(0)
}

func (m *MockExperienceRepo) Delete(ctx context.Context, id int64, workerID string) error {
	return m.Called(ctx, id, workerID).Error(0)
}

func (m *MockExperienceRepo) ToggleVisibility(ctx context.Context, id int64, workerID string) (bool, error) {
	args := m.Called(ctx, id, workerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockExperienceRepo) EndEmployment(ctx context.Context, id int64, endedAt time.Time) (*domain.EmploymentEnded, error) {
	args := m.Called(ctx, id, endedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmploymentEnded), args.Error(1)
}

func (m *MockExperienceRepo) CreateFromHire(ctx context.Context, hire domain.HireEvent) (*domain.WorkExperience, bool, error) {
	args := m.Called(ctx, hire)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.WorkExperience), args.Bool(1), args.Error(2)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.WorkerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkerProfile), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, eventType string) error {
	return m.Called(ctx, eventType).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	assert.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err))
}

func TestEnsureUserExists(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create a missing worker", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo)
		repo.On("GetByID", ctx, "u1").Return(nil, domain.ErrNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		err := uc.EnsureUserExists(ctx, &domain.User{ID: "u1", Email: "a@b.co", Role: domain.RoleWorker})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Should reject an unknown role on first sign-in", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo)
		repo.On("GetByID", ctx, "u1").Return(nil, domain.ErrNotFound)

		err := uc.EnsureUserExists(ctx, &domain.User{ID: "u1", Role: "candidate"})
		assertKind(t, err, apperror.KindBadRequest)
	})

	t.Run("Should sync a changed role", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo)
		repo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Role: domain.RoleWorker}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == domain.RoleEmployer
		})).Return(nil)

		assert.NoError(t, uc.EnsureUserExists(ctx, &domain.User{ID: "u1", Role: domain.RoleEmployer}))
		repo.AssertExpectations(t)
	})

	t.Run("Should tolerate a concurrent create", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo)
		repo.On("GetByID", ctx, "u1").Return(nil, domain.ErrNotFound)
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrDuplicate)

		assert.NoError(t, uc.EnsureUserExists(ctx, &domain.User{ID: "u1", Role: domain.RoleWorker}))
	})
}

func TestGetCurrentUser(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepo)
	uc := usecase.NewAuthUsecase(repo)

	repo.On("GetByID", ctx, "missing").Return(nil, domain.ErrNotFound)
	repo.On("GetByID", ctx, "broken").Return(nil, errors.New("conn reset"))

	_, err := uc.GetCurrentUser(ctx, "missing")
	assertKind(t, err, apperror.KindNotFound)

	_, err = uc.GetCurrentUser(ctx, "broken")
	assertKind(t, err, apperror.KindInternal)
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	uc := usecase.NewHealthUsecase(map[string]usecase.Pinger{
		"database": usecase.PingerFunc(func(ctx context.Context) error { return nil }),
		"redis":    nil,
	})
	result, healthy := uc.Check(ctx)
	assert.True(t, healthy)
	assert.Equal(t, "ok", result["database"])
	assert.NotContains(t, result, "redis")

	uc = usecase.NewHealthUsecase(map[string]usecase.Pinger{
		"database": usecase.PingerFunc(func(ctx context.Context) error { return errors.New("down") }),
	})
	result, healthy = uc.Check(ctx)
	assert.False(t, healthy)
	assert.Equal(t, "degraded", result["status"])
}
