package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/school-portal/internal/cache"
	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/mocks"
	customError "github.com/segyhp/school-portal/pkg/errors"
)

func TestAcademicTermService_Delete(t *testing.T) {
	tests := []struct {
		name          string
		termID        int64
		setupMocks    func(*mocks.MockAcademicTermRepository, int64)
		expectedError bool
		errorContains string
		expectedKind  customError.Kind
	}{
		{
			name:   "Success - Unreferenced term",
			termID: 3,
			setupMocks: func(repo *mocks.MockAcademicTermRepository, id int64) {
				repo.On("LockTerms", mock.Anything).Return(nil)
				repo.On("GetByID", mock.Anything, id).Return(&domain.AcademicTerm{ID: id, Name: "2023 Güz"}, nil)
				repo.On("CountReferences", mock.Anything, id).Return(0, 0, nil)
				repo.On("Delete", mock.Anything, id).Return(nil)
			},
			expectedError: false,
		},
		{
			name:   "Failure - Term has class assignments",
			termID: 4,
			setupMocks: func(repo *mocks.MockAcademicTermRepository, id int64) {
				repo.On("LockTerms", mock.Anything).Return(nil)
				repo.On("GetByID", mock.Anything, id).Return(&domain.AcademicTerm{ID: id, Name: "2024 Bahar"}, nil)
				repo.On("CountReferences", mock.Anything, id).Return(1, 0, nil)
			},
			expectedError: true,
			errorContains: "1 sınıf ataması",
			expectedKind:  customError.KindConflict,
		},
		{
			name:   "Failure - Term has schedules",
			termID: 5,
			setupMocks: func(repo *mocks.MockAcademicTermRepository, id int64) {
				repo.On("LockTerms", mock.Anything).Return(nil)
				repo.On("GetByID", mock.Anything, id).Return(&domain.AcademicTerm{ID: id}, nil)
				repo.On("CountReferences", mock.Anything, id).Return(0, 12, nil)
			},
			expectedError: true,
			errorContains: "12 ders programı",
			expectedKind:  customError.KindConflict,
		},
		{
			name:   "Failure - Term not found",
			termID: 6,
			setupMocks: func(repo *mocks.MockAcademicTermRepository, id int64) {
				repo.On("LockTerms", mock.Anything).Return(nil)
				repo.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)
			},
			expectedError: true,
			errorContains: "bulunamadı",
			expectedKind:  customError.KindNotFound,
		},
		{
			name:   "Failure - Database error counting references",
			termID: 7,
			setupMocks: func(repo *mocks.MockAcademicTermRepository, id int64) {
				repo.On("LockTerms", mock.Anything).Return(nil)
				repo.On("GetByID", mock.Anything, id).Return(&domain.AcademicTerm{ID: id}, nil)
				repo.On("CountReferences", mock.Anything, id).Return(0, 0, errors.New("connection reset"))
			},
			expectedError: true,
			errorContains: "database operation failed",
			expectedKind:  customError.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockAcademicTermRepository)
			tt.setupMocks(repo, tt.termID)

			tx := &mocks.Transactor{}
			svc := NewAcademicTermService(tx, repo, cache.Noop{}, testOptions(date(2024, 3, 1)))
			err := svc.Delete(context.Background(), tt.termID)

			assert.Equal(t, 1, tx.Calls, "check and delete run in one transaction")

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Equal(t, tt.expectedKind, customError.KindOf(err))
				repo.AssertNotCalled(t, "Delete", mock.Anything, tt.termID)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAcademicTermService_SetCurrent(t *testing.T) {
	tests := []struct {
		name           string
		termID         int64
		setupMocks     func(*mocks.MockAcademicTermRepository, int64)
		expectedError  bool
		errorContains  string
		validateResult func(*testing.T, *domain.AcademicTerm, *mocks.MockAcademicTermRepository)
	}{
		{
			name:   "Success - Clears others and marks term current",
			termID: 2,
			setupMocks: func(repo *mocks.MockAcademicTermRepository, id int64) {
				repo.On("LockTerms", mock.Anything).Return(nil)
				repo.On("GetByID", mock.Anything, id).Return(&domain.AcademicTerm{ID: id, Name: "2024 Güz", IsActive: true}, nil)
				repo.On("ClearCurrent", mock.Anything, id).Return(nil)
				repo.On("Update", mock.Anything, mock.MatchedBy(func(term *domain.AcademicTerm) bool {
					return term.ID == id && term.IsCurrent
				})).Return(nil)
			},
			validateResult: func(t *testing.T, term *domain.AcademicTerm, repo *mocks.MockAcademicTermRepository) {
				assert.True(t, term.IsCurrent)
			},
		},
		{
			name:   "Success - Already current skips update",
			termID: 2,
			setupMocks: func(repo *mocks.MockAcademicTermRepository, id int64) {
				repo.On("LockTerms", mock.Anything).Return(nil)
				repo.On("GetByID", mock.Anything, id).Return(&domain.AcademicTerm{ID: id, IsActive: true, IsCurrent: true}, nil)
				repo.On("ClearCurrent", mock.Anything, id).Return(nil)
			},
			validateResult: func(t *testing.T, term *domain.AcademicTerm, repo *mocks.MockAcademicTermRepository) {
				assert.True(t, term.IsCurrent)
				repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			},
		},
		{
			name:   "Failure - Inactive term",
			termID: 9,
			setupMocks: func(repo *mocks.MockAcademicTermRepository, id int64) {
				repo.On("LockTerms", mock.Anything).Return(nil)
				repo.On("GetByID", mock.Anything, id).Return(&domain.AcademicTerm{ID: id, IsActive: false}, nil)
			},
			expectedError: true,
			errorContains: "Pasif dönem",
			validateResult: func(t *testing.T, term *domain.AcademicTerm, repo *mocks.MockAcademicTermRepository) {
				assert.Nil(t, term)
				repo.AssertNotCalled(t, "ClearCurrent", mock.Anything, mock.Anything)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockAcademicTermRepository)
			tt.setupMocks(repo, tt.termID)
			tx := &mocks.Transactor{}
			c := newMemCache()
			c.data[cache.KeyCurrentTerm] = []byte(`{"id":1,"name":"eski"}`)

			svc := NewAcademicTermService(tx, repo, c, testOptions(date(2024, 9, 1)))
			term, err := svc.SetCurrent(context.Background(), tt.termID)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Contains(t, c.data, cache.KeyCurrentTerm)
			} else {
				assert.NoError(t, err)
				assert.NotContains(t, c.data, cache.KeyCurrentTerm)
			}
			assert.Equal(t, 1, tx.Calls)

			if tt.validateResult != nil {
				tt.validateResult(t, term, repo)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAcademicTermService_CreateCurrent(t *testing.T) {
	repo := new(mocks.MockAcademicTermRepository)
	repo.On("LockTerms", mock.Anything).Return(nil)
	repo.On("ClearCurrent", mock.Anything, int64(0)).Return(nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(term *domain.AcademicTerm) bool {
		return term.IsCurrent && term.IsActive && term.Name == "2024 Güz"
	})).Return(nil)

	svc := NewAcademicTermService(&mocks.Transactor{}, repo, cache.Noop{}, testOptions(date(2024, 9, 1)))
	term, err := svc.Create(context.Background(), &domain.AcademicTermRequest{
		Name:         "2024 Güz",
		AcademicYear: "2024-2025",
		StartDate:    date(2024, 9, 9),
		EndDate:      date(2025, 1, 24),
		IsCurrent:    true,
	})

	assert.NoError(t, err)
	assert.True(t, term.IsCurrent)
	repo.AssertExpectations(t)
}

func TestAcademicTermService_CreateRejectsInvertedRange(t *testing.T) {
	repo := new(mocks.MockAcademicTermRepository)
	svc := NewAcademicTermService(&mocks.Transactor{}, repo, cache.Noop{}, testOptions(date(2024, 9, 1)))

	_, err := svc.Create(context.Background(), &domain.AcademicTermRequest{
		Name:         "Ters",
		AcademicYear: "2024-2025",
		StartDate:    date(2025, 1, 24),
		EndDate:      date(2024, 9, 9),
	})

	assert.Equal(t, customError.KindValidation, customError.KindOf(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAcademicTermService_GetCurrentCaches(t *testing.T) {
	repo := new(mocks.MockAcademicTermRepository)
	current := &domain.AcademicTerm{ID: 2, Name: "2024 Güz", IsCurrent: true, StartDate: date(2024, 9, 9)}
	repo.On("GetCurrent", mock.Anything).Return(current, nil).Once()

	svc := NewAcademicTermService(&mocks.Transactor{}, repo, newMemCache(), testOptions(time.Now()))

	first, err := svc.GetCurrent(context.Background())
	assert.NoError(t, err)
	second, err := svc.GetCurrent(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.StartDate.Equal(current.StartDate))
	repo.AssertNumberOfCalls(t, "GetCurrent", 1)
}

func TestAcademicTermService_GetCurrentNone(t *testing.T) {
	repo := new(mocks.MockAcademicTermRepository)
	repo.On("GetCurrent", mock.Anything).Return(nil, sql.ErrNoRows)

	svc := NewAcademicTermService(&mocks.Transactor{}, repo, cache.Noop{}, testOptions(time.Now()))
	_, err := svc.GetCurrent(context.Background())

	assert.True(t, errors.Is(err, customError.ErrNotFound))
}
