package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/mocks"
	customError "github.com/segyhp/school-portal/pkg/errors"
)

func TestClubService_AddMember(t *testing.T) {
	const clubID, studentID = int64(3), int64(42)

	tests := []struct {
		name           string
		request        *domain.ClubMemberRequest
		setupMocks     func(*mocks.MockClubRepository, *mocks.MockStudentRepository)
		expectedError  bool
		expectedErr    error
		validateResult func(*testing.T, *domain.ClubMembership)
	}{
		{
			name:    "Success - Default role",
			request: &domain.ClubMemberRequest{StudentID: studentID},
			setupMocks: func(clubs *mocks.MockClubRepository, students *mocks.MockStudentRepository) {
				students.On("Exists", mock.Anything, studentID).Return(true, nil)
				clubs.On("GetByID", mock.Anything, clubID).Return(&domain.Club{ID: clubID, MaxMembers: 10, IsActive: true}, nil)
				clubs.On("IsMember", mock.Anything, clubID, studentID).Return(false, nil)
				clubs.On("CountMembers", mock.Anything, clubID).Return(9, nil)
				clubs.On("AddMember", mock.Anything, mock.MatchedBy(func(m *domain.ClubMembership) bool {
					return m.ClubID == clubID && m.StudentID == studentID && m.Role == "Member"
				})).Return(nil)
			},
			validateResult: func(t *testing.T, m *domain.ClubMembership) {
				assert.Equal(t, "Member", m.Role)
				assert.Equal(t, date(2024, 10, 1), m.JoinedAt)
			},
		},
		{
			name:    "Success - Unlimited club",
			request: &domain.ClubMemberRequest{StudentID: studentID, Role: "President"},
			setupMocks: func(clubs *mocks.MockClubRepository, students *mocks.MockStudentRepository) {
				students.On("Exists", mock.Anything, studentID).Return(true, nil)
				clubs.On("GetByID", mock.Anything, clubID).Return(&domain.Club{ID: clubID, IsActive: true}, nil)
				clubs.On("IsMember", mock.Anything, clubID, studentID).Return(false, nil)
				clubs.On("CountMembers", mock.Anything, clubID).Return(250, nil)
				clubs.On("AddMember", mock.Anything, mock.Anything).Return(nil)
			},
			validateResult: func(t *testing.T, m *domain.ClubMembership) {
				assert.Equal(t, "President", m.Role)
			},
		},
		{
			name:    "Failure - Club is full",
			request: &domain.ClubMemberRequest{StudentID: studentID},
			setupMocks: func(clubs *mocks.MockClubRepository, students *mocks.MockStudentRepository) {
				students.On("Exists", mock.Anything, studentID).Return(true, nil)
				clubs.On("GetByID", mock.Anything, clubID).Return(&domain.Club{ID: clubID, MaxMembers: 10, IsActive: true}, nil)
				clubs.On("IsMember", mock.Anything, clubID, studentID).Return(false, nil)
				clubs.On("CountMembers", mock.Anything, clubID).Return(10, nil)
			},
			expectedError: true,
			expectedErr:   customError.ErrCapacityExceeded,
		},
		{
			name:    "Failure - Already a member",
			request: &domain.ClubMemberRequest{StudentID: studentID},
			setupMocks: func(clubs *mocks.MockClubRepository, students *mocks.MockStudentRepository) {
				students.On("Exists", mock.Anything, studentID).Return(true, nil)
				clubs.On("GetByID", mock.Anything, clubID).Return(&domain.Club{ID: clubID, MaxMembers: 10, IsActive: true}, nil)
				clubs.On("IsMember", mock.Anything, clubID, studentID).Return(true, nil)
			},
			expectedError: true,
			expectedErr:   customError.ErrAlreadyExists,
		},
		{
			name:    "Failure - Inactive club",
			request: &domain.ClubMemberRequest{StudentID: studentID},
			setupMocks: func(clubs *mocks.MockClubRepository, students *mocks.MockStudentRepository) {
				students.On("Exists", mock.Anything, studentID).Return(true, nil)
				clubs.On("GetByID", mock.Anything, clubID).Return(&domain.Club{ID: clubID}, nil)
			},
			expectedError: true,
			expectedErr:   customError.ErrInvalidInput,
		},
		{
			name:    "Failure - Club not found",
			request: &domain.ClubMemberRequest{StudentID: studentID},
			setupMocks: func(clubs *mocks.MockClubRepository, students *mocks.MockStudentRepository) {
				students.On("Exists", mock.Anything, studentID).Return(true, nil)
				clubs.On("GetByID", mock.Anything, clubID).Return(nil, sql.ErrNoRows)
			},
			expectedError: true,
			expectedErr:   customError.ErrNotFound,
		},
		{
			name:    "Failure - Unknown student",
			request: &domain.ClubMemberRequest{StudentID: studentID},
			setupMocks: func(clubs *mocks.MockClubRepository, students *mocks.MockStudentRepository) {
				students.On("Exists", mock.Anything, studentID).Return(false, nil)
			},
			expectedError: true,
			expectedErr:   customError.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clubs := new(mocks.MockClubRepository)
			students := new(mocks.MockStudentRepository)
			tt.setupMocks(clubs, students)

			svc := NewClubService(&mocks.Transactor{}, clubs, students, new(mocks.MockTeacherRepository), testOptions(date(2024, 10, 1)))
			result, err := svc.AddMember(context.Background(), clubID, tt.request)

			if tt.expectedError {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedErr), "got %v", err)
				assert.Nil(t, result)
				clubs.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				tt.validateResult(t, result)
			}

			clubs.AssertExpectations(t)
			students.AssertExpectations(t)
		})
	}
}

func TestClubService_UpdateCannotShrinkBelowMembers(t *testing.T) {
	clubs := new(mocks.MockClubRepository)
	clubs.On("GetByID", mock.Anything, int64(3)).Return(&domain.Club{ID: 3, MaxMembers: 20, MemberCount: 12, IsActive: true}, nil)

	svc := NewClubService(&mocks.Transactor{}, clubs, new(mocks.MockStudentRepository), new(mocks.MockTeacherRepository), testOptions(date(2024, 10, 1)))
	_, err := svc.Update(context.Background(), 3, &domain.ClubRequest{Name: "Satranç", MaxMembers: 10})

	assert.Equal(t, customError.KindValidation, customError.KindOf(err))
	clubs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
