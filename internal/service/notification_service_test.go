package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/mocks"
	customError "github.com/segyhp/school-portal/pkg/errors"
)

func seedInstallments(plans *memPlans, installments *memInstallments) {
	plans.rows[1] = &domain.StudentPaymentPlan{ID: 1, StudentID: 42, Status: domain.PlanStatusActive}
	plans.rows[2] = &domain.StudentPaymentPlan{ID: 2, StudentID: 43, Status: domain.PlanStatusCancelled}

	add := func(id, planID int64, n int, due time.Time, status string) {
		installments.rows[id] = &domain.PaymentInstallment{
			ID:                   id,
			StudentPaymentPlanID: planID,
			InstallmentNumber:    n,
			Amount:               decimal.NewFromInt(100),
			PaidAmount:           decimal.Zero,
			DueDate:              due,
			Status:               status,
		}
	}
	add(1, 1, 1, date(2024, 1, 1), domain.InstallmentStatusOverdue)
	add(2, 1, 2, date(2024, 1, 31), domain.InstallmentStatusPending)
	add(3, 1, 3, date(2024, 3, 1), domain.InstallmentStatusPending)
	// cancelled plans never remind
	add(4, 2, 1, date(2024, 1, 30), domain.InstallmentStatusPending)
}

func TestNotificationService_SendPaymentReminders(t *testing.T) {
	now := time.Date(2024, 1, 28, 8, 0, 0, 0, time.UTC)
	today := date(2024, 1, 28)

	plans := newMemPlans()
	installments := newMemInstallments(plans)
	seedInstallments(plans, installments)

	notifications := new(mocks.MockNotificationRepository)
	parents := new(mocks.MockParentRepository)
	students := new(mocks.MockStudentRepository)

	parents.On("ListUserIDsByStudent", mock.Anything, int64(42)).Return([]string{"p-1"}, nil).Once()
	students.On("GetByID", mock.Anything, int64(42)).Return(&domain.Student{ID: 42, UserID: "s-42"}, nil).Once()
	notifications.On("ExistsSince", mock.Anything, "p-1", domain.NotificationTypePaymentOverdue, int64(1), today).Return(true, nil)
	notifications.On("ExistsSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything, today).Return(false, nil)

	var created []*domain.Notification
	notifications.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = append(created, args.Get(1).(*domain.Notification))
	}).Return(nil)

	svc := NewNotificationService(notifications, installments, parents, students, "TRY", testOptions(now))
	sent, err := svc.SendPaymentReminders(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	require.Len(t, created, 3)

	type key struct {
		user string
		kind string
		inst int64
	}
	got := map[key]*domain.Notification{}
	for _, n := range created {
		require.NotNil(t, n.RelatedEntityID)
		assert.Equal(t, "PaymentInstallment", n.RelatedEntityType)
		got[key{n.UserID, n.NotificationType, *n.RelatedEntityID}] = n
	}

	assert.Contains(t, got, key{"p-1", domain.NotificationTypePaymentDue, 2})
	assert.Contains(t, got, key{"s-42", domain.NotificationTypePaymentDue, 2})
	assert.Contains(t, got, key{"s-42", domain.NotificationTypePaymentOverdue, 1})

	due := got[key{"s-42", domain.NotificationTypePaymentDue, 2}]
	assert.Equal(t, "Yaklaşan taksit", due.Title)
	assert.Contains(t, due.Message, "31.01.2024")
	assert.Contains(t, due.Message, "100.00 TRY")

	parents.AssertExpectations(t)
	students.AssertExpectations(t)
}

func TestNotificationService_Ownership(t *testing.T) {
	tests := []struct {
		name          string
		act           func(*NotificationService) error
		setupMocks    func(*mocks.MockNotificationRepository)
		expectedError bool
	}{
		{
			name: "Success - Owner marks read",
			setupMocks: func(repo *mocks.MockNotificationRepository) {
				repo.On("GetByID", mock.Anything, int64(8)).Return(&domain.Notification{ID: 8, UserID: "u-1"}, nil)
				repo.On("MarkRead", mock.Anything, int64(8), mock.Anything).Return(nil)
			},
			act: func(s *NotificationService) error {
				n, err := s.MarkRead(context.Background(), 8, "u-1")
				if err == nil && !n.IsRead {
					return errors.New("not marked read")
				}
				return err
			},
		},
		{
			name: "Failure - Other user marks read",
			setupMocks: func(repo *mocks.MockNotificationRepository) {
				repo.On("GetByID", mock.Anything, int64(8)).Return(&domain.Notification{ID: 8, UserID: "u-1"}, nil)
			},
			act: func(s *NotificationService) error {
				_, err := s.MarkRead(context.Background(), 8, "u-2")
				return err
			},
			expectedError: true,
		},
		{
			name: "Failure - Other user deletes",
			setupMocks: func(repo *mocks.MockNotificationRepository) {
				repo.On("GetByID", mock.Anything, int64(8)).Return(&domain.Notification{ID: 8, UserID: "u-1"}, nil)
			},
			act: func(s *NotificationService) error {
				return s.Delete(context.Background(), 8, "u-2")
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockNotificationRepository)
			tt.setupMocks(repo)

			svc := NewNotificationService(repo, nil, nil, nil, "", testOptions(date(2024, 1, 1)))
			err := tt.act(svc)

			if tt.expectedError {
				assert.True(t, errors.Is(err, customError.ErrNotFound))
				repo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
				repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}
