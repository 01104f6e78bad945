package service

import (
	"context"
	"fmt"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/metrics"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/logger"
	"github.com/segyhp/school-portal/pkg/utils"
)

// NotificationService manages per-user notifications and the payment reminder run.
type NotificationService struct {
	notifications repository.NotificationRepository
	installments  repository.InstallmentRepository
	parents       repository.ParentRepository
	students      repository.StudentRepository
	currency      string
	opts          Options
}

func NewNotificationService(
	notifications repository.NotificationRepository,
	installments repository.InstallmentRepository,
	parents repository.ParentRepository,
	students repository.StudentRepository,
	currency string,
	opts Options,
) *NotificationService {
	if currency == "" {
		currency = "TRY"
	}
	return &NotificationService{
		notifications: notifications,
		installments:  installments,
		parents:       parents,
		students:      students,
		currency:      currency,
		opts:          opts,
	}
}

func (s *NotificationService) Create(ctx context.Context, req *domain.NotificationRequest) (*domain.Notification, error) {
	kind := req.NotificationType
	if kind == "" {
		kind = domain.NotificationTypeInfo
	}

	n := &domain.Notification{
		UserID:            req.UserID,
		Title:             req.Title,
		Message:           req.Message,
		NotificationType:  kind,
		RelatedEntityType: req.RelatedEntityType,
		RelatedEntityID:   req.RelatedEntityID,
	}
	n.Touch(s.opts.now())

	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return n, nil
}

func (s *NotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, page domain.PageRequest) (domain.PageResult[*domain.Notification], error) {
	page = s.opts.page(page)

	items, total, err := s.notifications.List(ctx, domain.NotificationFilter{UserID: userID, UnreadOnly: unreadOnly, PageRequest: page})
	if err != nil {
		return domain.PageResult[*domain.Notification]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(items, total, page), nil
}

// MarkRead marks one of userID's notifications read. Other users'
// notifications report NotFound.
func (s *NotificationService) MarkRead(ctx context.Context, id int64, userID string) (*domain.Notification, error) {
	n, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}

	now := s.opts.now()
	if err := s.notifications.MarkRead(ctx, id, now); err != nil {
		return nil, lookupErr(err, resNotification, id)
	}
	n.IsRead = true
	n.ReadAt = &now
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID, s.opts.now())
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}
	return n, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, id int64, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.notifications.Delete(ctx, id); err != nil {
		return lookupErr(err, resNotification, id)
	}
	return nil
}

func (s *NotificationService) owned(ctx context.Context, id int64, userID string) (*domain.Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resNotification, id)
	}
	if n.UserID != userID {
		return nil, customError.WrapNotFound(resNotification, id)
	}
	return n, nil
}

// SendPaymentReminders notifies the student and their parents about unpaid
// installments due within days days and about overdue ones. Each recipient
// gets at most one reminder per installment and type per day. It returns
// the number of notifications created.
func (s *NotificationService) SendPaymentReminders(ctx context.Context, days int) (int, error) {
	now := s.opts.now()
	today := utils.StartOfDay(now)

	upcoming, err := s.installments.ListDueBetween(ctx, today, today.AddDate(0, 0, days+1))
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}
	overdue, err := s.installments.ListByStatus(ctx, domain.InstallmentStatusOverdue)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	sent := 0
	recipients := make(map[int64][]string)
	remind := func(inst *domain.OverdueInstallment, kind string) error {
		users, ok := recipients[inst.StudentID]
		if !ok {
			var err error
			if users, err = s.recipients(ctx, inst.StudentID); err != nil {
				return err
			}
			recipients[inst.StudentID] = users
		}

		title, message := s.reminderText(inst, kind)
		for _, userID := range users {
			exists, err := s.notifications.ExistsSince(ctx, userID, kind, inst.ID, today)
			if err != nil {
				return customError.WrapDatabaseError(err)
			}
			if exists {
				continue
			}

			id := inst.ID
			n := &domain.Notification{
				UserID:            userID,
				Title:             title,
				Message:           message,
				NotificationType:  kind,
				RelatedEntityType: "PaymentInstallment",
				RelatedEntityID:   &id,
			}
			n.Touch(now)
			if err := s.notifications.Create(ctx, n); err != nil {
				return customError.WrapDatabaseError(err)
			}
			metrics.RemindersSent.WithLabelValues(kind).Inc()
			sent++
		}
		return nil
	}

	for _, inst := range upcoming {
		if inst.Status == domain.InstallmentStatusOverdue {
			continue
		}
		if err := remind(inst, domain.NotificationTypePaymentDue); err != nil {
			return sent, err
		}
	}
	for _, inst := range overdue {
		if err := remind(inst, domain.NotificationTypePaymentOverdue); err != nil {
			return sent, err
		}
	}

	logger.Info(ctx).Int("upcoming", len(upcoming)).Int("overdue", len(overdue)).Int("sent", sent).Msg("payment reminders sent")
	return sent, nil
}

// recipients returns the identity users that hear about a student's payments.
func (s *NotificationService) recipients(ctx context.Context, studentID int64) ([]string, error) {
	users, err := s.parents.ListUserIDsByStudent(ctx, studentID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, lookupErr(err, resStudent, studentID)
	}
	if student.UserID != "" {
		users = append(users, student.UserID)
	}
	return users, nil
}

func (s *NotificationService) reminderText(inst *domain.OverdueInstallment, kind string) (string, string) {
	amount := fmt.Sprintf("%s %s", inst.RemainingAmount().StringFixed(2), s.currency)
	due := inst.DueDate.Format("02.01.2006")

	if kind == domain.NotificationTypePaymentOverdue {
		return "Gecikmiş taksit",
			fmt.Sprintf("%d numaralı taksidin %s vadesi geçti. Kalan tutar: %s", inst.InstallmentNumber, due, amount)
	}
	return "Yaklaşan taksit",
		fmt.Sprintf("%d numaralı taksidin vadesi %s. Ödenecek tutar: %s", inst.InstallmentNumber, due, amount)
}
