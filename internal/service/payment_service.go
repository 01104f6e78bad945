package service

import (
	"context"
	"fmt"

	"github.com/segyhp/school-portal/internal/cache"
	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/metrics"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/logger"
	"github.com/segyhp/school-portal/pkg/utils"
)

// PaymentService records ledger entries and aggregates them.
type PaymentService struct {
	tx           repository.Transactor
	payments     repository.PaymentRepository
	installments repository.InstallmentRepository
	plans        repository.StudentPaymentPlanRepository
	students     repository.StudentRepository
	cache        cache.Cache
	ledger       ledger
	opts         Options
}

func NewPaymentService(
	tx repository.Transactor,
	payments repository.PaymentRepository,
	installments repository.InstallmentRepository,
	plans repository.StudentPaymentPlanRepository,
	students repository.StudentRepository,
	c cache.Cache,
	opts Options,
) *PaymentService {
	if c == nil {
		c = cache.Noop{}
	}
	return &PaymentService{
		tx:           tx,
		payments:     payments,
		installments: installments,
		plans:        plans,
		students:     students,
		cache:        c,
		ledger:       ledger{installments: installments, plans: plans},
		opts:         opts,
	}
}

// Create records a Pending ledger entry. A linked installment must belong to
// one of the student's plans; nothing is applied to it until ProcessPayment.
func (s *PaymentService) Create(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.Payment, error) {
	if !utils.IsValidAmount(req.Amount) {
		return nil, customError.WrapInvalidPaymentAmount(req.Amount.String())
	}
	if !domain.IsValidPaymentMethod(req.Method) {
		return nil, customError.WrapValidation(fmt.Sprintf("Geçersiz ödeme yöntemi: %s", req.Method))
	}
	if err := mustExist(ctx, s.students.Exists, resStudent, req.StudentID); err != nil {
		return nil, err
	}

	if req.InstallmentID != nil {
		inst, err := s.installments.GetByID(ctx, *req.InstallmentID)
		if err != nil {
			return nil, lookupErr(err, resInstallment, *req.InstallmentID)
		}
		plan, err := s.plans.GetByID(ctx, inst.StudentPaymentPlanID)
		if err != nil {
			return nil, lookupErr(err, resStudentPaymentPlan, inst.StudentPaymentPlanID)
		}
		if plan.StudentID != req.StudentID {
			return nil, customError.WrapValidation("Taksit bu öğrenciye ait değil")
		}
	}

	now := s.opts.now()
	payment := &domain.Payment{
		StudentID:       req.StudentID,
		InstallmentID:   req.InstallmentID,
		Amount:          req.Amount,
		PaymentDate:     now,
		Method:          req.Method,
		Status:          domain.PaymentStatusPending,
		ReferenceNumber: paymentReference(req.ReferenceNumber),
		Description:     req.Description,
		Notes:           req.Notes,
	}
	if req.PaymentDate != nil {
		payment.PaymentDate = *req.PaymentDate
	}
	payment.Touch(now)

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, writeErr(err, resPayment, payment.ReferenceNumber)
	}

	invalidateStatistics(ctx, s.cache, payment.StudentID)
	logger.Info(ctx).Int64("payment_id", payment.ID).Int64("student_id", payment.StudentID).Msg("payment recorded")
	return payment, nil
}

func (s *PaymentService) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resPayment, id)
	}
	return payment, nil
}

func (s *PaymentService) List(ctx context.Context, filter domain.PaymentFilter) (domain.PageResult[*domain.Payment], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	payments, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.Payment]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(payments, total, filter.PageRequest), nil
}

func (s *PaymentService) GetByStudent(ctx context.Context, studentID int64, page domain.PageRequest) (domain.PageResult[*domain.Payment], error) {
	return s.List(ctx, domain.PaymentFilter{StudentID: &studentID, PageRequest: page})
}

// ProcessPayment completes a Pending or Overdue payment and, when it is linked
// to an installment, applies it through the same routine PayInstallment uses.
func (s *PaymentService) ProcessPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	var payment *domain.Payment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.payments.GetByID(ctx, id)
		if err != nil {
			return lookupErr(err, resPayment, id)
		}

		switch payment.Status {
		case domain.PaymentStatusCompleted:
			return customError.WrapAlreadyProcessed(id)
		case domain.PaymentStatusCancelled:
			return customError.WrapTerminalState(resPayment, payment.Status)
		}

		now := s.opts.now()
		if payment.InstallmentID != nil {
			inst, err := s.installments.GetByID(ctx, *payment.InstallmentID)
			if err != nil {
				return lookupErr(err, resInstallment, *payment.InstallmentID)
			}
			if inst.IsPaid() {
				return customError.WrapAlreadyPaid(inst.ID)
			}
			if _, err := s.ledger.settle(ctx, inst, payment.Amount, payment.PaymentDate, now); err != nil {
				return err
			}
		}

		payment.Status = domain.PaymentStatusCompleted
		payment.ProcessedAt = &now
		payment.Touch(now)
		if err := s.payments.Update(ctx, payment); err != nil {
			return lookupErr(err, resPayment, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateStatistics(ctx, s.cache, payment.StudentID)
	metrics.PaymentsRecorded.WithLabelValues(payment.Method).Inc()
	logger.Info(ctx).Int64("payment_id", id).Str("amount", payment.Amount.StringFixed(2)).Msg("payment processed")
	return payment, nil
}

// Cancel voids a payment that has not been processed.
func (s *PaymentService) Cancel(ctx context.Context, id int64, reason string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resPayment, id)
	}
	if payment.Status == domain.PaymentStatusCompleted || payment.Status == domain.PaymentStatusCancelled {
		return nil, customError.WrapTerminalState(resPayment, payment.Status)
	}

	payment.Status = domain.PaymentStatusCancelled
	if reason != "" {
		if payment.Notes != "" {
			payment.Notes += "\n"
		}
		payment.Notes += "İptal: " + reason
	}
	payment.Touch(s.opts.now())
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, lookupErr(err, resPayment, id)
	}

	invalidateStatistics(ctx, s.cache, payment.StudentID)
	logger.Info(ctx).Int64("payment_id", id).Msg("payment cancelled")
	return payment, nil
}

// GetStatistics aggregates the whole ledger, or one student's share of it
// when studentID is set. Results are cached until the next ledger write.
func (s *PaymentService) GetStatistics(ctx context.Context, studentID *int64) (*domain.PaymentStatistics, error) {
	key := cache.KeyPaymentStat
	if studentID != nil {
		key = cache.StudentPaymentStatKey(*studentID)
	}

	var stats domain.PaymentStatistics
	if found, err := s.cache.Get(ctx, key, &stats); err != nil {
		logger.Warn(ctx).Err(err).Str("key", key).Msg("statistics cache read failed")
	} else if found {
		return &stats, nil
	}

	payments, err := s.payments.ListAll(ctx, domain.PaymentFilter{StudentID: studentID})
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	result := domain.BuildPaymentStatistics(payments, s.opts.now())
	if err := s.cache.Set(ctx, key, result); err != nil {
		logger.Warn(ctx).Err(err).Str("key", key).Msg("statistics cache write failed")
	}
	return result, nil
}
