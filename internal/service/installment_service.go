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

// PaymentInstallmentService pays installments and runs the overdue sweep.
type PaymentInstallmentService struct {
	tx           repository.Transactor
	installments repository.InstallmentRepository
	plans        repository.StudentPaymentPlanRepository
	payments     repository.PaymentRepository
	cache        cache.Cache
	ledger       ledger
	opts         Options
}

func NewPaymentInstallmentService(
	tx repository.Transactor,
	installments repository.InstallmentRepository,
	plans repository.StudentPaymentPlanRepository,
	payments repository.PaymentRepository,
	c cache.Cache,
	opts Options,
) *PaymentInstallmentService {
	if c == nil {
		c = cache.Noop{}
	}
	return &PaymentInstallmentService{
		tx:           tx,
		installments: installments,
		plans:        plans,
		payments:     payments,
		cache:        c,
		ledger:       ledger{installments: installments, plans: plans},
		opts:         opts,
	}
}

// PayInstallment records a Completed ledger payment for the installment and
// applies it to the installment and its plan atomically.
func (s *PaymentInstallmentService) PayInstallment(ctx context.Context, id int64, req *domain.PayInstallmentRequest) (*domain.PayInstallmentResponse, error) {
	if !utils.IsValidAmount(req.Amount) {
		return nil, customError.WrapInvalidPaymentAmount(req.Amount.String())
	}
	if !domain.IsValidPaymentMethod(req.Method) {
		return nil, customError.WrapValidation(fmt.Sprintf("Geçersiz ödeme yöntemi: %s", req.Method))
	}

	now := s.opts.now()
	paidAt := now
	if req.PaymentDate != nil {
		paidAt = *req.PaymentDate
	}

	resp := &domain.PayInstallmentResponse{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inst, err := s.installments.GetByID(ctx, id)
		if err != nil {
			return lookupErr(err, resInstallment, id)
		}
		if inst.IsPaid() {
			return customError.WrapAlreadyPaid(id)
		}

		plan, err := s.ledger.settle(ctx, inst, req.Amount, paidAt, now)
		if err != nil {
			return err
		}

		payment := &domain.Payment{
			StudentID:       plan.StudentID,
			InstallmentID:   &inst.ID,
			Amount:          req.Amount,
			PaymentDate:     paidAt,
			Method:          req.Method,
			Status:          domain.PaymentStatusCompleted,
			ReferenceNumber: paymentReference(req.ReferenceNumber),
			Description:     fmt.Sprintf("Taksit #%d ödemesi", inst.InstallmentNumber),
			Notes:           req.Notes,
			ProcessedAt:     &now,
		}
		payment.Touch(now)
		if err := s.payments.Create(ctx, payment); err != nil {
			return writeErr(err, resPayment, payment.ReferenceNumber)
		}

		resp.Installment, resp.Payment, resp.Plan = inst, payment, plan
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateStatistics(ctx, s.cache, resp.Plan.StudentID)
	metrics.PaymentsRecorded.WithLabelValues(req.Method).Inc()
	logger.Info(ctx).
		Int64("installment_id", id).
		Int64("payment_id", resp.Payment.ID).
		Str("amount", req.Amount.StringFixed(2)).
		Str("installment_status", resp.Installment.Status).
		Str("plan_status", resp.Plan.Status).
		Msg("installment paid")
	return resp, nil
}

func (s *PaymentInstallmentService) GetByID(ctx context.Context, id int64) (*domain.PaymentInstallment, error) {
	inst, err := s.installments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resInstallment, id)
	}
	return inst, nil
}

func (s *PaymentInstallmentService) ListByPlan(ctx context.Context, planID int64) ([]*domain.PaymentInstallment, error) {
	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		return nil, lookupErr(err, resStudentPaymentPlan, planID)
	}

	installments, err := s.installments.ListByPlan(ctx, planID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return installments, nil
}

// GetOverdue flips every Pending installment due before today to Overdue and
// then returns all Overdue installments. Reading the list causes the flip.
func (s *PaymentInstallmentService) GetOverdue(ctx context.Context) ([]*domain.OverdueInstallment, error) {
	var overdue []*domain.OverdueInstallment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.markOverdue(ctx); err != nil {
			return err
		}

		var err error
		overdue, err = s.installments.ListByStatus(ctx, domain.InstallmentStatusOverdue)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return overdue, nil
}

// SweepOverdue runs the overdue flip without listing and reports how many
// installments changed.
func (s *PaymentInstallmentService) SweepOverdue(ctx context.Context) (int, error) {
	var flipped int
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		flipped, err = s.markOverdue(ctx)
		return err
	})
	return flipped, err
}

func (s *PaymentInstallmentService) markOverdue(ctx context.Context) (int, error) {
	now := s.opts.now()

	pending, err := s.installments.ListPendingDueBefore(ctx, utils.StartOfDay(now))
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	ids := make([]int64, 0, len(pending))
	for _, inst := range pending {
		if inst.MarkOverdueIfDue(now) {
			ids = append(ids, inst.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := s.installments.UpdateStatus(ctx, ids, domain.InstallmentStatusOverdue); err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	metrics.InstallmentsMarkedOverdue.Add(float64(len(ids)))
	logger.Info(ctx).Int("count", len(ids)).Msg("installments marked overdue")
	return len(ids), nil
}

// GetUpcoming lists unpaid installments due from today through the next days days.
func (s *PaymentInstallmentService) GetUpcoming(ctx context.Context, days int) ([]*domain.OverdueInstallment, error) {
	if days < 0 {
		return nil, customError.WrapValidation("Gün sayısı negatif olamaz")
	}

	from := utils.StartOfDay(s.opts.now())
	to := from.AddDate(0, 0, days+1)

	installments, err := s.installments.ListDueBetween(ctx, from, to)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return installments, nil
}

// invalidateStatistics drops the cached ledger statistics a new payment changes.
func invalidateStatistics(ctx context.Context, c cache.Cache, studentID int64) {
	if err := c.Delete(ctx, cache.KeyPaymentStat, cache.StudentPaymentStatKey(studentID)); err != nil {
		logger.Warn(ctx).Err(err).Int64("student_id", studentID).Msg("statistics cache invalidation failed")
	}
}
