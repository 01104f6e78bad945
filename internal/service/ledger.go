package service

import (
	"context"
	"strings"
	"time"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/metrics"
	"github.com/segyhp/school-portal/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledger is the one write path for installment payments. PayInstallment and
// ProcessPayment both go through settle.
type ledger struct {
	installments repository.InstallmentRepository
	plans        repository.StudentPaymentPlanRepository
}

// settle applies amount to inst and to the owning plan, completing the plan
// once every installment is Paid. Callers run it inside a transaction.
func (l ledger) settle(ctx context.Context, inst *domain.PaymentInstallment, amount decimal.Decimal, paidAt, now time.Time) (*domain.StudentPaymentPlan, error) {
	plan, err := l.plans.GetByID(ctx, inst.StudentPaymentPlanID)
	if err != nil {
		return nil, lookupErr(err, resStudentPaymentPlan, inst.StudentPaymentPlanID)
	}
	if err := plan.RecordPayment(amount); err != nil {
		return nil, err
	}

	domain.ApplyPayment(inst, amount, paidAt)
	inst.Touch(now)
	if err := l.installments.Update(ctx, inst); err != nil {
		return nil, lookupErr(err, resInstallment, inst.ID)
	}

	siblings, err := l.installments.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, lookupErr(err, resStudentPaymentPlan, plan.ID)
	}
	for i, other := range siblings {
		if other.ID == inst.ID {
			siblings[i] = inst
		}
	}

	if domain.AllInstallmentsPaid(siblings) {
		if err := plan.Complete(now); err != nil {
			return nil, err
		}
		metrics.PlansCompleted.Inc()
	}

	plan.Touch(now)
	if err := l.plans.Update(ctx, plan); err != nil {
		return nil, lookupErr(err, resStudentPaymentPlan, plan.ID)
	}
	return plan, nil
}

// paymentReference keeps a caller supplied reference or generates one.
func paymentReference(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref != "" {
		return ref
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "PAY-" + strings.ToUpper(id[:12])
}
