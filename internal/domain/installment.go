package domain

import (
	"time"

	"github.com/segyhp/school-portal/pkg/utils"

	"github.com/shopspring/decimal"
)

const (
	InstallmentStatusPending       = "Pending"
	InstallmentStatusPartiallyPaid = "PartiallyPaid"
	InstallmentStatusPaid          = "Paid"
	InstallmentStatusOverdue       = "Overdue"
)

// PaymentInstallment is one scheduled partial payment of a StudentPaymentPlan.
type PaymentInstallment struct {
	ID                   int64           `json:"id" db:"id"`
	StudentPaymentPlanID int64           `json:"student_payment_plan_id" db:"student_payment_plan_id"`
	InstallmentNumber    int             `json:"installment_number" db:"installment_number"`
	Amount               decimal.Decimal `json:"amount" db:"amount"`
	PaidAmount           decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	DueDate              time.Time       `json:"due_date" db:"due_date"`
	PaidDate             *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	Status               string          `json:"status" db:"status"` // Pending, PartiallyPaid, Paid, Overdue
	Audit
}

// GenerateInstallments builds the installment rows for a new plan.
//
// Every installment gets total/count rounded to cents. A custom first amount
// replaces only installment #1; the others keep the unadjusted even split, so
// the sum may differ from total in that case.
func GenerateInstallments(planID int64, template *PaymentPlan, total decimal.Decimal, startDate time.Time, firstAmount *decimal.Decimal) []*PaymentInstallment {
	count := template.InstallmentCount
	regular := utils.CalculateInstallmentAmount(total, count)

	installments := make([]*PaymentInstallment, 0, count)
	for n := 1; n <= count; n++ {
		amount := regular
		if n == 1 && firstAmount != nil {
			amount = *firstAmount
		}

		installments = append(installments, &PaymentInstallment{
			StudentPaymentPlanID: planID,
			InstallmentNumber:    n,
			Amount:               amount,
			PaidAmount:           decimal.Zero,
			DueDate:              utils.CalculateDueDate(startDate, n, template.DaysBetweenInstallments),
			Status:               InstallmentStatusPending,
		})
	}

	return installments
}

// ApplyPayment adds amount to the installment, stamps the paid date and
// recomputes the status. It is the single place installment payment
// bookkeeping happens.
func ApplyPayment(installment *PaymentInstallment, amount decimal.Decimal, paidAt time.Time) string {
	installment.PaidAmount = installment.PaidAmount.Add(amount)
	installment.PaidDate = &paidAt

	if installment.PaidAmount.GreaterThanOrEqual(installment.Amount) {
		installment.Status = InstallmentStatusPaid
	} else {
		installment.Status = InstallmentStatusPartiallyPaid
	}
	return installment.Status
}

// IsPaid reports whether the installment is settled.
func (i *PaymentInstallment) IsPaid() bool {
	return i.Status == InstallmentStatusPaid
}

// RemainingAmount is what is still owed on the installment, never negative.
func (i *PaymentInstallment) RemainingAmount() decimal.Decimal {
	remaining := i.Amount.Sub(i.PaidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// MarkOverdueIfDue flips a Pending installment whose due date is before today
// to Overdue. It reports whether the status changed.
func (i *PaymentInstallment) MarkOverdueIfDue(now time.Time) bool {
	if i.Status != InstallmentStatusPending {
		return false
	}
	if !utils.IsDateOverdue(i.DueDate, now) {
		return false
	}
	i.Status = InstallmentStatusOverdue
	return true
}

// AllInstallmentsPaid reports whether every installment in the set is Paid.
func AllInstallmentsPaid(installments []*PaymentInstallment) bool {
	if len(installments) == 0 {
		return false
	}
	for _, inst := range installments {
		if !inst.IsPaid() {
			return false
		}
	}
	return true
}

// DTOs for requests and responses

type PayInstallmentRequest struct {
	Amount          decimal.Decimal `json:"amount" validate:"required,gt=0"`
	PaymentDate     *time.Time      `json:"payment_date,omitempty"`
	Method          string          `json:"method" validate:"required,payment_method"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
	Notes           string          `json:"notes" validate:"max=1000"`
}

type PayInstallmentResponse struct {
	Installment *PaymentInstallment `json:"installment"`
	Payment     *Payment            `json:"payment"`
	Plan        *StudentPaymentPlan `json:"plan"`
}

// OverdueInstallment is an installment joined with the owning student for
// the overdue and reminder listings.
type OverdueInstallment struct {
	PaymentInstallment
	StudentID int64 `json:"student_id" db:"student_id"`
}
