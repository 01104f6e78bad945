package domain

import (
	"time"

	"github.com/segyhp/school-portal/pkg/utils"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending   = "Pending"
	PaymentStatusCompleted = "Completed"
	PaymentStatusOverdue   = "Overdue"
	PaymentStatusCancelled = "Cancelled"
)

const (
	PaymentMethodCash         = "Cash"
	PaymentMethodCreditCard   = "CreditCard"
	PaymentMethodBankTransfer = "BankTransfer"
	PaymentMethodCheck        = "Check"
	PaymentMethodOnline       = "Online"
)

var paymentMethods = map[string]bool{
	PaymentMethodCash:         true,
	PaymentMethodCreditCard:   true,
	PaymentMethodBankTransfer: true,
	PaymentMethodCheck:        true,
	PaymentMethodOnline:       true,
}

// IsValidPaymentMethod reports whether method is one of the accepted methods.
func IsValidPaymentMethod(method string) bool {
	return paymentMethods[method]
}

// Payment is a ledger entry, optionally linked to one installment.
type Payment struct {
	ID              int64           `json:"id" db:"id"`
	StudentID       int64           `json:"student_id" db:"student_id"`
	InstallmentID   *int64          `json:"installment_id,omitempty" db:"installment_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate     time.Time       `json:"payment_date" db:"payment_date"`
	Method          string          `json:"method" db:"method"`
	Status          string          `json:"status" db:"status"` // Pending, Completed, Overdue, Cancelled
	ReferenceNumber string          `json:"reference_number" db:"reference_number"`
	Description     string          `json:"description" db:"description"`
	Notes           string          `json:"notes" db:"notes"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
	Audit
}

// DTOs for requests and responses

type CreatePaymentRequest struct {
	StudentID       int64           `json:"student_id" validate:"required,gt=0"`
	InstallmentID   *int64          `json:"installment_id,omitempty" validate:"omitempty,gt=0"`
	Amount          decimal.Decimal `json:"amount" validate:"required,gt=0"`
	PaymentDate     *time.Time      `json:"payment_date,omitempty"`
	Method          string          `json:"method" validate:"required,payment_method"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
	Description     string          `json:"description" validate:"max=500"`
	Notes           string          `json:"notes" validate:"max=1000"`
}

type PaymentFilter struct {
	StudentID     *int64
	InstallmentID *int64
	Status        string
	Method        string
	From          *time.Time
	To            *time.Time
	PageRequest
}

// StatBucket is a count and amount pair.
type StatBucket struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

func (b *StatBucket) add(amount decimal.Decimal) {
	b.Count++
	b.Amount = b.Amount.Add(amount)
}

// PaymentStatistics aggregates the ledger by status, method and recent windows.
// The windows only count Completed payments and are bucketed by payment date.
type PaymentStatistics struct {
	Total     StatBucket            `json:"total"`
	ByStatus  map[string]StatBucket `json:"by_status"`
	ByMethod  map[string]StatBucket `json:"by_method"`
	Today     StatBucket            `json:"today"`
	ThisWeek  StatBucket            `json:"this_week"`
	ThisMonth StatBucket            `json:"this_month"`
}

// BuildPaymentStatistics aggregates payments relative to now.
func BuildPaymentStatistics(payments []*Payment, now time.Time) *PaymentStatistics {
	stats := &PaymentStatistics{
		ByStatus: make(map[string]StatBucket),
		ByMethod: make(map[string]StatBucket),
	}

	today := utils.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	weekStart := utils.StartOfWeek(now)
	monthStart := utils.StartOfMonth(now)

	for _, p := range payments {
		stats.Total.add(p.Amount)

		byStatus := stats.ByStatus[p.Status]
		byStatus.add(p.Amount)
		stats.ByStatus[p.Status] = byStatus

		byMethod := stats.ByMethod[p.Method]
		byMethod.add(p.Amount)
		stats.ByMethod[p.Method] = byMethod

		if p.Status != PaymentStatusCompleted {
			continue
		}
		date := p.PaymentDate.In(now.Location())
		if date.Before(tomorrow) {
			if !date.Before(today) {
				stats.Today.add(p.Amount)
			}
			if !date.Before(weekStart) {
				stats.ThisWeek.add(p.Amount)
			}
			if !date.Before(monthStart) {
				stats.ThisMonth.add(p.Amount)
			}
		}
	}

	return stats
}
