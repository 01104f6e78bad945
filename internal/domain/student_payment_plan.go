package domain

import (
	"strings"
	"time"

	customError "github.com/segyhp/school-portal/pkg/errors"

	"github.com/shopspring/decimal"
)

const (
	PlanStatusActive    = "Active"
	PlanStatusCompleted = "Completed"
	PlanStatusCancelled = "Cancelled"
)

// StudentPaymentPlan is a PaymentPlan instantiated for one student.
type StudentPaymentPlan struct {
	ID              int64           `json:"id" db:"id"`
	StudentID       int64           `json:"student_id" db:"student_id"`
	PaymentPlanID   int64           `json:"payment_plan_id" db:"payment_plan_id"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	Status          string          `json:"status" db:"status"` // Active, Completed, Cancelled
	StartDate       time.Time       `json:"start_date" db:"start_date"`
	EndDate         *time.Time      `json:"end_date,omitempty" db:"end_date"`
	Notes           string          `json:"notes" db:"notes"`
	Audit

	Installments []*PaymentInstallment `json:"installments,omitempty" db:"-"`
	PlanName     string                `json:"plan_name,omitempty" db:"-"`
}

// NewStudentPaymentPlan returns an Active plan with nothing paid yet.
func NewStudentPaymentPlan(studentID, paymentPlanID int64, total decimal.Decimal, start time.Time, notes string) *StudentPaymentPlan {
	return &StudentPaymentPlan{
		StudentID:       studentID,
		PaymentPlanID:   paymentPlanID,
		TotalAmount:     total,
		PaidAmount:      decimal.Zero,
		RemainingAmount: total,
		Status:          PlanStatusActive,
		StartDate:       start,
		Notes:           notes,
	}
}

// IsTerminal reports whether the plan can no longer change.
func (p *StudentPaymentPlan) IsTerminal() bool {
	return p.Status == PlanStatusCompleted || p.Status == PlanStatusCancelled
}

// RecordPayment adds amount to the paid total and keeps remaining = total - paid.
func (p *StudentPaymentPlan) RecordPayment(amount decimal.Decimal) error {
	if p.IsTerminal() {
		return customError.WrapTerminalState("Ödeme planı", p.Status)
	}
	p.PaidAmount = p.PaidAmount.Add(amount)
	p.RemainingAmount = p.TotalAmount.Sub(p.PaidAmount)
	return nil
}

// Cancel moves an Active plan to Cancelled and appends reason to the notes.
func (p *StudentPaymentPlan) Cancel(reason string, now time.Time) error {
	if p.IsTerminal() {
		return customError.WrapTerminalState("Ödeme planı", p.Status)
	}
	p.Status = PlanStatusCancelled
	reason = strings.TrimSpace(reason)
	if reason != "" {
		note := "İptal: " + reason
		if p.Notes != "" {
			p.Notes += "\n" + note
		} else {
			p.Notes = note
		}
	}
	p.EndDate = &now
	return nil
}

// Complete moves an Active plan to Completed and stamps the end date.
func (p *StudentPaymentPlan) Complete(now time.Time) error {
	if p.IsTerminal() {
		return customError.WrapTerminalState("Ödeme planı", p.Status)
	}
	p.Status = PlanStatusCompleted
	p.EndDate = &now
	return nil
}

// DTOs for requests and responses

type CreateStudentPaymentPlanRequest struct {
	StudentID              int64            `json:"student_id" validate:"required,gt=0"`
	PaymentPlanID          int64            `json:"payment_plan_id" validate:"required,gt=0"`
	TotalAmount            decimal.Decimal  `json:"total_amount" validate:"required,gt=0"`
	StartDate              time.Time        `json:"start_date" validate:"required"`
	FirstInstallmentAmount *decimal.Decimal `json:"first_installment_amount,omitempty" validate:"omitempty,gt=0"`
	Notes                  string           `json:"notes" validate:"max=2000"`
}

type CancelStudentPaymentPlanRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type StudentPaymentPlanFilter struct {
	StudentID     *int64
	PaymentPlanID *int64
	Status        string
	PageRequest
}
