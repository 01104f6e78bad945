package domain

import (
	"github.com/shopspring/decimal"
)

// PaymentPlan is a reusable installment template.
type PaymentPlan struct {
	ID                      int64           `json:"id" db:"id"`
	Name                    string          `json:"name" db:"name"`
	Description             string          `json:"description" db:"description"`
	InstallmentCount        int             `json:"installment_count" db:"installment_count"`
	DaysBetweenInstallments int             `json:"days_between_installments" db:"days_between_installments"`
	DownPaymentDiscount     decimal.Decimal `json:"down_payment_discount" db:"down_payment_discount"`
	IsActive                bool            `json:"is_active" db:"is_active"`
	Audit
}

// DTOs for requests and responses

type PaymentPlanRequest struct {
	Name                    string          `json:"name" validate:"required,max=200"`
	Description             string          `json:"description" validate:"max=1000"`
	InstallmentCount        int             `json:"installment_count" validate:"required,gte=1,lte=120"`
	DaysBetweenInstallments int             `json:"days_between_installments" validate:"gte=0"`
	DownPaymentDiscount     decimal.Decimal `json:"down_payment_discount" validate:"gte=0"`
	IsActive                *bool           `json:"is_active"`
}

// Apply copies the request onto plan.
func (r *PaymentPlanRequest) Apply(plan *PaymentPlan) {
	plan.Name = r.Name
	plan.Description = r.Description
	plan.InstallmentCount = r.InstallmentCount
	plan.DaysBetweenInstallments = r.DaysBetweenInstallments
	plan.DownPaymentDiscount = r.DownPaymentDiscount
	if r.IsActive != nil {
		plan.IsActive = *r.IsActive
	}
}

type PaymentPlanFilter struct {
	Search     string
	ActiveOnly bool
	PageRequest
}
