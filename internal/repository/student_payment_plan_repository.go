package repository

import (
	"context"

	"github.com/segyhp/school-portal/internal/domain"

	"github.com/jmoiron/sqlx"
)

var studentPaymentPlans = table{
	name: "student_payment_plans",
	columns: []string{
		"student_id", "payment_plan_id", "total_amount", "paid_amount", "remaining_amount",
		"status", "start_date", "end_date", "notes", "created_at", "updated_at", "is_deleted",
	},
	softDelete: true,
}

type studentPaymentPlanRepository struct {
	crud[domain.StudentPaymentPlan]
}

func NewStudentPaymentPlanRepository(db *sqlx.DB) StudentPaymentPlanRepository {
	return &studentPaymentPlanRepository{crud[domain.StudentPaymentPlan]{base{db}, studentPaymentPlans}}
}

func (r *studentPaymentPlanRepository) Create(ctx context.Context, plan *domain.StudentPaymentPlan) error {
	id, err := r.insert(ctx, plan)
	if err != nil {
		return err
	}
	plan.ID = id
	return nil
}

func (r *studentPaymentPlanRepository) GetByID(ctx context.Context, id int64) (*domain.StudentPaymentPlan, error) {
	return r.get(ctx, id)
}

func (r *studentPaymentPlanRepository) Update(ctx context.Context, plan *domain.StudentPaymentPlan) error {
	return r.update(ctx, plan)
}

func (r *studentPaymentPlanRepository) List(ctx context.Context, filter domain.StudentPaymentPlanFilter) ([]*domain.StudentPaymentPlan, int, error) {
	q := newListQuery("start_date DESC, id DESC").
		whereIf(filter.StudentID != nil, "student_id = ?", deref(filter.StudentID)).
		whereIf(filter.PaymentPlanID != nil, "payment_plan_id = ?", deref(filter.PaymentPlanID)).
		whereIf(filter.Status != "", "status = ?", filter.Status)
	return r.list(ctx, q, filter.PageRequest)
}

// deref returns the pointed-to value or zero; callers guard with whereIf.
func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
