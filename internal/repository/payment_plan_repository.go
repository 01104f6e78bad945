package repository

import (
	"context"

	"github.com/segyhp/school-portal/internal/domain"

	"github.com/jmoiron/sqlx"
)

var paymentPlans = table{
	name: "payment_plans",
	columns: []string{
		"name", "description", "installment_count", "days_between_installments",
		"down_payment_discount", "is_active", "created_at", "updated_at", "is_deleted",
	},
	softDelete: true,
}

type paymentPlanRepository struct {
	crud[domain.PaymentPlan]
}

func NewPaymentPlanRepository(db *sqlx.DB) PaymentPlanRepository {
	return &paymentPlanRepository{crud[domain.PaymentPlan]{base{db}, paymentPlans}}
}

func (r *paymentPlanRepository) Create(ctx context.Context, plan *domain.PaymentPlan) error {
	id, err := r.insert(ctx, plan)
	if err != nil {
		return err
	}
	plan.ID = id
	return nil
}

func (r *paymentPlanRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentPlan, error) {
	return r.get(ctx, id)
}

func (r *paymentPlanRepository) Update(ctx context.Context, plan *domain.PaymentPlan) error {
	return r.update(ctx, plan)
}

func (r *paymentPlanRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

func (r *paymentPlanRepository) List(ctx context.Context, filter domain.PaymentPlanFilter) ([]*domain.PaymentPlan, int, error) {
	q := newListQuery("name, id").
		whereIf(filter.ActiveOnly, "is_active = TRUE").
		search(filter.Search, "name", "description")
	return r.list(ctx, q, filter.PageRequest)
}

func (r *paymentPlanRepository) CountStudentPlans(ctx context.Context, planID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM student_payment_plans
		WHERE payment_plan_id = $1 AND is_deleted = FALSE
	`

	var count int
	err := r.conn(ctx).GetContext(ctx, &count, query, planID)
	return count, err
}
