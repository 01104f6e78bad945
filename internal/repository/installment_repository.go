package repository

import (
	"context"
	"strings"
	"time"

	"github.com/segyhp/school-portal/internal/domain"

	"github.com/jmoiron/sqlx"
)

var installments = table{
	name: "payment_installments",
	columns: []string{
		"student_payment_plan_id", "installment_number", "amount", "paid_amount", "due_date",
		"paid_date", "status", "created_at", "updated_at", "is_deleted",
	},
	softDelete: true,
}

// overdueSelect lists installments of live plans with the owning student.
var overdueSelect = `
	SELECT i.` + strings.Join(append([]string{"id"}, installments.columns...), ", i.") + `, p.student_id
	FROM payment_installments i
	JOIN student_payment_plans p ON p.id = i.student_payment_plan_id
	WHERE i.is_deleted = FALSE AND p.is_deleted = FALSE
`

type installmentRepository struct {
	crud[domain.PaymentInstallment]
}

func NewInstallmentRepository(db *sqlx.DB) InstallmentRepository {
	return &installmentRepository{crud[domain.PaymentInstallment]{base{db}, installments}}
}

func (r *installmentRepository) CreateBatch(ctx context.Context, items []*domain.PaymentInstallment) error {
	for _, item := range items {
		id, err := r.insert(ctx, item)
		if err != nil {
			return err
		}
		item.ID = id
	}
	return nil
}

func (r *installmentRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentInstallment, error) {
	return r.get(ctx, id)
}

func (r *installmentRepository) Update(ctx context.Context, installment *domain.PaymentInstallment) error {
	return r.update(ctx, installment)
}

func (r *installmentRepository) ListByPlan(ctx context.Context, planID int64) ([]*domain.PaymentInstallment, error) {
	q := newListQuery("installment_number").where("student_payment_plan_id = ?", planID)
	return r.all(ctx, q)
}

func (r *installmentRepository) ListPendingDueBefore(ctx context.Context, day time.Time) ([]*domain.OverdueInstallment, error) {
	query := overdueSelect + ` AND i.status = $1 AND i.due_date < $2 ORDER BY i.due_date, i.id`
	return r.selectOverdue(ctx, query, domain.InstallmentStatusPending, day)
}

func (r *installmentRepository) UpdateStatus(ctx context.Context, ids []int64, status string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`
		UPDATE payment_installments
		SET status = ?, updated_at = NOW()
		WHERE is_deleted = FALSE AND id IN (?)
	`, status, ids)
	if err != nil {
		return err
	}

	_, err = r.conn(ctx).ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	return err
}

func (r *installmentRepository) ListByStatus(ctx context.Context, status string) ([]*domain.OverdueInstallment, error) {
	query := overdueSelect + ` AND i.status = $1 ORDER BY i.due_date, i.id`
	return r.selectOverdue(ctx, query, status)
}

func (r *installmentRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.OverdueInstallment, error) {
	query := overdueSelect + ` AND p.status = 'Active' AND i.status IN ('Pending', 'PartiallyPaid') AND i.due_date >= $1 AND i.due_date < $2 ORDER BY i.due_date, i.id`
	return r.selectOverdue(ctx, query, from, to)
}

func (r *installmentRepository) selectOverdue(ctx context.Context, query string, args ...interface{}) ([]*domain.OverdueInstallment, error) {
	items := []*domain.OverdueInstallment{}
	if err := r.conn(ctx).SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}
