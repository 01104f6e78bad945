package repository

import (
	"context"

	"github.com/segyhp/school-portal/internal/domain"

	"github.com/jmoiron/sqlx"
)

var payments = table{
	name: "payments",
	columns: []string{
		"student_id", "installment_id", "amount", "payment_date", "method", "status",
		"reference_number", "description", "notes", "processed_at", "created_at", "updated_at", "is_deleted",
	},
	softDelete: true,
}

type paymentRepository struct {
	crud[domain.Payment]
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{crud[domain.Payment]{base{db}, payments}}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	id, err := r.insert(ctx, payment)
	if err != nil {
		return err
	}
	payment.ID = id
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.get(ctx, id)
}

func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	return r.update(ctx, payment)
}

func (r *paymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, int, error) {
	return r.list(ctx, paymentQuery(filter), filter.PageRequest)
}

func (r *paymentRepository) ListAll(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	return r.all(ctx, paymentQuery(filter))
}

func paymentQuery(filter domain.PaymentFilter) *listQuery {
	return newListQuery("payment_date DESC, id DESC").
		whereIf(filter.StudentID != nil, "student_id = ?", deref(filter.StudentID)).
		whereIf(filter.InstallmentID != nil, "installment_id = ?", deref(filter.InstallmentID)).
		whereIf(filter.Status != "", "status = ?", filter.Status).
		whereIf(filter.Method != "", "method = ?", filter.Method).
		whereIf(filter.From != nil, "payment_date >= ?", deref(filter.From)).
		whereIf(filter.To != nil, "payment_date < ?", deref(filter.To))
}
