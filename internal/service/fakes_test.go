package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"github.com/segyhp/school-portal/internal/domain"
)

// In-memory stores for the payment flows, where the tests need state to
// carry across calls.

type memPlans struct {
	rows   map[int64]*domain.StudentPaymentPlan
	nextID int64
}

func newMemPlans() *memPlans {
	return &memPlans{rows: map[int64]*domain.StudentPaymentPlan{}}
}

func (m *memPlans) Create(_ context.Context, plan *domain.StudentPaymentPlan) error {
	m.nextID++
	plan.ID = m.nextID
	cp := *plan
	m.rows[plan.ID] = &cp
	return nil
}

func (m *memPlans) GetByID(_ context.Context, id int64) (*domain.StudentPaymentPlan, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (m *memPlans) Update(_ context.Context, plan *domain.StudentPaymentPlan) error {
	if _, ok := m.rows[plan.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *plan
	cp.Installments = nil
	m.rows[plan.ID] = &cp
	return nil
}

func (m *memPlans) List(_ context.Context, filter domain.StudentPaymentPlanFilter) ([]*domain.StudentPaymentPlan, int, error) {
	var out []*domain.StudentPaymentPlan
	for _, row := range m.rows {
		if filter.StudentID != nil && row.StudentID != *filter.StudentID {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, len(out), nil
}

type memInstallments struct {
	rows   map[int64]*domain.PaymentInstallment
	plans  *memPlans
	nextID int64

	statusUpdates [][]int64
}

func newMemInstallments(plans *memPlans) *memInstallments {
	return &memInstallments{rows: map[int64]*domain.PaymentInstallment{}, plans: plans}
}

func (m *memInstallments) CreateBatch(_ context.Context, installments []*domain.PaymentInstallment) error {
	for _, inst := range installments {
		m.nextID++
		inst.ID = m.nextID
		cp := *inst
		m.rows[inst.ID] = &cp
	}
	return nil
}

func (m *memInstallments) GetByID(_ context.Context, id int64) (*domain.PaymentInstallment, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (m *memInstallments) Update(_ context.Context, inst *domain.PaymentInstallment) error {
	if _, ok := m.rows[inst.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *inst
	m.rows[inst.ID] = &cp
	return nil
}

func (m *memInstallments) ListByPlan(_ context.Context, planID int64) ([]*domain.PaymentInstallment, error) {
	out := []*domain.PaymentInstallment{}
	for _, row := range m.sorted() {
		if row.StudentPaymentPlanID == planID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memInstallments) ListPendingDueBefore(_ context.Context, day time.Time) ([]*domain.OverdueInstallment, error) {
	return m.join(func(row *domain.PaymentInstallment) bool {
		return row.Status == domain.InstallmentStatusPending && row.DueDate.Before(day)
	}), nil
}

func (m *memInstallments) UpdateStatus(_ context.Context, ids []int64, status string) error {
	m.statusUpdates = append(m.statusUpdates, ids)
	for _, id := range ids {
		m.rows[id].Status = status
	}
	return nil
}

func (m *memInstallments) ListByStatus(_ context.Context, status string) ([]*domain.OverdueInstallment, error) {
	return m.join(func(row *domain.PaymentInstallment) bool { return row.Status == status }), nil
}

func (m *memInstallments) ListDueBetween(_ context.Context, from, to time.Time) ([]*domain.OverdueInstallment, error) {
	return m.join(func(row *domain.PaymentInstallment) bool {
		return !row.IsPaid() && !row.DueDate.Before(from) && row.DueDate.Before(to)
	}), nil
}

func (m *memInstallments) sorted() []*domain.PaymentInstallment {
	out := make([]*domain.PaymentInstallment, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memInstallments) join(keep func(*domain.PaymentInstallment) bool) []*domain.OverdueInstallment {
	out := []*domain.OverdueInstallment{}
	for _, row := range m.sorted() {
		plan, ok := m.plans.rows[row.StudentPaymentPlanID]
		if !ok || plan.Status != domain.PlanStatusActive || !keep(row) {
			continue
		}
		out = append(out, &domain.OverdueInstallment{PaymentInstallment: *row, StudentID: plan.StudentID})
	}
	return out
}

type memPayments struct {
	rows   map[int64]*domain.Payment
	nextID int64
}

func newMemPayments() *memPayments {
	return &memPayments{rows: map[int64]*domain.Payment{}}
}

func (m *memPayments) Create(_ context.Context, p *domain.Payment) error {
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memPayments) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (m *memPayments) Update(_ context.Context, p *domain.Payment) error {
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memPayments) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, int, error) {
	all, _ := m.ListAll(ctx, filter)
	return all, len(all), nil
}

func (m *memPayments) ListAll(_ context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	out := []*domain.Payment{}
	for _, row := range m.rows {
		if filter.StudentID != nil && row.StudentID != *filter.StudentID {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

// memCache is a map-backed cache.Cache that round-trips values through JSON
// like the redis implementation does.
type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}
