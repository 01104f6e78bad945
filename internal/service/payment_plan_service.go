package service

import (
	"context"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/logger"
)

// PaymentPlanService manages reusable installment templates.
type PaymentPlanService struct {
	plans repository.PaymentPlanRepository
	opts  Options
}

func NewPaymentPlanService(plans repository.PaymentPlanRepository, opts Options) *PaymentPlanService {
	return &PaymentPlanService{plans: plans, opts: opts}
}

// Create stores a new template. Templates start active unless the request says otherwise.
func (s *PaymentPlanService) Create(ctx context.Context, req *domain.PaymentPlanRequest) (*domain.PaymentPlan, error) {
	plan := &domain.PaymentPlan{IsActive: true}
	req.Apply(plan)
	plan.Touch(s.opts.now())

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, writeErr(err, resPaymentPlan, plan.Name)
	}

	logger.Info(ctx).Int64("payment_plan_id", plan.ID).Str("name", plan.Name).Msg("payment plan created")
	return plan, nil
}

func (s *PaymentPlanService) GetByID(ctx context.Context, id int64) (*domain.PaymentPlan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resPaymentPlan, id)
	}
	return plan, nil
}

// Update rewrites the template. Student plans already created from it keep
// their installments.
func (s *PaymentPlanService) Update(ctx context.Context, id int64, req *domain.PaymentPlanRequest) (*domain.PaymentPlan, error) {
	plan, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(plan)
	plan.Touch(s.opts.now())
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, writeErr(err, resPaymentPlan, plan.Name)
	}
	return plan, nil
}

// Delete soft deletes the template even when student plans still use it.
func (s *PaymentPlanService) Delete(ctx context.Context, id int64) error {
	inUse, err := s.plans.CountStudentPlans(ctx, id)
	if err != nil {
		return lookupErr(err, resPaymentPlan, id)
	}

	if err := s.plans.Delete(ctx, id); err != nil {
		return lookupErr(err, resPaymentPlan, id)
	}

	if inUse > 0 {
		logger.Warn(ctx).Int64("payment_plan_id", id).Int("student_plans", inUse).
			Msg("payment plan deleted while student plans reference it")
	}
	return nil
}

func (s *PaymentPlanService) List(ctx context.Context, filter domain.PaymentPlanFilter) (domain.PageResult[*domain.PaymentPlan], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	plans, total, err := s.plans.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.PaymentPlan]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(plans, total, filter.PageRequest), nil
}

func (s *PaymentPlanService) Activate(ctx context.Context, id int64) (*domain.PaymentPlan, error) {
	return s.setActive(ctx, id, true)
}

func (s *PaymentPlanService) Deactivate(ctx context.Context, id int64) (*domain.PaymentPlan, error) {
	return s.setActive(ctx, id, false)
}

func (s *PaymentPlanService) setActive(ctx context.Context, id int64, active bool) (*domain.PaymentPlan, error) {
	plan, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.IsActive == active {
		return plan, nil
	}

	plan.IsActive = active
	plan.Touch(s.opts.now())
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, lookupErr(err, resPaymentPlan, id)
	}
	return plan, nil
}
