package service

import (
	"context"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/logger"
	"github.com/segyhp/school-portal/pkg/utils"
)

// StudentPaymentPlanService instantiates templates for students and drives
// the plan lifecycle.
type StudentPaymentPlanService struct {
	tx           repository.Transactor
	templates    repository.PaymentPlanRepository
	plans        repository.StudentPaymentPlanRepository
	installments repository.InstallmentRepository
	students     repository.StudentRepository
	opts         Options
}

func NewStudentPaymentPlanService(
	tx repository.Transactor,
	templates repository.PaymentPlanRepository,
	plans repository.StudentPaymentPlanRepository,
	installments repository.InstallmentRepository,
	students repository.StudentRepository,
	opts Options,
) *StudentPaymentPlanService {
	return &StudentPaymentPlanService{
		tx:           tx,
		templates:    templates,
		plans:        plans,
		installments: installments,
		students:     students,
		opts:         opts,
	}
}

// Create stores the plan and its generated installments in one transaction.
func (s *StudentPaymentPlanService) Create(ctx context.Context, req *domain.CreateStudentPaymentPlanRequest) (*domain.StudentPaymentPlan, error) {
	if !utils.IsValidAmount(req.TotalAmount) {
		return nil, customError.WrapInvalidPaymentAmount(req.TotalAmount.String())
	}
	if req.FirstInstallmentAmount != nil {
		if !utils.IsValidAmount(*req.FirstInstallmentAmount) || req.FirstInstallmentAmount.GreaterThan(req.TotalAmount) {
			return nil, customError.WrapInvalidPaymentAmount(req.FirstInstallmentAmount.String())
		}
	}

	template, err := s.templates.GetByID(ctx, req.PaymentPlanID)
	if err != nil {
		return nil, lookupErr(err, resPaymentPlan, req.PaymentPlanID)
	}
	if !template.IsActive {
		return nil, customError.WrapValidation("Pasif ödeme planı şablonu kullanılamaz")
	}
	if template.InstallmentCount < 1 {
		return nil, customError.WrapValidation("Ödeme planı şablonunda taksit sayısı en az 1 olmalıdır")
	}

	if err := mustExist(ctx, s.students.Exists, resStudent, req.StudentID); err != nil {
		return nil, err
	}

	now := s.opts.now()
	plan := domain.NewStudentPaymentPlan(req.StudentID, template.ID, req.TotalAmount, req.StartDate, req.Notes)
	plan.Touch(now)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.plans.Create(ctx, plan); err != nil {
			return customError.WrapDatabaseError(err)
		}

		installments := domain.GenerateInstallments(plan.ID, template, req.TotalAmount, req.StartDate, req.FirstInstallmentAmount)
		for _, inst := range installments {
			inst.Touch(now)
		}
		if err := s.installments.CreateBatch(ctx, installments); err != nil {
			return customError.WrapDatabaseError(err)
		}

		plan.Installments = installments
		return nil
	})
	if err != nil {
		return nil, err
	}

	plan.PlanName = template.Name
	logger.Info(ctx).
		Int64("student_payment_plan_id", plan.ID).
		Int64("student_id", plan.StudentID).
		Str("total", plan.TotalAmount.StringFixed(2)).
		Int("installments", len(plan.Installments)).
		Msg("student payment plan created")
	return plan, nil
}

// GetByID returns the plan with its installments and template name.
func (s *StudentPaymentPlanService) GetByID(ctx context.Context, id int64) (*domain.StudentPaymentPlan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resStudentPaymentPlan, id)
	}

	plan.Installments, err = s.installments.ListByPlan(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	// a deleted template only loses its name
	if template, err := s.templates.GetByID(ctx, plan.PaymentPlanID); err == nil {
		plan.PlanName = template.Name
	}
	return plan, nil
}

func (s *StudentPaymentPlanService) ListByStudent(ctx context.Context, studentID int64, page domain.PageRequest) (domain.PageResult[*domain.StudentPaymentPlan], error) {
	return s.List(ctx, domain.StudentPaymentPlanFilter{StudentID: &studentID, PageRequest: page})
}

func (s *StudentPaymentPlanService) List(ctx context.Context, filter domain.StudentPaymentPlanFilter) (domain.PageResult[*domain.StudentPaymentPlan], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	plans, total, err := s.plans.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.StudentPaymentPlan]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(plans, total, filter.PageRequest), nil
}

// Cancel moves an Active plan to Cancelled. Its installments are left as they are.
func (s *StudentPaymentPlanService) Cancel(ctx context.Context, id int64, reason string) (*domain.StudentPaymentPlan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resStudentPaymentPlan, id)
	}

	now := s.opts.now()
	if err := plan.Cancel(reason, now); err != nil {
		return nil, err
	}
	plan.Touch(now)
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, lookupErr(err, resStudentPaymentPlan, id)
	}

	logger.Info(ctx).Int64("student_payment_plan_id", id).Str("reason", reason).Msg("student payment plan cancelled")
	return plan, nil
}

// Complete closes an Active plan regardless of what is still owed.
func (s *StudentPaymentPlanService) Complete(ctx context.Context, id int64) (*domain.StudentPaymentPlan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resStudentPaymentPlan, id)
	}

	now := s.opts.now()
	if err := plan.Complete(now); err != nil {
		return nil, err
	}
	plan.Touch(now)
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, lookupErr(err, resStudentPaymentPlan, id)
	}

	logger.Info(ctx).Int64("student_payment_plan_id", id).
		Str("remaining", plan.RemainingAmount.StringFixed(2)).
		Msg("student payment plan completed")
	return plan, nil
}

// GetInstallments lists the plan's installments by number.
func (s *StudentPaymentPlanService) GetInstallments(ctx context.Context, id int64) ([]*domain.PaymentInstallment, error) {
	if _, err := s.plans.GetByID(ctx, id); err != nil {
		return nil, lookupErr(err, resStudentPaymentPlan, id)
	}

	installments, err := s.installments.ListByPlan(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return installments, nil
}
