package service

import (
	"context"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
)

// StudentClassAssignmentService places students into class groups, one per term.
type StudentClassAssignmentService struct {
	assignments repository.AssignmentRepository
	students    repository.StudentRepository
	terms       repository.AcademicTermRepository
	classrooms  repository.ClassroomRepository
	opts        Options
}

func NewStudentClassAssignmentService(
	assignments repository.AssignmentRepository,
	students repository.StudentRepository,
	terms repository.AcademicTermRepository,
	classrooms repository.ClassroomRepository,
	opts Options,
) *StudentClassAssignmentService {
	return &StudentClassAssignmentService{
		assignments: assignments,
		students:    students,
		terms:       terms,
		classrooms:  classrooms,
		opts:        opts,
	}
}

func (s *StudentClassAssignmentService) Assign(ctx context.Context, req *domain.StudentClassAssignmentRequest) (*domain.StudentClassAssignment, error) {
	if err := mustExist(ctx, s.students.Exists, resStudent, req.StudentID); err != nil {
		return nil, err
	}
	if _, err := s.terms.GetByID(ctx, req.AcademicTermID); err != nil {
		return nil, lookupErr(err, resTerm, req.AcademicTermID)
	}
	if req.ClassroomID != nil {
		if _, err := s.classrooms.GetByID(ctx, *req.ClassroomID); err != nil {
			return nil, lookupErr(err, resClassroom, *req.ClassroomID)
		}
	}

	exists, err := s.assignments.ExistsForTerm(ctx, req.StudentID, req.AcademicTermID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if exists {
		return nil, customError.WrapAlreadyExists(resAssignment, "öğrenci bu dönem için zaten bir sınıfa atanmış")
	}

	now := s.opts.now()
	assignment := &domain.StudentClassAssignment{
		StudentID:      req.StudentID,
		AcademicTermID: req.AcademicTermID,
		ClassGroup:     req.ClassGroup,
		ClassroomID:    req.ClassroomID,
		AssignedAt:     now,
		IsActive:       true,
	}
	assignment.Touch(now)

	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, writeErr(err, resAssignment, req.ClassGroup)
	}
	return assignment, nil
}

func (s *StudentClassAssignmentService) GetByID(ctx context.Context, id int64) (*domain.StudentClassAssignment, error) {
	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resAssignment, id)
	}
	return a, nil
}

func (s *StudentClassAssignmentService) Unassign(ctx context.Context, id int64) error {
	if err := s.assignments.Delete(ctx, id); err != nil {
		return lookupErr(err, resAssignment, id)
	}
	return nil
}

func (s *StudentClassAssignmentService) List(ctx context.Context, filter domain.StudentClassAssignmentFilter) (domain.PageResult[*domain.StudentClassAssignment], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	items, total, err := s.assignments.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.StudentClassAssignment]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(items, total, filter.PageRequest), nil
}
