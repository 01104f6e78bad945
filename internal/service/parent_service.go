package service

import (
	"context"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/logger"
)

// AccessInvalidator drops a user's cached student allow-list.
type AccessInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// ParentService manages guardians and their links to students.
type ParentService struct {
	parents  repository.ParentRepository
	students repository.StudentRepository
	access   AccessInvalidator
	opts     Options
}

func NewParentService(parents repository.ParentRepository, students repository.StudentRepository, access AccessInvalidator, opts Options) *ParentService {
	return &ParentService{parents: parents, students: students, access: access, opts: opts}
}

func (s *ParentService) Create(ctx context.Context, req *domain.ParentRequest) (*domain.Parent, error) {
	parent := &domain.Parent{}
	req.Apply(parent)
	parent.Touch(s.opts.now())

	if err := s.parents.Create(ctx, parent); err != nil {
		return nil, writeErr(err, resParent, parent.UserID)
	}
	return parent, nil
}

func (s *ParentService) GetByID(ctx context.Context, id int64) (*domain.Parent, error) {
	parent, err := s.parents.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resParent, id)
	}
	return parent, nil
}

func (s *ParentService) Update(ctx context.Context, id int64, req *domain.ParentRequest) (*domain.Parent, error) {
	parent, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousUser := parent.UserID
	req.Apply(parent)
	parent.Touch(s.opts.now())
	if err := s.parents.Update(ctx, parent); err != nil {
		return nil, writeErr(err, resParent, parent.UserID)
	}

	if previousUser != parent.UserID {
		s.invalidate(ctx, previousUser)
		s.invalidate(ctx, parent.UserID)
	}
	return parent, nil
}

func (s *ParentService) Delete(ctx context.Context, id int64) error {
	parent, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.parents.Delete(ctx, id); err != nil {
		return lookupErr(err, resParent, id)
	}

	s.invalidate(ctx, parent.UserID)
	return nil
}

func (s *ParentService) List(ctx context.Context, filter domain.ParentFilter) (domain.PageResult[*domain.Parent], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	items, total, err := s.parents.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.Parent]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(items, total, filter.PageRequest), nil
}

func (s *ParentService) LinkStudent(ctx context.Context, parentID int64, req *domain.LinkStudentRequest) (*domain.ParentStudent, error) {
	parent, err := s.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if err := mustExist(ctx, s.students.Exists, resStudent, req.StudentID); err != nil {
		return nil, err
	}

	link := &domain.ParentStudent{
		ParentID:     parentID,
		StudentID:    req.StudentID,
		Relationship: req.Relationship,
		IsPrimary:    req.IsPrimary,
		CreatedAt:    s.opts.now(),
	}
	if err := s.parents.LinkStudent(ctx, link); err != nil {
		return nil, writeErr(err, "Veli-öğrenci bağlantısı", "öğrenci bu veliye zaten bağlı")
	}

	s.invalidate(ctx, parent.UserID)
	logger.Info(ctx).Int64("parent_id", parentID).Int64("student_id", req.StudentID).Msg("student linked to parent")
	return link, nil
}

func (s *ParentService) UnlinkStudent(ctx context.Context, parentID, studentID int64) error {
	parent, err := s.GetByID(ctx, parentID)
	if err != nil {
		return err
	}
	if err := s.parents.UnlinkStudent(ctx, parentID, studentID); err != nil {
		return lookupErr(err, "Veli-öğrenci bağlantısı", studentID)
	}

	s.invalidate(ctx, parent.UserID)
	return nil
}

func (s *ParentService) GetStudents(ctx context.Context, parentID int64) ([]*domain.Student, error) {
	if _, err := s.GetByID(ctx, parentID); err != nil {
		return nil, err
	}

	students, err := s.parents.ListStudents(ctx, parentID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return students, nil
}

func (s *ParentService) invalidate(ctx context.Context, userID string) {
	if s.access != nil {
		s.access.Invalidate(ctx, userID)
	}
}
