package access

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/logger"
)

type checker struct {
	resolver *Resolver
}

// CanAccessStudent reports whether userID may view studentID.
func (c checker) CanAccessStudent(ctx context.Context, userID string, studentID int64) (bool, error) {
	policy, err := c.resolver.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	ok, err := policy.CanAccessStudent(ctx, studentID)
	if err != nil {
		return false, customError.WrapDatabaseError(err)
	}
	return ok, nil
}

// GetAccessibleStudentIDs returns the caller's allow-list; all is true when
// the caller is not restricted.
func (c checker) GetAccessibleStudentIDs(ctx context.Context, userID string) ([]int64, bool, error) {
	policy, err := c.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	ids, all, err := policy.AccessibleStudentIDs(ctx)
	if err != nil {
		return nil, false, customError.WrapDatabaseError(err)
	}
	return ids, all, nil
}

// AdvisorAccessService answers advisor visibility questions and manages
// advisor to student assignments.
type AdvisorAccessService struct {
	checker
	teachers repository.TeacherRepository
	students repository.StudentRepository
	advisors repository.AdvisorRepository
}

func NewAdvisorAccessService(
	resolver *Resolver,
	teachers repository.TeacherRepository,
	students repository.StudentRepository,
	advisors repository.AdvisorRepository,
) *AdvisorAccessService {
	return &AdvisorAccessService{
		checker:  checker{resolver: resolver},
		teachers: teachers,
		students: students,
		advisors: advisors,
	}
}

// AssignStudent puts studentID under the advisor teacherID.
func (s *AdvisorAccessService) AssignStudent(ctx context.Context, teacherID, studentID int64) (*domain.AdvisorStudent, error) {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapNotFound("Öğretmen", teacherID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	exists, err := s.students.Exists(ctx, studentID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !exists {
		return nil, customError.WrapNotFound("Öğrenci", studentID)
	}

	link := &domain.AdvisorStudent{TeacherID: teacherID, StudentID: studentID, CreatedAt: time.Now()}
	if err := s.advisors.Assign(ctx, link); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, customError.WrapAlreadyExists("Danışman ataması", "öğrenci zaten bu danışmana atanmış")
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.resolver.Invalidate(ctx, teacher.UserID)
	logger.Info(ctx).Int64("teacher_id", teacherID).Int64("student_id", studentID).Msg("advisor assigned")
	return link, nil
}

// UnassignStudent removes studentID from the advisor teacherID.
func (s *AdvisorAccessService) UnassignStudent(ctx context.Context, teacherID, studentID int64) error {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapNotFound("Öğretmen", teacherID)
	}
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	if err := s.advisors.Unassign(ctx, teacherID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapNotFound("Danışman ataması", studentID)
		}
		return customError.WrapDatabaseError(err)
	}

	s.resolver.Invalidate(ctx, teacher.UserID)
	return nil
}

// ParentAccessService answers guardian visibility questions.
type ParentAccessService struct {
	checker
}

func NewParentAccessService(resolver *Resolver) *ParentAccessService {
	return &ParentAccessService{checker: checker{resolver: resolver}}
}
