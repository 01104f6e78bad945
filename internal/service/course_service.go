package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
)

// CourseService manages the course catalogue. Codes are unique among live courses.
type CourseService struct {
	courses repository.CourseRepository
	opts    Options
}

func NewCourseService(courses repository.CourseRepository, opts Options) *CourseService {
	return &CourseService{courses: courses, opts: opts}
}

func (s *CourseService) Create(ctx context.Context, req *domain.CourseRequest) (*domain.Course, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.ensureCodeFree(ctx, req.Code, 0); err != nil {
		return nil, err
	}

	course := &domain.Course{IsActive: true}
	req.Apply(course)
	course.Touch(s.opts.now())

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, writeErr(err, resCourse, course.Code)
	}
	return course, nil
}

func (s *CourseService) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resCourse, id)
	}
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, id int64, req *domain.CourseRequest) (*domain.Course, error) {
	course, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Code != course.Code {
		if err := s.ensureCodeFree(ctx, req.Code, id); err != nil {
			return nil, err
		}
	}

	req.Apply(course)
	course.Touch(s.opts.now())
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, writeErr(err, resCourse, course.Code)
	}
	return course, nil
}

// Delete soft deletes a course no live schedule uses.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	n, err := s.courses.CountSchedules(ctx, id)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if n > 0 {
		return customError.WrapInUse(resCourse, fmt.Sprintf("%d ders programında kullanılıyor", n))
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		return lookupErr(err, resCourse, id)
	}
	return nil
}

func (s *CourseService) List(ctx context.Context, filter domain.CourseFilter) (domain.PageResult[*domain.Course], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	courses, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.Course]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(courses, total, filter.PageRequest), nil
}

func (s *CourseService) ensureCodeFree(ctx context.Context, code string, selfID int64) error {
	existing, err := s.courses.GetByCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if existing.ID != selfID {
		return customError.WrapAlreadyExists(resCourse, code)
	}
	return nil
}
