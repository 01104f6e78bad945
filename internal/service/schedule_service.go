package service

import (
	"context"
	"fmt"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
)

var weekdayNames = [...]string{"Pazar", "Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi"}

// ScheduleService manages the weekly timetable. A room or a teacher can hold
// only one lesson at a time on a weekday while their effective ranges overlap.
type ScheduleService struct {
	schedules  repository.ScheduleRepository
	terms      repository.AcademicTermRepository
	courses    repository.CourseRepository
	teachers   repository.TeacherRepository
	classrooms repository.ClassroomRepository
	opts       Options
}

func NewScheduleService(
	schedules repository.ScheduleRepository,
	terms repository.AcademicTermRepository,
	courses repository.CourseRepository,
	teachers repository.TeacherRepository,
	classrooms repository.ClassroomRepository,
	opts Options,
) *ScheduleService {
	return &ScheduleService{
		schedules:  schedules,
		terms:      terms,
		courses:    courses,
		teachers:   teachers,
		classrooms: classrooms,
		opts:       opts,
	}
}

func (s *ScheduleService) Create(ctx context.Context, req *domain.WeeklyScheduleRequest) (*domain.WeeklySchedule, error) {
	schedule, err := req.ToSchedule()
	if err != nil {
		return nil, customError.WrapValidation(err.Error())
	}
	if err := s.check(ctx, schedule); err != nil {
		return nil, err
	}

	schedule.Touch(s.opts.now())
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return schedule, nil
}

func (s *ScheduleService) GetByID(ctx context.Context, id int64) (*domain.WeeklySchedule, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resSchedule, id)
	}
	return schedule, nil
}

func (s *ScheduleService) Update(ctx context.Context, id int64, req *domain.WeeklyScheduleRequest) (*domain.WeeklySchedule, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	schedule, err := req.ToSchedule()
	if err != nil {
		return nil, customError.WrapValidation(err.Error())
	}
	schedule.ID = id
	schedule.Audit = existing.Audit
	if err := s.check(ctx, schedule); err != nil {
		return nil, err
	}

	schedule.Touch(s.opts.now())
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, lookupErr(err, resSchedule, id)
	}
	return schedule, nil
}

func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	if err := s.schedules.Delete(ctx, id); err != nil {
		return lookupErr(err, resSchedule, id)
	}
	return nil
}

func (s *ScheduleService) List(ctx context.Context, filter domain.WeeklyScheduleFilter) (domain.PageResult[*domain.WeeklySchedule], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	items, total, err := s.schedules.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.WeeklySchedule]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(items, total, filter.PageRequest), nil
}

func (s *ScheduleService) GetByClassGroup(ctx context.Context, termID int64, classGroup string, page domain.PageRequest) (domain.PageResult[*domain.WeeklySchedule], error) {
	return s.List(ctx, domain.WeeklyScheduleFilter{AcademicTermID: &termID, ClassGroup: classGroup, PageRequest: page})
}

func (s *ScheduleService) GetByTeacher(ctx context.Context, teacherID int64, page domain.PageRequest) (domain.PageResult[*domain.WeeklySchedule], error) {
	return s.List(ctx, domain.WeeklyScheduleFilter{TeacherID: &teacherID, PageRequest: page})
}

// check verifies the references exist and the slot collides with no other
// lesson in the same room or with the same teacher.
func (s *ScheduleService) check(ctx context.Context, schedule *domain.WeeklySchedule) error {
	if _, err := s.terms.GetByID(ctx, schedule.AcademicTermID); err != nil {
		return lookupErr(err, resTerm, schedule.AcademicTermID)
	}
	if _, err := s.courses.GetByID(ctx, schedule.CourseID); err != nil {
		return lookupErr(err, resCourse, schedule.CourseID)
	}
	if err := mustExist(ctx, s.teachers.Exists, resTeacher, schedule.TeacherID); err != nil {
		return err
	}
	if _, err := s.classrooms.GetByID(ctx, schedule.ClassroomID); err != nil {
		return lookupErr(err, resClassroom, schedule.ClassroomID)
	}

	candidates, err := s.schedules.FindCandidates(ctx, schedule)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	for _, other := range candidates {
		if other.ID == schedule.ID || !schedule.ConflictsWith(other) {
			continue
		}
		slot := fmt.Sprintf("%s %s-%s", weekdayNames[other.DayOfWeek], other.StartTime, other.EndTime)
		if other.ClassroomID == schedule.ClassroomID {
			return customError.WrapScheduleConflict(fmt.Sprintf("Derslik %s saatinde dolu", slot))
		}
		if other.TeacherID == schedule.TeacherID {
			return customError.WrapScheduleConflict(fmt.Sprintf("Öğretmenin %s saatinde başka dersi var", slot))
		}
	}
	return nil
}
