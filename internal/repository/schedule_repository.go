package repository

import (
	"context"
	"time"

	"github.com/segyhp/school-portal/internal/domain"

	"github.com/jmoiron/sqlx"
)

var (
	weeklySchedules = table{
		name: "weekly_schedules",
		columns: []string{
			"academic_term_id", "course_id", "teacher_id", "classroom_id", "class_group", "day_of_week",
			"start_time", "end_time", "effective_from", "effective_to", "created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}

	coachingSessions = table{
		name: "coaching_sessions",
		columns: []string{
			"student_id", "teacher_id", "session_date", "start_time", "end_time", "topic", "notes", "status",
			"created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}
)

type scheduleRepository struct {
	crud[domain.WeeklySchedule]
}

func NewScheduleRepository(db *sqlx.DB) ScheduleRepository {
	return &scheduleRepository{crud[domain.WeeklySchedule]{base{db}, weeklySchedules}}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *domain.WeeklySchedule) error {
	id, err := r.insert(ctx, schedule)
	if err != nil {
		return err
	}
	schedule.ID = id
	return nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id int64) (*domain.WeeklySchedule, error) {
	return r.get(ctx, id)
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *domain.WeeklySchedule) error {
	return r.update(ctx, schedule)
}

func (r *scheduleRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

func (r *scheduleRepository) List(ctx context.Context, filter domain.WeeklyScheduleFilter) ([]*domain.WeeklySchedule, int, error) {
	q := newListQuery("day_of_week, start_time, id").
		whereIf(filter.AcademicTermID != nil, "academic_term_id = ?", deref(filter.AcademicTermID)).
		whereIf(filter.TeacherID != nil, "teacher_id = ?", deref(filter.TeacherID)).
		whereIf(filter.ClassroomID != nil, "classroom_id = ?", deref(filter.ClassroomID)).
		whereIf(filter.ClassGroup != "", "class_group = ?", filter.ClassGroup).
		whereIf(filter.DayOfWeek != nil, "day_of_week = ?", int(deref(filter.DayOfWeek)))
	return r.list(ctx, q, filter.PageRequest)
}

func (r *scheduleRepository) FindCandidates(ctx context.Context, s *domain.WeeklySchedule) ([]*domain.WeeklySchedule, error) {
	q := newListQuery("start_time").
		where("day_of_week = ?", int(s.DayOfWeek)).
		where("(classroom_id = ? OR teacher_id = ?)", s.ClassroomID, s.TeacherID).
		where("id <> ?", s.ID)
	return r.all(ctx, q)
}

func (r *scheduleRepository) ListByDay(ctx context.Context, day time.Weekday, on time.Time) ([]*domain.WeeklySchedule, error) {
	q := newListQuery("start_time").
		where("day_of_week = ?", int(day)).
		where("effective_from <= ?", on).
		where("(effective_to IS NULL OR effective_to >= ?)", on)
	return r.all(ctx, q)
}

type coachingSessionRepository struct {
	crud[domain.CoachingSession]
}

func NewCoachingSessionRepository(db *sqlx.DB) CoachingSessionRepository {
	return &coachingSessionRepository{crud[domain.CoachingSession]{base{db}, coachingSessions}}
}

func (r *coachingSessionRepository) Create(ctx context.Context, s *domain.CoachingSession) error {
	id, err := r.insert(ctx, s)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (r *coachingSessionRepository) GetByID(ctx context.Context, id int64) (*domain.CoachingSession, error) {
	return r.get(ctx, id)
}

func (r *coachingSessionRepository) Update(ctx context.Context, s *domain.CoachingSession) error {
	return r.update(ctx, s)
}

func (r *coachingSessionRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

func (r *coachingSessionRepository) List(ctx context.Context, filter domain.CoachingSessionFilter) ([]*domain.CoachingSession, int, error) {
	q := newListQuery("session_date DESC, start_time").
		whereIf(filter.StudentID != nil, "student_id = ?", deref(filter.StudentID)).
		whereIf(filter.TeacherID != nil, "teacher_id = ?", deref(filter.TeacherID)).
		whereIf(filter.Status != "", "status = ?", filter.Status).
		whereIf(filter.From != nil, "session_date >= ?", deref(filter.From)).
		whereIf(filter.To != nil, "session_date < ?", deref(filter.To))
	return r.list(ctx, q, filter.PageRequest)
}

func (r *coachingSessionRepository) ListOnDate(ctx context.Context, s *domain.CoachingSession) ([]*domain.CoachingSession, error) {
	q := newListQuery("start_time").
		where("session_date = ?", s.SessionDate).
		where("status <> ?", domain.CoachingStatusCancelled).
		where("(teacher_id = ? OR student_id = ?)", s.TeacherID, s.StudentID).
		where("id <> ?", s.ID)
	return r.all(ctx, q)
}
