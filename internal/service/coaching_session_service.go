package service

import (
	"context"
	"fmt"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/logger"
)

// CoachingSessionService books one-to-one sessions. Neither the teacher nor
// the student may be double booked on a date.
type CoachingSessionService struct {
	sessions repository.CoachingSessionRepository
	teachers repository.TeacherRepository
	students repository.StudentRepository
	opts     Options
}

func NewCoachingSessionService(
	sessions repository.CoachingSessionRepository,
	teachers repository.TeacherRepository,
	students repository.StudentRepository,
	opts Options,
) *CoachingSessionService {
	return &CoachingSessionService{sessions: sessions, teachers: teachers, students: students, opts: opts}
}

func (s *CoachingSessionService) Create(ctx context.Context, req *domain.CoachingSessionRequest) (*domain.CoachingSession, error) {
	session := &domain.CoachingSession{Status: domain.CoachingStatusScheduled}
	if err := req.Apply(session); err != nil {
		return nil, customError.WrapValidation(err.Error())
	}
	if err := s.check(ctx, session); err != nil {
		return nil, err
	}

	session.Touch(s.opts.now())
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return session, nil
}

func (s *CoachingSessionService) GetByID(ctx context.Context, id int64) (*domain.CoachingSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resCoachingSession, id)
	}
	return session, nil
}

// Update reschedules a session that is still Scheduled.
func (s *CoachingSessionService) Update(ctx context.Context, id int64, req *domain.CoachingSessionRequest) (*domain.CoachingSession, error) {
	session, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.CoachingStatusScheduled {
		return nil, customError.WrapTerminalState(resCoachingSession, session.Status)
	}

	if err := req.Apply(session); err != nil {
		return nil, customError.WrapValidation(err.Error())
	}
	if err := s.check(ctx, session); err != nil {
		return nil, err
	}

	session.Touch(s.opts.now())
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, lookupErr(err, resCoachingSession, id)
	}
	return session, nil
}

func (s *CoachingSessionService) Delete(ctx context.Context, id int64) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return lookupErr(err, resCoachingSession, id)
	}
	return nil
}

func (s *CoachingSessionService) List(ctx context.Context, filter domain.CoachingSessionFilter) (domain.PageResult[*domain.CoachingSession], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	items, total, err := s.sessions.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.CoachingSession]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(items, total, filter.PageRequest), nil
}

// Complete closes a Scheduled session, replacing the notes when notes is set.
func (s *CoachingSessionService) Complete(ctx context.Context, id int64, notes string) (*domain.CoachingSession, error) {
	return s.transition(ctx, id, domain.CoachingStatusCompleted, notes)
}

func (s *CoachingSessionService) Cancel(ctx context.Context, id int64) (*domain.CoachingSession, error) {
	return s.transition(ctx, id, domain.CoachingStatusCancelled, "")
}

func (s *CoachingSessionService) transition(ctx context.Context, id int64, status, notes string) (*domain.CoachingSession, error) {
	session, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.CoachingStatusScheduled {
		return nil, customError.WrapTerminalState(resCoachingSession, session.Status)
	}

	session.Status = status
	if notes != "" {
		session.Notes = notes
	}
	session.Touch(s.opts.now())
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, lookupErr(err, resCoachingSession, id)
	}

	logger.Info(ctx).Int64("coaching_session_id", id).Str("status", status).Msg("coaching session closed")
	return session, nil
}

func (s *CoachingSessionService) check(ctx context.Context, session *domain.CoachingSession) error {
	if err := mustExist(ctx, s.teachers.Exists, resTeacher, session.TeacherID); err != nil {
		return err
	}
	if err := mustExist(ctx, s.students.Exists, resStudent, session.StudentID); err != nil {
		return err
	}

	sameDay, err := s.sessions.ListOnDate(ctx, session)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	for _, other := range sameDay {
		if other.ID == session.ID || !session.ConflictsWith(other) {
			continue
		}
		slot := fmt.Sprintf("%s-%s", other.StartTime, other.EndTime)
		if other.TeacherID == session.TeacherID {
			return customError.WrapScheduleConflict(fmt.Sprintf("Öğretmenin %s saatinde başka görüşmesi var", slot))
		}
		return customError.WrapScheduleConflict(fmt.Sprintf("Öğrencinin %s saatinde başka görüşmesi var", slot))
	}
	return nil
}
