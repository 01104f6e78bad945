package service

import (
	"context"
	"fmt"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
)

// ClassroomService manages rooms. Rooms are hard deleted.
type ClassroomService struct {
	classrooms repository.ClassroomRepository
	schedules  repository.ScheduleRepository
	opts       Options
}

func NewClassroomService(classrooms repository.ClassroomRepository, schedules repository.ScheduleRepository, opts Options) *ClassroomService {
	return &ClassroomService{classrooms: classrooms, schedules: schedules, opts: opts}
}

func (s *ClassroomService) Create(ctx context.Context, req *domain.ClassroomRequest) (*domain.Classroom, error) {
	now := s.opts.now()
	room := &domain.Classroom{IsActive: true, CreatedAt: now, UpdatedAt: now}
	req.Apply(room)

	if err := s.classrooms.Create(ctx, room); err != nil {
		return nil, writeErr(err, resClassroom, room.Name)
	}
	return room, nil
}

func (s *ClassroomService) GetByID(ctx context.Context, id int64) (*domain.Classroom, error) {
	room, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resClassroom, id)
	}
	return room, nil
}

func (s *ClassroomService) Update(ctx context.Context, id int64, req *domain.ClassroomRequest) (*domain.Classroom, error) {
	room, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(room)
	room.UpdatedAt = s.opts.now()
	if err := s.classrooms.Update(ctx, room); err != nil {
		return nil, writeErr(err, resClassroom, room.Name)
	}
	return room, nil
}

// Delete removes a room no live schedule uses.
func (s *ClassroomService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	n, err := s.classrooms.CountSchedules(ctx, id)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if n > 0 {
		return customError.WrapInUse(resClassroom, fmt.Sprintf("%d ders programında kullanılıyor", n))
	}

	if err := s.classrooms.Delete(ctx, id); err != nil {
		return lookupErr(err, resClassroom, id)
	}
	return nil
}

func (s *ClassroomService) List(ctx context.Context, filter domain.ClassroomFilter) (domain.PageResult[*domain.Classroom], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	rooms, total, err := s.classrooms.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.Classroom]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(rooms, total, filter.PageRequest), nil
}

// GetAvailable lists active rooms with no lesson overlapping the requested
// weekday window on the given date.
func (s *ClassroomService) GetAvailable(ctx context.Context, q domain.AvailabilityQuery) ([]*domain.Classroom, error) {
	if q.EndTime <= q.StartTime {
		return nil, customError.WrapValidation("bitiş saati başlangıç saatinden sonra olmalıdır")
	}
	if q.On.IsZero() {
		q.On = s.opts.now()
	}

	rooms, err := s.classrooms.ListActive(ctx, q.MinCapacity)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	lessons, err := s.schedules.ListByDay(ctx, q.DayOfWeek, q.On)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	busy := make(map[int64]bool)
	for _, l := range lessons {
		if domain.Overlaps(q.StartTime, q.EndTime, l.StartTime, l.EndTime) {
			busy[l.ClassroomID] = true
		}
	}

	free := make([]*domain.Classroom, 0, len(rooms))
	for _, room := range rooms {
		if !busy[room.ID] {
			free = append(free, room)
		}
	}
	return free, nil
}
