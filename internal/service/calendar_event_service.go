package service

import (
	"context"
	"time"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
)

type CalendarEventService struct {
	events repository.CalendarEventRepository
	terms  repository.AcademicTermRepository
	opts   Options
}

func NewCalendarEventService(events repository.CalendarEventRepository, terms repository.AcademicTermRepository, opts Options) *CalendarEventService {
	return &CalendarEventService{events: events, terms: terms, opts: opts}
}

func (s *CalendarEventService) Create(ctx context.Context, req *domain.CalendarEventRequest) (*domain.CalendarEvent, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}

	e := &domain.CalendarEvent{}
	req.Apply(e)
	e.Touch(s.opts.now())

	if err := s.events.Create(ctx, e); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return e, nil
}

func (s *CalendarEventService) GetByID(ctx context.Context, id int64) (*domain.CalendarEvent, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resCalendarEvent, id)
	}
	return e, nil
}

func (s *CalendarEventService) Update(ctx context.Context, id int64, req *domain.CalendarEventRequest) (*domain.CalendarEvent, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}

	req.Apply(e)
	e.Touch(s.opts.now())
	if err := s.events.Update(ctx, e); err != nil {
		return nil, lookupErr(err, resCalendarEvent, id)
	}
	return e, nil
}

func (s *CalendarEventService) Delete(ctx context.Context, id int64) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return lookupErr(err, resCalendarEvent, id)
	}
	return nil
}

func (s *CalendarEventService) List(ctx context.Context, filter domain.CalendarEventFilter) (domain.PageResult[*domain.CalendarEvent], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	items, total, err := s.events.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.CalendarEvent]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(items, total, filter.PageRequest), nil
}

// GetByRange lists events that intersect [from, to).
func (s *CalendarEventService) GetByRange(ctx context.Context, from, to time.Time, page domain.PageRequest) (domain.PageResult[*domain.CalendarEvent], error) {
	if to.Before(from) {
		return domain.PageResult[*domain.CalendarEvent]{}, customError.WrapValidation("bitiş tarihi başlangıç tarihinden önce olamaz")
	}
	return s.List(ctx, domain.CalendarEventFilter{From: &from, To: &to, PageRequest: page})
}

func (s *CalendarEventService) check(ctx context.Context, req *domain.CalendarEventRequest) error {
	if req.EndDate.Before(req.StartDate) {
		return customError.WrapValidation("bitiş tarihi başlangıç tarihinden önce olamaz")
	}
	if req.AcademicTermID != nil {
		if _, err := s.terms.GetByID(ctx, *req.AcademicTermID); err != nil {
			return lookupErr(err, resTerm, *req.AcademicTermID)
		}
	}
	return nil
}
