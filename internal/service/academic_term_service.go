package service

import (
	"context"
	"fmt"

	"github.com/segyhp/school-portal/internal/cache"
	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/logger"
)

// AcademicTermService manages terms and the single current term.
type AcademicTermService struct {
	tx    repository.Transactor
	terms repository.AcademicTermRepository
	cache cache.Cache
	opts  Options
}

func NewAcademicTermService(tx repository.Transactor, terms repository.AcademicTermRepository, c cache.Cache, opts Options) *AcademicTermService {
	if c == nil {
		c = cache.Noop{}
	}
	return &AcademicTermService{tx: tx, terms: terms, cache: c, opts: opts}
}

func (s *AcademicTermService) Create(ctx context.Context, req *domain.AcademicTermRequest) (*domain.AcademicTerm, error) {
	if err := req.Validate(); err != nil {
		return nil, customError.WrapValidation(err.Error())
	}

	term := &domain.AcademicTerm{IsActive: true}
	req.Apply(term)
	term.Touch(s.opts.now())

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if req.IsCurrent {
			if err := s.terms.LockTerms(ctx); err != nil {
				return customError.WrapDatabaseError(err)
			}
			if err := s.terms.ClearCurrent(ctx, 0); err != nil {
				return customError.WrapDatabaseError(err)
			}
			term.IsCurrent = true
		}
		if err := s.terms.Create(ctx, term); err != nil {
			return writeErr(err, resTerm, term.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if term.IsCurrent {
		s.dropCurrent(ctx)
	}
	return term, nil
}

func (s *AcademicTermService) GetByID(ctx context.Context, id int64) (*domain.AcademicTerm, error) {
	term, err := s.terms.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resTerm, id)
	}
	return term, nil
}

// Update rewrites the term. Setting IsCurrent makes it the only current term;
// clearing it leaves the portal without one.
func (s *AcademicTermService) Update(ctx context.Context, id int64, req *domain.AcademicTermRequest) (*domain.AcademicTerm, error) {
	if err := req.Validate(); err != nil {
		return nil, customError.WrapValidation(err.Error())
	}

	var term *domain.AcademicTerm
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		term, err = s.terms.GetByID(ctx, id)
		if err != nil {
			return lookupErr(err, resTerm, id)
		}

		req.Apply(term)
		if req.IsCurrent && !term.IsCurrent {
			if err := s.terms.LockTerms(ctx); err != nil {
				return customError.WrapDatabaseError(err)
			}
			if err := s.terms.ClearCurrent(ctx, id); err != nil {
				return customError.WrapDatabaseError(err)
			}
		}
		term.IsCurrent = req.IsCurrent
		term.Touch(s.opts.now())

		if err := s.terms.Update(ctx, term); err != nil {
			return writeErr(err, resTerm, term.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dropCurrent(ctx)
	return term, nil
}

// Delete soft deletes a term nothing references. The reference check and the
// delete share one transaction.
func (s *AcademicTermService) Delete(ctx context.Context, id int64) error {
	var term *domain.AcademicTerm
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.terms.LockTerms(ctx); err != nil {
			return customError.WrapDatabaseError(err)
		}

		var err error
		term, err = s.terms.GetByID(ctx, id)
		if err != nil {
			return lookupErr(err, resTerm, id)
		}

		assignments, schedules, err := s.terms.CountReferences(ctx, id)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if assignments > 0 || schedules > 0 {
			return customError.WrapInUse(resTerm,
				fmt.Sprintf("%d sınıf ataması ve %d ders programı bu döneme bağlı", assignments, schedules))
		}

		if err := s.terms.Delete(ctx, id); err != nil {
			return lookupErr(err, resTerm, id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if term.IsCurrent {
		s.dropCurrent(ctx)
	}
	return nil
}

func (s *AcademicTermService) List(ctx context.Context, filter domain.AcademicTermFilter) (domain.PageResult[*domain.AcademicTerm], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	terms, total, err := s.terms.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.AcademicTerm]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(terms, total, filter.PageRequest), nil
}

// GetCurrent returns the current term, NotFound when none is set.
func (s *AcademicTermService) GetCurrent(ctx context.Context) (*domain.AcademicTerm, error) {
	var cached domain.AcademicTerm
	if found, err := s.cache.Get(ctx, cache.KeyCurrentTerm, &cached); err != nil {
		logger.Warn(ctx).Err(err).Msg("current term cache read failed")
	} else if found {
		return &cached, nil
	}

	term, err := s.terms.GetCurrent(ctx)
	if err != nil {
		return nil, lookupErr(err, resTerm, "current")
	}

	if err := s.cache.Set(ctx, cache.KeyCurrentTerm, term); err != nil {
		logger.Warn(ctx).Err(err).Msg("current term cache write failed")
	}
	return term, nil
}

// SetCurrent makes id the only current term in one transaction.
func (s *AcademicTermService) SetCurrent(ctx context.Context, id int64) (*domain.AcademicTerm, error) {
	var term *domain.AcademicTerm
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.terms.LockTerms(ctx); err != nil {
			return customError.WrapDatabaseError(err)
		}

		var err error
		term, err = s.terms.GetByID(ctx, id)
		if err != nil {
			return lookupErr(err, resTerm, id)
		}
		if !term.IsActive {
			return customError.WrapValidation("Pasif dönem güncel dönem yapılamaz")
		}

		if err := s.terms.ClearCurrent(ctx, id); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if term.IsCurrent {
			return nil
		}

		term.IsCurrent = true
		term.Touch(s.opts.now())
		if err := s.terms.Update(ctx, term); err != nil {
			return lookupErr(err, resTerm, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dropCurrent(ctx)
	logger.Info(ctx).Int64("academic_term_id", id).Str("name", term.Name).Msg("current academic term changed")
	return term, nil
}

func (s *AcademicTermService) dropCurrent(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyCurrentTerm); err != nil {
		logger.Warn(ctx).Err(err).Msg("current term cache invalidation failed")
	}
}
