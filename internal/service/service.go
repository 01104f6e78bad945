package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/segyhp/school-portal/internal/config"
	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
)

// Options carries the settings every service shares.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	Clock           func() time.Time
}

// NewOptions reads paging and the business timezone from cfg. A nil cfg
// yields the package defaults and the local clock.
func NewOptions(cfg *config.Config) Options {
	opts := Options{
		DefaultPageSize: domain.DefaultPageSize,
		MaxPageSize:     domain.MaxPageSize,
		Clock:           time.Now,
	}
	if cfg == nil {
		return opts
	}

	if cfg.Business.DefaultPageSize > 0 {
		opts.DefaultPageSize = cfg.Business.DefaultPageSize
	}
	if cfg.Business.MaxPageSize > 0 {
		opts.MaxPageSize = cfg.Business.MaxPageSize
	}
	loc := cfg.GetSchedulerLocation()
	opts.Clock = func() time.Time { return time.Now().In(loc) }
	return opts
}

func (o Options) now() time.Time {
	if o.Clock == nil {
		return time.Now()
	}
	return o.Clock()
}

func (o Options) page(p domain.PageRequest) domain.PageRequest {
	return p.Clamp(o.DefaultPageSize, o.MaxPageSize)
}

// lookupErr classifies a repository read or write error.
func lookupErr(err error, resource string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapNotFound(resource, id)
	}
	return customError.WrapDatabaseError(err)
}

// writeErr classifies an insert or update error, mapping unique violations
// to a conflict on key.
func writeErr(err error, resource, key string) error {
	if repository.IsUniqueViolation(err) {
		return customError.WrapAlreadyExists(resource, key)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapNotFound(resource, key)
	}
	return customError.WrapDatabaseError(err)
}

// passthrough returns err unchanged when it is already classified.
func passthrough(err error) error {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}
	return customError.WrapDatabaseError(err)
}

// mustExist fails with NotFound when exists reports false.
func mustExist(ctx context.Context, exists func(context.Context, int64) (bool, error), resource string, id int64) error {
	ok, err := exists(ctx, id)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if !ok {
		return customError.WrapNotFound(resource, id)
	}
	return nil
}

// Resource names used in user-facing messages.
const (
	resPaymentPlan        = "Ödeme planı şablonu"
	resStudentPaymentPlan = "Öğrenci ödeme planı"
	resInstallment        = "Taksit"
	resPayment            = "Ödeme"
	resStudent            = "Öğrenci"
	resTeacher            = "Öğretmen"
	resTerm               = "Akademik dönem"
	resCourse             = "Ders"
	resClassroom          = "Derslik"
	resSchedule           = "Ders programı"
	resAssignment         = "Sınıf ataması"
	resParent             = "Veli"
	resAnnouncement       = "Duyuru"
	resCalendarEvent      = "Takvim etkinliği"
	resClub               = "Kulüp"
	resCoachingSession    = "Koçluk görüşmesi"
	resNotification       = "Bildirim"
	resDocument           = "Belge"
	resCertificate        = "Sertifika"
)
