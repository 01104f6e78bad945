package service

import (
	"context"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
)

type AnnouncementService struct {
	announcements repository.AnnouncementRepository
	opts          Options
}

func NewAnnouncementService(announcements repository.AnnouncementRepository, opts Options) *AnnouncementService {
	return &AnnouncementService{announcements: announcements, opts: opts}
}

func (s *AnnouncementService) Create(ctx context.Context, authorID string, req *domain.AnnouncementRequest) (*domain.Announcement, error) {
	if err := validateExpiry(req); err != nil {
		return nil, err
	}

	now := s.opts.now()
	a := &domain.Announcement{AuthorID: authorID}
	req.Apply(a, now)
	a.Touch(now)

	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return a, nil
}

func (s *AnnouncementService) GetByID(ctx context.Context, id int64) (*domain.Announcement, error) {
	a, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resAnnouncement, id)
	}
	return a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, id int64, req *domain.AnnouncementRequest) (*domain.Announcement, error) {
	if err := validateExpiry(req); err != nil {
		return nil, err
	}
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	publishDate := a.PublishDate
	req.Apply(a, now)
	if req.PublishDate == nil {
		a.PublishDate = publishDate
	}
	a.Touch(now)

	if err := s.announcements.Update(ctx, a); err != nil {
		return nil, lookupErr(err, resAnnouncement, id)
	}
	return a, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, id int64) error {
	if err := s.announcements.Delete(ctx, id); err != nil {
		return lookupErr(err, resAnnouncement, id)
	}
	return nil
}

func (s *AnnouncementService) List(ctx context.Context, filter domain.AnnouncementFilter) (domain.PageResult[*domain.Announcement], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	items, total, err := s.announcements.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.Announcement]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(items, total, filter.PageRequest), nil
}

func (s *AnnouncementService) Publish(ctx context.Context, id int64) (*domain.Announcement, error) {
	return s.setPublished(ctx, id, true)
}

func (s *AnnouncementService) Unpublish(ctx context.Context, id int64) (*domain.Announcement, error) {
	return s.setPublished(ctx, id, false)
}

func (s *AnnouncementService) setPublished(ctx context.Context, id int64, published bool) (*domain.Announcement, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.IsPublished == published {
		return a, nil
	}

	now := s.opts.now()
	a.IsPublished = published
	if published && a.PublishDate.After(now) {
		a.PublishDate = now
	}
	a.Touch(now)

	if err := s.announcements.Update(ctx, a); err != nil {
		return nil, lookupErr(err, resAnnouncement, id)
	}
	return a, nil
}

// GetActive returns what audience sees right now, including announcements for everyone.
func (s *AnnouncementService) GetActive(ctx context.Context, audience string) ([]*domain.Announcement, error) {
	switch audience {
	case domain.AudienceAll, domain.AudienceStudents, domain.AudienceParents, domain.AudienceTeachers:
	case "":
		audience = domain.AudienceAll
	default:
		return nil, customError.WrapValidation("Geçersiz hedef kitle: " + audience)
	}

	items, err := s.announcements.ListVisible(ctx, audience, s.opts.now())
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return items, nil
}

func validateExpiry(req *domain.AnnouncementRequest) error {
	if req.ExpiryDate == nil || req.PublishDate == nil {
		return nil
	}
	if !req.ExpiryDate.After(*req.PublishDate) {
		return customError.WrapValidation("bitiş tarihi yayın tarihinden sonra olmalıdır")
	}
	return nil
}
