package service

import (
	"context"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
)

// ClubService manages clubs and their memberships. Clubs are hard deleted.
type ClubService struct {
	tx       repository.Transactor
	clubs    repository.ClubRepository
	students repository.StudentRepository
	teachers repository.TeacherRepository
	opts     Options
}

func NewClubService(
	tx repository.Transactor,
	clubs repository.ClubRepository,
	students repository.StudentRepository,
	teachers repository.TeacherRepository,
	opts Options,
) *ClubService {
	return &ClubService{tx: tx, clubs: clubs, students: students, teachers: teachers, opts: opts}
}

func (s *ClubService) Create(ctx context.Context, req *domain.ClubRequest) (*domain.Club, error) {
	if err := s.checkAdvisor(ctx, req.AdvisorTeacherID); err != nil {
		return nil, err
	}

	now := s.opts.now()
	club := &domain.Club{IsActive: true, CreatedAt: now, UpdatedAt: now}
	req.Apply(club)

	if err := s.clubs.Create(ctx, club); err != nil {
		return nil, writeErr(err, resClub, club.Name)
	}
	return club, nil
}

func (s *ClubService) GetByID(ctx context.Context, id int64) (*domain.Club, error) {
	club, err := s.clubs.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resClub, id)
	}
	return club, nil
}

// Update rewrites the club. Lowering MaxMembers below the current member
// count is rejected.
func (s *ClubService) Update(ctx context.Context, id int64, req *domain.ClubRequest) (*domain.Club, error) {
	club, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAdvisor(ctx, req.AdvisorTeacherID); err != nil {
		return nil, err
	}
	if req.MaxMembers > 0 && req.MaxMembers < club.MemberCount {
		return nil, customError.WrapValidation("Kontenjan mevcut üye sayısının altına düşürülemez")
	}

	req.Apply(club)
	club.UpdatedAt = s.opts.now()
	if err := s.clubs.Update(ctx, club); err != nil {
		return nil, writeErr(err, resClub, club.Name)
	}
	return club, nil
}

// Delete removes the club together with its memberships.
func (s *ClubService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.clubs.Delete(ctx, id); err != nil {
			return lookupErr(err, resClub, id)
		}
		return nil
	})
}

func (s *ClubService) List(ctx context.Context, filter domain.ClubFilter) (domain.PageResult[*domain.Club], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	items, total, err := s.clubs.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.Club]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(items, total, filter.PageRequest), nil
}

// AddMember enrols a student, rejecting duplicates, inactive clubs and full clubs.
func (s *ClubService) AddMember(ctx context.Context, clubID int64, req *domain.ClubMemberRequest) (*domain.ClubMembership, error) {
	if err := mustExist(ctx, s.students.Exists, resStudent, req.StudentID); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = "Member"
	}
	membership := &domain.ClubMembership{
		ClubID:    clubID,
		StudentID: req.StudentID,
		Role:      role,
		JoinedAt:  s.opts.now(),
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		club, err := s.clubs.GetByID(ctx, clubID)
		if err != nil {
			return lookupErr(err, resClub, clubID)
		}
		if !club.IsActive {
			return customError.WrapValidation("Pasif kulübe üye eklenemez")
		}

		member, err := s.clubs.IsMember(ctx, clubID, req.StudentID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if member {
			return customError.WrapAlreadyExists("Kulüp üyeliği", "öğrenci zaten bu kulübün üyesi")
		}

		count, err := s.clubs.CountMembers(ctx, clubID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if !club.HasCapacity(count) {
			return customError.WrapCapacityExceeded(resClub, club.MaxMembers)
		}

		if err := s.clubs.AddMember(ctx, membership); err != nil {
			return writeErr(err, "Kulüp üyeliği", "öğrenci zaten bu kulübün üyesi")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *ClubService) RemoveMember(ctx context.Context, clubID, studentID int64) error {
	if err := s.clubs.RemoveMember(ctx, clubID, studentID); err != nil {
		return lookupErr(err, "Kulüp üyeliği", studentID)
	}
	return nil
}

func (s *ClubService) ListMembers(ctx context.Context, clubID int64) ([]*domain.ClubMembership, error) {
	if _, err := s.GetByID(ctx, clubID); err != nil {
		return nil, err
	}

	members, err := s.clubs.ListMembers(ctx, clubID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return members, nil
}

func (s *ClubService) checkAdvisor(ctx context.Context, teacherID *int64) error {
	if teacherID == nil {
		return nil
	}
	return mustExist(ctx, s.teachers.Exists, resTeacher, *teacherID)
}
