package access

import (
	"context"
	"slices"

	"github.com/segyhp/school-portal/internal/repository"
)

// Policy decides which students a caller may see. It is resolved once per
// request from the caller's roles.
type Policy interface {
	Name() string
	CanAccessStudent(ctx context.Context, studentID int64) (bool, error)

	// AccessibleStudentIDs returns the allow-list, or all == true when the
	// caller is not restricted to a list.
	AccessibleStudentIDs(ctx context.Context) (ids []int64, all bool, err error)
}

// Policy names, also used as metric labels.
const (
	PolicyAdmin        = "admin"
	PolicyAdvisor      = "advisor"
	PolicyParent       = "parent"
	PolicyUnrestricted = "unrestricted"
	PolicyDenied       = "denied"
)

type adminPolicy struct{}

// Admin passes every check.
func Admin() Policy { return adminPolicy{} }

func (adminPolicy) Name() string { return PolicyAdmin }

func (adminPolicy) CanAccessStudent(context.Context, int64) (bool, error) { return true, nil }

func (adminPolicy) AccessibleStudentIDs(context.Context) ([]int64, bool, error) { return nil, true, nil }

type unrestrictedPolicy struct{}

// Unrestricted is granted to callers without a restricting role when the
// portal is configured to fail open.
func Unrestricted() Policy { return unrestrictedPolicy{} }

func (unrestrictedPolicy) Name() string { return PolicyUnrestricted }

func (unrestrictedPolicy) CanAccessStudent(context.Context, int64) (bool, error) { return true, nil }

func (unrestrictedPolicy) AccessibleStudentIDs(context.Context) ([]int64, bool, error) {
	return nil, true, nil
}

type deniedPolicy struct{}

// Denied fails every check.
func Denied() Policy { return deniedPolicy{} }

func (deniedPolicy) Name() string { return PolicyDenied }

func (deniedPolicy) CanAccessStudent(context.Context, int64) (bool, error) { return false, nil }

func (deniedPolicy) AccessibleStudentIDs(context.Context) ([]int64, bool, error) {
	return []int64{}, false, nil
}

// listPolicy grants access to an explicit list of students loaded on first use.
type listPolicy struct {
	name   string
	load   func(ctx context.Context) ([]int64, error)
	loaded bool
	ids    []int64
}

// Advisor restricts a teacher to the students assigned to them.
func Advisor(teacherID int64, advisors repository.AdvisorRepository) Policy {
	return &listPolicy{
		name: PolicyAdvisor,
		load: func(ctx context.Context) ([]int64, error) {
			return advisors.ListStudentIDs(ctx, teacherID)
		},
	}
}

// Parent restricts a guardian to their linked children.
func Parent(parentID int64, parents repository.ParentRepository) Policy {
	return &listPolicy{
		name: PolicyParent,
		load: func(ctx context.Context) ([]int64, error) {
			return parents.ListStudentIDs(ctx, parentID)
		},
	}
}

// WithIDs returns a list policy over a fixed allow-list.
func WithIDs(name string, ids []int64) Policy {
	return &listPolicy{name: name, loaded: true, ids: ids}
}

func (p *listPolicy) Name() string { return p.name }

func (p *listPolicy) CanAccessStudent(ctx context.Context, studentID int64) (bool, error) {
	ids, _, err := p.AccessibleStudentIDs(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, studentID), nil
}

func (p *listPolicy) AccessibleStudentIDs(ctx context.Context) ([]int64, bool, error) {
	if !p.loaded {
		ids, err := p.load(ctx)
		if err != nil {
			return nil, false, err
		}
		p.ids, p.loaded = ids, true
	}
	return p.ids, false, nil
}
