package access

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/segyhp/school-portal/internal/cache"
	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/metrics"
	"github.com/segyhp/school-portal/internal/repository"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/logger"
)

// Resolver maps an identity user to the Policy that governs them.
type Resolver struct {
	identity     repository.IdentityProvider
	teachers     repository.TeacherRepository
	parents      repository.ParentRepository
	advisors     repository.AdvisorRepository
	cache        cache.Cache
	defaultAllow bool
}

func NewResolver(
	identity repository.IdentityProvider,
	teachers repository.TeacherRepository,
	parents repository.ParentRepository,
	advisors repository.AdvisorRepository,
	c cache.Cache,
	defaultAllow bool,
) *Resolver {
	if c == nil {
		c = cache.Noop{}
	}
	return &Resolver{
		identity:     identity,
		teachers:     teachers,
		parents:      parents,
		advisors:     advisors,
		cache:        c,
		defaultAllow: defaultAllow,
	}
}

type cachedPolicy struct {
	Name string  `json:"name"`
	IDs  []int64 `json:"ids,omitempty"`
}

// Resolve picks the policy for userID. Admin wins over advisor, advisor over
// parent. Other roles get Unrestricted or Denied depending on configuration.
func (r *Resolver) Resolve(ctx context.Context, userID string) (Policy, error) {
	if userID == "" {
		return Denied(), nil
	}

	var cached cachedPolicy
	if found, err := r.cache.Get(ctx, cache.AccessKey(userID), &cached); err != nil {
		logger.Warn(ctx).Err(err).Str("user_id", userID).Msg("access cache read failed")
	} else if found {
		return fromCache(cached), nil
	}

	policy, err := r.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids, all, err := policy.AccessibleStudentIDs(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !all {
		cached = cachedPolicy{Name: policy.Name(), IDs: ids}
	} else {
		cached = cachedPolicy{Name: policy.Name()}
	}
	if err := r.cache.Set(ctx, cache.AccessKey(userID), cached); err != nil {
		logger.Warn(ctx).Err(err).Str("user_id", userID).Msg("access cache write failed")
	}

	return policy, nil
}

func (r *Resolver) resolve(ctx context.Context, userID string) (Policy, error) {
	user, err := r.identity.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Denied(), nil
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	switch {
	case user.HasRole(domain.RoleAdmin):
		return Admin(), nil

	case user.HasRole(domain.RoleAdvisor):
		teacher, err := r.teachers.GetByUserID(ctx, userID)
		if errors.Is(err, sql.ErrNoRows) {
			logger.Warn(ctx).Str("user_id", userID).Msg("advisor has no teacher record")
			return Denied(), nil
		}
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		return Advisor(teacher.ID, r.advisors), nil

	case user.HasRole(domain.RoleParent):
		parent, err := r.parents.GetByUserID(ctx, userID)
		if errors.Is(err, sql.ErrNoRows) {
			logger.Warn(ctx).Str("user_id", userID).Msg("parent role has no parent record")
			return Denied(), nil
		}
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		return Parent(parent.ID, r.parents), nil
	}

	if r.defaultAllow {
		return Unrestricted(), nil
	}
	return Denied(), nil
}

// Invalidate drops the cached policy of userID after its links change.
func (r *Resolver) Invalidate(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	if err := r.cache.Delete(ctx, cache.AccessKey(userID)); err != nil {
		logger.Warn(ctx).Err(err).Str("user_id", userID).Msg("access cache invalidation failed")
	}
}

func fromCache(c cachedPolicy) Policy {
	switch c.Name {
	case PolicyAdmin:
		return Admin()
	case PolicyUnrestricted:
		return Unrestricted()
	case PolicyAdvisor, PolicyParent:
		return WithIDs(c.Name, c.IDs)
	}
	return Denied()
}

// Authorize returns an access-denied error unless policy allows studentID.
func Authorize(ctx context.Context, policy Policy, studentID int64) error {
	ok, err := policy.CanAccessStudent(ctx, studentID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	metrics.AccessDecisions.WithLabelValues(policy.Name(), strconv.FormatBool(ok)).Inc()
	if !ok {
		return customError.WrapAccessDenied(studentID)
	}
	return nil
}
