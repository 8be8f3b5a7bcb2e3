// Package catalog holds the ordered table of rank requirements. The catalog
// is loaded once at startup, validated, and read-only afterwards.
package catalog

import (
	"fmt"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
)

type Catalog struct {
	byLevel [domain.NumRoles]domain.RankRequirement
}

// New validates the requirement rows and builds the catalog. Levels must be
// contiguous from 0 with no duplicates, every role reference must name an
// existing rank, and a helped-advance requirement must span exactly one
// adjacent rank boundary.
func New(reqs []domain.RankRequirement) (*Catalog, error) {
	if len(reqs) != domain.NumRoles {
		return nil, fmt.Errorf("%w: expected %d rank definitions, got %d", domain.ErrInvalidCatalog, domain.NumRoles, len(reqs))
	}

	c := &Catalog{}
	seen := [domain.NumRoles]bool{}
	for _, req := range reqs {
		if !req.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidCatalog, req.Role)
		}
		if req.RoleLevel != req.Role.Level() {
			return nil, fmt.Errorf("%w: role %q declared at level %d, expected %d", domain.ErrInvalidCatalog, req.Role, req.RoleLevel, req.Role.Level())
		}
		if seen[req.RoleLevel] {
			return nil, fmt.Errorf("%w: duplicate level %d", domain.ErrInvalidCatalog, req.RoleLevel)
		}
		seen[req.RoleLevel] = true

		if req.MinDirectReferrals > 0 && req.MinDirectReferralsAtRole != "" && !req.MinDirectReferralsAtRole.Valid() {
			return nil, fmt.Errorf("%w: role %q references unknown direct-referral role %q", domain.ErrInvalidCatalog, req.Role, req.MinDirectReferralsAtRole)
		}
		if req.MinHelpedAdvance > 0 {
			from, to := req.HelpedAdvanceFromRole, req.HelpedAdvanceToRole
			if !from.Valid() || !to.Valid() {
				return nil, fmt.Errorf("%w: role %q references unknown helped-advance roles %q -> %q", domain.ErrInvalidCatalog, req.Role, from, to)
			}
			if to.Level() != from.Level()+1 {
				return nil, fmt.Errorf("%w: role %q helped-advance boundary %q -> %q is not adjacent", domain.ErrInvalidCatalog, req.Role, from, to)
			}
		}

		c.byLevel[req.RoleLevel] = req
	}
	return c, nil
}

// Requirement returns the requirement row for the given role.
func (c *Catalog) Requirement(role domain.MembershipRole) (domain.RankRequirement, error) {
	lvl := role.Level()
	if lvl < 0 {
		return domain.RankRequirement{}, fmt.Errorf("requirement for role %q: %w", role, domain.ErrNotFound)
	}
	return c.byLevel[lvl], nil
}

// NextRank returns the requirement for the rank immediately above the given
// role, or nil when the role is already at the top rank.
func (c *Catalog) NextRank(role domain.MembershipRole) (*domain.RankRequirement, error) {
	lvl := role.Level()
	if lvl < 0 {
		return nil, fmt.Errorf("next rank for role %q: %w", role, domain.ErrNotFound)
	}
	if lvl >= domain.NumRoles-1 {
		return nil, nil
	}
	next := c.byLevel[lvl+1]
	return &next, nil
}

// All returns the requirements ordered by level.
func (c *Catalog) All() []domain.RankRequirement {
	out := make([]domain.RankRequirement, domain.NumRoles)
	copy(out, c.byLevel[:])
	return out
}
