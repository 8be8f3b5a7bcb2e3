package domain

import "time"

// NumRoles is the number of membership ranks, levels 0 through NumRoles-1.
const NumRoles = 8

type MembershipRole string

const (
	RoleSupporter      MembershipRole = "supporter"
	RoleCandidate      MembershipRole = "candidate"
	RoleMember         MembershipRole = "member"
	RoleActivist       MembershipRole = "activist"
	RoleOrganizer      MembershipRole = "organizer"
	RoleCoordinator    MembershipRole = "coordinator"
	RoleRegionalLeader MembershipRole = "regional_leader"
	RoleNationalLeader MembershipRole = "national_leader"
)

var roleLevels = map[MembershipRole]int32{
	RoleSupporter:      0,
	RoleCandidate:      1,
	RoleMember:         2,
	RoleActivist:       3,
	RoleOrganizer:      4,
	RoleCoordinator:    5,
	RoleRegionalLeader: 6,
	RoleNationalLeader: 7,
}

var rolesByLevel = [NumRoles]MembershipRole{
	RoleSupporter,
	RoleCandidate,
	RoleMember,
	RoleActivist,
	RoleOrganizer,
	RoleCoordinator,
	RoleRegionalLeader,
	RoleNationalLeader,
}

// Level returns the ordinal level of the role, or -1 for an unknown role.
func (r MembershipRole) Level() int32 {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return -1
}

// Valid reports whether r is one of the eight defined ranks.
func (r MembershipRole) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// RoleAtLevel returns the role at the given level.
func RoleAtLevel(level int32) (MembershipRole, bool) {
	if level < 0 || level >= NumRoles {
		return "", false
	}
	return rolesByLevel[level], true
}

type Member struct {
	ID             int32          `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	MembershipRole MembershipRole `json:"membership_role"`
	ReferredByID   *int32         `json:"referred_by_id,omitempty"`
	RoleAdvancedAt *time.Time     `json:"role_advanced_at,omitempty"`
	CreatedOn      string         `json:"created_on"`
}
