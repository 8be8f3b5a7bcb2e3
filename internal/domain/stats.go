package domain

import "time"

// ReferralStats is the cached aggregate of a member's recruitment subtree.
// It is overwritten wholesale on every recalculation, never patched.
type ReferralStats struct {
	MemberID int32 `json:"member_id"`

	// DirectByRole counts direct recruits by the recruit's current role level.
	DirectByRole [NumRoles]int32 `json:"direct_by_role"`

	// TotalTreeCount is the size of the entire downstream tree, any rank.
	TotalTreeCount int32 `json:"total_tree_count"`

	// HelpedAdvance counts promotion events in the subtree per adjacent rank
	// boundary, indexed by the from-role level. Events, not current states,
	// so a counter never decreases.
	HelpedAdvance [NumRoles - 1]int32 `json:"helped_advance"`

	LastCalculatedAt time.Time `json:"last_calculated_at"`
}

// DirectTotal is the count of direct recruits at any rank.
func (s *ReferralStats) DirectTotal() int32 {
	var n int32
	for _, c := range s.DirectByRole {
		n += c
	}
	return n
}

// DirectAtOrAbove counts direct recruits whose role level is >= level.
func (s *ReferralStats) DirectAtOrAbove(level int32) int32 {
	if level < 0 {
		level = 0
	}
	var n int32
	for lvl := level; lvl < NumRoles; lvl++ {
		n += s.DirectByRole[lvl]
	}
	return n
}
