package domain

type RequirementKind string

const (
	RequirementContribution    RequirementKind = "contribution"
	RequirementDirectReferrals RequirementKind = "direct_referrals"
	RequirementTotalReferrals  RequirementKind = "total_referrals"
	RequirementHelpedAdvance   RequirementKind = "helped_advance"
)

type RequirementProgress struct {
	Kind     RequirementKind `json:"kind"`
	Current  int64           `json:"current"`
	Required int64           `json:"required"`
	IsMet    bool            `json:"is_met"`
}

// RoleProgress is the evaluator's read-only view of how far a member is from
// the next rank. NextRole is nil at the top rank.
type RoleProgress struct {
	MemberID        int32                 `json:"member_id"`
	CurrentRole     MembershipRole        `json:"current_role"`
	NextRole        *MembershipRole       `json:"next_role"`
	Requirements    []RequirementProgress `json:"requirements"`
	IsEligible      bool                  `json:"is_eligible"`
	ProgressPercent float64               `json:"progress_percent"`
}
