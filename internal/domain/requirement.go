package domain

// RankRequirement is the advancement predicate for one rank. A member at the
// rank below advances when every configured (non-zero) threshold is met.
type RankRequirement struct {
	Role                     MembershipRole `json:"role" yaml:"role"`
	RoleLevel                int32          `json:"role_level" yaml:"role_level"`
	RequiresContribution     bool           `json:"requires_contribution" yaml:"requires_contribution"`
	MinContributionAmount    int64          `json:"min_contribution_amount_cents" yaml:"min_contribution_amount_cents"`
	MinDirectReferrals       int32          `json:"min_direct_referrals" yaml:"min_direct_referrals"`
	MinDirectReferralsAtRole MembershipRole `json:"min_direct_referrals_at_role,omitempty" yaml:"min_direct_referrals_at_role"`
	MinTotalReferrals        int32          `json:"min_total_referrals" yaml:"min_total_referrals"`
	MinHelpedAdvance         int32          `json:"min_helped_advance" yaml:"min_helped_advance"`
	HelpedAdvanceFromRole    MembershipRole `json:"helped_advance_from_role,omitempty" yaml:"helped_advance_from_role"`
	HelpedAdvanceToRole      MembershipRole `json:"helped_advance_to_role,omitempty" yaml:"helped_advance_to_role"`
	Privileges               []string       `json:"privileges" yaml:"privileges"`
}
