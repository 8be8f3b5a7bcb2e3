package domain

import "time"

type TriggerType string

const (
	TriggerContribution  TriggerType = "contribution"
	TriggerReferralCount TriggerType = "referral_count"
	TriggerTreeCount     TriggerType = "tree_count"
	TriggerHelpedAdvance TriggerType = "helped_advance"
	TriggerManual        TriggerType = "manual"
)

// RoleAdvancement is one immutable promotion record. Rows are only ever
// inserted; they form the audit trail and feed the helped-advance counters.
type RoleAdvancement struct {
	ID          int32          `json:"id"`
	MemberID    int32          `json:"member_id"`
	FromRole    MembershipRole `json:"from_role"`
	ToRole      MembershipRole `json:"to_role"`
	AdvancedAt  time.Time      `json:"advanced_at"`
	TriggerType TriggerType    `json:"trigger_type"`
	TriggerData string         `json:"trigger_data,omitempty"`
	ApprovedBy  *int32         `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time     `json:"approved_at,omitempty"`
}

type AdvancementRequestStatus string

const (
	AdvancementRequestStatusPending  AdvancementRequestStatus = "pending"
	AdvancementRequestStatusApproved AdvancementRequestStatus = "approved"
	AdvancementRequestStatusRejected AdvancementRequestStatus = "rejected"
)

// AdvancementRequest is created when a member becomes eligible while the
// organization requires admin approval. At most one pending request exists
// per member; a request transitions exactly once to approved or rejected.
type AdvancementRequest struct {
	ID              int32                    `json:"id"`
	MemberID        int32                    `json:"member_id"`
	CurrentRole     MembershipRole           `json:"current_role"`
	RequestedRole   MembershipRole           `json:"requested_role"`
	Status          AdvancementRequestStatus `json:"status"`
	RequestedAt     time.Time                `json:"requested_at"`
	ReviewedBy      *int32                   `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time               `json:"reviewed_at,omitempty"`
	RejectionReason string                   `json:"rejection_reason,omitempty"`
}

// AdvancementResult is the outcome of a check-and-advance call. Queued means
// the member was eligible but an approval request was created (or already
// existed) instead of an immediate promotion.
type AdvancementResult struct {
	Advanced bool           `json:"advanced"`
	NewRole  MembershipRole `json:"new_role,omitempty"`
	Queued   bool           `json:"queued,omitempty"`
}
