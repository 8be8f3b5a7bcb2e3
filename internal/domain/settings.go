package domain

type AdvancementMode string

const (
	AdvancementModeAutomatic        AdvancementMode = "automatic"
	AdvancementModeApprovalRequired AdvancementMode = "approval_required"
)
