package model

// Outcome is the terminal state of a single signing request.
type Outcome string

const (
	OutcomeSent         Outcome = "sent"
	OutcomeUploadFailed Outcome = "upload_failed"
	OutcomeFieldsFailed Outcome = "fields_failed"
	OutcomeInviteFailed Outcome = "invite_failed"
)

// Step names one stage of the per-recipient remote workflow.
type Step string

const (
	StepUpload Step = "upload"
	StepFields Step = "fields"
	StepInvite Step = "invite"
)

// NameMode controls how names are assigned when importing recipients.
type NameMode string

const (
	NameModeUseExisting NameMode = "use_existing"
	NameModeFixed       NameMode = "fixed_name"
	NameModeRandom      NameMode = "random_name"
)
