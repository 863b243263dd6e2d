package types

// Outcome is the explicit result of a guarded mutation.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeForbidden Outcome = "forbidden"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeFailed    Outcome = "failed"
)

// OutcomeFromError maps a command error onto an Outcome. A nil error maps to
// OutcomeApplied.
func OutcomeFromError(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeApplied
	case IsForbidden(err):
		return OutcomeForbidden
	case IsNotFound(err):
		return OutcomeNotFound
	default:
		return OutcomeFailed
	}
}

// MutationResult is filled by role and profile commands.
type MutationResult struct {
	Outcome Outcome
	Role    *Role
	Profile *Profile
}
