package models

// Skip reasons reported on a DispatchOutcome when no send was attempted.
const (
	SkipAlreadyTerminal = "already_terminal"
	SkipNoStatusChange  = "no_status_change"
	SkipSystemActor     = "system_actor"
	SkipNoProfile       = "no_profile"
	SkipNoToken         = "no_token"
	SkipSuppressedToken = "suppressed_token"
)

// DispatchOutcome is the result of handling one trigger event. A skipped
// outcome means the event required no send and is not an error.
type DispatchOutcome struct {
	Skipped     bool   `json:"skipped"`
	SkipReason  string `json:"skip_reason,omitempty"`
	MessageID   string `json:"message_id,omitempty"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

// Skip builds a skipped outcome.
func Skip(reason string) *DispatchOutcome {
	return &DispatchOutcome{Skipped: true, SkipReason: reason}
}
