package controller

// State is the interaction state tag. Exactly one state is active per
// controller at any time.
type State int

// Interaction states. One commit cycle runs
// Validating -> (ErrorFeedback | Mutating -> Rendering -> feedback ->
// Clearing -> Idle) synchronously, so observers only ever see Idle,
// Editing, or ErrorFeedback between events.
const (
	StateIdle State = iota
	StateEditing
	StateValidating
	StateErrorFeedback
	StateMutating
	StateRendering
	StateSuccessFeedback
	StateClearing
)

// String returns the canonical name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateErrorFeedback:
		return "error_feedback"
	case StateMutating:
		return "mutating"
	case StateRendering:
		return "rendering"
	case StateSuccessFeedback:
		return "success_feedback"
	case StateClearing:
		return "clearing"
	default:
		return "unknown"
	}
}
