package app

// State represents the current application state.
type State int

const (
	StateConnecting State = iota // waiting for the backend health check
	StateIdle                    // ready for input
	StateProcessing              // waiting for the assistant reply
	StatePicking                 // a picker has keyboard focus
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StatePicking:
		return "picking"
	default:
		return "unknown"
	}
}
