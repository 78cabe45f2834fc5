// Package playback provides the flipbook playback state machine.
package playback

// State represents the playback state.
type State int

const (
	StateHoldInInit   State = iota // Waiting for the first two packs to load
	StateIn                        // Playing the current pack's intro once
	StateInter                     // Interactive segment driven by press/release
	StateOut                       // Playing the current pack's outro once
	StateHoldInSwitch              // Waiting for the newly promoted pack pair to load
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateHoldInInit:
		return "HOLD_IN_INIT"
	case StateIn:
		return "IN"
	case StateInter:
		return "INTER"
	case StateOut:
		return "OUT"
	case StateHoldInSwitch:
		return "HOLD_IN_SWITCH"
	default:
		return "UNKNOWN"
	}
}

// IsHold reports whether the state waits for pack readiness.
func (s State) IsHold() bool {
	return s == StateHoldInInit || s == StateHoldInSwitch
}
