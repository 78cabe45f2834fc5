package playback

// EventType represents a playback event type.
type EventType int

const (
	EventStateChanged EventType = iota // Machine moved to another state
	EventPackSwitched                  // Outro finished and the next pack was promoted
	EventPinnedAtEnd                   // Interactive cursor reached the end but the outro is not ready
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStateChanged:
		return "state_changed"
	case EventPackSwitched:
		return "pack_switched"
	case EventPinnedAtEnd:
		return "pinned_at_end"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type     EventType
	From     State // Previous state (EventStateChanged)
	State    State // Current state
	Pack     int   // Current pack index
	NextPack int   // Next pack index
	Cursor   float64
}
