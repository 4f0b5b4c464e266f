package prefetch

import "github.com/yhkl-dev/lofi/domain"

// EventKind identifies what happened inside the buffer
type EventKind int

const (
	EventFailed EventKind = iota
	EventExhausted
	EventResumed
)

func (k EventKind) String() string {
	switch k {
	case EventFailed:
		return "failed"
	case EventExhausted:
		return "exhausted"
	case EventResumed:
		return "resumed"
	default:
		return "unknown"
	}
}

// Event is a notification for the playback controller
type Event struct {
	Kind EventKind
	Ref  domain.TrackRef
	Err  error
}

// Stats is a point-in-time view of the buffer
type Stats struct {
	Ready     int
	InFlight  int
	Depth     int
	Exhausted bool
	Fetches   int
}
