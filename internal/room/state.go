package room

import "strings"

// State is the room lifecycle as seen by this client.
type State string

const (
	StateScheduled State = "scheduled"
	StatePaused    State = "paused"
	StateRunning   State = "running"
	StateEnded     State = "ended"
)

// ParseState reads a server-reported status string. Unknown values report
// ok=false and must be ignored by callers.
func ParseState(raw string) (State, bool) {
	switch State(strings.ToLower(strings.TrimSpace(raw))) {
	case StateScheduled:
		return StateScheduled, true
	case StatePaused:
		return StatePaused, true
	case StateRunning:
		return StateRunning, true
	case StateEnded:
		return StateEnded, true
	default:
		return "", false
	}
}

// rank orders states along the one-way lifecycle. running and paused share
// a rank: a paused room has started, and the two may replace each other.
func rank(s State) int {
	switch s {
	case StateRunning, StatePaused:
		return 1
	case StateEnded:
		return 2
	default:
		return 0
	}
}

// Merge folds a server-reported state into the current one without ever
// moving backward. Poll responses can arrive out of order around a start
// transition; a stale "scheduled" snapshot never displaces a started room,
// and ended is terminal.
func Merge(current, incoming State) State {
	if current == StateEnded {
		return current
	}
	if rank(incoming) < rank(current) {
		return current
	}
	return incoming
}
