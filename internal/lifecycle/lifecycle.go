// Package lifecycle defines the event status machine. It is pure: the
// repositories encode the same transitions as conditional UPDATE guards,
// and this package is the single place the legal moves are written down.
package lifecycle

type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
	StatusCompleted Status = "completed"
)

// transitions maps each status to the set of statuses it may move to.
// submitted is the only initial state; rejected, expired and completed
// are terminal.
var transitions = map[Status][]Status{
	StatusSubmitted: {StatusPublished, StatusRejected, StatusExpired},
	StatusPublished: {StatusCompleted},
}

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusPublished, StatusRejected, StatusExpired, StatusCompleted:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
