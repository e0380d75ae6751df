package documents

import "fmt"

// Status is the lifecycle state of a document.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// transitions lists the states reachable from each state. Error is a
// terminal-ish sink: anything may move there, nothing leaves it except
// a retry back to processing.
var transitions = map[Status][]Status{
	StatusUploaded:   {StatusProcessing, StatusError},
	StatusProcessing: {StatusCompleted, StatusError},
	StatusCompleted:  {StatusError},
	StatusError:      {StatusProcessing},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition validates a status change, returning ErrInvalidTransition
// with both states named when the move is not allowed.
func (s Status) Transition(next Status) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}
	if !s.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return nil
}
