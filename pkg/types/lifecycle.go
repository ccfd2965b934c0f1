package types

import "fmt"

// Transition table: from -> allowed tos. Terminal states are immutable.
var validTransitions = map[JobStatus][]JobStatus{
	JobPending:    {JobProcessing, JobFailed},
	JobProcessing: {JobDone, JobFailed},
	JobDone:       {},
	JobFailed:     {},
}

// CanTransition checks if moving a job from one status to another is valid.
func CanTransition(from, to JobStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Transition returns an error if the status change is invalid.
func Transition(from, to JobStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	return nil
}

// IsTerminal returns true if the status is a terminal (final) state.
func IsTerminal(status JobStatus) bool {
	return status == JobDone || status == JobFailed
}
