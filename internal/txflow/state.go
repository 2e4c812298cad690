package txflow

import (
	"errors"
	"fmt"
)

// State is a stage in the life of a submitted write call.
type State int

const (
	Submitted State = iota
	Pending
	Confirmed
	Succeeded
	Failed
)

var stateNames = [...]string{"submitted", "pending", "confirmed", "succeeded", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool { return s == Succeeded || s == Failed }

// allowed lists the legal transitions.
var allowed = map[State][]State{
	Submitted: {Pending},
	Pending:   {Confirmed, Failed},
	Confirmed: {Succeeded, Failed},
}

func canTransition(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ErrReverted marks a transaction whose execution was reverted on chain.
var ErrReverted = errors.New("transaction reverted")

// ConfirmationError is returned when finality could not be established: the
// wait timed out, the node failed, or the transaction reverted.
type ConfirmationError struct {
	Hash   string
	Reason string
	Err    error
}

func (e *ConfirmationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("confirming %s: %v: %s", e.Hash, e.Err, e.Reason)
	}
	return fmt.Sprintf("confirming %s: %v", e.Hash, e.Err)
}

func (e *ConfirmationError) Unwrap() error { return e.Err }

// EventNotFoundError is returned when a confirmed receipt lacks the event the
// operation documents. The transaction may still have changed state.
type EventNotFoundError struct {
	Hash      string
	Operation string
	Event     string
	Err       error // decode failure of a matching event, if any
}

func (e *EventNotFoundError) Error() string {
	msg := fmt.Sprintf("%s %s confirmed but emitted no %s event", e.Operation, e.Hash, e.Event)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EventNotFoundError) Unwrap() error { return e.Err }
