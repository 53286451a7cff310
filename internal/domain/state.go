package domain

import "time"

// EventState is derived on every check; it is never stored.
type EventState string

const (
	EventOpen           EventState = "open"
	EventDeadlinePassed EventState = "deadline_passed"
	EventFinished       EventState = "finished"
)

// EventStateAt derives the state of e at now. A compiled upload makes the event finished
// whatever its deadline. Pass a nil compiled list when only the deadline matters.
func EventStateAt(e *Event, compiled []*CompiledUpload, now time.Time) EventState {
	if len(compiled) != 0 {
		return EventFinished
	}
	if e.DeadlinePassed(now) {
		return EventDeadlinePassed
	}
	return EventOpen
}

// ResetCodeState is the derived validity of a reset code.
type ResetCodeState string

const (
	ResetCodeValid   ResetCodeState = "valid"
	ResetCodeUsed    ResetCodeState = "used"
	ResetCodeExpired ResetCodeState = "expired"
)

// ResetCodeStateAt derives the state of c at now. A code is still valid at exactly
// CreatedAt+ResetCodeTTL.
func ResetCodeStateAt(c *PasswordResetCode, now time.Time) ResetCodeState {
	if c.UsedAt != nil {
		return ResetCodeUsed
	}
	if c.CreatedAt.Add(ResetCodeTTL).Before(now) {
		return ResetCodeExpired
	}
	return ResetCodeValid
}
