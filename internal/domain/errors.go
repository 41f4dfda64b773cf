package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMalformed     = errors.New("malformed envelope")
	ErrNotMember     = errors.New("sender is not a room member")
	ErrTargetAbsent  = errors.New("target is not a room member")
	ErrStale         = errors.New("stale board state")
	ErrUnknownColumn = fmt.Errorf("%w: unknown column", ErrMalformed)
	ErrNoBoard       = fmt.Errorf("%w: room has no board", ErrMalformed)
	ErrDuplicateTask = errors.New("task already on board")
	ErrRateLimited   = errors.New("rate limited")
)

// Notice codes carried in error frames.
const (
	CodeMalformed     = "malformed"
	CodeRoutingFailed = "routing_failed"
	CodeNotMember     = "not_member"
	CodeRateLimited   = "rate_limited"
)

// MalformedEnvelopeError reports an envelope missing what its kind requires.
type MalformedEnvelopeError struct {
	Kind   Kind
	Field  string
	Reason string
	Err    error
}

func Malformed(kind Kind, field, reason string) *MalformedEnvelopeError {
	return &MalformedEnvelopeError{Kind: kind, Field: field, Reason: reason, Err: ErrMalformed}
}

func (e *MalformedEnvelopeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", e.Kind, e.Field, e.Reason)
}

func (e *MalformedEnvelopeError) Unwrap() error { return e.Err }

// RoutingError reports an event that could not reach its destination.
type RoutingError struct {
	Kind   Kind
	Room   RoomID
	Target ConnID
	Err    error
}

func (e *RoutingError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s in %s to %s: %v", e.Kind, e.Room, e.Target, e.Err)
	}
	return fmt.Sprintf("%s in %s: %v", e.Kind, e.Room, e.Err)
}

func (e *RoutingError) Unwrap() error { return e.Err }

// StaleStateError reports a delta computed against a board that has since moved on.
// It is resolved by resynchronising the sender, never surfaced as a failure.
type StaleStateError struct {
	Task     TaskID
	Column   string
	Revision uint64
	Reason   string
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("task %s: %s", e.Task, e.Reason)
}

func (e *StaleStateError) Unwrap() error { return ErrStale }

// NoticeCode maps an error onto the code sent back to the client.
func NoticeCode(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrNotMember):
		return CodeNotMember
	case errors.Is(err, ErrTargetAbsent):
		return CodeRoutingFailed
	default:
		return CodeMalformed
	}
}
