package core

import (
	"context"
	"errors"

	"github.com/dkeye/relay/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mock_core.go -package=core

// Frame is an encoded outbound envelope.
type Frame []byte

// ErrBackpressure is returned by Send when a connection's outbound queue is full.
var ErrBackpressure = errors.New("backpressure")

// Connection abstracts one client session's transport endpoint.
// Owned by the adapter; the relay only keeps a non-owning reference.
type Connection interface {
	ID() domain.ConnID
	// Send queues f for delivery and never blocks. It silently discards
	// frames once Close has run.
	Send(f Frame) error
	// Close marks the connection dead. The adapter then runs presence
	// cleanup on its own goroutine; Close must not call back into the router.
	Close()
}

// BoardLoader provides initial board contents when a task-board room is created.
type BoardLoader interface {
	LoadBoard(ctx context.Context, room domain.RoomID) (*domain.Board, error)
}

// BoardSink receives every reconciled task update. Persist must not block;
// failures are the sink's to log and retry.
type BoardSink interface {
	Persist(room domain.RoomID, update domain.TaskUpdate)
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID   domain.ConnID `json:"id"`
	Name string        `json:"name"`
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
	Board       bool          `json:"board"`
	Sharer      domain.ConnID `json:"sharer,omitempty"`
}
