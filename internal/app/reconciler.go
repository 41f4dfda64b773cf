package app

import (
	"github.com/dkeye/relay/internal/domain"
)

// Outcome is the result of reconciling one delta against a board.
// Exactly one of Update (Applied) or Resync (rejected) is meaningful.
type Outcome struct {
	Applied bool
	Update  domain.TaskUpdate
	Resync  domain.BoardSnapshot
	Stale   *domain.StaleStateError
}

// Reconciler resolves task deltas against a room's authoritative board.
// It keeps no state of its own: callers hold the room's sequence point, so
// a single revision counter per task is enough to detect conflicts.
type Reconciler struct{}

// Move applies a cross-column move when the task still sits in the source
// column the client saw. Otherwise the sender gets the whole board back.
func (Reconciler) Move(b *domain.Board, d domain.TaskDelta) (Outcome, error) {
	if !b.HasColumn(d.DestinationColumn) {
		return Outcome{}, &domain.MalformedEnvelopeError{
			Kind:   domain.KindTaskMove,
			Field:  "destinationColumn",
			Reason: "unknown column " + d.DestinationColumn,
			Err:    domain.ErrUnknownColumn,
		}
	}
	column, _, ok := b.Locate(d.TaskID)
	if !ok {
		return rejectBoard(b, d.TaskID, "", "unknown task"), nil
	}
	if column != d.SourceColumn {
		return rejectBoard(b, d.TaskID, column, "task is in "+column+", not "+d.SourceColumn), nil
	}
	return apply(b, d.TaskID, column, d.DestinationColumn, d.DestinationIndex), nil
}

// Reorder splices a task within its current column when the client's
// revision matches the board's. Older and newer revisions are both stale.
func (Reconciler) Reorder(b *domain.Board, d domain.TaskDelta) (Outcome, error) {
	column, _, ok := b.Locate(d.TaskID)
	if !ok {
		return rejectBoard(b, d.TaskID, "", "unknown task"), nil
	}
	if rev := b.Revision(d.TaskID); rev != d.Revision {
		stale := &domain.StaleStateError{Task: d.TaskID, Column: column, Revision: rev, Reason: "revision mismatch"}
		return Outcome{Resync: b.ColumnSnapshot(column), Stale: stale}, nil
	}
	return apply(b, d.TaskID, column, column, d.DestinationIndex), nil
}

func apply(b *domain.Board, task domain.TaskID, from, to string, index int) Outcome {
	at, rev := b.Move(task, to, index)
	return Outcome{
		Applied: true,
		Update: domain.TaskUpdate{
			TaskID:    task,
			OldColumn: from,
			NewColumn: to,
			Index:     at,
			Revision:  rev,
		},
	}
}

func rejectBoard(b *domain.Board, task domain.TaskID, column, reason string) Outcome {
	return Outcome{
		Resync: b.Snapshot(),
		Stale:  &domain.StaleStateError{Task: task, Column: column, Revision: b.Revision(task), Reason: reason},
	}
}
