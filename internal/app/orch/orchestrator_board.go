package orch

import (
	"github.com/dkeye/relay/internal/app"
	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
	"github.com/dkeye/relay/internal/wire"
	"github.com/rs/zerolog/log"
)

// boardSync is sent to a client whose delta was rejected.
type boardSync struct {
	TaskID domain.TaskID        `json:"taskId"`
	Reason string               `json:"reason"`
	Board  domain.BoardSnapshot `json:"board"`
}

// OnTask reconciles a task-move or task-reorder. Applied deltas are
// broadcast to the whole room, sender included, and handed to the sink;
// stale ones resynchronise the sender only.
func (o *Orchestrator) OnTask(conn core.Connection, env domain.Envelope) {
	delta, err := wire.DecodeTaskDelta(env.Kind, env.Payload)
	if err != nil {
		o.Reject(conn, env, err)
		return
	}
	room, ok := o.Registry.Room(env.RoomID)
	if !ok {
		o.Reject(conn, env, o.notMember(env))
		return
	}

	room.Exec(func() {
		if !accepts(room, env.SenderID) {
			o.Reject(conn, env, o.notMember(env))
			return
		}
		board := room.Board()
		if board == nil {
			o.Reject(conn, env, &domain.MalformedEnvelopeError{
				Kind: env.Kind, Field: "roomId", Reason: "room has no board", Err: domain.ErrNoBoard,
			})
			return
		}

		var out app.Outcome
		if env.Kind == domain.KindTaskMove {
			out, err = o.Reconciler.Move(board, delta)
		} else {
			out, err = o.Reconciler.Reorder(board, delta)
		}
		if err != nil {
			o.Reject(conn, env, err)
			return
		}

		if !out.Applied {
			log.Info().
				Str("module", "orch").
				Str("room", string(room.ID())).
				Str("sid", string(env.SenderID)).
				Str("task", string(delta.TaskID)).
				Err(out.Stale).
				Msg("stale delta, resyncing sender")
			o.sendTo(room, conn, domain.KindBoardSync, room.ID(), boardSync{
				TaskID: delta.TaskID,
				Reason: out.Stale.Reason,
				Board:  out.Resync,
			})
			return
		}

		o.publish(room, domain.KindTaskUpdated, env.SenderID, "", out.Update)
		if o.Sink != nil {
			o.Sink.Persist(room.ID(), out.Update)
		}
	})
}
