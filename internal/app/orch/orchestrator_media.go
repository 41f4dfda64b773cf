package orch

import (
	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
	"github.com/dkeye/relay/internal/wire"
	"github.com/rs/zerolog/log"
)

// OnSignal forwards an offer, answer or ICE candidate to exactly one peer.
// If the target is not in the room the sender is told and nothing is
// retried; timeouts are the clients' business.
func (o *Orchestrator) OnSignal(conn core.Connection, env domain.Envelope) {
	if o.Signals != nil {
		if err := o.Signals.ValidateSignal(env.Kind, env.Payload); err != nil {
			o.Reject(conn, env, err)
			return
		}
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
		target, ok := room.Member(env.TargetID)
		if !ok {
			o.Reject(conn, env, &domain.RoutingError{
				Kind:   env.Kind,
				Room:   env.RoomID,
				Target: env.TargetID,
				Err:    domain.ErrTargetAbsent,
			})
			return
		}
		frame, err := wire.Encode(env.Kind, env.RoomID, env.SenderID, env.TargetID, env.Payload)
		if err != nil {
			o.Reject(conn, env, domain.Malformed(env.Kind, "payload", "invalid json"))
			return
		}
		if err := target.Conn.Send(frame); err != nil {
			o.onDropped(room, []core.Member{target})
			return
		}
		log.Debug().
			Str("module", "orch").
			Str("room", string(env.RoomID)).
			Str("from", string(env.SenderID)).
			Str("to", string(env.TargetID)).
			Str("kind", string(env.Kind)).
			Msg("signal forwarded")
	})
}

// OnBroadcast relays whiteboard and screen-share events to every other
// member, in the order the room accepted them.
func (o *Orchestrator) OnBroadcast(conn core.Connection, env domain.Envelope) {
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
		switch env.Kind {
		case domain.KindScreenShareStart:
			room.SetSharer(env.SenderID)
		case domain.KindScreenShareStop:
			if room.Sharer() == env.SenderID {
				room.SetSharer("")
			}
		}
		o.publish(room, env.Kind, env.SenderID, env.SenderID, env.Payload)
	})
}
