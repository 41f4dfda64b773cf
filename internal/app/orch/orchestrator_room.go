package orch

import (
	"context"

	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
	"github.com/dkeye/relay/internal/wire"
	"github.com/rs/zerolog/log"
)

type joinPayload struct {
	Name  string `json:"name,omitempty"`
	Board bool   `json:"board,omitempty"`
}

// roomState is what a joiner receives about the room it entered.
type roomState struct {
	Room    domain.Room           `json:"room"`
	Self    domain.ConnID         `json:"self"`
	Members []core.MemberDTO      `json:"members"`
	Sharer  domain.ConnID         `json:"sharer,omitempty"`
	Board   *domain.BoardSnapshot `json:"board,omitempty"`
}

// Join registers conn in the envelope's room, answers with the room state
// and announces the newcomer to everyone else.
func (o *Orchestrator) Join(ctx context.Context, conn core.Connection, env domain.Envelope) {
	var p joinPayload
	if len(env.Payload) > 0 {
		if err := wire.Unmarshal(env.Payload, &p); err != nil {
			o.Reject(conn, env, domain.Malformed(env.Kind, "payload", "invalid json"))
			return
		}
	}
	peer, err := domain.NewPeer(conn.ID(), p.Name)
	if err != nil {
		o.Reject(conn, env, domain.Malformed(env.Kind, "name", err.Error()))
		return
	}

	// Loading happens before any lock is taken; a concurrent creator may
	// win, in which case this seed is discarded.
	var seed *domain.Board
	if (p.Board || o.Boards.Match(env.RoomID)) && !o.Registry.HasRoom(env.RoomID) {
		seed = o.loadBoard(ctx, env.RoomID)
	}

	ms := o.Registry.Join(env.RoomID, core.Member{Conn: conn, Meta: domain.NewMember(peer)}, seed)
	room := ms.Room
	log.Info().
		Str("module", "orch").
		Str("sid", string(conn.ID())).
		Str("room", string(room.ID())).
		Bool("created", ms.Created).
		Bool("already_member", ms.AlreadyMember).
		Msg("join")

	room.Exec(func() {
		state := roomState{
			Room:    room.Meta(),
			Self:    conn.ID(),
			Members: room.MembersSnapshot(),
			Sharer:  room.Sharer(),
		}
		if b := room.Board(); b != nil {
			snap := b.Snapshot()
			state.Board = &snap
		}
		o.sendTo(room, conn, domain.KindRoomState, room.ID(), state)
		if ms.AlreadyMember {
			return
		}
		o.publish(room, domain.KindPresenceJoined, conn.ID(), conn.ID(), peer)
	})
}

// Leave removes conn from room id and acknowledges it. Leaving a room the
// connection is not in does nothing.
func (o *Orchestrator) Leave(conn core.Connection, id domain.RoomID) {
	if o.leave(conn.ID(), id) {
		o.sendTo(nil, conn, domain.KindLeft, id, nil)
	}
}

// leave drops sid from room id and tells the remaining members. It reports
// whether sid was a member.
func (o *Orchestrator) leave(sid domain.ConnID, id domain.RoomID) bool {
	peer := domain.Peer{ID: sid}
	if room, ok := o.Registry.Room(id); ok {
		if m, ok := room.Member(sid); ok {
			peer.Name = m.Meta.Peer.Name
		}
	}
	dep := o.Registry.Leave(id, sid)
	if !dep.Removed {
		return false
	}
	log.Info().
		Str("module", "orch").
		Str("sid", string(sid)).
		Str("room", string(id)).
		Bool("deleted", dep.Deleted).
		Msg("leave")
	if dep.Deleted {
		return true
	}

	room := dep.Room
	room.Exec(func() {
		if room.Sharer() == sid {
			room.SetSharer("")
			o.publish(room, domain.KindScreenShareStop, sid, sid, nil)
		}
		o.publish(room, domain.KindPresenceLeft, sid, sid, peer)
	})
	return true
}

func (o *Orchestrator) loadBoard(ctx context.Context, id domain.RoomID) *domain.Board {
	columns := o.Boards.columns()
	if o.Loader == nil {
		return domain.NewBoard(columns...)
	}
	ctx, cancel := context.WithTimeout(ctx, o.Boards.timeout())
	defer cancel()

	b, err := o.Loader.LoadBoard(ctx, id)
	if err != nil || b == nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(id)).Msg("load board, starting empty")
		return domain.NewBoard(columns...)
	}
	if len(b.Columns()) == 0 {
		for _, c := range columns {
			b.AddColumn(c)
		}
	}
	log.Info().Str("module", "orch").Str("room", string(id)).Int("tasks", b.Len()).Msg("board loaded")
	return b
}
