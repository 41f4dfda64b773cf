package orch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dkeye/relay/internal/app"
	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
	"github.com/dkeye/relay/internal/wire"
	"github.com/rs/zerolog/log"
)

// SignalValidator checks connection-negotiation payloads before they are
// forwarded to a peer.
type SignalValidator interface {
	ValidateSignal(kind domain.Kind, payload json.RawMessage) error
}

// BoardRooms decides which rooms carry a task board and how it is seeded.
type BoardRooms struct {
	Prefixes    []string
	Columns     []string
	LoadTimeout time.Duration
}

func (b BoardRooms) Match(id domain.RoomID) bool {
	for _, p := range b.Prefixes {
		if p != "" && strings.HasPrefix(string(id), p) {
			return true
		}
	}
	return false
}

func (b BoardRooms) columns() []string {
	if len(b.Columns) == 0 {
		return domain.DefaultColumns
	}
	return b.Columns
}

func (b BoardRooms) timeout() time.Duration {
	if b.LoadTimeout <= 0 {
		return 3 * time.Second
	}
	return b.LoadTimeout
}

// Orchestrator is the event router. Every inbound envelope enters through
// Dispatch; shared room state is only touched inside the room's Exec.
type Orchestrator struct {
	Registry   *app.Registry
	Policy     app.Policy
	Reconciler app.Reconciler
	Loader     core.BoardLoader
	Sink       core.BoardSink
	Signals    SignalValidator
	Boards     BoardRooms
}

// Notice is the payload of an error frame.
type Notice struct {
	Code    string        `json:"code"`
	Reason  string        `json:"reason"`
	RefKind domain.Kind   `json:"refKind,omitempty"`
	Target  domain.ConnID `json:"targetId,omitempty"`
}

type whoAmI struct {
	ID    domain.ConnID   `json:"id"`
	Rooms []domain.RoomID `json:"rooms"`
}

// Dispatch routes one inbound envelope from conn. The sender is always
// taken from the connection, never from the frame.
func (o *Orchestrator) Dispatch(ctx context.Context, conn core.Connection, env domain.Envelope) {
	env.SenderID = conn.ID()
	if err := env.Validate(); err != nil {
		o.Reject(conn, env, err)
		return
	}

	switch env.Kind.Class() {
	case domain.ClassPresence:
		if env.Kind == domain.KindJoin {
			o.Join(ctx, conn, env)
		} else {
			o.Leave(conn, env.RoomID)
		}
	case domain.ClassTargeted:
		o.OnSignal(conn, env)
	case domain.ClassBroadcast:
		o.OnBroadcast(conn, env)
	case domain.ClassState:
		o.OnTask(conn, env)
	case domain.ClassControl:
		o.onControl(conn, env)
	}
}

func (o *Orchestrator) onControl(conn core.Connection, env domain.Envelope) {
	switch env.Kind {
	case domain.KindPing:
		o.sendTo(nil, conn, domain.KindPong, "", nil)
	case domain.KindWhoAmI:
		rooms := o.Registry.RoomsOf(conn.ID())
		if rooms == nil {
			rooms = []domain.RoomID{}
		}
		o.sendTo(nil, conn, domain.KindWhoAmI, "", whoAmI{ID: conn.ID(), Rooms: rooms})
	}
}

// Reject sends an error notice for env back to conn. The connection stays open.
func (o *Orchestrator) Reject(conn core.Connection, env domain.Envelope, err error) {
	n := Notice{
		Code:    domain.NoticeCode(err),
		Reason:  err.Error(),
		RefKind: env.Kind,
	}
	var rerr *domain.RoutingError
	if errors.As(err, &rerr) {
		n.Target = rerr.Target
	}
	log.Info().
		Str("module", "orch").
		Str("sid", string(conn.ID())).
		Str("room", string(env.RoomID)).
		Str("kind", string(env.Kind)).
		Str("code", n.Code).
		Err(err).
		Msg("envelope rejected")
	o.sendTo(nil, conn, domain.KindError, env.RoomID, n)
}

// accepts reports whether sid may act in room. A room looked up just before
// its last member left is closed and accepts nobody.
func accepts(room *core.Room, sid domain.ConnID) bool {
	return !room.Closed() && room.HasMember(sid)
}

func (o *Orchestrator) notMember(env domain.Envelope) error {
	return &domain.RoutingError{Kind: env.Kind, Room: env.RoomID, Err: domain.ErrNotMember}
}

// sendTo delivers one frame to conn. room is used for the backpressure
// policy and may be nil for replies outside any room.
func (o *Orchestrator) sendTo(room *core.Room, conn core.Connection, kind domain.Kind, roomID domain.RoomID, payload any) {
	frame, err := wire.Encode(kind, roomID, "", "", payload)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("kind", string(kind)).Msg("encode frame")
		return
	}
	if err := conn.Send(frame); err != nil {
		if room == nil {
			log.Warn().Err(err).Str("module", "orch").Str("sid", string(conn.ID())).Msg("reply dropped")
			return
		}
		if m, ok := room.Member(conn.ID()); ok {
			o.onDropped(room, []core.Member{m})
		}
	}
}

// publish encodes one frame and fans it out to every member of room except
// exclude. Callers hold the room's sequence point.
func (o *Orchestrator) publish(room *core.Room, kind domain.Kind, sender, exclude domain.ConnID, payload any) {
	frame, err := wire.Encode(kind, room.ID(), sender, "", payload)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("kind", string(kind)).Msg("encode frame")
		return
	}
	res := room.Broadcast(exclude, frame)
	o.onDropped(room, res.Dropped)
}

func (o *Orchestrator) onDropped(room *core.Room, dropped []core.Member) {
	if o.Policy == nil {
		return
	}
	for _, slow := range dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			// Close ends the transport's read loop, which runs OnDisconnect.
			slow.Conn.Close()
		case app.MarkSlow, app.DropFrame, app.NoAction:
		}
	}
}
