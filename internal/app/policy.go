package app

import (
	"github.com/dkeye/relay/internal/core"
	"github.com/rs/zerolog/log"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

// ParseBackpressureAction maps a config value onto an action; unknown values drop.
func ParseBackpressureAction(s string) BackpressureAction {
	switch s {
	case "kick":
		return KickMember
	case "mark":
		return MarkSlow
	case "none":
		return NoAction
	default:
		return DropFrame
	}
}

// Policy decides what happens to a member whose outbound queue is full.
type Policy interface {
	OnBackPressure(room *core.Room, member core.Member) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(room *core.Room, member core.Member) BackpressureAction {
	log.Warn().
		Str("module", "app.policy").
		Str("room", string(room.ID())).
		Str("sid", string(member.Conn.ID())).
		Int("action", int(p.Action)).
		Msg("outbound queue full")
	return p.Action
}
