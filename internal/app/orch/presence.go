package orch

import (
	"github.com/dkeye/relay/internal/core"
	"github.com/rs/zerolog/log"
)

// OnDisconnect is the only cleanup path for a dropped connection. It leaves
// every room the connection joined, tells the remaining members, and closes
// the connection. It returns once all of that is done.
func (o *Orchestrator) OnDisconnect(conn core.Connection) {
	sid := conn.ID()
	rooms := o.Registry.RoomsOf(sid)
	for _, id := range rooms {
		o.leave(sid, id)
	}
	conn.Close()
	log.Info().Str("module", "orch.presence").Str("sid", string(sid)).Int("rooms", len(rooms)).Msg("disconnect handled")
}
