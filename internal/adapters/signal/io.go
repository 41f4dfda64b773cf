package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/relay/internal/domain"
	"github.com/dkeye/relay/internal/wire"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Opts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(c.id)).Msg("writePump ctx done")
			c.Close()
			return
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				c.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("writePump write error")
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("ping failed")
				c.Close()
				return
			}
		}
	}
}

// readPump owns the connection's lifetime: when it returns, the connection
// has left every room and is closed.
func (ctl *SignalWSController) readPump(ctx context.Context, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(c.id)).Msg("readPump closing")
		if ctl.Limiter != nil {
			ctl.Limiter.Forget(c.id)
		}
		ctl.Orch.OnDisconnect(c)
	}()

	if ctl.Opts.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.Opts.ReadLimit)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.Opts.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.Opts.pongWait()))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("readPump read error")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		ctl.handleFrame(ctx, c, data)
	}
}

func (ctl *SignalWSController) handleFrame(ctx context.Context, c *WsSignalConn, data []byte) {
	// every frame counts against the budget, including ones that fail to decode
	if ctl.Limiter != nil && !ctl.Limiter.Allow(c.id) {
		env, _ := wire.DecodeEnvelope(data)
		ctl.Orch.Reject(c, env, &domain.RoutingError{Kind: env.Kind, Room: env.RoomID, Err: domain.ErrRateLimited})
		return
	}
	env, err := wire.DecodeEnvelope(data)
	if err != nil {
		ctl.Orch.Reject(c, env, err)
		return
	}
	ctl.Orch.Dispatch(ctx, c, env)
}
