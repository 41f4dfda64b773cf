package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/relay/internal/app/orch"
	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
	"github.com/dkeye/relay/internal/wire"
)

const writeWait = 5 * time.Second

// Options tune one WebSocket session.
type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int
	ICEServers []webrtc.ICEServer
}

func (o Options) pongWait() time.Duration {
	return o.PingPeriod * 10 / 9
}

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Limiter *RateLimiter
	Opts    Options
}

func NewSignalWSController(o *orch.Orchestrator, limiter *RateLimiter, opts Options) *SignalWSController {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	return &SignalWSController{Orch: o, Limiter: limiter, Opts: opts}
}

// WsSignalConn is the WebSocket side of core.Connection. Frames queue on a
// bounded channel drained by writePump.
type WsSignalConn struct {
	id     domain.ConnID
	conn   *websocket.Conn
	send   chan core.Frame
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) ID() domain.ConnID { return c.id }

func (c *WsSignalConn) Send(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
	c.cancel()
}

type welcome struct {
	ID         domain.ConnID      `json:"id"`
	IceServers []webrtc.ICEServer `json:"iceServers"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	conn := &WsSignalConn{
		id:     domain.NewConnID(),
		conn:   ws,
		send:   make(chan core.Frame, ctl.Opts.SendBuffer),
		cancel: cancel,
	}
	log.Info().Str("module", "signal").Str("sid", string(conn.id)).Str("client", token).Msg("new WS connection")

	frame, err := wire.Encode(domain.KindWelcome, "", "", "", welcome{ID: conn.id, IceServers: ctl.Opts.ICEServers})
	if err == nil {
		_ = conn.Send(frame)
	}

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, conn)
}
