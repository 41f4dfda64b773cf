package orch

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/relay/internal/app"
	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
	"github.com/dkeye/relay/internal/wire"
)

// fakeConn records every frame it is sent.
type fakeConn struct {
	id domain.ConnID

	mu     sync.Mutex
	frames []domain.Envelope
	full   bool
	closed bool
}

func newConn(id string) *fakeConn { return &fakeConn{id: domain.ConnID(id)} }

func (c *fakeConn) ID() domain.ConnID { return c.id }

func (c *fakeConn) Send(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if c.full {
		return core.ErrBackpressure
	}
	env, err := wire.DecodeEnvelope(f)
	if err != nil {
		return err
	}
	c.frames = append(c.frames, env)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) received() []domain.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Envelope(nil), c.frames...)
}

func (c *fakeConn) ofKind(k domain.Kind) []domain.Envelope {
	var out []domain.Envelope
	for _, env := range c.received() {
		if env.Kind == k {
			out = append(out, env)
		}
	}
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

func newOrchestrator() *Orchestrator {
	return &Orchestrator{
		Registry: app.NewRegistry(),
		Policy:   app.SimplePolicy{Action: app.DropFrame},
		Boards:   BoardRooms{Prefixes: []string{"proj-"}},
	}
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func dispatch(o *Orchestrator, c *fakeConn, kind domain.Kind, room string, payload json.RawMessage) {
	o.Dispatch(context.Background(), c, domain.Envelope{Kind: kind, RoomID: domain.RoomID(room), Payload: payload})
}

func join(o *Orchestrator, c *fakeConn, room string) {
	dispatch(o, c, domain.KindJoin, room, nil)
}

func notice(t *testing.T, env domain.Envelope) Notice {
	t.Helper()
	var n Notice
	if err := json.Unmarshal(env.Payload, &n); err != nil {
		t.Fatalf("decode notice: %v", err)
	}
	return n
}

func lastError(t *testing.T, c *fakeConn) Notice {
	t.Helper()
	errs := c.ofKind(domain.KindError)
	if len(errs) == 0 {
		t.Fatalf("%s: expected an error frame, got %v", c.id, kinds(c))
	}
	return notice(t, errs[len(errs)-1])
}

func kinds(c *fakeConn) []domain.Kind {
	var out []domain.Kind
	for _, env := range c.received() {
		out = append(out, env.Kind)
	}
	return out
}
