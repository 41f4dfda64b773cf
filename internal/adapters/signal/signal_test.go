package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dkeye/relay/internal/app"
	"github.com/dkeye/relay/internal/app/orch"
	"github.com/dkeye/relay/internal/domain"
	"github.com/dkeye/relay/internal/wire"
)

func newServer(t *testing.T, limiter *RateLimiter) (*httptest.Server, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Policy:   app.SimplePolicy{Action: app.DropFrame},
	}
	ctl := NewSignalWSController(o, limiter, Options{ReadLimit: 1 << 15, PingPeriod: time.Second, SendBuffer: 16})

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(context.Background(), c) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, o
}

func dial(t *testing.T, srv *httptest.Server) (*websocket.Conn, welcome) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })

	env := read(t, ws)
	if env.Kind != domain.KindWelcome {
		t.Fatalf("expected welcome, got %s", env.Kind)
	}
	var w welcome
	if err := json.Unmarshal(env.Payload, &w); err != nil {
		t.Fatal(err)
	}
	if w.ID == "" {
		t.Fatal("welcome without connection id")
	}
	return ws, w
}

func read(t *testing.T, ws *websocket.Conn) domain.Envelope {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	env, err := wire.DecodeEnvelope(data)
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func readUntil(t *testing.T, ws *websocket.Conn, kind domain.Kind) domain.Envelope {
	t.Helper()
	for range 10 {
		if env := read(t, ws); env.Kind == kind {
			return env
		}
	}
	t.Fatalf("no %s frame", kind)
	return domain.Envelope{}
}

func write(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	if err := ws.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestJoinPresenceAndDisconnect(t *testing.T) {
	srv, o := newServer(t, nil)
	a, wa := dial(t, srv)
	b, wb := dial(t, srv)

	write(t, a, map[string]any{"kind": "join", "roomId": "r1", "payload": map[string]string{"name": "ann"}})
	readUntil(t, a, domain.KindRoomState)

	write(t, b, map[string]any{"kind": "join", "roomId": "r1"})
	st := readUntil(t, b, domain.KindRoomState)
	if st.RoomID != "r1" {
		t.Fatalf("room-state for %q", st.RoomID)
	}

	joined := readUntil(t, a, domain.KindPresenceJoined)
	if joined.SenderID != wb.ID {
		t.Fatalf("presence-joined from %s, want %s", joined.SenderID, wb.ID)
	}

	_ = b.Close()
	left := readUntil(t, a, domain.KindPresenceLeft)
	if left.SenderID != wb.ID {
		t.Fatalf("presence-left from %s, want %s", left.SenderID, wb.ID)
	}
	members := o.Registry.MembersOf("r1")
	if len(members) != 1 || members[0] != wa.ID {
		t.Fatalf("unexpected members %v", members)
	}
}

func TestSenderIDIsStampedByServer(t *testing.T) {
	srv, _ := newServer(t, nil)
	a, wa := dial(t, srv)
	b, _ := dial(t, srv)
	for _, ws := range []*websocket.Conn{a, b} {
		write(t, ws, map[string]any{"kind": "join", "roomId": "r1"})
		readUntil(t, ws, domain.KindRoomState)
	}

	write(t, a, map[string]any{"kind": "draw", "roomId": "r1", "senderId": "forged", "payload": map[string]int{"x": 1}})

	draw := readUntil(t, b, domain.KindDraw)
	if draw.SenderID != wa.ID {
		t.Fatalf("sender %q, want %q", draw.SenderID, wa.ID)
	}
}

func TestBadFrameKeepsConnection(t *testing.T) {
	srv, _ := newServer(t, nil)
	a, _ := dial(t, srv)

	if err := a.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	env := readUntil(t, a, domain.KindError)
	var n orch.Notice
	if err := json.Unmarshal(env.Payload, &n); err != nil {
		t.Fatal(err)
	}
	if n.Code != domain.CodeMalformed {
		t.Fatalf("unexpected notice %+v", n)
	}

	write(t, a, map[string]any{"kind": "ping"})
	readUntil(t, a, domain.KindPong)
}

func TestRateLimitedFramesAreRejected(t *testing.T) {
	srv, _ := newServer(t, NewRateLimiter(2, time.Minute))
	a, _ := dial(t, srv)

	for range 3 {
		write(t, a, map[string]any{"kind": "ping"})
	}
	readUntil(t, a, domain.KindPong)
	readUntil(t, a, domain.KindPong)
	env := readUntil(t, a, domain.KindError)
	var n orch.Notice
	if err := json.Unmarshal(env.Payload, &n); err != nil {
		t.Fatal(err)
	}
	if n.Code != domain.CodeRateLimited {
		t.Fatalf("unexpected notice %+v", n)
	}
}

func TestInvalidFramesCountAgainstRateLimit(t *testing.T) {
	srv, _ := newServer(t, NewRateLimiter(2, time.Minute))
	a, _ := dial(t, srv)

	for range 3 {
		if err := a.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
			t.Fatal(err)
		}
	}

	var codes []string
	for range 3 {
		env := readUntil(t, a, domain.KindError)
		var n orch.Notice
		if err := json.Unmarshal(env.Payload, &n); err != nil {
			t.Fatal(err)
		}
		codes = append(codes, n.Code)
	}
	want := []string{domain.CodeMalformed, domain.CodeMalformed, domain.CodeRateLimited}
	if !slices.Equal(codes, want) {
		t.Fatalf("codes %v, want %v", codes, want)
	}
}
