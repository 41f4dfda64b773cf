package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/relay/internal/adapters/signal"
	"github.com/dkeye/relay/internal/app"
	"github.com/dkeye/relay/internal/app/orch"
	"github.com/dkeye/relay/internal/config"
	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
)

type nopConn struct{ id domain.ConnID }

func (c nopConn) ID() domain.ConnID     { return c.id }
func (c nopConn) Send(core.Frame) error { return nil }
func (c nopConn) Close()                {}

func setup(t *testing.T) (*gin.Engine, *app.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := app.NewRegistry()
	o := &orch.Orchestrator{Registry: reg, Policy: app.SimplePolicy{}, Boards: orch.BoardRooms{Prefixes: []string{"proj-"}}}
	ctrl := signal.NewSignalWSController(o, nil, signal.Options{})
	cfg := &config.Config{Mode: "test", Secret: "test-secret"}

	for _, j := range []struct{ conn, room string }{{"a", "lobby"}, {"b", "lobby"}, {"a", "proj-1"}} {
		o.Dispatch(context.Background(), nopConn{id: domain.ConnID(j.conn)}, domain.Envelope{Kind: domain.KindJoin, RoomID: domain.RoomID(j.room)})
	}
	return SetupRouter(context.Background(), cfg, reg, ctrl), reg
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndClientToken(t *testing.T) {
	r, _ := setup(t)
	w := get(t, r, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body struct {
		Status string `json:"status"`
		Rooms  int    `json:"rooms"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Rooms != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatal("expected a session cookie")
	}
}

func TestListRooms(t *testing.T) {
	r, _ := setup(t)
	w := get(t, r, "/api/rooms")
	var body struct {
		Rooms []core.RoomInfo `json:"rooms"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Rooms) != 2 || body.Rooms[0].ID != "lobby" || body.Rooms[0].MemberCount != 2 || !body.Rooms[1].Board {
		t.Fatalf("unexpected rooms %+v", body.Rooms)
	}
}

func TestGetRoom(t *testing.T) {
	r, _ := setup(t)
	w := get(t, r, "/api/rooms/lobby")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body roomResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.ID != "lobby" || len(body.Members) != 2 {
		t.Fatalf("unexpected room %+v", body)
	}

	if w := get(t, r, "/api/rooms/nope"); w.Code != http.StatusNotFound {
		t.Fatalf("missing room: status %d", w.Code)
	}
}

func TestGetBoard(t *testing.T) {
	r, _ := setup(t)
	w := get(t, r, "/api/rooms/proj-1/board")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var snap domain.BoardSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Columns) != len(domain.DefaultColumns) {
		t.Fatalf("unexpected board %+v", snap)
	}

	if w := get(t, r, "/api/rooms/lobby/board"); w.Code != http.StatusNotFound {
		t.Fatalf("room without board: status %d", w.Code)
	}
}
