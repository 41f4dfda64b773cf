package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/relay/internal/app"
	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
)

// Handlers serve read-only views of live rooms.
type Handlers struct {
	Registry *app.Registry
}

type roomResponse struct {
	core.RoomInfo
	Members []core.MemberDTO `json:"members"`
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": h.Registry.Len()})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Registry.List()})
}

func (h *Handlers) GetRoom(c *gin.Context) {
	room, ok := h.Registry.Room(domain.RoomID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	resp := roomResponse{Members: room.MembersSnapshot()}
	room.Exec(func() {
		resp.RoomInfo = core.RoomInfo{
			ID:          room.ID(),
			MemberCount: len(resp.Members),
			Board:       room.Meta().Board,
			Sharer:      room.Sharer(),
		}
	})
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) GetBoard(c *gin.Context) {
	room, ok := h.Registry.Room(domain.RoomID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	var (
		snap     domain.BoardSnapshot
		hasBoard bool
	)
	room.Exec(func() {
		if b := room.Board(); b != nil {
			snap, hasBoard = b.Snapshot(), true
		}
	})
	if !hasBoard {
		c.JSON(http.StatusNotFound, gin.H{"error": "room has no board"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
