package core

import (
	"sync"

	"github.com/dkeye/relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Member pairs a joined connection with the peer identity it presented.
type Member struct {
	Conn Connection
	Meta *domain.Member
}

func (m Member) DTO() MemberDTO {
	return MemberDTO{ID: m.Conn.ID(), Name: m.Meta.Peer.Name}
}

// Room is a threadsafe in-memory room.
// Membership is changed only by the registry; everything that reads or
// mutates shared room state for an event runs inside Exec, which is the
// room's single sequence point. It never closes adapter-owned resources.
type Room struct {
	meta domain.Room

	seq sync.Mutex

	mu      sync.RWMutex
	members map[domain.ConnID]Member
	closed  bool

	// guarded by seq
	board  *domain.Board
	sharer domain.ConnID
}

func NewRoom(id domain.RoomID, board *domain.Board) *Room {
	return &Room{
		meta:    domain.Room{ID: id, Board: board != nil},
		members: make(map[domain.ConnID]Member),
		board:   board,
	}
}

func (r *Room) ID() domain.RoomID { return r.meta.ID }

func (r *Room) Meta() domain.Room { return r.meta }

// Exec runs fn while holding the room's sequence point. Events for one room
// are applied strictly one at a time in the order they enter Exec; other
// rooms are unaffected. fn must not block on network I/O.
func (r *Room) Exec(fn func()) {
	r.seq.Lock()
	defer r.seq.Unlock()
	fn()
}

// Board returns the room's board, nil for rooms that are not task boards.
// Callers must be inside Exec.
func (r *Room) Board() *domain.Board { return r.board }

// Sharer reports who is currently sharing a screen. Callers must be inside Exec.
func (r *Room) Sharer() domain.ConnID { return r.sharer }

// SetSharer records the current screen sharer. Callers must be inside Exec.
func (r *Room) SetSharer(id domain.ConnID) { r.sharer = id }

// AddMember reports false when the connection was already a member.
func (r *Room) AddMember(m Member) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := m.Conn.ID()
	if _, ok := r.members[id]; ok {
		return false
	}
	r.members[id] = m
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("sid", string(id)).Msg("member added")
	return true
}

// RemoveMember reports whether id was a member and how many remain.
func (r *Room) RemoveMember(id domain.ConnID) (bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return false, len(r.members)
	}
	delete(r.members, id)
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("sid", string(id)).Msg("member removed")
	return true, len(r.members)
}

// MarkClosed is called by the registry when the room is dropped.
func (r *Room) MarkClosed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *Room) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

func (r *Room) Member(id domain.ConnID) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	return m, ok
}

func (r *Room) HasMember(id domain.ConnID) bool {
	_, ok := r.Member(id)
	return ok
}

func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Members returns a snapshot of the member set.
func (r *Room) Members() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	return out
}

func (r *Room) MembersSnapshot() []MemberDTO {
	members := r.Members()
	out := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, m.DTO())
	}
	return out
}

// PublishResult reports delivery stats/backpressure to the router.
type PublishResult struct {
	SendTo  int
	Dropped []Member
}

// Broadcast sends f to every member except from. An empty from reaches everyone.
func (r *Room) Broadcast(from domain.ConnID, f Frame) PublishResult {
	res := PublishResult{}
	for _, m := range r.Members() {
		if m.Conn.ID() == from {
			continue
		}
		if err := m.Conn.Send(f); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
