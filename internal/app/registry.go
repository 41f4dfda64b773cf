package app

import (
	"cmp"
	"slices"
	"sync"

	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry maps room identifiers to live rooms and connections to the rooms
// they joined. Rooms are created on first join and dropped in the same
// critical section that removes their last member.
type Registry struct {
	mu     sync.Mutex
	rooms  map[domain.RoomID]*core.Room
	joined map[domain.ConnID][]domain.RoomID
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[domain.RoomID]*core.Room),
		joined: make(map[domain.ConnID][]domain.RoomID),
	}
}

// Membership is the result of a join.
type Membership struct {
	Room          *core.Room
	Members       []core.MemberDTO
	Created       bool
	AlreadyMember bool
}

// Departure is the result of a leave.
type Departure struct {
	Room      *core.Room
	Removed   bool
	Deleted   bool
	Remaining int
}

// Join adds m to room id, creating the room with seed as its board when the
// room does not exist yet. seed is ignored for existing rooms. Joining twice
// returns the existing membership.
func (r *Registry) Join(id domain.RoomID, m core.Member, seed *domain.Board) Membership {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := Membership{}
	room, ok := r.rooms[id]
	if !ok {
		room = core.NewRoom(id, seed)
		r.rooms[id] = room
		res.Created = true
		log.Info().Str("module", "app.registry").Str("room", string(id)).Bool("board", seed != nil).Msg("room created")
	}
	res.Room = room

	sid := m.Conn.ID()
	if !room.AddMember(m) {
		res.AlreadyMember = true
	} else {
		r.joined[sid] = append(r.joined[sid], id)
	}
	res.Members = room.MembersSnapshot()
	return res
}

// Leave removes sid from room id. Leaving a room the connection never
// joined is a no-op.
func (r *Registry) Leave(id domain.RoomID, sid domain.ConnID) Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return Departure{}
	}
	removed, remaining := room.RemoveMember(sid)
	if !removed {
		return Departure{Room: room, Remaining: remaining}
	}

	rooms := slices.DeleteFunc(r.joined[sid], func(rid domain.RoomID) bool { return rid == id })
	if len(rooms) == 0 {
		delete(r.joined, sid)
	} else {
		r.joined[sid] = rooms
	}

	dep := Departure{Room: room, Removed: true, Remaining: remaining}
	if remaining == 0 {
		delete(r.rooms, id)
		room.MarkClosed()
		dep.Deleted = true
		log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room deleted")
	}
	return dep
}

// Room returns the live room for id.
func (r *Registry) Room(id domain.RoomID) (*core.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	return room, ok
}

func (r *Registry) HasRoom(id domain.RoomID) bool {
	_, ok := r.Room(id)
	return ok
}

// MembersOf returns a snapshot of the connection ids in room id.
func (r *Registry) MembersOf(id domain.RoomID) []domain.ConnID {
	room, ok := r.Room(id)
	if !ok {
		return nil
	}
	members := room.Members()
	out := make([]domain.ConnID, 0, len(members))
	for _, m := range members {
		out = append(out, m.Conn.ID())
	}
	return out
}

// RoomsOf returns the rooms sid belongs to, in join order.
func (r *Registry) RoomsOf(sid domain.ConnID) []domain.RoomID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.joined[sid])
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

func (r *Registry) List() []core.RoomInfo {
	r.mu.Lock()
	rooms := make([]*core.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.Unlock()

	out := make([]core.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, core.RoomInfo{
			ID:          room.ID(),
			MemberCount: room.MemberCount(),
			Board:       room.Meta().Board,
		})
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
