package domain

type (
	RoomID string
	ConnID string
)

// Room is the metadata the registry and the REST layer share about a room.
type Room struct {
	ID    RoomID `json:"id"`
	Board bool   `json:"board"`
}
