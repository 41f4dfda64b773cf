package domain

import "encoding/json"

// Kind enumerates the envelope types the relay understands.
type Kind string

// Inbound kinds.
const (
	KindJoin             Kind = "join"
	KindLeave            Kind = "leave"
	KindSignalOffer      Kind = "signal-offer"
	KindSignalAnswer     Kind = "signal-answer"
	KindSignalICE        Kind = "signal-ice"
	KindScreenShareStart Kind = "screen-share-start"
	KindScreenShareStop  Kind = "screen-share-stop"
	KindDraw             Kind = "draw"
	KindWhiteboardClear  Kind = "whiteboard-clear"
	KindTaskMove         Kind = "task-move"
	KindTaskReorder      Kind = "task-reorder"
)

// Control kinds answered by the transport adapter itself.
const (
	KindPing   Kind = "ping"
	KindPong   Kind = "pong"
	KindWhoAmI Kind = "whoami"
)

// Outbound kinds produced by the relay.
const (
	KindWelcome        Kind = "welcome"
	KindRoomState      Kind = "room-state"
	KindPresenceJoined Kind = "presence-joined"
	KindPresenceLeft   Kind = "presence-left"
	KindLeft           Kind = "left"
	KindTaskUpdated    Kind = "task-updated"
	KindBoardSync      Kind = "board-sync"
	KindError          Kind = "error"
)

// Class is the routing policy applied to a kind.
type Class int

const (
	ClassUnknown Class = iota
	ClassPresence
	ClassTargeted
	ClassBroadcast
	ClassState
	ClassControl
)

var kindClasses = map[Kind]Class{
	KindJoin:             ClassPresence,
	KindLeave:            ClassPresence,
	KindSignalOffer:      ClassTargeted,
	KindSignalAnswer:     ClassTargeted,
	KindSignalICE:        ClassTargeted,
	KindScreenShareStart: ClassBroadcast,
	KindScreenShareStop:  ClassBroadcast,
	KindDraw:             ClassBroadcast,
	KindWhiteboardClear:  ClassBroadcast,
	KindTaskMove:         ClassState,
	KindTaskReorder:      ClassState,
	KindPing:             ClassControl,
	KindWhoAmI:           ClassControl,
}

// Class reports how the router treats k. Outbound-only kinds are ClassUnknown.
func (k Kind) Class() Class {
	return kindClasses[k]
}

// Envelope is the routable unit of relay traffic.
type Envelope struct {
	Kind     Kind            `json:"kind"`
	RoomID   RoomID          `json:"roomId,omitempty"`
	SenderID ConnID          `json:"senderId,omitempty"`
	TargetID ConnID          `json:"targetId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Validate checks the fields every kind requires. Payload shapes of
// task and signaling kinds are checked by their decoders.
func (e Envelope) Validate() error {
	class := e.Kind.Class()
	switch {
	case e.Kind == "":
		return Malformed(e.Kind, "kind", "missing")
	case class == ClassUnknown:
		return Malformed(e.Kind, "kind", "unknown kind")
	case class == ClassControl:
		return nil
	case e.RoomID == "":
		return Malformed(e.Kind, "roomId", "missing")
	}

	switch class {
	case ClassTargeted:
		if e.TargetID == "" {
			return Malformed(e.Kind, "targetId", "missing")
		}
		if e.TargetID == e.SenderID {
			return Malformed(e.Kind, "targetId", "cannot target self")
		}
		if len(e.Payload) == 0 {
			return Malformed(e.Kind, "payload", "missing")
		}
	case ClassState:
		if len(e.Payload) == 0 {
			return Malformed(e.Kind, "payload", "missing")
		}
	default:
		if e.TargetID != "" {
			return Malformed(e.Kind, "targetId", "only allowed on signaling kinds")
		}
		if e.Kind == KindDraw && len(e.Payload) == 0 {
			return Malformed(e.Kind, "payload", "missing")
		}
	}
	return nil
}

// TaskDelta is a client's proposed board mutation.
type TaskDelta struct {
	TaskID            TaskID `json:"taskId"`
	SourceColumn      string `json:"sourceColumn,omitempty"`
	DestinationColumn string `json:"destinationColumn,omitempty"`
	DestinationIndex  int    `json:"destinationIndex"`
	Revision          uint64 `json:"revision"`
}

// TaskUpdate is the reconciled outcome broadcast as task-updated.
type TaskUpdate struct {
	TaskID    TaskID `json:"taskId"`
	OldColumn string `json:"oldColumn"`
	NewColumn string `json:"newColumn"`
	Index     int    `json:"index"`
	Revision  uint64 `json:"revision"`
}
