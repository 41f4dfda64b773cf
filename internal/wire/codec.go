// Package wire encodes and decodes the JSON frames exchanged with clients.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/dkeye/relay/internal/domain"
)

var api = sonic.ConfigStd

// Unmarshal decodes data with the relay's JSON configuration.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// Marshal encodes v with the relay's JSON configuration.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// DecodeEnvelope parses an inbound frame. Structural problems are reported as
// MalformedEnvelopeError so the caller can reject the frame without closing.
func DecodeEnvelope(data []byte) (domain.Envelope, error) {
	var env domain.Envelope
	if err := api.Unmarshal(data, &env); err != nil {
		return domain.Envelope{}, &domain.MalformedEnvelopeError{
			Field:  "frame",
			Reason: "invalid json",
			Err:    fmt.Errorf("%w: %v", domain.ErrMalformed, err),
		}
	}
	return env, nil
}

// Encode builds an outbound frame. payload may be nil, a json.RawMessage
// forwarded untouched, or any value that is marshalled.
func Encode(kind domain.Kind, room domain.RoomID, sender, target domain.ConnID, payload any) ([]byte, error) {
	env := domain.Envelope{Kind: kind, RoomID: room, SenderID: sender, TargetID: target}
	switch p := payload.(type) {
	case nil:
	case json.RawMessage:
		env.Payload = p
	default:
		raw, err := api.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", kind, err)
		}
		env.Payload = raw
	}
	return api.Marshal(env)
}

type movePayload struct {
	TaskID            domain.TaskID `json:"taskId"`
	SourceColumn      string        `json:"sourceColumn"`
	DestinationColumn string        `json:"destinationColumn"`
	DestinationIndex  *int          `json:"destinationIndex"`
	Revision          *uint64       `json:"revision"`
}

type reorderPayload struct {
	TaskID           domain.TaskID `json:"taskId"`
	Revision         *uint64       `json:"revision"`
	DestinationIndex *int          `json:"destinationIndex"`
}

// DecodeTaskDelta parses the payload of a task-move or task-reorder envelope
// and checks that every field the kind requires is present.
func DecodeTaskDelta(kind domain.Kind, payload json.RawMessage) (domain.TaskDelta, error) {
	switch kind {
	case domain.KindTaskMove:
		var p movePayload
		if err := api.Unmarshal(payload, &p); err != nil {
			return domain.TaskDelta{}, domain.Malformed(kind, "payload", "invalid json")
		}
		switch {
		case p.TaskID == "":
			return domain.TaskDelta{}, domain.Malformed(kind, "taskId", "missing")
		case p.SourceColumn == "":
			return domain.TaskDelta{}, domain.Malformed(kind, "sourceColumn", "missing")
		case p.DestinationColumn == "":
			return domain.TaskDelta{}, domain.Malformed(kind, "destinationColumn", "missing")
		case p.DestinationIndex == nil:
			return domain.TaskDelta{}, domain.Malformed(kind, "destinationIndex", "missing")
		}
		d := domain.TaskDelta{
			TaskID:            p.TaskID,
			SourceColumn:      p.SourceColumn,
			DestinationColumn: p.DestinationColumn,
			DestinationIndex:  *p.DestinationIndex,
		}
		if p.Revision != nil {
			d.Revision = *p.Revision
		}
		return d, nil
	case domain.KindTaskReorder:
		var p reorderPayload
		if err := api.Unmarshal(payload, &p); err != nil {
			return domain.TaskDelta{}, domain.Malformed(kind, "payload", "invalid json")
		}
		switch {
		case p.TaskID == "":
			return domain.TaskDelta{}, domain.Malformed(kind, "taskId", "missing")
		case p.Revision == nil:
			return domain.TaskDelta{}, domain.Malformed(kind, "revision", "missing")
		case p.DestinationIndex == nil:
			return domain.TaskDelta{}, domain.Malformed(kind, "destinationIndex", "missing")
		}
		return domain.TaskDelta{
			TaskID:           p.TaskID,
			Revision:         *p.Revision,
			DestinationIndex: *p.DestinationIndex,
		}, nil
	}
	return domain.TaskDelta{}, domain.Malformed(kind, "kind", "not a task kind")
}
