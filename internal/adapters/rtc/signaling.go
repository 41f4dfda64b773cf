// Package rtc checks connection-negotiation payloads before the relay
// forwards them, and builds the ICE configuration handed to clients. Media
// itself never passes through the server.
package rtc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pion/ice/v4"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/relay/internal/domain"
	"github.com/dkeye/relay/internal/wire"
)

const DefaultMaxSDPBytes = 64 << 10

// Validator parses offers, answers and ICE candidates with pion so that a
// peer only ever receives something its own WebRTC stack can apply.
type Validator struct {
	MaxSDPBytes int
}

func (v Validator) ValidateSignal(kind domain.Kind, payload json.RawMessage) error {
	switch kind {
	case domain.KindSignalOffer:
		return v.description(kind, payload, webrtc.SDPTypeOffer)
	case domain.KindSignalAnswer:
		return v.description(kind, payload, webrtc.SDPTypeAnswer)
	case domain.KindSignalICE:
		return candidate(kind, payload)
	}
	return domain.Malformed(kind, "kind", "not a signaling kind")
}

func (v Validator) description(kind domain.Kind, payload json.RawMessage, want webrtc.SDPType) error {
	limit := v.MaxSDPBytes
	if limit <= 0 {
		limit = DefaultMaxSDPBytes
	}
	if len(payload) > limit {
		return domain.Malformed(kind, "payload", "session description too large")
	}

	var sd webrtc.SessionDescription
	if err := wire.Unmarshal(payload, &sd); err != nil {
		return domain.Malformed(kind, "payload", "invalid session description")
	}
	if sd.Type != want {
		return domain.Malformed(kind, "type", fmt.Sprintf("expected %s, got %s", want, sd.Type))
	}
	if _, err := sd.Unmarshal(); err != nil {
		log.Debug().Err(err).Str("module", "rtc").Str("kind", string(kind)).Msg("sdp rejected")
		return domain.Malformed(kind, "sdp", "unparsable sdp")
	}
	return nil
}

func candidate(kind domain.Kind, payload json.RawMessage) error {
	var ci webrtc.ICECandidateInit
	if err := wire.Unmarshal(payload, &ci); err != nil {
		return domain.Malformed(kind, "payload", "invalid ice candidate")
	}
	// an empty candidate signals end-of-candidates
	if ci.Candidate == "" {
		return nil
	}
	raw, ok := strings.CutPrefix(ci.Candidate, "candidate:")
	if !ok {
		return domain.Malformed(kind, "candidate", "missing candidate: prefix")
	}
	if _, err := ice.UnmarshalCandidate(raw); err != nil {
		log.Debug().Err(err).Str("module", "rtc").Msg("candidate rejected")
		return domain.Malformed(kind, "candidate", "unparsable candidate")
	}
	return nil
}
