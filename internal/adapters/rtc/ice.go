package rtc

import (
	"fmt"

	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
)

// ICEServerConfig is one STUN/TURN entry from configuration.
type ICEServerConfig struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

func DefaultICEServers() []webrtc.ICEServer {
	return []webrtc.ICEServer{
		{
			URLs: []string{"stun:stun.l.google.com:19302"},
		},
	}
}

// ICEServers converts configured servers into what clients pass to
// RTCPeerConnection, rejecting URLs pion cannot parse.
func ICEServers(cfg []ICEServerConfig) ([]webrtc.ICEServer, error) {
	if len(cfg) == 0 {
		return DefaultICEServers(), nil
	}
	out := make([]webrtc.ICEServer, 0, len(cfg))
	for _, c := range cfg {
		for _, u := range c.URLs {
			uri, err := stun.ParseURI(u)
			if err != nil {
				return nil, fmt.Errorf("ice server %q: %w", u, err)
			}
			if (uri.Scheme == stun.SchemeTypeTURN || uri.Scheme == stun.SchemeTypeTURNS) && c.Username == "" {
				return nil, fmt.Errorf("ice server %q: turn requires username", u)
			}
		}
		s := webrtc.ICEServer{URLs: c.URLs, Username: c.Username}
		if c.Credential != "" {
			s.Credential = c.Credential
		}
		out = append(out, s)
	}
	return out, nil
}
