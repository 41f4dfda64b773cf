// Package domain contains entities without transport, just meta-data and the
// board bookkeeping shared by task-board rooms.
package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxPeerNameLen  = 36
	DefaultPeerName = "guest"
)

var (
	ErrPeerNameTooLong = errors.New("peer name too long")
	ErrPeerNameEmpty   = errors.New("peer name empty")
)

// Peer is the identity a connection presents to the rest of a room.
type Peer struct {
	ID   ConnID `json:"id"`
	Name string `json:"name"`
}

// NewConnID issues an identifier unique to one transport session.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// NewPeer builds a peer, falling back to DefaultPeerName for a blank name.
func NewPeer(id ConnID, name string) (*Peer, error) {
	p := &Peer{ID: id, Name: DefaultPeerName}
	if strings.TrimSpace(name) == "" {
		return p, nil
	}
	if err := p.SetName(name); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Peer) SetName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return ErrPeerNameEmpty
	}
	if len(name) > MaxPeerNameLen {
		return ErrPeerNameTooLong
	}
	p.Name = name
	return nil
}
