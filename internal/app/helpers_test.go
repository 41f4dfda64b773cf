package app

import (
	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
)

type stubConn struct {
	id domain.ConnID
}

func (c stubConn) ID() domain.ConnID     { return c.id }
func (c stubConn) Send(core.Frame) error { return nil }
func (c stubConn) Close()                {}

func member(id domain.ConnID) core.Member {
	peer, _ := domain.NewPeer(id, string(id))
	return core.Member{Conn: stubConn{id: id}, Meta: domain.NewMember(peer)}
}
