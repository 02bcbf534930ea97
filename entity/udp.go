// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package entity

import (
	"net"

	"code.hybscloud.com/netio/iobase"
	"code.hybscloud.com/netio/udpio"
)

// UDPFactory builds a udpio.Handler over a bound packet connection and
// starts its I/O, mirroring Factory for the stream (tcpio) case.
type UDPFactory func(conn net.PacketConn, notifier iobase.Notifier, opts Options) *udpio.Handler

// UDPEntity owns a net.PacketConn. Unlike Acceptor there is no accept
// loop — one UDP socket serves every peer — so there is nothing for an
// errgroup.Group to supervise beyond the single handler's own read
// goroutine; UDPEntity exists to give that socket the same tuning and
// construction convention as the TCP entities.
type UDPEntity struct {
	conn net.PacketConn
	opts Options
}

// NewUDPEntity wraps an already-bound net.PacketConn (built by the caller
// via net.ListenPacket / net.ListenUDP).
func NewUDPEntity(conn net.PacketConn, opts ...Option) *UDPEntity {
	return &UDPEntity{conn: conn, opts: buildOptions(opts)}
}

// Start applies socket tuning (best-effort) and starts I/O on the
// underlying packet connection via newHandler.
func (u *UDPEntity) Start(notifier iobase.Notifier, newHandler UDPFactory) *udpio.Handler {
	if uc, ok := u.conn.(*net.UDPConn); ok {
		if raw, err := uc.SyscallConn(); err == nil {
			_ = tuneSocket(raw, u.opts, false)
		}
	}
	return newHandler(u.conn, notifier, u.opts)
}
