// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package entity

import (
	"context"
	"net"

	"code.hybscloud.com/netio/iobase"
	"code.hybscloud.com/netio/tcpio"
)

// Connector is the client-side counterpart to Acceptor: it dials out and
// wraps the resulting connection the same way Acceptor wraps an accepted
// one, applying the same socket tuning. It has no StateChange callback: the
// caller's notifier goes to the handler directly.
type Connector struct {
	dialer net.Dialer
	opts   Options
}

// NewConnector builds a Connector. dialer is used as-is (zero value dials
// with no timeout, matching net.Dial's defaults); callers wanting a
// connect timeout set dialer.Timeout before passing it in.
func NewConnector(dialer net.Dialer, opts ...Option) *Connector {
	return &Connector{dialer: dialer, opts: buildOptions(opts)}
}

// Connect dials network/address and starts I/O on the resulting connection
// via newHandler, returning the live WeakHandle. notifier is wired to the
// handler directly (there is no background accept loop to route a
// StateChange through, unlike Acceptor).
func (c *Connector) Connect(ctx context.Context, network, address string, notifier iobase.Notifier, newHandler Factory) (tcpio.WeakHandle, error) {
	conn, err := c.dialer.DialContext(ctx, network, address)
	if err != nil {
		return tcpio.WeakHandle{}, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		if raw, err := tc.SyscallConn(); err == nil {
			_ = tuneSocket(raw, c.opts, true)
		}
	}
	h := newHandler(conn, notifier, c.opts)
	return tcpio.NewWeakHandle(h), nil
}
