// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin

package entity

import (
	"context"
	"net"
	"syscall"
)

// platformListen falls back to net.ListenConfig on platforms without a raw
// socket/bind/listen path wired (see listen_unix.go). o.ListenBacklog has no
// effect here; Go's own listen(2) backlog default applies.
func platformListen(network, address string, o Options) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			return tuneSocket(c, o, true)
		},
	}
	return lc.Listen(context.Background(), network, address)
}
