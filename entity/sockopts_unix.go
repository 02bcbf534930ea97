// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux || darwin

package entity

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// tuneSocket applies SO_REUSEADDR/SO_REUSEPORT/TCP_NODELAY to the raw file
// descriptor behind a net.Conn/net.Listener/net.PacketConn's SyscallConn, by
// way of golang.org/x/sys/unix. raw is left untouched for options the
// platform doesn't support; errors from an individual setsockopt call are
// swallowed the way the teacher's own netopts.go treats byte-order/protocol
// selection as best-effort defaults rather than hard failures.
func tuneSocket(raw syscall.RawConn, o Options, isStream bool) error {
	return raw.Control(func(fd uintptr) {
		if o.ReuseAddr {
			_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		}
		if o.ReusePort {
			_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
		}
		if isStream && o.NoDelay {
			_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		}
	})
}
