// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux || darwin

package entity

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// platformListen builds network/address's listener via raw socket/bind/
// listen calls rather than net.ListenConfig.Listen, because net.ListenConfig
// has no hook for the listen(2) backlog argument — Go always supplies its
// own internal default. This is the only way to honor o.ListenBacklog.
func platformListen(network, address string, o Options) (net.Listener, error) {
	addr, err := net.ResolveTCPAddr(network, address)
	if err != nil {
		return nil, err
	}

	domain := unix.AF_INET
	if addr.IP == nil || addr.IP.To4() == nil {
		domain = unix.AF_INET6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("entity: socket: %w", err)
	}
	// Closed either on error below, or by the os.File dance at the bottom
	// once net.FileListener has dup'd it.
	closeFd := true
	defer func() {
		if closeFd {
			_ = unix.Close(fd)
		}
	}()

	if o.ReuseAddr {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			return nil, fmt.Errorf("entity: SO_REUSEADDR: %w", err)
		}
	}
	if o.ReusePort {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
			return nil, fmt.Errorf("entity: SO_REUSEPORT: %w", err)
		}
	}

	if domain == unix.AF_INET6 {
		sa := &unix.SockaddrInet6{Port: addr.Port}
		if ip16 := addr.IP.To16(); ip16 != nil {
			copy(sa.Addr[:], ip16)
		}
		if err := unix.Bind(fd, sa); err != nil {
			return nil, fmt.Errorf("entity: bind: %w", err)
		}
	} else {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		if ip4 := addr.IP.To4(); ip4 != nil {
			copy(sa.Addr[:], ip4)
		}
		if err := unix.Bind(fd, sa); err != nil {
			return nil, fmt.Errorf("entity: bind: %w", err)
		}
	}

	backlog := o.ListenBacklog
	if backlog <= 0 {
		backlog = unix.SOMAXCONN
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return nil, fmt.Errorf("entity: listen: %w", err)
	}

	f := os.NewFile(uintptr(fd), fmt.Sprintf("entity-listener(%s)", address))
	ln, lnErr := net.FileListener(f)
	closeErr := f.Close()
	closeFd = false // f.Close() above already closed fd, successfully or not
	if lnErr != nil {
		return nil, fmt.Errorf("entity: FileListener: %w", lnErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("entity: close dup source: %w", closeErr)
	}
	return ln, nil
}
