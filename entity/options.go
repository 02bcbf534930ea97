// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package entity is the supplemental layer SPEC_FULL.md adds above tcpio and
// udpio: acceptors, connectors, and UDP entities that own a listener or
// socket and apply transport-level tuning; an Acceptor runs its accept loop
// and listener-close watchdog as one errgroup.Group. None of this is in spec.md —
// handle.Weak/Strong and the tcpio/udpio handlers are a complete framework
// core on their own — but a framework this shaped is normally reached
// through something that owns accept/connect and socket setup, the way the
// teacher's own options.go/netopts.go package reached its framer through a
// functional-options Protocol/byte-order selection.
package entity

import (
	"time"

	"code.hybscloud.com/netio/internal/retry"
)

// Options configures an Acceptor, Connector, or UDPEntity. The functional
// options pattern and field set are carried over from the teacher's
// options.go (Protocol/byte-order selection replaced here by socket-level
// concerns: backlog, reuse, Nagle, and handler retry policy).
type Options struct {
	// ListenBacklog is passed directly to the platform listen(2) call via
	// entity.Listen's raw socket/bind/listen path (listen_unix.go). Zero
	// uses unix.SOMAXCONN. Has no effect on platforms without that path
	// wired (listen_other.go falls back to net.ListenConfig, which exposes
	// no backlog argument at all).
	ListenBacklog int

	// ReuseAddr sets SO_REUSEADDR on the listening/bound socket.
	ReuseAddr bool

	// ReusePort sets SO_REUSEPORT where the platform supports it, letting
	// multiple Acceptors/UDPEntities share one address for load spreading.
	ReusePort bool

	// NoDelay disables Nagle's algorithm (TCP_NODELAY) on accepted and
	// dialed connections. Ignored by UDPEntity.
	NoDelay bool

	// RetryDelay is handed to every handler this entity creates (see
	// internal/retry.Delay): negative is nonblocking, zero yields and
	// retries, positive sleeps and retries.
	RetryDelay retry.Delay

	// MaxConnections caps concurrently accepted connections for an
	// Acceptor. Zero means unbounded.
	MaxConnections int
}

var defaultOptions = Options{
	ListenBacklog:  0,
	ReuseAddr:      true,
	ReusePort:      false,
	NoDelay:        true,
	RetryDelay:     -1,
	MaxConnections: 0,
}

// Option mutates an Options in place, following the teacher's functional
// options convention.
type Option func(*Options)

func WithListenBacklog(n int) Option {
	return func(o *Options) { o.ListenBacklog = n }
}

func WithReuseAddr(v bool) Option {
	return func(o *Options) { o.ReuseAddr = v }
}

func WithReusePort(v bool) Option {
	return func(o *Options) { o.ReusePort = v }
}

func WithNoDelay(v bool) Option {
	return func(o *Options) { o.NoDelay = v }
}

// WithRetryDelay sets the wait policy handlers created by this entity use
// when the underlying transport returns iox.ErrWouldBlock.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}

// WithBlock enables cooperative blocking (yield-and-retry) on would-block.
func WithBlock() Option {
	return func(o *Options) { o.RetryDelay = 0 }
}

// WithNonblock forces nonblocking behavior (return would-block immediately).
func WithNonblock() Option {
	return func(o *Options) { o.RetryDelay = -1 }
}

func WithMaxConnections(n int) Option {
	return func(o *Options) { o.MaxConnections = n }
}

func buildOptions(opts []Option) Options {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
