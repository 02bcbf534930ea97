// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package entity

import (
	"context"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"

	"code.hybscloud.com/netio/iobase"
	"code.hybscloud.com/netio/tcpio"
)

// Factory builds a tcpio.Handler over an accepted connection and starts its
// I/O (one of tcpio.Handler's StartIO* methods). The entity layer never
// picks a framing mode on the application's behalf (spec §9's framing
// dispatcher is explicitly application-selected), so Factory is the hook
// where the caller does that. opts is passed through so the factory can
// apply h.SetRetryDelay(opts.RetryDelay) before starting I/O; Acceptor and
// Connector never call SetRetryDelay themselves since it must precede
// StartIO* and only the factory knows which variant it's calling.
type Factory func(conn net.Conn, notifier iobase.Notifier, opts Options) *tcpio.Handler

// Acceptor owns a net.Listener and runs its accept loop and a
// listener-close watchdog under a single errgroup.Group. Each accepted
// connection's read side runs in the goroutine its tcpio.Handler's StartIO*
// call starts, outside that group — Go's per-connection-goroutine stand-in
// for the reactor's worker threads (spec §5).
type Acceptor struct {
	ln   net.Listener
	opts Options
	sc   StateChange

	grp    *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	count int
}

// StateChange is invoked twice per accepted connection, mirroring
// tcpio.StateChange: on accept with a live WeakHandle and a nil error, and
// again with the terminal error when that handler's notifier fires.
type StateChange func(weak tcpio.WeakHandle, err error)

// NewAcceptor wraps an already-listening net.Listener (built by the caller
// via net.Listen, net.ListenTCP, tls.Listen, ... or entity.Listen, below).
func NewAcceptor(ln net.Listener, sc StateChange, opts ...Option) *Acceptor {
	return &Acceptor{ln: ln, opts: buildOptions(opts), sc: sc}
}

// Listen builds the listener for network/address via platformListen, which
// applies opts' SO_REUSEADDR/SO_REUSEPORT before bind and (on linux/darwin,
// see listen_unix.go) passes opts.ListenBacklog to listen(2) directly —
// net.ListenConfig exposes no hook for the backlog argument itself, only for
// pre-bind socket options, so going through it alone can't honor that
// setting. ctx is accepted for call-site symmetry with net.ListenConfig.Listen
// but platformListen's raw path does not block, so it is not threaded through.
func Listen(_ context.Context, network, address string, opts ...Option) (net.Listener, error) {
	return platformListen(network, address, buildOptions(opts))
}

// Serve applies socket tuning to the listener (best-effort; see
// sockopts_unix.go) and runs the accept loop until ctx is cancelled or a
// fatal accept error occurs. It returns once the accept loop and the
// listener-close watchdog have exited; per-connection read goroutines are
// not waited on.
func (a *Acceptor) Serve(ctx context.Context, newHandler Factory) error {
	if tl, ok := a.ln.(*net.TCPListener); ok {
		if raw, err := tl.SyscallConn(); err == nil {
			_ = tuneSocket(raw, a.opts, true)
		}
	}

	a.ctx, a.cancel = context.WithCancel(ctx)
	a.grp, a.ctx = errgroup.WithContext(a.ctx)

	a.grp.Go(func() error {
		<-a.ctx.Done()
		return a.ln.Close()
	})

	a.grp.Go(func() error {
		for {
			conn, err := a.ln.Accept()
			if err != nil {
				select {
				case <-a.ctx.Done():
					return nil
				default:
					return err
				}
			}
			if a.opts.MaxConnections > 0 && a.tooMany() {
				_ = conn.Close()
				continue
			}
			a.handleConn(conn, newHandler)
		}
	})

	err := a.grp.Wait()
	a.cancel()
	if err == context.Canceled {
		return nil
	}
	return err
}

func (a *Acceptor) tooMany() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count >= a.opts.MaxConnections {
		return true
	}
	a.count++
	return false
}

func (a *Acceptor) releaseSlot() {
	if a.opts.MaxConnections == 0 {
		return
	}
	a.mu.Lock()
	a.count--
	a.mu.Unlock()
}

func (a *Acceptor) handleConn(conn net.Conn, newHandler Factory) {
	if tc, ok := conn.(*net.TCPConn); ok {
		if raw, err := tc.SyscallConn(); err == nil {
			_ = tuneSocket(raw, a.opts, true)
		}
	}

	notifier := func(err error, strong any) {
		a.releaseSlot()
		if a.sc != nil {
			weak, _ := handleFromStrong(strong)
			a.sc(weak, err)
		}
	}
	h := newHandler(conn, notifier, a.opts)
	if a.sc != nil {
		a.sc(tcpio.NewWeakHandle(h), nil)
	}
}

// Close cancels the accept loop and waits for all handler-related
// goroutines the Acceptor started directly (the accept loop and its
// listener-close watchdog) to finish. It does not wait on per-connection
// read loops spawned by individual tcpio.Handler.StartIO* calls, matching
// tcpio's own ownership boundary (a Handler's read goroutine outlives
// Acceptor.Serve returning only until its own StopIO/fail runs).
func (a *Acceptor) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.grp != nil {
		return a.grp.Wait()
	}
	return nil
}

func handleFromStrong(strong any) (tcpio.WeakHandle, bool) {
	s, ok := strong.(tcpio.StrongHandle)
	if !ok {
		return tcpio.WeakHandle{}, false
	}
	return s.Weak(), true
}
