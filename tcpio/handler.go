// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tcpio is the concrete TCP handler kind referenced by spec §9's
// design notes ("implementations are two concrete handler kinds"). It
// wires iobase.Base, framing.Dispatcher, and a net.Conn together behind the
// handle.Core contract, so handle.Weak[Handler, ...] / handle.Strong can
// operate on it.
//
// The read loop is this package's realization of a "reactor worker thread
// driving completion callbacks" (spec §5) — the minimal idiomatic-Go
// equivalent of the asio-style async_read completion chain the spec leaves
// external: one goroutine per connection, performing blocking reads sized
// by the framing dispatcher.
package tcpio

import (
	"net"
	"sync"

	"code.hybscloud.com/netio/buffer"
	"code.hybscloud.com/netio/framing"
	"code.hybscloud.com/netio/handle"
	"code.hybscloud.com/netio/internal/retry"
	"code.hybscloud.com/netio/iobase"
	"code.hybscloud.com/netio/queue"
)

// MsgHandler is the message handler callback (spec §6). Returning false
// closes the connection.
type MsgHandler func(msg []byte, strong StrongHandle, remote net.Addr) bool

// StateChange is the state-change callback (spec §6), invoked on open and
// close.
type StateChange func(weak WeakHandle, err error)

// StrongHandle and WeakHandle instantiate the generic handle types over
// Handler, avoiding the verbose four-type-parameter spelling at call sites.
type (
	StrongHandle = handle.Strong[Handler, net.Addr, net.Conn, *Handler]
	WeakHandle   = handle.Weak[Handler, net.Addr, net.Conn, *Handler]
)

// Handler is the per-connection TCP I/O handler.
type Handler struct {
	base *iobase.Base[net.Addr]
	conn net.Conn

	retryDelay retry.Delay

	mu         sync.Mutex
	dispatcher *framing.Dispatcher
	msgHandler MsgHandler

	closeOnce sync.Once
}

// NewWeakHandle constructs a WeakHandle over h. The entity layer uses this
// to hand a freshly accepted connection's handle to its StateChange
// callback; applications otherwise receive WeakHandle values only this way
// or via Strong.Weak.
func NewWeakHandle(h *Handler) WeakHandle {
	return handle.NewWeak[Handler, net.Addr, net.Conn, *Handler](h)
}

// NewHandler constructs a Handler wrapping conn. notifier is invoked at
// most once, on terminal error or orderly close (spec §3's "notifier"
// field). This is an entity-layer constructor: applications never call it
// directly, they receive a WeakHandle via a StateChange callback.
func NewHandler(conn net.Conn, notifier iobase.Notifier) *Handler {
	h := &Handler{
		base:       iobase.New[net.Addr](notifier),
		conn:       conn,
		retryDelay: -1, // nonblock by default, matching the teacher's defaultOptions.RetryDelay
	}
	h.base.SetRemoteEndpoint(conn.RemoteAddr())
	return h
}

// SetRetryDelay configures the would-block retry policy used for reads and
// writes (see internal/retry). Must be called before StartIO*.
func (h *Handler) SetRetryDelay(d retry.Delay) { h.retryDelay = d }

// IsIOStarted implements handle.Core.
func (h *Handler) IsIOStarted() bool { return h.base.IsStarted() }

// OutputQueueStats implements handle.Core.
func (h *Handler) OutputQueueStats() queue.Stats { return h.base.OutputQueueStats() }

// RemoteAddr returns the connection's remote address.
func (h *Handler) RemoteAddr() net.Addr { return h.base.RemoteEndpoint() }

// Socket returns the underlying connection (spec §4.4's get_socket).
func (h *Handler) Socket() net.Conn { return h.conn }

// Send implements handle.Core.
func (h *Handler) Send(buf buffer.Shared) bool {
	return h.enqueue(buf, nil, false)
}

// SendTo implements handle.Core. TCP has no per-send destination; the
// endpoint argument is ignored and the buffer goes to the connection's
// single peer, per spec §3 ("absent for stream handlers").
func (h *Handler) SendTo(buf buffer.Shared, _ net.Addr) bool {
	return h.Send(buf)
}

func (h *Handler) enqueue(buf buffer.Shared, endp net.Addr, hasEndp bool) bool {
	if h.base.StartWriteSetup(buf, endp, hasEndp) {
		h.issueWrite(buf)
		return true
	}
	// Either queued behind an in-progress write (success: the buffer will be
	// sent) or rejected because the handler isn't started (failure).
	return h.base.IsStarted()
}

// issueWrite performs the transport write and, on completion, drains any
// further queued entries via GetNextElement — the write-completion half of
// the spec §4.2 state machine.
func (h *Handler) issueWrite(buf buffer.Shared) {
	for {
		if _, err := retry.Write(h.conn, buf.Bytes(), h.retryDelay); err != nil {
			h.fail(err)
			return
		}
		next, ok := h.base.GetNextElement()
		if !ok {
			return
		}
		buf = next.Buf
	}
}

// StopIO implements handle.Core.
func (h *Handler) StopIO() bool {
	ok := h.base.Stop()
	if ok {
		h.closeOnce.Do(func() { _ = h.conn.Close() })
	}
	return ok
}

func (h *Handler) fail(err error) {
	h.base.Stop()
	h.closeOnce.Do(func() { _ = h.conn.Close() })
	h.base.ProcessErrCode(err, handle.NewStrongBorrow[Handler, net.Addr, net.Conn](h))
}

// StartIOHeaderVariable implements spec §4.4 item 1.
func (h *Handler) StartIOHeaderVariable(headerSize int, frameFn framing.FrameFunc, mh MsgHandler) bool {
	if !h.base.StartIOSetup() {
		return false
	}
	h.mu.Lock()
	h.dispatcher = framing.NewHeaderVariable(headerSize, frameFn)
	h.msgHandler = mh
	h.mu.Unlock()
	go h.readLoop()
	return true
}

// StartIODelimiter implements spec §4.4 item 2.
func (h *Handler) StartIODelimiter(delim []byte, mh MsgHandler) bool {
	if !h.base.StartIOSetup() {
		return false
	}
	h.mu.Lock()
	h.dispatcher = framing.NewDelimiter(delim)
	h.msgHandler = mh
	h.mu.Unlock()
	go h.readLoop()
	return true
}

// StartIOFixed implements spec §4.4 item 3 (TCP case).
func (h *Handler) StartIOFixed(size int, mh MsgHandler) bool {
	if !h.base.StartIOSetup() {
		return false
	}
	h.mu.Lock()
	h.dispatcher = framing.NewFixed(size)
	h.msgHandler = mh
	h.mu.Unlock()
	go h.readLoop()
	return true
}

// StartIONoReader implements spec §4.4 item 5 (TCP case): sends only, but a
// read is still posted and its completion treated as an error.
func (h *Handler) StartIONoReader() bool {
	if !h.base.StartIOSetup() {
		return false
	}
	go h.readLoopNoReader()
	return true
}

func (h *Handler) readLoop() {
	for {
		h.mu.Lock()
		d := h.dispatcher
		mh := h.msgHandler
		h.mu.Unlock()

		n := d.NextReadSize()
		chunk := make([]byte, n)
		if _, err := retry.ReadFull(h.conn, chunk, h.retryDelay); err != nil {
			h.fail(err)
			return
		}
		msg, err := d.Feed(chunk)
		if err != nil {
			h.fail(err)
			return
		}
		if msg == nil {
			continue
		}
		strong := handle.NewStrongBorrow[Handler, net.Addr, net.Conn](h)
		if !mh(msg, strong, h.RemoteAddr()) {
			h.fail(ErrMessageHandlerTerminated)
			return
		}
	}
}

func (h *Handler) readLoopNoReader() {
	var b [1]byte
	_, err := retry.Read(h.conn, b[:], h.retryDelay)
	if err == nil {
		err = ErrUnexpectedRead
	}
	h.fail(err)
}
