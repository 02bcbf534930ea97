// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package udpio is the second concrete handler kind referenced by spec §9's
// design notes, wrapping a net.PacketConn. Unlike tcpio, UDP datagrams are
// already message-bounded by the transport, so there is no framing
// dispatcher: spec §4.4 items 3/4/5/6 (fixed/maximum size, with or without
// a default destination, with or without a reader) are handled directly.
package udpio

import (
	"net"
	"sync"

	"code.hybscloud.com/netio/buffer"
	"code.hybscloud.com/netio/handle"
	"code.hybscloud.com/netio/internal/retry"
	"code.hybscloud.com/netio/iobase"
	"code.hybscloud.com/netio/queue"
)

// MsgHandler is the message handler callback (spec §6). Returning false
// closes the socket.
type MsgHandler func(msg []byte, strong StrongHandle, remote net.Addr) bool

// StateChange is the state-change callback (spec §6).
type StateChange func(weak WeakHandle, err error)

type (
	StrongHandle = handle.Strong[Handler, net.Addr, net.PacketConn, *Handler]
	WeakHandle   = handle.Weak[Handler, net.Addr, net.PacketConn, *Handler]
)

// Handler is the per-socket UDP I/O handler.
type Handler struct {
	base *iobase.Base[net.Addr]
	conn net.PacketConn

	retryDelay retry.Delay

	mu         sync.Mutex
	maxSize    int
	defaultDst net.Addr
	hasDefault bool
	msgHandler MsgHandler

	closeOnce sync.Once
}

// NewWeakHandle constructs a WeakHandle over h, mirroring tcpio.NewWeakHandle.
func NewWeakHandle(h *Handler) WeakHandle {
	return handle.NewWeak[Handler, net.Addr, net.PacketConn, *Handler](h)
}

// NewHandler constructs a Handler wrapping conn.
func NewHandler(conn net.PacketConn, notifier iobase.Notifier) *Handler {
	return &Handler{
		base:       iobase.New[net.Addr](notifier),
		conn:       conn,
		retryDelay: -1,
	}
}

// SetRetryDelay configures the would-block retry policy for reads and writes.
func (h *Handler) SetRetryDelay(d retry.Delay) { h.retryDelay = d }

// IsIOStarted implements handle.Core.
func (h *Handler) IsIOStarted() bool { return h.base.IsStarted() }

// OutputQueueStats implements handle.Core.
func (h *Handler) OutputQueueStats() queue.Stats { return h.base.OutputQueueStats() }

// Socket returns the underlying packet connection.
func (h *Handler) Socket() net.PacketConn { return h.conn }

// Send implements handle.Core: sends to the configured default destination.
// Returns false (no queueing attempted) if no default destination was
// configured via StartIOFixedDefaultDest / StartIONoReaderDefaultDest.
func (h *Handler) Send(buf buffer.Shared) bool {
	h.mu.Lock()
	dst, ok := h.defaultDst, h.hasDefault
	h.mu.Unlock()
	if !ok {
		return false
	}
	return h.enqueue(buf, dst)
}

// SendTo implements handle.Core: sends to an explicit destination.
func (h *Handler) SendTo(buf buffer.Shared, endp net.Addr) bool {
	return h.enqueue(buf, endp)
}

func (h *Handler) enqueue(buf buffer.Shared, endp net.Addr) bool {
	if h.base.StartWriteSetup(buf, endp, true) {
		h.issueWrite(buf, endp)
		return true
	}
	return h.base.IsStarted()
}

func (h *Handler) issueWrite(buf buffer.Shared, endp net.Addr) {
	for {
		if _, err := retry.WriteTo(h.conn, buf.Bytes(), endp, h.retryDelay); err != nil {
			h.fail(err)
			return
		}
		next, ok := h.base.GetNextElement()
		if !ok {
			return
		}
		buf, endp = next.Buf, next.Endpoint
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
	h.base.ProcessErrCode(err, handle.NewStrongBorrow[Handler, net.Addr, net.PacketConn](h))
}

// StartIOFixed implements spec §4.4 item 3 (UDP case): maxSize is the
// maximum datagram size; larger datagrams are truncated by the transport.
func (h *Handler) StartIOFixed(maxSize int, mh MsgHandler) bool {
	return h.start(maxSize, nil, false, mh)
}

// StartIOFixedDefaultDest implements spec §4.4 item 4.
func (h *Handler) StartIOFixedDefaultDest(defaultDst net.Addr, maxSize int, mh MsgHandler) bool {
	return h.start(maxSize, defaultDst, true, mh)
}

// StartIONoReader implements spec §4.4 item 5 (UDP case): send-only, no
// read is posted at all.
func (h *Handler) StartIONoReader() bool {
	return h.start(0, nil, false, nil)
}

// StartIONoReaderDefaultDest implements spec §4.4 item 6.
func (h *Handler) StartIONoReaderDefaultDest(defaultDst net.Addr) bool {
	return h.start(0, defaultDst, true, nil)
}

func (h *Handler) start(maxSize int, defaultDst net.Addr, hasDefault bool, mh MsgHandler) bool {
	if !h.base.StartIOSetup() {
		return false
	}
	h.mu.Lock()
	h.maxSize = maxSize
	h.defaultDst = defaultDst
	h.hasDefault = hasDefault
	h.msgHandler = mh
	h.mu.Unlock()
	if mh != nil {
		go h.readLoop()
	}
	return true
}

func (h *Handler) readLoop() {
	h.mu.Lock()
	size := h.maxSize
	mh := h.msgHandler
	h.mu.Unlock()

	buf := make([]byte, size)
	for {
		n, addr, err := retry.ReadFrom(h.conn, buf, h.retryDelay)
		if err != nil {
			h.fail(err)
			return
		}
		msg := append([]byte(nil), buf[:n]...)
		strong := handle.NewStrongBorrow[Handler, net.Addr, net.PacketConn](h)
		if !mh(msg, strong, addr) {
			h.fail(ErrMessageHandlerTerminated)
			return
		}
	}
}
