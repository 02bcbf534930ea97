// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package iobase implements the per-handler send/dequeue state machine that
// the rest of netio builds on: the started flag, the write-in-progress
// guard, the output queue, and the single-shot terminal-error notifier.
//
// Base is generic over the endpoint type E so the same state machine serves
// any handler kind. tcpio and udpio both use E = net.Addr: TCP entries carry
// no per-send destination (HasEndpoint false), UDP entries carry one.
package iobase

import (
	"sync"

	"code.hybscloud.com/netio/buffer"
	"code.hybscloud.com/netio/queue"
)

// StrongRef is the lifetime-participating reference handed to the Notifier.
// It is left as `any` here (rather than importing the handle package, which
// itself depends on a concrete handler type) so iobase has no dependency on
// handle; callers instantiate Notifier with whatever strong-handle type
// their handler package defines.
type StrongRef = any

// Notifier is invoked exactly once, on terminal transport error or orderly
// shutdown.
type Notifier func(err error, strong StrongRef)

// Base holds the per-handler I/O state described in spec §3/§4.2.
type Base[E any] struct {
	mu sync.Mutex

	started          bool
	everStopped      bool
	writeInProgress  bool
	notifyFired      bool
	remoteEndp       E
	queue            queue.Output[E]
	notifier         Notifier
}

// New constructs a Base with the given notifier. The notifier must be
// non-nil; it is invoked at most once by ProcessErrCode.
func New[E any](notifier Notifier) *Base[E] {
	return &Base[E]{notifier: notifier}
}

// StartIOSetup marks the handler started. First call returns true;
// subsequent calls are no-ops that return false.
//
// One-shot lifecycle (spec §9): once stopped, a Base never starts again,
// even though started itself goes back to false on Stop.
func (b *Base[E]) StartIOSetup() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started || b.everStopped {
		return false
	}
	b.started = true
	return true
}

// IsStarted is a pure accessor.
func (b *Base[E]) IsStarted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

// IsWriteInProgress is a pure accessor.
func (b *Base[E]) IsWriteInProgress() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeInProgress
}

// OutputQueueStats is a pure accessor.
func (b *Base[E]) OutputQueueStats() queue.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.Stats()
}

// RemoteEndpoint is a pure accessor.
func (b *Base[E]) RemoteEndpoint() E {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remoteEndp
}

// SetRemoteEndpoint is called once by handler wiring (e.g. after accept).
func (b *Base[E]) SetRemoteEndpoint(e E) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remoteEndp = e
}

// StartWriteSetup is the central send state machine (spec §4.2).
//
// If not started: returns false, nothing queued — fail-closed before wiring.
// If a write is already in progress: enqueues (buf, endp) and returns false —
// "queued, no new write initiated by this call".
// Otherwise: marks write-in-progress and returns true — "caller must issue
// the transport write now with this buffer".
func (b *Base[E]) StartWriteSetup(buf buffer.Shared, endp E, hasEndp bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return false
	}
	if b.writeInProgress {
		b.queue.Push(queue.Entry[E]{Buf: buf, Endpoint: endp, HasEndpoint: hasEndp})
		return false
	}
	b.writeInProgress = true
	return true
}

// GetNextElement is invoked on write completion. If the queue is non-empty,
// it pops the head, leaves write-in-progress true, and returns the entry for
// the caller to issue as the next transport write. If the queue is empty, it
// clears write-in-progress and returns ok=false.
func (b *Base[E]) GetNextElement() (e queue.Entry[E], ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok = b.queue.PopFront()
	if !ok {
		b.writeInProgress = false
		return e, false
	}
	return e, true
}

// ProcessErrCode invokes the stored notifier exactly once, on any terminal
// transport error or orderly close. Subsequent calls are no-ops.
func (b *Base[E]) ProcessErrCode(err error, strong StrongRef) {
	b.mu.Lock()
	if b.notifyFired {
		b.mu.Unlock()
		return
	}
	b.notifyFired = true
	notifier := b.notifier
	b.mu.Unlock()

	if notifier != nil {
		notifier(err, strong)
	}
}

// Stop marks the handler stopped. Returns false if already stopped (or
// never started). Restart is unsupported: everStopped latches permanently,
// so a later StartIOSetup call always fails closed.
func (b *Base[E]) Stop() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		b.everStopped = true
		return false
	}
	b.started = false
	b.everStopped = true
	return true
}
