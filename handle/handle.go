// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package handle implements the weak/strong handle duality described in
// spec §3/§4.3/§4.4: a validity-checking application handle (Weak) and a
// lifetime-participating send handle (Strong), both value types layered
// over a concrete per-handler struct S.
//
// S is the concrete handler struct (e.g. tcpio.Handler, udpio.Handler), E is
// its endpoint type, and K is the underlying socket type it exposes
// (net.Conn for tcpio, net.PacketConn for udpio). P is the pointer-to-S
// type, spelled out as its own type parameter so the handler-capability
// methods (Core) can be expressed as an interface constraint on *S without
// Go needing virtual dispatch on the hot send path — the direct analogue of
// the C++ template parameter IOT in the design notes.
package handle

import (
	"unsafe"
	"weak"

	"code.hybscloud.com/netio/buffer"
	"code.hybscloud.com/netio/queue"
)

// Core is the capability set every concrete handler (TCP or UDP) must
// satisfy for handle.Weak / handle.Strong to operate on it. Start-IO
// variants are deliberately not part of Core: their callback signatures
// differ per framing mode, so they are invoked through Weak.StartIO's
// generic upgrade-and-call rather than forced into one interface shape.
type Core[S any, E any, K any] interface {
	*S
	IsIOStarted() bool
	OutputQueueStats() queue.Stats
	Send(buf buffer.Shared) bool
	SendTo(buf buffer.Shared, endp E) bool
	StopIO() bool
	Socket() K
}

// Weak is the general application surface (spec §4.4, "io_interface").
// Every operation except IsValid upgrades the internal weak reference for
// the duration of the call and fails with ErrHandleExpired if the referent
// is gone.
type Weak[S any, E any, K any, P Core[S, E, K]] struct {
	wp weak.Pointer[S]
}

// NewWeak constructs a Weak handle from a live handler pointer. This is an
// internal constructor: applications receive Weak values via a state-change
// callback, never by calling this directly.
func NewWeak[S any, E any, K any, P Core[S, E, K]](h P) Weak[S, E, K, P] {
	return Weak[S, E, K, P]{wp: weak.Make((*S)(h))}
}

// IsValid reports whether the referent handler still exists.
func (w Weak[S, E, K, P]) IsValid() bool {
	return w.wp.Value() != nil
}

func (w Weak[S, E, K, P]) upgrade() (P, error) {
	sp := w.wp.Value()
	if sp == nil {
		var zero P
		return zero, ErrHandleExpired
	}
	return P(sp), nil
}

// IsIOStarted reports whether start_io has been called on the referent.
func (w Weak[S, E, K, P]) IsIOStarted() (bool, error) {
	h, err := w.upgrade()
	if err != nil {
		return false, err
	}
	return h.IsIOStarted(), nil
}

// OutputQueueStats returns a snapshot of the referent's output queue.
func (w Weak[S, E, K, P]) OutputQueueStats() (queue.Stats, error) {
	h, err := w.upgrade()
	if err != nil {
		return queue.Stats{}, err
	}
	return h.OutputQueueStats(), nil
}

// Send submits buf for output. It may silently drop the buffer (returning
// false) if the handler is shutting down, per spec §4.4.
func (w Weak[S, E, K, P]) Send(buf buffer.Shared) (bool, error) {
	h, err := w.upgrade()
	if err != nil {
		return false, err
	}
	return h.Send(buf), nil
}

// SendTo submits buf for output to a specific destination (UDP handlers).
func (w Weak[S, E, K, P]) SendTo(buf buffer.Shared, endp E) (bool, error) {
	h, err := w.upgrade()
	if err != nil {
		return false, err
	}
	return h.SendTo(buf, endp), nil
}

// Socket returns a reference to the underlying socket (spec.md:116, §6 "to
// the reactor"), or ErrHandleExpired if the referent is gone — the same
// upgrade-or-fail-closed shape as every other Weak operation.
func (w Weak[S, E, K, P]) Socket() (K, error) {
	h, err := w.upgrade()
	if err != nil {
		var zero K
		return zero, err
	}
	return h.Socket(), nil
}

// StartIO upgrades the weak reference and invokes fn with the live handler
// pointer, so callers can reach framing-mode-specific start_io variants
// (declared on the concrete handler type, e.g. *tcpio.Handler.StartIOFixed)
// without Core needing one method per variant.
func (w Weak[S, E, K, P]) StartIO(fn func(P) bool) (bool, error) {
	h, err := w.upgrade()
	if err != nil {
		return false, err
	}
	return fn(h), nil
}

// StopIO stops IO processing. Returns false if already stopped.
func (w Weak[S, E, K, P]) StopIO() (bool, error) {
	h, err := w.upgrade()
	if err != nil {
		return false, err
	}
	return h.StopIO(), nil
}

// Strong returns a lifetime-participating Strong handle for this referent,
// or ok=false if the handle is expired. Obtaining a Strong this way keeps
// the handler alive for as long as the Strong value exists.
func (w Weak[S, E, K, P]) Strong() (Strong[S, E, K, P], bool) {
	h, err := w.upgrade()
	if err != nil {
		return Strong[S, E, K, P]{}, false
	}
	return Strong[S, E, K, P]{ptr: h}, true
}

// Equal implements spec §3's handle equality: two invalid handles are
// equal; equality of valid handles agrees with referent identity.
func (w Weak[S, E, K, P]) Equal(o Weak[S, E, K, P]) bool {
	lp := w.wp.Value()
	rp := o.wp.Value()
	if lp != nil && rp != nil {
		return lp == rp
	}
	return lp == nil && rp == nil
}

// Less implements spec §3's total ordering: every invalid handle sorts
// strictly below every valid one; among valid handles, ordering follows
// referent identity (pointer value).
func (w Weak[S, E, K, P]) Less(o Weak[S, E, K, P]) bool {
	lp := w.wp.Value()
	rp := o.wp.Value()
	if lp != nil && rp != nil {
		return uintptr(unsafe.Pointer(lp)) < uintptr(unsafe.Pointer(rp))
	}
	return lp == nil && rp != nil
}

// Strong is the lifetime-participating send handle (spec §4.3,
// "io_output"). It is value-copyable and bound to a live handler for as
// long as it exists (NewStrongOwning) or for the duration of a call stack
// the framework already guarantees liveness for (NewStrongBorrow).
//
// Strong has no Socket accessor: the original basic_io_output template it's
// grounded on doesn't expose one either — get_socket is an io_interface
// (Weak) operation only.
type Strong[S any, E any, K any, P Core[S, E, K]] struct {
	ptr      P
	released bool
}

// NewStrongBorrow constructs a Strong handle that does not participate in
// the handler's lifetime: the caller guarantees the handler outlives every
// call made through this handle. This is what a handler's read loop hands
// to its message handler, where the handler is already alive on the stack.
func NewStrongBorrow[S any, E any, K any, P Core[S, E, K]](h P) Strong[S, E, K, P] {
	return Strong[S, E, K, P]{ptr: h}
}

// NewStrongOwning constructs a Strong handle from a weak handle, keeping
// the handler reachable (and therefore alive) for as long as this Strong
// handle exists. Returns ok=false if the weak handle was already expired.
func NewStrongOwning[S any, E any, K any, P Core[S, E, K]](w Weak[S, E, K, P]) (Strong[S, E, K, P], bool) {
	return w.Strong()
}

// OutputQueueStats is a pass-through accessor.
func (s Strong[S, E, K, P]) OutputQueueStats() (queue.Stats, error) {
	if s.released || s.ptr == nil {
		var zero queue.Stats
		return zero, ErrReleased
	}
	return s.ptr.OutputQueueStats(), nil
}

// Send submits buf for output. Calling Send after Release is a checked
// error (see SPEC_FULL.md's resolution of the release/send Open Question),
// not a nil-pointer fault.
func (s Strong[S, E, K, P]) Send(buf buffer.Shared) (bool, error) {
	if s.released || s.ptr == nil {
		return false, ErrReleased
	}
	return s.ptr.Send(buf), nil
}

// SendTo submits buf for output to a specific destination (UDP handlers).
func (s Strong[S, E, K, P]) SendTo(buf buffer.Shared, endp E) (bool, error) {
	if s.released || s.ptr == nil {
		return false, ErrReleased
	}
	return s.ptr.SendTo(buf, endp), nil
}

// Release drops this handle's participation, if any, in the handler's
// lifetime. Subsequent Send/SendTo/OutputQueueStats calls fail with
// ErrReleased.
func (s *Strong[S, E, K, P]) Release() {
	s.released = true
	var zero P
	s.ptr = zero
}

// Weak constructs a Weak handle over this Strong handle's referent, so a
// notifier (which receives a StrongRef) can hand the application something
// that outlives the notifier call's stack. Returns a permanently-invalid
// Weak if this handle was released.
func (s Strong[S, E, K, P]) Weak() Weak[S, E, K, P] {
	if s.released || s.ptr == nil {
		return Weak[S, E, K, P]{}
	}
	return NewWeak[S, E, K, P](s.ptr)
}
