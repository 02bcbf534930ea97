// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package buffer provides an immutable, cheaply-clonable byte buffer and a
// mutable builder that can be frozen into one.
package buffer

import "bytes"

// Shared is an immutable byte sequence with shared ownership semantics.
//
// Copying a Shared value copies only the slice header; the backing array is
// never mutated after construction, so copies are safe to hand to other
// goroutines without synchronization. Go's garbage collector keeps the
// backing array alive for as long as any copy references it — there is no
// explicit refcount to manage.
type Shared struct {
	b []byte
}

// New copies the bytes of p into a new Shared.
func New(p []byte) Shared {
	cp := make([]byte, len(p))
	copy(cp, p)
	return Shared{b: cp}
}

// Bytes returns the underlying byte slice. Callers must not mutate it.
func (s Shared) Bytes() []byte { return s.b }

// Size returns the buffer length in O(1).
func (s Shared) Size() int { return len(s.b) }

// Equal reports bytewise equality.
func (s Shared) Equal(o Shared) bool { return bytes.Equal(s.b, o.b) }

// Builder is a mutable byte buffer, the moveable counterpart to Shared.
type Builder struct {
	b []byte
}

// NewBuilder returns an empty Builder, optionally pre-sized.
func NewBuilder(capHint int) *Builder {
	return &Builder{b: make([]byte, 0, capHint)}
}

// Write appends p, implementing io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	b.b = append(b.b, p...)
	return len(p), nil
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return len(b.b) }

// Freeze moves the builder's contents into a Shared, leaving the builder
// empty. This is the analogue of constructing a const_shared_buffer by
// moving from a mutable_shared_buffer: no copy occurs.
func (b *Builder) Freeze() Shared {
	out := Shared{b: b.b}
	b.b = nil
	return out
}
