// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package queue provides a FIFO output queue keyed by arrival order, with a
// cached byte-count statistic. It carries no internal synchronization; a
// caller (iobase.Base) provides mutual exclusion.
package queue

import "code.hybscloud.com/netio/buffer"

// Entry pairs a buffer with an optional destination endpoint. E is the
// endpoint type (net.Addr in both tcpio and udpio; TCP entries leave
// HasEndpoint false).
type Entry[E any] struct {
	Buf      buffer.Shared
	Endpoint E
	HasEndpoint bool
}

// Stats is an O(1) snapshot of queue occupancy.
type Stats struct {
	Count int
	Bytes int64
}

// Output is a strict-FIFO sequence of Entry values plus a running byte total.
type Output[E any] struct {
	entries []Entry[E]
	bytes   int64
}

// Push appends an entry and updates the byte counter.
func (q *Output[E]) Push(e Entry[E]) {
	q.entries = append(q.entries, e)
	q.bytes += int64(e.Buf.Size())
}

// PopFront removes and returns the head entry, or ok=false if empty.
func (q *Output[E]) PopFront() (e Entry[E], ok bool) {
	if len(q.entries) == 0 {
		return e, false
	}
	e = q.entries[0]
	// Avoid retaining the popped buffer's backing array via the slice header.
	var zero Entry[E]
	q.entries[0] = zero
	q.entries = q.entries[1:]
	q.bytes -= int64(e.Buf.Size())
	return e, true
}

// Stats returns the current count/bytes snapshot.
func (q *Output[E]) Stats() Stats {
	return Stats{Count: len(q.entries), Bytes: q.bytes}
}
