// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iobase_test

import (
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/netio/buffer"
	"code.hybscloud.com/netio/iobase"
)

func newBase(t *testing.T) *iobase.Base[struct{}] {
	t.Helper()
	return iobase.New[struct{}](func(error, iobase.StrongRef) {})
}

// Scenario 1 & 2 from spec §8: queueing under write-in-progress, then
// draining to empty.
func TestBase_QueueingThenDrain(t *testing.T) {
	b := newBase(t)
	if !b.StartIOSetup() {
		t.Fatalf("first StartIOSetup must return true")
	}

	b1 := buffer.New([]byte{0xAA})
	if ok := b.StartWriteSetup(b1, struct{}{}, false); !ok {
		t.Fatalf("first StartWriteSetup must return true (caller issues write)")
	}
	if !b.IsWriteInProgress() {
		t.Fatalf("write-in-progress must be true")
	}

	for i := 0; i < 19; i++ {
		if ok := b.StartWriteSetup(b1, struct{}{}, false); ok {
			t.Fatalf("call %d: expected false (queued)", i)
		}
	}
	stats := b.OutputQueueStats()
	if stats.Count != 19 {
		t.Fatalf("queue count = %d, want 19", stats.Count)
	}
	if stats.Bytes != int64(19*b1.Size()) {
		t.Fatalf("queue bytes = %d, want %d", stats.Bytes, 19*b1.Size())
	}

	for i := 0; i < 18; i++ {
		if _, ok := b.GetNextElement(); !ok {
			t.Fatalf("drain %d: expected an entry", i)
		}
	}
	if _, ok := b.GetNextElement(); !ok {
		t.Fatalf("expected the last queued entry")
	}
	if s := b.OutputQueueStats(); s.Count != 0 || s.Bytes != 0 {
		t.Fatalf("queue should be empty after draining 19 entries: %+v", s)
	}
	if !b.IsWriteInProgress() {
		t.Fatalf("write-in-progress must remain true until GetNextElement sees an empty queue")
	}

	if _, ok := b.GetNextElement(); ok {
		t.Fatalf("expected none on empty queue")
	}
	if b.IsWriteInProgress() {
		t.Fatalf("write-in-progress must clear once the queue is observed empty")
	}
}

// Scenario 3: send before start.
func TestBase_SendBeforeStart(t *testing.T) {
	b := newBase(t)
	if ok := b.StartWriteSetup(buffer.New([]byte("x")), struct{}{}, false); ok {
		t.Fatalf("expected false before start")
	}
	if s := b.OutputQueueStats(); s.Count != 0 {
		t.Fatalf("queue must stay empty")
	}
	if b.IsWriteInProgress() {
		t.Fatalf("write-in-progress must stay false")
	}
}

// Scenario 4: notifier fires once.
func TestBase_NotifierFiresOnce(t *testing.T) {
	var calls int
	b := iobase.New[struct{}](func(error, iobase.StrongRef) { calls++ })
	b.ProcessErrCode(errors.New("boom"), nil)
	b.ProcessErrCode(errors.New("boom again"), nil)
	if calls != 1 {
		t.Fatalf("notifier called %d times, want 1", calls)
	}
}

func TestBase_StartIOSetupIdempotent(t *testing.T) {
	b := newBase(t)
	if !b.StartIOSetup() {
		t.Fatalf("first call must succeed")
	}
	if b.StartIOSetup() {
		t.Fatalf("second call must fail")
	}
}

func TestBase_StopIdempotentAndNoRestart(t *testing.T) {
	b := newBase(t)
	b.StartIOSetup()
	if !b.Stop() {
		t.Fatalf("first stop must succeed")
	}
	if b.Stop() {
		t.Fatalf("second stop must fail")
	}
	if b.StartIOSetup() {
		t.Fatalf("restart after stop must be rejected (one-shot lifecycle)")
	}
}

// Tie-break: concurrent StartWriteSetup calls on an idle handler — exactly
// one must get the "issue write now" token.
func TestBase_ConcurrentStartWriteSetupExactlyOneWinner(t *testing.T) {
	b := newBase(t)
	b.StartIOSetup()

	const n = 50
	var wg sync.WaitGroup
	results := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = b.StartWriteSetup(buffer.New([]byte{byte(i)}), struct{}{}, false)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, r := range results {
		if r {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
	if s := b.OutputQueueStats(); s.Count != n-1 {
		t.Fatalf("queue count = %d, want %d", s.Count, n-1)
	}
}
