// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffer_test

import (
	"testing"

	"code.hybscloud.com/netio/buffer"
)

func TestShared_Equal(t *testing.T) {
	a := buffer.New([]byte{0x20, 0x21, 0x22, 0x23, 0x24})
	b := buffer.New([]byte{0x20, 0x21, 0x22, 0x23, 0x24})
	if !a.Equal(b) {
		t.Fatalf("expected equal buffers")
	}
	if a.Size() != 5 {
		t.Fatalf("size = %d, want 5", a.Size())
	}
}

func TestShared_CopyIsIndependent(t *testing.T) {
	src := []byte{1, 2, 3}
	s := buffer.New(src)
	src[0] = 0xFF
	if s.Bytes()[0] != 1 {
		t.Fatalf("Shared.New must copy, mutation leaked through")
	}
}

func TestBuilder_Freeze(t *testing.T) {
	b := buffer.NewBuilder(0)
	_, _ = b.Write([]byte("hello"))
	_, _ = b.Write([]byte(" world"))
	s := b.Freeze()
	if string(s.Bytes()) != "hello world" {
		t.Fatalf("got %q", s.Bytes())
	}
	if b.Len() != 0 {
		t.Fatalf("builder not reset after freeze")
	}
}
