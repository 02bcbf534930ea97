// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package retry adapts the would-block retry loop used throughout the
// framer teacher package (internal.go's readOnce/writeOnce/
// waitOnceOnWouldBlock) for netio's transport read/write calls: an
// iox.ErrWouldBlock from the underlying connection is a control-flow
// signal, not a failure, and is retried per a configurable delay policy
// rather than propagated as an error on the hot path.
package retry

import (
	"io"
	"net"
	"runtime"
	"time"

	"code.hybscloud.com/iox"
)

// Delay controls how a would-block result from the transport is handled:
//   - negative: nonblocking; return iox.ErrWouldBlock immediately.
//   - zero: cooperative yield (runtime.Gosched) and retry.
//   - positive: sleep for the duration and retry.
type Delay = time.Duration

func wait(d Delay) bool {
	if d < 0 {
		return false
	}
	if d == 0 {
		runtime.Gosched()
		return true
	}
	time.Sleep(d)
	return true
}

// Read retries r.Read(p) across iox.ErrWouldBlock according to d.
func Read(r io.Reader, p []byte, d Delay) (int, error) {
	for {
		n, err := r.Read(p)
		if n > 0 || err != iox.ErrWouldBlock {
			return n, err
		}
		if !wait(d) {
			return n, err
		}
	}
}

// ReadFull reads exactly len(p) bytes from r into p, retrying each
// underlying Read across iox.ErrWouldBlock via Read. Its short-read
// handling mirrors io.ReadFull: io.EOF with zero bytes read is returned
// as-is, a partial read followed by io.EOF becomes io.ErrUnexpectedEOF.
func ReadFull(r io.Reader, p []byte, d Delay) (n int, err error) {
	for n < len(p) && err == nil {
		var nn int
		nn, err = Read(r, p[n:], d)
		n += nn
	}
	if n >= len(p) {
		return n, nil
	}
	if n > 0 && err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// ReadFrom retries conn.ReadFrom(p) across iox.ErrWouldBlock according to
// d — the datagram-source counterpart of Read, used where the caller also
// needs the sender's address and so can't go through the plain io.Reader
// shape Read expects.
func ReadFrom(conn net.PacketConn, p []byte, d Delay) (int, net.Addr, error) {
	for {
		n, addr, err := conn.ReadFrom(p)
		if n > 0 || err != iox.ErrWouldBlock {
			return n, addr, err
		}
		if !wait(d) {
			return n, addr, err
		}
	}
}

// Write retries w.Write(p) across iox.ErrWouldBlock according to d.
func Write(w io.Writer, p []byte, d Delay) (int, error) {
	for {
		n, err := w.Write(p)
		if n > 0 || err != iox.ErrWouldBlock {
			return n, err
		}
		if !wait(d) {
			return n, err
		}
	}
}

// WriteTo retries conn.WriteTo(p, addr) across iox.ErrWouldBlock according
// to d — the datagram-destination counterpart of Write.
func WriteTo(conn net.PacketConn, p []byte, addr net.Addr, d Delay) (int, error) {
	for {
		n, err := conn.WriteTo(p, addr)
		if n > 0 || err != iox.ErrWouldBlock {
			return n, err
		}
		if !wait(d) {
			return n, err
		}
	}
}
