// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package entity_test

import (
	"context"
	"net"
	"testing"
	"time"

	"code.hybscloud.com/netio/buffer"
	"code.hybscloud.com/netio/entity"
	"code.hybscloud.com/netio/iobase"
	"code.hybscloud.com/netio/tcpio"
)

func TestAcceptor_EchoesViaConnector(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	acceptedCh := make(chan tcpio.WeakHandle, 1)
	acceptor := entity.NewAcceptor(ln, func(weak tcpio.WeakHandle, err error) {
		if err == nil {
			acceptedCh <- weak
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	serveErrCh := make(chan error, 1)
	go func() { serveErrCh <- acceptor.Serve(ctx, echoFactory) }()

	connector := entity.NewConnector(net.Dialer{})
	clientReceived := make(chan string, 1)
	clientNotifier := func(error, any) {}
	weak, err := connector.Connect(context.Background(), "tcp", ln.Addr().String(), clientNotifier, func(conn net.Conn, notifier iobase.Notifier, opts entity.Options) *tcpio.Handler {
		h := tcpio.NewHandler(conn, notifier)
		h.SetRetryDelay(opts.RetryDelay)
		h.StartIOFixed(4, func(msg []byte, _ tcpio.StrongHandle, _ net.Addr) bool {
			clientReceived <- string(msg)
			return true
		})
		return h
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	ok, err := weak.Send(buffer.New([]byte("ping")))
	if err != nil || !ok {
		t.Fatalf("send: ok=%v err=%v", ok, err)
	}

	select {
	case <-acceptedCh:
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for accept")
	}

	select {
	case got := <-clientReceived:
		if got != "ping" {
			t.Fatalf("echo got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for echo")
	}

	cancel()
	select {
	case err := <-serveErrCh:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for Serve to return")
	}
}

func echoFactory(conn net.Conn, notifier iobase.Notifier, opts entity.Options) *tcpio.Handler {
	h := tcpio.NewHandler(conn, notifier)
	h.SetRetryDelay(opts.RetryDelay)
	h.StartIOFixed(4, func(msg []byte, strong tcpio.StrongHandle, _ net.Addr) bool {
		_, _ = strong.Send(buffer.New(msg))
		return true
	})
	return h
}
