// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package udpio_test

import (
	"net"
	"testing"
	"time"

	"code.hybscloud.com/netio/buffer"
	"code.hybscloud.com/netio/udpio"
)

func TestHandler_FixedSizeRoundTrip(t *testing.T) {
	serverConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer serverConn.Close()

	clientConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer clientConn.Close()

	received := make(chan string, 1)
	server := udpio.NewHandler(serverConn, func(error, any) {})
	if !server.StartIOFixed(1500, func(msg []byte, strong udpio.StrongHandle, remote net.Addr) bool {
		received <- string(msg)
		_, _ = strong.SendTo(buffer.New(msg), remote)
		return true
	}) {
		t.Fatalf("StartIOFixed must succeed")
	}

	client := udpio.NewHandler(clientConn, func(error, any) {})
	echoCh := make(chan string, 1)
	if !client.StartIOFixedDefaultDest(serverConn.LocalAddr(), 1500, func(msg []byte, _ udpio.StrongHandle, _ net.Addr) bool {
		echoCh <- string(msg)
		return true
	}) {
		t.Fatalf("StartIOFixedDefaultDest must succeed")
	}

	if !client.Send(buffer.New([]byte("ping"))) {
		t.Fatalf("send must succeed once started with a default destination")
	}

	select {
	case got := <-received:
		if got != "ping" {
			t.Fatalf("server got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for server to receive")
	}

	select {
	case got := <-echoCh:
		if got != "ping" {
			t.Fatalf("client got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for echo")
	}
}

func TestHandler_SendWithoutDefaultDestFails(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	h := udpio.NewHandler(conn, func(error, any) {})
	h.StartIONoReader()
	if h.Send(buffer.New([]byte("x"))) {
		t.Fatalf("Send without a configured default destination must return false")
	}
}

func TestHandler_StopIOIdempotent(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	h := udpio.NewHandler(conn, func(error, any) {})
	h.StartIONoReader()
	if !h.StopIO() {
		t.Fatalf("first StopIO must succeed")
	}
	if h.StopIO() {
		t.Fatalf("second StopIO must fail")
	}
}
