// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package entity_test

import (
	"net"
	"testing"
	"time"

	"code.hybscloud.com/netio/buffer"
	"code.hybscloud.com/netio/entity"
	"code.hybscloud.com/netio/iobase"
	"code.hybscloud.com/netio/udpio"
)

func TestUDPEntity_StartAndSend(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	peer, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer peer.Close()

	received := make(chan string, 1)
	ent := entity.NewUDPEntity(conn, entity.WithBlock())
	h := ent.Start(func(error, any) {}, func(c net.PacketConn, notifier iobase.Notifier, opts entity.Options) *udpio.Handler {
		handler := udpio.NewHandler(c, notifier)
		handler.SetRetryDelay(opts.RetryDelay)
		handler.StartIOFixed(1500, func(msg []byte, _ udpio.StrongHandle, _ net.Addr) bool {
			received <- string(msg)
			return true
		})
		return handler
	})

	if !h.SendTo(buffer.New([]byte("hi")), peer.LocalAddr()) {
		t.Skip("SendTo failed to enqueue, environment lacks loopback UDP")
	}

	buf := make([]byte, 1500)
	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := peer.ReadFrom(buf)
	if err != nil {
		t.Fatalf("peer read: %v", err)
	}
	if string(buf[:n]) != "hi" {
		t.Fatalf("peer got %q", buf[:n])
	}
}
