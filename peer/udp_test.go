package peer

import (
	"testing"
	"time"
)

func TestUDPPeerSendReceiveRoundtrip(t *testing.T) {
	a := NewUDPPeer("127.0.0.1:0", WithBufsize(1<<18))
	if err := a.Open(); err != nil {
		t.Fatalf("open a: %v", err)
	}
	defer a.Close()

	b := NewUDPPeer("127.0.0.1:0")
	if err := b.Open(); err != nil {
		t.Fatalf("open b: %v", err)
	}
	defer b.Close()

	dst := b.conn.LocalAddr().String()

	var n int
	var err error
	for i := 0; i < 50; i++ {
		n, err = a.Send([]byte("ping"), dst)
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if n == 0 {
		t.Fatalf("send never accepted any bytes")
	}

	var data []byte
	for i := 0; i < 50; i++ {
		data, _, err = b.Receive()
		if err != nil {
			t.Fatalf("receive: %v", err)
		}
		if len(data) > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if string(data) != "ping" {
		t.Fatalf("received %q, want %q", data, "ping")
	}
}

func TestUDPPeerReceiveEmptyWhenIdle(t *testing.T) {
	a := NewUDPPeer("127.0.0.1:0")
	if err := a.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()

	data, src, err := a.Receive()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if data != nil || src != "" {
		t.Fatalf("expected empty receive, got (%v, %q)", data, src)
	}
}
