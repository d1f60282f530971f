package transport

import (
	"testing"
	"time"
)

func TestTCPListenDialRoundTrip(t *testing.T) {
	ln, err := ListenTCP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan Conn, 1)
	acceptErr := make(chan error, 1)
	go func() {
		c, err := ln.AcceptConn()
		if err != nil {
			acceptErr <- err
			return
		}
		accepted <- c
	}()

	client, err := TCPDialer{Timeout: 2 * time.Second}.Dial(ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	var server Conn
	select {
	case server = <-accepted:
	case err := <-acceptErr:
		t.Fatalf("accept: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("accept timed out")
	}
	defer server.Close()

	msg := []byte("over tcp")
	if _, err := client.Write(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf := make([]byte, len(msg))
	for off := 0; off < len(buf); {
		n, err := server.Read(buf[off:])
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		off += n
	}
	if string(buf) != string(msg) {
		t.Fatalf("payload mismatch: %q vs %q", buf, msg)
	}
}
