package hub

import (
	"context"
	"testing"
	"time"

	"sercom-core/pkg/frame"
	"sercom-core/pkg/transport"
)

func TestHubAcceptsAndDecodes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(Options{Addr: "127.0.0.1:0"})
	go s.Run(ctx)

	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not come up")
	}

	conn, err := transport.TCPDialer{Timeout: 2 * time.Second}.Dial(s.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	f := frame.Frame{Sender: 41, Receiver: 42, Data: []byte("hello hub")}
	wire, err := frame.Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// leading noise must not confuse the reassembler
	if _, err := conn.Write(append([]byte("garbage"), wire...)); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := s.Manager().Store()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, h := range store.Handles() {
			got := store.Received(h)
			if len(got) == 1 {
				if !got[0].Equal(f) {
					t.Fatalf("frame mismatch: %+v vs %+v", got[0], f)
				}
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("frame never reached the store")
}

func TestTokenBucketRefills(t *testing.T) {
	clock := time.Now()
	b := NewTokenBucket(10, 2)
	b.now = func() time.Time { return clock }
	b.last = clock

	if !b.Allow() || !b.Allow() {
		t.Fatal("burst tokens missing")
	}
	if b.Allow() {
		t.Fatal("expected empty bucket")
	}

	// one token at 10/s
	clock = clock.Add(100 * time.Millisecond)
	if !b.Allow() {
		t.Fatal("bucket did not refill")
	}
	if b.Allow() {
		t.Fatal("refilled more than elapsed time allows")
	}

	// refill never exceeds the burst
	clock = clock.Add(time.Hour)
	if !b.Allow() || !b.Allow() {
		t.Fatal("burst tokens missing after long idle")
	}
	if b.Allow() {
		t.Fatal("bucket exceeded burst")
	}
}
