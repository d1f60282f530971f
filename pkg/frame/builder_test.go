package frame

import (
	"testing"

	"sercom-core/pkg/encoding"
)

func mustEncode(t *testing.T, f Frame) []byte {
	t.Helper()
	wire, err := Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return wire
}

func TestBuilderSingleFrame(t *testing.T) {
	f := Frame{Sender: 1, Receiver: 2, Data: []byte("ping")}
	b := NewBuilder(nil)

	frames := b.Push(mustEncode(t, f))
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if !frames[0].Equal(f) {
		t.Fatalf("frame mismatch: %+v vs %+v", frames[0], f)
	}
}

func TestBuilderChunkedDelivery(t *testing.T) {
	want := []Frame{
		{Sender: 1, Receiver: 2, Data: []byte("first")},
		{Sender: 3, Receiver: 4, Data: []byte("hell(o w)or\x1bld")},
		{Sender: 5, Receiver: 6},
	}
	var stream []byte
	for _, f := range want {
		stream = append(stream, mustEncode(t, f)...)
	}

	for _, chunk := range []int{1, 2, 3, 7, len(stream)} {
		b := NewBuilder(nil)
		var got []Frame
		for off := 0; off < len(stream); off += chunk {
			end := off + chunk
			if end > len(stream) {
				end = len(stream)
			}
			got = append(got, b.Push(stream[off:end])...)
		}
		if len(got) != len(want) {
			t.Fatalf("chunk=%d: expected %d frames, got %d", chunk, len(want), len(got))
		}
		for i := range want {
			if !got[i].Equal(want[i]) {
				t.Fatalf("chunk=%d frame %d: %+v vs %+v", chunk, i, got[i], want[i])
			}
		}
	}
}

func TestBuilderResyncOnBegin(t *testing.T) {
	f := Frame{Sender: 9, Receiver: 8, Data: []byte("valid")}

	stream := []byte{encoding.FrameBegin, 'x', 'y'}
	stream = append(stream, mustEncode(t, f)...)

	b := NewBuilder(nil)
	frames := b.Push(stream)
	if len(frames) != 1 {
		t.Fatalf("expected exactly 1 frame, got %d", len(frames))
	}
	if !frames[0].Equal(f) {
		t.Fatalf("frame mismatch: %+v vs %+v", frames[0], f)
	}
}

func TestBuilderIgnoresNoise(t *testing.T) {
	b := NewBuilder(nil)
	if frames := b.Push([]byte("random noise without markers")); len(frames) != 0 {
		t.Fatalf("expected no frames from noise, got %d", len(frames))
	}
	// a lone end marker while unarmed is ignored too
	if frames := b.Push([]byte{encoding.FrameEnd}); len(frames) != 0 {
		t.Fatalf("expected no frames from stray end marker, got %d", len(frames))
	}
	f := Frame{Sender: 1, Receiver: 1, Data: []byte("after noise")}
	if frames := b.Push(mustEncode(t, f)); len(frames) != 1 || !frames[0].Equal(f) {
		t.Fatalf("frame after noise not recovered: %v", frames)
	}
}

func TestBuilderOverflowReset(t *testing.T) {
	b := NewBuilder(nil)

	b.Push([]byte{encoding.FrameBegin})
	filler := make([]byte, MaxFrameLen)
	for i := range filler {
		filler[i] = 'a'
	}
	if frames := b.Push(filler); len(frames) != 0 {
		t.Fatalf("runaway frame produced output: %d frames", len(frames))
	}
	// buffer was abandoned; a stray end marker must not decode anything
	if frames := b.Push([]byte{encoding.FrameEnd}); len(frames) != 0 {
		t.Fatalf("expected nothing after overflow, got %d frames", len(frames))
	}

	f := Frame{Sender: 2, Receiver: 3, Data: []byte("recovered")}
	frames := b.Push(mustEncode(t, f))
	if len(frames) != 1 || !frames[0].Equal(f) {
		t.Fatalf("frame after overflow not recovered: %v", frames)
	}
}

func TestBuilderDropsBadEscape(t *testing.T) {
	// escape byte followed by a tag outside the substitution table
	bad := []byte{
		encoding.FrameBegin,
		1, 2, // sender, receiver
		0x00, 0x01, // length
		encoding.Escape, 0x7F, // invalid escape sequence
		0xde, 0xad, 0xbe, 0xef, // checksum, never reached
		encoding.FrameEnd,
	}
	good := Frame{Sender: 1, Receiver: 2, Data: []byte("x")}

	b := NewBuilder(nil)
	if frames := b.Push(bad); len(frames) != 0 {
		t.Fatalf("bad escape produced output: %d frames", len(frames))
	}
	frames := b.Push(mustEncode(t, good))
	if len(frames) != 1 || !frames[0].Equal(good) {
		t.Fatalf("frame after bad escape not recovered: %v", frames)
	}
}

func TestBuilderDropsCorruptFrame(t *testing.T) {
	good := Frame{Sender: 7, Receiver: 7, Data: []byte("good")}
	bad := mustEncode(t, Frame{Sender: 7, Receiver: 7, Data: []byte("bad!")})
	bad[5] ^= 0x04 // corrupt a payload byte

	b := NewBuilder(nil)
	var got []Frame
	got = append(got, b.Push(bad)...)
	got = append(got, b.Push(mustEncode(t, good))...)

	if len(got) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(got))
	}
	if !got[0].Equal(good) {
		t.Fatalf("wrong frame survived: %+v", got[0])
	}
}
