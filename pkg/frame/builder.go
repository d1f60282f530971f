package frame

import (
	"go.uber.org/zap"

	"sercom-core/pkg/encoding"
)

// MaxFrameLen is the ceiling for a single in-progress frame in the
// reassembly buffer, still-escaped bytes included. A buffer that grows
// to this size is abandoned as a runaway frame.
const MaxFrameLen = 1280

// Builder recovers discrete frames from an unstructured byte stream.
// Bytes may arrive split arbitrarily across calls; noise before the
// first begin marker and partial frames interrupted by a new begin
// marker are dropped silently, which is what resynchronizes the stream
// after line glitches. A Builder is owned by a single connection and is
// not safe for concurrent use.
type Builder struct {
	buf []byte
	log *zap.Logger
}

// NewBuilder returns a Builder reporting discarded frames to log. A nil
// logger disables reporting.
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		buf: make([]byte, 0, MaxFrameLen),
		log: log,
	}
}

// Push feeds a chunk of raw bytes and returns the frames completed by
// it, in arrival order. State persists across calls, so a frame split
// over many reads is still recovered. Malformed frames are logged and
// dropped, never returned as an error.
func (b *Builder) Push(p []byte) []Frame {
	var out []Frame
	for _, c := range p {
		if f, ok := b.pushByte(c); ok {
			out = append(out, f)
		}
	}
	return out
}

// pushByte applies one byte to the reassembly state machine. The buffer
// being non-empty means a begin marker has been seen ("armed").
func (b *Builder) pushByte(c byte) (Frame, bool) {
	switch c {
	case encoding.FrameBegin:
		// new frame preempts whatever was in progress
		b.buf = append(b.buf[:0], c)

	case encoding.FrameEnd:
		if len(b.buf) == 0 {
			break
		}
		b.buf = append(b.buf, c)
		f, err := Decode(b.buf)
		b.buf = b.buf[:0]
		if err != nil {
			b.log.Info("discarded frame", zap.Error(err))
			break
		}
		return f, true

	default:
		if len(b.buf) == 0 {
			break
		}
		b.buf = append(b.buf, c)
		if len(b.buf) == MaxFrameLen {
			b.buf = b.buf[:0]
		}
	}
	return Frame{}, false
}
