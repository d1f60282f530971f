// Package encoding implements the byte-stuffing layer of the wire
// protocol. Three byte values are structurally significant on the wire
// and must never appear literally inside a frame body; this package
// substitutes them with two-byte escape sequences and reverses the
// substitution on receive.
package encoding

import (
	"errors"
	"fmt"
)

// Reserved byte values. FrameBegin and FrameEnd delimit a frame on the
// wire; Escape introduces a two-byte substitution for any of the three.
const (
	Escape     byte = 0x1B
	FrameBegin byte = '('
	FrameEnd   byte = ')'
)

// Escape tags. The second byte of an escape sequence selects which
// reserved value it stands for. Tags are disjoint from the reserved set.
const (
	tagEscape byte = 0x41
	tagBegin  byte = 0x42
	tagEnd    byte = 0x43
)

// InvalidEscapeError reports an escape byte followed by an unknown tag.
type InvalidEscapeError struct {
	Escape byte
	Tag    byte
}

func (e *InvalidEscapeError) Error() string {
	return fmt.Sprintf("invalid escape sequence [%#02x %#02x]", e.Escape, e.Tag)
}

// ErrUnexpectedEOF is returned by Decode when the input ends in a bare
// escape byte with no tag following it.
var ErrUnexpectedEOF = errors.New("unexpected end of input (escape byte with no trailing data)")

// Encode returns an escaped copy of data. Every reserved byte is
// replaced with [Escape, tag]; all other bytes pass through unchanged,
// so len(result) >= len(data).
func Encode(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		switch b {
		case Escape:
			out = append(out, Escape, tagEscape)
		case FrameBegin:
			out = append(out, Escape, tagBegin)
		case FrameEnd:
			out = append(out, Escape, tagEnd)
		default:
			out = append(out, b)
		}
	}
	return out
}

// Decode reverses Encode. It scans with a two-byte window: an Escape
// byte consumes the byte after it, which must be a known tag. A trailing
// Escape fails with ErrUnexpectedEOF; an unknown tag fails with
// *InvalidEscapeError carrying both offending bytes.
func Decode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b != Escape {
			out = append(out, b)
			continue
		}
		if i+1 >= len(data) {
			return nil, ErrUnexpectedEOF
		}
		i++
		switch data[i] {
		case tagEscape:
			out = append(out, Escape)
		case tagBegin:
			out = append(out, FrameBegin)
		case tagEnd:
			out = append(out, FrameEnd)
		default:
			return nil, &InvalidEscapeError{Escape: b, Tag: data[i]}
		}
	}
	return out, nil
}
