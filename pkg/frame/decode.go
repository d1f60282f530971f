package frame

import (
	"encoding/binary"
	"errors"
	"fmt"

	"sercom-core/pkg/encoding"
)

// Decode error conditions. Truncated escape sequences and unknown
// escape tags surface as the encoding package's own errors.
var (
	ErrInvalidBegin  = errors.New("invalid frame begin byte")
	ErrInvalidEnd    = errors.New("invalid frame end byte")
	ErrUnexpectedEOF = errors.New("unexpected end of input while deserializing")
	ErrTrailingBytes = errors.New("unexpected trailing bytes after frame checksum")
)

// CRCMismatchError reports a checksum disagreement between the wire and
// the recomputed value.
type CRCMismatchError struct {
	Received   uint32
	Calculated uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("crc32 mismatch: received %#08x, calculated %#08x", e.Received, e.Calculated)
}

// Decode parses a complete serialized frame. The input must start with
// the begin marker and end with the end marker; the span between them
// is unstuffed and parsed as sender, receiver, length, payload and CRC,
// in that order. Any bytes left over after the CRC make the frame
// malformed: trailing garbage is reachable from untrusted input and is
// reported as ErrTrailingBytes, never assumed away.
func Decode(data []byte) (Frame, error) {
	if len(data) == 0 || data[0] != encoding.FrameBegin {
		return Frame{}, ErrInvalidBegin
	}
	if data[len(data)-1] != encoding.FrameEnd {
		return Frame{}, ErrInvalidEnd
	}

	// keep in sync with Frame.wireFields
	decoded, err := encoding.Decode(data[1 : len(data)-1])
	if err != nil {
		return Frame{}, err
	}
	if len(decoded) < headerLen {
		return Frame{}, ErrUnexpectedEOF
	}

	f := Frame{Sender: decoded[0], Receiver: decoded[1]}
	dataLen := int(binary.BigEndian.Uint16(decoded[2:4]))

	rest := decoded[headerLen:]
	if len(rest) < dataLen {
		return Frame{}, ErrUnexpectedEOF
	}
	f.Data = append([]byte(nil), rest[:dataLen]...)

	rest = rest[dataLen:]
	if len(rest) < 4 {
		return Frame{}, ErrUnexpectedEOF
	}
	received := binary.BigEndian.Uint32(rest[:4])
	if len(rest) > 4 {
		return Frame{}, ErrTrailingBytes
	}

	calculated, err := f.CRC32()
	if err != nil {
		// dataLen fits uint16, so the payload can always be hashed
		return Frame{}, err
	}
	if received != calculated {
		return Frame{}, &CRCMismatchError{Received: received, Calculated: calculated}
	}
	return f, nil
}
