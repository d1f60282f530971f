// Package frame implements the framing layer of the wire protocol: the
// Frame entity, its serialization to and from wire format with a
// CRC-32/MPEG-2 integrity check, and a streaming reassembler that
// recovers frames from a noisy byte stream.
//
// Wire layout, before byte stuffing:
//
//	BEGIN  SENDER(1)  RECEIVER(1)  DATA_LEN(2, BE)  DATA  CRC32(4, BE)  END
//
// Everything between the markers except the CRC passes through the
// encoding package on the way out; the receive path decodes the whole
// span between the markers.
package frame

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/snksoft/crc"
)

const (
	// MaxDataLen is the largest payload representable by the 16-bit
	// length field.
	MaxDataLen = 65535

	// headerLen counts sender, receiver and the length field.
	headerLen = 4

	// overhead is the non-payload portion of a serialized frame:
	// both markers, the header and the CRC.
	overhead = 10
)

// crc32MPEG2 parameterizes the checksum shared with the companion
// implementation: non-reflected, init all-ones, no final XOR.
var crc32MPEG2 = &crc.Parameters{
	Width:      32,
	Polynomial: 0x04C11DB7,
	Init:       0xFFFFFFFF,
	ReflectIn:  false,
	ReflectOut: false,
	FinalXor:   0x0,
}

// PayloadTooLongError reports a payload the length field cannot
// represent. No wire bytes are produced when it is returned.
type PayloadTooLongError struct {
	Len int
}

func (e *PayloadTooLongError) Error() string {
	return fmt.Sprintf("payload is too long (%d bytes)", e.Len)
}

// Frame is the protocol's unit of addressed data. Equality is
// structural; the CRC is derived on demand, never stored.
type Frame struct {
	Sender   uint8
	Receiver uint8
	Data     []byte
}

// Equal reports structural equality of two frames.
func (f Frame) Equal(other Frame) bool {
	return f.Sender == other.Sender &&
		f.Receiver == other.Receiver &&
		bytes.Equal(f.Data, other.Data)
}

// WireLen returns the serialized size of the frame in bytes, not
// accounting for byte stuffing.
func (f Frame) WireLen() int {
	return len(f.Data) + overhead
}

// CRC32 computes the frame checksum over sender, receiver, the big
// endian length field and the payload. The hashed span is zero-padded
// to the next multiple of four bytes; the padding never appears on the
// wire but is required for interoperability with the companion
// implementation, whose checksum unit consumes 4-byte words only.
func (f Frame) CRC32() (uint32, error) {
	fields, err := f.wireFields()
	if err != nil {
		return 0, err
	}
	if pad := (4 - len(fields)%4) % 4; pad != 0 {
		fields = append(fields, make([]byte, pad)...)
	}
	return uint32(crc.CalculateCRC(crc32MPEG2, fields)), nil
}

// wireFields returns the unescaped header and payload bytes in wire
// order: sender, receiver, 2-byte length, data. Kept in sync with
// Decode.
func (f Frame) wireFields() ([]byte, error) {
	if len(f.Data) > MaxDataLen {
		return nil, &PayloadTooLongError{Len: len(f.Data)}
	}
	out := make([]byte, headerLen, headerLen+len(f.Data))
	out[0] = f.Sender
	out[1] = f.Receiver
	binary.BigEndian.PutUint16(out[2:4], uint16(len(f.Data)))
	return append(out, f.Data...), nil
}
