package frame

import (
	"encoding/binary"
	"io"

	"sercom-core/pkg/encoding"
)

// Encode serialises the frame to wire format: the begin marker, the
// byte-stuffed header and payload, the raw big endian CRC and the end
// marker. A payload longer than MaxDataLen fails with
// *PayloadTooLongError before any output is produced.
//
// The CRC bytes are appended without byte stuffing; the receive path
// decodes them together with the rest of the span between the markers.
// This matches the companion implementation byte for byte.
func Encode(f Frame) ([]byte, error) {
	fields, err := f.wireFields()
	if err != nil {
		return nil, err
	}
	sum, err := f.CRC32()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, f.WireLen())
	out = append(out, encoding.FrameBegin)
	out = append(out, encoding.Encode(fields)...)
	out = binary.BigEndian.AppendUint32(out, sum)
	return append(out, encoding.FrameEnd), nil
}

// Write serialises f and writes it to w.
func Write(w io.Writer, f Frame) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
