// Package conformance exposes the frame model's public operations
// behind a minimal, representation-independent interface, so that an
// independent implementation of the same wire protocol can be driven
// frame-for-frame and compared byte-for-byte against this one. It is a
// test-only boundary, not a production dependency.
package conformance

import (
	"bytes"
	"fmt"

	"sercom-core/pkg/frame"
)

// Codec is the neutral surface both implementations expose: construct
// and serialize a frame from plain fields, and parse wire bytes back
// into plain fields.
type Codec interface {
	Serialize(sender, receiver byte, data []byte) ([]byte, error)
	Deserialize(wire []byte) (sender, receiver byte, data []byte, err error)
}

// Native adapts this module's frame package to the Codec interface.
type Native struct{}

func (Native) Serialize(sender, receiver byte, data []byte) ([]byte, error) {
	return frame.Encode(frame.Frame{Sender: sender, Receiver: receiver, Data: data})
}

func (Native) Deserialize(wire []byte) (byte, byte, []byte, error) {
	f, err := frame.Decode(wire)
	if err != nil {
		return 0, 0, nil, err
	}
	return f.Sender, f.Receiver, f.Data, nil
}

// Case is one conformance input.
type Case struct {
	Sender   byte
	Receiver byte
	Data     []byte
}

// Compare serializes every case with both codecs and cross-deserializes
// the results. The first divergence is returned as an error naming the
// case and the direction that failed.
func Compare(a, b Codec, cases []Case) error {
	for i, c := range cases {
		wireA, err := a.Serialize(c.Sender, c.Receiver, c.Data)
		if err != nil {
			return fmt.Errorf("case %d: codec A serialize: %w", i, err)
		}
		wireB, err := b.Serialize(c.Sender, c.Receiver, c.Data)
		if err != nil {
			return fmt.Errorf("case %d: codec B serialize: %w", i, err)
		}
		if !bytes.Equal(wireA, wireB) {
			return fmt.Errorf("case %d: wire divergence: A=% x B=% x", i, wireA, wireB)
		}
		if err := checkParse(b, wireA, c, fmt.Sprintf("case %d: codec B parse of A's bytes", i)); err != nil {
			return err
		}
		if err := checkParse(a, wireB, c, fmt.Sprintf("case %d: codec A parse of B's bytes", i)); err != nil {
			return err
		}
	}
	return nil
}

func checkParse(c Codec, wire []byte, want Case, label string) error {
	sender, receiver, data, err := c.Deserialize(wire)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	if sender != want.Sender || receiver != want.Receiver || !bytes.Equal(data, want.Data) {
		return fmt.Errorf("%s: field mismatch: got (%d,%d,% x)", label, sender, receiver, data)
	}
	return nil
}
