package conformance

import (
	"bytes"
	"errors"
	"testing"
)

// recordedCodec replays wire captures taken from the companion
// implementation of the protocol, standing in for driving it live.
type recordedCodec struct {
	vectors []vector
}

type vector struct {
	c    Case
	wire []byte
}

var errNoCapture = errors.New("no capture for input")

func (r *recordedCodec) Serialize(sender, receiver byte, data []byte) ([]byte, error) {
	for _, v := range r.vectors {
		if v.c.Sender == sender && v.c.Receiver == receiver && bytes.Equal(v.c.Data, data) {
			return append([]byte(nil), v.wire...), nil
		}
	}
	return nil, errNoCapture
}

func (r *recordedCodec) Deserialize(wire []byte) (byte, byte, []byte, error) {
	for _, v := range r.vectors {
		if bytes.Equal(v.wire, wire) {
			return v.c.Sender, v.c.Receiver, append([]byte(nil), v.c.Data...), nil
		}
	}
	return 0, 0, nil, errNoCapture
}

// captures from the companion implementation, CRC and stuffing included
var companionVectors = []vector{
	{
		c:    Case{Sender: 133, Receiver: 20},
		wire: []byte{0x28, 0x85, 0x14, 0x00, 0x00, 0xdb, 0x92, 0x4c, 0xb8, 0x29},
	},
	{
		c: Case{Sender: 253, Receiver: 150, Data: []byte("hell(o w)or\x1bld")},
		wire: []byte{
			0x28, 0xfd, 0x96, 0x00, 0x0e,
			'h', 'e', 'l', 'l', 0x1b, 0x42, 'o', ' ', 'w', 0x1b, 0x43, 'o', 'r', 0x1b, 0x41, 'l', 'd',
			0x4e, 0x07, 0xe3, 0xac,
			0x29,
		},
	},
	{
		c:    Case{Sender: 1, Receiver: 2, Data: []byte("ping")},
		wire: []byte{0x28, 0x01, 0x02, 0x00, 0x04, 'p', 'i', 'n', 'g', 0xbe, 0xab, 0x86, 0xa6, 0x29},
	},
	{
		c:    Case{Sender: 7, Receiver: 9, Data: []byte{0, 1, 2, 3}},
		wire: []byte{0x28, 0x07, 0x09, 0x00, 0x04, 0x00, 0x01, 0x02, 0x03, 0x5f, 0x53, 0x34, 0xbd, 0x29},
	},
	{
		c:    Case{},
		wire: []byte{0x28, 0x00, 0x00, 0x00, 0x00, 0xc7, 0x04, 0xdd, 0x7b, 0x29},
	},
}

func TestNativeMatchesCompanionCaptures(t *testing.T) {
	recorded := &recordedCodec{vectors: companionVectors}
	cases := make([]Case, 0, len(companionVectors))
	for _, v := range companionVectors {
		cases = append(cases, v.c)
	}
	if err := Compare(Native{}, recorded, cases); err != nil {
		t.Fatalf("conformance failure: %v", err)
	}
}

func TestCompareDetectsDivergence(t *testing.T) {
	broken := &recordedCodec{vectors: []vector{{
		c:    Case{Sender: 1, Receiver: 2, Data: []byte("ping")},
		wire: []byte{0x28, 0x01, 0x02, 0x00, 0x04, 'p', 'i', 'n', 'g', 0xde, 0xad, 0xbe, 0xef, 0x29},
	}}}
	err := Compare(Native{}, broken, []Case{{Sender: 1, Receiver: 2, Data: []byte("ping")}})
	if err == nil {
		t.Fatal("expected divergence to be detected")
	}
}

func TestNativeSelfConsistent(t *testing.T) {
	cases := []Case{
		{Sender: 0, Receiver: 255, Data: []byte{0x28, 0x29, 0x1b}},
		{Sender: 200, Receiver: 100, Data: bytes.Repeat([]byte{0x1b}, 33)},
		{Sender: 1, Receiver: 1, Data: make([]byte, 1024)},
	}
	if err := Compare(Native{}, Native{}, cases); err != nil {
		t.Fatalf("self comparison failed: %v", err)
	}
}
