// Package session multiplexes any number of transport connections
// behind a single command-driven manager. Every registered connection
// gets a dedicated worker goroutine that owns the transport's read and
// write activity and feeds inbound bytes through a private frame
// reassembler; register, close and send requests flow through one
// command queue and are processed strictly in submission order.
package session

import (
	"errors"

	"sercom-core/pkg/transport"
)

// Handle identifies a registered connection. Handles are minted from a
// per-manager monotonic counter and are never reused for the lifetime
// of the process.
type Handle uint64

var (
	// ErrHandleNotFound reports a send or lookup against a handle that
	// is not in the registry.
	ErrHandleNotFound = errors.New("connection handle not found")

	// ErrWorkerUnavailable reports a worker whose send queue has been
	// torn down or is no longer draining.
	ErrWorkerUnavailable = errors.New("unable to hand data to worker, queue closed")
)

// command is one entry in the manager's single-consumer queue.
type command interface {
	isCommand()
}

type registerCmd struct {
	conn  transport.Conn
	reply chan Handle
}

type closeCmd struct {
	handle Handle
}

type sendCmd struct {
	handle Handle
	data   []byte
	reply  chan error
}

func (*registerCmd) isCommand() {}
func (*closeCmd) isCommand()    {}
func (*sendCmd) isCommand()     {}

// sendRequest is the unit handed from the command loop to a worker.
type sendRequest struct {
	data  []byte
	reply chan error
}
