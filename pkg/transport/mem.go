package transport

import (
	"errors"
	"io"
	"sync"
	"time"
)

// ErrClosed is returned by pipe operations after Close.
var ErrClosed = errors.New("pipe closed")

type timeoutError struct{}

func (timeoutError) Error() string   { return "deadline exceeded" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// Pipe is one end of an in-memory duplex byte stream, used for testing
// frame flow without a physical link. Unlike a packet device, reads
// drain partial chunks the way a real serial line would.
type Pipe struct {
	peer *Pipe

	inbox chan []byte
	done  chan struct{}
	once  sync.Once

	mu       sync.Mutex
	pending  []byte
	deadline time.Time
}

// NewPair returns two connected Pipes; bytes written to one are read
// from the other.
func NewPair() (*Pipe, *Pipe) {
	a := &Pipe{inbox: make(chan []byte, 16), done: make(chan struct{})}
	b := &Pipe{inbox: make(chan []byte, 16), done: make(chan struct{})}
	a.peer = b
	b.peer = a
	return a, b
}

func (p *Pipe) Write(data []byte) (int, error) {
	select {
	case <-p.done:
		return 0, ErrClosed
	case <-p.peer.done:
		return 0, io.ErrClosedPipe
	default:
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	select {
	case p.peer.inbox <- cp:
		return len(data), nil
	case <-p.peer.done:
		return 0, io.ErrClosedPipe
	case <-p.done:
		return 0, ErrClosed
	}
}

func (p *Pipe) Read(buf []byte) (int, error) {
	p.mu.Lock()
	if len(p.pending) > 0 {
		n := copy(buf, p.pending)
		p.pending = p.pending[n:]
		p.mu.Unlock()
		return n, nil
	}
	deadline := p.deadline
	p.mu.Unlock()

	// drain buffered chunks even after either side closed
	select {
	case chunk := <-p.inbox:
		return p.deliver(buf, chunk), nil
	default:
	}

	var timeout <-chan time.Time
	if !deadline.IsZero() {
		timeout = time.After(time.Until(deadline))
	}

	select {
	case chunk := <-p.inbox:
		return p.deliver(buf, chunk), nil
	case <-p.done:
		return 0, ErrClosed
	case <-p.peer.done:
		return 0, io.EOF
	case <-timeout:
		return 0, timeoutError{}
	}
}

func (p *Pipe) deliver(buf, chunk []byte) int {
	n := copy(buf, chunk)
	if n < len(chunk) {
		p.mu.Lock()
		p.pending = append(p.pending, chunk[n:]...)
		p.mu.Unlock()
	}
	return n
}

// Close shuts down this end. Pending reads on both ends unblock: this
// end with ErrClosed, the peer with io.EOF.
func (p *Pipe) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

func (p *Pipe) SetReadDeadline(t time.Time) error {
	p.mu.Lock()
	p.deadline = t
	p.mu.Unlock()
	return nil
}

var _ Conn = (*Pipe)(nil)
