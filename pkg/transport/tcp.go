package transport

import (
	"net"
	"time"
)

// TCPDialer dials TCP endpoints with timeouts.
type TCPDialer struct {
	Timeout time.Duration
}

func (d TCPDialer) Dial(addr string) (Conn, error) {
	timeout := d.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return net.DialTimeout("tcp", addr, timeout)
}

// TCPListener wraps net.Listener so accepted connections surface as
// transport Conns.
type TCPListener struct {
	net.Listener
}

func ListenTCP(addr string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TCPListener{Listener: ln}, nil
}

// AcceptConn accepts the next connection as a Conn.
func (l *TCPListener) AcceptConn() (Conn, error) {
	c, err := l.Accept()
	if err != nil {
		return nil, err
	}
	return c, nil
}
