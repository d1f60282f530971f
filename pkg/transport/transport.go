// Package transport defines the byte-stream boundary the session layer
// drives. The core never opens or configures physical endpoints; an
// external collaborator supplies an already-opened duplex channel. A
// TCP link and an in-memory pair are provided as stand-ins for a
// physical serial endpoint in tests and deployments without hardware.
package transport

import "io"

// Conn is any duplex byte-oriented channel with independent read and
// write sides. The session layer does not care what concrete transport
// it is driving.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
}
