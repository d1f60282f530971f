package session

import (
	"context"

	"go.uber.org/zap"

	"sercom-core/pkg/frame"
	"sercom-core/pkg/transport"
)

// runWorker owns one transport for its whole life. It waits on three
// event sources with cancellation checked first, so a close request
// interrupts pending work at the next wait point. A failed write is
// reported to the sender and the connection stays up; a failed read
// tears the connection down.
func (m *Manager) runWorker(ctx context.Context, cancel context.CancelFunc, h Handle, conn transport.Conn, sendQ chan sendRequest, done chan struct{}) {
	log := m.log.With(zap.Uint64("handle", uint64(h)))
	defer close(done)
	defer conn.Close()
	defer cancel()

	readCh := make(chan []byte, 4)
	readErr := make(chan error, 1)
	go readLoop(ctx, conn, m.readBufSize, readCh, readErr)

	builder := frame.NewBuilder(log)

	for {
		// cancellation outranks data
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return

		case req := <-sendQ:
			err := writeAll(conn, req.data)
			if err != nil {
				log.Warn("transport write failed", zap.Error(err))
			} else {
				log.Info("sent bytes", zap.Int("len", len(req.data)))
				m.recordSent(h, req.data)
			}
			req.reply <- err

		case chunk := <-readCh:
			frames := builder.Push(chunk)
			if len(frames) == 0 {
				continue
			}
			m.store.appendReceived(h, frames)
			m.requestRefresh()

		case err := <-readErr:
			log.Warn("transport read failed, closing device", zap.Error(err))
			return
		}
	}
}

// readLoop pumps the blocking transport read into a channel the worker
// can select on. It exits when the read fails, which includes the
// worker closing the transport on its way out.
func readLoop(ctx context.Context, conn transport.Conn, bufSize int, readCh chan<- []byte, readErr chan<- error) {
	buf := make([]byte, bufSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case readCh <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			readErr <- err
			return
		}
	}
}

// writeAll pushes the whole payload through short writes.
func writeAll(conn transport.Conn, data []byte) error {
	for len(data) > 0 {
		n, err := conn.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// recordSent logs outbound bytes that parse as a single frame into the
// sent side of the store. Callers normally send serialized frames, but
// raw byte blobs are legal and simply are not recorded.
func (m *Manager) recordSent(h Handle, data []byte) {
	f, err := frame.Decode(data)
	if err != nil {
		return
	}
	m.store.appendSent(h, f)
	m.requestRefresh()
}
