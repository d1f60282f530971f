package session

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"sercom-core/pkg/transport"
)

// Options configures a Manager. Zero values select defaults.
type Options struct {
	Log *zap.Logger

	// ReadBufSize is the per-connection read chunk size.
	ReadBufSize int

	// SendQueueLen bounds how many send requests a worker may have
	// pending before further sends are refused.
	SendQueueLen int
}

// Manager owns the connection registry and the command loop. The
// registry is touched only by the goroutine running Run, so commands
// across all connections are dispatched in one total order.
type Manager struct {
	log          *zap.Logger
	store        *Store
	cmds         chan command
	notify       chan struct{}
	readBufSize  int
	sendQueueLen int

	nextHandle atomic.Uint64

	// command-loop state, never shared
	devices map[Handle]*deviceState
}

// deviceState is the control record for one worker.
type deviceState struct {
	cancel context.CancelFunc
	sendQ  chan sendRequest
	done   chan struct{}
}

// New returns a Manager. Call Run to start processing commands.
func New(opts Options) *Manager {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.ReadBufSize <= 0 {
		opts.ReadBufSize = 128
	}
	if opts.SendQueueLen <= 0 {
		opts.SendQueueLen = 16
	}
	return &Manager{
		log:          opts.Log,
		store:        NewStore(),
		cmds:         make(chan command, 1),
		notify:       make(chan struct{}, 1),
		readBufSize:  opts.ReadBufSize,
		sendQueueLen: opts.SendQueueLen,
		devices:      make(map[Handle]*deviceState),
	}
}

// Store exposes the per-handle frame logs for the presentation layer.
func (m *Manager) Store() *Store {
	return m.store
}

// Refresh returns a channel that receives a coalesced signal whenever
// new frames become visible in the store. What the consumer does with
// it (a UI repaint, a poll) is opaque to the core.
func (m *Manager) Refresh() <-chan struct{} {
	return m.notify
}

// Run processes commands until ctx is canceled, then signals every
// worker to stop and returns ctx.Err(). It must be running for
// Register, Close and Send to make progress.
func (m *Manager) Run(ctx context.Context) error {
	defer func() {
		for h, dev := range m.devices {
			dev.cancel()
			delete(m.devices, h)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-m.cmds:
			m.dispatch(ctx, cmd)
		}
	}
}

// Register hands an already-opened transport to the manager and returns
// the handle of the worker spawned for it. Registration never fails for
// a live manager: the worker and registry entry are created even if the
// caller abandons the call before the reply arrives.
func (m *Manager) Register(ctx context.Context, conn transport.Conn) (Handle, error) {
	reply := make(chan Handle, 1)
	select {
	case m.cmds <- &registerCmd{conn: conn, reply: reply}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case h := <-reply:
		return h, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Close signals the worker for handle to stop and removes it from the
// registry. Closing an unknown handle is a no-op.
func (m *Manager) Close(ctx context.Context, handle Handle) error {
	select {
	case m.cmds <- &closeCmd{handle: handle}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send queues raw outbound bytes for the worker owning handle and waits
// for the write result. An unknown handle or an unavailable worker is
// reported through the returned error, never by blocking the command
// loop.
func (m *Manager) Send(ctx context.Context, handle Handle, data []byte) error {
	reply := make(chan error, 1)
	select {
	case m.cmds <- &sendCmd{handle: handle, data: data, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch applies one command to the registry. Reply channels are
// buffered by the callers, so no branch can block the loop.
func (m *Manager) dispatch(ctx context.Context, cmd command) {
	switch c := cmd.(type) {
	case *registerCmd:
		h := Handle(m.nextHandle.Add(1))
		workerCtx, cancel := context.WithCancel(ctx)
		dev := &deviceState{
			cancel: cancel,
			sendQ:  make(chan sendRequest, m.sendQueueLen),
			done:   make(chan struct{}),
		}
		m.devices[h] = dev
		m.store.ensure(h)
		go func() {
			m.runWorker(workerCtx, cancel, h, c.conn, dev.sendQ, dev.done)
			// keep answering sends that raced with the teardown, so
			// no caller is left waiting on a dead worker
			for {
				select {
				case req := <-dev.sendQ:
					req.reply <- ErrWorkerUnavailable
				case <-ctx.Done():
					return
				}
			}
		}()
		c.reply <- h
		m.log.Info("device registered", zap.Uint64("handle", uint64(h)))

	case *closeCmd:
		dev, ok := m.devices[c.handle]
		if !ok {
			return
		}
		dev.cancel()
		delete(m.devices, c.handle)
		m.log.Info("device closed", zap.Uint64("handle", uint64(c.handle)))

	case *sendCmd:
		dev, ok := m.devices[c.handle]
		if !ok {
			c.reply <- ErrHandleNotFound
			return
		}
		select {
		case <-dev.done:
			// worker died on its own; drop the stale entry
			delete(m.devices, c.handle)
			c.reply <- ErrWorkerUnavailable
		case dev.sendQ <- sendRequest{data: c.data, reply: c.reply}:
		default:
			c.reply <- ErrWorkerUnavailable
		}
	}
}

// requestRefresh coalesces notifications; a pending signal is enough.
func (m *Manager) requestRefresh() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}
