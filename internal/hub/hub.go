// Package hub runs the headless listener side of the frame terminal: it
// accepts TCP transports, hands each one to the session manager, and
// mirrors newly decoded frames to the log. Rendering and physical
// endpoint enumeration stay outside the core.
package hub

import (
	"context"
	"net"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sercom-core/pkg/frame"
	"sercom-core/pkg/session"
	"sercom-core/pkg/transport"
)

// Options configures the hub.
type Options struct {
	Addr        string
	AcceptRate  int // accepted transports per second
	AcceptBurst int
	Log         *zap.Logger
}

// Server accepts transports and drives one session manager.
type Server struct {
	opts Options
	log  *zap.Logger
	mgr  *session.Manager

	mu    sync.Mutex
	addr  net.Addr
	ready chan struct{}
}

func New(opts Options) *Server {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.AcceptRate <= 0 {
		opts.AcceptRate = 10
	}
	return &Server{
		opts:  opts,
		log:   opts.Log,
		mgr:   session.New(session.Options{Log: opts.Log}),
		ready: make(chan struct{}),
	}
}

// Manager exposes the session manager, mainly for tests and embedding.
func (s *Server) Manager() *session.Manager {
	return s.mgr
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listen address; valid after Ready.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run listens and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := transport.ListenTCP(s.opts.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	close(s.ready)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.mgr.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})
	g.Go(func() error {
		s.watchFrames(ctx)
		return nil
	})
	g.Go(func() error {
		return s.acceptLoop(ctx, ln)
	})
	return g.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, ln *transport.TCPListener) error {
	bucket := NewTokenBucket(s.opts.AcceptRate, s.opts.AcceptBurst)
	for {
		conn, err := ln.AcceptConn()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if !bucket.Allow() {
			s.log.Warn("accept rate exceeded, dropping transport",
				zap.String("remote", remoteAddr(conn)))
			conn.Close()
			continue
		}
		h, err := s.mgr.Register(ctx, conn)
		if err != nil {
			conn.Close()
			return err
		}
		s.log.Info("transport accepted",
			zap.Uint64("handle", uint64(h)),
			zap.String("remote", remoteAddr(conn)))
	}
}

func remoteAddr(c transport.Conn) string {
	if nc, ok := c.(net.Conn); ok {
		return nc.RemoteAddr().String()
	}
	return "unknown"
}

// watchFrames tails the store and logs every frame not yet seen. It is
// the headless stand-in for the presentation layer.
func (s *Server) watchFrames(ctx context.Context) {
	seen := make(map[session.Handle]int)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.mgr.Refresh():
		}
		store := s.mgr.Store()
		for _, h := range store.Handles() {
			frames := store.Received(h)
			for _, f := range frames[seen[h]:] {
				s.logFrame(h, f)
			}
			seen[h] = len(frames)
		}
	}
}

func (s *Server) logFrame(h session.Handle, f frame.Frame) {
	sum, err := f.CRC32()
	if err != nil {
		return
	}
	s.log.Info("frame received",
		zap.Uint64("handle", uint64(h)),
		zap.Uint8("sender", f.Sender),
		zap.Uint8("receiver", f.Receiver),
		zap.Int("len", len(f.Data)),
		zap.Uint32("crc32", sum))
}
