package session

import (
	"sync"

	"sercom-core/pkg/frame"
)

// Store holds the per-handle frame logs consumed by the presentation
// layer. It is the only state shared between workers and consumers;
// every access goes through the mutex. Logs are append-only and survive
// the connection they belong to, so a closed device's history stays
// readable.
type Store struct {
	mu   sync.Mutex
	logs map[Handle]*deviceLog
}

type deviceLog struct {
	received []frame.Frame
	sent     []frame.Frame
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{logs: make(map[Handle]*deviceLog)}
}

// Received returns a snapshot of the frames decoded from the handle's
// transport so far, in arrival order.
func (s *Store) Received(h Handle) []frame.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.logs[h]; ok {
		return append([]frame.Frame(nil), l.received...)
	}
	return nil
}

// Sent returns a snapshot of the frames successfully written to the
// handle's transport so far, in write order.
func (s *Store) Sent(h Handle) []frame.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.logs[h]; ok {
		return append([]frame.Frame(nil), l.sent...)
	}
	return nil
}

// Handles lists every handle the store has seen, including closed ones.
func (s *Store) Handles() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Handle, 0, len(s.logs))
	for h := range s.logs {
		out = append(out, h)
	}
	return out
}

func (s *Store) ensure(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logs[h]; !ok {
		s.logs[h] = &deviceLog{}
	}
}

func (s *Store) appendReceived(h Handle, frames []frame.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[h]
	if !ok {
		l = &deviceLog{}
		s.logs[h] = l
	}
	l.received = append(l.received, frames...)
}

func (s *Store) appendSent(h Handle, f frame.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[h]
	if !ok {
		l = &deviceLog{}
		s.logs[h] = l
	}
	l.sent = append(l.sent, f)
}
