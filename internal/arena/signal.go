package arena

import "sync"

// turnSignal is a wake-all, auto-resetting notification primitive. Broadcast
// wakes every waiter currently holding the channel; the replacement channel
// guarantees a waiter that arrives after the broadcast sees no stale signal.
//
// Callers must take the channel via Wait BEFORE checking the condition they
// are waiting on, then re-check after the channel fires.
type turnSignal struct {
	mu sync.Mutex
	ch chan struct{}
}

func newTurnSignal() *turnSignal {
	return &turnSignal{ch: make(chan struct{})}
}

// Wait returns the channel that closes on the next Broadcast.
func (s *turnSignal) Wait() <-chan struct{} {
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	return ch
}

// Broadcast wakes all current waiters and resets the signal.
func (s *turnSignal) Broadcast() {
	s.mu.Lock()
	close(s.ch)
	s.ch = make(chan struct{})
	s.mu.Unlock()
}
