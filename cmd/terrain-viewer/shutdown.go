package main

import (
	"context"
	"sync"
)

// shutdown hands a stop request from closer's signal goroutine to the render
// loop, which owns the GL context. Stop blocks until the main thread has
// released its resources and called Finish.
type shutdown struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newShutdown() *shutdown {
	ctx, cancel := context.WithCancel(context.Background())
	return &shutdown{ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// Context is cancelled once a stop is requested.
func (s *shutdown) Context() context.Context { return s.ctx }

func (s *shutdown) Requested() bool { return s.ctx.Err() != nil }

// Stop requests a stop and waits for Finish.
func (s *shutdown) Stop() {
	s.cancel()
	<-s.done
}

// Finish marks cleanup as complete. Safe to call more than once.
func (s *shutdown) Finish() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
	})
}
