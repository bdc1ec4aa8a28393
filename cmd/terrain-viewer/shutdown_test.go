package main

import (
	"testing"
	"time"
)

func TestShutdownStopWaitsForFinish(t *testing.T) {
	s := newShutdown()
	if s.Requested() {
		t.Fatalf("fresh shutdown already requested")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-s.Context().Done():
	case <-time.After(time.Second):
		t.Fatalf("Stop did not cancel the context")
	}
	if !s.Requested() {
		t.Errorf("Requested() = false after Stop")
	}
	select {
	case <-stopped:
		t.Fatalf("Stop returned before Finish")
	case <-time.After(20 * time.Millisecond):
	}

	s.Finish()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("Stop still blocked after Finish")
	}
}

func TestShutdownFinishTwice(t *testing.T) {
	s := newShutdown()
	s.Finish()
	s.Finish()
	s.Stop()
	if !s.Requested() {
		t.Errorf("Requested() = false after Finish")
	}
}
