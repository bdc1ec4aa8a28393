package meshing

import (
	"context"
	"testing"
	"time"

	"infworld/internal/world"
)

func TestWorkerPoolMatchesSerialBuild(t *testing.T) {
	s := world.NewSeed(42)
	pool := NewWorkerPool(context.Background(), 4, 16)
	defer pool.Shutdown()

	coords := []world.ChunkCoord{{0, 0}, {1, 0}, {-1, 2}, {3, -3}, {5, 5}, {-4, 0}}
	results := make(chan MeshResult, len(coords))
	for i, c := range coords {
		ok := pool.SubmitJobBlocking(MeshJob{
			Seed:       s,
			Coord:      c,
			MaxHeight:  testMaxHeight,
			ChunkScale: testScale,
			Prec:       8,
			Tag:        i,
			ResultChan: results,
		})
		if !ok {
			t.Fatalf("submit %d rejected", i)
		}
	}

	seen := make(map[int]bool)
	for range coords {
		select {
		case r := <-results:
			c := coords[r.Tag]
			want := BuildChunk(s, c.X, c.Z, testMaxHeight, testScale, 8)
			if hashPayload(r.Payload) != hashPayload(want) {
				t.Errorf("tag %d: pooled payload differs from serial build", r.Tag)
			}
			if r.Payload.Coord != c {
				t.Errorf("tag %d: coord %v, want %v", r.Tag, r.Payload.Coord, c)
			}
			seen[r.Tag] = true
		case <-time.After(10 * time.Second):
			t.Fatalf("timed out waiting for results")
		}
	}
	if len(seen) != len(coords) {
		t.Errorf("got %d distinct results, want %d", len(seen), len(coords))
	}
}

func TestWorkerPoolShutdown(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0, 1)
	if pool.Workers() != 1 {
		t.Errorf("Workers() = %d, want at least 1", pool.Workers())
	}
	pool.Shutdown()
	pool.Shutdown()

	// No workers drain the queue after shutdown, so the second submit finds it full.
	if !pool.SubmitJob(MeshJob{}) {
		t.Fatalf("first submit should fit the buffer")
	}
	if pool.SubmitJob(MeshJob{}) {
		t.Errorf("second submit should report a full queue")
	}
	if pool.GetQueueLength() != 1 {
		t.Errorf("queue length = %d, want 1", pool.GetQueueLength())
	}
}
