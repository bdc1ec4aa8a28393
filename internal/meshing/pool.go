package meshing

import (
	"context"
	"sync"

	"infworld/internal/world"
)

// MeshJob represents a chunk meshing request
type MeshJob struct {
	Seed       *world.Seed
	Coord      world.ChunkCoord
	MaxHeight  float32
	ChunkScale float32
	Prec       int
	// Tag is returned untouched with the result (e.g. a slot index)
	Tag int
	// Result channel - will be sent the result when done
	ResultChan chan<- MeshResult
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Tag     int
	Payload *ChunkPayload
}

// WorkerPool manages goroutines for chunk mesh generation.
// The seed is read-only, so workers share it without locking.
type WorkerPool struct {
	jobQueue chan MeshJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewWorkerPool creates a new mesh worker pool bound to ctx
func NewWorkerPool(ctx context.Context, workers int, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(ctx)
	workers = max(workers, 1)

	pool := &WorkerPool{
		jobQueue: make(chan MeshJob, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	// Start worker goroutines
	for range workers {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

// SubmitJob submits a mesh generation job to the pool
// Returns true if job was submitted successfully, false if queue is full
func (p *WorkerPool) SubmitJob(job MeshJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false // Queue is full
	}
}

// SubmitJobBlocking submits a job and blocks until it's queued.
// Returns false if the pool was shut down first.
func (p *WorkerPool) SubmitJobBlocking(job MeshJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// worker is the worker goroutine that processes mesh jobs
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			payload := BuildChunk(job.Seed, job.Coord.X, job.Coord.Z, job.MaxHeight, job.ChunkScale, job.Prec)

			// Send result back
			select {
			case job.ResultChan <- MeshResult{Tag: job.Tag, Payload: payload}:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown stops the workers and waits for them to exit. Safe to call twice.
func (p *WorkerPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// GetQueueLength returns the current number of jobs in the queue
func (p *WorkerPool) GetQueueLength() int {
	return len(p.jobQueue)
}
