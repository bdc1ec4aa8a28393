package terrain

import (
	"fmt"
	"sync"

	"infworld/internal/meshing"
)

// BufferHandle is an opaque GPU buffer identity owned by a BufferOwner.
type BufferHandle uint32

// BufferOwner creates, fills and destroys the GPU buffers backing chunk slots.
// Handles are created once per slot table and stay valid until destroyed;
// Upload replaces a buffer's contents without changing its identity.
type BufferOwner interface {
	CreateBuffers(n int, indices []uint32) ([]BufferHandle, error)
	Upload(h BufferHandle, p *meshing.ChunkPayload) error
	DestroyBuffers(hs []BufferHandle)
}

// MemoryBuffers is a BufferOwner that keeps the most recent payload of every
// buffer in memory. Headless hosts and tests use it in place of a GPU.
type MemoryBuffers struct {
	mu       sync.Mutex
	next     BufferHandle
	payloads map[BufferHandle]*meshing.ChunkPayload
	live     map[BufferHandle]bool
	uploads  int
}

// NewMemoryBuffers returns an empty in-memory buffer owner.
func NewMemoryBuffers() *MemoryBuffers {
	return &MemoryBuffers{
		payloads: make(map[BufferHandle]*meshing.ChunkPayload),
		live:     make(map[BufferHandle]bool),
	}
}

func (m *MemoryBuffers) CreateBuffers(n int, indices []uint32) ([]BufferHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hs := make([]BufferHandle, n)
	for i := range hs {
		m.next++
		hs[i] = m.next
		m.live[m.next] = true
	}
	return hs, nil
}

func (m *MemoryBuffers) Upload(h BufferHandle, p *meshing.ChunkPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live[h] {
		return fmt.Errorf("upload to unknown buffer %d", h)
	}
	m.payloads[h] = p
	m.uploads++
	return nil
}

func (m *MemoryBuffers) DestroyBuffers(hs []BufferHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range hs {
		delete(m.live, h)
		delete(m.payloads, h)
	}
}

// Payload returns the last payload uploaded to h.
func (m *MemoryBuffers) Payload(h BufferHandle) (*meshing.ChunkPayload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payloads[h]
	return p, ok
}

// Uploads returns the total number of successful uploads.
func (m *MemoryBuffers) Uploads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads
}

// Live returns the number of buffers created and not yet destroyed.
func (m *MemoryBuffers) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}
