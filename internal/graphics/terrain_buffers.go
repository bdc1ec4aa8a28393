package graphics

import (
	"fmt"

	"infworld/internal/meshing"
	"infworld/internal/terrain"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const (
	floatSize = 4
	indexSize = 4
)

// chunkBuffer is the GL state behind one terrain slot.
type chunkBuffer struct {
	vao, vbo uint32
	ibo      *sharedIndices
	size     int
}

// sharedIndices is one index buffer used by every slot of a table.
type sharedIndices struct {
	id    uint32
	count int32
	refs  int
}

// TerrainBuffers owns the vertex arrays of every terrain slot. Vertices hold
// [height, azimuth, elevation]; attribute 0 is the height, attribute 1 the
// compressed normal. Positions are rebuilt in the vertex shader.
type TerrainBuffers struct {
	chunks map[terrain.BufferHandle]*chunkBuffer
}

func NewTerrainBuffers() *TerrainBuffers {
	return &TerrainBuffers{chunks: make(map[terrain.BufferHandle]*chunkBuffer)}
}

func (b *TerrainBuffers) CreateBuffers(n int, indices []uint32) ([]terrain.BufferHandle, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("terrain buffers: empty index list")
	}
	ibo := &sharedIndices{count: int32(len(indices)), refs: n}
	gl.GenBuffers(1, &ibo.id)
	// Element bindings belong to a VAO, so fill the buffer through ARRAY_BUFFER.
	gl.BindBuffer(gl.ARRAY_BUFFER, ibo.id)
	gl.BufferData(gl.ARRAY_BUFFER, len(indices)*indexSize, gl.Ptr(indices), gl.STATIC_DRAW)

	vaos := make([]uint32, n)
	vbos := make([]uint32, n)
	gl.GenVertexArrays(int32(n), &vaos[0])
	gl.GenBuffers(int32(n), &vbos[0])

	handles := make([]terrain.BufferHandle, n)
	stride := int32(meshing.FloatsPerVertex * floatSize)
	for i := range handles {
		gl.BindVertexArray(vaos[i])
		gl.BindBuffer(gl.ARRAY_BUFFER, vbos[i])
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointer(0, 1, gl.FLOAT, false, stride, gl.PtrOffset(0))
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(floatSize))
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ibo.id)

		h := terrain.BufferHandle(vaos[i])
		b.chunks[h] = &chunkBuffer{vao: vaos[i], vbo: vbos[i], ibo: ibo}
		handles[i] = h
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if err := glError("create terrain buffers"); err != nil {
		return nil, err
	}
	return handles, nil
}

// Upload replaces the vertex data of a slot. Buffers keep their storage when
// the payload size does not change, which is every upload after the first.
func (b *TerrainBuffers) Upload(h terrain.BufferHandle, p *meshing.ChunkPayload) error {
	c, ok := b.chunks[h]
	if !ok {
		return fmt.Errorf("upload to unknown buffer %d", h)
	}
	size := len(p.Vertices) * floatSize
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	if size == c.size {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(p.Vertices))
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(p.Vertices), gl.DYNAMIC_DRAW)
		c.size = size
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return glError("upload terrain chunk")
}

func (b *TerrainBuffers) DestroyBuffers(hs []terrain.BufferHandle) {
	for _, h := range hs {
		c, ok := b.chunks[h]
		if !ok {
			continue
		}
		gl.DeleteVertexArrays(1, &c.vao)
		gl.DeleteBuffers(1, &c.vbo)
		c.ibo.refs--
		if c.ibo.refs == 0 {
			gl.DeleteBuffers(1, &c.ibo.id)
		}
		delete(b.chunks, h)
	}
}

// Draw issues the indexed draw call of one slot.
func (b *TerrainBuffers) Draw(h terrain.BufferHandle) {
	c, ok := b.chunks[h]
	if !ok || c.size == 0 {
		return
	}
	gl.BindVertexArray(c.vao)
	gl.DrawElements(gl.TRIANGLES, c.ibo.count, gl.UNSIGNED_INT, gl.PtrOffset(0))
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: gl error 0x%x", op, code)
	}
	return nil
}
