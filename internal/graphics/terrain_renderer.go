package graphics

import (
	_ "embed"

	"infworld/internal/graphics/frustum"
	"infworld/internal/profiling"
	"infworld/internal/terrain"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	//go:embed shaders/terrain.vert
	terrainVertShader string
	//go:embed shaders/terrain.frag
	terrainFragShader string
)

var lightDir = mgl32.Vec3{-0.57735, -0.57735, -0.57735}

// TerrainRenderer draws the visible chunks of a terrain manager.
type TerrainRenderer struct {
	shader  *Shader
	buffers *TerrainBuffers
	terrain *terrain.Manager

	// Chunks drawn in the last frame, per level.
	drawn []int
}

// NewTerrainRenderer compiles the terrain shader. buffers must be the owner
// the manager was created with.
func NewTerrainRenderer(buffers *TerrainBuffers, m *terrain.Manager) (*TerrainRenderer, error) {
	shader, err := NewShader(terrainVertShader, terrainFragShader)
	if err != nil {
		return nil, err
	}
	return &TerrainRenderer{
		shader:  shader,
		buffers: buffers,
		terrain: m,
		drawn:   make([]int, m.Levels()),
	}, nil
}

// Render draws every level inside its band around the camera.
func (r *TerrainRenderer) Render(cam *Camera) {
	defer profiling.Track("graphics.TerrainRenderer.Render")()

	cfg := r.terrain.Config()
	view := cam.GetViewMatrix()
	proj := cam.GetProjectionMatrix()

	r.shader.Use()
	r.shader.SetMatrix4("persp", &proj)
	r.shader.SetMatrix4("view", &view)
	r.shader.SetVector3("lightdir", lightDir)
	r.shader.SetVector3("camerapos", cam.Position)
	r.shader.SetVector2("center", cam.Position.X(), cam.Position.Z())
	r.shader.SetFloat("maxheight", cfg.MaxHeight)
	r.shader.SetFloat("fogdist", r.terrain.ViewDistance())
	r.shader.SetInt("prec", int32(cfg.Prec))

	clip := frustum.FromMatrix(proj.Mul4(view))
	top := cfg.MaxHeight * cfg.WorldScale
	culled := 0

	clear(r.drawn)
	level := -1
	r.terrain.ForEachVisibleChunk(func(vc terrain.VisibleChunk) {
		half := r.terrain.Footprint(vc.Level) / 2
		x := float32(vc.Coord.X) * half * 2
		z := float32(vc.Coord.Z) * half * 2
		if !clip.IntersectsAABB(mgl32.Vec3{x - half, -top, z - half}, mgl32.Vec3{x + half, top, z + half}) {
			culled++
			return
		}
		if vc.Level != level {
			level = vc.Level
			r.shader.SetFloat("chunksz", vc.ChunkScale)
			r.shader.SetFloat("minrange", vc.Band.Min)
			r.shader.SetFloat("maxrange", vc.Band.Max)
		}
		r.shader.SetMatrix4("transform", &vc.Transform)
		r.buffers.Draw(vc.Handle)
		r.drawn[vc.Level]++
	})
	gl.BindVertexArray(0)

	total := 0
	for _, n := range r.drawn {
		total += n
	}
	profiling.Count("graphics.chunksDrawn", int64(total))
	profiling.Count("graphics.chunksCulled", int64(culled))
}

// Drawn returns the number of chunks drawn per level in the last frame.
func (r *TerrainRenderer) Drawn() []int {
	return r.drawn
}

// Dispose releases the shader. Buffers are released by the manager.
func (r *TerrainRenderer) Dispose() {
	r.shader.Delete()
}
