package meshing

import (
	"math"

	"infworld/internal/profiling"
	"infworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// FloatsPerVertex is the payload stride: normalized height, azimuth, elevation.
	FloatsPerVertex = 3

	// normalEpsilon is the forward-difference step used to estimate normals.
	normalEpsilon float32 = 0.01
)

// ChunkPayload is the vertex data for one chunk. Vertices are laid out with
// the x grid index outer and the z grid index inner.
type ChunkPayload struct {
	Coord    world.ChunkCoord
	Prec     int
	Vertices []float32
}

// VertexCount returns (prec+1)^2.
func (p *ChunkPayload) VertexCount() int {
	return (p.Prec + 1) * (p.Prec + 1)
}

// VertexIndex maps grid indices to the vertex index.
func (p *ChunkPayload) VertexIndex(i, j int) int {
	return i*(p.Prec+1) + j
}

// Height returns the normalized height stored for grid vertex (i, j).
func (p *ChunkPayload) Height(i, j int) float32 {
	return p.Vertices[p.VertexIndex(i, j)*FloatsPerVertex]
}

// Normal decodes the surface normal stored for grid vertex (i, j).
func (p *ChunkPayload) Normal(i, j int) mgl32.Vec3 {
	base := p.VertexIndex(i, j) * FloatsPerVertex
	return DecodeNormal(p.Vertices[base+1], p.Vertices[base+2])
}

// EncodeNormal compresses a unit normal to its azimuth and elevation.
func EncodeNormal(n mgl32.Vec3) (azimuth, elevation float32) {
	azimuth = float32(math.Atan2(float64(n.Z()), float64(n.X())))
	elevation = float32(math.Asin(float64(mgl32.Clamp(n.Y(), -1, 1))))
	return azimuth, elevation
}

// DecodeNormal expands an azimuth/elevation pair back into a unit vector.
func DecodeNormal(azimuth, elevation float32) mgl32.Vec3 {
	ce := float32(math.Cos(float64(elevation)))
	return mgl32.Vec3{
		ce * float32(math.Cos(float64(azimuth))),
		float32(math.Sin(float64(elevation))),
		ce * float32(math.Sin(float64(azimuth))),
	}
}

// LocalOffset returns the offset of grid index i from the chunk center in
// noise-space units. Both chunk edges land exactly on +-chunkScale so that
// neighbouring chunks share their border samples.
func LocalOffset(i, prec int, chunkScale float32) float32 {
	return -chunkScale + float32(i)/float32(prec)*chunkScale*2
}

// SampleCoord returns the noise-space coordinate of grid index i in chunk c.
func SampleCoord(c, i, prec int, chunkScale float32) float32 {
	return LocalOffset(i, prec, chunkScale) + float32(c)*chunkScale*2
}

// BuildChunk samples the height field over a (prec+1)^2 grid and returns the
// vertex payload for chunk (chunkX, chunkZ).
func BuildChunk(seed *world.Seed, chunkX, chunkZ int, maxHeight, chunkScale float32, prec int) *ChunkPayload {
	defer profiling.Track("meshing.BuildChunk")()

	field := world.NewHeightField(seed, maxHeight)
	p := &ChunkPayload{
		Coord:    world.ChunkCoord{X: chunkX, Z: chunkZ},
		Prec:     prec,
		Vertices: make([]float32, (prec+1)*(prec+1)*FloatsPerVertex),
	}

	// Columns along z are shared by every row, compute them once.
	zs := make([]float32, prec+1)
	for j := range zs {
		zs[j] = SampleCoord(chunkZ, j, prec, chunkScale)
	}

	idx := 0
	for i := 0; i <= prec; i++ {
		x := SampleCoord(chunkX, i, prec, chunkScale)
		for j := 0; j <= prec; j++ {
			z := zs[j]
			h := field.SampleScaled(x, z)
			n := surfaceNormal(field, x, z, h)
			az, el := EncodeNormal(n)

			p.Vertices[idx] = h / maxHeight
			p.Vertices[idx+1] = az
			p.Vertices[idx+2] = el
			idx += FloatsPerVertex
		}
	}
	return p
}

// surfaceNormal estimates the normal at (x, z) from forward differences.
func surfaceNormal(field world.HeightField, x, z, h float32) mgl32.Vec3 {
	h1 := field.SampleScaled(x+normalEpsilon, z)
	h2 := field.SampleScaled(x, z+normalEpsilon)

	v1 := mgl32.Vec3{normalEpsilon, h1 - h, 0}
	v2 := mgl32.Vec3{0, h2 - h, normalEpsilon}
	return v2.Cross(v1).Normalize()
}
