package meshing

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"testing"

	"infworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	testPrec      = 40
	testScale     = 64.0
	testMaxHeight = 270.0
)

// hashPayload computes a SHA-256 hash of the raw float bits of a payload
func hashPayload(p *ChunkPayload) [32]byte {
	h := sha256.New()
	var buf [4]byte
	for _, v := range p.Vertices {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		h.Write(buf[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func TestBuildChunkLayout(t *testing.T) {
	s := world.NewSeed(42)
	p := BuildChunk(s, 0, 0, testMaxHeight, testScale, testPrec)

	if got, want := len(p.Vertices), (testPrec+1)*(testPrec+1)*FloatsPerVertex; got != want {
		t.Fatalf("got %d floats, want %d", got, want)
	}
	if p.VertexCount() != 41*41 {
		t.Errorf("VertexCount = %d", p.VertexCount())
	}
	if p.Coord != (world.ChunkCoord{}) {
		t.Errorf("Coord = %v", p.Coord)
	}
}

// TestBuildChunkDeterministic regenerates seed=42 chunk (0,0) and compares bytes.
func TestBuildChunkDeterministic(t *testing.T) {
	s := world.NewSeed(42)
	first := hashPayload(BuildChunk(s, 0, 0, testMaxHeight, testScale, testPrec))
	for i := 0; i < 3; i++ {
		again := BuildChunk(world.NewSeed(42), 0, 0, testMaxHeight, testScale, testPrec)
		if hashPayload(again) != first {
			t.Fatalf("regeneration %d differs from the first build", i)
		}
	}
}

// TestBuildChunkHeightsMatchField checks stored heights against direct sampling.
func TestBuildChunkHeightsMatchField(t *testing.T) {
	s := world.NewSeed(9)
	p := BuildChunk(s, 2, -3, testMaxHeight, testScale, testPrec)
	field := world.NewHeightField(s, testMaxHeight)
	for _, ij := range [][2]int{{0, 0}, {7, 31}, {40, 40}, {20, 0}} {
		x := SampleCoord(2, ij[0], testPrec, testScale)
		z := SampleCoord(-3, ij[1], testPrec, testScale)
		want := field.SampleScaled(x, z) / testMaxHeight
		if got := p.Height(ij[0], ij[1]); got != want {
			t.Errorf("Height(%d,%d) = %v, want %v", ij[0], ij[1], got, want)
		}
	}
}

// TestBuildChunkStaysOffWaterPlane verifies the clamp away from zero.
func TestBuildChunkStaysOffWaterPlane(t *testing.T) {
	s := world.NewSeed(3)
	for cx := -2; cx <= 2; cx++ {
		p := BuildChunk(s, cx, 0, testMaxHeight, testScale, testPrec)
		for v := 0; v < p.VertexCount(); v++ {
			h := p.Vertices[v*FloatsPerVertex]
			if math.Abs(float64(h)) < float64(world.MinSurfaceOffset)-1e-6 {
				t.Fatalf("chunk %d vertex %d: height %v inside water band", cx, v, h)
			}
		}
	}
}

// TestBuildChunkNormalsPointUp verifies decoded normals are unit length and upward.
func TestBuildChunkNormalsPointUp(t *testing.T) {
	s := world.NewSeed(42)
	p := BuildChunk(s, 1, 1, testMaxHeight, testScale, testPrec)
	for i := 0; i <= testPrec; i += 5 {
		for j := 0; j <= testPrec; j += 5 {
			n := p.Normal(i, j)
			if math.Abs(float64(n.Len())-1) > 1e-4 {
				t.Fatalf("normal (%d,%d) not unit: %v", i, j, n)
			}
			if n.Y() <= 0 {
				t.Fatalf("normal (%d,%d) points down: %v", i, j, n)
			}
		}
	}
}

// TestSeamContinuity verifies shared edges of neighbouring chunks are identical.
func TestSeamContinuity(t *testing.T) {
	s := world.NewSeed(42)
	for _, scale := range []float32{64, 128, 256} {
		for c := -2; c <= 2; c++ {
			a := BuildChunk(s, c, 0, testMaxHeight, scale, testPrec)
			east := BuildChunk(s, c+1, 0, testMaxHeight, scale, testPrec)
			south := BuildChunk(s, c, 1, testMaxHeight, scale, testPrec)
			for k := 0; k <= testPrec; k++ {
				for f := 0; f < FloatsPerVertex; f++ {
					av := a.Vertices[a.VertexIndex(testPrec, k)*FloatsPerVertex+f]
					ev := east.Vertices[east.VertexIndex(0, k)*FloatsPerVertex+f]
					if av != ev {
						t.Fatalf("scale %v chunk %d: x seam mismatch at %d/%d: %v != %v", scale, c, k, f, av, ev)
					}
					av = a.Vertices[a.VertexIndex(k, testPrec)*FloatsPerVertex+f]
					sv := south.Vertices[south.VertexIndex(k, 0)*FloatsPerVertex+f]
					if av != sv {
						t.Fatalf("scale %v chunk %d: z seam mismatch at %d/%d: %v != %v", scale, c, k, f, av, sv)
					}
				}
			}
		}
	}
}

func TestNormalRoundTrip(t *testing.T) {
	near := func(a, b float32) bool { return mgl32.Abs(a-b) < 1e-5 }
	normals := []mgl32.Vec3{
		// Flat ground: asin(1) lands just past pi/2 in float32.
		{0, 1, 0},
		mgl32.Vec3{1, 1, 0}.Normalize(),
		mgl32.Vec3{-0.3, 0.8, 0.5}.Normalize(),
		mgl32.Vec3{0.1, 0.2, -0.9}.Normalize(),
	}
	for _, n := range normals {
		got := DecodeNormal(EncodeNormal(n))
		if !got.ApproxFuncEqual(n, near) {
			t.Errorf("round trip %v -> %v", n, got)
		}
	}
}

func TestLocalOffsetEdges(t *testing.T) {
	if got := LocalOffset(0, testPrec, testScale); got != -testScale {
		t.Errorf("LocalOffset(0) = %v", got)
	}
	if got := LocalOffset(testPrec, testPrec, testScale); got != testScale {
		t.Errorf("LocalOffset(prec) = %v", got)
	}
}

func TestBuildIndices(t *testing.T) {
	idx := BuildIndices(testPrec)
	if len(idx) != IndexCount(testPrec) {
		t.Fatalf("got %d indices, want %d", len(idx), IndexCount(testPrec))
	}
	maxIndex := uint32((testPrec+1)*(testPrec+1) - 1)
	used := make(map[uint32]bool)
	for _, v := range idx {
		if v > maxIndex {
			t.Fatalf("index %d out of range", v)
		}
		used[v] = true
	}
	if len(used) != int(maxIndex)+1 {
		t.Errorf("indices reference %d vertices, want %d", len(used), maxIndex+1)
	}
	first := []uint32{41, 1, 0, 1, 41, 42}
	for i, v := range first {
		if idx[i] != v {
			t.Errorf("idx[%d] = %d, want %d", i, idx[i], v)
		}
	}
}

func BenchmarkBuildChunk(b *testing.B) {
	s := world.NewSeed(42)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildChunk(s, i%8, i/8, testMaxHeight, testScale, testPrec)
	}
}
