package world

import "math"

// ChunkCoord identifies a chunk on the grid of one LOD level. Levels use
// independent coordinate spaces.
type ChunkCoord struct {
	X, Z int
}

// Add offsets the coordinate.
func (c ChunkCoord) Add(dx, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

// ChebyshevTo returns max(|dx|, |dz|) between two coordinates.
func (c ChunkCoord) ChebyshevTo(o ChunkCoord) int {
	return max(abs(c.X-o.X), abs(c.Z-o.Z))
}

// Within reports whether c lies inside the square window of the given range
// around center.
func (c ChunkCoord) Within(center ChunkCoord, rng int) bool {
	return abs(c.X-center.X) <= rng && abs(c.Z-center.Z) <= rng
}

// ChunkAt returns the chunk containing world position (x, z) for chunks of
// the given footprint, with chunk (0,0) centered on the origin.
func ChunkAt(x, z, footprint float32) ChunkCoord {
	return ChunkCoord{
		X: floorToInt((x + footprint/2) / footprint),
		Z: floorToInt((z + footprint/2) / footprint),
	}
}

func floorToInt(v float32) int {
	return int(math.Floor(float64(v)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
