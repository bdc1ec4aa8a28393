package world

import "testing"

func TestChunkAt(t *testing.T) {
	const fp = 100
	tests := []struct {
		x, z float32
		want ChunkCoord
	}{
		{0, 0, ChunkCoord{0, 0}},
		{49.9, -49.9, ChunkCoord{0, 0}},
		{50, -50, ChunkCoord{1, 0}},
		{-50.1, 150, ChunkCoord{-1, 2}},
		{1000, 0, ChunkCoord{10, 0}},
	}
	for _, tt := range tests {
		if got := ChunkAt(tt.x, tt.z, fp); got != tt.want {
			t.Errorf("ChunkAt(%v, %v) = %v, want %v", tt.x, tt.z, got, tt.want)
		}
	}
}

func TestChunkCoordWithin(t *testing.T) {
	c := ChunkCoord{3, -2}
	if !c.Within(ChunkCoord{1, 0}, 2) {
		t.Errorf("%v should be within range 2 of (1,0)", c)
	}
	if c.Within(ChunkCoord{0, 0}, 2) {
		t.Errorf("%v should not be within range 2 of (0,0)", c)
	}
	if d := c.ChebyshevTo(ChunkCoord{0, 0}); d != 3 {
		t.Errorf("ChebyshevTo = %d, want 3", d)
	}
	if got := c.Add(-3, 2); got != (ChunkCoord{}) {
		t.Errorf("Add = %v, want origin", got)
	}
}
