package terrain

// Band is the [Min, Max) range of Chebyshev distance from the viewer, in
// world units, over which a level is drawn. Max < 0 means unbounded.
type Band struct {
	Min, Max float32
}

// Contains reports whether distance d falls inside the band.
func (b Band) Contains(d float32) bool {
	if d < b.Min {
		return false
	}
	return b.Max < 0 || d < b.Max
}

// Unbounded reports whether the band has no outer limit.
func (b Band) Unbounded() bool { return b.Max < 0 }

// Empty reports whether no distance falls inside the band. This happens when
// a level's window reaches no further than the finer level's band.
func (b Band) Empty() bool { return b.Max >= 0 && b.Max <= b.Min }

// bandOverlap is the extra distance level i reaches past its window so the
// next level's band starts before it ends.
func bandOverlap(level int) float32 {
	return 8*float32(level) + 4
}

// computeBands derives the draw bands from each level's footprint and range.
// Consecutive bands overlap by twice the level's overlap margin.
func computeBands(footprints []float32, ranges []int) []Band {
	n := len(footprints)
	bands := make([]Band, n)
	var lo float32
	for i := 0; i < n; i++ {
		if i == n-1 {
			bands[i] = Band{Min: lo, Max: -1}
			break
		}
		d := bandOverlap(i)
		hi := footprints[i]*(float32(ranges[i])-0.5) + d
		bands[i] = Band{Min: lo, Max: hi}
		lo = hi - 2*d
	}
	return bands
}
