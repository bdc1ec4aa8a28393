package world

// BaseFrequency is the wavelength, in world units, of the first octave.
const BaseFrequency float32 = 720

// remapPoint is one breakpoint of the height remapping curve.
type remapPoint struct {
	in, out float32
}

// remapCurve flattens the ocean floor, keeps a narrow shoreline band and
// stretches the highlands.
var remapCurve = [...]remapPoint{
	{-1, -1},
	{-0.1, 0.003},
	{0, 0.03},
	{0.15, 0.12},
	{1, 1},
}

// Remap applies the piecewise linear height curve. Inputs outside [-1, 1]
// continue along the outer segments.
func Remap(h float32) float32 {
	last := len(remapCurve) - 2
	seg := 0
	for seg < last && h >= remapCurve[seg+1].in {
		seg++
	}
	a, b := remapCurve[seg], remapCurve[seg+1]
	return (h-a.in)/(b.in-a.in)*(b.out-a.out) + a.out
}

// FractalSum returns the raw, un-remapped octave sum at (x, z).
func FractalSum(x, z float32, s *Seed) float32 {
	var height float32
	freq := BaseFrequency
	amplitude := float32(1)
	for i := range s.perms {
		height += Perlin2D(x/freq, z/freq, &s.perms[i]) * amplitude
		freq /= 2
		amplitude /= 2
	}
	return height
}

// Height returns the normalized terrain height at world (x, z), nominally in
// [-1, 1].
func Height(x, z float32, s *Seed) float32 {
	return Remap(FractalSum(x, z, s))
}

// HeightField binds a seed to a vertical scale.
type HeightField struct {
	Seed      *Seed
	MaxHeight float32
}

// NewHeightField creates a height field for seed scaled to maxHeight.
func NewHeightField(seed *Seed, maxHeight float32) HeightField {
	return HeightField{Seed: seed, MaxHeight: maxHeight}
}

// Sample returns the normalized height at (x, z).
func (f HeightField) Sample(x, z float32) float32 {
	return Height(x, z, f.Seed)
}

// SampleScaled returns the height at (x, z) in world units, pushed away from
// zero so the surface never coincides with the water plane.
func (f HeightField) SampleScaled(x, z float32) float32 {
	return ClampFromZero(f.Sample(x, z)*f.MaxHeight, f.MaxHeight)
}

// MinSurfaceOffset is the smallest normalized distance kept between the
// surface and the water plane.
const MinSurfaceOffset float32 = 0.007

// ClampFromZero pushes h to at least MinSurfaceOffset*maxHeight away from zero,
// keeping its sign. Zero counts as below water.
func ClampFromZero(h, maxHeight float32) float32 {
	limit := MinSurfaceOffset * maxHeight
	if h <= 0 {
		return min(-limit, h)
	}
	return max(limit, h)
}
