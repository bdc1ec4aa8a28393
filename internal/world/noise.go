package world

import (
	"math"
)

// Deterministic 2D gradient noise driven by seeded permutation tables.
// Every table is derived from a minstd LCG.

const (
	// Octaves is the number of noise layers summed by Height. One permutation
	// table exists per octave.
	Octaves = 9

	// PermutationSize is the length of a permutation table.
	PermutationSize = 256

	lcgMultiplier = 48271
	lcgModulus    = 2147483647 // 2^31 - 1
)

// Permutation is a bijection of [0, PermutationSize).
type Permutation [PermutationSize]int32

// Seed holds the per-octave permutation tables for one world session.
// It is immutable after NewSeed and safe to share between goroutines.
type Seed struct {
	value int32
	perms [Octaves]Permutation
}

// lcg is a minimal standard (minstd) linear congruential generator.
type lcg struct {
	state uint32
}

func newLCG(seed uint32) *lcg {
	s := seed % lcgModulus
	if s == 0 {
		s = 1
	}
	return &lcg{state: s}
}

func (g *lcg) next() uint32 {
	g.state = uint32(uint64(g.state) * lcgMultiplier % lcgModulus)
	return g.state
}

// NewSeed derives the permutation tables for seed. The same input always
// yields bit-identical tables.
func NewSeed(seed int32) *Seed {
	s := &Seed{value: seed}
	master := newLCG(uint32(seed))
	for i := range s.perms {
		s.perms[i] = newPermutation(master.next())
	}
	return s
}

// Value returns the integer the seed was created from.
func (s *Seed) Value() int32 {
	return s.value
}

// Permutation returns a copy of the table used by the given octave.
func (s *Seed) Permutation(octave int) Permutation {
	return s.perms[octave]
}

// newPermutation shuffles [0,256) by repeatedly drawing from the shrinking
// pool of remaining values.
func newPermutation(subSeed uint32) Permutation {
	var values [PermutationSize]int32
	for i := range values {
		values[i] = int32(i)
	}

	var p Permutation
	rng := newLCG(subSeed)
	count := uint32(PermutationSize)
	for index := 0; count > 0; index++ {
		r := rng.next() % count
		p[index] = values[r]
		values[r] = values[count-1]
		count--
	}
	return p
}

var gradients = [4][2]float32{
	{1, 0},
	{-1, 0},
	{0, 1},
	{0, -1},
}

func rotl32(v uint32, s uint32) uint32 {
	return v<<s | v>>(32-s)
}

// latticeGradient selects the gradient for a lattice point. The multiply and
// rotate mix breaks up the period of the 256-entry table.
func latticeGradient(gridX, gridY int32, p *Permutation) [2]float32 {
	a := uint32(gridX)
	b := uint32(gridY)

	a *= 3284157443
	b ^= rotl32(a, 16)
	b *= 1911520717
	a ^= rotl32(b, 16)
	a *= 2048419325

	idx1 := a % PermutationSize
	idx2 := (uint32(p[idx1]) + b) % PermutationSize
	idx3 := uint32(p[idx2]) % PermutationSize
	return gradients[p[idx3]%4]
}

func dotGradient(gridX, gridY int32, x, y float32, p *Permutation) float32 {
	g := latticeGradient(gridX, gridY, p)
	dx := x - float32(gridX)
	dy := y - float32(gridY)
	return g[0]*dx + g[1]*dy
}

// smoothstep blends a and b with a cubic Hermite curve.
func smoothstep(a, b, t float32) float32 {
	return float32((b-a)*(3-t*2)*t*t) + a
}

// Perlin2D evaluates one octave of gradient noise at (x, y).
func Perlin2D(x, y float32, p *Permutation) float32 {
	left := int32(math.Floor(float64(x)))
	lower := int32(math.Floor(float64(y)))
	right := left + 1
	upper := lower + 1

	ll := dotGradient(left, lower, x, y, p)
	lr := dotGradient(right, lower, x, y, p)
	ul := dotGradient(left, upper, x, y, p)
	ur := dotGradient(right, upper, x, y, p)

	tx := x - float32(left)
	ty := y - float32(lower)
	return smoothstep(smoothstep(ll, lr, tx), smoothstep(ul, ur, tx), ty)
}
