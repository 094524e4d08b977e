package world

// Randomizer is the world's single deterministic random source. Every
// simulation-side draw goes through it, so call order is part of the
// reproducibility contract (the state digest tests depend on it).
type Randomizer struct {
	s0 uint64
	s1 uint64
}

func NewRandomizer(seed int64) Randomizer {
	// SplitMix64 expansion of the seed; avoids the all-zero state.
	z := uint64(seed) + 0x9e3779b97f4a7c15
	next := func() uint64 {
		z += 0x9e3779b97f4a7c15
		r := z
		r = (r ^ (r >> 30)) * 0xbf58476d1ce4e5b9
		r = (r ^ (r >> 27)) * 0x94d049bb133111eb
		return r ^ (r >> 31)
	}
	return Randomizer{s0: next(), s1: next()}
}

// Next returns the next 32 random bits (xorshift128+).
func (r *Randomizer) Next() uint32 {
	x := r.s0
	y := r.s1
	r.s0 = y
	x ^= x << 23
	r.s1 = x ^ y ^ (x >> 17) ^ (y >> 26)
	return uint32((r.s1 + y) >> 16)
}

// NextMax returns a uniform-ish value in [0, max). max must be > 0.
func (r *Randomizer) NextMax(max int) int {
	return int(uint64(r.Next()) * uint64(max) >> 32)
}
