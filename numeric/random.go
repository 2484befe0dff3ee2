package numeric

import (
	"math"
	"math/rand"
)

// Random01FromRaw implements the random01 primitive from spec.md §4.1: a
// pure function of a raw 32-bit bit pattern, deterministic per Type family.
//
// Native float/double treats raw as a uniform draw over the full 32-bit
// range, scaled into [0,1). Fixed-point reinterprets the low K bits of raw
// directly as the Q-format fraction — no floating-point division involved,
// matching "the fractional part of an arbitrary bit pattern".
func (t Type) Random01FromRaw(raw uint32) Value {
	if t.isFloatFamily() {
		f := float64(raw) / 4294967296.0 // 2^32
		v := t.FromFloat(f)
		if v.f >= 1 {
			// float32 rounding carries the top raw values up to exactly 1.
			v.f = float64(math.Nextafter32(1, 0))
		}
		return v
	}
	mask := (int64(1) << t.K) - 1
	return Value{Typ: t, raw: int64(raw) & mask}
}

// Source is the engine's single shared bit source: a math/rand generator
// (not a Mersenne Twister) advanced once per random01 draw, like the
// original's single std::mt19937 instance seeded 1337 (spec.md §8,
// Determinism).
type Source struct {
	seed  int64
	rnd   *rand.Rand
	draws uint64
}

// NewSource seeds a deterministic bit source.
func NewSource(seed int64) *Source {
	return &Source{seed: seed, rnd: rand.New(rand.NewSource(seed))}
}

// NextRaw draws the next raw 32-bit state.
func (s *Source) NextRaw() uint32 {
	s.draws++
	return s.rnd.Uint32()
}

// Random01 draws the next value of Type t from the shared source.
func (s *Source) Random01(t Type) Value {
	return t.Random01FromRaw(s.NextRaw())
}

// Draws returns the number of values drawn so far, for checkpointing.
func (s *Source) Draws() uint64 { return s.draws }

// Restore reseeds s from seed and burns n draws, reproducing the exact
// stream position a live Source would be at after n calls to NextRaw —
// math/rand's generator has no portable serialised state, so the
// checkpoint codec persists the draw count instead and replays it here.
func Restore(seed int64, n uint64) *Source {
	s := NewSource(seed)
	for i := uint64(0); i < n; i++ {
		s.NextRaw()
	}
	return s
}
