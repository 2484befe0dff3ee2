// Package numeric implements the pressure/velocity/velocity-flow scalar
// abstraction the engine is parameterized over: native float64/float32, or
// signed Q-format fixed point with a configurable bit width N and fractional
// width K.
//
// Rather than monomorphizing the engine over a dozen concrete Go types (Go
// has no const generics, so an N/K-parameterized type cannot exist at the
// type-system level), scalars are represented as a tagged union: a Kind
// descriptor plus either a float64 payload or a raw int64 Q-format payload.
// Arithmetic dispatches on Kind. This is the sum-type re-architecture the
// spec's own design notes call out as sufficient for correctness.
package numeric

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/pthm-cable/fluidsim/fluiderr"
)

// Kind identifies which concrete representation a Value/Type uses.
type Kind uint8

const (
	KindDouble Kind = iota
	KindFloat
	KindFixed
	KindFastFixed
)

func (k Kind) String() string {
	switch k {
	case KindDouble:
		return "DOUBLE"
	case KindFloat:
		return "FLOAT"
	case KindFixed:
		return "FIXED"
	case KindFastFixed:
		return "FAST_FIXED"
	default:
		return "UNKNOWN"
	}
}

// Type is a scalar type descriptor: DOUBLE, FLOAT, or a Q-format fixed point
// with N total bits and K fractional bits.
type Type struct {
	Kind Kind
	N    uint8
	K    uint8
}

// Double is the native float64 type.
var Double = Type{Kind: KindDouble}

// Float is the native float32 type (stored widened to float64 internally;
// FromFloat, which every arithmetic result passes through, rounds the value
// to float32 precision, and Float64() returns the stored value unchanged).
var Float = Type{Kind: KindFloat}

// Fixed returns the strict Q-format type FIXED(N,K).
func Fixed(n, k uint8) Type { return Type{Kind: KindFixed, N: n, K: k} }

// FastFixed returns the FAST_FIXED(N,K) type: same storage as FIXED, but
// arithmetic never masks/sign-extends back to N bits (Open Question (c) in
// spec.md §9 — we pin this as the "storage but not overflow semantics"
// reading).
func FastFixed(n, k uint8) Type { return Type{Kind: KindFastFixed, N: n, K: k} }

func (t Type) isFixedFamily() bool { return t.Kind == KindFixed || t.Kind == KindFastFixed }
func (t Type) isFloatFamily() bool { return t.Kind == KindDouble || t.Kind == KindFloat }

func (t Type) String() string {
	switch t.Kind {
	case KindDouble:
		return "DOUBLE"
	case KindFloat:
		return "FLOAT"
	case KindFixed:
		return fmt.Sprintf("FIXED(%d,%d)", t.N, t.K)
	case KindFastFixed:
		return fmt.Sprintf("FAST_FIXED(%d,%d)", t.N, t.K)
	default:
		return "UNKNOWN"
	}
}

// ParseType parses a type name as accepted on the CLI: DOUBLE, FLOAT,
// FIXED(N,K), FAST_FIXED(N,K) with N in {8,16,32,64} and 0 <= K < N.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "DOUBLE":
		return Double, nil
	case s == "FLOAT":
		return Float, nil
	case strings.HasPrefix(s, "FIXED(") && strings.HasSuffix(s, ")"):
		n, k, err := parseNK(s, "FIXED(")
		if err != nil {
			return Type{}, err
		}
		return Fixed(n, k), nil
	case strings.HasPrefix(s, "FAST_FIXED(") && strings.HasSuffix(s, ")"):
		n, k, err := parseNK(s, "FAST_FIXED(")
		if err != nil {
			return Type{}, err
		}
		return FastFixed(n, k), nil
	default:
		return Type{}, fluiderr.NewConfigError("unknown numeric type: " + s)
	}
}

func parseNK(s, prefix string) (uint8, uint8, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(s, prefix), ")")
	parts := strings.Split(inner, ",")
	if len(parts) != 2 {
		return 0, 0, fluiderr.NewConfigError("malformed type, expected N,K: " + s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fluiderr.NewConfigError("bad width in type " + s)
	}
	k, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fluiderr.NewConfigError("bad fractional bits in type " + s)
	}
	switch n {
	case 8, 16, 32, 64:
	default:
		return 0, 0, fluiderr.NewConfigError(fmt.Sprintf("width %d not one of {8,16,32,64}", n))
	}
	if k < 0 || k >= n {
		return 0, 0, fluiderr.NewConfigError(fmt.Sprintf("fractional bits %d must satisfy 0<=K<N=%d", k, n))
	}
	return uint8(n), uint8(k), nil
}

// Value is a scalar of some Type.
type Value struct {
	Typ Type
	f   float64 // valid when Typ.isFloatFamily()
	raw int64   // valid when Typ.isFixedFamily(); Q-format, K fractional bits
}

// Zero returns the additive identity of t.
func (t Type) Zero() Value { return Value{Typ: t} }

// FromInt constructs a Value from an integer literal.
func (t Type) FromInt(n int64) Value {
	if t.isFloatFamily() {
		return Value{Typ: t, f: float64(n)}
	}
	return Value{Typ: t, raw: maskTo(n<<t.K, t)}
}

// FromFloat constructs a Value from a floating-point literal, truncating to
// the target's precision.
func (t Type) FromFloat(f float64) Value {
	if t.isFloatFamily() {
		if t.Kind == KindFloat {
			f = float64(float32(f))
		}
		return Value{Typ: t, f: f}
	}
	raw := int64(f * float64(int64(1)<<t.K))
	return Value{Typ: t, raw: maskTo(raw, t)}
}

// FromRaw builds a fixed-point Value directly from its signed-integer bit
// pattern. Used by the checkpoint codec to restore fixed-point grids.
func (t Type) FromRaw(raw int64) Value {
	if t.isFloatFamily() {
		panic("numeric: FromRaw called on a float-family type")
	}
	return Value{Typ: t, raw: maskTo(raw, t)}
}

// Raw returns the signed-integer bit pattern of a fixed-point Value (used by
// the checkpoint codec). Panics for float-family values.
func (v Value) Raw() int64 {
	if !v.Typ.isFixedFamily() {
		panic("numeric: Raw called on a float-family value")
	}
	return v.raw
}

// Float64 converts v to a float64 for output/comparison against plain Go
// numbers.
func (v Value) Float64() float64 {
	if v.Typ.isFloatFamily() {
		return v.f
	}
	return float64(v.raw) / float64(int64(1)<<v.Typ.K)
}

// maskTo wraps raw to N bits (sign-extending) for strict FIXED; FAST_FIXED
// leaves raw untouched (storage without strict overflow semantics).
func maskTo(raw int64, t Type) int64 {
	if t.Kind != KindFixed || t.N >= 64 {
		return raw
	}
	shift := uint(64 - t.N)
	return (raw << shift) >> shift // sign-extending truncation to N bits
}

// promote picks the result Type for a two-operand op between possibly
// different fixed-point types. kKind selects how K combines: "addsub" and
// "mul" take max(K1,K2); "div" subtracts them.
func promote(a, b Type, kKind string) Type {
	n := a.N
	if b.N > n {
		n = b.N
	}
	var k uint8
	switch kKind {
	case "addsub", "mul":
		k = a.K
		if b.K > k {
			k = b.K
		}
	case "div":
		if a.K >= b.K {
			k = a.K - b.K
		} else {
			k = 0
		}
	}
	kind := KindFixed
	if a.Kind == KindFastFixed && b.Kind == KindFastFixed {
		kind = KindFastFixed
	}
	return Type{Kind: kind, N: n, K: k}
}

// shiftedRaw returns a's raw payload reinterpreted at fractional width
// targetK (shifting left if targetK > a.K, right if targetK < a.K).
func shiftedRaw(a Value, targetK uint8) int64 {
	if targetK >= a.Typ.K {
		return a.raw << (targetK - a.Typ.K)
	}
	return a.raw >> (a.Typ.K - targetK)
}

// Add implements Fixed+Fixed, Fixed+float-literal and native float addition,
// per spec.md §4.1's mixed-operand rules.
func (v Value) Add(other Value) Value {
	if v.Typ.isFloatFamily() || other.Typ.isFloatFamily() {
		rt := resultFloatType(v.Typ, other.Typ)
		return rt.FromFloat(v.Float64() + other.Float64())
	}
	rt := promote(v.Typ, other.Typ, "addsub")
	raw := shiftedRaw(v, rt.K) + shiftedRaw(other, rt.K)
	return Value{Typ: rt, raw: maskTo(raw, rt)}
}

func (v Value) Neg() Value {
	if v.Typ.isFloatFamily() {
		return Value{Typ: v.Typ, f: -v.f}
	}
	return Value{Typ: v.Typ, raw: maskTo(-v.raw, v.Typ)}
}

// Sub implements a-b as a+(-b), matching the original operator- definition.
func (v Value) Sub(other Value) Value {
	return v.Add(other.Neg())
}

// Mul implements Fixed*Fixed: result N = max(N1,N2), K = max(K1,K2).
// a.raw*b.raw sits at scale K1+K2 (a.raw is value_a*2^K1, b.raw is
// value_b*2^K2); the product is formed in a big.Int and shifted right by
// K1+K2-K to land at the result scale before truncating to N bits.
func (v Value) Mul(other Value) Value {
	if v.Typ.isFloatFamily() || other.Typ.isFloatFamily() {
		rt := resultFloatType(v.Typ, other.Typ)
		return rt.FromFloat(v.Float64() * other.Float64())
	}
	rt := promote(v.Typ, other.Typ, "mul")
	wide := new(big.Int).Mul(big.NewInt(v.raw), big.NewInt(other.raw))
	wide.Rsh(wide, uint(v.Typ.K)+uint(other.Typ.K)-uint(rt.K))
	return Value{Typ: rt, raw: maskTo(wide.Int64(), rt)}
}

// Div implements Fixed/Fixed per spec.md §4.1: result K = K1-K2 (clamped to
// 0 if K2>K1). To land the quotient at that scale the dividend is shifted
// left by K2-K1 when K2>K1, and by nothing when K1>=K2 (the plain a.raw/b.raw
// already sits at scale K1-K2 in that case). Division by zero fails with
// ErrDivisionByZero.
func (v Value) Div(other Value) (Value, error) {
	if v.Typ.isFloatFamily() || other.Typ.isFloatFamily() {
		if other.Float64() == 0 {
			return Value{}, fluiderr.ErrDivisionByZero
		}
		rt := resultFloatType(v.Typ, other.Typ)
		return rt.FromFloat(v.Float64() / other.Float64()), nil
	}
	if other.raw == 0 {
		return Value{}, fluiderr.ErrDivisionByZero
	}
	rt := promote(v.Typ, other.Typ, "div")
	var shift uint
	if other.Typ.K > v.Typ.K {
		shift = uint(other.Typ.K - v.Typ.K)
	}
	num := new(big.Int).Lsh(big.NewInt(v.raw), shift)
	den := big.NewInt(other.raw)
	q := new(big.Int).Quo(num, den)
	return Value{Typ: rt, raw: maskTo(q.Int64(), rt)}, nil
}

// MulFloat scales v by a plain float64 literal (e.g. the 0.8 dissipation
// factor in phase 4), producing a Value of v's own Type.
func (v Value) MulFloat(f float64) Value {
	return v.Mul(v.Typ.FromFloat(f))
}

func resultFloatType(a, b Type) Type {
	if a.isFloatFamily() {
		return a
	}
	if b.isFloatFamily() {
		return b
	}
	return Double
}

// Cmp returns -1, 0, or 1 comparing v and other by value (not by
// representation), matching the total ordering required by spec.md §4.1.
func (v Value) Cmp(other Value) int {
	a, b := v.Float64(), other.Float64()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports whether v and other compare equal by value.
func (v Value) Equal(other Value) bool { return v.Cmp(other) == 0 }

// Sign returns -1, 0 or 1 for v's sign.
func (v Value) Sign() int {
	f := v.Float64()
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	default:
		return 0
	}
}

// IsNonNegative reports whether v >= 0.
func (v Value) IsNonNegative() bool { return v.Sign() >= 0 }

// Min returns whichever of v, other is smaller.
func Min(a, b Value) Value {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
