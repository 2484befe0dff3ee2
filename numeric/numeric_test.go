package numeric

import (
	"math"
	"testing"
)

func TestParseType(t *testing.T) {
	cases := map[string]Type{
		"DOUBLE":          Double,
		"FLOAT":           Float,
		"FIXED(32,16)":    Fixed(32, 16),
		"FAST_FIXED(64,8)": FastFixed(64, 8),
	}
	for s, want := range cases {
		got, err := ParseType(s)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", s, err)
		}
		if got != want {
			t.Fatalf("ParseType(%q) = %+v, want %+v", s, got, want)
		}
	}
}

func TestParseTypeRejectsBadWidth(t *testing.T) {
	if _, err := ParseType("FIXED(24,4)"); err == nil {
		t.Fatal("expected error for unsupported width 24")
	}
	if _, err := ParseType("FIXED(32,32)"); err == nil {
		t.Fatal("expected error when K >= N")
	}
	if _, err := ParseType("BOGUS"); err == nil {
		t.Fatal("expected error for unknown type name")
	}
}

func TestFixedAddMatchesFloat(t *testing.T) {
	ty := Fixed(32, 16)
	a := ty.FromFloat(1.25)
	b := ty.FromFloat(2.5)
	got := a.Add(b).Float64()
	if math.Abs(got-3.75) > 1e-3 {
		t.Fatalf("1.25+2.5 = %v, want ~3.75", got)
	}
}

func TestFixedSubNeg(t *testing.T) {
	ty := Fixed(32, 16)
	a := ty.FromFloat(5)
	b := ty.FromFloat(2)
	got := a.Sub(b).Float64()
	if math.Abs(got-3) > 1e-3 {
		t.Fatalf("5-2 = %v, want ~3", got)
	}
}

func TestFixedMul(t *testing.T) {
	ty := Fixed(32, 16)
	a := ty.FromFloat(2)
	b := ty.FromFloat(3)
	got := a.Mul(b).Float64()
	if math.Abs(got-6) > 1e-3 {
		t.Fatalf("2*3 = %v, want ~6", got)
	}
}

func TestFixedDiv(t *testing.T) {
	ty := Fixed(32, 16)
	a := ty.FromFloat(6)
	b := ty.FromFloat(3)
	got, err := a.Div(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got.Float64()-2) > 1e-3 {
		t.Fatalf("6/3 = %v, want ~2", got.Float64())
	}
}

func TestFixedDivByZero(t *testing.T) {
	ty := Fixed(32, 16)
	a := ty.FromFloat(1)
	zero := ty.FromInt(0)
	if _, err := a.Div(zero); err == nil {
		t.Fatal("expected DivisionByZero error")
	}
}

func TestMixedPrecisionPromotion(t *testing.T) {
	a := Fixed(32, 8).FromFloat(1.5)
	b := Fixed(64, 16).FromFloat(2.25)
	sum := a.Add(b)
	if sum.Typ.N != 64 || sum.Typ.K != 16 {
		t.Fatalf("promoted type = %+v, want N=64 K=16", sum.Typ)
	}
	if math.Abs(sum.Float64()-3.75) > 1e-3 {
		t.Fatalf("mixed add = %v, want ~3.75", sum.Float64())
	}
}

func TestRoundTripFloatConversion(t *testing.T) {
	ty := Fixed(32, 16)
	for _, f := range []float64{0, 1, 123.456, 1000.001, 32767.9} {
		v := ty.FromFloat(f)
		back := v.Float64()
		if math.Abs(back-f) > 1.0/float64(int64(1)<<16) {
			t.Fatalf("round trip %v -> %v exceeds 2^-K precision", f, back)
		}
	}
}

func TestRandom01InRangeForAllRawInputs(t *testing.T) {
	types := []Type{Double, Float, Fixed(32, 16), FastFixed(16, 8)}
	raws := []uint32{0, 1, 0xFFFFFFFF, 0x80000000, 12345}
	for _, ty := range types {
		for _, raw := range raws {
			v := ty.Random01FromRaw(raw)
			f := v.Float64()
			if f < 0 || f >= 1 {
				t.Fatalf("Random01FromRaw(%v, %v) = %v, want [0,1)", ty, raw, f)
			}
		}
	}
}

func TestNegAndSign(t *testing.T) {
	ty := Fixed(32, 16)
	a := ty.FromFloat(2.5)
	if a.Neg().Sign() != -1 {
		t.Fatal("expected negative sign after Neg")
	}
	if ty.FromInt(0).Sign() != 0 {
		t.Fatal("expected zero sign")
	}
}

func TestFloatFamilyArithmetic(t *testing.T) {
	a := Double.FromFloat(1.5)
	b := Double.FromFloat(0.5)
	if got := a.Add(b).Float64(); math.Abs(got-2) > 1e-9 {
		t.Fatalf("double add = %v, want 2", got)
	}
	if _, err := a.Div(Double.FromFloat(0)); err == nil {
		t.Fatal("expected division by zero error for double")
	}
}

func TestFromRawAndRaw(t *testing.T) {
	ty := Fixed(32, 16)
	v := ty.FromRaw(1 << 16)
	if math.Abs(v.Float64()-1) > 1e-9 {
		t.Fatalf("FromRaw(1<<16) = %v, want 1", v.Float64())
	}
	if v.Raw() != 1<<16 {
		t.Fatalf("Raw() = %d, want %d", v.Raw(), int64(1)<<16)
	}
}
