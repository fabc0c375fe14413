package boundary

import (
	"math"
	"math/cmplx"
	"math/rand"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gonum.org/v1/gonum/floats"

	"github.com/lukaszgryglicki/acoustic3d/internal/surface"
)

// response evaluates B(z)/A(z) at z = e^{jw}.
func response(b, a []float64, w float64) complex128 {
	z := cmplx.Exp(complex(0, -w))
	var num, den complex128
	zk := complex(1, 0)
	for k := range b {
		num += complex(b[k], 0) * zk
		den += complex(a[k], 0) * zk
		zk *= z
	}
	return num / den
}

func TestPeakCoefficients_UnityGainIsIdentity(t *testing.T) {
	c := PeakCoefficients(FilterDescriptor{Gain: 0, Centre: 1000, Q: FilterQ}, 44100)
	if !floats.EqualApprox(c.B[:], c.A[:], 1e-15) {
		t.Fatalf("0 dB peak must have b == a, got %+v", c)
	}
	if c.A[0] != 1 {
		t.Fatalf("a[0] must be 1, got %v", c.A[0])
	}
}

func TestPeakCoefficients_GainAtCentre(t *testing.T) {
	const sr = 48000.0
	for _, r := range []float64{0.9, 0.5, 0.1, MinReflectance} {
		d := FilterDescriptor{Gain: a2db(r), Centre: 6000, Q: FilterQ}
		c := PeakCoefficients(d, sr)
		h := cmplx.Abs(response(c.B[:], c.A[:], 2*math.Pi*d.Centre/sr))
		if math.Abs(h-r) > 1e-9 {
			t.Fatalf("reflectance %v: |H(w0)| = %v", r, h)
		}
		if dc := cmplx.Abs(response(c.B[:], c.A[:], 0)); math.Abs(dc-1) > 1e-9 {
			t.Fatalf("reflectance %v: |H(0)| = %v, want 1", r, dc)
		}
	}
}

func TestConvolve(t *testing.T) {
	got := Convolve([]float64{1, 2}, []float64{1, 3})
	if !floats.Equal(got, []float64{1, 5, 6}) {
		t.Fatalf("got %v", got)
	}
	if Convolve(nil, []float64{1}) != nil {
		t.Fatalf("empty operand must give nil")
	}
}

func TestIsStable_KnownPolynomials(t *testing.T) {
	cases := []struct {
		a    []float64
		want bool
	}{
		{[]float64{1}, true},
		{[]float64{1, -0.5}, true},
		{[]float64{1, -1.9, 0.95}, true},
		{[]float64{1, 0, 1.5}, false},
		{[]float64{1, -2.5, 0.9}, false}, // root at ~2.06
		{[]float64{1, 2, 1}, false},      // double root on the unit circle
		{[]float64{1, math.NaN(), 0.1}, false},
	}
	for _, c := range cases {
		if got := IsStable(c.a); got != c.want {
			t.Errorf("IsStable(%v) = %v, want %v", c.a, got, c.want)
		}
	}
}

func TestImpedanceCoefficients_ZeroReflectance(t *testing.T) {
	var r CanonicalCoefficients
	r.A[0], r.A[1] = 1, -0.3
	z := ImpedanceCoefficients(r)
	if !floats.Equal(z.B[:], z.A[:]) || z.A[0] != 1 {
		t.Fatalf("B=0 must map to unit impedance, got %+v", z)
	}
}

func TestImpedanceCoefficients_MonicDenominator(t *testing.T) {
	// A0-B0 = 49 and 49*(1/49) rounds below one
	var r CanonicalCoefficients
	r.A[0], r.A[1], r.A[2] = 49.5, -12, 3
	r.B[0], r.B[1] = 0.5, 0.25
	z := ImpedanceCoefficients(r)
	if z.A[0] != 1 {
		t.Fatalf("a[0] = %v, want exactly 1", z.A[0])
	}
	if !floats.EqualApprox(z.A[:3], []float64{1, -12.25 / 49, 3.0 / 49}, 1e-15) {
		t.Fatalf("denominator %v", z.A)
	}
	if !floats.EqualApprox(z.B[:2], []float64{50.0 / 49, -11.75 / 49}, 1e-15) {
		t.Fatalf("numerator %v", z.B)
	}
}

func TestDesignFilters_RandomEnvelopesStable(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n = 1200
	surfaces := make([]surface.Surface, n)
	for i := range surfaces {
		for b := 0; b < surface.Bands; b++ {
			surfaces[i].Specular[b] = rng.Float64()
			surfaces[i].Diffuse[b] = rng.Float64()
		}
	}
	// extremes
	surfaces[0] = surface.Uniform(0, 0)
	surfaces[1] = surface.Uniform(1, 1)
	surfaces[2] = surface.Uniform(1, 0)

	before := testutil.ToFloat64(filtersDesigned.WithLabelValues("stable"))
	for _, sr := range []float64{8000, 44100, 192000} {
		coeffs, err := DesignFilters(surfaces, sr)
		if err != nil {
			t.Fatalf("sample rate %v: %v", sr, err)
		}
		for i, c := range coeffs {
			if !IsStable(c.A[:]) {
				t.Fatalf("surface %d: unstable denominator %v", i, c.A)
			}
			if c.A[0] != 1 {
				t.Fatalf("surface %d: denominator not normalized", i)
			}
		}
	}
	if got := testutil.ToFloat64(filtersDesigned.WithLabelValues("stable")) - before; got != 3*n {
		t.Fatalf("stable filter counter advanced by %v, want %d", got, 3*n)
	}
}

func TestDesignFilters_Deterministic(t *testing.T) {
	surfaces := []surface.Surface{surface.Uniform(0.7, 0.2), surface.Uniform(0.05, 0.4)}
	ref, err := DesignFilters(surfaces, 11025)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		got, err := DesignFilters(surfaces, 11025)
		if err != nil || !reflect.DeepEqual(got, ref) {
			t.Fatalf("run %d differs (%v)", i, err)
		}
	}
}

func TestDesignFilters_Errors(t *testing.T) {
	if _, err := DesignFilters([]surface.Surface{surface.Uniform(0.5, 0.5)}, 0); err == nil {
		t.Errorf("expected sample rate error")
	}
	bad := surface.Uniform(0.5, 0.5)
	bad.Specular[0] = -0.1
	if _, err := DesignFilters([]surface.Surface{bad}, 44100); err == nil {
		t.Errorf("expected surface validation error")
	}
}
