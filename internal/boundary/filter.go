// Package boundary designs the per-surface boundary filters of the waveguide
// and assigns filter state to lattice boundary nodes.
package boundary

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"gonum.org/v1/gonum/floats"

	"github.com/lukaszgryglicki/acoustic3d/internal/surface"
)

const (
	BiquadOrder    = 2
	BiquadSections = surface.Bands
	CanonicalOrder = BiquadOrder * BiquadSections

	// FilterQ is the quality factor of every band filter.
	FilterQ = 1.414
	// MinReflectance floors band reflectance (-80 dB) so gains stay finite.
	MinReflectance = 1e-4
	// ReflectanceHeadroom keeps the broadband reflectance strictly below one.
	ReflectanceHeadroom = 0.999
)

var ErrUnstableFilter = errors.New("boundary filter is unstable")

// FilterDescriptor describes one band's peaking filter.
type FilterDescriptor struct {
	Gain   float64 `json:"gain"` // dB
	Centre float64 `json:"centre"`
	Q      float64 `json:"q"`
}

type BiquadCoefficients struct {
	B [BiquadOrder + 1]float64 `json:"b"`
	A [BiquadOrder + 1]float64 `json:"a"`
}

type CanonicalCoefficients struct {
	B [CanonicalOrder + 1]float64 `json:"b"`
	A [CanonicalOrder + 1]float64 `json:"a"`
}

// BiquadMemory is the delay state of one biquad section.
type BiquadMemory struct {
	Array [BiquadOrder]float64 `json:"array"`
}

// CanonicalMemory is the delay state of a canonical filter.
type CanonicalMemory struct {
	Array [CanonicalOrder]float64 `json:"array"`
}

func a2db(a float64) float64 { return 20 * math.Log10(a) }

// Descriptors maps each band's mean of specular and diffuse reflectance onto a peaking filter.
func Descriptors(s surface.Surface, sampleRate float64) [surface.Bands]FilterDescriptor {
	var out [surface.Bands]FilterDescriptor
	for i := range out {
		r := (s.Specular[i] + s.Diffuse[i]) / 2
		r = math.Min(math.Max(r, MinReflectance), 1)
		out[i] = FilterDescriptor{
			Gain:   a2db(r),
			Centre: surface.BandCentre(i, sampleRate),
			Q:      FilterQ,
		}
	}
	return out
}

// PeakCoefficients is the RBJ peaking-EQ biquad, normalized so a[0] = 1.
func PeakCoefficients(d FilterDescriptor, sampleRate float64) BiquadCoefficients {
	return fromSection(design.Peak(d.Centre, d.Gain, d.Q, sampleRate))
}

func fromSection(c biquad.Coefficients) BiquadCoefficients {
	return BiquadCoefficients{
		B: [BiquadOrder + 1]float64{c.B0, c.B1, c.B2},
		A: [BiquadOrder + 1]float64{1, c.A1, c.A2},
	}
}

// Convolve multiplies two coefficient polynomials.
func Convolve(a, b []float64) []float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]float64, len(a)+len(b)-1)
	for i := range a {
		for j := range b {
			out[i+j] += a[i] * b[j]
		}
	}
	return out
}

// Cascade convolves the band biquads into one canonical transfer function.
func Cascade(sections [BiquadSections]BiquadCoefficients) CanonicalCoefficients {
	b := []float64{1}
	a := []float64{1}
	for _, s := range sections {
		b = Convolve(b, s.B[:])
		a = Convolve(a, s.A[:])
	}
	var out CanonicalCoefficients
	copy(out.B[:], b)
	copy(out.A[:], a)
	return out
}

// ReflectanceCoefficients designs the reflectance filter of a surface.
func ReflectanceCoefficients(s surface.Surface, sampleRate float64) CanonicalCoefficients {
	var sections [BiquadSections]BiquadCoefficients
	for i, d := range Descriptors(s, sampleRate) {
		sections[i] = PeakCoefficients(d, sampleRate)
	}
	c := Cascade(sections)
	floats.Scale(ReflectanceHeadroom, c.B[:])
	return c
}

// ImpedanceCoefficients turns reflectance R = B/A into impedance (A+B)/(A-B),
// normalized so the denominator leads with 1.
func ImpedanceCoefficients(c CanonicalCoefficients) CanonicalCoefficients {
	var out CanonicalCoefficients
	floats.AddTo(out.B[:], c.A[:], c.B[:])
	floats.SubTo(out.A[:], c.A[:], c.B[:])
	if norm := out.A[0]; norm != 0 {
		for i := range out.A {
			out.B[i] /= norm
			out.A[i] /= norm
		}
	}
	return out
}

// IsStable runs the Schur–Cohn step-down recursion on a monic denominator.
func IsStable(a []float64) bool {
	cur := append([]float64(nil), a...)
	for len(cur) > 1 {
		l := len(cur) - 1
		k := cur[l]
		if !(math.Abs(k) < 1) {
			return false
		}
		d := 1 - k*k
		next := make([]float64, l)
		for i := range next {
			next[i] = (cur[i] - k*cur[l-i]) / d
		}
		cur = next
	}
	return true
}

// DesignFilters builds the impedance filter of every surface and rejects any that is unstable.
func DesignFilters(surfaces []surface.Surface, sampleRate float64) ([]CanonicalCoefficients, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("sample rate must be positive and finite, got %v", sampleRate)
	}
	out := make([]CanonicalCoefficients, len(surfaces))
	for i, s := range surfaces {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("surface %d: %w", i, err)
		}
		c := ImpedanceCoefficients(ReflectanceCoefficients(s, sampleRate))
		if !IsStable(c.A[:]) {
			filtersDesigned.WithLabelValues("unstable").Inc()
			return nil, fmt.Errorf("%w: surface %d, denominator %v", ErrUnstableFilter, i, c.A)
		}
		filtersDesigned.WithLabelValues("stable").Inc()
		out[i] = c
	}
	return out, nil
}
