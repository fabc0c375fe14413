// Package surface holds per-band acoustic reflectance of boundary materials.
package surface

import "fmt"

// Bands is the number of frequency bands a surface is described with.
const Bands = 3

// BandEdges are band boundaries as fractions of the sample rate.
var BandEdges = [Bands + 1]float64{0, 1.0 / 6, 2.0 / 6, 0.5}

// Surface stores specular and diffuse reflectance per band, each in [0,1].
type Surface struct {
	Specular [Bands]float64 `json:"specular"`
	Diffuse  [Bands]float64 `json:"diffuse"`
}

// Uniform builds a surface with the same reflectance in every band.
func Uniform(specular, diffuse float64) Surface {
	var s Surface
	for i := range s.Specular {
		s.Specular[i] = specular
		s.Diffuse[i] = diffuse
	}
	return s
}

// BandCentre returns the centre frequency of band i in Hz.
func BandCentre(i int, sampleRate float64) float64 {
	return (BandEdges[i] + BandEdges[i+1]) / 2 * sampleRate
}

// Validate checks that all coefficients lie within [0,1].
func (s Surface) Validate() error {
	for i := 0; i < Bands; i++ {
		if s.Specular[i] < 0 || s.Specular[i] > 1 {
			return fmt.Errorf("specular[%d]=%v outside [0,1]", i, s.Specular[i])
		}
		if s.Diffuse[i] < 0 || s.Diffuse[i] > 1 {
			return fmt.Errorf("diffuse[%d]=%v outside [0,1]", i, s.Diffuse[i])
		}
	}
	return nil
}
