package imagesource

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/lukaszgryglicki/acoustic3d/internal/surface"
)

// Impulse is one arrival at the receiver.
type Impulse struct {
	Volume   [surface.Bands]float64 `json:"volume"`
	Position r3.Vector              `json:"position"` // (image) source position
	Distance float64                `json:"distance"`
	Time     float64                `json:"time"`
}

// NewImpulse builds an arrival from position with the given per-band volume.
func NewImpulse(volume [surface.Bands]float64, position, receiver r3.Vector, speedOfSound float64) Impulse {
	d := position.Distance(receiver)
	return Impulse{Volume: volume, Position: position, Distance: d, Time: d / speedOfSound}
}

// SurfaceIndexer maps a triangle to its surface.
type SurfaceIndexer interface {
	SurfaceOf(triangle int) uint32
}

// ConstructImpulse attenuates a unit impulse by the specular reflectance of every bounce.
func ConstructImpulse(p ValidPath, receiver r3.Vector, scene SurfaceIndexer, surfaces []surface.Surface, speedOfSound float64) (Impulse, error) {
	var vol [surface.Bands]float64
	for b := range vol {
		vol[b] = 1
	}
	for _, in := range p.Intersections {
		s := scene.SurfaceOf(int(in.Index))
		if int(s) >= len(surfaces) {
			return Impulse{}, fmt.Errorf("triangle %d uses surface %d, only %d defined", in.Index, s, len(surfaces))
		}
		for b := range vol {
			vol[b] *= surfaces[s].Specular[b]
		}
	}
	return NewImpulse(vol, p.ImageSource, receiver, speedOfSound), nil
}

// ConstructImpulses converts every path, keeping the input order.
func ConstructImpulses(paths []ValidPath, receiver r3.Vector, scene SurfaceIndexer, surfaces []surface.Surface, speedOfSound float64) ([]Impulse, error) {
	out := make([]Impulse, 0, len(paths))
	for _, p := range paths {
		imp, err := ConstructImpulse(p, receiver, scene, surfaces, speedOfSound)
		if err != nil {
			return nil, err
		}
		out = append(out, imp)
	}
	return out, nil
}
