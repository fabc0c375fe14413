package raytracer

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/golang/geo/r3"

	"github.com/lukaszgryglicki/acoustic3d/internal/geom"
	"github.com/lukaszgryglicki/acoustic3d/internal/imagesource"
	"github.com/lukaszgryglicki/acoustic3d/internal/surface"
)

var ErrDepth = errors.New("reflection depth must be at least the image-source depth")

// Scene is what the ray tracer needs from the room geometry.
type Scene interface {
	imagesource.Scene
	imagesource.SurfaceIndexer
}

// Reflector produces one reflection per ray for every step it is asked to run.
type Reflector interface {
	Rays() int
	RunStep() ([]imagesource.Reflection, error)
}

type Params struct {
	ReflectionDepth  int
	ImageSourceDepth int
	SpeedOfSound     float64
	Workers          int // image-source search workers
}

type Results struct {
	Direct      *imagesource.Impulse    `json:"direct,omitempty"`
	ImageSource []imagesource.Impulse   `json:"image_source"`
	Paths       []imagesource.ValidPath `json:"paths"`
}

// Run traces ReflectionDepth steps, builds the reflection tree from the
// first ImageSourceDepth bounces of every ray and validates it into
// image-source impulses. keepGoing is polled before every step; once it is
// false Run returns (nil, false, nil). A nil keepGoing never cancels and a nil
// progress is ignored.
func Run(
	p Params,
	scene Scene,
	surfaces []surface.Surface,
	source, receiver r3.Vector,
	reflector Reflector,
	keepGoing *atomic.Bool,
	progress func(step, total int),
) (*Results, bool, error) {
	if p.ReflectionDepth < p.ImageSourceDepth {
		return nil, false, fmt.Errorf("%w: %d < %d", ErrDepth, p.ReflectionDepth, p.ImageSourceDepth)
	}
	if p.SpeedOfSound <= 0 {
		return nil, false, fmt.Errorf("speed of sound must be positive, got %v", p.SpeedOfSound)
	}

	res := &Results{}
	direct, err := directImpulse(scene, source, receiver, p.SpeedOfSound)
	if err != nil {
		return nil, false, err
	}
	res.Direct = direct

	collector := imagesource.NewCollector(reflector.Rays(), p.ImageSourceDepth)
	for step := 0; step < p.ReflectionDepth; step++ {
		if keepGoing != nil && !keepGoing.Load() {
			return nil, false, nil
		}
		reflections, err := reflector.RunStep()
		if err != nil {
			return nil, false, fmt.Errorf("reflection step %d: %w", step, err)
		}
		if err := collector.Push(reflections); err != nil {
			return nil, false, fmt.Errorf("reflection step %d: %w", step, err)
		}
		if progress != nil {
			progress(step+1, p.ReflectionDepth)
		}
	}

	finder := imagesource.NewFinder(p.Workers)
	defer finder.Close()
	err = finder.FindValidPaths(source, receiver, scene, collector.Tree(), func(img r3.Vector, in []imagesource.Intersection) {
		res.Paths = append(res.Paths, imagesource.ValidPath{ImageSource: img, Intersections: append([]imagesource.Intersection(nil), in...)})
	})
	if err != nil {
		return nil, false, err
	}
	res.ImageSource, err = imagesource.ConstructImpulses(res.Paths, receiver, scene, surfaces, p.SpeedOfSound)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

// directImpulse is nil when a triangle blocks the straight source→receiver path.
func directImpulse(scene Scene, source, receiver r3.Vector, speedOfSound float64) (*imagesource.Impulse, error) {
	ray, err := geom.NewRay(source, receiver)
	if err != nil {
		return nil, err
	}
	if hit, ok := scene.Intersects(ray, -1); ok && hit.T <= source.Distance(receiver) {
		return nil, nil
	}
	var unit [surface.Bands]float64
	for b := range unit {
		unit[b] = 1
	}
	imp := imagesource.NewImpulse(unit, source, receiver, speedOfSound)
	return &imp, nil
}
