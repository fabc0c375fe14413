package raytracer

import (
	"errors"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/golang/geo/r3"

	"github.com/lukaszgryglicki/acoustic3d/internal/geom"
	"github.com/lukaszgryglicki/acoustic3d/internal/imagesource"
)

var ErrNoRays = errors.New("ray count must be positive")

// FibonacciDirections spreads n unit vectors evenly over the sphere.
func FibonacciDirections(n int) []r3.Vector {
	out := make([]r3.Vector, n)
	for i := range out {
		z := 1 - (2*float64(i)+1)/float64(n)
		r := math.Sqrt(math.Max(0, 1-z*z))
		phi := float64(i) * goldenAngle
		out[i] = r3.Vector{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
	}
	return out
}

// SpecularReflector follows rays from the source by mirror reflection, one
// bounce per step. Results only depend on the ray index, so any worker count
// gives the same reflections.
type SpecularReflector struct {
	scene    Scene
	receiver r3.Vector
	workers  int
	step     int
	rays     []geom.Ray
	alive    []bool
	last     []int // triangle each ray is leaving, -1 for the source
}

// NewSpecularReflector starts rays Fibonacci-distributed around source.
// workers <= 0 means runtime.NumCPU().
func NewSpecularReflector(scene Scene, source, receiver r3.Vector, rays, workers int) (*SpecularReflector, error) {
	if rays <= 0 {
		return nil, ErrNoRays
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > rays {
		workers = rays
	}
	s := &SpecularReflector{
		scene:    scene,
		receiver: receiver,
		workers:  workers,
		rays:     make([]geom.Ray, rays),
		alive:    make([]bool, rays),
		last:     make([]int, rays),
	}
	for i, d := range FibonacciDirections(rays) {
		s.rays[i] = geom.Ray{Position: source, Direction: d}
		s.alive[i] = true
		s.last[i] = -1
	}
	return s, nil
}

func (s *SpecularReflector) Rays() int { return len(s.rays) }

// RunStep advances every live ray by one reflection.
func (s *SpecularReflector) RunStep() ([]imagesource.Reflection, error) {
	start := time.Now()
	defer func() { stepSeconds.Observe(time.Since(start).Seconds()) }()

	n := len(s.rays)
	out := make([]imagesource.Reflection, n)
	base, rem := n/s.workers, n%s.workers

	var wg sync.WaitGroup
	wg.Add(s.workers)
	from := 0
	for w := 0; w < s.workers; w++ {
		count := base
		if w < rem {
			count++
		}
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				out[i] = s.trace(i)
			}
		}(from, from+count)
		from += count
	}
	wg.Wait()
	s.step++

	hits := 0
	for _, r := range out {
		if r.KeepGoing {
			hits++
		}
	}
	raysTraced.WithLabelValues("hit").Add(float64(hits))
	raysTraced.WithLabelValues("miss").Add(float64(n - hits))
	return out, nil
}

// trace owns slot i; no other goroutine touches it during a step.
func (s *SpecularReflector) trace(i int) imagesource.Reflection {
	if !s.alive[i] {
		return imagesource.Reflection{}
	}
	ray := s.rays[i]
	hit, ok := s.scene.Intersects(ray, s.last[i])
	if !ok {
		s.alive[i] = false
		if Debug {
			logRay("miss", Miss, ray.Position, ray.Direction, r3.Vector{}, s.step)
		}
		return imagesource.Reflection{}
	}

	p := ray.At(hit.T)
	tri := s.scene.Triangle(hit.Index)
	s.rays[i] = geom.Ray{Position: p, Direction: geom.Reflect(ray.Direction, tri.Normal()).Normalize()}
	s.last[i] = hit.Index
	if Debug {
		logRay("hit", Hit, ray.Position, ray.Direction, p, s.step)
	}

	visible := s.receiverVisible(p, hit.Index)
	if visible && Debug {
		logRay("visible", Visible, p, s.receiver.Sub(p), s.receiver, s.step)
	}
	return imagesource.Reflection{Triangle: uint32(hit.Index), KeepGoing: true, ReceiverVisible: visible}
}

func (s *SpecularReflector) receiverVisible(p r3.Vector, from int) bool {
	ray, err := geom.NewRay(p, s.receiver)
	if err != nil {
		return false
	}
	hit, ok := s.scene.Intersects(ray, from)
	return !ok || hit.T > p.Distance(s.receiver)
}
