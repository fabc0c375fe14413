package waveguide

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lukaszgryglicki/acoustic3d/internal/boundary"
	"github.com/lukaszgryglicki/acoustic3d/internal/mesh"
)

// Backend runs the wave solve. T is whatever one step reads back.
type Backend[T any] interface {
	Upload(nodes []mesh.CondensedNode, tables boundary.Tables, coefficients []boundary.CanonicalCoefficients) error
	RunStep() (T, error)
}

// Run uploads the mesh once and collects the readback of every step.
// keepGoing is polled before each step; once it is false Run returns
// (nil, false, nil). A nil keepGoing never cancels and a nil progress is ignored.
func Run[T any](
	backend Backend[T],
	m *mesh.Mesh,
	tables boundary.Tables,
	coefficients []boundary.CanonicalCoefficients,
	steps int,
	keepGoing *atomic.Bool,
	progress func(step, total int),
) ([]T, bool, error) {
	if steps < 0 {
		return nil, false, fmt.Errorf("step count must not be negative, got %d", steps)
	}
	if err := backend.Upload(m.Condense(), tables, coefficients); err != nil {
		return nil, false, fmt.Errorf("upload: %w", err)
	}
	out := make([]T, 0, steps)
	for step := 0; step < steps; step++ {
		if keepGoing != nil && !keepGoing.Load() {
			return nil, false, nil
		}
		start := time.Now()
		v, err := backend.RunStep()
		stepSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, false, fmt.Errorf("waveguide step %d: %w", step, err)
		}
		out = append(out, v)
		if progress != nil {
			progress(step+1, steps)
		}
	}
	return out, true, nil
}
