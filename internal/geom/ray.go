package geom

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
)

// ErrDegenerateRay is returned when a ray is requested between two identical points.
var ErrDegenerateRay = errors.New("zero-length ray")

// Ray is a half-line with a unit direction.
type Ray struct {
	Position  r3.Vector
	Direction r3.Vector
}

// NewRay builds the ray starting at from and pointing towards to.
func NewRay(from, to r3.Vector) (Ray, error) {
	if from == to {
		return Ray{}, fmt.Errorf("%w: both ends at %v", ErrDegenerateRay, from)
	}
	return Ray{Position: from, Direction: to.Sub(from).Normalize()}, nil
}

func (r Ray) At(t float64) r3.Vector {
	return r.Position.Add(r.Direction.Mul(t))
}
