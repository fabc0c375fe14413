package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Component returns the axis-th coordinate of v (0=X, 1=Y, 2=Z).
func Component(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Reflect mirrors direction d about the unit normal n.
func Reflect(d, n r3.Vector) r3.Vector {
	return d.Sub(n.Mul(2 * d.Dot(n)))
}

func vmin(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func vmax(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

func isFinite(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

// IsFiniteVector reports whether every coordinate of v is finite.
func IsFiniteVector(v r3.Vector) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}
