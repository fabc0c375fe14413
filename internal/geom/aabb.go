package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// AABB is an axis-aligned box.
type AABB struct {
	Min, Max r3.Vector
}

func (b AABB) Union(o AABB) AABB {
	return AABB{Min: vmin(b.Min, o.Min), Max: vmax(b.Max, o.Max)}
}

func (b AABB) Centroid() r3.Vector { return b.Min.Add(b.Max).Mul(0.5) }

func (b AABB) Dimensions() r3.Vector { return b.Max.Sub(b.Min) }

// Contains is inclusive on every face.
func (b AABB) Contains(p r3.Vector) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

type rayRecips struct {
	invX, invY, invZ float64
	parX, parY, parZ bool // parallel flags (|D| < eps)
}

func computeRayRecips(d r3.Vector) rayRecips {
	const eps = 1e-18
	rr := rayRecips{}
	if x := d.X; x > eps || x < -eps {
		rr.invX = 1 / x
	} else {
		rr.parX = true
	}
	if y := d.Y; y > eps || y < -eps {
		rr.invY = 1 / y
	} else {
		rr.parY = true
	}
	if z := d.Z; z > eps || z < -eps {
		rr.invZ = 1 / z
	} else {
		rr.parZ = true
	}
	return rr
}

// slab clips [tmin,tmax] against one axis; false means the ray misses the slab.
func slab(o, lo, hi, inv float64, par bool, tmin, tmax float64) (float64, float64, bool) {
	if par {
		return tmin, tmax, o >= lo && o <= hi
	}
	t1 := (lo - o) * inv
	t2 := (hi - o) * inv
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if t1 > tmin {
		tmin = t1
	}
	if t2 < tmax {
		tmax = t2
	}
	return tmin, tmax, true
}

// rayAABB returns the entry parameter of the ray into b, clamped to 0 when the origin is inside.
func rayAABB(o r3.Vector, b AABB, rr rayRecips) (bool, float64) {
	tmin, tmax := 0.0, math.Inf(1)
	var ok bool

	if tmin, tmax, ok = slab(o.X, b.Min.X, b.Max.X, rr.invX, rr.parX, tmin, tmax); !ok {
		return false, 0
	}
	if tmin, tmax, ok = slab(o.Y, b.Min.Y, b.Max.Y, rr.invY, rr.parY, tmin, tmax); !ok {
		return false, 0
	}
	if tmin, tmax, ok = slab(o.Z, b.Min.Z, b.Max.Z, rr.invZ, rr.parZ, tmin, tmax); !ok {
		return false, 0
	}

	if tmin > tmax {
		return false, 0
	}
	return true, tmin
}
