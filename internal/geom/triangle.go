package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Triangle indexes three scene vertices and the surface (material) it is made of.
type Triangle struct {
	Surface    uint32
	V0, V1, V2 uint32
}

// TriangleVec3 is a triangle with its vertices resolved.
type TriangleVec3 [3]r3.Vector

// Normal is the unit normal following the v0→v1→v2 winding.
func (t TriangleVec3) Normal() r3.Vector {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Normalize()
}

func (t TriangleVec3) Bounds() AABB {
	return AABB{
		Min: vmin(t[0], vmin(t[1], t[2])),
		Max: vmax(t[0], vmax(t[1], t[2])),
	}
}

// Mirror reflects point p across the plane of t.
func Mirror(p r3.Vector, t TriangleVec3) r3.Vector {
	n := t.Normal()
	return p.Sub(n.Mul(2 * p.Sub(t[0]).Dot(n)))
}

// Intersect is a Möller–Trumbore ray/triangle test returning the ray parameter of the hit.
func (t TriangleVec3) Intersect(r Ray) (float64, bool) {
	e0 := t[1].Sub(t[0])
	e1 := t[2].Sub(t[0])
	p := r.Direction.Cross(e1)
	det := e0.Dot(p)
	if math.Abs(det) < detEps {
		return 0, false
	}
	inv := 1 / det
	s := r.Position.Sub(t[0])
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e0)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	d := e1.Dot(q) * inv
	if d <= minHitT {
		return 0, false
	}
	return d, true
}

// ClosestPoint returns the point of t nearest to p (Voronoi region walk).
func (t TriangleVec3) ClosestPoint(p r3.Vector) r3.Vector {
	a, b, c := t[0], t[1], t[2]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Mul(d1 / (d1 - d3)))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Mul(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		return b.Add(c.Sub(b).Mul((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}
