package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// ErrDegenerateTriangle is returned for a triangle with no area, which has no normal.
var ErrDegenerateTriangle = errors.New("zero-area triangle")

// Hit is the nearest intersection of a ray with a scene triangle.
type Hit struct {
	T     float64
	Index int
}

// Scene is a triangulated room boundary with a BVH over its triangles.
type Scene struct {
	Triangles []Triangle
	Vertices  []r3.Vector
	root      *bvhNode
	bounds    AABB
}

// insideProbe is the fixed direction used for parity inside tests.
var insideProbe = r3.Vector{X: 1, Y: 0.2357, Z: 0.1129}.Normalize()

// NewScene validates vertex indices and triangle areas, then builds the BVH.
func NewScene(triangles []Triangle, vertices []r3.Vector) (*Scene, error) {
	s := &Scene{Triangles: triangles, Vertices: vertices}
	for i, t := range triangles {
		n := uint32(len(vertices))
		if t.V0 >= n || t.V1 >= n || t.V2 >= n {
			return nil, fmt.Errorf("triangle %d references a vertex out of range [0,%d): %+v", i, n, t)
		}
	}
	for i, v := range vertices {
		if !IsFiniteVector(v) {
			return nil, fmt.Errorf("vertex %d is not finite: %v", i, v)
		}
	}
	for i := range triangles {
		if n := s.Triangle(i).Normal(); !IsFiniteVector(n) || n.Norm2() == 0 {
			return nil, fmt.Errorf("%w: triangle %d %v", ErrDegenerateTriangle, i, s.Triangle(i))
		}
	}
	if len(triangles) == 0 {
		return s, nil
	}
	leaves := make([]bvhLeaf, len(triangles))
	for i := range triangles {
		leaves[i] = bvhLeaf{box: s.Triangle(i).Bounds(), index: i}
	}
	s.bounds = leaves[0].box
	for _, l := range leaves[1:] {
		s.bounds = s.bounds.Union(l.box)
	}
	if len(triangles) >= BVHFromNTriangles {
		s.root = buildBVH(leaves)
	}
	return s, nil
}

func (s *Scene) Triangle(i int) TriangleVec3 {
	t := s.Triangles[i]
	return TriangleVec3{s.Vertices[t.V0], s.Vertices[t.V1], s.Vertices[t.V2]}
}

func (s *Scene) TriangleCount() int { return len(s.Triangles) }

// SurfaceOf returns the surface index of triangle i.
func (s *Scene) SurfaceOf(i int) uint32 { return s.Triangles[i].Surface }

func (s *Scene) AABB() AABB { return s.bounds }

// Intersects finds the nearest triangle hit by r. Triangle exclude (or -1) is skipped,
// which keeps a ray leaving a surface from hitting that surface again.
func (s *Scene) Intersects(r Ray, exclude int) (Hit, bool) {
	intersect := func(i int) (float64, bool) { return s.Triangle(i).Intersect(r) }
	if s.root != nil {
		return traverseNearest(s.root, r, math.Inf(1), exclude, intersect)
	}
	best := Hit{Index: -1, T: math.Inf(1)}
	for i := range s.Triangles {
		if i == exclude {
			continue
		}
		if t, ok := intersect(i); ok && t < best.T {
			best = Hit{T: t, Index: i}
		}
	}
	return best, best.Index >= 0
}

// CountIntersections counts every triangle crossed by r.
func (s *Scene) CountIntersections(r Ray) int {
	count := 0
	visit := func(i int) {
		if _, ok := s.Triangle(i).Intersect(r); ok {
			count++
		}
	}
	if s.root != nil {
		traverseAll(s.root, r, visit)
		return count
	}
	for i := range s.Triangles {
		visit(i)
	}
	return count
}

// Inside reports whether p is enclosed by the scene, using ray parity.
func (s *Scene) Inside(p r3.Vector) bool {
	if len(s.Triangles) == 0 || !s.bounds.Contains(p) {
		return false
	}
	return s.CountIntersections(Ray{Position: p, Direction: insideProbe})%2 == 1
}

// ClosestTriangle returns the index of the triangle nearest to p, or -1 for an empty scene.
func (s *Scene) ClosestTriangle(p r3.Vector) int {
	best, bestD := -1, math.Inf(1)
	for i := range s.Triangles {
		if d := s.Triangle(i).ClosestPoint(p).Sub(p).Norm2(); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}
