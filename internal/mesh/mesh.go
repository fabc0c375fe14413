// Package mesh discretizes a room boundary into the tetrahedral waveguide lattice.
package mesh

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang/geo/r3"

	"github.com/lukaszgryglicki/acoustic3d/internal/geom"
)

// Boundary answers inside/outside queries for the room.
type Boundary interface {
	Inside(p r3.Vector) bool
	AABB() geom.AABB
}

// Classification of a lattice node; values are part of the serialized layout.
type Classification int32

const (
	Outside  Classification = 0
	Inside   Classification = 1
	OnBorder Classification = 2
)

func (c Classification) String() string {
	switch c {
	case Outside:
		return "outside"
	case Inside:
		return "inside"
	case OnBorder:
		return "boundary"
	}
	return fmt.Sprintf("classification(%d)", int32(c))
}

// Node is one lattice point.
type Node struct {
	Ports         [Ports]uint32
	Position      r3.Vector
	Class         Classification
	Boundary      BoundaryType
	BoundaryIndex uint32
}

// Mesh is the lattice built for one boundary, spacing and anchor.
type Mesh struct {
	Nodes    []Node
	Dim      Vec3i
	CubeSide float64
	Spacing  float64
	Origin   r3.Vector
}

var (
	ErrSpacing       = errors.New("node spacing must be positive and finite")
	ErrEmptyBoundary = errors.New("boundary covers no cubes")
	ErrTooManyNodes  = errors.New("lattice does not fit 32-bit node indices")
)

// CubeSide is the cube edge length giving nearest neighbours at spacing.
func CubeSide(spacing float64) float64 { return spacing / bondLength }

// Build lays the lattice over b so that anchor falls exactly on a lattice node
// (sub-cube 0 of some cube), links neighbours and classifies every node.
func Build(b Boundary, spacing float64, anchor r3.Vector) (*Mesh, error) {
	if !(spacing > 0) || math.IsInf(spacing, 0) {
		return nil, fmt.Errorf("%w: %v", ErrSpacing, spacing)
	}
	start := time.Now()
	side := CubeSide(spacing)
	box := b.AABB()

	var low, dim Vec3i
	counts := func(a, lo, hi float64) (int, int) {
		l := int(math.Ceil((a - lo) / side))
		h := int(math.Ceil((hi - a) / side))
		return l, l + h
	}
	low.X, dim.X = counts(anchor.X, box.Min.X, box.Max.X)
	low.Y, dim.Y = counts(anchor.Y, box.Min.Y, box.Max.Y)
	low.Z, dim.Z = counts(anchor.Z, box.Min.Z, box.Max.Z)
	if dim.X <= 0 || dim.Y <= 0 || dim.Z <= 0 {
		return nil, fmt.Errorf("%w: dimensions %+v", ErrEmptyBoundary, dim)
	}
	total := int64(dim.X) * int64(dim.Y) * int64(dim.Z) * Subcubes
	if total >= int64(NoNeighbor) {
		return nil, fmt.Errorf("%w: %d nodes", ErrTooManyNodes, total)
	}

	m := &Mesh{
		Dim:      dim,
		CubeSide: side,
		Spacing:  spacing,
		Origin: anchor.Sub(r3.Vector{
			X: float64(low.X) * side,
			Y: float64(low.Y) * side,
			Z: float64(low.Z) * side,
		}),
		Nodes: make([]Node, total),
	}
	for i := range m.Nodes {
		loc := LocatorOf(i, dim)
		m.Nodes[i].Position = m.Position(loc)
		m.Nodes[i].Ports = m.neighbors(loc)
	}
	m.classify(b)

	meshBuildSeconds.Observe(time.Since(start).Seconds())
	for c, n := range m.ClassCounts() {
		meshNodes.WithLabelValues(c.String()).Set(float64(n))
	}
	return m, nil
}

func (m *Mesh) IndexOf(l Locator) int { return IndexOf(l, m.Dim) }

func (m *Mesh) LocatorOf(i int) Locator { return LocatorOf(i, m.Dim) }

// Position is cube*cube_side + sub-cube offset + origin.
func (m *Mesh) Position(l Locator) r3.Vector {
	cube := r3.Vector{X: float64(l.Pos.X), Y: float64(l.Pos.Y), Z: float64(l.Pos.Z)}
	return cube.Add(subcubeOffsets[l.Mod]).Mul(m.CubeSide).Add(m.Origin)
}

func (m *Mesh) neighbors(l Locator) [Ports]uint32 {
	var out [Ports]uint32
	for p, pt := range portTable[l.Mod] {
		pos := l.Pos.Add(pt.offset)
		if !pos.Within(m.Dim) {
			out[p] = NoNeighbor
			continue
		}
		out[p] = uint32(m.IndexOf(Locator{Pos: pos, Mod: pt.mod}))
	}
	return out
}

// anyNeighbor looks at the bonds only; the z links of ports 4 and 5 do not
// count as adjacency.
func (m *Mesh) anyNeighbor(i int, flags []bool) bool {
	for _, n := range m.Nodes[i].Ports[:Bonds] {
		if n != NoNeighbor && flags[n] {
			return true
		}
	}
	return false
}

// classify runs two passes: nodes inside the boundary without any inside
// neighbour are demoted; then non-inside nodes touching an inside node
// become boundary nodes and get their wall directions.
func (m *Mesh) classify(b Boundary) {
	raw := make([]bool, len(m.Nodes))
	for i := range m.Nodes {
		raw[i] = b.Inside(m.Nodes[i].Position)
	}
	inside := make([]bool, len(m.Nodes))
	for i := range m.Nodes {
		inside[i] = raw[i] && m.anyNeighbor(i, raw)
	}
	for i := range m.Nodes {
		n := &m.Nodes[i]
		switch {
		case inside[i]:
			n.Class = Inside
		case m.anyNeighbor(i, inside):
			n.Class = OnBorder
			n.Boundary = wallDirections(b, n.Position, m.Spacing)
		default:
			n.Class = Outside
		}
	}
}

// wallDirections probes one spacing along each axis direction and maps the
// set of directions that reach the interior onto a boundary variant.
func wallDirections(b Boundary, p r3.Vector, spacing float64) BoundaryType {
	dirs := make([]Direction, 0, Directions)
	for d := Direction(0); d < Directions; d++ {
		if b.Inside(p.Add(d.Vector().Mul(spacing))) {
			dirs = append(dirs, d)
		}
	}
	if bt, ok := boundaryTypeOf(dirs); ok {
		return bt
	}
	return ReentrantBoundary()
}

// ClassCounts tallies nodes per classification.
func (m *Mesh) ClassCounts() map[Classification]int {
	out := map[Classification]int{Outside: 0, Inside: 0, OnBorder: 0}
	for i := range m.Nodes {
		out[m.Nodes[i].Class]++
	}
	return out
}

// KindCounts tallies boundary nodes per boundary variant.
func (m *Mesh) KindCounts() map[BoundaryKind]int {
	out := map[BoundaryKind]int{}
	for i := range m.Nodes {
		if m.Nodes[i].Class == OnBorder {
			out[m.Nodes[i].Boundary.Kind()]++
		}
	}
	return out
}
