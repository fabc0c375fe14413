package waveguide

import (
	"errors"
	"fmt"

	"github.com/lukaszgryglicki/acoustic3d/internal/boundary"
	"github.com/lukaszgryglicki/acoustic3d/internal/mesh"
)

var ErrNotUploaded = errors.New("backend has no mesh uploaded")

// CPUBackend is a rigid-wall tetrahedral waveguide: every missing or outside
// neighbour mirrors the node's own pressure. It injects signal at the source
// node and reads back the receiver pressure.
type CPUBackend struct {
	mesh     *mesh.Mesh
	source   int
	receiver int
	signal   []float64

	active          []bool
	prev, cur, next []float64
	step            int
}

func NewCPUBackend(m *mesh.Mesh, source, receiver int, signal []float64) (*CPUBackend, error) {
	for _, i := range []int{source, receiver} {
		if i < 0 || i >= len(m.Nodes) {
			return nil, fmt.Errorf("node %d outside mesh of %d nodes", i, len(m.Nodes))
		}
	}
	return &CPUBackend{mesh: m, source: source, receiver: receiver, signal: signal}, nil
}

// Upload checks the condensed nodes against the mesh and every boundary
// index against its table, then resets the pressure fields.
func (c *CPUBackend) Upload(nodes []mesh.CondensedNode, tables boundary.Tables, coefficients []boundary.CanonicalCoefficients) error {
	if len(nodes) != len(c.mesh.Nodes) {
		return fmt.Errorf("got %d nodes for a mesh of %d", len(nodes), len(c.mesh.Nodes))
	}
	c.active = make([]bool, len(nodes))
	for i, n := range nodes {
		if n.BoundaryType&mesh.BitInside != 0 {
			c.active[i] = true
			continue
		}
		if n.BoundaryType == mesh.BitNone {
			continue
		}
		bt, err := mesh.BoundaryTypeFromBits(n.BoundaryType)
		if err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		var rows int
		var indices []int32
		switch bt.Slots() {
		case 1:
			rows = len(tables.B1)
			if int(n.BoundaryIndex) < rows {
				indices = dataIndices(tables.B1[n.BoundaryIndex].Array[:])
			}
		case 2:
			rows = len(tables.B2)
			if int(n.BoundaryIndex) < rows {
				indices = dataIndices(tables.B2[n.BoundaryIndex].Array[:])
			}
		case 3:
			rows = len(tables.B3)
			if int(n.BoundaryIndex) < rows {
				indices = dataIndices(tables.B3[n.BoundaryIndex].Array[:])
			}
		}
		if int(n.BoundaryIndex) >= rows {
			return fmt.Errorf("node %d: boundary index %d outside table of %d rows", i, n.BoundaryIndex, rows)
		}
		for _, ci := range indices {
			if ci < 0 || int(ci) >= len(coefficients) {
				return fmt.Errorf("node %d: coefficient index %d outside %d filters", i, ci, len(coefficients))
			}
		}
		c.active[i] = true
	}
	c.prev = make([]float64, len(nodes))
	c.cur = make([]float64, len(nodes))
	c.next = make([]float64, len(nodes))
	c.step = 0
	return nil
}

func dataIndices(d []boundary.BoundaryData) []int32 {
	out := make([]int32, len(d))
	for i := range d {
		out[i] = d[i].CoefficientIndex
	}
	return out
}

// RunStep advances the field by one sample and returns the receiver pressure.
func (c *CPUBackend) RunStep() (float64, error) {
	if c.active == nil {
		return 0, ErrNotUploaded
	}
	for i := range c.mesh.Nodes {
		if !c.active[i] {
			c.next[i] = 0
			continue
		}
		sum := 0.0
		for p := 0; p < mesh.Bonds; p++ {
			j := c.mesh.Nodes[i].Ports[p]
			if j == mesh.NoNeighbor || !c.active[j] {
				sum += c.cur[i]
				continue
			}
			sum += c.cur[j]
		}
		c.next[i] = sum*2/mesh.Bonds - c.prev[i]
	}
	if c.step < len(c.signal) {
		c.next[c.source] += c.signal[c.step]
	}
	c.step++
	c.prev, c.cur, c.next = c.cur, c.next, c.prev
	return c.cur[c.receiver], nil
}
