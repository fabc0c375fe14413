package boundary

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/lukaszgryglicki/acoustic3d/internal/mesh"
)

// BoundaryData is the filter state of one wall direction of a boundary node.
type BoundaryData struct {
	FilterMemory     CanonicalMemory `json:"filter_memory"`
	CoefficientIndex int32           `json:"coefficient_index"`
}

type BoundaryDataArray1 struct {
	Array [1]BoundaryData `json:"array"`
}

type BoundaryDataArray2 struct {
	Array [2]BoundaryData `json:"array"`
}

type BoundaryDataArray3 struct {
	Array [3]BoundaryData `json:"array"`
}

// Tables holds boundary data per number of active directions. Planar and
// reentrant nodes index B1, edge nodes B2 and corner nodes B3.
type Tables struct {
	B1 []BoundaryDataArray1 `json:"b1"`
	B2 []BoundaryDataArray2 `json:"b2"`
	B3 []BoundaryDataArray3 `json:"b3"`
}

// SurfaceFinder picks the surface a boundary node is modelling.
type SurfaceFinder interface {
	// SurfaceFacing returns the surface met going from p along d.
	SurfaceFacing(p r3.Vector, d mesh.Direction) uint32
	// SurfaceNearest returns the surface closest to p.
	SurfaceNearest(p r3.Vector) uint32
}

// AssignBoundaryData gives every boundary node one slot per active direction,
// with zeroed memory and the coefficient set of the surface in that direction,
// and stores the node's row in the matching table as its BoundaryIndex.
func AssignBoundaryData(m *mesh.Mesh, sf SurfaceFinder, coefficients int) (Tables, error) {
	var t Tables
	slot := func(i int, idx uint32) (BoundaryData, error) {
		if int(idx) >= coefficients {
			return BoundaryData{}, fmt.Errorf("node %d: surface %d has no designed filter (%d available)", i, idx, coefficients)
		}
		return BoundaryData{CoefficientIndex: int32(idx)}, nil
	}
	for i := range m.Nodes {
		n := &m.Nodes[i]
		if n.Class != mesh.OnBorder {
			n.BoundaryIndex = 0
			continue
		}
		dirs := n.Boundary.Directions()
		switch n.Boundary.Kind() {
		case mesh.KindReentrant:
			d, err := slot(i, sf.SurfaceNearest(n.Position))
			if err != nil {
				return Tables{}, err
			}
			n.BoundaryIndex = uint32(len(t.B1))
			t.B1 = append(t.B1, BoundaryDataArray1{Array: [1]BoundaryData{d}})
		case mesh.KindPlanar:
			var arr BoundaryDataArray1
			for k, dir := range dirs {
				d, err := slot(i, sf.SurfaceFacing(n.Position, dir))
				if err != nil {
					return Tables{}, err
				}
				arr.Array[k] = d
			}
			n.BoundaryIndex = uint32(len(t.B1))
			t.B1 = append(t.B1, arr)
		case mesh.KindEdge:
			var arr BoundaryDataArray2
			for k, dir := range dirs {
				d, err := slot(i, sf.SurfaceFacing(n.Position, dir))
				if err != nil {
					return Tables{}, err
				}
				arr.Array[k] = d
			}
			n.BoundaryIndex = uint32(len(t.B2))
			t.B2 = append(t.B2, arr)
		case mesh.KindCorner:
			var arr BoundaryDataArray3
			for k, dir := range dirs {
				d, err := slot(i, sf.SurfaceFacing(n.Position, dir))
				if err != nil {
					return Tables{}, err
				}
				arr.Array[k] = d
			}
			n.BoundaryIndex = uint32(len(t.B3))
			t.B3 = append(t.B3, arr)
		default:
			return Tables{}, fmt.Errorf("boundary node %d has no boundary type", i)
		}
	}
	boundarySlots.WithLabelValues("1").Set(float64(len(t.B1)))
	boundarySlots.WithLabelValues("2").Set(float64(len(t.B2)))
	boundarySlots.WithLabelValues("3").Set(float64(len(t.B3)))
	return t, nil
}
