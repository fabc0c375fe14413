package mesh

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r3"
)

// nodeRecord is the serialized node; field order and names are fixed.
type nodeRecord struct {
	Ports         [Ports]uint32  `json:"ports"`
	Position      [3]float64     `json:"position"`
	Inside        Classification `json:"inside"`
	BoundaryType  uint32         `json:"boundary_type"`
	BoundaryIndex uint32         `json:"boundary_index"`
}

func (n Node) MarshalJSON() ([]byte, error) {
	bits := n.Boundary.Bits()
	if n.Class == Inside {
		bits |= BitInside
	}
	return json.Marshal(nodeRecord{
		Ports:         n.Ports,
		Position:      [3]float64{n.Position.X, n.Position.Y, n.Position.Z},
		Inside:        n.Class,
		BoundaryType:  bits,
		BoundaryIndex: n.BoundaryIndex,
	})
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var rec nodeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	bt, err := BoundaryTypeFromBits(rec.BoundaryType)
	if err != nil {
		return fmt.Errorf("node boundary_type: %w", err)
	}
	*n = Node{
		Ports:         rec.Ports,
		Position:      r3.Vector{X: rec.Position[0], Y: rec.Position[1], Z: rec.Position[2]},
		Class:         rec.Inside,
		Boundary:      bt,
		BoundaryIndex: rec.BoundaryIndex,
	}
	return nil
}

// CondensedNode is the per-node record uploaded to a wave-solve backend.
type CondensedNode struct {
	BoundaryType  uint32 `json:"boundary_type"`
	BoundaryIndex uint32 `json:"boundary_index"`
}

// Condense strips positions and links; inside nodes carry the inside bit.
func (m *Mesh) Condense() []CondensedNode {
	out := make([]CondensedNode, len(m.Nodes))
	for i := range m.Nodes {
		n := &m.Nodes[i]
		bits := n.Boundary.Bits()
		if n.Class == Inside {
			bits |= BitInside
		}
		out[i] = CondensedNode{BoundaryType: bits, BoundaryIndex: n.BoundaryIndex}
	}
	return out
}
