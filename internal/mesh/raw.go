package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// rawNode is the fixed 48-byte little-endian node record.
type rawNode struct {
	Ports         [Ports]uint32
	Position      [3]float32
	Inside        int32
	BoundaryType  uint32
	BoundaryIndex uint32
}

// WriteRaw dumps the lattice: header dimx, dimy, dimz (int32) and cube side
// (float64), then one rawNode per node in index order.
func (m *Mesh) WriteRaw(w io.Writer) error {
	if exp := m.Dim.Product() * Subcubes; exp != len(m.Nodes) {
		return fmt.Errorf("node count mismatch: got %d, expected %d (dims*%d)", len(m.Nodes), exp, Subcubes)
	}
	bw := bufio.NewWriter(w)
	for _, v := range []int32{int32(m.Dim.X), int32(m.Dim.Y), int32(m.Dim.Z)} {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, m.CubeSide); err != nil {
		return err
	}
	cond := m.Condense()
	for i := range m.Nodes {
		n := &m.Nodes[i]
		rec := rawNode{
			Ports:         n.Ports,
			Position:      [3]float32{float32(n.Position.X), float32(n.Position.Y), float32(n.Position.Z)},
			Inside:        int32(n.Class),
			BoundaryType:  cond[i].BoundaryType,
			BoundaryIndex: n.BoundaryIndex,
		}
		if err := binary.Write(bw, binary.LittleEndian, &rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveRaw writes WriteRaw output to path, creating parent directories.
func (m *Mesh) SaveRaw(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.WriteRaw(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
