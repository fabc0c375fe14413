package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNodeJSON_FieldOrderAndRoundTrip(t *testing.T) {
	n := Node{
		Ports:         [Ports]uint32{1, 2, NoNeighbor, 4, 5, 6},
		Position:      v3(0.5, -0.25, 1),
		Class:         OnBorder,
		Boundary:      EdgeBoundary(NegY, PosX),
		BoundaryIndex: 7,
	}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	order := []string{`"ports"`, `"position"`, `"inside"`, `"boundary_type"`, `"boundary_index"`}
	last := -1
	for _, k := range order {
		i := strings.Index(s, k)
		if i <= last {
			t.Fatalf("field %s out of order in %s", k, s)
		}
		last = i
	}
	if !strings.Contains(s, `"boundary_type":12`) {
		t.Fatalf("edge(+x,-y) must encode as 1<<2|1<<3, got %s", s)
	}

	var back Node
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != n {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, n)
	}
}

func TestBoundaryTypeBits(t *testing.T) {
	cases := []struct {
		bt   BoundaryType
		bits uint32
	}{
		{BoundaryType{}, 0},
		{PlanarBoundary(NegX), 1 << 1},
		{PlanarBoundary(PosZ), 1 << 6},
		{CornerBoundary(NegX, NegY, NegZ), 1<<1 | 1<<3 | 1<<5},
		{ReentrantBoundary(), 1 << 7},
	}
	for _, c := range cases {
		if got := c.bt.Bits(); got != c.bits {
			t.Errorf("%v: bits %#x want %#x", c.bt, got, c.bits)
		}
		back, err := BoundaryTypeFromBits(c.bits | BitInside)
		if err != nil || back != c.bt {
			t.Errorf("%#x: decoded %v (%v), want %v", c.bits, back, err, c.bt)
		}
	}
	if _, err := BoundaryTypeFromBits(NegX.Bit() | PosX.Bit()); err == nil {
		t.Errorf("opposing directions must not decode")
	}
	if _, err := BoundaryTypeFromBits(1 << 12); err == nil {
		t.Errorf("unknown bits must not decode")
	}
}

func TestCondense(t *testing.T) {
	m, err := Build(unitBox(), 0.3, v3(0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	cond := m.Condense()
	if len(cond) != len(m.Nodes) {
		t.Fatalf("condensed %d of %d nodes", len(cond), len(m.Nodes))
	}
	for i, c := range cond {
		inside := c.BoundaryType&BitInside != 0
		if inside != (m.Nodes[i].Class == Inside) {
			t.Fatalf("node %d: inside bit %v for class %v", i, inside, m.Nodes[i].Class)
		}
	}
}

func TestMeshSaveRaw(t *testing.T) {
	m, err := Build(unitBox(), 0.4, v3(0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "sub", "mesh.raw")
	if err := m.SaveRaw(path); err != nil {
		t.Fatalf("SaveRaw error: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open result file: %v", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var hx, hy, hz int32
	var side float64
	for _, p := range []any{&hx, &hy, &hz, &side} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			t.Fatalf("read header: %v", err)
		}
	}
	if int(hx) != m.Dim.X || int(hy) != m.Dim.Y || int(hz) != m.Dim.Z || side != m.CubeSide {
		t.Fatalf("header mismatch (%d,%d,%d,%v) want (%+v,%v)", hx, hy, hz, side, m.Dim, m.CubeSide)
	}
	var first rawNode
	if err := binary.Read(r, binary.LittleEndian, &first); err != nil {
		t.Fatalf("read node 0: %v", err)
	}
	if first.Ports != m.Nodes[0].Ports || first.Inside != int32(m.Nodes[0].Class) {
		t.Fatalf("node 0 mismatch: %+v", first)
	}

	st, err := f.Stat()
	if err != nil {
		t.Fatalf("stat file: %v", err)
	}
	wantSize := int64(12 + 8 + binary.Size(rawNode{})*len(m.Nodes))
	if st.Size() != wantSize {
		t.Fatalf("file size mismatch got %d want %d", st.Size(), wantSize)
	}
}

func TestWriteRaw_CountMismatch(t *testing.T) {
	m := &Mesh{Dim: Vec3i{1, 1, 1}, Nodes: make([]Node, 3)}
	if err := m.WriteRaw(&bytes.Buffer{}); err == nil {
		t.Fatalf("expected node count mismatch error")
	}
}
