package mesh

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/lukaszgryglicki/acoustic3d/internal/geom"
)

func v3(x, y, z float64) r3.Vector { return r3.Vector{X: x, Y: y, Z: z} }

func almostEq(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// predicate is a test boundary driven by an inside function.
type predicate struct {
	inside func(r3.Vector) bool
	box    geom.AABB
}

func (p predicate) Inside(x r3.Vector) bool { return p.inside(x) }
func (p predicate) AABB() geom.AABB         { return p.box }

func unitBox() geom.Cuboid { return geom.Cuboid{Min: v3(-1, -1, -1), Max: v3(1, 1, 1)} }

func bruteClosest(m *Mesh, p r3.Vector) (int, float64) {
	best, bestD := -1, math.Inf(1)
	for i := range m.Nodes {
		if d := m.Nodes[i].Position.Sub(p).Norm2(); d < bestD {
			best, bestD = i, d
		}
	}
	return best, bestD
}

// bondedTo reports whether a bond of n reaches a node of one of the classes.
func bondedTo(m *Mesh, n Node, classes ...Classification) bool {
	for _, j := range n.Ports[:Bonds] {
		if j == NoNeighbor {
			continue
		}
		for _, c := range classes {
			if m.Nodes[j].Class == c {
				return true
			}
		}
	}
	return false
}

func TestLocatorBijection(t *testing.T) {
	dim := Vec3i{3, 4, 5}
	for i := 0; i < dim.Product()*Subcubes; i++ {
		l := LocatorOf(i, dim)
		if !l.Pos.Within(dim) || l.Mod < 0 || l.Mod >= Subcubes {
			t.Fatalf("index %d: locator out of range %+v", i, l)
		}
		if got := IndexOf(l, dim); got != i {
			t.Fatalf("index_of(locator_of(%d)) = %d", i, got)
		}
	}
}

func TestPortTable_ReturnLinksAndLengths(t *testing.T) {
	for mod := 0; mod < Subcubes; mod++ {
		for port := 0; port < Ports; port++ {
			off, target := PortTarget(mod, port)
			back := OppositePort(mod, port)
			boff, bmod := PortTarget(target, back)
			if bmod != mod || boff != off.Neg() {
				t.Fatalf("sub %d port %d: return link (%v,%d) via port %d", mod, port, boff, bmod, back)
			}
			from := subcubeOffsets[mod]
			to := subcubeOffsets[target].Add(v3(float64(off.X), float64(off.Y), float64(off.Z)))
			want := bondLength
			if port >= 4 {
				want = 1
			}
			if d := to.Sub(from).Norm(); !almostEq(d, want) {
				t.Fatalf("sub %d port %d: link length %v want %v", mod, port, d, want)
			}
		}
	}
}

func TestBuild_NeighborSymmetry(t *testing.T) {
	m, err := Build(unitBox(), 0.2, v3(0.1, -0.05, 0))
	if err != nil {
		t.Fatal(err)
	}
	links := 0
	for i := range m.Nodes {
		mod := m.LocatorOf(i).Mod
		for p, n := range m.Nodes[i].Ports {
			if n == NoNeighbor {
				continue
			}
			links++
			if back := m.Nodes[n].Ports[OppositePort(mod, p)]; back != uint32(i) {
				t.Fatalf("node %d port %d -> %d, return port lists %d", i, p, n, back)
			}
			want := m.Spacing
			if p >= 4 {
				want = m.CubeSide
			}
			if d := m.Nodes[n].Position.Sub(m.Nodes[i].Position).Norm(); math.Abs(d-want) > 1e-9 {
				t.Fatalf("node %d port %d: distance %v want %v", i, p, d, want)
			}
		}
	}
	if links == 0 {
		t.Fatalf("no links generated")
	}
}

func TestBuild_BoxEndToEnd(t *testing.T) {
	m, err := Build(unitBox(), 0.05, v3(0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Nodes) != m.Dim.Product()*Subcubes {
		t.Fatalf("got %d nodes, want %d", len(m.Nodes), m.Dim.Product()*Subcubes)
	}
	if !almostEq(m.CubeSide, 0.05/bondLength) {
		t.Fatalf("cube side %v", m.CubeSide)
	}
	counts := m.ClassCounts()
	if counts[Inside] == 0 || counts[OnBorder] == 0 || counts[Outside] == 0 {
		t.Fatalf("expected all three classes, got %v", counts)
	}
	if counts[Inside]+counts[OnBorder]+counts[Outside] != len(m.Nodes) {
		t.Fatalf("classification counts do not cover every node: %v", counts)
	}
	for i, n := range m.Nodes {
		if s := n.Boundary.Slots(); s > 3 {
			t.Fatalf("node %d has %d boundary directions", i, s)
		}
		if n.Class != OnBorder && n.Boundary.Kind() != KindNone {
			t.Fatalf("non-boundary node %d carries boundary type %v", i, n.Boundary)
		}
		if n.Class == OnBorder && n.Boundary.Kind() == KindNone {
			t.Fatalf("boundary node %d has no boundary type", i)
		}
		if n.Class == OnBorder && !bondedTo(m, n, Inside) {
			t.Fatalf("boundary node %d has no inside node across a bond", i)
		}
		if n.Class == Inside && !bondedTo(m, n, Inside, OnBorder) {
			t.Fatalf("inside node %d is isolated across its bonds", i)
		}
	}
	// the anchor lands exactly on a lattice node
	l := m.ClosestLocator(v3(0, 0, 0))
	if p := m.Position(l); p.Norm() > 1e-9 || l.Mod != 0 {
		t.Fatalf("anchor not on lattice: %+v at %v", l, p)
	}
}

func TestBuild_Errors(t *testing.T) {
	for _, s := range []float64{0, -0.1, math.Inf(1), math.NaN()} {
		if _, err := Build(unitBox(), s, v3(0, 0, 0)); !errors.Is(err, ErrSpacing) {
			t.Errorf("spacing %v: expected ErrSpacing, got %v", s, err)
		}
	}
	flat := geom.Cuboid{Min: v3(0, 0, 0), Max: v3(1, 0, 1)}
	if _, err := Build(flat, 0.1, v3(0, 0, 0)); !errors.Is(err, ErrEmptyBoundary) {
		t.Errorf("expected ErrEmptyBoundary, got %v", err)
	}
}

func TestClosestLocator_MatchesBruteForce(t *testing.T) {
	m, err := Build(unitBox(), 0.25, v3(0.3, 0.1, -0.2))
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 300; i++ {
		p := v3(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1)
		got := m.ClosestIndex(p)
		_, wantD := bruteClosest(m, p)
		if d := m.Nodes[got].Position.Sub(p).Norm2(); math.Abs(d-wantD) > 1e-12 {
			t.Fatalf("point %v: closest distance %v, brute force %v", p, d, wantD)
		}
	}
	// far outside points clamp into the lattice
	if i := m.ClosestIndex(v3(100, -100, 100)); i < 0 || i >= len(m.Nodes) {
		t.Fatalf("clamped index out of range: %d", i)
	}
}

func TestClosestLocator_TieTakesFirstInScanOrder(t *testing.T) {
	// unit cubes at the origin keep every position exact
	m := &Mesh{Dim: Vec3i{3, 3, 3}, CubeSide: 1}
	cases := []struct {
		a, b Locator
	}{
		// same cube: the lower sub-cube index wins
		{Locator{Pos: Vec3i{0, 0, 0}, Mod: 1}, Locator{Pos: Vec3i{0, 0, 0}, Mod: 2}},
		// across cubes: the lower x cube wins
		{Locator{Pos: Vec3i{0, 0, 0}, Mod: 3}, Locator{Pos: Vec3i{1, 0, 1}, Mod: 0}},
		// across cubes: the lower z cube wins
		{Locator{Pos: Vec3i{1, 1, 0}, Mod: 6}, Locator{Pos: Vec3i{1, 1, 1}, Mod: 5}},
	}
	for _, c := range cases {
		pa, pb := m.Position(c.a), m.Position(c.b)
		mid := pa.Add(pb).Mul(0.5)
		if mid.Sub(pa).Norm2() != mid.Sub(pb).Norm2() {
			t.Fatalf("%v and %v are not equidistant from %v", c.a, c.b, mid)
		}
		if got := m.ClosestLocator(mid); got != c.a {
			t.Errorf("midpoint of %v and %v: got %v", c.a, c.b, got)
		}
	}
}

func TestWallDirections_Variants(t *testing.T) {
	box := geom.AABB{Min: v3(-1, -1, -1), Max: v3(1, 1, 1)}
	cases := []struct {
		name   string
		inside func(r3.Vector) bool
		p      r3.Vector
		want   BoundaryType
	}{
		{"planar", func(x r3.Vector) bool { return x.X > 0 }, v3(-0.01, 0, 0), PlanarBoundary(PosX)},
		{"edge", func(x r3.Vector) bool { return x.X > 0 || x.Y > 0 }, v3(-0.01, -0.01, 0), EdgeBoundary(PosX, PosY)},
		{"corner", func(x r3.Vector) bool { return x.X > 0 || x.Y > 0 || x.Z > 0 }, v3(-0.01, -0.01, -0.01), CornerBoundary(PosZ, PosX, PosY)},
		{"opposing", func(x r3.Vector) bool { return math.Abs(x.X) > 0.02 }, v3(0, 0, 0), ReentrantBoundary()},
		{"diagonal", func(x r3.Vector) bool { return x.X > 0 && x.Y > 0 }, v3(-0.01, -0.01, 0), ReentrantBoundary()},
	}
	for _, c := range cases {
		got := wallDirections(predicate{inside: c.inside, box: box}, c.p, 0.05)
		if got != c.want {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	ref, err := Build(unitBox(), 0.2, v3(0.05, 0.05, 0.05))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		m, err := Build(unitBox(), 0.2, v3(0.05, 0.05, 0.05))
		if err != nil {
			t.Fatal(err)
		}
		if m.Dim != ref.Dim || m.CubeSide != ref.CubeSide || !reflect.DeepEqual(m.Nodes, ref.Nodes) {
			t.Fatalf("run %d differs from the first run", i)
		}
	}
}
