package mesh

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r3"
)

// Direction is one of the six axis directions, pointing from a boundary node towards its wall.
type Direction uint8

const (
	NegX Direction = iota
	PosX
	NegY
	PosY
	NegZ
	PosZ
	Directions
)

var directionNames = [Directions]string{"-x", "+x", "-y", "+y", "-z", "+z"}

func (d Direction) String() string {
	if d >= Directions {
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
	return directionNames[d]
}

func (d Direction) Axis() int { return int(d) / 2 }

func (d Direction) Vector() r3.Vector {
	s := -1.0
	if d%2 == 1 {
		s = 1
	}
	switch d.Axis() {
	case 0:
		return r3.Vector{X: s}
	case 1:
		return r3.Vector{Y: s}
	default:
		return r3.Vector{Z: s}
	}
}

// Wire-format bits of the boundary type.
const (
	BitNone      uint32 = 0
	BitInside    uint32 = 1 << 0
	BitReentrant uint32 = 1 << 7
)

// Bit is the wire-format flag of d (1 << (d+1)).
func (d Direction) Bit() uint32 { return 1 << (uint32(d) + 1) }

type BoundaryKind uint8

const (
	KindNone BoundaryKind = iota
	KindPlanar
	KindEdge
	KindCorner
	KindReentrant
)

var kindNames = [...]string{"none", "planar", "edge", "corner", "reentrant"}

func (k BoundaryKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// BoundaryType says which walls a node models. The zero value is "no boundary".
type BoundaryType struct {
	kind BoundaryKind
	dirs [3]Direction
}

func PlanarBoundary(d Direction) BoundaryType {
	return BoundaryType{kind: KindPlanar, dirs: [3]Direction{d}}
}

func EdgeBoundary(a, b Direction) BoundaryType {
	if b < a {
		a, b = b, a
	}
	return BoundaryType{kind: KindEdge, dirs: [3]Direction{a, b}}
}

func CornerBoundary(a, b, c Direction) BoundaryType {
	if b < a {
		a, b = b, a
	}
	if c < b {
		b, c = c, b
	}
	if b < a {
		a, b = b, a
	}
	return BoundaryType{kind: KindCorner, dirs: [3]Direction{a, b, c}}
}

func ReentrantBoundary() BoundaryType { return BoundaryType{kind: KindReentrant} }

func (b BoundaryType) Kind() BoundaryKind { return b.kind }

// Directions lists the active wall directions; empty for none and reentrant.
func (b BoundaryType) Directions() []Direction {
	switch b.kind {
	case KindPlanar:
		return b.dirs[:1]
	case KindEdge:
		return b.dirs[:2]
	case KindCorner:
		return b.dirs[:3]
	}
	return nil
}

// Slots is the number of boundary-data entries the node needs.
func (b BoundaryType) Slots() int {
	switch b.kind {
	case KindPlanar, KindReentrant:
		return 1
	case KindEdge:
		return 2
	case KindCorner:
		return 3
	}
	return 0
}

// Bits encodes the type into the serialized bitmask.
func (b BoundaryType) Bits() uint32 {
	if b.kind == KindReentrant {
		return BitReentrant
	}
	bits := BitNone
	for _, d := range b.Directions() {
		bits |= d.Bit()
	}
	return bits
}

func (b BoundaryType) String() string {
	dirs := b.Directions()
	if len(dirs) == 0 {
		return b.kind.String()
	}
	parts := make([]string, len(dirs))
	for i, d := range dirs {
		parts[i] = d.String()
	}
	return b.kind.String() + "(" + strings.Join(parts, ",") + ")"
}

// BoundaryTypeFromBits decodes the serialized bitmask; the inside bit is ignored.
func BoundaryTypeFromBits(bits uint32) (BoundaryType, error) {
	bits &^= BitInside
	if bits == BitReentrant {
		return ReentrantBoundary(), nil
	}
	var dirs []Direction
	for d := Direction(0); d < Directions; d++ {
		if bits&d.Bit() != 0 {
			dirs = append(dirs, d)
			bits &^= d.Bit()
		}
	}
	if bits != 0 {
		return BoundaryType{}, fmt.Errorf("unknown boundary bits %#x", bits)
	}
	bt, ok := boundaryTypeOf(dirs)
	if !ok && len(dirs) > 0 {
		return BoundaryType{}, fmt.Errorf("boundary directions %v do not form a planar, edge or corner type", dirs)
	}
	return bt, nil
}

// boundaryTypeOf maps a set of wall directions (ascending) to a variant;
// false means the set is not planar, edge or corner.
func boundaryTypeOf(dirs []Direction) (BoundaryType, bool) {
	switch len(dirs) {
	case 0:
		return BoundaryType{}, false
	case 1:
		return PlanarBoundary(dirs[0]), true
	case 2:
		if dirs[0].Axis() != dirs[1].Axis() {
			return EdgeBoundary(dirs[0], dirs[1]), true
		}
	case 3:
		a, b, c := dirs[0].Axis(), dirs[1].Axis(), dirs[2].Axis()
		if a != b && b != c && a != c {
			return CornerBoundary(dirs[0], dirs[1], dirs[2]), true
		}
	}
	return BoundaryType{}, false
}
