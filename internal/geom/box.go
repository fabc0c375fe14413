package geom

import "github.com/golang/geo/r3"

// Cuboid is an axis-aligned room; Inside is strict on every face.
type Cuboid struct {
	Min, Max r3.Vector
}

func (c Cuboid) Inside(p r3.Vector) bool {
	return p.X > c.Min.X && p.X < c.Max.X &&
		p.Y > c.Min.Y && p.Y < c.Max.Y &&
		p.Z > c.Min.Z && p.Z < c.Max.Z
}

func (c Cuboid) AABB() AABB { return AABB{Min: c.Min, Max: c.Max} }

// Box face order, matching the axis directions -x,+x,-y,+y,-z,+z.
const (
	FaceNX = iota
	FacePX
	FaceNY
	FacePY
	FaceNZ
	FacePZ
	BoxFaces
)

// corner index bits: 1=x at max, 2=y at max, 4=z at max
var boxFaceQuads = [BoxFaces][4]uint32{
	FaceNX: {0, 2, 6, 4},
	FacePX: {1, 3, 7, 5},
	FaceNY: {0, 1, 5, 4},
	FacePY: {2, 3, 7, 6},
	FaceNZ: {0, 1, 3, 2},
	FacePZ: {4, 5, 7, 6},
}

// Triangles tessellates the cuboid into 12 triangles, two per face; face f owns
// triangles 2f and 2f+1 and uses surfaces[f].
func (c Cuboid) Triangles(surfaces [BoxFaces]uint32) ([]Triangle, []r3.Vector) {
	verts := make([]r3.Vector, 8)
	for i := range verts {
		v := c.Min
		if i&1 != 0 {
			v.X = c.Max.X
		}
		if i&2 != 0 {
			v.Y = c.Max.Y
		}
		if i&4 != 0 {
			v.Z = c.Max.Z
		}
		verts[i] = v
	}
	tris := make([]Triangle, 0, 2*BoxFaces)
	for f, q := range boxFaceQuads {
		s := surfaces[f]
		tris = append(tris,
			Triangle{Surface: s, V0: q[0], V1: q[1], V2: q[2]},
			Triangle{Surface: s, V0: q[0], V1: q[2], V2: q[3]},
		)
	}
	return tris, verts
}
