package mesh

// Vec3i is an integer cube coordinate or a cube count per axis.
type Vec3i struct {
	X, Y, Z int
}

func (a Vec3i) Add(b Vec3i) Vec3i { return Vec3i{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

func (a Vec3i) Neg() Vec3i { return Vec3i{-a.X, -a.Y, -a.Z} }

func (a Vec3i) Product() int { return a.X * a.Y * a.Z }

// Within reports whether 0 <= a < dim on every axis.
func (a Vec3i) Within(dim Vec3i) bool {
	return a.X >= 0 && a.Y >= 0 && a.Z >= 0 && a.X < dim.X && a.Y < dim.Y && a.Z < dim.Z
}

// Locator addresses a lattice node: cube coordinate plus sub-cube index in [0,Subcubes).
type Locator struct {
	Pos Vec3i
	Mod int
}

// IndexOf flattens a locator: mod + x*8 + y*dimx*8 + z*dimx*dimy*8.
func IndexOf(l Locator, dim Vec3i) int {
	return l.Mod + Subcubes*(l.Pos.X+dim.X*(l.Pos.Y+dim.Y*l.Pos.Z))
}

// LocatorOf is the inverse of IndexOf for indices in [0, dim.Product()*Subcubes).
func LocatorOf(index int, dim Vec3i) Locator {
	mod := index % Subcubes
	q := index / Subcubes
	x := q % dim.X
	q /= dim.X
	y := q % dim.Y
	z := q / dim.Y
	return Locator{Pos: Vec3i{x, y, z}, Mod: mod}
}
