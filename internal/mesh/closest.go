package mesh

import "github.com/golang/geo/r3"

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClosestLocator finds the lattice node nearest to p. The coarse cube estimate
// is clamped into the lattice, then the surrounding 3×3×3 cubes are scanned in
// x, y, z, sub-cube order; the first minimum found wins.
func (m *Mesh) ClosestLocator(p r3.Vector) Locator {
	rel := p.Sub(m.Origin).Mul(1 / m.CubeSide)
	est := Vec3i{
		X: clampInt(int(rel.X), 0, m.Dim.X-1),
		Y: clampInt(int(rel.Y), 0, m.Dim.Y-1),
		Z: clampInt(int(rel.Z), 0, m.Dim.Z-1),
	}
	lo := Vec3i{max(est.X-1, 0), max(est.Y-1, 0), max(est.Z-1, 0)}
	hi := Vec3i{min(est.X+2, m.Dim.X), min(est.Y+2, m.Dim.Y), min(est.Z+2, m.Dim.Z)}

	best := Locator{Pos: lo, Mod: 0}
	bestD := m.Position(best).Sub(p).Norm2()
	for x := lo.X; x < hi.X; x++ {
		for y := lo.Y; y < hi.Y; y++ {
			for z := lo.Z; z < hi.Z; z++ {
				for mod := 0; mod < Subcubes; mod++ {
					l := Locator{Pos: Vec3i{x, y, z}, Mod: mod}
					if d := m.Position(l).Sub(p).Norm2(); d < bestD {
						best, bestD = l, d
					}
				}
			}
		}
	}
	return best
}

// ClosestIndex is ClosestLocator flattened to a node index.
func (m *Mesh) ClosestIndex(p r3.Vector) int { return m.IndexOf(m.ClosestLocator(p)) }
