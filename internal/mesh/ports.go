package mesh

import (
	"fmt"

	"github.com/golang/geo/r3"
)

const (
	Subcubes = 8
	Ports    = 6
	// Bonds is the number of leading ports that are tetrahedral bonds.
	Bonds = 4
	// NoNeighbor marks a port that leaves the lattice.
	NoNeighbor = ^uint32(0)
)

// subcubeOffsets are the node positions inside one cube, in cube units.
var subcubeOffsets = [Subcubes]r3.Vector{
	{X: 0.00, Y: 0.00, Z: 0.00},
	{X: 0.50, Y: 0.00, Z: 0.50},
	{X: 0.25, Y: 0.25, Z: 0.25},
	{X: 0.75, Y: 0.25, Z: 0.75},
	{X: 0.00, Y: 0.50, Z: 0.50},
	{X: 0.50, Y: 0.50, Z: 0.00},
	{X: 0.25, Y: 0.75, Z: 0.75},
	{X: 0.75, Y: 0.75, Z: 0.25},
}

// bondLength is the nearest-neighbour distance of the pattern in cube units.
var bondLength = r3.Vector{X: 0.25, Y: 0.25, Z: 0.25}.Norm()

type portTarget struct {
	offset Vec3i // relative cube
	mod    int   // target sub-cube index
}

// portTable lists, per sub-cube index, the six neighbour links.
// Ports 0-3 are the tetrahedral bonds; ports 4 and 5 join the same
// sub-cube index in the cube below and above along z.
var portTable = [Subcubes][Ports]portTarget{
	{{Vec3i{0, 0, 0}, 2}, {Vec3i{-1, 0, -1}, 3}, {Vec3i{0, -1, -1}, 6}, {Vec3i{-1, -1, 0}, 7}, {Vec3i{0, 0, -1}, 0}, {Vec3i{0, 0, 1}, 0}},
	{{Vec3i{0, 0, 0}, 2}, {Vec3i{0, 0, 0}, 3}, {Vec3i{0, -1, 0}, 6}, {Vec3i{0, -1, 0}, 7}, {Vec3i{0, 0, -1}, 1}, {Vec3i{0, 0, 1}, 1}},
	{{Vec3i{0, 0, 0}, 0}, {Vec3i{0, 0, 0}, 1}, {Vec3i{0, 0, 0}, 4}, {Vec3i{0, 0, 0}, 5}, {Vec3i{0, 0, -1}, 2}, {Vec3i{0, 0, 1}, 2}},
	{{Vec3i{1, 0, 1}, 0}, {Vec3i{0, 0, 0}, 1}, {Vec3i{1, 0, 0}, 4}, {Vec3i{0, 0, 1}, 5}, {Vec3i{0, 0, -1}, 3}, {Vec3i{0, 0, 1}, 3}},
	{{Vec3i{0, 0, 0}, 2}, {Vec3i{-1, 0, 0}, 3}, {Vec3i{0, 0, 0}, 6}, {Vec3i{-1, 0, 0}, 7}, {Vec3i{0, 0, -1}, 4}, {Vec3i{0, 0, 1}, 4}},
	{{Vec3i{0, 0, 0}, 2}, {Vec3i{0, 0, -1}, 3}, {Vec3i{0, 0, -1}, 6}, {Vec3i{0, 0, 0}, 7}, {Vec3i{0, 0, -1}, 5}, {Vec3i{0, 0, 1}, 5}},
	{{Vec3i{0, 1, 1}, 0}, {Vec3i{0, 1, 0}, 1}, {Vec3i{0, 0, 0}, 4}, {Vec3i{0, 0, 1}, 5}, {Vec3i{0, 0, -1}, 6}, {Vec3i{0, 0, 1}, 6}},
	{{Vec3i{1, 1, 0}, 0}, {Vec3i{0, 1, 0}, 1}, {Vec3i{1, 0, 0}, 4}, {Vec3i{0, 0, 0}, 5}, {Vec3i{0, 0, -1}, 7}, {Vec3i{0, 0, 1}, 7}},
}

var oppositePorts = buildOppositePorts()

func buildOppositePorts() [Subcubes][Ports]int {
	var out [Subcubes][Ports]int
	for mod := 0; mod < Subcubes; mod++ {
		for port := 0; port < Ports; port++ {
			pt := portTable[mod][port]
			back := pt.offset.Neg()
			found := -1
			for q := 0; q < Ports; q++ {
				if rt := portTable[pt.mod][q]; rt.offset == back && rt.mod == mod {
					found = q
					break
				}
			}
			if found < 0 {
				panic(fmt.Sprintf("port table: sub-cube %d port %d has no return link", mod, port))
			}
			out[mod][port] = found
		}
	}
	return out
}

// OppositePort is the port on the neighbour reached through (mod, port) that links back.
func OppositePort(mod, port int) int { return oppositePorts[mod][port] }

// PortTarget returns the relative cube offset and sub-cube index linked by (mod, port).
func PortTarget(mod, port int) (Vec3i, int) {
	pt := portTable[mod][port]
	return pt.offset, pt.mod
}
