package boundary

import (
	"github.com/golang/geo/r3"

	"github.com/lukaszgryglicki/acoustic3d/internal/geom"
	"github.com/lukaszgryglicki/acoustic3d/internal/mesh"
)

// SceneSurfaces resolves boundary directions against the room triangles.
type SceneSurfaces struct {
	Scene *geom.Scene
	// Reach limits how far along a direction a wall may be; 0 means unlimited.
	Reach float64
}

func (s SceneSurfaces) SurfaceFacing(p r3.Vector, d mesh.Direction) uint32 {
	h, ok := s.Scene.Intersects(geom.Ray{Position: p, Direction: d.Vector()}, -1)
	if ok && (s.Reach <= 0 || h.T <= s.Reach) {
		return s.Scene.SurfaceOf(h.Index)
	}
	return s.SurfaceNearest(p)
}

func (s SceneSurfaces) SurfaceNearest(p r3.Vector) uint32 {
	if i := s.Scene.ClosestTriangle(p); i >= 0 {
		return s.Scene.SurfaceOf(i)
	}
	return 0
}
