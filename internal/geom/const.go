package geom

const (
	BVHMaxLeafSize     = 2
	BVHFromNTriangles  = 8 // below this many triangles a linear scan is used instead of the BVH
	minHitT            = 1e-9
	detEps             = 1e-12
	degenerateCentroid = 1e-18
)
