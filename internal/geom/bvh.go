package geom

import (
	"math"
	"sort"
)

type bvhLeaf struct {
	box   AABB
	index int // triangle index in the owning scene
}

type bvhNode struct {
	box      AABB
	left     *bvhNode
	right    *bvhNode
	leafObjs []bvhLeaf // non-nil ⇒ leaf
}

func buildBVH(objs []bvhLeaf) *bvhNode {
	return buildBVHRec(objs, 0)
}

func buildBVHRec(objs []bvhLeaf, depth int) *bvhNode {
	n := len(objs)
	if n == 0 {
		return nil
	}
	box := objs[0].box
	for i := 1; i < n; i++ {
		box = box.Union(objs[i].box)
	}
	if n <= BVHMaxLeafSize {
		return &bvhNode{box: box, leafObjs: objs}
	}

	// Centroid spread decides the split axis.
	cmin := objs[0].box.Centroid()
	cmax := cmin
	for i := 1; i < n; i++ {
		c := objs[i].box.Centroid()
		cmin = vmin(cmin, c)
		cmax = vmax(cmax, c)
	}
	axis := longestAxis(cmax.Sub(cmin).X, cmax.Sub(cmin).Y, cmax.Sub(cmin).Z)

	// If all centroids coincide (degenerate), fall back to longest box extent axis.
	if Component(cmax.Sub(cmin), axis) <= degenerateCentroid {
		ext := box.Dimensions()
		axis = longestAxis(ext.X, ext.Y, ext.Z)
	}

	// Sort by chosen centroid axis, split at median
	sort.Slice(objs, func(i, j int) bool {
		ci := Component(objs[i].box.Centroid(), axis)
		cj := Component(objs[j].box.Centroid(), axis)
		if ci == cj {
			return objs[i].index < objs[j].index
		}
		return ci < cj
	})
	mid := n / 2
	left := buildBVHRec(objs[:mid], depth+1)
	right := buildBVHRec(objs[mid:], depth+1)

	return &bvhNode{box: box, left: left, right: right}
}

func longestAxis(x, y, z float64) int {
	axis := 0
	best := x
	if y > best {
		axis, best = 1, y
	}
	if z > best {
		axis = 2
	}
	return axis
}

// Nearest-hit traversal (iterative, stack-based). Prunes by current best t.
func traverseNearest(root *bvhNode, r Ray, tMax float64, exclude int, intersect func(int) (float64, bool)) (Hit, bool) {
	if root == nil {
		return Hit{}, false
	}
	bestT := tMax
	best := Hit{Index: -1}
	rr := computeRayRecips(r.Direction)

	type entry struct {
		n    *bvhNode
		tmin float64
	}
	stack := []entry{{n: root, tmin: 0}}
	for len(stack) > 0 {
		// pop
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ok, tmin := rayAABB(r.Position, e.n.box, rr)
		if !ok || tmin > bestT {
			continue
		}

		if e.n.leafObjs != nil {
			for _, l := range e.n.leafObjs {
				if l.index == exclude {
					continue
				}
				if t, ok := intersect(l.index); ok && (t < bestT || (t == bestT && l.index < best.Index)) {
					bestT = t
					best = Hit{T: t, Index: l.index}
				}
			}
			continue
		}

		// order children near→far (push far first so near is processed next)
		var lOK, rOK bool
		var lT, rT float64
		if e.n.left != nil {
			lOK, lT = rayAABB(r.Position, e.n.left.box, rr)
			lOK = lOK && lT <= bestT
		}
		if e.n.right != nil {
			rOK, rT = rayAABB(r.Position, e.n.right.box, rr)
			rOK = rOK && rT <= bestT
		}
		if lOK && rOK {
			if lT < rT {
				stack = append(stack, entry{e.n.right, rT}, entry{e.n.left, lT})
			} else {
				stack = append(stack, entry{e.n.left, lT}, entry{e.n.right, rT})
			}
		} else if lOK {
			stack = append(stack, entry{e.n.left, lT})
		} else if rOK {
			stack = append(stack, entry{e.n.right, rT})
		}
	}

	if best.Index >= 0 && bestT < math.Inf(1) {
		return best, true
	}
	return Hit{}, false
}

// traverseAll visits every triangle whose box the ray enters.
func traverseAll(root *bvhNode, r Ray, visit func(int)) {
	if root == nil {
		return
	}
	rr := computeRayRecips(r.Direction)
	stack := []*bvhNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if ok, _ := rayAABB(r.Position, n.box, rr); !ok {
			continue
		}
		if n.leafObjs != nil {
			for _, l := range n.leafObjs {
				visit(l.index)
			}
			continue
		}
		if n.right != nil {
			stack = append(stack, n.right)
		}
		if n.left != nil {
			stack = append(stack, n.left)
		}
	}
}
