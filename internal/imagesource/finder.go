package imagesource

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/golang/geo/r3"

	"github.com/lukaszgryglicki/acoustic3d/internal/geom"
)

var ErrTriangleIndex = errors.New("reflection references a triangle outside the scene")

// Scene is the geometry paths are validated against.
type Scene interface {
	Intersects(r geom.Ray, exclude int) (geom.Hit, bool)
	Triangle(i int) geom.TriangleVec3
	TriangleCount() int
}

// Intersection is one validated bounce.
type Intersection struct {
	Index uint32  `json:"index"`
	Angle float64 `json:"angle"` // incidence angle in [0, π/2]
}

// ValidPath is an accepted image source with its bounces ordered source→receiver.
type ValidPath struct {
	ImageSource   r3.Vector      `json:"image_source"`
	Intersections []Intersection `json:"intersections"`
}

// Callback receives each accepted path.
type Callback func(imageSource r3.Vector, intersections []Intersection)

type state struct {
	index       uint32
	imageSource r3.Vector
}

type branchResult struct {
	paths []ValidPath
	err   error
}

const (
	poolQueue = 256
	poolIdle  = time.Second
)

// Finder searches the branches of a reflection tree, optionally on a set of
// workers. Close releases the workers.
type Finder struct {
	tasks chan worker.Task
	stop  chan int
	once  sync.Once
}

// NewFinder returns a finder using up to workers goroutines; workers <= 1 searches sequentially.
func NewFinder(workers int) *Finder {
	f := &Finder{}
	if workers > 1 {
		f.tasks = make(chan worker.Task, poolQueue)
		f.stop = make(chan int)
		for id := range workers {
			worker.NewWorker(id, f.tasks, f.stop, poolIdle, nil).Start()
		}
	}
	return f
}

// Close stops the worker goroutines; closed channels end every worker loop.
// Later searches on f run sequentially.
func (f *Finder) Close() {
	f.once.Do(func() {
		if f.tasks != nil {
			close(f.tasks)
			close(f.stop)
			f.tasks = nil
		}
	})
}

// FindValidPaths runs the sequential search.
func FindValidPaths(source, receiver r3.Vector, scene Scene, tree *Tree, cb Callback) error {
	return NewFinder(1).FindValidPaths(source, receiver, scene, tree, cb)
}

// FindValidPaths validates every visible node of tree. Top-level branches are
// independent and may run in parallel; cb is always called on the calling
// goroutine in tree order.
func (f *Finder) FindValidPaths(source, receiver r3.Vector, scene Scene, tree *Tree, cb Callback) error {
	start := time.Now()
	defer func() { searchSeconds.Observe(time.Since(start).Seconds()) }()

	results := make([]branchResult, len(tree.Branches))
	if f.tasks == nil || len(tree.Branches) < 2 {
		for i, b := range tree.Branches {
			results[i] = searchBranch(b, source, receiver, scene)
			if results[i].err != nil {
				break
			}
		}
	} else {
		var wg sync.WaitGroup
		for i, b := range tree.Branches {
			wg.Add(1)
			f.tasks <- worker.Task{
				ID: i,
				Do: func() (any, error) {
					defer wg.Done()
					results[i] = searchBranch(b, source, receiver, scene)
					return nil, nil
				},
			}
		}
		wg.Wait()
	}

	for _, r := range results {
		if r.err != nil {
			return r.err
		}
		for _, p := range r.paths {
			cb(p.ImageSource, p.Intersections)
		}
	}
	return nil
}

// searchBranch is a depth-first walk with an explicit stack. states[d] holds
// the image source built at depth d; it is truncated back to the frame depth
// before every visit, which restores it for sibling subtrees.
func searchBranch(root *TreeNode, source, receiver r3.Vector, scene Scene) branchResult {
	type frame struct {
		node  *TreeNode
		depth int
	}
	var res branchResult
	stack := []frame{{node: root}}
	states := make([]state, 0, 8)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := f.node.Item.Index
		if int(idx) >= scene.TriangleCount() {
			res.err = fmt.Errorf("%w: %d of %d", ErrTriangleIndex, idx, scene.TriangleCount())
			return res
		}
		states = states[:f.depth]
		prev := source
		if f.depth > 0 {
			prev = states[f.depth-1].imageSource
		}
		states = append(states, state{index: idx, imageSource: geom.Mirror(prev, scene.Triangle(int(idx)))})

		if f.node.Item.Visible {
			p, ok, err := validate(states, source, receiver, scene)
			if err != nil {
				res.err = err
				return res
			}
			if ok {
				res.paths = append(res.paths, p)
			}
		}

		// reverse push: children are visited in ascending order
		for i := len(f.node.Branches) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Branches[i], depth: f.depth + 1})
		}
	}
	return res
}

// validate walks the image sources from the receiver back to the source,
// checking every bounce lands on its expected triangle, then checks the
// source sees the first bounce.
func validate(states []state, source, receiver r3.Vector, scene Scene) (ValidPath, bool, error) {
	final := states[len(states)-1].imageSource
	if final == receiver {
		pathsChecked.WithLabelValues("coincident").Inc()
		return ValidPath{}, false, nil
	}

	out := make([]Intersection, len(states))
	prevPoint, prevSurface := receiver, -1
	for i := len(states) - 1; i >= 0; i-- {
		ray, err := geom.NewRay(prevPoint, states[i].imageSource)
		if err != nil {
			return ValidPath{}, false, err
		}
		hit, ok := scene.Intersects(ray, prevSurface)
		if !ok || hit.Index != int(states[i].index) {
			pathsChecked.WithLabelValues("occluded").Inc()
			return ValidPath{}, false, nil
		}
		cos := math.Max(-1, math.Min(1, ray.Direction.Dot(scene.Triangle(hit.Index).Normal())))
		angle := math.Acos(cos)
		out[i] = Intersection{Index: states[i].index, Angle: math.Min(angle, math.Pi-angle)}
		prevPoint, prevSurface = ray.At(hit.T), hit.Index
	}

	ray, err := geom.NewRay(source, prevPoint)
	if err != nil {
		return ValidPath{}, false, err
	}
	if hit, ok := scene.Intersects(ray, -1); !ok || hit.Index != prevSurface {
		pathsChecked.WithLabelValues("no_line_of_sight").Inc()
		return ValidPath{}, false, nil
	}

	pathsChecked.WithLabelValues("accepted").Inc()
	return ValidPath{ImageSource: final, Intersections: out}, true, nil
}
