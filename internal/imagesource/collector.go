package imagesource

import "fmt"

// Reflection is what a ray tracer reports for one ray in one step.
type Reflection struct {
	Triangle        uint32
	KeepGoing       bool // false once the ray has left the scene
	ReceiverVisible bool
}

// Collector accumulates per-ray reflection sequences up to a fixed depth.
type Collector struct {
	depth int
	paths [][]PathElement
	alive []bool
}

func NewCollector(rays, depth int) *Collector {
	c := &Collector{
		depth: depth,
		paths: make([][]PathElement, rays),
		alive: make([]bool, rays),
	}
	for i := range c.alive {
		c.alive[i] = true
	}
	return c
}

// Push records one step of reflections, one entry per ray.
func (c *Collector) Push(reflections []Reflection) error {
	if len(reflections) != len(c.paths) {
		return fmt.Errorf("got %d reflections for %d rays", len(reflections), len(c.paths))
	}
	for i, r := range reflections {
		if !c.alive[i] || len(c.paths[i]) >= c.depth {
			continue
		}
		if !r.KeepGoing {
			c.alive[i] = false
			continue
		}
		c.paths[i] = append(c.paths[i], PathElement{Index: r.Triangle, Visible: r.ReceiverVisible})
	}
	return nil
}

// Full reports whether no ray can still extend its sequence.
func (c *Collector) Full() bool {
	for i := range c.paths {
		if c.alive[i] && len(c.paths[i]) < c.depth {
			return false
		}
	}
	return true
}

func (c *Collector) Paths() [][]PathElement { return c.paths }

func (c *Collector) Tree() *Tree { return BuildTree(c.paths) }
