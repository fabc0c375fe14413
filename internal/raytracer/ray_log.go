package raytracer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/golang/geo/r3"
)

type Category uint8

const (
	Hit     Category = iota // ray hit a triangle
	Miss                    // ray left the scene
	Visible                 // receiver seen from the hit point
)

func (c Category) String() string {
	switch c {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case Visible:
		return "visible"
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

type RayLog struct {
	Name      string
	Category  Category
	Origin    r3.Vector
	Direction r3.Vector
	Point     r3.Vector // hit point, if any
	Step      int
}

type RayLogCache struct {
	mu   sync.Mutex
	rays map[string][]RayLog // map of ray name to logs
}

var cache = &RayLogCache{
	rays: make(map[string][]RayLog),
}

func logRay(name string, category Category, origin, direction, point r3.Vector, step int) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.rays[name] = append(cache.rays[name], RayLog{
		Name:      name,
		Category:  category,
		Origin:    origin,
		Direction: direction,
		Point:     point,
		Step:      step,
	})
}

// RaysStats returns the number of logged rays per name.
func RaysStats() map[string]int {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	out := make(map[string]int, len(cache.rays))
	for k, v := range cache.rays {
		out[k] = len(v)
	}
	return out
}

// PrintRaysStats writes one line per ray name, sorted.
func PrintRaysStats() {
	stats := RaysStats()
	names := make([]string, 0, len(stats))
	for k := range stats {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("Ray type %s: %d logs\n", k, stats[k])
	}
}
