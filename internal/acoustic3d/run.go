package acoustic3d

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"

	"github.com/lukaszgryglicki/acoustic3d/internal/boundary"
	"github.com/lukaszgryglicki/acoustic3d/internal/geom"
	"github.com/lukaszgryglicki/acoustic3d/internal/imagesource"
	"github.com/lukaszgryglicki/acoustic3d/internal/mesh"
	"github.com/lukaszgryglicki/acoustic3d/internal/raytracer"
	"github.com/lukaszgryglicki/acoustic3d/internal/waveguide"
)

var ErrCancelled = errors.New("simulation cancelled")

type MeshSummary struct {
	Dim      [3]int         `json:"dim"`
	Nodes    int            `json:"nodes"`
	CubeSide float64        `json:"cube_side"`
	Spacing  float64        `json:"spacing"`
	Origin   r3.Vector      `json:"origin"`
	Classes  map[string]int `json:"classes"`
	Kinds    map[string]int `json:"boundary_kinds"`
}

type TableSizes struct {
	B1 int `json:"b1"`
	B2 int `json:"b2"`
	B3 int `json:"b3"`
}

type Result struct {
	RunID       string                           `json:"run_id"`
	SampleRate  float64                          `json:"sample_rate"`
	Mesh        MeshSummary                      `json:"mesh"`
	Filters     []boundary.CanonicalCoefficients `json:"filters"`
	Tables      TableSizes                       `json:"boundary_tables"`
	Direct      *imagesource.Impulse             `json:"direct,omitempty"`
	ImageSource []imagesource.Impulse            `json:"image_source"`
	Paths       []imagesource.ValidPath          `json:"paths"`
	Waveguide   []float64                        `json:"waveguide,omitempty"`
}

func summarize(m *mesh.Mesh) MeshSummary {
	s := MeshSummary{
		Dim:      [3]int{m.Dim.X, m.Dim.Y, m.Dim.Z},
		Nodes:    len(m.Nodes),
		CubeSide: m.CubeSide,
		Spacing:  m.Spacing,
		Origin:   m.Origin,
		Classes:  map[string]int{},
		Kinds:    map[string]int{},
	}
	for c, n := range m.ClassCounts() {
		s.Classes[c.String()] = n
	}
	for k, n := range m.KindCounts() {
		s.Kinds[k.String()] = n
	}
	return s
}

// Simulate builds the mesh and boundary filters, traces rays, validates image
// sources and optionally runs the waveguide. The bool is false when keepGoing
// was cleared before the work finished.
func Simulate(cfg *Config, scene *geom.Scene, runID string, keepGoing *atomic.Bool) (*Result, bool, error) {
	log := newLogger(runID)
	res := &Result{RunID: runID, SampleRate: cfg.SampleRate}

	start := time.Now()
	m, err := mesh.Build(scene, cfg.Spacing, cfg.Source)
	if err != nil {
		return nil, false, fmt.Errorf("mesh: %w", err)
	}
	res.Mesh = summarize(m)
	log.Info("mesh built", "nodes", len(m.Nodes), "dim", res.Mesh.Dim, "elapsed", time.Since(start))

	res.Filters, err = boundary.DesignFilters(cfg.Surfaces, cfg.SampleRate)
	if err != nil {
		return nil, false, fmt.Errorf("filters: %w", err)
	}
	tables, err := boundary.AssignBoundaryData(m, boundary.SceneSurfaces{Scene: scene}, len(res.Filters))
	if err != nil {
		return nil, false, fmt.Errorf("boundary data: %w", err)
	}
	res.Tables = TableSizes{B1: len(tables.B1), B2: len(tables.B2), B3: len(tables.B3)}
	log.Debug("boundary data assigned", "b1", res.Tables.B1, "b2", res.Tables.B2, "b3", res.Tables.B3)

	if cfg.MeshRaw != "" {
		if err := m.SaveRaw(cfg.MeshRaw); err != nil {
			return nil, false, err
		}
		DebugLog("Saved raw mesh: %s", cfg.MeshRaw)
	}

	workers := Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	reflector, err := raytracer.NewSpecularReflector(scene, cfg.Source, cfg.Receiver, cfg.Rays, workers)
	if err != nil {
		return nil, false, err
	}
	start = time.Now()
	traced, ok, err := raytracer.Run(raytracer.Params{
		ReflectionDepth:  cfg.ReflectionDepth,
		ImageSourceDepth: cfg.ImageSourceDepth,
		SpeedOfSound:     cfg.SpeedOfSound,
		Workers:          workers,
	}, scene, cfg.Surfaces, cfg.Source, cfg.Receiver, reflector, keepGoing, progressPrinter("raytracer"))
	if err != nil || !ok {
		return nil, ok, err
	}
	res.Direct, res.ImageSource, res.Paths = traced.Direct, traced.ImageSource, traced.Paths
	log.Info("image sources found", "paths", len(res.Paths), "direct", res.Direct != nil, "elapsed", time.Since(start))
	if Debug {
		raytracer.PrintRaysStats()
	}

	if cfg.WaveguideSteps > 0 {
		backend, err := waveguide.NewCPUBackend(m, m.ClosestIndex(cfg.Source), m.ClosestIndex(cfg.Receiver), []float64{1})
		if err != nil {
			return nil, false, err
		}
		start = time.Now()
		out, ok, err := waveguide.Run[float64](backend, m, tables, res.Filters, cfg.WaveguideSteps, keepGoing, progressPrinter("waveguide"))
		if err != nil || !ok {
			return nil, ok, err
		}
		res.Waveguide = out
		log.Info("waveguide finished", "steps", len(out), "elapsed", time.Since(start))
	}
	return res, true, nil
}

func saveResult(path string, res *Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Run loads cfgPath, simulates and writes the JSON result. Clearing keepGoing
// stops the run with ErrCancelled; nil never cancels.
func Run(cfgPath string, keepGoing *atomic.Bool) error {
	cfg, scene, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	start := time.Now()
	res, ok, err := Simulate(cfg, scene, runID, keepGoing)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	if err := saveResult(cfg.Output, res); err != nil {
		return err
	}
	newLogger(runID).Info("saved result", "path", cfg.Output, "elapsed", time.Since(start))
	return nil
}
