package acoustic3d

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/golang/geo/r3"

	"github.com/lukaszgryglicki/acoustic3d/internal/geom"
	"github.com/lukaszgryglicki/acoustic3d/internal/surface"
)

var ErrNoGeometry = errors.New("config needs either a box or triangles, not both")

type BoxCfg struct {
	Min          r3.Vector             `json:"min"`
	Max          r3.Vector             `json:"max"`
	FaceSurfaces [geom.BoxFaces]uint32 `json:"faceSurfaces"` // -x,+x,-y,+y,-z,+z
}

type TriangleCfg struct {
	Surface  uint32    `json:"surface"`
	Vertices [3]uint32 `json:"vertices"`
}

type Config struct {
	Box              *BoxCfg           `json:"box,omitempty"`
	Vertices         []r3.Vector       `json:"vertices,omitempty"`
	Triangles        []TriangleCfg     `json:"triangles,omitempty"`
	Surfaces         []surface.Surface `json:"surfaces"`
	Source           r3.Vector         `json:"source"`
	Receiver         r3.Vector         `json:"receiver"`
	Spacing          float64           `json:"spacing,omitempty"`
	SpeedOfSound     float64           `json:"speedOfSound,omitempty"`
	SampleRate       float64           `json:"sampleRate,omitempty"` // defaults to the mesh rate c·√3/spacing
	Rays             int               `json:"rays,omitempty"`
	ReflectionDepth  int               `json:"reflectionDepth,omitempty"`
	ImageSourceDepth int               `json:"imageSourceDepth,omitempty"`
	WaveguideSteps   int               `json:"waveguideSteps,omitempty"`
	Output           string            `json:"output,omitempty"`
	MeshRaw          string            `json:"meshRaw,omitempty"`
}

// Scene builds the room triangles from the box or the explicit mesh.
func (c *Config) Scene() (*geom.Scene, error) {
	hasBox, hasTris := c.Box != nil, len(c.Triangles) > 0
	if hasBox == hasTris {
		return nil, ErrNoGeometry
	}
	if hasBox {
		b := geom.Cuboid{Min: c.Box.Min, Max: c.Box.Max}
		if !(b.Min.X < b.Max.X && b.Min.Y < b.Max.Y && b.Min.Z < b.Max.Z) {
			return nil, fmt.Errorf("box min %v must be below max %v on every axis", b.Min, b.Max)
		}
		tris, verts := b.Triangles(c.Box.FaceSurfaces)
		return geom.NewScene(tris, verts)
	}
	tris := make([]geom.Triangle, len(c.Triangles))
	for i, t := range c.Triangles {
		tris[i] = geom.Triangle{Surface: t.Surface, V0: t.Vertices[0], V1: t.Vertices[1], V2: t.Vertices[2]}
	}
	return geom.NewScene(tris, c.Vertices)
}

// MeshSampleRate is the update rate of a tetrahedral mesh with the given spacing.
func MeshSampleRate(speedOfSound, spacing float64) float64 {
	return speedOfSound * math.Sqrt(3) / spacing
}

func (c *Config) validate(scene *geom.Scene) error {
	if len(c.Surfaces) == 0 {
		return fmt.Errorf("config has no surfaces")
	}
	for i, s := range c.Surfaces {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("surface %d: %w", i, err)
		}
	}
	for i := range scene.Triangles {
		if s := scene.SurfaceOf(i); int(s) >= len(c.Surfaces) {
			return fmt.Errorf("triangle %d uses surface %d, only %d defined", i, s, len(c.Surfaces))
		}
	}
	if !scene.Inside(c.Source) {
		return fmt.Errorf("source %v is outside the room", c.Source)
	}
	if !scene.Inside(c.Receiver) {
		return fmt.Errorf("receiver %v is outside the room", c.Receiver)
	}
	if c.ReflectionDepth < c.ImageSourceDepth {
		return fmt.Errorf("reflectionDepth %d is below imageSourceDepth %d", c.ReflectionDepth, c.ImageSourceDepth)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Spacing <= 0 {
		c.Spacing = Spacing
	}
	if c.SpeedOfSound <= 0 {
		c.SpeedOfSound = SpeedOfSound
	}
	if c.SampleRate <= 0 {
		c.SampleRate = MeshSampleRate(c.SpeedOfSound, c.Spacing)
	}
	if c.Rays <= 0 {
		c.Rays = Rays
	}
	if c.ImageSourceDepth <= 0 {
		c.ImageSourceDepth = ImageSourceDepth
	}
	if c.ReflectionDepth <= 0 {
		c.ReflectionDepth = max(ReflectionDepth, c.ImageSourceDepth)
	}
	if c.Output == "" {
		c.Output = Output
	}
}

func loadConfig(path string) (*Config, *geom.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.applyDefaults()
	scene, err := cfg.Scene()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.validate(scene); err != nil {
		return nil, nil, err
	}
	DebugLog("Loaded config from %s: triangles=%d, spacing=%f, sampleRate=%f, rays=%d, depths=%d/%d",
		path, scene.TriangleCount(), cfg.Spacing, cfg.SampleRate, cfg.Rays, cfg.ReflectionDepth, cfg.ImageSourceDepth)
	return &cfg, scene, nil
}
