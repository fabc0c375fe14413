package waveguide

import (
	"errors"
	"math"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/lukaszgryglicki/acoustic3d/internal/boundary"
	"github.com/lukaszgryglicki/acoustic3d/internal/geom"
	"github.com/lukaszgryglicki/acoustic3d/internal/mesh"
	"github.com/lukaszgryglicki/acoustic3d/internal/surface"
)

// fakeBackend returns its step number and records the upload.
type fakeBackend struct {
	uploaded int
	steps    int
	failAt   int
}

func (f *fakeBackend) Upload(nodes []mesh.CondensedNode, _ boundary.Tables, _ []boundary.CanonicalCoefficients) error {
	f.uploaded = len(nodes)
	return nil
}

func (f *fakeBackend) RunStep() (int, error) {
	f.steps++
	if f.failAt > 0 && f.steps == f.failAt {
		return 0, errors.New("queue lost")
	}
	return f.steps, nil
}

func boxMesh(t *testing.T) (*mesh.Mesh, boundary.Tables, []boundary.CanonicalCoefficients) {
	t.Helper()
	box := geom.Cuboid{Min: r3.Vector{X: -0.5, Y: -0.5, Z: -0.5}, Max: r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}}
	tris, verts := box.Triangles([geom.BoxFaces]uint32{})
	sc, err := geom.NewScene(tris, verts)
	if err != nil {
		t.Fatal(err)
	}
	m, err := mesh.Build(box, 0.1, r3.Vector{})
	if err != nil {
		t.Fatal(err)
	}
	coeffs, err := boundary.DesignFilters([]surface.Surface{surface.Uniform(0.9, 0.1)}, 340/(0.1*math.Sqrt(3)))
	if err != nil {
		t.Fatal(err)
	}
	tables, err := boundary.AssignBoundaryData(m, boundary.SceneSurfaces{Scene: sc}, len(coeffs))
	if err != nil {
		t.Fatal(err)
	}
	return m, tables, coeffs
}

func TestRun_CollectsEveryStep(t *testing.T) {
	m, tables, coeffs := boxMesh(t)
	f := &fakeBackend{}
	var calls int
	out, ok, err := Run[int](f, m, tables, coeffs, 5, nil, func(step, total int) {
		calls++
		if step != calls || total != 5 {
			t.Fatalf("progress (%d, %d) at call %d", step, total, calls)
		}
	})
	if err != nil || !ok {
		t.Fatalf("run failed: %v %v", ok, err)
	}
	if !reflect.DeepEqual(out, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("readback %v", out)
	}
	if f.uploaded != len(m.Nodes) {
		t.Fatalf("uploaded %d nodes, mesh has %d", f.uploaded, len(m.Nodes))
	}
}

func TestRun_Cancellation(t *testing.T) {
	m, tables, coeffs := boxMesh(t)
	var keep atomic.Bool
	keep.Store(true)
	f := &fakeBackend{}
	out, ok, err := Run[int](f, m, tables, coeffs, 10, &keep, func(step, _ int) {
		if step == 3 {
			keep.Store(false)
		}
	})
	if out != nil || ok || err != nil {
		t.Fatalf("cancelled run returned %v %v %v", out, ok, err)
	}
	if f.steps != 3 {
		t.Fatalf("ran %d steps after cancelling at 3", f.steps)
	}

	out, ok, err = Run[int](&fakeBackend{}, m, tables, coeffs, 0, &keep, nil)
	if err != nil || !ok || len(out) != 0 {
		t.Fatalf("zero-step run returned %v %v %v", out, ok, err)
	}
}

func TestRun_StepError(t *testing.T) {
	m, tables, coeffs := boxMesh(t)
	_, ok, err := Run[int](&fakeBackend{failAt: 2}, m, tables, coeffs, 4, nil, nil)
	if err == nil || ok {
		t.Fatalf("expected the step error, got %v %v", ok, err)
	}
	if _, _, err := Run[int](&fakeBackend{}, m, tables, coeffs, -1, nil, nil); err == nil {
		t.Fatalf("expected an error for a negative step count")
	}
}

func TestCPUBackend_ImpulseStaysBounded(t *testing.T) {
	m, tables, coeffs := boxMesh(t)
	centre := m.ClosestIndex(r3.Vector{})
	if m.Nodes[centre].Class != mesh.Inside {
		t.Fatalf("centre node classified %v", m.Nodes[centre].Class)
	}
	b, err := NewCPUBackend(m, centre, centre, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.RunStep(); !errors.Is(err, ErrNotUploaded) {
		t.Fatalf("expected ErrNotUploaded, got %v", err)
	}
	out, ok, err := Run[float64](b, m, tables, coeffs, 200, nil, nil)
	if err != nil || !ok {
		t.Fatalf("run failed: %v %v", ok, err)
	}
	if out[0] != 1 {
		t.Fatalf("first sample %v, want the injected impulse", out[0])
	}
	for i, v := range out {
		if math.IsNaN(v) || math.Abs(v) > 10 {
			t.Fatalf("sample %d diverged: %v", i, v)
		}
	}

	again, _, _ := Run[float64](b, m, tables, coeffs, 200, nil, nil)
	if !reflect.DeepEqual(out, again) {
		t.Fatalf("re-upload did not reset the field")
	}
}

func TestCPUBackend_UploadValidation(t *testing.T) {
	m, tables, coeffs := boxMesh(t)
	b, err := NewCPUBackend(m, 0, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Upload(m.Condense()[:1], tables, coeffs); err == nil {
		t.Fatalf("expected node count mismatch")
	}
	if err := b.Upload(m.Condense(), boundary.Tables{}, coeffs); err == nil {
		t.Fatalf("expected missing table rows")
	}
	if err := b.Upload(m.Condense(), tables, nil); err == nil {
		t.Fatalf("expected missing coefficients")
	}
	if _, err := NewCPUBackend(m, -1, 0, nil); err == nil {
		t.Fatalf("expected an out-of-range source")
	}
}
