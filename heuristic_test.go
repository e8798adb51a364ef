package autofiducial

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"go.viam.com/rdk/pointcloud"
)

// buildHeadCloud makes a synthetic spherical head of the given radius with
// exact points on the vertical and lateral axes, so the slab searches have
// unambiguous extremes.
func buildHeadCloud(t *testing.T, radius float64) pointcloud.PointCloud {
	t.Helper()
	cloud := pointcloud.NewBasicEmpty()
	set := func(p r3.Vector) {
		if err := cloud.Set(p, nil); err != nil {
			t.Fatalf("setting point %v: %v", p, err)
		}
	}

	for i := 0; i < 24; i++ {
		for j := 1; j < 12; j++ {
			phi := 2 * math.Pi * float64(i) / 24
			theta := math.Pi * float64(j) / 12
			set(r3.Vector{
				X: radius * math.Sin(theta) * math.Cos(phi),
				Y: radius * math.Sin(theta) * math.Sin(phi),
				Z: radius * math.Cos(theta),
			})
		}
	}
	set(r3.Vector{Z: radius})
	set(r3.Vector{Z: -radius})
	set(r3.Vector{X: radius * 1.1})
	set(r3.Vector{X: -radius * 1.1})
	return cloud
}

func TestHeuristicFiducials(t *testing.T) {
	const radius = 100.0
	cloud := buildHeadCloud(t, radius)

	set, err := HeuristicFiducials(cloud)
	if err != nil {
		t.Fatalf("heuristic: %v", err)
	}

	wantLabels := []string{
		"left_ear", "left_eye_outside", "left_eye_inside", "nasion",
		"right_eye_inside", "right_eye_outside", "right_ear",
	}
	if len(set.ControlPoints) != len(wantLabels) {
		t.Fatalf("expected %d control points, got %d", len(wantLabels), len(set.ControlPoints))
	}
	byLabel := make(map[string]r3.Vector)
	for i, cp := range set.ControlPoints {
		if cp.Label != wantLabels[i] {
			t.Errorf("position %d: expected %q, got %q", i, wantLabels[i], cp.Label)
		}
		byLabel[cp.Label] = cp.Position
	}

	if n := byLabel["nasion"]; math.Abs(n.Z-radius) > 1e-9 {
		t.Errorf("nasion should sit at the top of the axis, got %v", n)
	}
	if l, r := byLabel["left_ear"], byLabel["right_ear"]; l.X <= r.X {
		t.Errorf("ears swapped: left %v, right %v", l, r)
	}
	if math.Abs(byLabel["left_ear"].X-radius*1.1) > 1e-9 {
		t.Errorf("left ear missed the lateral extreme: %v", byLabel["left_ear"])
	}

	// Interpolated eye corners stay near the head surface.
	for _, label := range []string{"left_eye_outside", "left_eye_inside", "right_eye_inside", "right_eye_outside"} {
		r := byLabel[label].Norm()
		if r < radius*0.8 || r > radius*1.3 {
			t.Errorf("%s drifted off the head surface: radius %.1f", label, r)
		}
	}
}

func TestHeuristicFiducialsDegenerateInputs(t *testing.T) {
	if _, err := HeuristicFiducials(nil); !errors.Is(err, ErrHeuristicDegenerate) {
		t.Errorf("nil cloud: expected ErrHeuristicDegenerate, got %v", err)
	}
	if _, err := HeuristicFiducials(pointcloud.NewBasicEmpty()); !errors.Is(err, ErrHeuristicDegenerate) {
		t.Errorf("empty cloud: expected ErrHeuristicDegenerate, got %v", err)
	}

	// A flat sheet far from both axes has no slab members.
	sheet := pointcloud.NewBasicEmpty()
	for i := 0; i < 10; i++ {
		//nolint:errcheck
		sheet.Set(r3.Vector{X: float64(100 + i*17), Y: 300, Z: float64(i * 13)}, nil)
	}
	if _, err := HeuristicFiducials(sheet); !errors.Is(err, ErrHeuristicDegenerate) {
		t.Errorf("sheet cloud: expected ErrHeuristicDegenerate, got %v", err)
	}
}

func TestHeuristicFromMeshVertices(t *testing.T) {
	mesh := buildHeadStub(t)
	cloud := mesh.VertexCloud()
	if cloud.Size() == 0 {
		t.Fatal("vertex cloud is empty")
	}
	t.Logf("vertex cloud carries %d points from %d triangles", cloud.Size(), len(mesh.Triangles))
}
