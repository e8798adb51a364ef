package autofiducial

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

// noseApex is the tip of the synthetic nose bump, the most anterior point of
// the test mesh.
var noseApex = r3.Vector{X: 0, Y: -2, Z: 0}

// buildHeadStub makes a flat disk in the XZ plane facing the anterior (-Y)
// direction, with a conical nose bump whose apex sits at noseApex. A smooth
// gradient texture keeps rendered views non-uniform.
func buildHeadStub(t *testing.T) *Mesh {
	t.Helper()

	const (
		diskRadius = 10.0
		bumpRadius = 1.5
		segments   = 24
	)

	ringPoint := func(radius float64, i int) r3.Vector {
		theta := 2 * math.Pi * float64(i) / segments
		return r3.Vector{X: radius * math.Cos(theta), Z: radius * math.Sin(theta)}
	}
	uv := func(p r3.Vector) [2]float64 {
		return [2]float64{(p.X/diskRadius + 1) / 2, (p.Z/diskRadius + 1) / 2}
	}

	var triangles []Triangle
	anterior := r3.Vector{Y: -1}
	center := r3.Vector{}
	for i := 0; i < segments; i++ {
		a := ringPoint(diskRadius, i)
		b := ringPoint(diskRadius, i+1)
		triangles = append(triangles, Triangle{
			P:  [3]r3.Vector{center, a, b},
			N:  [3]r3.Vector{anterior, anterior, anterior},
			UV: [3][2]float64{uv(center), uv(a), uv(b)},
		})
	}
	for i := 0; i < segments; i++ {
		a := ringPoint(bumpRadius, i)
		b := ringPoint(bumpRadius, i+1)
		triangles = append(triangles, Triangle{
			P:  [3]r3.Vector{noseApex, a, b},
			UV: [3][2]float64{{0.5, 0.5}, uv(a), uv(b)},
		})
	}

	tex := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			tex.SetNRGBA(x, y, color.NRGBA{R: uint8(120 + x), G: uint8(100 + y), B: 90, A: 255})
		}
	}

	mesh, err := NewMesh(triangles, tex)
	if err != nil {
		t.Fatalf("building head stub: %v", err)
	}
	return mesh
}

func TestRendererCaptureFrame(t *testing.T) {
	mesh := buildHeadStub(t)
	r, err := NewMeshRenderer(mesh, nil)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	frame, err := r.Capture()
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	res := DefaultRenderOptions().Resolution
	if frame.Width() != res || frame.Height() != res {
		t.Fatalf("expected %dx%d frame, got %dx%d", res, res, frame.Width(), frame.Height())
	}

	background := frame.GetXY(0, 0)
	centerPx := frame.GetXY(res/2, res/2)
	if centerPx == background {
		t.Error("mesh did not rasterize at the frame center")
	}

	again, err := r.Capture()
	if err != nil {
		t.Fatalf("second capture: %v", err)
	}
	for _, xy := range [][2]int{{0, 0}, {res / 2, res / 2}, {res / 4, 3 * res / 4}} {
		if frame.GetXY(xy[0], xy[1]) != again.GetXY(xy[0], xy[1]) {
			t.Fatalf("capture not deterministic at %v", xy)
		}
	}
}

func TestRendererOrientOrbitsVerticalAxis(t *testing.T) {
	mesh := buildHeadStub(t)
	r, err := NewMeshRenderer(mesh, nil)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	center := mesh.Center()

	front := r.CameraPose().Point()
	if front.Y >= center.Y {
		t.Errorf("azimuth 0 camera should sit anterior of the mesh: %v", front)
	}
	if math.Abs(front.Z-center.Z) > 1e-9 {
		t.Errorf("camera left the horizontal orbit plane: %v", front)
	}

	r.Orient(90)
	if r.Azimuth() != 90 {
		t.Errorf("azimuth not recorded: %v", r.Azimuth())
	}
	left := r.CameraPose().Point()
	if left.X <= center.X {
		t.Errorf("positive azimuth should move the camera toward +X: %v", left)
	}
	if math.Abs(front.Sub(center).Norm()-left.Sub(center).Norm()) > 1e-9 {
		t.Errorf("orbit distance changed between azimuths: %.6f vs %.6f",
			front.Sub(center).Norm(), left.Sub(center).Norm())
	}

	r.Orient(0)
	if again := r.CameraPose().Point(); again.Sub(front).Norm() > 1e-9 {
		t.Errorf("re-orienting to 0 did not restore the camera: %v vs %v", again, front)
	}
}

func TestRendererPickHitsNoseApex(t *testing.T) {
	mesh := buildHeadStub(t)
	r, err := NewMeshRenderer(mesh, nil)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	// The apex lies on the optical axis at azimuth 0 and is the nearest
	// surface along it.
	pt, hit := r.Pick(0.5, 0.5)
	if !hit {
		t.Fatal("center pick missed the mesh")
	}
	if pt.Sub(noseApex).Norm() > 1e-6 {
		t.Errorf("expected apex %v, got %v", noseApex, pt)
	}

	// From behind, the disk occludes the apex.
	r.Orient(180)
	pt, hit = r.Pick(0.5, 0.5)
	if !hit {
		t.Fatal("rear center pick missed the mesh")
	}
	if math.Abs(pt.Y) > 1e-6 {
		t.Errorf("rear pick should land on the disk plane, got %v", pt)
	}

	r.Orient(0)
	if _, hit := r.Pick(0.01, 0.01); hit {
		t.Error("corner pick unexpectedly hit the mesh")
	}
}

func TestRendererProjectPickRoundTrip(t *testing.T) {
	mesh := buildHeadStub(t)
	r, err := NewMeshRenderer(mesh, nil)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	surface := []r3.Vector{
		noseApex,
		{X: 10, Y: 0, Z: 0},
		{X: -10, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 10},
		{X: 5, Y: 0, Z: -5 * math.Sqrt(3)},
	}
	for _, azimuth := range []float64{0, 20, -35} {
		r.Orient(azimuth)
		for _, want := range surface {
			x, y, ok := r.Project(want)
			if !ok {
				t.Fatalf("az %.0f: %v projected behind the camera", azimuth, want)
			}
			got, hit := r.Pick(x, y)
			if !hit {
				t.Fatalf("az %.0f: pick at projection of %v missed", azimuth, want)
			}
			if err := got.Sub(want).Norm(); err > 1e-6 {
				t.Errorf("az %.0f: round trip of %v drifted %.2e", azimuth, want, err)
			}
		}
	}
}

func TestNewMeshRendererRejectsEmptyMesh(t *testing.T) {
	if _, err := NewMeshRenderer(nil, nil); err != ErrEmptyMesh {
		t.Errorf("expected ErrEmptyMesh for nil mesh, got %v", err)
	}
	if _, err := NewMeshRenderer(&Mesh{}, nil); err != ErrEmptyMesh {
		t.Errorf("expected ErrEmptyMesh for empty mesh, got %v", err)
	}
}
