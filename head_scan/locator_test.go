package headscan

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/geo/r3"

	"go.viam.com/rdk/logging"
)

func TestLocatorConsistentNasion(t *testing.T) {
	apex := r3.Vector{X: 0, Y: -2, Z: 0}
	r := &stubRenderer{pickFn: func(az, x, y float64) (r3.Vector, bool) {
		return apex, true
	}}
	det := &stubDense{
		renderer:  r,
		indices:   map[FiducialLabel]int{Nasion: 0},
		landmarks: 1,
		presentFn: func(az float64) bool { return az >= -60 && az <= 60 },
	}

	loc, err := NewLocator(r, det, nil, nil, logging.NewTestLogger(t))
	if err != nil {
		t.Fatalf("new locator: %v", err)
	}
	res, err := loc.Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}

	if res.Sweep.MinZ != -60 || res.Sweep.MaxZ != 60 {
		t.Errorf("expected sweep [-60, 60], got [%.1f, %.1f]", res.Sweep.MinZ, res.Sweep.MaxZ)
	}
	fid, ok := res.Fiducials[Nasion]
	if !ok {
		t.Fatal("nasion not located")
	}
	if fid.Point.Sub(apex).Norm() > 1e-9 {
		t.Errorf("nasion at %v, expected apex %v", fid.Point, apex)
	}
	if fid.Observations != DefaultConfig().Sampling.NumViews {
		t.Errorf("expected observations in every view, got %d", fid.Observations)
	}
	if len(res.Notices) != len(Labels)-1 {
		t.Errorf("expected %d NoObservations notices, got %d", len(Labels)-1, len(res.Notices))
	}
}

func TestLocatorNoFaceAnywhere(t *testing.T) {
	r := &stubRenderer{}
	det := &stubDense{
		renderer:  r,
		indices:   denseIndices(),
		presentFn: func(float64) bool { return false },
	}

	loc, err := NewLocator(r, det, nil, nil, logging.NewTestLogger(t))
	if err != nil {
		t.Fatalf("new locator: %v", err)
	}
	cfg := DefaultConfig()

	res, err := loc.Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}

	if len(res.Fiducials) != 0 {
		t.Errorf("expected no fiducials, got %d", len(res.Fiducials))
	}
	if res.Sweep.MinZ != cfg.Sweep.FallbackMinDeg || res.Sweep.MaxZ != cfg.Sweep.FallbackMaxDeg {
		t.Errorf("expected fallback sweep, got [%.1f, %.1f]", res.Sweep.MinZ, res.Sweep.MaxZ)
	}
	if len(res.Notices) != len(Labels) {
		t.Fatalf("expected a notice per label, got %d", len(res.Notices))
	}
	for _, n := range res.Notices {
		if n.Kind != NoObservations {
			t.Errorf("label %s: expected NoObservations, got %s", n.Label, n.Kind)
		}
	}
	if len(res.Ordered()) != 0 {
		t.Errorf("ordered output not empty: %v", res.Ordered())
	}
}

func TestLocatorNilArguments(t *testing.T) {
	r := &stubRenderer{}
	det := &stubDense{renderer: r, indices: denseIndices()}

	if _, err := NewLocator(nil, det, nil, nil, nil); !errors.Is(err, ErrNilRenderer) {
		t.Errorf("expected ErrNilRenderer, got %v", err)
	}
	if _, err := NewLocator(r, nil, nil, nil, nil); !errors.Is(err, ErrNilDetector) {
		t.Errorf("expected ErrNilDetector, got %v", err)
	}
}

func TestResultOrdered(t *testing.T) {
	res := &Result{Fiducials: map[FiducialLabel]Fiducial{
		RightEar: {Label: RightEar},
		Nasion:   {Label: Nasion},
		LeftEar:  {Label: LeftEar},
	}}
	ordered := res.Ordered()
	if len(ordered) != 3 {
		t.Fatalf("expected 3 fiducials, got %d", len(ordered))
	}
	want := []FiducialLabel{LeftEar, Nasion, RightEar}
	for i, f := range ordered {
		if f.Label != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], f.Label)
		}
	}
}
