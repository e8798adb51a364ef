package pigoface

import (
	"errors"
	"path/filepath"
	"testing"

	headscan "github.com/pinhaocheng/AutoFiducialContest/head_scan"
)

func TestNewMissingCascades(t *testing.T) {
	if _, err := New(t.TempDir(), nil); !errors.Is(err, ErrCascadeNotFound) {
		t.Fatalf("expected ErrCascadeNotFound for empty dir, got %v", err)
	}
	if _, err := New(filepath.Join(t.TempDir(), "absent"), nil); !errors.Is(err, ErrCascadeNotFound) {
		t.Fatalf("expected ErrCascadeNotFound for missing dir, got %v", err)
	}
}

func TestLandmarkIndexCoverage(t *testing.T) {
	d := &Detector{}
	for _, label := range headscan.DenseLabels {
		idx, ok := d.LandmarkIndex(label)
		if !ok {
			t.Errorf("%s: no landmark index", label)
			continue
		}
		if idx < 0 || idx >= numLandmarks {
			t.Errorf("%s: index %d out of range", label, idx)
		}
	}
	for _, label := range []headscan.FiducialLabel{headscan.LeftEar, headscan.RightEar} {
		if _, ok := d.LandmarkIndex(label); ok {
			t.Errorf("%s: ear labels must not be mapped", label)
		}
	}
}

func TestLandmarkIndicesDistinct(t *testing.T) {
	seen := make(map[int]headscan.FiducialLabel)
	for label, idx := range labelIndex {
		if other, dup := seen[idx]; dup {
			t.Errorf("index %d shared by %s and %s", idx, label, other)
		}
		seen[idx] = label
	}
	if len(seen) != numLandmarks {
		t.Errorf("expected %d distinct indices, got %d", numLandmarks, len(seen))
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.QualityThreshold <= 0 {
		t.Error("quality threshold must be positive")
	}
	if cfg.Perturbs <= 0 {
		t.Error("perturbs must be positive")
	}
	if cfg.ScaleFactor <= 1.0 {
		t.Error("scale factor must grow the detection window")
	}
}
