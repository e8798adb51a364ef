package headscan

import (
	"context"
	"fmt"
	"math"
)

// ProbeSweep discovers the inclusive azimuth interval [minZ, maxZ] over which
// the dense detector reliably finds a frontal face, so sampling can avoid
// unreliable profile views. It sweeps forward from 0 degrees in fixed steps,
// stops at the first sustained detection-loss boundary, then sweeps backward
// from maxZ by the mirrored rule for minZ.
//
// A boundary is two consecutive absent steps following a present step; the
// bound is placed at the last present angle. If no boundary occurs within a
// full revolution in either direction, ErrSweepBoundaryNotFound is returned
// and callers must supply an explicit fallback interval.
func ProbeSweep(ctx context.Context, r Renderer, det DenseDetector, cfg SweepConfig) (SweepBounds, error) {
	if r == nil {
		return SweepBounds{}, ErrNilRenderer
	}
	if det == nil {
		return SweepBounds{}, ErrNilDetector
	}

	step := cfg.StepDeg
	if step <= 0 {
		step = 5.0
	}

	maxZ, err := findBoundary(ctx, r, det, 0, step)
	if err != nil {
		return SweepBounds{}, fmt.Errorf("forward sweep: %w", err)
	}

	minZ, err := findBoundary(ctx, r, det, maxZ, -step)
	if err != nil {
		return SweepBounds{}, fmt.Errorf("backward sweep: %w", err)
	}

	return SweepBounds{MinZ: minZ, MaxZ: maxZ}, nil
}

// findBoundary walks azimuths from start in increments of step (signed) until
// the pattern (present, absent, absent) is seen over the last three probes,
// and returns the angle of the trailing present probe.
func findBoundary(ctx context.Context, r Renderer, det DenseDetector, start, step float64) (float64, error) {
	var prev, prev2 bool
	for i := 0; ; i++ {
		az := start + float64(i)*step
		if math.Abs(az-start) > 360 {
			return 0, ErrSweepBoundaryNotFound
		}

		present, err := faceVisible(ctx, r, det, az)
		if err != nil {
			return 0, err
		}

		if i >= 2 && prev2 && !prev && !present {
			return az - 2*step, nil
		}
		prev2, prev = prev, present
	}
}

// faceVisible renders one azimuth and reports whether the dense detector
// finds a face in it.
func faceVisible(ctx context.Context, r Renderer, det DenseDetector, azimuth float64) (bool, error) {
	r.Orient(azimuth)
	frame, err := r.Capture()
	if err != nil {
		return false, fmt.Errorf("capturing frame at %.1f deg: %w", azimuth, err)
	}
	detection, err := det.DetectDense(ctx, frame)
	if err != nil {
		return false, fmt.Errorf("dense detection at %.1f deg: %w", azimuth, err)
	}
	return detection != nil, nil
}
