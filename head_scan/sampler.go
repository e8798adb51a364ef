package headscan

import (
	"context"
	"fmt"
)

// SampleViews renders evenly spaced azimuths across the sweep bounds
// (endpoints inclusive), runs the detectors on each frame, and back-projects
// detected pixels onto the mesh surface. Views where no face is found
// contribute no candidates but still count as attempted. The returned
// accumulator is scoped to this call.
//
// The five non-ear labels resolve pixels through the dense detector's
// label-to-landmark index map. The two ear labels use the keypoint detector,
// and an ear is only accepted when the view azimuth lies on that ear's
// lateral half of the sweep relative to the midpoint, within EarMarginDeg.
// A nil ear detector skips ear candidates entirely.
func SampleViews(
	ctx context.Context,
	r Renderer,
	dense DenseDetector,
	ears EarDetector,
	bounds SweepBounds,
	cfg SamplingConfig,
) (*ObservationSet, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}
	if dense == nil {
		return nil, ErrNilDetector
	}
	if bounds.MaxZ < bounds.MinZ {
		return nil, ErrInvalidSweepBounds
	}

	numViews := cfg.NumViews
	if numViews <= 0 {
		numViews = 16
	}

	span := bounds.MaxZ - bounds.MinZ
	step := 0.0
	if numViews > 1 {
		step = span / float64(numViews-1)
	}
	mid := bounds.Mid()

	obs := NewObservationSet()

	for i := 0; i < numViews; i++ {
		azimuth := bounds.MinZ + float64(i)*step
		obs.views++

		r.Orient(azimuth)
		frame, err := r.Capture()
		if err != nil {
			return nil, fmt.Errorf("capturing view %d at %.1f deg: %w", i, azimuth, err)
		}

		detection, err := dense.DetectDense(ctx, frame)
		if err != nil {
			return nil, fmt.Errorf("dense detection at %.1f deg: %w", azimuth, err)
		}
		if detection == nil {
			// No face in this view; it contributes nothing.
			continue
		}

		for _, label := range DenseLabels {
			idx, ok := dense.LandmarkIndex(label)
			if !ok || idx < 0 || idx >= len(detection.Landmarks) {
				continue
			}
			px := detection.Landmarks[idx]
			if pt, hit := r.Pick(px.X, px.Y); hit {
				obs.Add(Candidate{Label: label, Point: pt, Azimuth: azimuth})
			}
		}

		// Ear tragions come from the keypoint detector, accepted only on the
		// correct lateral half of the sweep. Positive azimuth faces the
		// subject's left side.
		wantLeft := azimuth > mid-cfg.EarMarginDeg
		wantRight := azimuth < mid+cfg.EarMarginDeg
		if ears == nil || (!wantLeft && !wantRight) {
			continue
		}

		earDet, err := ears.DetectEars(ctx, frame)
		if err != nil {
			return nil, fmt.Errorf("ear detection at %.1f deg: %w", azimuth, err)
		}
		if earDet == nil {
			continue
		}

		if wantLeft && earDet.LeftTragion != nil {
			if pt, hit := r.Pick(earDet.LeftTragion.X, earDet.LeftTragion.Y); hit {
				obs.Add(Candidate{Label: LeftEar, Point: pt, Azimuth: azimuth})
			}
		}
		if wantRight && earDet.RightTragion != nil {
			if pt, hit := r.Pick(earDet.RightTragion.X, earDet.RightTragion.Y); hit {
				obs.Add(Candidate{Label: RightEar, Point: pt, Azimuth: azimuth})
			}
		}
	}

	return obs, nil
}
