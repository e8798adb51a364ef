// Package pigoface adapts the pure-Go pigo face detector into the dense
// landmark detector contract used by the fiducial pipeline.
//
// Pigo's landmark cascades cover the eye region only, so the adapter exposes
// four eye corners plus a synthesized nasion (the midpoint of the inner
// corners). Ear tragions are not supported; pair this detector with an
// external keypoint detector when ear fiducials are needed.
package pigoface

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	pigo "github.com/esimov/pigo/core"

	headscan "github.com/pinhaocheng/AutoFiducialContest/head_scan"
)

// Landmark indices of the adapter's stable numeric scheme.
const (
	idxRightEyeOutside = iota
	idxRightEyeInside
	idxLeftEyeInside
	idxLeftEyeOutside
	idxNasion
	numLandmarks
)

// labelIndex is the static label-to-landmark map for this detector.
var labelIndex = map[headscan.FiducialLabel]int{
	headscan.RightEyeOutside: idxRightEyeOutside,
	headscan.RightEyeInside:  idxRightEyeInside,
	headscan.LeftEyeInside:   idxLeftEyeInside,
	headscan.LeftEyeOutside:  idxLeftEyeOutside,
	headscan.Nasion:          idxNasion,
}

// Eye-corner cascade names; the flipped run of each yields the point mirrored
// to the other side of the face.
const (
	cascadeOuterCorner = "lp38"
	cascadeInnerCorner = "lp42"
)

// ErrCascadeNotFound is returned when a required cascade file is missing
// from the cascade directory.
var ErrCascadeNotFound = errors.New("cascade file not found")

// Config holds pigo tuning parameters.
type Config struct {
	QualityThreshold float32 // Min cascade score for a face to count as present
	Perturbs         int     // Perturbations for pupil/landmark localization
	ShiftFactor      float64 // Detection window shift (fraction of size)
	ScaleFactor      float64 // Detection window growth per scale step
	IoUThreshold     float64 // Cluster threshold for overlapping detections
}

// DefaultConfig returns tuning values that work well on rendered head views.
func DefaultConfig() Config {
	return Config{
		QualityThreshold: 5.0,
		Perturbs:         63,
		ShiftFactor:      0.1,
		ScaleFactor:      1.1,
		IoUThreshold:     0.2,
	}
}

// Detector implements headscan.DenseDetector on top of pigo cascades.
type Detector struct {
	cfg        Config
	classifier *pigo.Pigo
	puploc     *pigo.PuplocCascade
	flpcs      map[string][]*pigo.FlpCascade
}

// New loads the cascade files from dir: "facefinder", "puploc", and the
// landmark cascades under "lps/".
func New(dir string, cfg *Config) (*Detector, error) {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}

	faceCascade, err := os.ReadFile(filepath.Join(dir, "facefinder"))
	if err != nil {
		return nil, fmt.Errorf("%w: facefinder in %s", ErrCascadeNotFound, dir)
	}
	classifier, err := pigo.NewPigo().Unpack(faceCascade)
	if err != nil {
		return nil, fmt.Errorf("unpacking facefinder cascade: %w", err)
	}

	puplocCascade, err := os.ReadFile(filepath.Join(dir, "puploc"))
	if err != nil {
		return nil, fmt.Errorf("%w: puploc in %s", ErrCascadeNotFound, dir)
	}
	plc, err := (&pigo.PuplocCascade{}).UnpackCascade(puplocCascade)
	if err != nil {
		return nil, fmt.Errorf("unpacking puploc cascade: %w", err)
	}

	flpcs, err := plc.ReadCascadeDir(filepath.Join(dir, "lps"))
	if err != nil {
		return nil, fmt.Errorf("%w: lps dir in %s: %v", ErrCascadeNotFound, dir, err)
	}
	for _, name := range []string{cascadeOuterCorner, cascadeInnerCorner} {
		if len(flpcs[name]) == 0 {
			return nil, fmt.Errorf("%w: %s in %s/lps", ErrCascadeNotFound, name, dir)
		}
	}

	return &Detector{
		cfg:        *cfg,
		classifier: classifier,
		puploc:     plc,
		flpcs:      flpcs,
	}, nil
}

// LandmarkIndex resolves a label to this detector's landmark index.
func (d *Detector) LandmarkIndex(label headscan.FiducialLabel) (int, bool) {
	idx, ok := labelIndex[label]
	return idx, ok
}

// DetectDense runs face detection followed by eye-corner localization and
// returns normalized landmarks, or nil when no face clears the quality
// threshold.
func (d *Detector) DetectDense(_ context.Context, img image.Image) (*headscan.DenseDetection, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()

	params := pigo.ImageParams{
		Pixels: pigo.RgbToGrayscale(img),
		Rows:   rows,
		Cols:   cols,
		Dim:    cols,
	}
	cascadeParams := pigo.CascadeParams{
		MinSize:     rows / 8,
		MaxSize:     rows,
		ShiftFactor: d.cfg.ShiftFactor,
		ScaleFactor: d.cfg.ScaleFactor,
		ImageParams: params,
	}

	detections := d.classifier.RunCascade(cascadeParams, 0.0)
	detections = d.classifier.ClusterDetections(detections, d.cfg.IoUThreshold)

	best := pigo.Detection{Q: -1}
	for _, det := range detections {
		if det.Q > best.Q {
			best = det
		}
	}
	if best.Q < d.cfg.QualityThreshold {
		return nil, nil
	}

	// Seed pupil localization from the face box (offsets per the pigo
	// reference examples), then grow the eye corners from the pupils.
	leftSeed := pigo.Puploc{
		Row:      best.Row - int(0.075*float32(best.Scale)),
		Col:      best.Col - int(0.175*float32(best.Scale)),
		Scale:    float32(best.Scale) * 0.25,
		Perturbs: d.cfg.Perturbs,
	}
	leftEye := d.puploc.RunDetector(leftSeed, params, 0.0, false)

	rightSeed := leftSeed
	rightSeed.Col = best.Col + int(0.185*float32(best.Scale))
	rightEye := d.puploc.RunDetector(rightSeed, params, 0.0, false)

	if leftEye.Row <= 0 || leftEye.Col <= 0 || rightEye.Row <= 0 || rightEye.Col <= 0 {
		return nil, nil
	}

	landmarks := make([]headscan.Point2, numLandmarks)
	assign := func(idx int, pt *pigo.Puploc) bool {
		if pt == nil || pt.Row <= 0 || pt.Col <= 0 {
			return false
		}
		landmarks[idx] = headscan.Point2{
			X: float64(pt.Col) / float64(cols),
			Y: float64(pt.Row) / float64(rows),
		}
		return true
	}

	ok := assign(idxRightEyeOutside, d.landmark(cascadeOuterCorner, leftEye, rightEye, params, false))
	ok = assign(idxRightEyeInside, d.landmark(cascadeInnerCorner, leftEye, rightEye, params, false)) && ok
	ok = assign(idxLeftEyeInside, d.landmark(cascadeInnerCorner, leftEye, rightEye, params, true)) && ok
	ok = assign(idxLeftEyeOutside, d.landmark(cascadeOuterCorner, leftEye, rightEye, params, true)) && ok
	if !ok {
		return nil, nil
	}

	inner1 := landmarks[idxRightEyeInside]
	inner2 := landmarks[idxLeftEyeInside]
	landmarks[idxNasion] = headscan.Point2{
		X: (inner1.X + inner2.X) / 2,
		Y: (inner1.Y + inner2.Y) / 2,
	}

	return &headscan.DenseDetection{Landmarks: landmarks}, nil
}

// landmark runs one eye-corner cascade, mirrored to the other side of the
// face when flipV is set.
func (d *Detector) landmark(name string, leftEye, rightEye *pigo.Puploc, params pigo.ImageParams, flipV bool) *pigo.Puploc {
	for _, flpc := range d.flpcs[name] {
		if pt := flpc.GetLandmarkPoint(leftEye, rightEye, params, d.cfg.Perturbs, flipV); pt != nil {
			return pt
		}
	}
	return nil
}
