package autofiducial

import (
	"errors"
	"fmt"

	"go.viam.com/rdk/logging"
)

// ErrNoReference is returned when a reference set has no control points.
var ErrNoReference = errors.New("reference set has no control points")

// LabelError is the Euclidean distance between a located fiducial and its
// reference position, in the reference coordinate units.
type LabelError struct {
	Label    string
	Distance float64
}

// Evaluation summarizes how a located fiducial set compares to a reference.
type Evaluation struct {
	Errors  []LabelError
	Missing []string // reference labels with no located counterpart
	Extra   []string // located labels with no reference counterpart
}

// MeanError returns the mean distance over the matched labels, or NaN-free
// zero when nothing matched.
func (e *Evaluation) MeanError() float64 {
	if len(e.Errors) == 0 {
		return 0
	}
	sum := 0.0
	for _, le := range e.Errors {
		sum += le.Distance
	}
	return sum / float64(len(e.Errors))
}

// Print logs per-label distances and the summary line.
func (e *Evaluation) Print(logger logging.Logger) {
	for _, le := range e.Errors {
		logger.Infof("%-18s error %8.3f", le.Label, le.Distance)
	}
	for _, label := range e.Missing {
		logger.Warnf("%-18s missing from output", label)
	}
	for _, label := range e.Extra {
		logger.Warnf("%-18s has no reference", label)
	}
	logger.Infof("mean error %.3f over %d matched labels", e.MeanError(), len(e.Errors))
}

// Evaluate matches located control points to reference points by label and
// measures their distances. The located set is converted to the reference's
// coordinate system before comparison; neither input is modified.
func Evaluate(located, reference *FiducialSet) (*Evaluation, error) {
	if reference == nil || len(reference.ControlPoints) == 0 {
		return nil, ErrNoReference
	}

	aligned := &FiducialSet{
		ControlPoints:    append([]ControlPoint(nil), located.ControlPoints...),
		Color:            located.Color,
		CoordinateSystem: located.CoordinateSystem,
	}
	if err := aligned.SetCoordinateSystem(reference.CoordinateSystem); err != nil {
		return nil, fmt.Errorf("aligning coordinate systems: %w", err)
	}

	byLabel := make(map[string]ControlPoint, len(aligned.ControlPoints))
	for _, cp := range aligned.ControlPoints {
		byLabel[cp.Label] = cp
	}

	eval := &Evaluation{}
	matched := make(map[string]bool, len(reference.ControlPoints))
	for _, ref := range reference.ControlPoints {
		cp, ok := byLabel[ref.Label]
		if !ok {
			eval.Missing = append(eval.Missing, ref.Label)
			continue
		}
		matched[ref.Label] = true
		eval.Errors = append(eval.Errors, LabelError{
			Label:    ref.Label,
			Distance: cp.Position.Sub(ref.Position).Norm(),
		})
	}
	for _, cp := range aligned.ControlPoints {
		if !matched[cp.Label] {
			eval.Extra = append(eval.Extra, cp.Label)
		}
	}
	return eval, nil
}
