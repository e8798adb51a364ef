package headscan

import (
	"github.com/golang/geo/r3"
)

// FiducialLabel identifies an anatomical landmark on the head surface.
type FiducialLabel int

const (
	// LeftEar is the left ear tragion.
	LeftEar FiducialLabel = iota
	// LeftEyeOutside is the outer corner of the left eye.
	LeftEyeOutside
	// LeftEyeInside is the inner corner of the left eye.
	LeftEyeInside
	// Nasion is the depression between the eyes at the top of the nose bridge.
	Nasion
	// RightEyeInside is the inner corner of the right eye.
	RightEyeInside
	// RightEyeOutside is the outer corner of the right eye.
	RightEyeOutside
	// RightEar is the right ear tragion.
	RightEar
)

// Labels lists all fiducial labels in canonical output order.
var Labels = []FiducialLabel{
	LeftEar,
	LeftEyeOutside,
	LeftEyeInside,
	Nasion,
	RightEyeInside,
	RightEyeOutside,
	RightEar,
}

// DenseLabels lists the labels resolved through the dense landmarker.
// The two ear labels are excluded; they come from the keypoint detector.
var DenseLabels = []FiducialLabel{
	LeftEyeOutside,
	LeftEyeInside,
	Nasion,
	RightEyeInside,
	RightEyeOutside,
}

func (l FiducialLabel) String() string {
	switch l {
	case LeftEar:
		return "left_ear"
	case LeftEyeOutside:
		return "left_eye_outside"
	case LeftEyeInside:
		return "left_eye_inside"
	case Nasion:
		return "nasion"
	case RightEyeInside:
		return "right_eye_inside"
	case RightEyeOutside:
		return "right_eye_outside"
	case RightEar:
		return "right_ear"
	default:
		return "unknown"
	}
}

// Point2 is a normalized image coordinate in [0,1] with (0,0) at the top left.
type Point2 struct {
	X float64
	Y float64
}

// SweepBounds is the inclusive azimuth interval over which frontal detection
// is expected to succeed, in degrees.
type SweepBounds struct {
	MinZ float64
	MaxZ float64
}

// Mid returns the midpoint azimuth of the sweep.
func (b SweepBounds) Mid() float64 {
	return (b.MinZ + b.MaxZ) / 2
}

// Candidate is a 3D surface point obtained by back-projecting one detected
// pixel, tagged with the label it observes and the azimuth it was captured at.
type Candidate struct {
	Label   FiducialLabel
	Point   r3.Vector
	Azimuth float64
}

// ObservationSet accumulates per-label candidate sequences for one sampling
// run. Candidate order is view order. It is scoped to a single run.
type ObservationSet struct {
	candidates map[FiducialLabel][]Candidate
	views      int
}

// NewObservationSet returns an empty accumulator.
func NewObservationSet() *ObservationSet {
	return &ObservationSet{candidates: make(map[FiducialLabel][]Candidate)}
}

// Add appends a candidate to its label's sequence.
func (o *ObservationSet) Add(c Candidate) {
	o.candidates[c.Label] = append(o.candidates[c.Label], c)
}

// Candidates returns the ordered candidate sequence for a label.
func (o *ObservationSet) Candidates(label FiducialLabel) []Candidate {
	return o.candidates[label]
}

// Views returns the number of views attempted during sampling.
func (o *ObservationSet) Views() int {
	return o.views
}

// NoticeKind classifies a non-fatal per-label condition.
type NoticeKind int

const (
	// NoObservations means a label collected zero candidates across all views.
	NoObservations NoticeKind = iota
	// AllOutliers means the z-score filter rejected every candidate and the
	// aggregate fell back to the unfiltered mean.
	AllOutliers
)

func (k NoticeKind) String() string {
	switch k {
	case NoObservations:
		return "no_observations"
	case AllOutliers:
		return "all_outliers"
	default:
		return "unknown"
	}
}

// Notice is a recoverable per-label condition surfaced alongside the result.
type Notice struct {
	Label FiducialLabel
	Kind  NoticeKind
}

// Fiducial is one aggregated landmark position in mesh coordinates.
type Fiducial struct {
	Label        FiducialLabel
	Point        r3.Vector
	Observations int
}

// Result is the output of a full locate run. Fiducials holds at most one
// entry per label; labels with no observations are absent.
type Result struct {
	Fiducials map[FiducialLabel]Fiducial
	Notices   []Notice
	Sweep     SweepBounds
}

// Ordered returns the located fiducials in canonical label order.
func (r *Result) Ordered() []Fiducial {
	out := make([]Fiducial, 0, len(r.Fiducials))
	for _, label := range Labels {
		if f, ok := r.Fiducials[label]; ok {
			out = append(out, f)
		}
	}
	return out
}
