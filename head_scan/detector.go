package headscan

import (
	"context"
	"image"
)

// DenseDetection is one frame's dense face-landmark result: a fixed-length
// ordered list of normalized image points indexed by the detector's stable
// numeric scheme.
type DenseDetection struct {
	Landmarks []Point2
}

// DenseDetector is a 2D face-landmark model run on rendered frames. At most
// one face is reported per frame; a nil detection (with nil error) means no
// face was found. Implementations are swappable black boxes.
type DenseDetector interface {
	// DetectDense runs the landmark model on an 8-bit RGB raster.
	DetectDense(ctx context.Context, img image.Image) (*DenseDetection, error)

	// LandmarkIndex resolves a fiducial label to the detector's landmark
	// index, or false when the detector has no landmark for that label.
	LandmarkIndex(label FiducialLabel) (int, bool)
}

// EarDetection is one frame's ear-tragion keypoints in normalized image
// coordinates. A nil tragion means the detector did not report that side.
type EarDetection struct {
	LeftTragion  *Point2
	RightTragion *Point2
}

// EarDetector is a secondary high-precision keypoint model exposing named
// ear-tragion points. A nil detection (with nil error) means no face.
type EarDetector interface {
	DetectEars(ctx context.Context, img image.Image) (*EarDetection, error)
}

// FaceMeshIndex maps the dense labels to MediaPipe FaceMesh landmark indices.
// Detectors backed by a FaceMesh-style model can return this table from
// LandmarkIndex. Ear labels are intentionally absent: tragions come from the
// keypoint detector, not the dense landmarker.
var FaceMeshIndex = map[FiducialLabel]int{
	Nasion:          168,
	LeftEyeInside:   362,
	LeftEyeOutside:  263,
	RightEyeInside:  133,
	RightEyeOutside: 33,
}
