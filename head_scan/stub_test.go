package headscan

import (
	"context"
	"image"

	"github.com/golang/geo/r3"

	"go.viam.com/rdk/rimage"
)

// stubRenderer records camera state and delegates picking to a scriptable
// function of the current azimuth.
type stubRenderer struct {
	azimuth  float64
	oriented []float64
	captures int
	pickFn   func(azimuth, x, y float64) (r3.Vector, bool)
}

func (s *stubRenderer) Orient(azimuthDeg float64) {
	s.azimuth = azimuthDeg
	s.oriented = append(s.oriented, azimuthDeg)
}

func (s *stubRenderer) Capture() (*rimage.Image, error) {
	s.captures++
	return rimage.NewImage(8, 8), nil
}

func (s *stubRenderer) Pick(x, y float64) (r3.Vector, bool) {
	if s.pickFn == nil {
		return r3.Vector{}, false
	}
	return s.pickFn(s.azimuth, x, y)
}

// stubDense reports face presence as a function of the renderer's current
// azimuth and places every landmark at the frame center.
type stubDense struct {
	renderer  *stubRenderer
	presentFn func(azimuth float64) bool
	indices   map[FiducialLabel]int
	landmarks int
}

func (s *stubDense) DetectDense(_ context.Context, _ image.Image) (*DenseDetection, error) {
	if s.presentFn != nil && !s.presentFn(s.renderer.azimuth) {
		return nil, nil
	}
	n := s.landmarks
	if n == 0 {
		n = len(s.indices)
	}
	pts := make([]Point2, n)
	for i := range pts {
		pts[i] = Point2{X: 0.5, Y: 0.5}
	}
	return &DenseDetection{Landmarks: pts}, nil
}

func (s *stubDense) LandmarkIndex(label FiducialLabel) (int, bool) {
	idx, ok := s.indices[label]
	return idx, ok
}

// stubEars always reports both tragions at the frame center.
type stubEars struct {
	calls int
}

func (s *stubEars) DetectEars(_ context.Context, _ image.Image) (*EarDetection, error) {
	s.calls++
	return &EarDetection{
		LeftTragion:  &Point2{X: 0.25, Y: 0.5},
		RightTragion: &Point2{X: 0.75, Y: 0.5},
	}, nil
}

// denseIndices maps all five dense labels to positions 0..4.
func denseIndices() map[FiducialLabel]int {
	m := make(map[FiducialLabel]int, len(DenseLabels))
	for i, label := range DenseLabels {
		m[label] = i
	}
	return m
}
