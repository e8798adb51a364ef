package autofiducial

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/rdk/pointcloud"
)

// ErrHeuristicDegenerate is returned when the axis slabs used by the
// geometric placeholder contain no vertices.
var ErrHeuristicDegenerate = errors.New("too few vertices near head axes for heuristic")

// HeuristicFiducials estimates the seven fiducials from vertex geometry
// alone: the nasion from the topmost vertex near the vertical axis, the ears
// from the lateral extremes near the left-right axis, and the eye corners as
// radius-corrected interpolations between nasion and ears.
//
// This is a highly reductive placeholder, kept as a fallback when no detector
// is available. It demonstrates the data flow but is not accurate.
func HeuristicFiducials(cloud pointcloud.PointCloud) (*FiducialSet, error) {
	if cloud == nil || cloud.Size() == 0 {
		return nil, ErrHeuristicDegenerate
	}

	var sum r3.Vector
	min := r3.Vector{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	max := min.Mul(-1)
	cloud.Iterate(0, 0, func(p r3.Vector, _ pointcloud.Data) bool {
		sum = sum.Add(p)
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
		return true
	})
	center := sum.Mul(1.0 / float64(cloud.Size()))

	size := max.Sub(min)
	slab := (size.X + size.Y + size.Z) / 3 / 30

	// Nasion: highest vertex within a thin slab around the vertical axis.
	// Ears: lateral extremes within a slab around the left-right axis.
	nasion := r3.Vector{Z: -math.MaxFloat64}
	leftEar := r3.Vector{X: -math.MaxFloat64}
	rightEar := r3.Vector{X: math.MaxFloat64}
	foundNasion, foundEars := false, false

	cloud.Iterate(0, 0, func(p r3.Vector, _ pointcloud.Data) bool {
		d := p.Sub(center)
		if math.Hypot(d.X, d.Y) < slab && p.Z > nasion.Z {
			nasion = p
			foundNasion = true
		}
		if math.Hypot(d.Y, d.Z) < slab {
			if p.X > leftEar.X {
				leftEar = p
			}
			if p.X < rightEar.X {
				rightEar = p
			}
			foundEars = true
		}
		return true
	})
	if !foundNasion || !foundEars {
		return nil, ErrHeuristicDegenerate
	}

	nasionR := nasion.Sub(center).Norm()
	leftEarR := leftEar.Sub(center).Norm()
	rightEarR := rightEar.Sub(center).Norm()

	set := NewFiducialSet()
	set.Color = [3]float64{0, 1, 0}
	add := func(label string, p r3.Vector) {
		set.ControlPoints = append(set.ControlPoints, ControlPoint{Position: p, Label: label})
	}
	add("left_ear", leftEar)
	add("left_eye_outside", interpolateOnHead(center, leftEar, leftEarR, nasion, nasionR, 0.5))
	add("left_eye_inside", interpolateOnHead(center, leftEar, leftEarR, nasion, nasionR, 0.25))
	add("nasion", nasion)
	add("right_eye_inside", interpolateOnHead(center, rightEar, rightEarR, nasion, nasionR, 0.25))
	add("right_eye_outside", interpolateOnHead(center, rightEar, rightEarR, nasion, nasionR, 0.5))
	add("right_ear", rightEar)
	return set, nil
}

// interpolateOnHead blends ear and nasion positions by weight and pushes the
// blend back out to the interpolated head radius, so the estimate stays near
// the surface rather than cutting through the head.
func interpolateOnHead(center, ear r3.Vector, earR float64, nasion r3.Vector, nasionR, earWeight float64) r3.Vector {
	blend := ear.Mul(earWeight).Add(nasion.Mul(1 - earWeight))
	blendR := blend.Sub(center).Norm()
	if blendR < 1e-12 {
		return blend
	}
	targetR := earR*earWeight + nasionR*(1-earWeight)
	return blend.Sub(center).Mul(targetR / blendR).Add(center)
}
