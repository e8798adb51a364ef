package headscan

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/stat"
)

// Aggregate reduces each label's candidate sequence to a single 3D point
// using per-coordinate z-score outlier rejection. Labels with no candidates
// are omitted with a NoObservations notice; a label whose filter rejects
// every candidate falls back to the unfiltered mean with an AllOutliers
// notice. At most one point is emitted per label.
func Aggregate(obs *ObservationSet, cfg AggregationConfig) (map[FiducialLabel]Fiducial, []Notice) {
	threshold := cfg.ZScoreThreshold
	if threshold <= 0 {
		threshold = 1.0
	}

	fiducials := make(map[FiducialLabel]Fiducial)
	var notices []Notice

	for _, label := range Labels {
		cands := obs.Candidates(label)

		switch {
		case len(cands) == 0:
			notices = append(notices, Notice{Label: label, Kind: NoObservations})

		case len(cands) == 1:
			fiducials[label] = Fiducial{Label: label, Point: cands[0].Point, Observations: 1}

		default:
			points := make([]r3.Vector, len(cands))
			for i, c := range cands {
				points[i] = c.Point
			}

			retained := filterByZScore(points, threshold)
			notice := false
			if len(retained) == 0 {
				retained = points
				notice = true
			}

			fiducials[label] = Fiducial{
				Label:        label,
				Point:        meanPoint(retained),
				Observations: len(cands),
			}
			if notice {
				notices = append(notices, Notice{Label: label, Kind: AllOutliers})
			}
		}
	}

	return fiducials, notices
}

// filterByZScore retains only points whose per-coordinate z-scores are all
// strictly below the threshold in absolute value. A coordinate with zero
// spread contributes a z-score of zero.
func filterByZScore(points []r3.Vector, threshold float64) []r3.Vector {
	n := len(points)
	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
		zs[i] = p.Z
	}

	meanX, stdX := stat.MeanStdDev(xs, nil)
	meanY, stdY := stat.MeanStdDev(ys, nil)
	meanZ, stdZ := stat.MeanStdDev(zs, nil)

	var retained []r3.Vector
	for i, p := range points {
		if zScore(xs[i], meanX, stdX) < threshold &&
			zScore(ys[i], meanY, stdY) < threshold &&
			zScore(zs[i], meanZ, stdZ) < threshold {
			retained = append(retained, p)
		}
	}
	return retained
}

// zScore returns |v - mean| / std, treating a degenerate spread as zero.
func zScore(v, mean, std float64) float64 {
	if std < 1e-12 || math.IsNaN(std) {
		return 0
	}
	return math.Abs(v-mean) / std
}

// meanPoint returns the arithmetic mean of the given points.
func meanPoint(points []r3.Vector) r3.Vector {
	var sum r3.Vector
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(points)))
}
