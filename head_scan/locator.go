package headscan

import (
	"context"
	"errors"
	"fmt"

	"go.viam.com/rdk/logging"
)

// Locator runs the full multi-view fiducial pipeline: probe the viable sweep
// interval, sample views across it, and robustly aggregate the back-projected
// candidates. The whole run is synchronous and single-threaded; the renderer
// is mutated in place one view at a time.
type Locator struct {
	cfg      Config
	renderer Renderer
	dense    DenseDetector
	ears     EarDetector
	logger   logging.Logger
}

// NewLocator creates a Locator over a renderer and its detectors. The ear
// detector may be nil, in which case the ear labels are never observed.
func NewLocator(r Renderer, dense DenseDetector, ears EarDetector, cfg *Config, logger logging.Logger) (*Locator, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}
	if dense == nil {
		return nil, ErrNilDetector
	}
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	if logger == nil {
		logger = logging.NewLogger("headscan")
	}
	return &Locator{
		cfg:      *cfg,
		renderer: r,
		dense:    dense,
		ears:     ears,
		logger:   logger,
	}, nil
}

// Locate runs probe, sampling, and aggregation, returning the located
// fiducials with any per-label notices attached. Per-view and per-label
// issues are absorbed into notices; only rendering or detector failures
// propagate as errors.
func (l *Locator) Locate(ctx context.Context) (*Result, error) {
	bounds, err := ProbeSweep(ctx, l.renderer, l.dense, l.cfg.Sweep)
	switch {
	case errors.Is(err, ErrSweepBoundaryNotFound):
		// No detection-loss boundary in a full revolution. Fall back to the
		// configured interval; rear views simply contribute no candidates.
		bounds = SweepBounds{MinZ: l.cfg.Sweep.FallbackMinDeg, MaxZ: l.cfg.Sweep.FallbackMaxDeg}
		l.logger.Warnf("sweep boundary not found; falling back to [%.0f, %.0f] deg", bounds.MinZ, bounds.MaxZ)
	case err != nil:
		return nil, fmt.Errorf("probing sweep interval: %w", err)
	default:
		l.logger.Infof("viable sweep interval [%.1f, %.1f] deg", bounds.MinZ, bounds.MaxZ)
	}

	if l.ears == nil {
		l.logger.Warn("no ear detector configured; ear fiducials will be absent")
	}

	obs, err := SampleViews(ctx, l.renderer, l.dense, l.ears, bounds, l.cfg.Sampling)
	if err != nil {
		return nil, fmt.Errorf("sampling views: %w", err)
	}

	fiducials, notices := Aggregate(obs, l.cfg.Aggregation)
	for _, n := range notices {
		l.logger.Warnf("label %s: %s", n.Label, n.Kind)
	}
	l.logger.Infof("located %d of %d fiducials across %d views", len(fiducials), len(Labels), obs.Views())

	return &Result{
		Fiducials: fiducials,
		Notices:   notices,
		Sweep:     bounds,
	}, nil
}
