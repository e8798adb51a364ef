package headscan

// Config holds all configuration for the multi-view fiducial pipeline.
type Config struct {
	Sweep       SweepConfig
	Sampling    SamplingConfig
	Aggregation AggregationConfig
}

// SweepConfig holds parameters for the rotation sweep probe.
type SweepConfig struct {
	StepDeg        float64 // Azimuth step between presence probes
	FallbackMinDeg float64 // Sweep lower bound when no boundary is found
	FallbackMaxDeg float64 // Sweep upper bound when no boundary is found
}

// SamplingConfig holds parameters for multi-view sampling.
type SamplingConfig struct {
	NumViews     int     // Views attempted per run, endpoints inclusive
	EarMarginDeg float64 // Azimuth margin past the sweep midpoint for ear acceptance
}

// AggregationConfig holds parameters for robust candidate aggregation.
type AggregationConfig struct {
	ZScoreThreshold float64 // Max per-coordinate |z| for a candidate to be retained
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Sweep: SweepConfig{
			StepDeg:        5.0,
			FallbackMinDeg: -180.0,
			FallbackMaxDeg: 180.0,
		},
		Sampling: SamplingConfig{
			NumViews:     16,
			EarMarginDeg: 15.0,
		},
		Aggregation: AggregationConfig{
			ZScoreThreshold: 1.0,
		},
	}
}
