package autofiducial

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"

	headscan "github.com/pinhaocheng/AutoFiducialContest/head_scan"
)

// Options bundles everything configurable from a run configuration file.
type Options struct {
	Pipeline headscan.Config `mapstructure:"pipeline"`
	Render   RenderOptions   `mapstructure:"render"`

	// CascadeDir points at the pigo cascade files (facefinder, puploc, lps/)
	// for the bundled dense detector.
	CascadeDir string `mapstructure:"cascade_dir"`

	// CoordinateSystem of the output fiducials, LPS (default) or RAS.
	CoordinateSystem string `mapstructure:"coordinate_system"`
}

// DefaultOptions returns options with all defaults filled in.
func DefaultOptions() Options {
	return Options{
		Pipeline:         headscan.DefaultConfig(),
		Render:           DefaultRenderOptions(),
		CoordinateSystem: "LPS",
	}
}

// LoadOptions reads a JSON options file over the defaults. Unknown keys are
// ignored; numeric types are coerced.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading options file: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing options file: %w", err)
	}

	opts := DefaultOptions()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding options: %w", err)
	}
	return &opts, nil
}
