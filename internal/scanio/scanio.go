// Package scanio resolves the on-disk layout of scan datasets:
// data/<dataset>/input_meshes/scan_NNN.obj with sibling output_points and
// reference_points directories of .mrk.json fiducial files.
package scanio

import (
	"fmt"
	"os"
	"path/filepath"
)

// MeshPath returns the input mesh path for a scan ID.
func MeshPath(dataDir, dataset string, id int) string {
	return filepath.Join(dataDir, dataset, "input_meshes", fmt.Sprintf("scan_%03d.obj", id))
}

// OutputPath returns the output fiducials path for a scan ID, creating the
// output directory if needed.
func OutputPath(dataDir, dataset string, id int) (string, error) {
	dir := filepath.Join(dataDir, dataset, "output_points")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return filepath.Join(dir, fmt.Sprintf("fiducials_%03d.mrk.json", id)), nil
}

// ReferencePath returns the reference fiducials path for a scan ID.
func ReferencePath(dataDir, dataset string, id int) string {
	return filepath.Join(dataDir, dataset, "reference_points", fmt.Sprintf("fiducials_%03d.mrk.json", id))
}
