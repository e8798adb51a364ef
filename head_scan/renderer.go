package headscan

import (
	"github.com/golang/geo/r3"

	"go.viam.com/rdk/rimage"
)

// Renderer is an offscreen viewport holding one mesh. Implementations orient
// a camera by azimuth, rasterize RGB frames, and support ray-cast picking
// from screen coordinates to the mesh surface.
//
// A Renderer is a single mutable resource: Orient replaces the camera state
// in place, and Pick must be called against the camera state used to capture
// the frame currently being analyzed. It is not safe for concurrent use.
type Renderer interface {
	// Orient rotates the camera to the given azimuth (degrees) around the
	// mesh's vertical axis, auto-framing to the mesh bounds at fixed zoom.
	Orient(azimuthDeg float64)

	// Capture rasterizes the current view into a fixed-resolution square RGB
	// frame, row order matching what a 2D face detector expects (y down).
	Capture() (*rimage.Image, error)

	// Pick casts a ray from the current camera through normalized screen
	// coordinates (x, y in [0,1]) and returns the first surface intersection,
	// or false if the ray misses the mesh.
	Pick(x, y float64) (r3.Vector, bool)
}
