package autofiducial

import (
	"image/color"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rdk/rimage"
	"go.viam.com/rdk/spatialmath"
)

// RenderOptions holds parameters for the offscreen renderer.
type RenderOptions struct {
	Resolution    int     // Square frame size in pixels
	FOVDeg        float64 // Vertical field of view in degrees
	Zoom          float64 // Framing zoom; 1.0 fits the bounding sphere
	PickTolerance float64 // Picker slack as a fraction of the viewport
	Ambient       float64 // Ambient light term in [0,1]
}

// DefaultRenderOptions returns options matching the detector contract: a
// fixed square RGB raster with the head framed at fixed zoom.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Resolution:    512,
		FOVDeg:        30.0,
		Zoom:          1.0,
		PickTolerance: 0.005,
		Ambient:       0.35,
	}
}

// MeshRenderer is a software offscreen renderer holding one mesh. It
// implements headscan.Renderer: the camera orbits the mesh's vertical (Z)
// axis by azimuth, frames rasterize with texture and head-light shading, and
// picking ray-casts from the camera through screen coordinates.
//
// The camera state is mutated in place by Orient; a MeshRenderer must not be
// shared across concurrent pipeline runs.
type MeshRenderer struct {
	mesh *Mesh
	opts RenderOptions

	// Intrinsics: focal length and principal point in pixels, kept as a
	// matrix alongside its inverse for pixel ray construction.
	intrinsics *mat.Dense
	invK       *mat.Dense

	// Camera state, replaced by Orient.
	azimuth  float64
	position r3.Vector
	forward  r3.Vector
	up       r3.Vector
	right    r3.Vector
}

// NewMeshRenderer creates a renderer over the given mesh, oriented at
// azimuth 0 (facing the anterior side).
func NewMeshRenderer(mesh *Mesh, opts *RenderOptions) (*MeshRenderer, error) {
	if mesh == nil || len(mesh.Triangles) == 0 {
		return nil, ErrEmptyMesh
	}
	if opts == nil {
		o := DefaultRenderOptions()
		opts = &o
	}

	res := float64(opts.Resolution)
	tanHalf := math.Tan(opts.FOVDeg * math.Pi / 360)
	focal := res / (2 * tanHalf)
	k := mat.NewDense(3, 3, []float64{
		focal, 0, res / 2,
		0, focal, res / 2,
		0, 0, 1,
	})
	var invK mat.Dense
	if err := invK.Inverse(k); err != nil {
		return nil, err
	}

	r := &MeshRenderer{
		mesh:       mesh,
		opts:       *opts,
		intrinsics: k,
		invK:       &invK,
	}
	r.Orient(0)
	return r, nil
}

// Orient places the camera on a circle around the mesh's vertical axis at the
// given azimuth (degrees), auto-framed so the bounding sphere fits the view
// at the configured zoom. Azimuth 0 faces the anterior (-Y) side; positive
// azimuth moves the camera toward the subject's left (+X). The up vector is
// +Z orthogonalized against the view direction.
func (r *MeshRenderer) Orient(azimuthDeg float64) {
	center := r.mesh.Center()
	radius := r.mesh.BoundingRadius()

	zoom := r.opts.Zoom
	if zoom <= 0 {
		zoom = 1.0
	}
	tanHalf := math.Tan(r.opts.FOVDeg * math.Pi / 360)
	distance := radius / (tanHalf * zoom)

	rad := azimuthDeg * math.Pi / 180
	offset := r3.Vector{X: math.Sin(rad), Y: -math.Cos(rad), Z: 0}

	r.azimuth = azimuthDeg
	r.position = center.Add(offset.Mul(distance))
	r.forward = offset.Mul(-1)

	worldUp := r3.Vector{Z: 1}
	r.right = r.forward.Cross(worldUp)
	if n := r.right.Norm(); n > 1e-12 {
		r.right = r.right.Mul(1 / n)
	} else {
		r.right = r3.Vector{X: 1}
	}
	r.up = r.right.Cross(r.forward)
}

// Azimuth returns the azimuth the camera is currently oriented to.
func (r *MeshRenderer) Azimuth() float64 {
	return r.azimuth
}

// CameraPose returns the current camera pose in mesh coordinates, oriented
// along the view direction.
func (r *MeshRenderer) CameraPose() spatialmath.Pose {
	ov := &spatialmath.OrientationVector{
		OX: r.forward.X,
		OY: r.forward.Y,
		OZ: r.forward.Z,
	}
	return spatialmath.NewPose(r.position, ov)
}

// cameraSpace returns a point in camera coordinates: x along image right,
// y along image down, z along the view direction.
func (r *MeshRenderer) cameraSpace(p r3.Vector) r3.Vector {
	d := p.Sub(r.position)
	return r3.Vector{
		X: d.Dot(r.right),
		Y: -d.Dot(r.up),
		Z: d.Dot(r.forward),
	}
}

// Capture rasterizes the current view into a square RGB frame with
// perspective-correct texture mapping, a z-buffer, and head-light Lambert
// shading. Row order is y-down, matching the 2D detector contract.
func (r *MeshRenderer) Capture() (*rimage.Image, error) {
	res := r.opts.Resolution
	img := rimage.NewImage(res, res)
	background := rimage.NewColor(24, 24, 24)
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			img.SetXY(x, y, background)
		}
	}

	depth := make([]float64, res*res)
	for i := range depth {
		depth[i] = math.MaxFloat64
	}

	focal := r.intrinsics.At(0, 0)
	cx := r.intrinsics.At(0, 2)
	cy := r.intrinsics.At(1, 2)

	const nearClip = 1e-6

	for ti := range r.mesh.Triangles {
		tri := &r.mesh.Triangles[ti]

		var cam [3]r3.Vector
		behind := false
		for i := 0; i < 3; i++ {
			cam[i] = r.cameraSpace(tri.P[i])
			if cam[i].Z <= nearClip {
				behind = true
			}
		}
		// No near-plane clipping: the camera is framed outside the bounding
		// sphere, so a triangle crossing the near plane never happens for
		// well-formed input. Skip degenerate cases outright.
		if behind {
			continue
		}

		var px, py [3]float64
		for i := 0; i < 3; i++ {
			px[i] = focal*cam[i].X/cam[i].Z + cx
			py[i] = focal*cam[i].Y/cam[i].Z + cy
		}

		minX := int(math.Floor(math.Min(px[0], math.Min(px[1], px[2]))))
		maxX := int(math.Ceil(math.Max(px[0], math.Max(px[1], px[2]))))
		minY := int(math.Floor(math.Min(py[0], math.Min(py[1], py[2]))))
		maxY := int(math.Ceil(math.Max(py[0], math.Max(py[1], py[2]))))
		if minX < 0 {
			minX = 0
		}
		if minY < 0 {
			minY = 0
		}
		if maxX > res-1 {
			maxX = res - 1
		}
		if maxY > res-1 {
			maxY = res - 1
		}
		if minX > maxX || minY > maxY {
			continue
		}

		area := edgeFunction(px[0], py[0], px[1], py[1], px[2], py[2])
		if math.Abs(area) < 1e-12 {
			continue
		}

		shade := r.triangleShade(tri)

		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				fx := float64(x) + 0.5
				fy := float64(y) + 0.5

				w0 := edgeFunction(px[1], py[1], px[2], py[2], fx, fy) / area
				w1 := edgeFunction(px[2], py[2], px[0], py[0], fx, fy) / area
				w2 := 1 - w0 - w1
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}

				// Perspective-correct interpolation in 1/z.
				iz := w0/cam[0].Z + w1/cam[1].Z + w2/cam[2].Z
				z := 1 / iz
				idx := y*res + x
				if z >= depth[idx] {
					continue
				}
				depth[idx] = z

				u := (w0*tri.UV[0][0]/cam[0].Z + w1*tri.UV[1][0]/cam[1].Z + w2*tri.UV[2][0]/cam[2].Z) * z
				v := (w0*tri.UV[0][1]/cam[0].Z + w1*tri.UV[1][1]/cam[1].Z + w2*tri.UV[2][1]/cam[2].Z) * z

				cr, cg, cb := r.sampleTexture(u, v)
				img.SetXY(x, y, rimage.NewColor(
					uint8(math.Min(255, float64(cr)*shade)),
					uint8(math.Min(255, float64(cg)*shade)),
					uint8(math.Min(255, float64(cb)*shade)),
				))
			}
		}
	}

	return img, nil
}

// triangleShade computes a head-light Lambert term for a triangle. The face
// normal is used when vertex normals are absent; orientation-agnostic so
// inconsistently wound meshes don't render black.
func (r *MeshRenderer) triangleShade(tri *Triangle) float64 {
	n := tri.N[0].Add(tri.N[1]).Add(tri.N[2])
	if n.Norm() < 1e-9 {
		n = tri.P[1].Sub(tri.P[0]).Cross(tri.P[2].Sub(tri.P[0]))
	}
	nn := n.Norm()
	if nn < 1e-12 {
		return r.opts.Ambient
	}
	lambert := math.Abs(n.Dot(r.forward)) / nn
	return r.opts.Ambient + (1-r.opts.Ambient)*lambert
}

// sampleTexture looks up the diffuse texture at UV coordinates, clamped to
// the texture bounds. A missing texture renders as mid gray.
func (r *MeshRenderer) sampleTexture(u, v float64) (uint8, uint8, uint8) {
	tex := r.mesh.Texture
	if tex == nil {
		return 200, 200, 200
	}
	b := tex.Bounds()
	x := b.Min.X + int(u*float64(b.Dx()-1)+0.5)
	y := b.Min.Y + int(v*float64(b.Dy()-1)+0.5)
	if x < b.Min.X {
		x = b.Min.X
	}
	if x > b.Max.X-1 {
		x = b.Max.X - 1
	}
	if y < b.Min.Y {
		y = b.Min.Y
	}
	if y > b.Max.Y-1 {
		y = b.Max.Y - 1
	}
	c := color.NRGBAModel.Convert(tex.At(x, y)).(color.NRGBA)
	return c.R, c.G, c.B
}

// Pick casts a ray from the current camera through normalized screen
// coordinates (x, y in [0,1]) and returns the nearest mesh intersection. The
// pick tolerance widens triangle edges by a fraction of the viewport so hits
// on shared edges and vertices are not lost to floating point.
func (r *MeshRenderer) Pick(x, y float64) (r3.Vector, bool) {
	res := float64(r.opts.Resolution)
	pixel := mat.NewVecDense(3, []float64{x * res, y * res, 1})

	var dirCam mat.VecDense
	dirCam.MulVec(r.invK, pixel)

	dir := r.right.Mul(dirCam.AtVec(0)).
		Add(r.up.Mul(-dirCam.AtVec(1))).
		Add(r.forward.Mul(dirCam.AtVec(2)))
	if n := dir.Norm(); n > 1e-12 {
		dir = dir.Mul(1 / n)
	} else {
		return r3.Vector{}, false
	}

	slack := r.opts.PickTolerance

	bestT := math.MaxFloat64
	var bestPoint r3.Vector
	hit := false
	for ti := range r.mesh.Triangles {
		tri := &r.mesh.Triangles[ti]
		if t, ok := rayTriangle(r.position, dir, tri, slack); ok && t < bestT {
			bestT = t
			bestPoint = r.position.Add(dir.Mul(t))
			hit = true
		}
	}
	return bestPoint, hit
}

// Project maps a mesh-space point to normalized screen coordinates under the
// current camera, the inverse of Pick for visible surface points. Returns
// false when the point is behind the camera.
func (r *MeshRenderer) Project(p r3.Vector) (float64, float64, bool) {
	cam := r.cameraSpace(p)
	if cam.Z <= 1e-9 {
		return 0, 0, false
	}
	res := float64(r.opts.Resolution)
	focal := r.intrinsics.At(0, 0)
	x := (focal*cam.X/cam.Z + r.intrinsics.At(0, 2)) / res
	y := (focal*cam.Y/cam.Z + r.intrinsics.At(1, 2)) / res
	return x, y, true
}

// rayTriangle is the Möller–Trumbore ray/triangle intersection. slack widens
// the accepted barycentric range slightly beyond [0,1].
func rayTriangle(origin, dir r3.Vector, tri *Triangle, slack float64) (float64, bool) {
	const eps = 1e-12

	e1 := tri.P[1].Sub(tri.P[0])
	e2 := tri.P[2].Sub(tri.P[0])

	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < eps {
		return 0, false
	}
	invDet := 1 / det

	tv := origin.Sub(tri.P[0])
	u := tv.Dot(p) * invDet
	if u < -slack || u > 1+slack {
		return 0, false
	}

	q := tv.Cross(e1)
	v := dir.Dot(q) * invDet
	if v < -slack || u+v > 1+slack {
		return 0, false
	}

	t := e2.Dot(q) * invDet
	if t <= eps {
		return 0, false
	}
	return t, true
}

// edgeFunction is the signed parallelogram area of (b-a) x (c-a).
func edgeFunction(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}
