// Package autofiducial locates anatomical fiducial landmarks on textured 3D
// head-scan meshes by sweeping a virtual camera around the head, running 2D
// face-landmark detectors on rendered views, and back-projecting the
// detections onto the mesh surface.
package autofiducial

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/g3n/engine/loader/obj"
	"github.com/golang/geo/r3"

	"go.viam.com/rdk/pointcloud"

	// Head-scan textures come in more formats than the stdlib decodes.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "image/jpeg"
	_ "image/png"
)

var (
	// ErrMaterialNotFound is returned when the sidecar .mtl for a mesh cannot
	// be located. Detection quality depends on lit, textured rendering, so
	// this is fatal before any rendering begins.
	ErrMaterialNotFound = errors.New("sidecar material file not found")

	// ErrTextureNotFound is returned when the material's diffuse texture
	// cannot be located or decoded.
	ErrTextureNotFound = errors.New("material texture not found")

	// ErrEmptyMesh is returned when a mesh contains no triangles.
	ErrEmptyMesh = errors.New("mesh has no triangles")
)

// Triangle is one textured face of a mesh. Normals may be zero, in which case
// the face normal is used; UVs are in OBJ convention after the texture has
// been flipped to a top-left origin.
type Triangle struct {
	P  [3]r3.Vector
	N  [3]r3.Vector
	UV [3][2]float64
}

// Mesh is an immutable triangulated surface with texture coordinates and a
// decoded diffuse texture.
type Mesh struct {
	Triangles []Triangle
	Texture   image.Image

	min, max r3.Vector
}

// NewMesh builds a mesh from triangles and an optional texture. Used by
// synthetic test fixtures; file-based meshes come from LoadMesh.
func NewMesh(triangles []Triangle, texture image.Image) (*Mesh, error) {
	if len(triangles) == 0 {
		return nil, ErrEmptyMesh
	}
	m := &Mesh{Triangles: triangles, Texture: texture}
	m.computeBounds()
	return m, nil
}

// LoadMesh reads a Wavefront OBJ mesh with its co-located material definition
// and texture image. The .mtl is resolved from the OBJ's mtllib statement
// (falling back to the OBJ basename), and the texture from the material's
// map_Kd, both relative to the mesh file. Unresolvable paths are fatal
// configuration errors.
func LoadMesh(path string) (*Mesh, error) {
	mtlPath, err := resolveMaterialPath(path)
	if err != nil {
		return nil, err
	}

	dec, err := obj.Decode(path, mtlPath)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	texture, err := loadTexture(dec, mtlPath)
	if err != nil {
		return nil, err
	}

	triangles := triangulate(dec)
	if len(triangles) == 0 {
		return nil, ErrEmptyMesh
	}

	m := &Mesh{Triangles: triangles, Texture: texture}
	m.computeBounds()
	return m, nil
}

// resolveMaterialPath finds the sidecar .mtl for an OBJ file: the mtllib
// statement if present, otherwise the OBJ basename with a .mtl extension.
func resolveMaterialPath(objPath string) (string, error) {
	dir := filepath.Dir(objPath)

	f, err := os.Open(objPath)
	if err != nil {
		return "", fmt.Errorf("opening mesh %s: %w", objPath, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if name, ok := strings.CutPrefix(line, "mtllib "); ok {
			mtlPath := filepath.Join(dir, strings.TrimSpace(name))
			if _, err := os.Stat(mtlPath); err != nil {
				return "", fmt.Errorf("%w: %s", ErrMaterialNotFound, mtlPath)
			}
			return mtlPath, nil
		}
	}

	fallback := strings.TrimSuffix(objPath, filepath.Ext(objPath)) + ".mtl"
	if _, err := os.Stat(fallback); err != nil {
		return "", fmt.Errorf("%w: no mtllib statement and no %s", ErrMaterialNotFound, fallback)
	}
	return fallback, nil
}

// loadTexture decodes the first diffuse texture referenced by the material
// library and flips it vertically, converting the OBJ bottom-left UV origin
// to the top-left origin the renderer samples with.
func loadTexture(dec *obj.Decoder, mtlPath string) (image.Image, error) {
	mapKd := ""
	for _, mat := range dec.Materials {
		if mat != nil && mat.MapKd != "" {
			mapKd = mat.MapKd
			break
		}
	}
	if mapKd == "" {
		return nil, fmt.Errorf("%w: no map_Kd in %s", ErrTextureNotFound, mtlPath)
	}

	texPath := mapKd
	if !filepath.IsAbs(texPath) {
		texPath = filepath.Join(filepath.Dir(mtlPath), mapKd)
	}
	f, err := os.Open(texPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTextureNotFound, texPath)
	}
	defer f.Close() //nolint:errcheck

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrTextureNotFound, texPath, err)
	}
	return imaging.FlipV(img), nil
}

// triangulate converts the decoder's polygon faces into triangles by fan
// triangulation, pulling vertex positions, normals, and UVs from the shared
// attribute arrays.
func triangulate(dec *obj.Decoder) []Triangle {
	vertexAt := func(i int) r3.Vector {
		return r3.Vector{
			X: float64(dec.Vertices[3*i]),
			Y: float64(dec.Vertices[3*i+1]),
			Z: float64(dec.Vertices[3*i+2]),
		}
	}
	normalAt := func(i int) r3.Vector {
		if i < 0 || 3*i+2 >= len(dec.Normals) {
			return r3.Vector{}
		}
		return r3.Vector{
			X: float64(dec.Normals[3*i]),
			Y: float64(dec.Normals[3*i+1]),
			Z: float64(dec.Normals[3*i+2]),
		}
	}
	uvAt := func(i int) [2]float64 {
		if i < 0 || 2*i+1 >= len(dec.Uvs) {
			return [2]float64{}
		}
		return [2]float64{float64(dec.Uvs[2*i]), float64(dec.Uvs[2*i+1])}
	}

	var triangles []Triangle
	for _, object := range dec.Objects {
		for _, face := range object.Faces {
			if len(face.Vertices) < 3 {
				continue
			}
			for k := 1; k+1 < len(face.Vertices); k++ {
				idx := [3]int{0, k, k + 1}
				var tri Triangle
				for c, fi := range idx {
					tri.P[c] = vertexAt(face.Vertices[fi])
					if len(face.Normals) == len(face.Vertices) {
						tri.N[c] = normalAt(face.Normals[fi])
					}
					if len(face.Uvs) == len(face.Vertices) {
						tri.UV[c] = uvAt(face.Uvs[fi])
					}
				}
				triangles = append(triangles, tri)
			}
		}
	}
	return triangles
}

func (m *Mesh) computeBounds() {
	m.min = r3.Vector{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	m.max = m.min.Mul(-1)
	for _, tri := range m.Triangles {
		for _, p := range tri.P {
			m.min.X = math.Min(m.min.X, p.X)
			m.min.Y = math.Min(m.min.Y, p.Y)
			m.min.Z = math.Min(m.min.Z, p.Z)
			m.max.X = math.Max(m.max.X, p.X)
			m.max.Y = math.Max(m.max.Y, p.Y)
			m.max.Z = math.Max(m.max.Z, p.Z)
		}
	}
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (min, max r3.Vector) {
	return m.min, m.max
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() r3.Vector {
	return m.min.Add(m.max).Mul(0.5)
}

// BoundingRadius returns the radius of the bounding sphere around Center.
func (m *Mesh) BoundingRadius() float64 {
	return m.max.Sub(m.min).Norm() / 2
}

// VertexCloud returns the mesh vertices as a point cloud, deduplicated by
// position. Used by the geometric placeholder finder.
func (m *Mesh) VertexCloud() pointcloud.PointCloud {
	cloud := pointcloud.NewBasicEmpty()
	for _, tri := range m.Triangles {
		for _, p := range tri.P {
			//nolint:errcheck
			cloud.Set(p, nil)
		}
	}
	return cloud
}
