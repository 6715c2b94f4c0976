package model

import (
	gomath "math"
)

// Default sphere tessellation for panoramas.
const (
	DefaultWidthSegments  = 60
	DefaultHeightSegments = 40
)

// SphereOptions configures BuildSphere.
type SphereOptions struct {
	Radius         float32
	WidthSegments  int // Around the equator, minimum 3
	HeightSegments int // Pole to pole, minimum 2
	// InsideOut mirrors X so the texture reads correctly from the center.
	InsideOut bool
}

// DefaultSphereOptions returns the panorama sphere used by the viewer.
func DefaultSphereOptions(radius float32) SphereOptions {
	return SphereOptions{
		Radius:         radius,
		WidthSegments:  DefaultWidthSegments,
		HeightSegments: DefaultHeightSegments,
		InsideOut:      true,
	}
}

// BuildSphere creates a UV sphere with equirectangular texture coordinates.
//
// Longitude u runs 0..1 around Y starting at -X, latitude v runs 0..1 from the
// north pole. Rows share seam vertices so the texture does not wrap mid-face.
func BuildSphere(opts SphereOptions) *Mesh {
	ws := opts.WidthSegments
	if ws < 3 {
		ws = 3
	}
	hs := opts.HeightSegments
	if hs < 2 {
		hs = 2
	}

	mirror := float32(1)
	if opts.InsideOut {
		mirror = -1
	}

	mesh := &Mesh{
		Vertices: make([]Vertex, 0, (ws+1)*(hs+1)),
		Indices:  make([]uint32, 0, ws*hs*6),
		Bounds: Bounds{
			Min: [3]float32{1e10, 1e10, 1e10},
			Max: [3]float32{-1e10, -1e10, -1e10},
		},
	}

	r := float64(opts.Radius)
	for y := 0; y <= hs; y++ {
		v := float64(y) / float64(hs)
		sinTheta, cosTheta := gomath.Sincos(v * gomath.Pi)

		for x := 0; x <= ws; x++ {
			u := float64(x) / float64(ws)
			sinPhi, cosPhi := gomath.Sincos(u * 2 * gomath.Pi)

			pos := [3]float32{
				mirror * float32(-r*cosPhi*sinTheta),
				float32(r * cosTheta),
				float32(r * sinPhi * sinTheta),
			}
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: pos,
				TexCoord: [2]float32{float32(u), float32(v)},
			})
			updateBounds(&mesh.Bounds, pos)
		}
	}

	row := uint32(ws + 1)
	for y := 0; y < hs; y++ {
		for x := 0; x < ws; x++ {
			a := uint32(y)*row + uint32(x) + 1
			b := uint32(y)*row + uint32(x)
			c := uint32(y+1)*row + uint32(x)
			d := uint32(y+1)*row + uint32(x) + 1

			// Skip the degenerate triangle at each pole
			if y != 0 {
				mesh.Indices = append(mesh.Indices, a, b, d)
			}
			if y != hs-1 {
				mesh.Indices = append(mesh.Indices, b, c, d)
			}
		}
	}

	return mesh
}

// Interleave flattens vertices into position(3) + texcoord(2) floats.
func (m *Mesh) Interleave() []float32 {
	out := make([]float32, 0, len(m.Vertices)*5)
	for _, v := range m.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.TexCoord[0], v.TexCoord[1],
		)
	}
	return out
}
