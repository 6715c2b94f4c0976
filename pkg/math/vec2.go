// Package math provides the float32 vector and matrix types shared by the
// camera, renderer and overlay packages.
package math

// Vec2 is a 2D point, used for viewport coordinates.
type Vec2 struct {
	X, Y float32
}
