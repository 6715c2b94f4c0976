package camera

import (
	"sync"

	"github.com/Faultbox/panoview/pkg/math"
)

// Perspective is a perspective camera sitting at the origin of the panorama
// sphere. It satisfies engine.Camera.
//
// Projection changes are deferred until UpdateProjectionMatrix, mirroring how
// the renderer expects to be told when fov or aspect changed.
type Perspective struct {
	mu sync.Mutex

	fov    float32 // Degrees
	aspect float32
	near   float32
	far    float32

	position math.Vec3
	target   math.Vec3
	up       math.Vec3

	projection math.Mat4
	view       math.Mat4
}

// NewPerspective creates a camera with the given vertical field of view in
// degrees and clipping planes.
func NewPerspective(fov, aspect, near, far float32) *Perspective {
	c := &Perspective{
		fov:    fov,
		aspect: aspect,
		near:   near,
		far:    far,
		target: math.Vec3{X: 1},
		up:     math.Vec3{Y: 1},
	}
	c.UpdateProjectionMatrix()
	c.view = math.LookAt(c.position, c.target, c.up)
	return c
}

// FieldOfView returns the vertical field of view in degrees.
func (c *Perspective) FieldOfView() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

// Aspect returns width / height.
func (c *Perspective) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

// SetFieldOfView sets the vertical field of view in degrees.
func (c *Perspective) SetFieldOfView(fov float32) {
	c.mu.Lock()
	c.fov = fov
	c.mu.Unlock()
}

// SetAspect sets the aspect ratio. Non-positive values are ignored.
func (c *Perspective) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	c.aspect = aspect
	c.mu.Unlock()
}

// UpdateProjectionMatrix rebuilds the projection from fov, aspect and planes.
func (c *Perspective) UpdateProjectionMatrix() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = math.Perspective(math.Radians(c.fov), c.aspect, c.near, c.far)
}

// LookAt points the camera at target.
func (c *Perspective) LookAt(target math.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.view = math.LookAt(c.position, c.target, c.up)
}

// Position returns the camera position in world space.
func (c *Perspective) Position() math.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Target returns the point the camera currently looks at.
func (c *Perspective) Target() math.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// ViewProjection returns projection * view.
func (c *Perspective) ViewProjection() math.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection.Mul(c.view)
}
