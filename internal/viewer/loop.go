package viewer

import (
	"sync"
	"time"

	"github.com/Faultbox/panoview/internal/engine"
	"github.com/Faultbox/panoview/internal/engine/camera"
	"github.com/Faultbox/panoview/pkg/math"
)

// Pose is the camera state recorded by the last rendered frame.
type Pose struct {
	Position    math.Vec3 // Camera position, the sphere center
	Target      math.Vec3 // Look-at point on the sphere
	Lon, Lat    float32
	FieldOfView float32
	Time        time.Time
}

// FrameLoop advances the damped orientation and renders one frame per Tick.
//
// Tick runs on the render thread and does no I/O. The mutex only guards
// against readers on other goroutines (pose queries, navigation).
type FrameLoop struct {
	mu          sync.Mutex
	orientation *camera.Orientation
	damping     float32
	dirty       bool

	scene    func() engine.Scene
	camera   engine.Camera
	renderer engine.Renderer
	now      func() time.Time

	pose    Pose
	hasPose bool
}

// NewFrameLoop creates a loop rendering scene() from cam.
func NewFrameLoop(o *camera.Orientation, damping float32, scene func() engine.Scene,
	cam engine.Camera, r engine.Renderer) *FrameLoop {
	return &FrameLoop{
		orientation: o,
		damping:     damping,
		scene:       scene,
		camera:      cam,
		renderer:    r,
		now:         time.Now,
	}
}

// Update runs fn with exclusive access to the orientation.
func (l *FrameLoop) Update(fn func(o *camera.Orientation)) {
	l.mu.Lock()
	fn(l.orientation)
	l.mu.Unlock()
}

// InvalidateProjection makes the next Tick rebuild the projection matrix.
func (l *FrameLoop) InvalidateProjection() {
	l.mu.Lock()
	l.dirty = true
	l.mu.Unlock()
}

// Tick is the animation-loop body.
func (l *FrameLoop) Tick() {
	l.mu.Lock()
	l.orientation.Step(l.damping)
	o := *l.orientation
	dirty := l.dirty
	l.dirty = false
	l.mu.Unlock()

	target := camera.LookAt(o)
	l.camera.LookAt(target)
	if dirty {
		l.camera.UpdateProjectionMatrix()
	}

	if s := l.scene(); s != nil {
		l.renderer.Render(s, l.camera)
	}

	pose := Pose{
		Position:    l.camera.Position(),
		Target:      target,
		Lon:         o.Lon,
		Lat:         o.Lat,
		FieldOfView: o.FieldOfView,
		Time:        l.now(),
	}

	l.mu.Lock()
	l.pose = pose
	l.hasPose = true
	l.mu.Unlock()
}

// Pose returns the pose of the last frame. ok is false before the first Tick.
func (l *FrameLoop) Pose() (p Pose, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pose, l.hasPose
}
