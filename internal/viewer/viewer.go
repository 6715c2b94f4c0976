// Package viewer drives a 360° panorama: drag to look around, wheel to zoom,
// swap the displayed panorama, and report the camera pose to overlays.
package viewer

import (
	"context"
	"errors"
	"fmt"
	gomath "math"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/engine"
	"github.com/Faultbox/panoview/internal/engine/camera"
	"github.com/Faultbox/panoview/internal/engine/input"
	"github.com/Faultbox/panoview/internal/logger"
	"github.com/Faultbox/panoview/pkg/math"
)

// Camera clip planes. The sphere radius sits well inside them.
const (
	NearPlane = 1.0
	FarPlane  = 1100.0
)

var (
	// ErrNoContainer is returned by Init without a container.
	ErrNoContainer = errors.New("viewer: container is required")
	// ErrAlreadyInitialized is returned by a second Init.
	ErrAlreadyInitialized = errors.New("viewer: already initialized")
)

// Option configures a Viewer.
type Option func(*Viewer)

// WithDamping sets the per-frame damping factor, in (0, 1].
func WithDamping(k float32) Option {
	return func(v *Viewer) {
		if k > 0 && k <= 1 {
			v.damping = k
		}
	}
}

// WithDragSensitivity sets degrees per dragged pixel on both axes.
func WithDragSensitivity(s float32) Option {
	return func(v *Viewer) {
		v.controls.SensitivityX = s
		v.controls.SensitivityY = s
	}
}

// WithZoomSensitivity sets degrees of field of view per wheel pixel.
func WithZoomSensitivity(s float32) Option {
	return func(v *Viewer) {
		v.controls.ZoomSensitivity = s
	}
}

// WithFieldOfView sets the initial field of view.
func WithFieldOfView(fov float32) Option {
	return func(v *Viewer) {
		v.orientation.FieldOfView = math.Clamp(fov, camera.MinFieldOfView, camera.MaxFieldOfView)
	}
}

// Viewer owns one camera orientation and the scene it renders. Several
// viewers can coexist; none of their state is global.
type Viewer struct {
	eng         engine.Engine
	log         *zap.Logger
	orientation *camera.Orientation
	controls    *Controls
	mediator    *Mediator
	damping     float32

	mu        sync.Mutex
	container engine.Container
	camera    engine.Camera
	loop      *FrameLoop
	started   bool
}

// New creates a viewer on top of eng. Nothing is rendered until Init.
func New(eng engine.Engine, opts ...Option) *Viewer {
	log := logger.Named("viewer")
	v := &Viewer{
		eng:         eng,
		log:         log,
		orientation: camera.NewOrientation(),
		controls:    NewControls(),
		mediator:    NewMediator(log),
		damping:     camera.DefaultDamping,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Init attaches the viewer to c, creates the scene and camera, and starts the
// frame loop. If c has no measurable size yet, the loop starts on the first
// resize event with a valid size.
func (v *Viewer) Init(c engine.Container) error {
	if c == nil {
		return ErrNoContainer
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.container != nil {
		return ErrAlreadyInitialized
	}

	width, height := c.Size()
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}

	v.container = c
	v.camera = v.eng.NewCamera(v.orientation.FieldOfView, aspect, NearPlane, FarPlane)
	v.mediator.SetScene(v.eng.NewScene())
	v.loop = NewFrameLoop(v.orientation, v.damping, v.mediator.Scene, v.camera, v.eng.Renderer())

	if width <= 0 || height <= 0 {
		v.log.Info("container has no size yet, deferring start",
			zap.Int("width", width),
			zap.Int("height", height),
		)
		return nil
	}

	v.start(width, height)
	return nil
}

// start sizes the renderer and registers the frame loop. Caller holds mu.
func (v *Viewer) start(width, height int) {
	r := v.eng.Renderer()
	r.SetPixelRatio(v.container.PixelRatio())
	v.applySize(width, height)
	r.SetAnimationLoop(v.loop.Tick)
	v.started = true

	v.log.Info("viewer started",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Float32("fov", v.orientation.FieldOfView),
	)
}

func (v *Viewer) applySize(width, height int) {
	v.eng.Renderer().SetSize(width, height)
	v.camera.SetAspect(float32(width) / float32(height))
	v.camera.UpdateProjectionMatrix()
}

// Close stops the frame loop.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.started {
		v.eng.Renderer().SetAnimationLoop(nil)
		v.started = false
	}
}

// Started reports whether the frame loop is registered.
func (v *Viewer) Started() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.started
}

// HandleEvent feeds one input event to the controls. Call it from the render
// thread between frames.
func (v *Viewer) HandleEvent(e input.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loop == nil {
		return
	}

	var effect Effect
	v.loop.Update(func(o *camera.Orientation) {
		effect = v.controls.Handle(o, e)
	})

	if effect.Has(EffectProjection) {
		v.camera.SetFieldOfView(v.fieldOfView())
		v.loop.InvalidateProjection()
	}
	if effect.Has(EffectResize) {
		v.resize(e.Width, e.Height)
	}
}

func (v *Viewer) fieldOfView() float32 {
	var fov float32
	v.loop.Update(func(o *camera.Orientation) { fov = o.FieldOfView })
	return fov
}

func (v *Viewer) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if !v.started {
		v.start(width, height)
		return
	}
	v.eng.Renderer().SetPixelRatio(v.container.PixelRatio())
	v.applySize(width, height)
}

// State returns the interaction state.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.controls.State()
}

// Orientation returns a snapshot of the camera orientation.
func (v *Viewer) Orientation() camera.Orientation {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loop == nil {
		return *v.orientation
	}
	var o camera.Orientation
	v.loop.Update(func(cur *camera.Orientation) { o = *cur })
	return o
}

// CreateMesh loads the panorama at url and wraps it in a sphere mesh. It
// blocks on I/O; do not call it from the render thread.
func (v *Viewer) CreateMesh(ctx context.Context, url string) (engine.Mesh, error) {
	tex, err := v.eng.LoadTexture(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("loading panorama %s: %w", url, err)
	}
	mesh, err := v.eng.NewSphereMesh(tex)
	if err != nil {
		return nil, fmt.Errorf("building sphere for %s: %w", url, err)
	}
	return mesh, nil
}

// AddScene shows mesh.
func (v *Viewer) AddScene(mesh engine.Mesh) {
	v.mediator.AddMesh(mesh)
}

// UpdateScene replaces old with mesh.
func (v *Viewer) UpdateScene(old, mesh engine.Mesh) {
	v.mediator.ReplaceMesh(old, mesh)
}

// RemoveMesh hides mesh. The caller still owns it.
func (v *Viewer) RemoveMesh(mesh engine.Mesh) {
	v.mediator.RemoveMesh(mesh)
}

// Pose returns the camera pose of the last rendered frame.
func (v *Viewer) Pose() (Pose, bool) {
	v.mu.Lock()
	loop := v.loop
	v.mu.Unlock()
	if loop == nil {
		return Pose{}, false
	}
	return loop.Pose()
}

// Project maps a world position to pixel coordinates in a width x height
// viewport using the current camera. ok is false for points behind the
// camera or before Init.
func (v *Viewer) Project(p math.Vec3, width, height int) (math.Vec2, bool) {
	v.mu.Lock()
	cam := v.camera
	v.mu.Unlock()
	if cam == nil {
		return math.Vec2{}, false
	}
	return cam.ViewProjection().Project(p, float32(width), float32(height))
}

// LookToward retargets the camera so the damped orientation turns to face p.
// Longitude takes the short way around from the current target.
func (v *Viewer) LookToward(p math.Vec3) {
	lon, lat := camera.OrientationFor(p)

	v.mu.Lock()
	defer v.mu.Unlock()

	apply := func(o *camera.Orientation) {
		o.SetTarget(nearestTurn(o.TargetLon, lon), lat)
	}
	if v.loop == nil {
		apply(v.orientation)
		return
	}
	v.loop.Update(apply)
}

// nearestTurn returns lon shifted by whole turns to lie within 180° of from.
func nearestTurn(from, lon float32) float32 {
	turns := gomath.Round(float64(from-lon) / 360)
	return lon + float32(turns)*360
}
