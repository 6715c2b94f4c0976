package viewer

import (
	"context"
	"errors"
	"sync"

	"github.com/Faultbox/panoview/internal/engine"
	"github.com/Faultbox/panoview/internal/engine/camera"
	"github.com/Faultbox/panoview/internal/engine/scene"
	"github.com/Faultbox/panoview/pkg/math"
)

type fakeMesh struct{ name string }

func (m *fakeMesh) Name() string { return m.name }

type fakeTexture struct{ url string }

func (t *fakeTexture) Size() (int, int) { return 2, 1 }

// fakeCamera wraps a real perspective camera and counts projection updates.
type fakeCamera struct {
	*camera.Perspective
	fovSets       int
	projections   int
	lastLookAt    math.Vec3
	lookAtInvoked int
}

func (c *fakeCamera) SetFieldOfView(fov float32) {
	c.fovSets++
	c.Perspective.SetFieldOfView(fov)
}

func (c *fakeCamera) UpdateProjectionMatrix() {
	c.projections++
	c.Perspective.UpdateProjectionMatrix()
}

func (c *fakeCamera) LookAt(target math.Vec3) {
	c.lastLookAt = target
	c.lookAtInvoked++
	c.Perspective.LookAt(target)
}

type fakeRenderer struct {
	mu      sync.Mutex
	ratio   float32
	width   int
	height  int
	loop    func()
	renders int
	seen    [][]engine.Mesh
}

func (r *fakeRenderer) SetPixelRatio(ratio float32) { r.ratio = ratio }

func (r *fakeRenderer) SetSize(width, height int) {
	r.width, r.height = width, height
}

func (r *fakeRenderer) SetAnimationLoop(fn func()) {
	r.mu.Lock()
	r.loop = fn
	r.mu.Unlock()
}

func (r *fakeRenderer) Render(s engine.Scene, _ engine.Camera) {
	r.renders++
	r.seen = append(r.seen, s.Meshes())
}

// frame runs the registered loop once, like the host does per refresh.
func (r *fakeRenderer) frame() bool {
	r.mu.Lock()
	fn := r.loop
	r.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

type fakeEngine struct {
	renderer *fakeRenderer
	camera   *fakeCamera
	scene    *scene.Scene
	failLoad error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{renderer: &fakeRenderer{}}
}

func (e *fakeEngine) LoadTexture(ctx context.Context, url string) (engine.Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.failLoad != nil {
		return nil, e.failLoad
	}
	return &fakeTexture{url: url}, nil
}

func (e *fakeEngine) NewSphereMesh(tex engine.Texture) (engine.Mesh, error) {
	t, ok := tex.(*fakeTexture)
	if !ok {
		return nil, errors.New("foreign texture")
	}
	return &fakeMesh{name: t.url}, nil
}

func (e *fakeEngine) NewScene() engine.Scene {
	e.scene = scene.New()
	return e.scene
}

func (e *fakeEngine) NewCamera(fov, aspect, near, far float32) engine.Camera {
	e.camera = &fakeCamera{Perspective: camera.NewPerspective(fov, aspect, near, far)}
	return e.camera
}

func (e *fakeEngine) Renderer() engine.Renderer { return e.renderer }

type fakeContainer struct {
	width, height int
}

func (c *fakeContainer) Size() (int, int)    { return c.width, c.height }
func (c *fakeContainer) PixelRatio() float32 { return 2 }
