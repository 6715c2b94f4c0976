package renderer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/engine"
	"github.com/Faultbox/panoview/internal/engine/camera"
	"github.com/Faultbox/panoview/internal/engine/model"
	"github.com/Faultbox/panoview/internal/engine/scene"
	"github.com/Faultbox/panoview/internal/engine/texture"
	"github.com/Faultbox/panoview/internal/logger"
)

// Engine adapts the GL renderer to the engine interfaces the viewer uses.
//
// Decoding runs on the caller's goroutine; GL uploads are handed to the
// render thread through Upload and run on the next Pump.
type Engine struct {
	r      *Renderer
	loader *texture.Loader

	mu      sync.Mutex
	pending []func()
	names   map[*Texture]string
}

var _ engine.Engine = (*Engine)(nil)

// NewEngine wraps r. loader may be nil.
func NewEngine(r *Renderer, loader *texture.Loader) *Engine {
	if loader == nil {
		loader = &texture.Loader{}
	}
	return &Engine{
		r:      r,
		loader: loader,
		names:  make(map[*Texture]string),
	}
}

// Renderer returns the underlying renderer.
func (e *Engine) Renderer() engine.Renderer {
	return e.r
}

// GL returns the concrete renderer.
func (e *Engine) GL() *Renderer {
	return e.r
}

// NewScene creates an empty scene.
func (e *Engine) NewScene() engine.Scene {
	return scene.New()
}

// NewCamera creates a perspective camera at the sphere center.
func (e *Engine) NewCamera(fov, aspect, near, far float32) engine.Camera {
	return camera.NewPerspective(fov, aspect, near, far)
}

// LoadTexture decodes url and uploads it on the render thread. The call
// blocks until the upload ran or ctx is done, so it must not be made from the
// render thread itself.
func (e *Engine) LoadTexture(ctx context.Context, url string) (engine.Texture, error) {
	img, err := e.loader.Load(ctx, url)
	if err != nil {
		return nil, err
	}

	var tex *Texture
	err = e.run(ctx, func() {
		fitted := texture.Fit(img, maxTextureSize())
		tex = uploadTexture(fitted)
	})
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", url, err)
	}

	e.mu.Lock()
	e.names[tex] = url
	e.mu.Unlock()

	logger.Info("panorama texture loaded",
		zap.String("src", url),
		zap.Int("width", tex.width),
		zap.Int("height", tex.height),
	)
	return tex, nil
}

// NewSphereMesh builds an inside-out sphere textured with tex.
func (e *Engine) NewSphereMesh(tex engine.Texture) (engine.Mesh, error) {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return nil, fmt.Errorf("texture %T was not created by this engine", tex)
	}

	e.mu.Lock()
	name := e.names[t]
	delete(e.names, t)
	e.mu.Unlock()

	geom := model.BuildSphere(model.DefaultSphereOptions(camera.SphereRadius))

	var (
		mesh *Mesh
		err  error
	)
	if runErr := e.run(context.Background(), func() {
		mesh, err = uploadMesh(name, geom, t)
	}); runErr != nil {
		return nil, runErr
	}
	if err != nil {
		return nil, err
	}
	return mesh, nil
}

// Release frees a mesh created by NewSphereMesh on the render thread.
func (e *Engine) Release(m engine.Mesh) {
	if mesh, ok := m.(*Mesh); ok {
		e.Submit(func() { DisposeMesh(mesh) })
	}
}

// Pump runs queued GL work. Call it from the render thread once per frame.
func (e *Engine) Pump() {
	e.mu.Lock()
	jobs := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, job := range jobs {
		job()
	}
}

// Submit queues job to run on the render thread at the next Pump.
func (e *Engine) Submit(job func()) {
	e.mu.Lock()
	e.pending = append(e.pending, job)
	e.mu.Unlock()
}

// run queues job for the render thread and waits for it.
func (e *Engine) run(ctx context.Context, job func()) error {
	done := make(chan struct{})
	e.Submit(func() {
		job()
		close(done)
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
