// Package engine declares the rendering-engine surface the viewer consumes.
//
// The viewer never builds geometry or touches GPU state itself; it asks an
// Engine for scenes, cameras, textures and meshes and drives them through
// these interfaces. internal/engine/renderer provides the OpenGL
// implementation.
package engine

import (
	"context"

	"github.com/Faultbox/panoview/pkg/math"
)

// Mesh is an opaque handle to a renderable resource owned by the engine.
type Mesh interface {
	Name() string
}

// Texture is an opaque handle to an uploaded image.
type Texture interface {
	Size() (width, height int)
}

// Scene is the engine's scene-graph container.
type Scene interface {
	Add(m Mesh)
	Remove(m Mesh)
	Contains(m Mesh) bool
	Meshes() []Mesh
}

// Camera is the engine camera the frame loop orients every tick.
type Camera interface {
	SetAspect(aspect float32)
	SetFieldOfView(fov float32)
	UpdateProjectionMatrix()
	LookAt(target math.Vec3)
	Position() math.Vec3
	ViewProjection() math.Mat4
}

// Renderer draws a scene from a camera and owns the per-frame callback.
type Renderer interface {
	SetPixelRatio(ratio float32)
	SetSize(width, height int)
	// SetAnimationLoop registers fn to run once per frame. nil stops the loop.
	SetAnimationLoop(fn func())
	Render(s Scene, c Camera)
}

// TextureLoader turns an image path or URL into a texture.
type TextureLoader interface {
	LoadTexture(ctx context.Context, url string) (Texture, error)
}

// MeshFactory builds inside-out sphere meshes for panoramas.
type MeshFactory interface {
	NewSphereMesh(tex Texture) (Mesh, error)
}

// Engine bundles everything the viewer needs from a rendering backend.
type Engine interface {
	TextureLoader
	MeshFactory

	NewScene() Scene
	NewCamera(fov, aspect, near, far float32) Camera
	Renderer() Renderer
}

// Container is the surface the viewer attaches to, e.g. a window.
type Container interface {
	Size() (width, height int)
	PixelRatio() float32
}
