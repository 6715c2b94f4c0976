// Package renderer provides the OpenGL implementation of the viewer's
// rendering engine.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/engine"
	"github.com/Faultbox/panoview/internal/engine/shader"
	"github.com/Faultbox/panoview/internal/logger"
	"github.com/Faultbox/panoview/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	MarkerSize float32 // Pin marker diameter in pixels
}

// Marker is a colored point drawn over the panorama.
type Marker struct {
	Position math.Vec3
	Color    [4]float32
}

// Renderer handles all OpenGL rendering. All methods must be called from the
// thread that owns the GL context.
type Renderer struct {
	config     Config
	pixelRatio float32

	loop func()

	panoProgram  uint32
	locViewProj  int32
	locTexture   int32
	markerProg   uint32
	locMarkerVP  int32
	locPointSize int32

	markerVAO   uint32
	markerVBO   uint32
	markerCount int32
}

var _ engine.Renderer = (*Renderer)(nil)

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if cfg.MarkerSize <= 0 {
		cfg.MarkerSize = 14
	}
	r := &Renderer{
		config:     cfg,
		pixelRatio: 1,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	// The camera sits inside the sphere; no depth buffer needed for one mesh
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.ClearColor(0, 0, 0, 1)

	var err error
	r.panoProgram, err = shader.CompileProgram(shader.PanoramaVertex, shader.PanoramaFragment)
	if err != nil {
		return nil, fmt.Errorf("panorama shader: %w", err)
	}
	r.locViewProj = shader.GetUniform(r.panoProgram, "uViewProj")
	r.locTexture = shader.GetUniform(r.panoProgram, "uTexture")

	r.markerProg, err = shader.CompileProgram(shader.MarkerVertex, shader.MarkerFragment)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("marker shader: %w", err)
	}
	r.locMarkerVP = shader.GetUniform(r.markerProg, "uViewProj")
	r.locPointSize = shader.GetUniform(r.markerProg, "uPointSize")

	r.createMarkerBuffers()
	r.SetSize(cfg.Width, cfg.Height)

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.loop = nil
	if r.markerVAO != 0 {
		gl.DeleteVertexArrays(1, &r.markerVAO)
	}
	if r.markerVBO != 0 {
		gl.DeleteBuffers(1, &r.markerVBO)
	}
	if r.panoProgram != 0 {
		gl.DeleteProgram(r.panoProgram)
	}
	if r.markerProg != 0 {
		gl.DeleteProgram(r.markerProg)
	}
}

// SetPixelRatio sets the drawable-to-window scale for HiDPI displays.
func (r *Renderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		ratio = 1
	}
	r.pixelRatio = ratio
	r.applyViewport()
}

// SetSize handles window resize. Sizes are in window points.
func (r *Renderer) SetSize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	r.applyViewport()
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Float32("pixelRatio", r.pixelRatio),
	)
}

func (r *Renderer) applyViewport() {
	w := int32(float32(r.config.Width) * r.pixelRatio)
	h := int32(float32(r.config.Height) * r.pixelRatio)
	gl.Viewport(0, 0, w, h)
}

// SetAnimationLoop registers the per-frame callback run by Frame.
func (r *Renderer) SetAnimationLoop(fn func()) {
	r.loop = fn
}

// Frame runs the animation-loop callback once. The host calls it once per
// display refresh, before swapping buffers. Returns false if no loop is set.
func (r *Renderer) Frame() bool {
	if r.loop == nil {
		return false
	}
	r.loop()
	return true
}

// Render draws every mesh in s, then the pin markers, from camera c.
func (r *Renderer) Render(s engine.Scene, c engine.Camera) {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if s == nil || c == nil {
		return
	}

	vp := c.ViewProjection()

	gl.UseProgram(r.panoProgram)
	gl.UniformMatrix4fv(r.locViewProj, 1, false, vp.Ptr())
	gl.Uniform1i(r.locTexture, 0)
	gl.ActiveTexture(gl.TEXTURE0)

	for _, m := range s.Meshes() {
		mesh, ok := m.(*Mesh)
		if !ok || mesh.vao == 0 {
			continue
		}
		if mesh.texture != nil {
			gl.BindTexture(gl.TEXTURE_2D, mesh.texture.id)
		}
		gl.BindVertexArray(mesh.vao)
		gl.DrawElements(gl.TRIANGLES, mesh.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)

	if r.markerCount > 0 {
		gl.UseProgram(r.markerProg)
		gl.UniformMatrix4fv(r.locMarkerVP, 1, false, vp.Ptr())
		gl.Uniform1f(r.locPointSize, r.config.MarkerSize*r.pixelRatio)
		gl.BindVertexArray(r.markerVAO)
		gl.DrawArrays(gl.POINTS, 0, r.markerCount)
		gl.BindVertexArray(0)
	}
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width = int(float32(r.config.Width) * r.pixelRatio)
	height = int(float32(r.config.Height) * r.pixelRatio)
	pixels = make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels, width, height
	}

	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}

// SetMarkers replaces the pin markers drawn each frame.
func (r *Renderer) SetMarkers(markers []Marker) {
	data := make([]float32, 0, len(markers)*7)
	for _, m := range markers {
		data = append(data,
			m.Position.X, m.Position.Y, m.Position.Z,
			m.Color[0], m.Color[1], m.Color[2], m.Color[3],
		)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, r.markerVBO)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	r.markerCount = int32(len(markers))
}

func (r *Renderer) createMarkerBuffers() {
	gl.GenVertexArrays(1, &r.markerVAO)
	gl.BindVertexArray(r.markerVAO)

	gl.GenBuffers(1, &r.markerVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.markerVBO)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 7*4, nil)
	gl.EnableVertexAttribArray(0)

	// Color attribute (location = 1)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, 7*4, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	logger.Debug("marker buffers created",
		zap.Uint32("vao", r.markerVAO),
		zap.Uint32("vbo", r.markerVBO),
	)
}
