package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/engine"
	"github.com/Faultbox/panoview/internal/engine/model"
	"github.com/Faultbox/panoview/internal/logger"
)

// Texture is an RGBA image uploaded to the GPU.
type Texture struct {
	id     uint32
	width  int
	height int
}

var _ engine.Texture = (*Texture)(nil)

// Size returns the uploaded texture size in pixels.
func (t *Texture) Size() (int, int) {
	return t.width, t.height
}

// ID returns the OpenGL texture name.
func (t *Texture) ID() uint32 {
	return t.id
}

// Mesh is an uploaded sphere bound to its panorama texture.
type Mesh struct {
	name       string
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	texture    *Texture
}

var _ engine.Mesh = (*Mesh)(nil)

// Name returns the mesh name, usually the panorama source.
func (m *Mesh) Name() string {
	return m.name
}

func maxTextureSize() int {
	var size int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &size)
	return int(size)
}

// uploadTexture creates a mipmapped, horizontally repeating texture from img.
func uploadTexture(img *image.RGBA) *Texture {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &Texture{id: id, width: w, height: h}
}

// uploadMesh creates the VAO for a sphere. Layout is position (loc 0) then
// texture coordinates (loc 1).
func uploadMesh(name string, m *model.Mesh, tex *Texture) (*Mesh, error) {
	if len(m.Indices) == 0 {
		return nil, fmt.Errorf("mesh %q has no indices", name)
	}
	data := m.Interleave()

	out := &Mesh{
		name:       name,
		indexCount: int32(len(m.Indices)),
		texture:    tex,
	}

	gl.GenVertexArrays(1, &out.vao)
	gl.BindVertexArray(out.vao)

	gl.GenBuffers(1, &out.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, out.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	gl.GenBuffers(1, &out.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, out.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	const stride = 5 * 4
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	logger.Debug("sphere mesh uploaded",
		zap.String("name", name),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int32("indices", out.indexCount),
	)

	return out, nil
}

// DisposeMesh frees the mesh buffers and its texture.
func DisposeMesh(m *Mesh) {
	if m == nil {
		return
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	if m.texture != nil && m.texture.id != 0 {
		gl.DeleteTextures(1, &m.texture.id)
	}
	*m = Mesh{name: m.name}
}
