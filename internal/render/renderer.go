// Package render draws a particle frame as anti-aliased point sprites with
// OpenGL 4.1 core.
//
// All methods must be called on the thread that owns the current GL context,
// after gl.Init.
package render

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/sim"
)

// glContextLost is GL_CONTEXT_LOST. It is core only from 4.5 and therefore
// absent from the 4.1 bindings, but drivers report it regardless.
const glContextLost = 0x0507

// maxErrorDrain bounds the glGetError loop; a lost context may report
// errors forever.
const maxErrorDrain = 16

type Options struct {
	PointScale float32
	Background mgl32.Vec4
}

func DefaultOptions() Options {
	return Options{
		PointScale: 1,
		Background: mgl32.Vec4{0.02, 0.02, 0.035, 1},
	}
}

func (o Options) withDefaults() Options {
	if o.PointScale <= 0 {
		o.PointScale = 1
	}
	return o
}

type buffers struct {
	position uint32
	color    uint32
	size     uint32
}

type uniforms struct {
	resolution int32
	camera     int32
	zoom       int32
	pointScale int32
}

type Renderer struct {
	opts     Options
	program  uint32
	vao      uint32
	vbo      buffers
	loc      uniforms
	width    int32
	height   int32
	disposed bool
}

// New builds the shader program and vertex state for a width x height
// framebuffer. On failure every GL object created so far is deleted.
func New(width, height int, opts Options) (*Renderer, error) {
	r := &Renderer{opts: opts.withDefaults()}
	if err := r.init(); err != nil {
		r.release()
		return nil, err
	}
	r.Resize(width, height)
	return r, nil
}

func (r *Renderer) init() error {
	var err error
	if r.program, err = linkProgram(vertexSource, fragmentSource); err != nil {
		return err
	}

	for _, u := range []struct {
		name string
		dst  *int32
	}{
		{uniformResolution, &r.loc.resolution},
		{uniformCamera, &r.loc.camera},
		{uniformZoom, &r.loc.zoom},
		{uniformPointScale, &r.loc.pointScale},
	} {
		if *u.dst, err = uniformLocation(r.program, u.name); err != nil {
			return err
		}
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	r.vbo.position = newAttribBuffer(attribPosition, 2)
	r.vbo.color = newAttribBuffer(attribColor, 3)
	r.vbo.size = newAttribBuffer(attribSize, 1)
	gl.BindVertexArray(0)

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)

	if err = drainErrors(); err != nil {
		return fmt.Errorf("renderer init: %w", err)
	}
	return nil
}

func newAttribBuffer(loc uint32, components int32) uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(loc)
	gl.VertexAttribPointer(loc, components, gl.FLOAT, false, 0, gl.PtrOffset(0))
	return vbo
}

// Resize updates the viewport. Zero or negative sizes (a minimized window)
// are kept out of the resolution uniform.
func (r *Renderer) Resize(width, height int) {
	if r.disposed || width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = int32(width), int32(height)
	gl.Viewport(0, 0, r.width, r.height)
}

// SetPointScale changes the global point size multiplier from the next frame
// on. Non-positive scales are ignored.
func (r *Renderer) SetPointScale(s float32) {
	if !(s > 0) {
		return
	}
	r.opts.PointScale = s
}

func (r *Renderer) PointScale() float32 { return r.opts.PointScale }

// Render clears the framebuffer and draws every particle in f as one point
// list. Buffers are re-specified with BufferData each frame so the driver can
// orphan the previous storage instead of stalling on it.
func (r *Renderer) Render(f sim.Frame, cam mgl32.Vec2, zoom float32) error {
	if r.disposed {
		return dynamo.ErrDisposed
	}

	bg := r.opts.Background
	gl.ClearColor(bg.X(), bg.Y(), bg.Z(), bg.W())
	gl.Clear(gl.COLOR_BUFFER_BIT)

	if f.Count > 0 && r.width > 0 && r.height > 0 {
		gl.UseProgram(r.program)
		gl.Uniform2f(r.loc.resolution, float32(r.width), float32(r.height))
		gl.Uniform2f(r.loc.camera, cam.X(), cam.Y())
		gl.Uniform1f(r.loc.zoom, zoom)
		gl.Uniform1f(r.loc.pointScale, r.opts.PointScale)

		gl.BindVertexArray(r.vao)
		upload(r.vbo.position, f.Positions[:f.Count*2])
		upload(r.vbo.color, f.Colors[:f.Count*3])
		upload(r.vbo.size, f.Sizes[:f.Count])
		gl.DrawArrays(gl.POINTS, 0, int32(f.Count))
		gl.BindVertexArray(0)
	}

	return drainErrors()
}

func upload(vbo uint32, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_DRAW)
}

// Dispose deletes every GL object. It is safe to call more than once.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.release()
	r.disposed = true
}

func (r *Renderer) release() {
	for _, vbo := range []*uint32{&r.vbo.position, &r.vbo.color, &r.vbo.size} {
		if *vbo != 0 {
			gl.DeleteBuffers(1, vbo)
			*vbo = 0
		}
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}

func drainErrors() error {
	codes := make([]uint32, 0, 1)
	for i := 0; i < maxErrorDrain; i++ {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		codes = append(codes, code)
	}
	return classifyErrors(codes)
}

// classifyErrors maps glGetError codes to an error. A lost context or
// exhausted GPU memory is fatal; other codes are reported but recoverable.
func classifyErrors(codes []uint32) error {
	var first uint32
	for _, code := range codes {
		switch code {
		case glContextLost:
			return fmt.Errorf("%w: GL_CONTEXT_LOST", dynamo.ErrContextLost)
		case gl.OUT_OF_MEMORY:
			return fmt.Errorf("%w: GL_OUT_OF_MEMORY", dynamo.ErrContextLost)
		}
		if first == 0 {
			first = code
		}
	}
	if first != 0 {
		return &GLError{Code: first}
	}
	return nil
}

// GLError is a non-fatal glGetError code.
type GLError struct {
	Code uint32
}

func (e *GLError) Error() string {
	return fmt.Sprintf("render: gl error 0x%04x", e.Code)
}
