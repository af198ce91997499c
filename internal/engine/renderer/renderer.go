// Package renderer draws the catalog bodies with OpenGL. It implements
// session.Renderer for the native viewer.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/starview/internal/catalog"
	"github.com/Faultbox/starview/internal/engine/shader"
	"github.com/Faultbox/starview/internal/logger"
	"github.com/Faultbox/starview/internal/nav/session"
)

const vertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;
layout (location = 2) in float aRadius;

uniform mat4 uView;
uniform mat4 uProjection;
uniform float uPixelsPerUnit;

out vec3 vColor;

void main() {
	vec4 viewPos = uView * vec4(aPos, 1.0);
	gl_Position = uProjection * viewPos;
	float dist = max(-viewPos.z, 0.001);
	gl_PointSize = clamp(2.0 * aRadius * uPixelsPerUnit / dist, 2.0, 64.0);
	vColor = aColor;
}
`

const fragmentShader = `
#version 410 core

in vec3 vColor;
out vec4 FragColor;

void main() {
	vec2 c = gl_PointCoord * 2.0 - 1.0;
	if (dot(c, c) > 1.0) {
		discard;
	}
	FragColor = vec4(vColor, 1.0);
}
`

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer draws bodies as round, distance-scaled points.
type Renderer struct {
	config  Config
	log     *zap.Logger
	program *shader.Program
	vao     uint32
	vbo     uint32

	bodies   []Body
	vertices []float32

	camera      mgl64.Vec3
	orientation mgl64.Quat
	projection  session.Projection
}

// New creates a renderer. The OpenGL context must already exist.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:      cfg,
		log:         logger.Named("renderer"),
		orientation: mgl64.QuatIdent(),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.ClearColor(0.0, 0.0, 0.02, 1.0)

	var err error
	r.program, err = shader.Compile(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 1, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close frees GL resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize sets the viewport to the drawable size.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// SetScene replaces the drawn bodies.
func (r *Renderer) SetScene(c *catalog.Catalog) {
	r.bodies = BodiesFromCatalog(c)
	r.log.Debug("scene updated", zap.Int("bodies", len(r.bodies)))
}

func (r *Renderer) SetCamera(position mgl64.Vec3, orientation mgl64.Quat) {
	r.camera = position
	r.orientation = orientation
}

func (r *Renderer) SetProjection(p session.Projection) {
	r.projection = p
}

// Redraw draws one frame into the back buffer.
func (r *Renderer) Redraw() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if len(r.bodies) == 0 {
		return
	}

	r.vertices = Vertices(r.bodies, r.camera, r.vertices)
	view := ViewMatrix(r.orientation)
	proj := ProjectionMatrix(r.projection)

	r.program.Use()
	gl.UniformMatrix4fv(r.program.Uniform("uView"), 1, false, &view[0])
	gl.UniformMatrix4fv(r.program.Uniform("uProjection"), 1, false, &proj[0])
	gl.Uniform1f(r.program.Uniform("uPixelsPerUnit"), PixelsPerUnit(r.projection, r.config.Height))

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.vertices)*4, gl.Ptr(r.vertices), gl.STREAM_DRAW)
	gl.DrawArrays(gl.POINTS, 0, int32(len(r.bodies)))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// ReadPixels reads the last drawn frame back from the back buffer as
// bottom-up RGBA rows. Call it after Redraw and before the buffers swap.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	if width <= 0 || height <= 0 {
		return nil, width, height
	}
	pixels = make([]byte, width*height*4)
	gl.ReadBuffer(gl.BACK)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}
