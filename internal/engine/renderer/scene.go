package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/starview/internal/catalog"
	"github.com/Faultbox/starview/internal/nav/session"
)

// floatsPerVertex is position (3), color (3), radius (1).
const floatsPerVertex = 7

var (
	starColor   = mgl32.Vec3{1, 0.95, 0.8}
	planetColor = mgl32.Vec3{0.7, 0.7, 0.75}
	placeholder = mgl32.Vec3{1, 0, 1}
)

// Body is a catalog object reduced to what the point renderer needs.
type Body struct {
	Name   string
	World  mgl64.Vec3
	Color  mgl32.Vec3
	Radius float32
}

// BodiesFromCatalog flattens c for drawing. Bodies without a diameter use
// their size as radius.
func BodiesFromCatalog(c *catalog.Catalog) []Body {
	if c == nil {
		return nil
	}
	bodies := make([]Body, 0, c.Len())
	for _, o := range c.Objects() {
		color, ok := o.RGB()
		switch {
		case o.Placeholder:
			color = placeholder
		case !ok && o.Star:
			color = starColor
		case !ok:
			color = planetColor
		}
		radius := o.Diameter / 2
		if radius <= 0 {
			radius = o.Size
		}
		bodies = append(bodies, Body{
			Name:   o.Name,
			World:  o.World,
			Color:  color,
			Radius: float32(radius),
		})
	}
	return bodies
}

// Vertices writes one vertex per body into dst, positioned relative to the
// camera. Offsets are taken in float64 so float32 keeps its precision near
// the camera even when the scene spans millions of units.
func Vertices(bodies []Body, camera mgl64.Vec3, dst []float32) []float32 {
	dst = dst[:0]
	for _, b := range bodies {
		rel := b.World.Sub(camera)
		dst = append(dst,
			float32(rel.X()), float32(rel.Y()), float32(rel.Z()),
			b.Color.X(), b.Color.Y(), b.Color.Z(),
			b.Radius,
		)
	}
	return dst
}

// ViewMatrix is the inverse of the camera rotation. Translation is left out
// because vertices are already camera-relative.
func ViewMatrix(orientation mgl64.Quat) mgl32.Mat4 {
	return toMat4f(orientation.Inverse().Mat4())
}

// ProjectionMatrix builds the perspective matrix for p.
func ProjectionMatrix(p session.Projection) mgl32.Mat4 {
	aspect := p.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return toMat4f(mgl64.Perspective(mgl64.DegToRad(p.FOV), aspect, p.Near, p.Far))
}

// PixelsPerUnit is how many pixels one world unit spans at distance one,
// for a viewport height in pixels.
func PixelsPerUnit(p session.Projection, height int) float32 {
	return float32(float64(height) / (2 * math.Tan(mgl64.DegToRad(p.FOV)/2)))
}

func toMat4f(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}
