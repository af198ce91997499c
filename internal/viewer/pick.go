package viewer

import (
	"math"

	"github.com/Faultbox/starview/internal/engine/input"
	"github.com/Faultbox/starview/internal/engine/picking"
	nav "github.com/Faultbox/starview/internal/nav/input"
)

const (
	// clickSlop is how far, in pixels, the pointer may travel between press
	// and release for the press to still count as a click.
	clickSlop = 4
	// pickPixels is the smallest on-screen radius a body can be clicked at.
	pickPixels = 6
)

// clicker tells primary-button clicks apart from drags.
type clicker struct {
	down   bool
	travel float64
}

// observe returns true when e releases a click.
func (c *clicker) observe(e input.Event) bool {
	switch e.Type {
	case input.EventPointerDown:
		if e.Button == nav.ButtonPrimary {
			c.down, c.travel = true, 0
		}
	case input.EventPointerMove:
		if c.down {
			c.travel += math.Abs(e.DX) + math.Abs(e.DY)
		}
	case input.EventPointerUp:
		if e.Button == nav.ButtonPrimary && c.down {
			c.down = false
			return c.travel <= clickSlop
		}
	case input.EventBlur:
		c.down = false
	}
	return false
}

// pick flies to the body under window pixel (x, y) of a w×h window. It
// returns false when the click hit empty space.
func (c *controls) pick(x, y float64, w, h int) bool {
	if len(c.menu) == 0 {
		return false
	}
	p := c.session.Pose()
	ray := picking.ScreenToRay(x, y, w, h, p.Position(), p.Orientation(), p.FieldOfView())

	targets := make([]picking.Target, len(c.menu))
	for i, o := range c.menu {
		radius := o.Size
		if o.Diameter > 0 {
			radius = o.Diameter / 2
		}
		targets[i] = picking.Target{Center: o.World, Radius: radius}
	}

	i := picking.Pick(ray, targets, pickPixels*picking.PixelAngle(p.FieldOfView(), h))
	if i < 0 {
		return false
	}
	c.selectTarget(i)
	return true
}
