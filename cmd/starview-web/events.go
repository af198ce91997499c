package main

import (
	"github.com/Faultbox/starview/internal/catalog"
	"github.com/Faultbox/starview/internal/nav/input"
)

// wheelEvent builds a notch from a DOM wheel event. hovered is false when
// elementFromPoint found nothing under the pointer; cursor is the computed
// cursor style of the hovered element.
func wheelEvent(deltaY float64, shift, hovered bool, cursor string) input.WheelEvent {
	return input.WheelEvent{
		DeltaY:      deltaY,
		Modifier:    shift,
		OverControl: !hovered || cursor == "pointer",
	}
}

// sceneEntries flattens a catalog into plain values the page's scene bridge
// can consume, in selection-menu order.
func sceneEntries(c *catalog.Catalog) []any {
	menu := c.Menu()
	out := make([]any, 0, len(menu))
	for _, o := range menu {
		radius := o.Size
		if o.Diameter > 0 {
			radius = o.Diameter / 2
		}
		out = append(out, map[string]any{
			"name":        o.Name,
			"parent":      o.RelativeTo,
			"position":    []any{o.World.X(), o.World.Y(), o.World.Z()},
			"radius":      radius,
			"size":        o.Size,
			"color":       o.Color,
			"model":       o.Model,
			"texture":     o.Texture,
			"ringTexture": o.RingTexture,
			"star":        o.Star,
			"brightness":  o.Brightness,
			"placeholder": o.Placeholder,
		})
	}
	return out
}
