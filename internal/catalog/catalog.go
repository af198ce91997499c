// Package catalog loads the list of bodies the camera can fly to and places
// them in the scene.
//
// A catalog document is a YAML (or JSON) list of bodies. Root bodies are
// spread around the origin at the distance given by position[0]; bodies
// with relative_to orbit their parent.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a body name is not in the catalog.
var ErrNotFound = errors.New("catalog: body not found")

// Body is one entry of a catalog document.
type Body struct {
	Name        string    `yaml:"name"`
	Position    []float64 `yaml:"position"`
	Size        float64   `yaml:"size"`
	Diameter    float64   `yaml:"diameter"`
	RelativeTo  string    `yaml:"relative_to"`
	Model       string    `yaml:"model"`
	Texture     string    `yaml:"texture"`
	RingTexture string    `yaml:"ring_texture"`
	Color       string    `yaml:"color"`
	Star        bool      `yaml:"star"`
	Brightness  float64   `yaml:"brightness"`
}

// RGB parses Color, a hex triplet with an optional '#' or "0x" prefix;
// short "#fff" forms are expanded. ok is false when there is no usable color.
func (b Body) RGB() (rgb mgl32.Vec3, ok bool) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(b.Color), "#"), "0x")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return rgb, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rgb, false
	}
	return mgl32.Vec3{
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, true
}

// Object is a placed body.
type Object struct {
	Body
	Index int
	World mgl64.Vec3
	// Placeholder is set when the body's model could not be loaded and a
	// plain sphere stands in for it. It stays selectable.
	Placeholder bool
}

// Catalog is an immutable, placed set of bodies.
type Catalog struct {
	objects  []*Object
	byName   map[string]*Object
	children map[string][]*Object
}

// Options controls placement.
type Options struct {
	// Seed drives the small random angular offset of root bodies.
	Seed uint64
	// Jitter is the maximum extra angle, in radians, for root bodies.
	Jitter float64
}

// DefaultOptions matches the stock layout.
func DefaultOptions() Options {
	return Options{Seed: 1, Jitter: 0.5}
}

// Load reads and places the catalog at path.
func Load(path string, opts Options) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data, opts)
}

// Parse decodes and places a catalog document.
func Parse(data []byte, opts Options) (*Catalog, error) {
	var bodies []Body
	if err := yaml.Unmarshal(data, &bodies); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	for i, b := range bodies {
		if b.Name == "" {
			return nil, fmt.Errorf("body %d: missing name", i)
		}
		if len(b.Position) > 3 {
			return nil, fmt.Errorf("body %q: position has %d components", b.Name, len(b.Position))
		}
	}
	return Place(bodies, opts), nil
}

// Place lays bodies out in document order. A body orbiting a parent is put
// at position[0] + 20 parent diameters from the parent's placed position,
// on an angle given by its index; a parent listed later than its child has
// not been placed yet and counts as the origin. A body naming an unknown
// parent keeps its raw position.
func Place(bodies []Body, opts Options) *Catalog {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	c := &Catalog{
		objects:  make([]*Object, 0, len(bodies)),
		byName:   make(map[string]*Object, len(bodies)),
		children: make(map[string][]*Object),
	}

	for i, b := range bodies {
		o := &Object{Body: b, Index: i}
		c.objects = append(c.objects, o)
		c.byName[b.Name] = o
	}

	placed := make(map[string]bool, len(bodies))
	n := float64(len(bodies))
	for i, o := range c.objects {
		raw := o.rawPosition()
		angle := float64(i) / n * 2 * math.Pi

		switch {
		case o.RelativeTo != "":
			parent, ok := c.byName[o.RelativeTo]
			if !ok {
				o.World = raw
				break
			}
			var origin mgl64.Vec3
			if placed[parent.Name] {
				origin = parent.World
			}
			dist := raw.X() + parent.Diameter*20
			o.World = mgl64.Vec3{
				origin.X() + math.Cos(angle)*dist,
				origin.Y(),
				origin.Z() + math.Sin(angle)*dist,
			}
			c.children[parent.Name] = append(c.children[parent.Name], o)
		default:
			angle += rng.Float64() * opts.Jitter
			dist := raw.X()
			o.World = mgl64.Vec3{math.Cos(angle) * dist, 0, math.Sin(angle) * dist}
		}
		placed[o.Name] = true
	}
	return c
}

func (o *Object) rawPosition() mgl64.Vec3 {
	var v mgl64.Vec3
	copy(v[:], o.Position)
	return v
}

// Len returns the number of bodies.
func (c *Catalog) Len() int { return len(c.objects) }

// Objects returns the bodies in document order.
func (c *Catalog) Objects() []*Object { return c.objects }

// Lookup finds a body by name.
func (c *Catalog) Lookup(name string) (*Object, error) {
	o, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return o, nil
}

// Roots returns the bodies that orbit nothing known, in document order.
func (c *Catalog) Roots() []*Object {
	var roots []*Object
	for _, o := range c.objects {
		if _, ok := c.byName[o.RelativeTo]; o.RelativeTo == "" || !ok {
			roots = append(roots, o)
		}
	}
	return roots
}

// Children returns the bodies orbiting name, in document order.
func (c *Catalog) Children(name string) []*Object {
	return c.children[name]
}

// Menu returns the bodies in selection-list order: stars first, then by
// distance of their placed position from the origin.
func (c *Catalog) Menu() []*Object {
	menu := make([]*Object, len(c.objects))
	copy(menu, c.objects)
	sort.SliceStable(menu, func(i, j int) bool {
		a, b := menu[i], menu[j]
		if a.Star != b.Star {
			return a.Star
		}
		return a.World.Len() < b.World.Len()
	})
	return menu
}

// WithPlaceholder returns a copy of the catalog with name flagged as a
// placeholder stand-in.
func (c *Catalog) WithPlaceholder(name string) (*Catalog, error) {
	if _, err := c.Lookup(name); err != nil {
		return nil, err
	}
	out := &Catalog{
		objects:  make([]*Object, len(c.objects)),
		byName:   make(map[string]*Object, len(c.objects)),
		children: make(map[string][]*Object, len(c.children)),
	}
	for i, o := range c.objects {
		cp := *o
		if cp.Name == name {
			cp.Placeholder = true
		}
		out.objects[i] = &cp
		out.byName[cp.Name] = &cp
	}
	for parent, kids := range c.children {
		for _, k := range kids {
			out.children[parent] = append(out.children[parent], out.objects[k.Index])
		}
	}
	return out, nil
}
