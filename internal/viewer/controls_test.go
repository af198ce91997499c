package viewer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/starview/internal/catalog"
	"github.com/Faultbox/starview/internal/engine/input"
	nav "github.com/Faultbox/starview/internal/nav/input"
	"github.com/Faultbox/starview/internal/nav/session"
	"github.com/Faultbox/starview/internal/nav/urlstate"
)

type nopRenderer struct{}

func (nopRenderer) SetCamera(mgl64.Vec3, mgl64.Quat) {}
func (nopRenderer) SetProjection(session.Projection) {}
func (nopRenderer) Redraw()                          {}

func newTestControls(t *testing.T) (*controls, *session.Session, *urlstate.FileHistory) {
	t.Helper()
	h, err := urlstate.OpenFileHistory(filepath.Join(t.TempDir(), "location"))
	require.NoError(t, err)

	s := session.New(nopRenderer{}, h, nativeOrigin, session.DefaultOptions(), nil)
	h.OnNavigate(func(string) { s.OnNavigate() })
	s.Start()
	return newControls(s, h, zap.NewNop()), s, h
}

func TestBookmarkAndNavigate(t *testing.T) {
	c, s, h := newTestControls(t)

	s.Pose().SetPosition(mgl64.Vec3{1, 2, 3})
	c.handle(input.Event{Type: input.EventBookmark})
	require.Equal(t, 2, h.Len())

	s.Pose().SetPosition(mgl64.Vec3{7, 8, 9})
	c.handle(input.Event{Type: input.EventBookmark})

	c.handle(input.Event{Type: input.EventHistoryBack})
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, s.Pose().Position())

	c.handle(input.Event{Type: input.EventHistoryForward})
	assert.Equal(t, mgl64.Vec3{7, 8, 9}, s.Pose().Position())

	// Running off the end is harmless.
	c.handle(input.Event{Type: input.EventHistoryForward})
	assert.Equal(t, mgl64.Vec3{7, 8, 9}, s.Pose().Position())
}

func TestCycleTargets(t *testing.T) {
	c, s, _ := newTestControls(t)

	// Nothing to cycle through yet.
	c.handle(input.Event{Type: input.EventNextTarget})

	cat := catalog.Place([]catalog.Body{
		{Name: "Sun", Star: true, Size: 100},
		{Name: "Near", Position: []float64{1000}, Size: 10},
		{Name: "Far", Position: []float64{5000}, Size: 10},
	}, catalog.Options{Seed: 1})
	s.SetCatalog(cat)
	c.setCatalog(cat)

	var picked []string
	c.onTarget = func(name string) { picked = append(picked, name) }

	c.handle(input.Event{Type: input.EventNextTarget})
	c.handle(input.Event{Type: input.EventNextTarget})
	c.handle(input.Event{Type: input.EventNextTarget})
	c.handle(input.Event{Type: input.EventNextTarget})
	assert.Equal(t, []string{"Sun", "Near", "Far", "Sun"}, picked)

	c.setCatalog(cat)
	picked = nil
	c.handle(input.Event{Type: input.EventPrevTarget})
	c.handle(input.Event{Type: input.EventPrevTarget})
	assert.Equal(t, []string{"Far", "Near"}, picked)

	// The last selection is in flight.
	t0 := time.Now()
	s.Tick(t0)
	s.Tick(t0.Add(time.Second))
	near, err := cat.Lookup("Near")
	require.NoError(t, err)
	want := near.World.Add(mgl64.Vec3{0, 0, 50})
	assert.True(t, s.Pose().Position().ApproxEqualThreshold(want, 1e-6), "at %v, want %v", s.Pose().Position(), want)
}

func TestClicker(t *testing.T) {
	var c clicker
	down := input.Event{Type: input.EventPointerDown, Button: nav.ButtonPrimary}
	up := input.Event{Type: input.EventPointerUp, Button: nav.ButtonPrimary}
	move := func(dx, dy float64) input.Event { return input.Event{Type: input.EventPointerMove, DX: dx, DY: dy} }

	assert.False(t, c.observe(down))
	assert.False(t, c.observe(move(1, -2)))
	assert.True(t, c.observe(up), "small wobble is still a click")

	c.observe(down)
	c.observe(move(3, 3))
	assert.False(t, c.observe(up), "drag")

	assert.False(t, c.observe(up), "release without press")

	c.observe(down)
	c.observe(input.Event{Type: input.EventBlur})
	assert.False(t, c.observe(up))

	c.observe(input.Event{Type: input.EventPointerDown, Button: nav.ButtonSecondary})
	assert.False(t, c.observe(input.Event{Type: input.EventPointerUp, Button: nav.ButtonSecondary}))
}

func TestPickFliesToClickedBody(t *testing.T) {
	c, s, _ := newTestControls(t)
	assert.False(t, c.pick(400, 300, 800, 600), "no catalog")

	// Four roots sit a quarter turn apart, which puts the probe on +Z.
	cat := catalog.Place([]catalog.Body{
		{Name: "Sun", Star: true, Diameter: 200},
		{Name: "Probe", Position: []float64{5000}, Size: 0.01},
		{Name: "West", Position: []float64{1e6}, Size: 1},
		{Name: "Deep", Position: []float64{1e6}, Size: 1},
	}, catalog.Options{Seed: 1})
	s.SetCatalog(cat)
	c.setCatalog(cat)

	var picked []string
	c.onTarget = func(name string) { picked = append(picked, name) }

	// The default pose looks down -Z at the Sun; the probe sits in between.
	assert.True(t, c.pick(400, 300, 800, 600))
	assert.Equal(t, []string{"Probe"}, picked)

	assert.False(t, c.pick(5, 5, 800, 600), "empty sky")
	assert.Equal(t, []string{"Probe"}, picked)
}
