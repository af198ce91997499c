package session

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/starview/internal/catalog"
	"github.com/Faultbox/starview/internal/config"
	"github.com/Faultbox/starview/internal/nav/input"
	"github.com/Faultbox/starview/internal/nav/pose"
	"github.com/Faultbox/starview/internal/nav/urlstate"
)

type frame struct {
	position    mgl64.Vec3
	orientation mgl64.Quat
	projection  Projection
}

type fakeRenderer struct {
	frames  []frame
	pending frame
}

func (r *fakeRenderer) SetCamera(position mgl64.Vec3, orientation mgl64.Quat) {
	r.pending.position = position
	r.pending.orientation = orientation
}

func (r *fakeRenderer) SetProjection(p Projection) { r.pending.projection = p }

func (r *fakeRenderer) Redraw() { r.frames = append(r.frames, r.pending) }

func (r *fakeRenderer) last() frame { return r.frames[len(r.frames)-1] }

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

var local = urlstate.Origin{Hostname: "localhost"}

func newSession(t *testing.T, query string, opts Options) (*Session, *fakeRenderer, *urlstate.MemoryHistory) {
	t.Helper()
	r := &fakeRenderer{}
	h := urlstate.NewMemoryHistory(query)
	s := New(r, h, local, opts, nil)
	return s, r, h
}

func targetCatalog() *catalog.Catalog {
	return catalog.Place([]catalog.Body{
		{Name: "Target", Position: []float64{1000}, Size: 100},
	}, catalog.Options{Seed: 1})
}

func TestFlyToPreservesOrientation(t *testing.T) {
	s, r, _ := newSession(t, "", DefaultOptions())
	s.SetCatalog(targetCatalog())
	before := s.Pose().Orientation()

	require.NoError(t, s.Select("Target"))

	s.Tick(t0)
	assert.Equal(t, mgl64.Vec3{0, 0, 10000}, r.last().position)
	assert.Equal(t, DefaultNear, r.last().projection.Near)

	s.Tick(t0.Add(250 * time.Millisecond))
	mid := r.last().position
	assert.InDelta(t, 500, mid.X(), 1e-6, "smoothstep is half way at half time")

	s.Tick(t0.Add(500 * time.Millisecond))
	got := r.last()
	want := mgl64.Vec3{1000, 0, 500}
	assert.True(t, got.position.ApproxEqualThreshold(want, 1e-6), "arrived at %v", got.position)
	assert.True(t, got.orientation.ApproxEqual(before), "orientation unchanged")
	assert.InDelta(t, 0, s.Pose().Yaw(), 1e-12)
	assert.InDelta(t, 0, s.Pose().Pitch(), 1e-12)
	assert.InDelta(t, 1, got.projection.Near, 1e-12)
	assert.InDelta(t, 9.9e6, got.projection.Far, 1e-3)
}

func TestFlyToKeepsAccumulatedYaw(t *testing.T) {
	s, _, h := newSession(t, "", DefaultOptions())
	yaw := 2*math.Pi + 0.3
	s.Pose().SetAngles(yaw, 0.2)
	s.Tick(t0)
	before := urlstate.Decode(h.Query())
	require.NotNil(t, before)

	s.FlyTo(s.Pose().Position().Add(s.Pose().Forward().Mul(1000)), 100)
	s.Tick(t0.Add(time.Second))
	s.Tick(t0.Add(2 * time.Second))

	assert.InDelta(t, yaw, s.Pose().Yaw(), 1e-9, "no jump by a whole turn")
	assert.InDelta(t, 0.2, s.Pose().Pitch(), 1e-9)
	after := urlstate.Decode(h.Query())
	require.NotNil(t, after)
	assert.NotEqual(t, before.Position, after.Position, "arrival was persisted")
	assert.Equal(t, before.Yaw, after.Yaw)
}

func TestUnwrapNear(t *testing.T) {
	tests := []struct {
		yaw, ref, want float64
	}{
		{0.3, 0.3, 0.3},
		{0.3, 2*math.Pi + 0.3, 2*math.Pi + 0.3},
		{-3, 3.2, 2*math.Pi - 3},
		{1, -4*math.Pi + 1, -4*math.Pi + 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, unwrapNear(tt.yaw, tt.ref), 1e-12, "unwrapNear(%v, %v)", tt.yaw, tt.ref)
	}
}

func TestFlyToSmallBodyClampsNear(t *testing.T) {
	s, r, _ := newSession(t, "", DefaultOptions())
	s.FlyTo(mgl64.Vec3{0, 0, 0}, 2)

	s.Tick(t0)
	s.Tick(t0.Add(time.Second))
	assert.Equal(t, MinNear, r.last().projection.Near)
	assert.True(t, r.last().position.ApproxEqualThreshold(mgl64.Vec3{0, 0, 10}, 1e-9))
}

func TestFlyToLookAt(t *testing.T) {
	opts := DefaultOptions()
	opts.LookAt = true
	s, _, _ := newSession(t, "", opts)

	// Straight to the right of the default camera.
	s.FlyTo(mgl64.Vec3{1000, 0, 10000}, 10)
	assert.InDelta(t, 1, s.Pose().Forward().X(), 1e-9, "turned before flying")

	s.Tick(t0)
	s.Tick(t0.Add(time.Second))
	assert.True(t, s.Pose().Position().ApproxEqualThreshold(mgl64.Vec3{950, 0, 10000}, 1e-6),
		"stopped short of the body at %v", s.Pose().Position())
}

func TestSelect(t *testing.T) {
	s, _, _ := newSession(t, "", DefaultOptions())

	assert.NoError(t, s.Select(""), "empty selection is ignored")
	assert.ErrorIs(t, s.Select("Target"), ErrNoCatalog)

	s.SetCatalog(targetCatalog())
	assert.ErrorIs(t, s.Select("Vulcan"), catalog.ErrNotFound)

	// Re-selecting restarts the flight from wherever the camera is.
	require.NoError(t, s.Select("Target"))
	s.Tick(t0)
	s.Tick(t0.Add(250 * time.Millisecond))
	require.NoError(t, s.Select("Target"))
	s.Tick(t0.Add(260 * time.Millisecond))
	s.Tick(t0.Add(760 * time.Millisecond))
	assert.True(t, s.Pose().Position().ApproxEqualThreshold(mgl64.Vec3{1000, 0, 500}, 1e-6))
}

func TestSelectPlaceholder(t *testing.T) {
	s, _, _ := newSession(t, "", DefaultOptions())
	assert.ErrorIs(t, s.MarkPlaceholder("Target"), ErrNoCatalog)

	var installed []*catalog.Catalog
	s.OnCatalog = func(c *catalog.Catalog) { installed = append(installed, c) }
	s.SetCatalog(targetCatalog())

	require.NoError(t, s.MarkPlaceholder("Target"))
	assert.ErrorIs(t, s.MarkPlaceholder("Vulcan"), catalog.ErrNotFound)
	require.Len(t, installed, 2, "marked catalog is installed")
	obj, err := s.Catalog().Lookup("Target")
	require.NoError(t, err)
	assert.True(t, obj.Placeholder)

	require.NoError(t, s.Select("Target"))
	s.Tick(t0)
	s.Tick(t0.Add(time.Second))
	assert.True(t, s.Pose().Position().ApproxEqualThreshold(mgl64.Vec3{1000, 0, 500}, 1e-6))
}

func TestTickOrder(t *testing.T) {
	s, r, h := newSession(t, "", DefaultOptions())
	s.SetCatalog(targetCatalog())
	s.Input().OnKeyDown(input.KeyForward)
	require.NoError(t, s.Select("Target"))

	s.Tick(t0)

	// The flight wrote its start position, then the held key moved on
	// from there, then the result was persisted and drawn.
	want := mgl64.Vec3{0, 0, 9999.5}
	assert.True(t, r.last().position.ApproxEqualThreshold(want, 1e-9), "drawn at %v", r.last().position)
	saved := urlstate.Decode(h.Query())
	require.NotNil(t, saved)
	assert.InDelta(t, 9999.5, saved.Position.Z(), 0.005)
}

func TestPersistCheckInterval(t *testing.T) {
	s, _, h := newSession(t, "", DefaultOptions())

	s.Tick(t0)
	require.Equal(t, "?px=0.00&py=0.00&pz=10000.00&yaw=0.0000&pitch=0.0000&fov=75.00", h.Query())

	s.Pose().SetPosition(mgl64.Vec3{1, 2, 3})
	s.Tick(t0.Add(400 * time.Millisecond))
	s.Tick(t0.Add(900 * time.Millisecond))
	assert.Contains(t, h.Query(), "pz=10000.00", "inside the minimum interval")

	s.Tick(t0.Add(1000 * time.Millisecond))
	assert.Contains(t, h.Query(), "pz=10000.00", "between periodic checks")

	s.Tick(t0.Add(1400 * time.Millisecond))
	assert.Equal(t, "?px=1.00&py=2.00&pz=3.00&yaw=0.0000&pitch=0.0000&fov=75.00", h.Query())
}

func TestDollyLandingPersists(t *testing.T) {
	s, _, h := newSession(t, "", DefaultOptions())
	s.Tick(t0)

	s.Input().OnWheel(input.WheelEvent{DeltaY: -100})
	s.Tick(t0.Add(1100 * time.Millisecond))
	s.Tick(t0.Add(1200 * time.Millisecond))

	saved := urlstate.Decode(h.Query())
	require.NotNil(t, saved)
	assert.InDelta(t, 9000, saved.Position.Z(), 0.005)
}

func TestStartRestores(t *testing.T) {
	s, r, _ := newSession(t, "?px=10&py=20&pz=30&yaw=0.5&pitch=-0.25&fov=60", DefaultOptions())
	s.Start()
	s.Tick(t0)

	assert.Equal(t, mgl64.Vec3{10, 20, 30}, r.last().position)
	assert.Equal(t, 60.0, r.last().projection.FOV)
	assert.True(t, r.last().orientation.ApproxEqual(pose.Orientation(0.5, -0.25)))
}

func TestStartWithoutSavedPose(t *testing.T) {
	s, _, _ := newSession(t, "", DefaultOptions())
	s.Start()
	assert.Equal(t, pose.DefaultState(), s.Pose().Snapshot())
}

func TestNavigateBypassesThrottle(t *testing.T) {
	s, _, h := newSession(t, "?px=1&py=1&pz=1", DefaultOptions())
	h.OnNavigate(func(string) { s.OnNavigate() })
	s.Start()
	s.Tick(t0)

	h.Push("?px=5&py=5&pz=5&yaw=1")
	s.Pose().SetPosition(mgl64.Vec3{5, 5, 5})

	// Well inside the write throttle, and with a dolly in flight.
	s.Input().OnWheel(input.WheelEvent{DeltaY: 1})
	require.NoError(t, h.Back())
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, s.Pose().Position())

	s.Tick(t0.Add(10 * time.Millisecond))
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, s.Pose().Position(), "abandoned dolly writes nothing")

	require.NoError(t, h.Forward())
	assert.Equal(t, mgl64.Vec3{5, 5, 5}, s.Pose().Position())
	assert.Equal(t, 1.0, s.Pose().Yaw())
}

func TestNavigateToEmptyEntryResets(t *testing.T) {
	s, _, h := newSession(t, "", DefaultOptions())
	h.OnNavigate(func(string) { s.OnNavigate() })
	h.Push("?px=7")
	s.Start()
	require.Equal(t, 7.0, s.Pose().Position().X())

	require.NoError(t, h.Back())
	assert.Equal(t, pose.DefaultState(), s.Pose().Snapshot())
}

func TestCatalogChannel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := &fakeRenderer{}
	s := New(r, urlstate.NewMemoryHistory(""), local, DefaultOptions(), zap.New(core))

	var installed []*catalog.Catalog
	s.OnCatalog = func(c *catalog.Catalog) { installed = append(installed, c) }

	ch := make(chan catalog.Result, 3)
	s.UseCatalogs(ch)
	s.Tick(t0)
	assert.Nil(t, s.Catalog())

	first := targetCatalog()
	ch <- catalog.Result{Catalog: first}
	ch <- catalog.Result{Err: errors.New("decoding catalog: bad yaml")}
	s.Tick(t0.Add(time.Millisecond))

	assert.Same(t, first, s.Catalog(), "failed reload keeps the previous catalog")
	assert.Len(t, installed, 1)
	assert.Equal(t, 1, logs.FilterMessage("catalog load failed, keeping previous").Len())

	close(ch)
	s.Tick(t0.Add(2 * time.Millisecond))
	assert.Same(t, first, s.Catalog())
}

func TestInsecureOriginNeverWrites(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := urlstate.NewMemoryHistory("")
	s := New(&fakeRenderer{}, h, urlstate.Origin{Hostname: "example.org"}, DefaultOptions(), zap.New(core))

	s.Tick(t0)
	s.Tick(t0.Add(2 * time.Second))
	s.Tick(t0.Add(4 * time.Second))

	assert.Empty(t, h.Query())
	require.Equal(t, 1, logs.FilterMessage("location update skipped").Len(), "refusal is reported once")
	assert.Equal(t, "session.urlstate", logs.All()[0].LoggerName)
}

func TestResize(t *testing.T) {
	s, r, _ := newSession(t, "", DefaultOptions())
	s.Resize(800, 400)
	s.Resize(0, 0)
	s.Tick(t0)
	assert.Equal(t, 2.0, r.last().projection.Aspect)
	assert.Equal(t, DefaultFar, r.last().projection.Far)
}

func TestModifierWheelChangesProjectionFOV(t *testing.T) {
	s, r, _ := newSession(t, "", DefaultOptions())
	s.Input().OnWheel(input.WheelEvent{DeltaY: -1, Modifier: true})
	s.Tick(t0)
	assert.Equal(t, 76.0, r.last().projection.FOV)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Navigation.FlyToMode = config.FlyLookAt
	cfg.Navigation.MoveSpeed = 3
	cfg.Persistence.MinInterval = 2 * time.Second

	opts := OptionsFromConfig(cfg)
	assert.True(t, opts.LookAt)
	assert.Equal(t, 3.0, opts.Controls.MoveSpeed)
	assert.Equal(t, 2*time.Second, opts.Persistence.MinInterval)
	assert.Equal(t, 500*time.Millisecond, opts.CheckInterval)

	def := OptionsFromConfig(config.Default())
	assert.Equal(t, DefaultOptions(), def)
}
