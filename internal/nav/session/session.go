// Package session drives one camera view: it owns the pose, routes host
// input to the controller, advances transitions, persists the pose into the
// location history and pushes the camera to a renderer every frame.
package session

import (
	"errors"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/starview/internal/catalog"
	"github.com/Faultbox/starview/internal/config"
	"github.com/Faultbox/starview/internal/nav/input"
	"github.com/Faultbox/starview/internal/nav/pose"
	"github.com/Faultbox/starview/internal/nav/transition"
	"github.com/Faultbox/starview/internal/nav/urlstate"
)

// Projection defaults. The far plane after a flight covers the star sphere
// with a 10% margin.
const (
	DefaultNear   = 1.0
	DefaultFar    = 1e7
	SkyboxRadius  = 9e6
	MinNear       = 0.1
	nearPerSize   = 0.01
	skyboxMargin  = 1.1
	defaultAspect = 16.0 / 9.0
)

// ErrNoCatalog is returned by Select before any catalog has arrived.
var ErrNoCatalog = errors.New("session: catalog not loaded")

// Projection is the perspective the renderer should use.
type Projection struct {
	FOV    float64 // vertical, degrees
	Aspect float64
	Near   float64
	Far    float64
}

// Renderer draws the scene from the session's camera.
type Renderer interface {
	SetCamera(position mgl64.Vec3, orientation mgl64.Quat)
	SetProjection(p Projection)
	Redraw()
}

// Options tunes a session.
type Options struct {
	Controls    input.Settings
	Persistence urlstate.Options
	// CheckInterval is how often the frame loop offers the pose to the
	// persister.
	CheckInterval     time.Duration
	FlyDuration       time.Duration
	FlyDistanceFactor float64
	// LookAt turns the camera towards the body before a flight instead of
	// keeping the current viewing angle.
	LookAt bool
}

// DefaultOptions returns the stock session tuning.
func DefaultOptions() Options {
	return Options{
		Controls: input.DefaultSettings(),
		Persistence: urlstate.Options{
			MinInterval:    urlstate.DefaultMinInterval,
			AngleThreshold: urlstate.DefaultAngleThreshold,
		},
		CheckInterval:     500 * time.Millisecond,
		FlyDuration:       500 * time.Millisecond,
		FlyDistanceFactor: 5,
	}
}

// OptionsFromConfig maps the viewer configuration onto session options.
func OptionsFromConfig(cfg *config.Config) Options {
	n := cfg.Navigation
	p := cfg.Persistence
	return Options{
		Controls: input.Settings{
			MoveSpeed:       n.MoveSpeed,
			SlowSpeed:       n.SlowSpeed,
			DragSensitivity: n.DragSensitivity,
			WheelDistance:   n.WheelDistance,
			DollyDuration:   n.DollyDuration,
			FOVStep:         n.FOVStep,
		},
		Persistence: urlstate.Options{
			MinInterval:    p.MinInterval,
			AngleThreshold: p.AngleThreshold,
		},
		CheckInterval:     p.CheckInterval,
		FlyDuration:       n.FlyDuration,
		FlyDistanceFactor: n.FlyDistanceFactor,
		LookAt:            n.FlyToMode == config.FlyLookAt,
	}
}

// Session is a camera view. All methods must be called from the host's
// frame/event loop goroutine.
type Session struct {
	opts      Options
	renderer  Renderer
	log       *zap.Logger
	pose      *pose.Pose
	anim      *transition.Animator
	ctrl      *input.Controller
	persister *urlstate.Persister

	catalogs <-chan catalog.Result
	catalog  *catalog.Catalog

	proj      Projection
	now       time.Time
	lastCheck time.Time

	// OnCatalog, if set, runs on the frame loop whenever a new catalog is
	// installed.
	OnCatalog func(c *catalog.Catalog)
}

// New creates a session drawing into r and persisting into h. A nil logger
// disables logging.
func New(r Renderer, h urlstate.History, origin urlstate.Origin, opts Options, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultOptions().CheckInterval
	}

	p := pose.New()
	anim := transition.NewAnimator(p)
	log = log.Named("session")
	s := &Session{
		opts:      opts,
		renderer:  r,
		log:       log,
		pose:      p,
		anim:      anim,
		ctrl:      input.NewController(p, anim, opts.Controls),
		persister: urlstate.NewPersister(h, origin, opts.Persistence, log.Named("urlstate")),
		proj: Projection{
			FOV:    p.FieldOfView(),
			Aspect: defaultAspect,
			Near:   DefaultNear,
			Far:    DefaultFar,
		},
	}
	s.ctrl.OnDollyFinished = s.dollyFinished
	return s
}

// Pose returns the live camera pose.
func (s *Session) Pose() *pose.Pose { return s.pose }

// Input returns the controller hosts feed events into.
func (s *Session) Input() *input.Controller { return s.ctrl }

// Catalog returns the installed catalog, nil until one has loaded.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// Projection returns the current projection.
func (s *Session) Projection() Projection { return s.proj }

// Start restores the pose saved in the current history entry, if any.
func (s *Session) Start() {
	if saved := s.persister.Restore(); saved != nil {
		s.pose.Apply(*saved)
		s.log.Info("pose restored",
			zap.Float64s("position", saved.Position[:]),
			zap.Float64("fov", saved.FOV))
	}
}

// OnNavigate applies the pose of the history entry the user moved to. It
// bypasses the persistence throttle; flights in progress are abandoned. An
// entry without a saved pose resets to the default pose.
func (s *Session) OnNavigate() {
	s.anim.Cancel(transition.Dolly)
	s.anim.Cancel(transition.FlyTo)

	next := pose.DefaultState()
	if saved := s.persister.Restore(); saved != nil {
		next = *saved
	}
	s.pose.Apply(next)
	s.log.Debug("history navigation", zap.Float64s("position", next.Position[:]))
}

// UseCatalogs makes the session install catalogs published on ch. The
// channel is drained without blocking at the start of every frame.
func (s *Session) UseCatalogs(ch <-chan catalog.Result) {
	s.catalogs = ch
}

// SetCatalog installs c immediately.
func (s *Session) SetCatalog(c *catalog.Catalog) {
	s.catalog = c
	if s.OnCatalog != nil {
		s.OnCatalog(c)
	}
}

// MarkPlaceholder records that name's model failed to load and a stand-in
// is drawn instead. The body stays selectable.
func (s *Session) MarkPlaceholder(name string) error {
	if s.catalog == nil {
		return ErrNoCatalog
	}
	c, err := s.catalog.WithPlaceholder(name)
	if err != nil {
		return err
	}
	s.log.Warn("model failed, using placeholder", zap.String("name", name))
	s.SetCatalog(c)
	return nil
}

// Resize updates the projection aspect for a viewport of w by h pixels.
func (s *Session) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	s.proj.Aspect = float64(w) / float64(h)
}

// Select flies to the named body. An empty name is ignored; selecting the
// current body again flies there again.
func (s *Session) Select(name string) error {
	if name == "" {
		return nil
	}
	if s.catalog == nil {
		return ErrNoCatalog
	}
	obj, err := s.catalog.Lookup(name)
	if err != nil {
		s.log.Warn("selection failed", zap.Error(err))
		return err
	}
	if obj.Placeholder {
		s.log.Debug("flying to placeholder body", zap.String("name", name))
	}
	s.log.Info("fly-to", zap.String("name", name), zap.Float64("size", obj.Size))
	s.FlyTo(obj.World, obj.Size)
	return nil
}

// FlyTo flies the camera to a viewpoint size*FlyDistanceFactor units in
// front of target along the viewing direction. On arrival yaw and pitch are
// re-read from the final orientation and the clip planes are fitted to the
// body.
func (s *Session) FlyTo(target mgl64.Vec3, size float64) {
	from := s.pose.Position()
	if s.opts.LookAt {
		s.face(target.Sub(from))
	}

	back := s.pose.Forward().Mul(size * s.opts.FlyDistanceFactor)
	to := target.Sub(back)

	s.anim.Start(transition.FlyTo, transition.New(from, to, s.opts.FlyDuration), func() {
		yaw, pitch := pose.AnglesFromOrientation(s.pose.Orientation())
		s.pose.SetAngles(unwrapNear(yaw, s.pose.Yaw()), pitch)
		s.proj.Near = math.Max(MinNear, size*nearPerSize)
		s.proj.Far = SkyboxRadius * skyboxMargin
	})
}

// unwrapNear shifts yaw by whole turns to the value closest to ref.
func unwrapNear(yaw, ref float64) float64 {
	return yaw + 2*math.Pi*math.Round((ref-yaw)/(2*math.Pi))
}

// face turns the camera along dir.
func (s *Session) face(dir mgl64.Vec3) {
	horizontal := math.Hypot(dir.X(), dir.Z())
	if horizontal == 0 && dir.Y() == 0 {
		return
	}
	s.pose.SetAngles(math.Atan2(-dir.X(), -dir.Z()), math.Atan2(dir.Y(), horizontal))
}

// Tick runs one frame at now: install newly published catalogs, step
// transitions, apply held keys, offer the pose to the persister every
// CheckInterval, and hand camera and projection to the renderer.
func (s *Session) Tick(now time.Time) {
	s.now = now

	s.drainCatalogs()
	s.anim.Step(now)
	s.ctrl.Translate()

	if s.lastCheck.IsZero() || now.Sub(s.lastCheck) >= s.opts.CheckInterval {
		s.lastCheck = now
		s.persister.MaybePersist(s.pose.Snapshot(), now)
	}

	s.proj.FOV = s.pose.FieldOfView()
	s.renderer.SetCamera(s.pose.Position(), s.pose.Orientation())
	s.renderer.SetProjection(s.proj)
	s.renderer.Redraw()
}

func (s *Session) drainCatalogs() {
	for {
		select {
		case res, ok := <-s.catalogs:
			if !ok {
				s.catalogs = nil
				return
			}
			if res.Err != nil {
				s.log.Warn("catalog load failed, keeping previous", zap.Error(res.Err))
				continue
			}
			s.log.Info("catalog installed", zap.Int("bodies", res.Catalog.Len()))
			s.SetCatalog(res.Catalog)
		default:
			return
		}
	}
}

// dollyFinished offers the pose to the persister as soon as a wheel dolly
// lands, without waiting for the next periodic check.
func (s *Session) dollyFinished() {
	s.persister.MaybePersist(s.pose.Snapshot(), s.now)
}
