package urlstate

import (
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/starview/internal/nav/pose"
)

// Throttle defaults.
const (
	DefaultMinInterval    = 1000 * time.Millisecond
	DefaultAngleThreshold = 0.01
)

// ErrInsecureOrigin is returned when the host forbids rewriting history.
var ErrInsecureOrigin = errors.New("urlstate: history rewrite not allowed from this origin")

// History is the location store a pose is written into.
type History interface {
	// Query returns the current entry's query, with or without '?'.
	Query() string
	// ReplaceState rewrites the current entry without navigating.
	ReplaceState(query string) error
}

// Origin describes where the viewer runs. Rewriting the location is only
// allowed from a secure context or from localhost.
type Origin struct {
	Secure   bool
	Hostname string
}

// AllowsHistory reports whether the origin may rewrite its location.
func (o Origin) AllowsHistory() bool {
	return o.Secure || o.Hostname == "localhost"
}

// ShouldPersist reports whether candidate is worth writing: it must differ
// from the last persisted pose (any position change, or yaw/pitch moved by
// more than threshold radians) and at least minInterval must have passed
// since the last write. last is nil when nothing was written yet.
func ShouldPersist(candidate pose.State, last *pose.State, now, lastAt time.Time, minInterval time.Duration, threshold float64) bool {
	if last != nil && !changed(candidate, *last, threshold) {
		return false
	}
	if !lastAt.IsZero() && now.Sub(lastAt) < minInterval {
		return false
	}
	return true
}

func changed(a, b pose.State, threshold float64) bool {
	return a.Position != b.Position ||
		math.Abs(a.Yaw-b.Yaw) > threshold ||
		math.Abs(a.Pitch-b.Pitch) > threshold
}

// Options configures a Persister.
type Options struct {
	MinInterval    time.Duration
	AngleThreshold float64
}

// Persister writes poses into a History, rate limited.
type Persister struct {
	history History
	origin  Origin
	opts    Options
	log     *zap.Logger

	last    *pose.State
	lastAt  time.Time
	refused bool // the origin refusal was already reported
}

// NewPersister creates a persister. A nil logger disables logging.
func NewPersister(h History, origin Origin, opts Options, log *zap.Logger) *Persister {
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultMinInterval
	}
	if opts.AngleThreshold <= 0 {
		opts.AngleThreshold = DefaultAngleThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Persister{history: h, origin: origin, opts: opts, log: log}
}

// Restore decodes the current history entry. nil means nothing was saved.
func (p *Persister) Restore() *pose.State {
	return Decode(p.history.Query())
}

// MaybePersist writes s if ShouldPersist agrees.
func (p *Persister) MaybePersist(s pose.State, now time.Time) bool {
	if !ShouldPersist(s, p.last, now, p.lastAt, p.opts.MinInterval, p.opts.AngleThreshold) {
		return false
	}
	return p.Persist(s, now)
}

// Persist writes s unconditionally. Failures are logged and reported as
// false; the last persisted pose is left unchanged.
func (p *Persister) Persist(s pose.State, now time.Time) bool {
	if !p.origin.AllowsHistory() {
		if !p.refused {
			p.refused = true
			p.log.Warn("location update skipped",
				zap.Error(ErrInsecureOrigin),
				zap.String("hostname", p.origin.Hostname))
		}
		return false
	}

	if err := p.history.ReplaceState("?" + Encode(s)); err != nil {
		p.log.Warn("location update failed", zap.Error(err))
		return false
	}

	last := s
	p.last = &last
	p.lastAt = now
	return true
}

// Last returns the last persisted pose and when it was written.
func (p *Persister) Last() (*pose.State, time.Time) {
	if p.last == nil {
		return nil, time.Time{}
	}
	last := *p.last
	return &last, p.lastAt
}
