// Package transition implements time-boxed eased camera flights.
package transition

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Transition interpolates a position from From to To over Duration with a
// smoothstep ease. Its clock starts on the first Advance, not on creation,
// so a flight queued between frames does not skip ahead.
type Transition struct {
	From     mgl64.Vec3
	To       mgl64.Vec3
	Duration time.Duration

	start   time.Time
	started bool
	active  bool
}

// New creates an active transition.
func New(from, to mgl64.Vec3, duration time.Duration) *Transition {
	return &Transition{From: from, To: to, Duration: duration, active: true}
}

// Active reports whether the transition still wants frames.
func (t *Transition) Active() bool { return t.active }

// Cancel marks the transition inactive. The next Advance observes it.
func (t *Transition) Cancel() { t.active = false }

// Advance computes the position at now. stillActive is false once the
// flight has arrived (the returned position is then exactly To) or when it
// was cancelled (the returned position is then meaningless and must not be
// written).
func (t *Transition) Advance(now time.Time) (pos mgl64.Vec3, stillActive bool) {
	if !t.active {
		return mgl64.Vec3{}, false
	}
	if !t.started {
		t.start = now
		t.started = true
	}

	progress := 1.0
	if t.Duration > 0 {
		progress = float64(now.Sub(t.start)) / float64(t.Duration)
	}
	progress = mgl64.Clamp(progress, 0, 1)

	pos = Lerp(t.From, t.To, Smoothstep(progress))
	if progress >= 1 {
		t.active = false
		return t.To, false
	}
	return pos, true
}

// Smoothstep eases t in [0,1] as t²(3−2t).
func Smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
