package transition

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Slot names an independent animation channel. A new transition in a slot
// supersedes the previous one; slots never affect each other.
type Slot int

const (
	// Dolly is the short wheel-driven push along the view direction.
	Dolly Slot = iota
	// FlyTo is the flight towards a selected body.
	FlyTo

	slotCount
)

func (s Slot) String() string {
	switch s {
	case Dolly:
		return "dolly"
	case FlyTo:
		return "fly-to"
	default:
		return "unknown"
	}
}

// Target receives the interpolated position.
type Target interface {
	SetPosition(v mgl64.Vec3)
}

type flight struct {
	tr     *Transition
	finish func()
}

// Animator drives transitions for a single target, one per slot.
type Animator struct {
	target  Target
	slots   [slotCount]*flight
	retired []*flight
}

// NewAnimator creates an animator writing into target.
func NewAnimator(target Target) *Animator {
	return &Animator{target: target}
}

// Start installs tr in slot, cancelling whatever was flying there. finish,
// if not nil, runs once when tr arrives or is observed cancelled.
func (a *Animator) Start(slot Slot, tr *Transition, finish func()) {
	if prev := a.slots[slot]; prev != nil {
		prev.tr.Cancel()
		a.retired = append(a.retired, prev)
	}
	a.slots[slot] = &flight{tr: tr, finish: finish}
}

// Cancel stops the transition in slot, if any.
func (a *Animator) Cancel(slot Slot) {
	if f := a.slots[slot]; f != nil {
		f.tr.Cancel()
	}
}

// Active reports whether slot has a transition in flight.
func (a *Animator) Active(slot Slot) bool {
	f := a.slots[slot]
	return f != nil && f.tr.Active()
}

// Busy reports whether any slot is in flight.
func (a *Animator) Busy() bool {
	for s := Slot(0); s < slotCount; s++ {
		if a.Active(s) {
			return true
		}
	}
	return false
}

// Step advances every transition to now. Superseded transitions get their
// one last no-op frame here: their finish action runs but they write no
// position.
func (a *Animator) Step(now time.Time) {
	retired := a.retired
	a.retired = nil
	for _, f := range retired {
		f.done()
	}

	for s := range a.slots {
		f := a.slots[s]
		if f == nil {
			continue
		}
		if !f.tr.Active() {
			a.slots[s] = nil
			f.done()
			continue
		}
		pos, stillActive := f.tr.Advance(now)
		a.target.SetPosition(pos)
		if !stillActive {
			a.slots[s] = nil
			f.done()
		}
	}
}

func (f *flight) done() {
	if f.finish != nil {
		f.finish()
	}
}
