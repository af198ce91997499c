// Package input turns keyboard, pointer and wheel events into camera motion.
//
// Each channel is an independent state machine: held keys are polled once
// per frame by Translate, dragging rotates the camera immediately on every
// pointer move, and each wheel notch either changes the field of view or
// launches a short eased dolly.
package input

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/starview/internal/nav/pose"
	"github.com/Faultbox/starview/internal/nav/transition"
)

// Key codes, named after DOM KeyboardEvent.code values. Native hosts map
// their scancodes onto these.
const (
	KeyForward    = "KeyW"
	KeyBack       = "KeyS"
	KeyLeft       = "KeyA"
	KeyRight      = "KeyD"
	KeyUp         = "KeyE"
	KeyDown       = "KeyQ"
	KeyShiftLeft  = "ShiftLeft"
	KeyShiftRight = "ShiftRight"
)

// Button is a pointer button as numbered by the DOM: 0 primary, 1 middle,
// 2 secondary.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// WheelEvent is a single wheel notch.
type WheelEvent struct {
	DeltaY float64
	// Modifier is true while the field-of-view modifier (Shift) is held.
	Modifier bool
	// OverControl is true when the pointer hovers an interactive element,
	// or nothing at all; such wheel events belong to the page, not the camera.
	OverControl bool
}

// Settings tunes the controller.
type Settings struct {
	MoveSpeed       float64 // units per frame
	SlowSpeed       float64 // units per frame while Shift is held
	DragSensitivity float64 // radians per pixel
	WheelDistance   float64 // dolly length per notch
	DollyDuration   time.Duration
	FOVStep         float64 // degrees per notch
}

// DefaultSettings returns the stock navigation tuning.
func DefaultSettings() Settings {
	return Settings{
		MoveSpeed:       0.5,
		SlowSpeed:       0.001,
		DragSensitivity: 0.002,
		WheelDistance:   1000,
		DollyDuration:   100 * time.Millisecond,
		FOVStep:         1,
	}
}

// Controller is the input state machine for one camera session.
type Controller struct {
	settings Settings
	pose     *pose.Pose
	anim     *transition.Animator

	held     map[string]bool
	dragging bool

	// OnDollyFinished, if set, runs when a wheel dolly arrives or is
	// superseded.
	OnDollyFinished func()
}

// NewController creates a controller mutating p and starting dolly flights
// on anim.
func NewController(p *pose.Pose, anim *transition.Animator, settings Settings) *Controller {
	return &Controller{
		settings: settings,
		pose:     p,
		anim:     anim,
		held:     make(map[string]bool),
	}
}

// OnKeyDown records a held key.
func (c *Controller) OnKeyDown(code string) {
	c.held[code] = true
}

// OnKeyUp releases a key.
func (c *Controller) OnKeyUp(code string) {
	delete(c.held, code)
}

// Blur releases every key, for when the window loses focus and key-up
// events will never arrive.
func (c *Controller) Blur() {
	clear(c.held)
	c.dragging = false
}

// Held reports whether code is currently held.
func (c *Controller) Held(code string) bool {
	return c.held[code]
}

// Translate applies one frame of keyboard movement and returns the offset.
func (c *Controller) Translate() mgl64.Vec3 {
	if len(c.held) == 0 {
		return mgl64.Vec3{}
	}

	forward := normalize(c.pose.Forward())
	right := normalize(forward.Cross(mgl64.Vec3{0, 1, 0}))

	var dir mgl64.Vec3
	if c.held[KeyForward] {
		dir = dir.Add(forward)
	}
	if c.held[KeyBack] {
		dir = dir.Sub(forward)
	}
	if c.held[KeyRight] {
		dir = dir.Add(right)
	}
	if c.held[KeyLeft] {
		dir = dir.Sub(right)
	}
	if c.held[KeyUp] {
		dir[1]++
	}
	if c.held[KeyDown] {
		dir[1]--
	}

	speed := c.settings.MoveSpeed
	if c.held[KeyShiftLeft] || c.held[KeyShiftRight] {
		speed = c.settings.SlowSpeed
	}

	offset := normalize(dir).Mul(speed)
	if offset != (mgl64.Vec3{}) {
		c.pose.Translate(offset)
	}
	return offset
}

// OnPointerDown starts dragging for any button but the secondary one.
func (c *Controller) OnPointerDown(b Button) {
	if b != ButtonSecondary {
		c.dragging = true
	}
}

// OnPointerUp stops dragging.
func (c *Controller) OnPointerUp(b Button) {
	if b != ButtonSecondary {
		c.dragging = false
	}
}

// Dragging reports whether a drag-rotate is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// OnPointerMove rotates the camera by the pointer movement while dragging.
func (c *Controller) OnPointerMove(dx, dy float64) {
	if !c.dragging {
		return
	}
	s := c.settings.DragSensitivity
	c.pose.Rotate(-dx*s, -dy*s)
}

// OnWheel handles one wheel notch.
func (c *Controller) OnWheel(e WheelEvent) {
	if e.OverControl || e.DeltaY == 0 {
		return
	}

	if e.Modifier {
		step := c.settings.FOVStep
		if e.DeltaY > 0 {
			step = -step
		}
		c.pose.AdjustFieldOfView(step)
		return
	}

	sign := -1.0
	if e.DeltaY < 0 {
		sign = 1.0
	}
	from := c.pose.Position()
	to := from.Add(normalize(c.pose.Forward()).Mul(c.settings.WheelDistance * sign))

	// Start cancels any dolly still in flight; the new one leaves from
	// wherever the camera is now.
	c.anim.Start(transition.Dolly, transition.New(from, to, c.settings.DollyDuration), c.OnDollyFinished)
}

func normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
