// Package input translates SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	nav "github.com/Faultbox/starview/internal/nav/input"
)

// EventType identifies a viewer event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventResize
	EventBlur
	EventKeyDown
	EventKeyUp
	EventPointerDown
	EventPointerUp
	EventPointerMove
	EventWheel
	EventHistoryBack
	EventHistoryForward
	EventBookmark
	EventNextTarget
	EventPrevTarget
	EventScreenshot
)

// Event is one translated input event.
type Event struct {
	Type   EventType
	Code   string // DOM key code for EventKeyDown/EventKeyUp
	Button nav.Button
	Width  int
	Height int
	X, Y   float64 // pointer position in window coordinates for button events
	DX, DY float64
	Wheel  nav.WheelEvent
}

var keyCodes = map[sdl.Scancode]string{
	sdl.SCANCODE_W:      nav.KeyForward,
	sdl.SCANCODE_S:      nav.KeyBack,
	sdl.SCANCODE_A:      nav.KeyLeft,
	sdl.SCANCODE_D:      nav.KeyRight,
	sdl.SCANCODE_E:      nav.KeyUp,
	sdl.SCANCODE_Q:      nav.KeyDown,
	sdl.SCANCODE_LSHIFT: nav.KeyShiftLeft,
	sdl.SCANCODE_RSHIFT: nav.KeyShiftRight,
}

// KeyCode maps a scancode onto the DOM code the controller understands.
func KeyCode(sc sdl.Scancode) (string, bool) {
	code, ok := keyCodes[sc]
	return code, ok
}

// ButtonFromSDL maps an SDL mouse button onto DOM button numbering.
func ButtonFromSDL(b uint8) nav.Button {
	switch b {
	case sdl.BUTTON_LEFT:
		return nav.ButtonPrimary
	case sdl.BUTTON_MIDDLE:
		return nav.ButtonMiddle
	case sdl.BUTTON_RIGHT:
		return nav.ButtonSecondary
	case sdl.BUTTON_X1:
		return 3
	case sdl.BUTTON_X2:
		return 4
	default:
		return nav.ButtonPrimary
	}
}

// Translate converts one SDL event. mods is the keyboard modifier state at
// the time of the event; it decides whether a wheel notch zooms or dollies.
func Translate(event sdl.Event, mods uint16) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			return Event{Type: EventResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		case sdl.WINDOWEVENT_FOCUS_LOST:
			return Event{Type: EventBlur}, true
		}

	case *sdl.KeyboardEvent:
		return translateKey(e)

	case *sdl.MouseMotionEvent:
		return Event{Type: EventPointerMove, DX: float64(e.XRel), DY: float64(e.YRel)}, true

	case *sdl.MouseButtonEvent:
		t := EventPointerUp
		if e.Type == sdl.MOUSEBUTTONDOWN {
			t = EventPointerDown
		}
		return Event{Type: t, Button: ButtonFromSDL(e.Button), X: float64(e.X), Y: float64(e.Y)}, true

	case *sdl.MouseWheelEvent:
		// SDL counts away from the user as positive; the DOM the other way.
		dy := -float64(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			dy = -dy
		}
		if dy == 0 {
			return Event{}, false
		}
		return Event{Type: EventWheel, Wheel: nav.WheelEvent{
			DeltaY:   dy,
			Modifier: mods&sdl.KMOD_SHIFT != 0,
		}}, true
	}
	return Event{}, false
}

func translateKey(e *sdl.KeyboardEvent) (Event, bool) {
	sc := e.Keysym.Scancode
	down := e.Type == sdl.KEYDOWN

	if code, ok := KeyCode(sc); ok {
		if e.Repeat != 0 {
			return Event{}, false
		}
		t := EventKeyUp
		if down {
			t = EventKeyDown
		}
		return Event{Type: t, Code: code}, true
	}

	if !down {
		return Event{}, false
	}
	alt := e.Keysym.Mod&sdl.KMOD_ALT != 0
	shift := e.Keysym.Mod&sdl.KMOD_SHIFT != 0
	switch {
	case sc == sdl.SCANCODE_ESCAPE:
		return Event{Type: EventQuit}, true
	case sc == sdl.SCANCODE_LEFT && alt:
		return Event{Type: EventHistoryBack}, true
	case sc == sdl.SCANCODE_RIGHT && alt:
		return Event{Type: EventHistoryForward}, true
	case sc == sdl.SCANCODE_F12 && e.Repeat == 0:
		return Event{Type: EventScreenshot}, true
	case sc == sdl.SCANCODE_B && e.Repeat == 0:
		return Event{Type: EventBookmark}, true
	case sc == sdl.SCANCODE_TAB && shift:
		return Event{Type: EventPrevTarget}, true
	case sc == sdl.SCANCODE_TAB:
		return Event{Type: EventNextTarget}, true
	}
	return Event{}, false
}

// Input polls SDL for translated events.
type Input struct {
	events []Event
}

// New creates a new input poller.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update drains the SDL event queue. It returns true once quit was
// requested.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		ev, ok := Translate(event, uint16(sdl.GetModState()))
		if !ok {
			continue
		}
		i.events = append(i.events, ev)
		if ev.Type == EventQuit {
			quit = true
		}
	}
	return quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Dispatch feeds the navigation events among events into c and returns the
// rest for the host to handle.
func Dispatch(events []Event, c *nav.Controller) []Event {
	var rest []Event
	for _, e := range events {
		switch e.Type {
		case EventKeyDown:
			c.OnKeyDown(e.Code)
		case EventKeyUp:
			c.OnKeyUp(e.Code)
		case EventBlur:
			c.Blur()
		case EventPointerDown:
			c.OnPointerDown(e.Button)
		case EventPointerUp:
			c.OnPointerUp(e.Button)
		case EventPointerMove:
			c.OnPointerMove(e.DX, e.DY)
		case EventWheel:
			c.OnWheel(e.Wheel)
		default:
			rest = append(rest, e)
		}
	}
	return rest
}
