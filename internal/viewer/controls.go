package viewer

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/starview/internal/catalog"
	"github.com/Faultbox/starview/internal/engine/input"
	"github.com/Faultbox/starview/internal/nav/session"
	"github.com/Faultbox/starview/internal/nav/urlstate"
)

// navigator is the part of a session history the viewer drives directly.
type navigator interface {
	Back() error
	Forward() error
	Push(query string) error
}

// controls applies the viewer-level shortcuts: history navigation,
// bookmarking the current pose, cycling through the body menu and clicking
// on bodies.
type controls struct {
	session *session.Session
	history navigator
	log     *zap.Logger

	menu   []*catalog.Object
	target int

	// onTarget runs after a body was selected from the keyboard.
	onTarget func(name string)
}

func newControls(s *session.Session, h navigator, log *zap.Logger) *controls {
	return &controls{session: s, history: h, log: log, target: -1}
}

// setCatalog resets the menu when a new catalog arrives.
func (c *controls) setCatalog(cat *catalog.Catalog) {
	c.menu = cat.Menu()
	c.target = -1
}

func (c *controls) handle(e input.Event) {
	switch e.Type {
	case input.EventHistoryBack:
		c.navigate(c.history.Back)
	case input.EventHistoryForward:
		c.navigate(c.history.Forward)
	case input.EventBookmark:
		query := "?" + urlstate.Encode(c.session.Pose().Snapshot())
		if err := c.history.Push(query); err != nil {
			c.log.Warn("bookmark failed", zap.Error(err))
			return
		}
		c.log.Info("bookmarked", zap.String("location", query))
	case input.EventNextTarget:
		c.cycle(1)
	case input.EventPrevTarget:
		c.cycle(-1)
	}
}

func (c *controls) navigate(step func() error) {
	err := step()
	switch {
	case errors.Is(err, urlstate.ErrNoEntry):
		c.log.Debug("no history entry in that direction")
	case err != nil:
		c.log.Warn("history navigation failed", zap.Error(err))
	}
}

func (c *controls) cycle(delta int) {
	n := len(c.menu)
	if n == 0 {
		return
	}
	if c.target < 0 && delta < 0 {
		c.target = 0
	}
	c.selectTarget(((c.target+delta)%n + n) % n)
}

// selectTarget flies to the i-th menu entry and makes it the cycle position.
func (c *controls) selectTarget(i int) {
	c.target = i
	name := c.menu[i].Name
	if err := c.session.Select(name); err != nil {
		return
	}
	if c.onTarget != nil {
		c.onTarget(name)
	}
}
