// Package viewer runs the native starview window: SDL2 events in, a camera
// session in the middle, OpenGL out.
package viewer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/starview/internal/catalog"
	"github.com/Faultbox/starview/internal/config"
	"github.com/Faultbox/starview/internal/engine/input"
	"github.com/Faultbox/starview/internal/engine/renderer"
	"github.com/Faultbox/starview/internal/engine/screenshot"
	"github.com/Faultbox/starview/internal/engine/window"
	"github.com/Faultbox/starview/internal/logger"
	"github.com/Faultbox/starview/internal/nav/session"
	"github.com/Faultbox/starview/internal/nav/urlstate"
)

// catalogDebounce collapses the burst of writes an editor makes on save.
const catalogDebounce = 250 * time.Millisecond

// The native viewer persists into a local file, which counts as a trusted
// origin.
var nativeOrigin = urlstate.Origin{Hostname: "localhost"}

// Viewer is the native viewer instance.
type Viewer struct {
	config   *config.Config
	log      *zap.Logger
	running  bool
	dragging bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	history  *urlstate.FileHistory
	session  *session.Session
	controls *controls
	clicks   clicker
	shots    *screenshot.Capture

	cancel context.CancelFunc
}

// New creates the window, renderer and camera session, restores the saved
// pose and starts loading the catalog.
func New(ctx context.Context, cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		config: cfg,
		log:    logger.Named("viewer"),
	}

	history, err := urlstate.OpenFileHistory(cfg.StateFile())
	if err != nil {
		return nil, fmt.Errorf("failed to open location history: %w", err)
	}
	v.history = history

	// Window first: the renderer needs its OpenGL context.
	v.window, err = window.New(cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	dw, dh := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{Width: dw, Height: dh})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()
	v.shots = screenshot.New(cfg.Window.ScreenshotDir, "starview")

	v.session = session.New(v.renderer, v.history, nativeOrigin, session.OptionsFromConfig(cfg), logger.Log)
	v.session.Resize(dw, dh)
	v.controls = newControls(v.session, v.history, v.log)
	v.controls.onTarget = func(name string) {
		v.window.SetTitle(cfg.Window.Title + ": " + name)
	}
	v.session.OnCatalog = func(c *catalog.Catalog) {
		v.renderer.SetScene(c)
		v.controls.setCatalog(c)
	}
	v.history.OnNavigate(func(string) { v.session.OnNavigate() })
	v.session.Start()

	ctx, v.cancel = context.WithCancel(ctx)
	if err := v.loadCatalog(ctx); err != nil {
		v.Close()
		return nil, err
	}

	v.log.Info("viewer initialized",
		zap.String("catalog", cfg.Catalog.Path),
		zap.String("state_file", cfg.StateFile()),
	)
	return v, nil
}

func (v *Viewer) loadCatalog(ctx context.Context) error {
	c := v.config.Catalog
	opts := catalog.Options{Seed: c.Seed, Jitter: c.Jitter}

	if !c.Watch {
		v.session.UseCatalogs(catalog.LoadAsync(ctx, c.Path, opts))
		return nil
	}
	results, err := catalog.Watch(ctx, c.Path, opts, catalogDebounce, logger.Named("catalog"))
	if err != nil {
		return fmt.Errorf("failed to watch catalog: %w", err)
	}
	v.session.UseCatalogs(results)
	return nil
}

// Run drives the frame loop until the window is closed.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting frame loop")

	for v.running {
		if v.input.Update() {
			v.running = false
		}

		for _, event := range v.input.Events() {
			if v.clicks.observe(event) {
				w, h := v.window.Size()
				v.controls.pick(event.X, event.Y, w, h)
			}
		}
		capture := false
		for _, event := range input.Dispatch(v.input.Events(), v.session.Input()) {
			switch event.Type {
			case input.EventQuit:
				v.running = false
			case input.EventScreenshot:
				capture = true
			case input.EventResize:
				dw, dh := v.window.DrawableSize()
				v.renderer.Resize(dw, dh)
				v.session.Resize(dw, dh)
			default:
				v.controls.handle(event)
			}
		}

		if dragging := v.session.Input().Dragging(); dragging != v.dragging {
			v.dragging = dragging
			v.window.SetDragging(dragging)
		}

		v.session.Tick(time.Now())
		if capture {
			v.saveScreenshot()
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// saveScreenshot writes the frame just drawn, before it is swapped out.
func (v *Viewer) saveScreenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.shots.Save(pixels, w, h)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved",
		zap.String("path", path),
		zap.String("location", "?"+urlstate.Encode(v.session.Pose().Snapshot())),
	)
}

// Close releases the catalog watcher, renderer and window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.cancel != nil {
		v.cancel()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
