//go:build js && wasm

// Command starview-web drives the camera of a browser page. The page owns
// the 3D scene and exposes it as window.starviewScene with setCatalog,
// setCamera, setProjection and render; this program owns navigation and
// the location string.
package main

import (
	"fmt"
	"syscall/js"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/starview/internal/catalog"
	"github.com/Faultbox/starview/internal/config"
	"github.com/Faultbox/starview/internal/logger"
	"github.com/Faultbox/starview/internal/nav/input"
	"github.com/Faultbox/starview/internal/nav/session"
	"github.com/Faultbox/starview/internal/nav/urlstate"
)

// sceneBridge forwards camera updates to the page's scene object.
type sceneBridge struct {
	scene js.Value
}

func (b sceneBridge) SetCamera(p mgl64.Vec3, q mgl64.Quat) {
	b.scene.Call("setCamera", p.X(), p.Y(), p.Z(), q.V.X(), q.V.Y(), q.V.Z(), q.W)
}

func (b sceneBridge) SetProjection(p session.Projection) {
	b.scene.Call("setProjection", p.FOV, p.Aspect, p.Near, p.Far)
}

func (b sceneBridge) Redraw() { b.scene.Call("render") }

// browserHistory is the page's location and history object.
type browserHistory struct {
	win js.Value
}

func (h browserHistory) Query() string {
	return h.win.Get("location").Get("search").String()
}

// ReplaceState turns a thrown SecurityError into an error.
func (h browserHistory) ReplaceState(query string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("history.replaceState: %v", r)
		}
	}()
	h.win.Get("history").Call("replaceState", js.Null(), "", query)
	return nil
}

func main() {
	win := js.Global()
	doc := win.Get("document")

	cfg := pageConfig(win)
	if err := logger.Init(cfg.Logging.Level, ""); err != nil {
		fmt.Println("starview: logger:", err)
		return
	}
	log := logger.Named("web")

	scene := win.Get("starviewScene")
	if !scene.Truthy() {
		log.Error("window.starviewScene is missing, nothing to drive")
		return
	}

	origin := urlstate.Origin{
		Secure:   win.Get("isSecureContext").Truthy(),
		Hostname: win.Get("location").Get("hostname").String(),
	}
	s := session.New(sceneBridge{scene}, browserHistory{win}, origin, session.OptionsFromConfig(cfg), logger.Log)
	s.OnCatalog = func(c *catalog.Catalog) {
		scene.Call("setCatalog", js.ValueOf(sceneEntries(c)))
	}
	s.Resize(win.Get("innerWidth").Int(), win.Get("innerHeight").Int())

	catalogs := make(chan catalog.Result, 1)
	s.UseCatalogs(catalogs)
	s.Start()

	ctrl := s.Input()
	body := doc.Get("body")
	setCursor := func() {
		cursor := "grab"
		if ctrl.Dragging() {
			cursor = "grabbing"
		}
		body.Get("style").Set("cursor", cursor)
	}
	setCursor()

	listen(doc, "keydown", func(e js.Value) { ctrl.OnKeyDown(e.Get("code").String()) })
	listen(doc, "keyup", func(e js.Value) { ctrl.OnKeyUp(e.Get("code").String()) })
	listen(win, "blur", func(js.Value) {
		ctrl.Blur()
		setCursor()
	})
	listen(win, "contextmenu", func(e js.Value) { e.Call("preventDefault") })
	listen(win, "mousedown", func(e js.Value) {
		ctrl.OnPointerDown(input.Button(e.Get("button").Int()))
		setCursor()
	})
	listen(win, "mouseup", func(e js.Value) {
		ctrl.OnPointerUp(input.Button(e.Get("button").Int()))
		setCursor()
	})
	listen(win, "mousemove", func(e js.Value) {
		ctrl.OnPointerMove(e.Get("movementX").Float(), e.Get("movementY").Float())
	})
	listen(win, "wheel", func(e js.Value) {
		hovered := doc.Call("elementFromPoint", e.Get("clientX"), e.Get("clientY"))
		cursor := ""
		if hovered.Truthy() {
			cursor = win.Call("getComputedStyle", hovered).Get("cursor").String()
		}
		ctrl.OnWheel(wheelEvent(e.Get("deltaY").Float(), e.Get("shiftKey").Bool(), hovered.Truthy(), cursor))
	})
	listen(win, "resize", func(js.Value) {
		s.Resize(win.Get("innerWidth").Int(), win.Get("innerHeight").Int())
	})
	listen(win, "popstate", func(js.Value) { s.OnNavigate() })

	opts := catalog.Options{Seed: cfg.Catalog.Seed, Jitter: cfg.Catalog.Jitter}
	win.Set("starviewLoadCatalog", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return "starviewLoadCatalog: missing catalog text"
		}
		text := args[0].String()
		go func() {
			c, err := catalog.Parse([]byte(text), opts)
			catalogs <- catalog.Result{Catalog: c, Err: err}
		}()
		return nil
	}))
	win.Set("starviewSelect", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		if err := s.Select(args[0].String()); err != nil {
			return err.Error()
		}
		return nil
	}))
	win.Set("starviewModelFailed", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		if err := s.MarkPlaceholder(args[0].String()); err != nil {
			return err.Error()
		}
		return nil
	}))

	var frame js.Func
	frame = js.FuncOf(func(this js.Value, args []js.Value) any {
		s.Tick(time.Now())
		win.Call("requestAnimationFrame", frame)
		return nil
	})
	win.Call("requestAnimationFrame", frame)

	log.Info("starview ready", zap.String("host", origin.Hostname), zap.Bool("secure", origin.Secure))
	if ready := win.Get("starviewReady"); ready.Type() == js.TypeFunction {
		ready.Invoke()
	}
	select {}
}

// pageConfig reads YAML from window.starviewConfig when the page sets it.
func pageConfig(win js.Value) *config.Config {
	v := win.Get("starviewConfig")
	if v.Type() != js.TypeString {
		return config.Default()
	}
	cfg, err := config.Parse([]byte(v.String()))
	if err != nil {
		fmt.Println("starview: ignoring window.starviewConfig:", err)
		return config.Default()
	}
	return cfg
}

// listen registers fn for the lifetime of the page.
func listen(target js.Value, event string, fn func(e js.Value)) {
	target.Call("addEventListener", event, js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(args[0])
		}
		return nil
	}))
}
