package overlay

import (
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/guyo13/osdlabel-sub000/internal/canvas"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
	"github.com/guyo13/osdlabel-sub000/internal/viewer"
)

// Mode selects who owns pointer input.
type Mode int

const (
	// ModeNavigation leaves the viewer's own pan and zoom in charge.
	ModeNavigation Mode = iota
	// ModeAnnotation suppresses viewer navigation and forwards pointer
	// input to the canvas engine.
	ModeAnnotation
)

func (m Mode) String() string {
	if m == ModeAnnotation {
		return "annotation"
	}
	return "navigation"
}

const wheelZoomFactor = 1.1

// Router arbitrates pointer input between the viewer and the canvas engine.
// In annotation mode it forwards events into the engine, keeps a modifier
// held down as a temporary navigation escape hatch, and swallows plain
// wheel scrolls so the page cannot move under a gesture.
type Router struct {
	v    viewer.Viewer
	eng  canvas.Engine
	mode Mode

	// passMod is the modifier that lets navigation through while held.
	passMod key.Modifiers

	forwarding bool
	panning    bool
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithPassthroughModifier replaces the default Control passthrough key.
func WithPassthroughModifier(m key.Modifiers) RouterOption {
	return func(r *Router) { r.passMod = m }
}

func NewRouter(v viewer.Viewer, eng canvas.Engine, opts ...RouterOption) *Router {
	r := &Router{v: v, eng: eng, passMod: key.ModControl}
	for _, opt := range opts {
		opt(r)
	}
	// Engines hand injected events back to every pointer listener,
	// including this one. The forwarding flag keeps that echo from
	// re-entering the routing logic.
	eng.OnPointer(func(pe canvas.PointerEvent) {
		r.HandlePointer(pe.Event)
	})
	return r
}

func (r *Router) Mode() Mode { return r.mode }

// ScreenToImage converts a surface point through the live viewer mapping.
func (r *Router) ScreenToImage(p geometry.Point) geometry.Point {
	return r.v.SurfaceToImage(p)
}

// ImageToScreen converts an image point through the live viewer mapping.
func (r *Router) ImageToScreen(p geometry.Point) geometry.Point {
	return r.v.ImageToSurface(p)
}

// SetMode switches input ownership. Setting the current mode is a no-op.
func (r *Router) SetMode(m Mode) {
	if m == r.mode {
		return
	}
	r.mode = m
	r.panning = false
	r.v.SetNavigationEnabled(m == ModeNavigation)
}

// HandlePointer routes one pointer event. It reports whether the event was
// consumed; unconsumed events belong to the viewer.
func (r *Router) HandlePointer(e mouse.Event) bool {
	if r.forwarding {
		return true
	}
	if r.mode == ModeNavigation {
		return false
	}

	switch e.Button {
	case mouse.ButtonWheelUp, mouse.ButtonWheelDown:
		// Drivers disagree on wheel notches: some send DirPress/DirRelease
		// pairs, others a single DirStep.
		if e.Direction != mouse.DirPress && e.Direction != mouse.DirStep {
			return true
		}
		if e.Modifiers&r.passMod != 0 {
			factor := wheelZoomFactor
			if e.Button == mouse.ButtonWheelDown {
				factor = 1 / wheelZoomFactor
			}
			r.v.ZoomBy(factor, geometry.Point{X: float64(e.X), Y: float64(e.Y)})
		}
		// Plain scrolls die here either way.
		return true
	}

	// Modifier+drag is a pan escape hatch: viewer navigation comes back on
	// for the one gesture, and the events fall through to the viewer
	// instead of the engine.
	if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress && e.Modifiers&r.passMod != 0 {
		r.panning = true
		r.v.SetNavigationEnabled(true)
		return false
	}
	if r.panning {
		switch e.Direction {
		case mouse.DirNone:
			return false
		case mouse.DirRelease:
			r.panning = false
			r.v.SetNavigationEnabled(false)
			return false
		}
	}

	r.forwarding = true
	r.eng.InjectPointer(e)
	r.forwarding = false
	return true
}
