package viewer

import (
	"image"
	"math"

	"golang.org/x/mobile/event/mouse"

	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

// Port is the reference Viewer. It keeps the image-to-surface transform as
// a single affine matrix and implements left-drag panning and wheel zoom
// when navigation is enabled. All methods run on the event loop goroutine.
type Port struct {
	imageID     string
	imageBounds image.Rectangle
	viewSize    image.Point

	m          geometry.Matrix
	navEnabled bool
	minZoom    float64
	maxZoom    float64
	wheelStep  float64

	dragging  bool
	dragPrev  geometry.Point
	animation []func()
	resize    []func()
	open      []func(string)
}

// PortOption configures a Port.
type PortOption func(*Port)

// WithZoomLimits bounds the scale factor of the transform.
func WithZoomLimits(min, max float64) PortOption {
	return func(p *Port) {
		p.minZoom = min
		p.maxZoom = max
	}
}

// WithWheelStep sets the zoom factor applied per wheel notch.
func WithWheelStep(factor float64) PortOption {
	return func(p *Port) { p.wheelStep = factor }
}

func NewPort(viewWidth, viewHeight int, opts ...PortOption) *Port {
	p := &Port{
		viewSize:   image.Pt(viewWidth, viewHeight),
		m:          geometry.Identity(),
		navEnabled: true,
		minZoom:    0.05,
		maxZoom:    64,
		wheelStep:  1.1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open installs a new image and resets navigation to fit it in the view.
func (p *Port) Open(imageID string, bounds image.Rectangle) {
	p.imageID = imageID
	p.imageBounds = bounds
	p.fit()
	for _, fn := range p.open {
		fn(imageID)
	}
	p.animate()
}

// ImageID returns the id of the open image, or "".
func (p *Port) ImageID() string { return p.imageID }

// SetViewSize reports a resize of the hosting window.
func (p *Port) SetViewSize(w, h int) {
	p.viewSize = image.Pt(w, h)
	for _, fn := range p.resize {
		fn()
	}
}

func (p *Port) fit() {
	p.m = geometry.Identity()
	if p.imageBounds.Empty() || p.viewSize.X == 0 || p.viewSize.Y == 0 {
		return
	}
	sx := float64(p.viewSize.X) / float64(p.imageBounds.Dx())
	sy := float64(p.viewSize.Y) / float64(p.imageBounds.Dy())
	s := math.Min(sx, sy)
	ox := (float64(p.viewSize.X) - s*float64(p.imageBounds.Dx())) / 2
	oy := (float64(p.viewSize.Y) - s*float64(p.imageBounds.Dy())) / 2
	p.m = geometry.Translation(ox, oy).
		Mul(geometry.Scaling(s)).
		Mul(geometry.Translation(-float64(p.imageBounds.Min.X), -float64(p.imageBounds.Min.Y)))
}

func (p *Port) ImageToSurface(pt geometry.Point) geometry.Point {
	return p.m.Apply(pt)
}

func (p *Port) SurfaceToImage(pt geometry.Point) geometry.Point {
	inv, err := p.m.Invert()
	if err != nil {
		return pt
	}
	return inv.Apply(pt)
}

// Transform exposes the current image-to-surface matrix.
func (p *Port) Transform() geometry.Matrix { return p.m }

func (p *Port) ZoomBy(factor float64, about geometry.Point) {
	if factor <= 0 {
		return
	}
	scale := p.m.Scale() * factor
	if scale < p.minZoom || scale > p.maxZoom {
		return
	}
	p.m = geometry.Translation(about.X, about.Y).
		Mul(geometry.Scaling(factor)).
		Mul(geometry.Translation(-about.X, -about.Y)).
		Mul(p.m)
	p.animate()
}

func (p *Port) PanBy(dx, dy float64) {
	p.m = geometry.Translation(dx, dy).Mul(p.m)
	p.animate()
}

// RotateBy spins the view by theta radians about a surface point.
func (p *Port) RotateBy(theta float64, about geometry.Point) {
	p.m = geometry.Translation(about.X, about.Y).
		Mul(geometry.Rotation(theta)).
		Mul(geometry.Translation(-about.X, -about.Y)).
		Mul(p.m)
	p.animate()
}

func (p *Port) SetNavigationEnabled(enabled bool) {
	p.navEnabled = enabled
	if !enabled {
		p.dragging = false
	}
}

func (p *Port) NavigationEnabled() bool { return p.navEnabled }

func (p *Port) OnAnimation(fn func())       { p.animation = append(p.animation, fn) }
func (p *Port) OnResize(fn func())          { p.resize = append(p.resize, fn) }
func (p *Port) OnOpen(fn func(imageID string)) { p.open = append(p.open, fn) }

func (p *Port) animate() {
	for _, fn := range p.animation {
		fn()
	}
}

// HandlePointer implements the Port's own navigation: left-drag pans, wheel
// zooms about the cursor. Ignored while navigation is disabled.
func (p *Port) HandlePointer(e mouse.Event) {
	if !p.navEnabled {
		return
	}
	at := geometry.Point{X: float64(e.X), Y: float64(e.Y)}
	switch e.Button {
	case mouse.ButtonLeft:
		switch e.Direction {
		case mouse.DirPress:
			p.dragging = true
			p.dragPrev = at
		case mouse.DirRelease:
			p.dragging = false
		}
	case mouse.ButtonWheelUp:
		if wheelNotch(e.Direction) {
			p.ZoomBy(p.wheelStep, at)
		}
	case mouse.ButtonWheelDown:
		if wheelNotch(e.Direction) {
			p.ZoomBy(1/p.wheelStep, at)
		}
	case mouse.ButtonNone:
		if e.Direction == mouse.DirNone && p.dragging {
			p.PanBy(at.X-p.dragPrev.X, at.Y-p.dragPrev.Y)
			p.dragPrev = at
		}
	}
}

// wheelNotch accepts both ways drivers report a wheel click: a DirPress
// (with its DirRelease echo ignored) or a single DirStep.
func wheelNotch(d mouse.Direction) bool {
	return d == mouse.DirPress || d == mouse.DirStep
}
