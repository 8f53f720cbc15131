package viewer

import (
	"image"
	"math"
	"testing"

	"golang.org/x/mobile/event/mouse"

	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

func approx(a, b geometry.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestOpenFitsImage(t *testing.T) {
	p := NewPort(800, 400)
	p.Open("img-1", image.Rect(0, 0, 400, 400))

	// 400x400 into 800x400 scales by 1 and centers horizontally.
	got := p.ImageToSurface(geometry.Point{})
	if !approx(got, geometry.Point{X: 200, Y: 0}) {
		t.Errorf("origin maps to %v, want (200, 0)", got)
	}
	got = p.ImageToSurface(geometry.Point{X: 400, Y: 400})
	if !approx(got, geometry.Point{X: 600, Y: 400}) {
		t.Errorf("corner maps to %v, want (600, 400)", got)
	}
}

func TestSurfaceToImageInverts(t *testing.T) {
	p := NewPort(640, 480)
	p.Open("img-1", image.Rect(0, 0, 1000, 800))
	p.ZoomBy(2.5, geometry.Point{X: 100, Y: 100})
	p.PanBy(-30, 12)

	want := geometry.Point{X: 123, Y: 456}
	got := p.SurfaceToImage(p.ImageToSurface(want))
	if !approx(got, want) {
		t.Errorf("round trip = %v, want %v", got, want)
	}
}

func TestZoomByKeepsAnchorFixed(t *testing.T) {
	p := NewPort(640, 480)
	p.Open("img-1", image.Rect(0, 0, 640, 480))
	anchor := geometry.Point{X: 320, Y: 240}
	before := p.SurfaceToImage(anchor)
	p.ZoomBy(3, anchor)
	after := p.SurfaceToImage(anchor)
	if !approx(before, after) {
		t.Errorf("anchor moved from %v to %v", before, after)
	}
}

func TestZoomByClampsScale(t *testing.T) {
	p := NewPort(100, 100, WithZoomLimits(0.5, 4))
	p.Open("img-1", image.Rect(0, 0, 100, 100))
	p.ZoomBy(100, geometry.Point{})
	if s := p.Transform().Scale(); s != 1 {
		t.Errorf("scale after rejected zoom = %v, want 1", s)
	}
	p.ZoomBy(4, geometry.Point{})
	if s := p.Transform().Scale(); math.Abs(s-4) > 1e-9 {
		t.Errorf("scale = %v, want 4", s)
	}
}

func TestHandlePointerDragPans(t *testing.T) {
	p := NewPort(640, 480)
	p.Open("img-1", image.Rect(0, 0, 640, 480))
	frames := 0
	p.OnAnimation(func() { frames++ })

	p.HandlePointer(mouse.Event{X: 100, Y: 100, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	p.HandlePointer(mouse.Event{X: 130, Y: 90, Direction: mouse.DirNone})
	p.HandlePointer(mouse.Event{X: 100, Y: 100, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})

	got := p.ImageToSurface(geometry.Point{})
	if !approx(got, geometry.Point{X: 30, Y: -10}) {
		t.Errorf("origin after drag = %v, want (30, -10)", got)
	}
	if frames == 0 {
		t.Error("no animation frames fired during drag")
	}
}

func TestHandlePointerWheelZooms(t *testing.T) {
	p := NewPort(640, 480)
	p.Open("img-1", image.Rect(0, 0, 640, 480))
	before := p.Transform().Scale()

	// Both wheel reporting styles zoom: press/release pairs and bare steps.
	p.HandlePointer(mouse.Event{X: 320, Y: 240, Button: mouse.ButtonWheelUp, Direction: mouse.DirPress})
	p.HandlePointer(mouse.Event{X: 320, Y: 240, Button: mouse.ButtonWheelUp, Direction: mouse.DirRelease})
	p.HandlePointer(mouse.Event{X: 320, Y: 240, Button: mouse.ButtonWheelDown, Direction: mouse.DirStep})

	if s := p.Transform().Scale(); math.Abs(s-before) > 1e-9 {
		t.Errorf("scale = %v, want %v after one notch up and one down", s, before)
	}
	p.HandlePointer(mouse.Event{X: 320, Y: 240, Button: mouse.ButtonWheelUp, Direction: mouse.DirStep})
	if s := p.Transform().Scale(); s <= before {
		t.Errorf("scale = %v after step notch, want > %v", s, before)
	}
}

func TestHandlePointerIgnoredWhenNavigationDisabled(t *testing.T) {
	p := NewPort(640, 480)
	p.Open("img-1", image.Rect(0, 0, 640, 480))
	before := p.Transform()

	p.SetNavigationEnabled(false)
	p.HandlePointer(mouse.Event{X: 100, Y: 100, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	p.HandlePointer(mouse.Event{X: 200, Y: 200, Direction: mouse.DirNone})
	p.HandlePointer(mouse.Event{X: 10, Y: 10, Button: mouse.ButtonWheelUp, Direction: mouse.DirPress})

	if p.Transform() != before {
		t.Errorf("transform changed while navigation disabled")
	}
}

func TestOpenResetsNavigationAndNotifies(t *testing.T) {
	p := NewPort(640, 480)
	p.Open("img-1", image.Rect(0, 0, 640, 480))
	p.ZoomBy(2, geometry.Point{X: 50, Y: 50})

	var opened []string
	p.OnOpen(func(id string) { opened = append(opened, id) })
	p.Open("img-2", image.Rect(0, 0, 640, 480))

	if len(opened) != 1 || opened[0] != "img-2" {
		t.Fatalf("opened = %v, want [img-2]", opened)
	}
	if s := p.Transform().Scale(); math.Abs(s-1) > 1e-9 {
		t.Errorf("scale after open = %v, want 1", s)
	}
}
