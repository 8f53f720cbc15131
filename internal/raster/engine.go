package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/mobile/event/mouse"

	"github.com/guyo13/osdlabel-sub000/internal/canvas"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

var handleColor = color.RGBA{R: 0x00, G: 0x7a, B: 0xff, A: 0xff}

// hitTolerancePx is the pick radius around outlines, in surface pixels.
const hitTolerancePx = 6

// Engine implements canvas.Engine on a software rasterizer. Shapes live in
// image coordinates; the installed transform is applied at render and
// pointer-mapping time only. Not safe for concurrent use.
type Engine struct {
	shapes []*Shape
	byID   map[string]*Shape

	transform geometry.Matrix
	inverse   geometry.Matrix

	selection   []string
	interactive bool

	pointerHandlers   []canvas.PointerHandler
	selectionHandlers []func([]string)
	modifiedHandlers  []func(string)

	dragging bool
	dragID   string
	dragPrev geometry.Point
	moved    bool
}

func NewEngine() *Engine {
	return &Engine{
		byID:        make(map[string]*Shape),
		transform:   geometry.Identity(),
		inverse:     geometry.Identity(),
		interactive: true,
	}
}

func (e *Engine) RecordFormat() string { return RecordFormat }

func (e *Engine) NewShape(id string, g geometry.Geometry, st canvas.Style) canvas.Shape {
	return newShape(id, g, st)
}

func (e *Engine) Add(s canvas.Shape) {
	rs, ok := s.(*Shape)
	if !ok {
		rs = newShape(s.ID(), s.Geometry(), s.Style())
	}
	if _, exists := e.byID[rs.ID()]; exists {
		return
	}
	e.shapes = append(e.shapes, rs)
	e.byID[rs.ID()] = rs
}

func (e *Engine) Remove(id string) bool {
	if _, ok := e.byID[id]; !ok {
		return false
	}
	delete(e.byID, id)
	for i, s := range e.shapes {
		if s.ID() == id {
			e.shapes = append(e.shapes[:i], e.shapes[i+1:]...)
			break
		}
	}
	for i, sel := range e.selection {
		if sel == id {
			e.setSelection(append(append([]string{}, e.selection[:i]...), e.selection[i+1:]...))
			break
		}
	}
	return true
}

func (e *Engine) Get(id string) (canvas.Shape, bool) {
	s, ok := e.byID[id]
	if !ok {
		return nil, false
	}
	return s, true
}

func (e *Engine) Shapes() []canvas.Shape {
	out := make([]canvas.Shape, len(e.shapes))
	for i, s := range e.shapes {
		out[i] = s
	}
	return out
}

func (e *Engine) SetTransform(m geometry.Matrix) {
	e.transform = m
	inv, err := m.Invert()
	if err != nil {
		inv = geometry.Identity()
	}
	e.inverse = inv
}

func (e *Engine) Transform() geometry.Matrix { return e.transform }

func (e *Engine) Select(ids ...string) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := e.byID[id]; ok {
			valid = append(valid, id)
		}
	}
	e.setSelection(valid)
}

func (e *Engine) ClearSelection() { e.setSelection(nil) }

func (e *Engine) Selection() []string {
	return append([]string{}, e.selection...)
}

func (e *Engine) setSelection(ids []string) {
	if equalIDs(e.selection, ids) {
		return
	}
	e.selection = ids
	snapshot := append([]string{}, ids...)
	for _, fn := range e.selectionHandlers {
		fn(snapshot)
	}
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (e *Engine) SetInteractive(enabled bool) {
	e.interactive = enabled
	if !enabled {
		e.dragging = false
	}
}

func (e *Engine) OnPointer(fn canvas.PointerHandler)   { e.pointerHandlers = append(e.pointerHandlers, fn) }
func (e *Engine) OnSelection(fn func([]string))        { e.selectionHandlers = append(e.selectionHandlers, fn) }
func (e *Engine) OnModified(fn func(string))           { e.modifiedHandlers = append(e.modifiedHandlers, fn) }

// InjectPointer maps a surface-space pointer event into image coordinates,
// runs the engine's own selection and drag handling when interactive, then
// fans the event out to every registered pointer listener.
func (e *Engine) InjectPointer(ev mouse.Event) {
	pos := e.inverse.Apply(geometry.Point{X: float64(ev.X), Y: float64(ev.Y)})
	if e.interactive && ev.Button == mouse.ButtonLeft {
		switch ev.Direction {
		case mouse.DirPress:
			if s, ok := e.HitTest(pos); ok {
				e.Select(s.ID())
				e.dragging = true
				e.dragID = s.ID()
				e.dragPrev = pos
				e.moved = false
			} else {
				e.ClearSelection()
			}
		case mouse.DirRelease:
			if e.dragging && e.moved {
				for _, fn := range e.modifiedHandlers {
					fn(e.dragID)
				}
			}
			e.dragging = false
		}
	}
	if e.interactive && ev.Direction == mouse.DirNone && e.dragging {
		if s, ok := e.byID[e.dragID]; ok {
			s.SetGeometry(s.Geometry().Translate(pos.X-e.dragPrev.X, pos.Y-e.dragPrev.Y))
			e.dragPrev = pos
			e.moved = true
		}
	}
	pe := canvas.PointerEvent{Event: ev, Pos: pos}
	for _, fn := range e.pointerHandlers {
		fn(pe)
	}
}

// HitTest returns the topmost shape whose outline lies within the pick
// tolerance of p, in image coordinates.
func (e *Engine) HitTest(p geometry.Point) (canvas.Shape, bool) {
	scale := e.transform.Scale()
	if scale == 0 {
		scale = 1
	}
	tol := hitTolerancePx / scale
	for i := len(e.shapes) - 1; i >= 0; i-- {
		s := e.shapes[i]
		if hit(s.Geometry(), p, tol+s.Style().StrokeWidth/2) {
			return s, true
		}
	}
	return nil, false
}

func hit(g geometry.Geometry, p geometry.Point, tol float64) bool {
	switch g.Type {
	case geometry.TypeRectangle:
		c := rectCorners(g.Rectangle)
		for i := range c {
			if geometry.DistToSegment(p, c[i], c[(i+1)%len(c)]) <= tol {
				return true
			}
		}
	case geometry.TypeCircle:
		return math.Abs(geometry.Dist(p, g.Circle.Center)-g.Circle.Radius) <= tol
	case geometry.TypeLine:
		return geometry.DistToSegment(p, g.Line.Start, g.Line.End) <= tol
	case geometry.TypePoint:
		return geometry.Dist(p, g.Point.Position) <= pointMarkerRadius+tol
	case geometry.TypePath:
		pts := g.Path.Points
		for i := 0; i+1 < len(pts); i++ {
			if geometry.DistToSegment(p, pts[i], pts[i+1]) <= tol {
				return true
			}
		}
		if g.Path.Closed && len(pts) > 2 {
			return geometry.DistToSegment(p, pts[len(pts)-1], pts[0]) <= tol
		}
	}
	return false
}

func rectCorners(r *geometry.RectangleData) [4]geometry.Point {
	sin, cos := math.Sincos(r.Rotation * math.Pi / 180)
	rot := func(x, y float64) geometry.Point {
		return geometry.Point{
			X: r.Origin.X + x*cos - y*sin,
			Y: r.Origin.Y + x*sin + y*cos,
		}
	}
	return [4]geometry.Point{
		rot(0, 0), rot(r.Width, 0), rot(r.Width, r.Height), rot(0, r.Height),
	}
}

// Render rasterizes all shapes into dst, topmost last. Shape fills are not
// rastered; outlines, point markers, and selection handles are.
func (e *Engine) Render(dst *image.RGBA) {
	selected := make(map[string]bool, len(e.selection))
	for _, id := range e.selection {
		selected[id] = true
	}
	for _, s := range e.shapes {
		e.renderShape(dst, s)
		if selected[s.ID()] {
			e.renderHandles(dst, s)
		}
	}
}

func (e *Engine) renderShape(dst *image.RGBA, s *Shape) {
	st := s.Style()
	if st.Opacity <= 0 {
		return
	}
	col := withOpacity(st.Stroke, st.Opacity)
	scale := e.transform.Scale()
	thick := int(math.Round(st.StrokeWidth * scale))
	if thick < 1 {
		thick = 1
	}
	g := s.Geometry()
	switch g.Type {
	case geometry.TypeRectangle:
		c := rectCorners(g.Rectangle)
		for i := range c {
			e.segment(dst, c[i], c[(i+1)%len(c)], col, thick, st.Dashed)
		}
	case geometry.TypeCircle:
		center := e.transform.Apply(g.Circle.Center)
		drawCircleOutline(dst, round(center.X), round(center.Y), round(g.Circle.Radius*scale), col, thick)
	case geometry.TypeLine:
		e.segment(dst, g.Line.Start, g.Line.End, col, thick, st.Dashed)
	case geometry.TypePoint:
		at := e.transform.Apply(g.Point.Position)
		fill := col
		if st.Fill.A > 0 {
			fill = withOpacity(st.Fill, st.Opacity)
		}
		drawFilledCircle(dst, round(at.X), round(at.Y), round(pointMarkerRadius*scale), fill)
	case geometry.TypePath:
		pts := g.Path.Points
		for i := 0; i+1 < len(pts); i++ {
			e.segment(dst, pts[i], pts[i+1], col, thick, st.Dashed)
		}
		if g.Path.Closed && len(pts) > 2 {
			e.segment(dst, pts[len(pts)-1], pts[0], col, thick, st.Dashed)
		}
	}
}

func (e *Engine) segment(dst *image.RGBA, a, b geometry.Point, col color.Color, thick int, dashed bool) {
	pa := e.transform.Apply(a)
	pb := e.transform.Apply(b)
	if dashed {
		drawDashedSegment(dst, round(pa.X), round(pa.Y), round(pb.X), round(pb.Y), col, thick, 4)
		return
	}
	drawLine(dst, round(pa.X), round(pa.Y), round(pb.X), round(pb.Y), col, thick)
}

func (e *Engine) renderHandles(dst *image.RGBA, s *Shape) {
	min, max, ok := bounds(s.Geometry())
	if !ok {
		return
	}
	corners := []geometry.Point{
		min, {X: max.X, Y: min.Y}, max, {X: min.X, Y: max.Y},
	}
	for _, c := range corners {
		at := e.transform.Apply(c)
		drawFilledRect(dst, round(at.X), round(at.Y), 6, handleColor)
	}
}

func bounds(g geometry.Geometry) (min, max geometry.Point, ok bool) {
	var pts []geometry.Point
	switch g.Type {
	case geometry.TypeRectangle:
		c := rectCorners(g.Rectangle)
		pts = c[:]
	case geometry.TypeCircle:
		c := g.Circle
		pts = []geometry.Point{
			{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius},
			{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius},
		}
	case geometry.TypeLine:
		pts = []geometry.Point{g.Line.Start, g.Line.End}
	case geometry.TypePoint:
		p := g.Point.Position
		pts = []geometry.Point{
			{X: p.X - pointMarkerRadius, Y: p.Y - pointMarkerRadius},
			{X: p.X + pointMarkerRadius, Y: p.Y + pointMarkerRadius},
		}
	case geometry.TypePath:
		pts = g.Path.Points
	}
	if len(pts) == 0 {
		return min, max, false
	}
	min, max = pts[0], pts[0]
	for _, p := range pts[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max, true
}

func round(f float64) int { return int(math.Round(f)) }
