package tools

import (
	"testing"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/guyo13/osdlabel-sub000/internal/canvas"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
	"github.com/guyo13/osdlabel-sub000/internal/raster"
)

type commit struct {
	t geometry.ShapeType
	g geometry.Geometry
}

type fakeHost struct {
	eng      *raster.Engine
	denied   map[geometry.ShapeType]bool
	commits  []commit
	deletes  int
}

func newFakeHost() *fakeHost {
	return &fakeHost{eng: raster.NewEngine(), denied: map[geometry.ShapeType]bool{}}
}

func (h *fakeHost) CanAdd(t geometry.ShapeType) bool { return !h.denied[t] }
func (h *fakeHost) Commit(t geometry.ShapeType, g geometry.Geometry) {
	h.commits = append(h.commits, commit{t, g})
}
func (h *fakeHost) Engine() canvas.Engine                       { return h.eng }
func (h *fakeHost) StyleFor(geometry.ShapeType) canvas.Style    { return canvas.DefaultStyle() }
func (h *fakeHost) DeleteSelection()                            { h.deletes++ }

func press(x, y float64) canvas.PointerEvent {
	return canvas.PointerEvent{
		Event: mouse.Event{Button: mouse.ButtonLeft, Direction: mouse.DirPress},
		Pos:   geometry.Point{X: x, Y: y},
	}
}

func move(x, y float64) canvas.PointerEvent {
	return canvas.PointerEvent{
		Event: mouse.Event{Direction: mouse.DirNone},
		Pos:   geometry.Point{X: x, Y: y},
	}
}

func release(x, y float64) canvas.PointerEvent {
	return canvas.PointerEvent{
		Event: mouse.Event{Button: mouse.ButtonLeft, Direction: mouse.DirRelease},
		Pos:   geometry.Point{X: x, Y: y},
	}
}

func TestRectangleDragCommits(t *testing.T) {
	h := newFakeHost()
	tool := NewRectangleTool(h)

	tool.HandlePointer(press(110, 70))
	if !tool.Previewing() {
		t.Fatal("no preview after press")
	}
	tool.HandlePointer(move(60, 40))
	tool.HandlePointer(release(10, 20))

	if tool.Previewing() {
		t.Error("preview survived release")
	}
	if len(h.eng.Shapes()) != 0 {
		t.Error("preview shape left on engine")
	}
	if len(h.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(h.commits))
	}
	r := h.commits[0].g.Rectangle
	if r.Origin != (geometry.Point{X: 10, Y: 20}) || r.Width != 100 || r.Height != 50 {
		t.Errorf("committed rect = %+v", r)
	}
}

func TestDragRefusedWhenDisabled(t *testing.T) {
	h := newFakeHost()
	h.denied[geometry.TypeRectangle] = true
	tool := NewRectangleTool(h)

	tool.HandlePointer(press(0, 0))
	if tool.Previewing() {
		t.Error("preview started while tool disabled")
	}
	tool.HandlePointer(release(50, 50))
	if len(h.commits) != 0 {
		t.Errorf("commits = %d, want 0", len(h.commits))
	}
}

func TestDragEscapeCancels(t *testing.T) {
	h := newFakeHost()
	tool := NewCircleTool(h)

	tool.HandlePointer(press(50, 50))
	tool.HandlePointer(move(80, 50))
	if !tool.HandleKey(key.Event{Code: key.CodeEscape, Direction: key.DirPress}) {
		t.Fatal("escape not consumed")
	}
	if tool.Previewing() || len(h.eng.Shapes()) != 0 {
		t.Error("preview survived escape")
	}
	tool.HandlePointer(release(80, 50))
	if len(h.commits) != 0 {
		t.Errorf("commits = %d, want 0", len(h.commits))
	}
}

func TestClickDiscardedForRectButKeptForPoint(t *testing.T) {
	h := newFakeHost()
	rect := NewRectangleTool(h)
	rect.HandlePointer(press(10, 10))
	rect.HandlePointer(release(10, 10))
	if len(h.commits) != 0 {
		t.Fatalf("degenerate rect committed")
	}

	point := NewPointTool(h)
	point.HandlePointer(press(30, 40))
	if len(h.commits) != 1 || h.commits[0].t != geometry.TypePoint {
		t.Fatalf("commits = %+v, want one point", h.commits)
	}
	if h.commits[0].g.Point.Position != (geometry.Point{X: 30, Y: 40}) {
		t.Errorf("point at %v", h.commits[0].g.Point.Position)
	}
	point.HandlePointer(release(30, 40))
	if len(h.commits) != 1 {
		t.Errorf("commits = %d after release, want 1", len(h.commits))
	}
}

func TestPointCommitsOnPressIgnoringDrag(t *testing.T) {
	h := newFakeHost()
	point := NewPointTool(h)

	point.HandlePointer(press(10, 10))
	if len(h.commits) != 1 {
		t.Fatalf("commits after press = %d, want 1", len(h.commits))
	}
	if point.Previewing() {
		t.Error("point tool left a preview behind")
	}
	if len(h.eng.Shapes()) != 0 {
		t.Error("press created an engine shape beyond the commit")
	}

	// Dragging away and releasing must not move or duplicate the point,
	// and switching tools in between must not discard it.
	point.HandlePointer(move(50, 50))
	point.Deactivate()
	point.HandlePointer(release(50, 50))
	if len(h.commits) != 1 {
		t.Fatalf("commits after drag = %d, want 1", len(h.commits))
	}
	if h.commits[0].g.Point.Position != (geometry.Point{X: 10, Y: 10}) {
		t.Errorf("point at %v, want press position", h.commits[0].g.Point.Position)
	}
}

func TestPathDoubleClickFinish(t *testing.T) {
	h := newFakeHost()
	tool := NewPathTool(h)
	clock := time.Unix(1000, 0)
	tool.now = func() time.Time { return clock }

	tool.HandlePointer(press(10, 10))
	tool.HandlePointer(move(50, 50))
	clock = clock.Add(time.Second)
	tool.HandlePointer(press(50, 50))
	clock = clock.Add(100 * time.Millisecond)
	tool.HandlePointer(press(50, 50))

	if len(h.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(h.commits))
	}
	p := h.commits[0].g.Path
	want := []geometry.Point{{X: 10, Y: 10}, {X: 50, Y: 50}}
	if p.Closed || len(p.Points) != 2 || p.Points[0] != want[0] || p.Points[1] != want[1] {
		t.Errorf("path = %+v, want open %v", p, want)
	}
	if len(h.eng.Shapes()) != 0 {
		t.Error("preview left on engine")
	}
}

func TestPathSingleVertexFinishRejected(t *testing.T) {
	h := newFakeHost()
	tool := NewPathTool(h)
	clock := time.Unix(1000, 0)
	tool.now = func() time.Time { return clock }

	tool.HandlePointer(press(10, 10))
	clock = clock.Add(50 * time.Millisecond)
	tool.HandlePointer(press(10, 10))

	if len(h.commits) != 0 {
		t.Errorf("commits = %d, want 0", len(h.commits))
	}
	// The rejected finish leaves the gesture collecting vertices.
	if !tool.Previewing() {
		t.Fatal("gesture dropped by rejected finish")
	}
	clock = clock.Add(time.Second)
	tool.HandlePointer(press(80, 10))
	if !tool.HandleKey(key.Event{Code: key.CodeReturnEnter, Direction: key.DirPress}) {
		t.Fatal("enter not consumed")
	}
	if len(h.commits) != 1 || len(h.commits[0].g.Path.Points) != 2 {
		t.Fatalf("commits = %+v, want one 2-vertex path", h.commits)
	}
}

func TestPathClosesNearStart(t *testing.T) {
	h := newFakeHost()
	tool := NewPathTool(h)
	clock := time.Unix(1000, 0)
	tool.now = func() time.Time { return clock }

	vertices := []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 3, Y: 2}}
	for _, v := range vertices {
		clock = clock.Add(time.Second)
		tool.HandlePointer(press(v.X, v.Y))
	}
	clock = clock.Add(100 * time.Millisecond)
	tool.HandlePointer(press(3, 2))

	if len(h.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(h.commits))
	}
	p := h.commits[0].g.Path
	if !p.Closed || len(p.Points) != 3 {
		t.Errorf("path = %+v, want closed triangle", p)
	}
}

func TestPathEnterFinishes(t *testing.T) {
	h := newFakeHost()
	tool := NewPathTool(h)
	clock := time.Unix(1000, 0)
	tool.now = func() time.Time { return clock }

	tool.HandlePointer(press(0, 0))
	clock = clock.Add(time.Second)
	tool.HandlePointer(press(40, 0))
	tool.HandlePointer(move(99, 99))
	if !tool.HandleKey(key.Event{Code: key.CodeReturnEnter, Direction: key.DirPress}) {
		t.Fatal("enter not consumed")
	}
	if len(h.commits) != 1 || len(h.commits[0].g.Path.Points) != 2 {
		t.Fatalf("commits = %+v, want one 2-vertex path", h.commits)
	}
}

func TestPathRefusedWhenDisabled(t *testing.T) {
	h := newFakeHost()
	h.denied[geometry.TypePath] = true
	tool := NewPathTool(h)
	tool.HandlePointer(press(0, 0))
	if tool.Previewing() {
		t.Error("preview started while disabled")
	}
}

func TestSelectToolDeleteShortcut(t *testing.T) {
	h := newFakeHost()
	tool := NewSelectTool(h)
	tool.Activate()

	for _, code := range []key.Code{key.CodeDeleteForward, key.CodeDeleteBackspace} {
		if !tool.HandleKey(key.Event{Code: code, Direction: key.DirPress}) {
			t.Errorf("code %v not consumed", code)
		}
	}
	if h.deletes != 2 {
		t.Errorf("deletes = %d, want 2", h.deletes)
	}
}

func TestSelectToolDeactivateClearsSelection(t *testing.T) {
	h := newFakeHost()
	s := h.eng.NewShape("a", geometry.PointAt(geometry.Point{X: 1, Y: 1}), canvas.DefaultStyle())
	h.eng.Add(s)
	h.eng.Select("a")

	tool := NewSelectTool(h)
	tool.Activate()
	tool.Deactivate()
	if len(h.eng.Selection()) != 0 {
		t.Errorf("selection = %v after deactivate", h.eng.Selection())
	}
}
