package tools

import (
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/guyo13/osdlabel-sub000/internal/canvas"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

const (
	// doubleClickWindow is how close together two presses must land to
	// finish the path.
	doubleClickWindow = 400 * time.Millisecond
	doubleClickDist   = 5
	// closeTolerance decides whether a finished path snaps closed onto
	// its first vertex.
	closeTolerance = 8
)

// PathTool builds a polyline vertex by vertex. Every press commits the
// rubber-band vertex; a double press, or Enter, finishes the path. The
// trailing rubber vertex is dropped on finish. A finish with fewer than
// two committed vertices is rejected and the gesture stays live.
type PathTool struct {
	host Host
	now  func() time.Time

	points  []geometry.Point
	preview canvas.Shape

	lastPress   time.Time
	lastPressAt geometry.Point
}

func NewPathTool(host Host) *PathTool {
	return &PathTool{host: host, now: time.Now}
}

func (t *PathTool) Name() string                  { return "path" }
func (t *PathTool) ShapeType() geometry.ShapeType { return geometry.TypePath }
func (t *PathTool) KeyboardShortcuts() []KeyShortcut {
	return []KeyShortcut{{Rune: 'v'}}
}
func (t *PathTool) Previewing() bool { return t.preview != nil }

func (t *PathTool) Activate() {}

func (t *PathTool) Deactivate() { t.cancel() }

func (t *PathTool) cancel() {
	if t.preview != nil {
		t.host.Engine().Remove(t.preview.ID())
	}
	t.preview = nil
	t.points = nil
	t.lastPress = time.Time{}
}

func (t *PathTool) HandlePointer(pe canvas.PointerEvent) {
	e := pe.Event
	switch {
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		t.press(pe.Pos)
	case e.Direction == mouse.DirNone:
		t.rubber(pe.Pos)
	}
}

func (t *PathTool) press(pos geometry.Point) {
	now := t.now()
	isDouble := t.preview != nil &&
		now.Sub(t.lastPress) <= doubleClickWindow &&
		geometry.Dist(pos, t.lastPressAt) <= doubleClickDist
	t.lastPress = now
	t.lastPressAt = pos

	if isDouble {
		t.finish()
		return
	}
	if t.preview == nil {
		if !t.host.CanAdd(geometry.TypePath) {
			return
		}
		// Anchor plus rubber vertex.
		t.points = []geometry.Point{pos, pos}
		eng := t.host.Engine()
		t.preview = eng.NewShape("", geometry.PathOf(t.points, false), t.host.StyleFor(geometry.TypePath))
		eng.Add(t.preview)
		return
	}
	// Fix the rubber vertex and grow a new one.
	t.points[len(t.points)-1] = pos
	t.points = append(t.points, pos)
	t.sync()
}

func (t *PathTool) rubber(pos geometry.Point) {
	if t.preview == nil {
		return
	}
	t.points[len(t.points)-1] = pos
	t.sync()
}

func (t *PathTool) sync() {
	t.preview.SetGeometry(geometry.PathOf(t.points, false))
}

func (t *PathTool) finish() {
	if t.preview == nil {
		return
	}
	vertices := t.points[:len(t.points)-1]
	if len(vertices) < 2 {
		// Nothing worth keeping yet; reject the finish and let the
		// gesture continue collecting vertices.
		return
	}
	closed := len(vertices) > 3 &&
		geometry.Dist(vertices[0], vertices[len(vertices)-1]) <= closeTolerance
	if closed {
		vertices = vertices[:len(vertices)-1]
	}
	g := geometry.PathOf(vertices, closed)
	t.cancel()
	t.host.Commit(geometry.TypePath, g)
}

func (t *PathTool) HandleKey(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	switch e.Code {
	case key.CodeEscape:
		if t.preview != nil {
			t.cancel()
			return true
		}
	case key.CodeReturnEnter:
		if t.preview != nil {
			t.finish()
			return true
		}
	case key.CodeDeleteForward, key.CodeDeleteBackspace:
		t.host.DeleteSelection()
		return true
	}
	return false
}
