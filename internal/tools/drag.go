package tools

import (
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/guyo13/osdlabel-sub000/internal/canvas"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

// minDragDist is the image-space distance below which a drag counts as a
// click and the gesture is discarded.
const minDragDist = 2

// DragTool is the press-drag-release machine behind the rectangle, circle,
// line, and point tools. The builder turns the anchor and current pointer
// position into geometry. An immediate tool has no drag phase at all: the
// press itself commits and the preview machinery never runs.
type DragTool struct {
	name      string
	shapeType geometry.ShapeType
	build     func(anchor, current geometry.Point) geometry.Geometry
	immediate bool
	shortcuts []KeyShortcut

	host    Host
	anchor  geometry.Point
	preview canvas.Shape
}

func newDragTool(host Host, name string, t geometry.ShapeType, immediate bool, shortcut rune,
	build func(anchor, current geometry.Point) geometry.Geometry) *DragTool {
	return &DragTool{
		name:      name,
		shapeType: t,
		build:     build,
		immediate: immediate,
		shortcuts: []KeyShortcut{{Rune: shortcut}},
		host:      host,
	}
}

// NewRectangleTool drags out an axis-aligned rectangle.
func NewRectangleTool(host Host) *DragTool {
	return newDragTool(host, "rectangle", geometry.TypeRectangle, false, 'r', geometry.RectangleFromDrag)
}

// NewCircleTool drags from centre to radius.
func NewCircleTool(host Host) *DragTool {
	return newDragTool(host, "circle", geometry.TypeCircle, false, 'c', geometry.CircleFromDrag)
}

// NewLineTool drags a segment.
func NewLineTool(host Host) *DragTool {
	return newDragTool(host, "line", geometry.TypeLine, false, 'l', geometry.LineFromDrag)
}

// NewPointTool places a marker the moment the press lands; the pointer can
// move or release anywhere afterwards without touching the committed point.
func NewPointTool(host Host) *DragTool {
	return newDragTool(host, "point", geometry.TypePoint, true, 'p',
		func(_, current geometry.Point) geometry.Geometry {
			return geometry.PointAt(current)
		})
}

func (t *DragTool) Name() string                    { return t.name }
func (t *DragTool) ShapeType() geometry.ShapeType   { return t.shapeType }
func (t *DragTool) KeyboardShortcuts() []KeyShortcut { return t.shortcuts }
func (t *DragTool) Previewing() bool                { return t.preview != nil }

func (t *DragTool) Activate() {}

func (t *DragTool) Deactivate() { t.cancel() }

func (t *DragTool) cancel() {
	if t.preview == nil {
		return
	}
	t.host.Engine().Remove(t.preview.ID())
	t.preview = nil
}

func (t *DragTool) HandlePointer(pe canvas.PointerEvent) {
	e := pe.Event
	if e.Button != mouse.ButtonLeft && e.Direction != mouse.DirNone {
		return
	}
	switch e.Direction {
	case mouse.DirPress:
		if t.preview != nil || !t.host.CanAdd(t.shapeType) {
			return
		}
		if t.immediate {
			t.host.Commit(t.shapeType, t.build(pe.Pos, pe.Pos))
			return
		}
		eng := t.host.Engine()
		t.anchor = pe.Pos
		t.preview = eng.NewShape("", t.build(pe.Pos, pe.Pos), t.host.StyleFor(t.shapeType))
		eng.Add(t.preview)
	case mouse.DirNone:
		if t.preview != nil {
			t.preview.SetGeometry(t.build(t.anchor, pe.Pos))
		}
	case mouse.DirRelease:
		if t.preview == nil {
			return
		}
		g := t.build(t.anchor, pe.Pos)
		short := geometry.Dist(t.anchor, pe.Pos) < minDragDist
		t.cancel()
		if short {
			return
		}
		t.host.Commit(t.shapeType, g)
	}
}

func (t *DragTool) HandleKey(e key.Event) bool {
	if e.Direction == key.DirPress && e.Code == key.CodeEscape && t.preview != nil {
		t.cancel()
		return true
	}
	if DeleteKeys(e) {
		t.host.DeleteSelection()
		return true
	}
	return false
}
