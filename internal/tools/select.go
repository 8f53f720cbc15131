package tools

import (
	"golang.org/x/mobile/event/key"

	"github.com/guyo13/osdlabel-sub000/internal/canvas"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

// SelectTool delegates picking and dragging to the canvas engine: while it
// is active the engine runs interactive, and the tool only contributes the
// delete shortcut.
type SelectTool struct {
	host Host
}

func NewSelectTool(host Host) *SelectTool {
	return &SelectTool{host: host}
}

func (t *SelectTool) Name() string                  { return "select" }
func (t *SelectTool) ShapeType() geometry.ShapeType { return "" }
func (t *SelectTool) KeyboardShortcuts() []KeyShortcut {
	return []KeyShortcut{{Rune: 's'}, {Code: key.CodeEscape}}
}
func (t *SelectTool) Previewing() bool { return false }

func (t *SelectTool) Activate() {
	t.host.Engine().SetInteractive(true)
}

func (t *SelectTool) Deactivate() {
	eng := t.host.Engine()
	eng.ClearSelection()
	eng.SetInteractive(false)
}

func (t *SelectTool) HandlePointer(canvas.PointerEvent) {}

func (t *SelectTool) HandleKey(e key.Event) bool {
	if DeleteKeys(e) {
		t.host.DeleteSelection()
		return true
	}
	return false
}
