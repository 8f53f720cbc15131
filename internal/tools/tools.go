// Package tools implements the annotation gesture state machines. Each tool
// is a small press/move/release machine that previews a shape on the canvas
// engine and commits finished geometry back through its host.
package tools

import (
	"golang.org/x/mobile/event/key"

	"github.com/guyo13/osdlabel-sub000/internal/canvas"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// Host is what a tool needs from the overlay that owns it.
type Host interface {
	// CanAdd reports whether the active context currently allows creating
	// another shape of this type. Tools check at gesture start and refuse
	// to begin when it returns false.
	CanAdd(t geometry.ShapeType) bool

	// Commit hands finished geometry to the overlay. The preview is
	// already off the canvas when this is called.
	Commit(t geometry.ShapeType, g geometry.Geometry)

	Engine() canvas.Engine
	StyleFor(t geometry.ShapeType) canvas.Style
	DeleteSelection()
}

// Tool is one annotation gesture machine. At most one tool is active at a
// time; the overlay routes pointer and key events to it.
type Tool interface {
	Name() string
	ShapeType() geometry.ShapeType

	Activate()
	// Deactivate cancels any preview in progress.
	Deactivate()

	HandlePointer(pe canvas.PointerEvent)
	// HandleKey returns true when the event was consumed.
	HandleKey(e key.Event) bool

	KeyboardShortcuts() []KeyShortcut

	// Previewing reports whether a gesture is mid-flight.
	Previewing() bool
}

// DeleteKeys are the shared selection-delete shortcuts.
func DeleteKeys(e key.Event) bool {
	return e.Direction == key.DirPress &&
		(e.Code == key.CodeDeleteForward || e.Code == key.CodeDeleteBackspace)
}
