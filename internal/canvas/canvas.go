// Package canvas defines the drawing surface abstraction the overlay and
// tools operate against. An Engine owns live shapes in image coordinates,
// applies the current viewport transform when rendering or hit-testing,
// and redistributes pointer events it is handed to its listeners.
package canvas

import (
	"image"

	"golang.org/x/mobile/event/mouse"

	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

// Shape is a live object on the canvas. Coordinates are image-space.
type Shape interface {
	ID() string
	Type() geometry.ShapeType
	Geometry() geometry.Geometry
	SetGeometry(geometry.Geometry)
	Style() Style
	SetStyle(Style)

	// Record returns the shape's serialized form, suitable for export
	// after sanitization.
	Record() map[string]any
}

// PointerEvent pairs a raw pointer event with its position mapped into
// image coordinates through the engine's current transform.
type PointerEvent struct {
	Event mouse.Event
	Pos   geometry.Point
}

type PointerHandler func(PointerEvent)

// Engine is the canvas implementation the overlay drives. Implementations
// are not required to be safe for concurrent use; all calls happen on the
// event loop goroutine.
type Engine interface {
	// RecordFormat identifies the serialized record dialect this engine
	// produces and accepts.
	RecordFormat() string

	// NewShape builds a shape native to this engine. An empty id gets one
	// assigned.
	NewShape(id string, g geometry.Geometry, st Style) Shape

	Add(Shape)
	Remove(id string) bool
	Get(id string) (Shape, bool)
	Shapes() []Shape

	// SetTransform installs the image-to-surface transform. Shape
	// coordinates never change; only presentation does.
	SetTransform(geometry.Matrix)
	Transform() geometry.Matrix

	Select(ids ...string)
	ClearSelection()
	Selection() []string

	// HitTest finds the topmost shape under an image-space point.
	HitTest(p geometry.Point) (Shape, bool)

	// SetInteractive toggles whether injected pointer events drive the
	// engine's own selection and drag handling.
	SetInteractive(bool)

	// InjectPointer hands the engine a pointer event in surface
	// coordinates. The engine maps it and dispatches to every OnPointer
	// listener, including any the caller itself registered.
	InjectPointer(mouse.Event)

	OnPointer(PointerHandler)
	OnSelection(func(ids []string))
	OnModified(func(id string))

	Render(dst *image.RGBA)
}
