// Package overlay wires the annotation subsystem together: it keeps the
// canvas engine registered to the viewer, routes input between navigation
// and annotation, runs the active tool, and mirrors every committed shape
// into the annotation store.
package overlay

import (
	"fmt"
	"log"
	"unicode"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/guyo13/osdlabel-sub000/internal/annotation"
	"github.com/guyo13/osdlabel-sub000/internal/canvas"
	"github.com/guyo13/osdlabel-sub000/internal/constraint"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
	"github.com/guyo13/osdlabel-sub000/internal/sanitize"
	"github.com/guyo13/osdlabel-sub000/internal/tools"
	"github.com/guyo13/osdlabel-sub000/internal/viewer"
)

// Overlay owns one annotation surface on one viewer. All methods run on the
// event loop goroutine.
type Overlay struct {
	store *annotation.Store
	eng   canvas.Engine
	v     viewer.Viewer

	router *Router
	sync   *Sync

	toolset    []tools.Tool
	byShortcut map[tools.KeyShortcut]tools.Tool
	active     tools.Tool
	selectTool tools.Tool

	activeCtx    *annotation.Context
	imageID      string
	defaultStyle canvas.Style
	selectFns    []func(annotationID string)

	committing bool
	destroyed  bool
}

// SelectionNone is reported when the canvas selection is empty or holds
// more than one shape.
const SelectionNone = "none"

// Option configures an Overlay.
type Option func(*Overlay, *[]RouterOption)

// WithDefaultStyle replaces the fallback shape style.
func WithDefaultStyle(st canvas.Style) Option {
	return func(o *Overlay, _ *[]RouterOption) { o.defaultStyle = st }
}

// WithPassthrough sets the navigation passthrough modifier.
func WithPassthrough(m key.Modifiers) Option {
	return func(_ *Overlay, ropts *[]RouterOption) {
		*ropts = append(*ropts, WithPassthroughModifier(m))
	}
}

func New(store *annotation.Store, eng canvas.Engine, v viewer.Viewer, opts ...Option) *Overlay {
	o := &Overlay{
		store:        store,
		eng:          eng,
		v:            v,
		byShortcut:   make(map[tools.KeyShortcut]tools.Tool),
		defaultStyle: canvas.DefaultStyle(),
	}
	var ropts []RouterOption
	for _, opt := range opts {
		opt(o, &ropts)
	}

	o.sync = NewSync(v, eng)
	o.router = NewRouter(v, eng, ropts...)

	o.selectTool = tools.NewSelectTool(o)
	o.toolset = []tools.Tool{
		o.selectTool,
		tools.NewRectangleTool(o),
		tools.NewCircleTool(o),
		tools.NewLineTool(o),
		tools.NewPointTool(o),
		tools.NewPathTool(o),
	}
	for _, t := range o.toolset {
		for _, sc := range t.KeyboardShortcuts() {
			o.byShortcut[sc] = t
		}
	}

	eng.OnPointer(func(pe canvas.PointerEvent) {
		if !o.destroyed && o.router.Mode() == ModeAnnotation && o.active != nil {
			o.active.HandlePointer(pe)
		}
	})
	eng.OnSelection(func(ids []string) {
		if o.destroyed {
			return
		}
		report := SelectionNone
		if len(ids) == 1 {
			report = ids[0]
		}
		for _, fn := range o.selectFns {
			fn(report)
		}
	})
	eng.OnModified(o.shapeModified)
	store.On(o.storeEvent)
	v.OnOpen(o.SetImage)

	o.setActive(o.selectTool)
	o.eng.SetInteractive(false)
	return o
}

// Router exposes the input router for hosts that feed it directly.
func (o *Overlay) Router() *Router { return o.router }

// SetMode switches between navigation and annotation input. Entering
// navigation drops the selection so no shape stays highlighted under a pan.
func (o *Overlay) SetMode(m Mode) {
	o.router.SetMode(m)
	if m == ModeNavigation {
		o.eng.ClearSelection()
	}
	o.eng.SetInteractive(m == ModeAnnotation && o.active == o.selectTool)
}

func (o *Overlay) Mode() Mode { return o.router.Mode() }

// HandlePointer feeds one pointer event through the router. Unconsumed
// events belong to the viewer.
func (o *Overlay) HandlePointer(e mouse.Event) bool {
	if o.destroyed {
		return false
	}
	return o.router.HandlePointer(e)
}

// HandleKey gives the active tool first refusal, then the tool shortcut
// table.
func (o *Overlay) HandleKey(e key.Event) bool {
	if o.destroyed {
		return false
	}
	if o.active != nil && o.active.HandleKey(e) {
		return true
	}
	if e.Direction != key.DirPress {
		return false
	}
	if t, ok := o.byShortcut[tools.KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: e.Modifiers}]; ok {
		o.setActive(t)
		return true
	}
	if t, ok := o.byShortcut[tools.KeyShortcut{Code: e.Code, Modifiers: e.Modifiers}]; ok {
		o.setActive(t)
		return true
	}
	return false
}

// OnSelect registers a selection report listener. Exactly one selected
// shape reports that shape's annotation id; an empty or multiple selection
// reports SelectionNone.
func (o *Overlay) OnSelect(fn func(annotationID string)) {
	o.selectFns = append(o.selectFns, fn)
}

// Tools lists the registered tools.
func (o *Overlay) Tools() []tools.Tool { return o.toolset }

func (o *Overlay) ActiveTool() tools.Tool { return o.active }

// SetTool activates the named tool.
func (o *Overlay) SetTool(name string) error {
	for _, t := range o.toolset {
		if t.Name() == name {
			o.setActive(t)
			return nil
		}
	}
	return fmt.Errorf("no tool named %q", name)
}

func (o *Overlay) setActive(t tools.Tool) {
	if o.active == t {
		return
	}
	if o.active != nil {
		o.active.Deactivate()
	}
	o.active = t
	t.Activate()
	if t != o.selectTool {
		o.eng.SetInteractive(false)
	}
}

// SetContext installs the annotation policy. Tools that the new context
// exhausts or forbids give way to the select tool.
func (o *Overlay) SetContext(ctx *annotation.Context) {
	o.activeCtx = ctx
	o.ensureEnabled()
}

func (o *Overlay) Context() *annotation.Context { return o.activeCtx }

// ToolStatuses derives the enablement of every shape type under the active
// context.
func (o *Overlay) ToolStatuses() map[geometry.ShapeType]constraint.Status {
	return constraint.Derive(o.store, o.activeCtx)
}

// SetImage rehydrates the canvas for an image. Annotations belonging to
// other images stay in the store, off the canvas.
func (o *Overlay) SetImage(imageID string) {
	if o.destroyed {
		return
	}
	o.imageID = imageID
	for _, s := range o.eng.Shapes() {
		o.eng.Remove(s.ID())
	}
	for _, a := range o.store.ForImage(imageID) {
		// A listener may have switched images under us mid-rehydration.
		if o.imageID != imageID {
			return
		}
		o.addShape(a)
	}
}

func (o *Overlay) ImageID() string { return o.imageID }

func (o *Overlay) addShape(a annotation.Annotation) {
	st := o.defaultStyle
	if a.Shape.Data != nil {
		clean, err := sanitize.Sanitize(a.Shape.Data)
		if err != nil {
			log.Printf("overlay: shape record for %s rejected, using default style: %v", a.ID, err)
		} else {
			st = canvas.StyleFromRecord(clean)
		}
	}
	o.eng.Add(o.eng.NewShape(a.ID, a.Geometry, st))
}

// CanAdd implements tools.Host.
func (o *Overlay) CanAdd(t geometry.ShapeType) bool {
	return constraint.Allows(o.store, o.activeCtx, t)
}

// StyleFor implements tools.Host.
func (o *Overlay) StyleFor(t geometry.ShapeType) canvas.Style {
	c := o.activeCtx.Constraint(t)
	if c == nil || c.Style == nil {
		return o.defaultStyle
	}
	st := o.defaultStyle
	if c.Style.Stroke != "" {
		if col, err := canvas.ParseColor(c.Style.Stroke); err == nil {
			st.Stroke = col
		}
	}
	if c.Style.Fill != "" {
		if col, err := canvas.ParseColor(c.Style.Fill); err == nil {
			st.Fill = col
		}
	}
	if c.Style.StrokeWidth > 0 {
		st.StrokeWidth = c.Style.StrokeWidth
	}
	if c.Style.Opacity > 0 {
		st.Opacity = c.Style.Opacity
	}
	return st
}

// Engine implements tools.Host.
func (o *Overlay) Engine() canvas.Engine { return o.eng }

// Commit implements tools.Host: finished geometry becomes an engine shape
// and a stored annotation in one step.
func (o *Overlay) Commit(t geometry.ShapeType, g geometry.Geometry) {
	if o.imageID == "" {
		log.Printf("overlay: commit with no open image dropped")
		return
	}
	shape := o.eng.NewShape("", g, o.StyleFor(t))
	ann := annotation.Annotation{
		ID:       shape.ID(),
		ImageID:  o.imageID,
		Geometry: g,
		Shape: annotation.RawShape{
			Format: o.eng.RecordFormat(),
			Data:   shape.Record(),
		},
	}
	if o.activeCtx != nil {
		ann.ContextID = o.activeCtx.ID
	}
	o.committing = true
	_, err := o.store.Add(ann)
	o.committing = false
	if err != nil {
		log.Printf("overlay: commit rejected: %v", err)
		return
	}
	o.eng.Add(shape)
	o.ensureEnabled()
}

// DeleteSelection implements tools.Host. The selection clears before any
// annotation goes, so nothing ever points at a deleted shape.
func (o *Overlay) DeleteSelection() {
	ids := o.eng.Selection()
	if len(ids) == 0 {
		return
	}
	o.eng.ClearSelection()
	for _, id := range ids {
		o.store.Delete(o.imageID, id)
	}
}

// Destroy detaches the overlay: the active tool is cancelled, every engine
// shape it materialized is removed, and later events from the store, engine,
// or viewer are ignored. The store itself is untouched.
func (o *Overlay) Destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true
	if o.active != nil {
		o.active.Deactivate()
		o.active = nil
	}
	o.eng.ClearSelection()
	o.eng.SetInteractive(false)
	for _, s := range o.eng.Shapes() {
		o.eng.Remove(s.ID())
	}
	o.router.SetMode(ModeNavigation)
}

func (o *Overlay) ensureEnabled() {
	if o.active == nil || o.active == o.selectTool {
		return
	}
	t := o.active.ShapeType()
	if t != "" && !o.CanAdd(t) {
		log.Printf("overlay: %s tool no longer allowed, switching to select", o.active.Name())
		o.setActive(o.selectTool)
	}
}

func (o *Overlay) shapeModified(id string) {
	if o.destroyed {
		return
	}
	ann, ok := o.store.Get(o.imageID, id)
	if !ok {
		return
	}
	s, ok := o.eng.Get(id)
	if !ok {
		return
	}
	ann.Geometry = s.Geometry()
	ann.Shape.Data = s.Record()
	if _, err := o.store.Update(ann); err != nil {
		log.Printf("overlay: geometry update for %s rejected: %v", id, err)
	}
}

func (o *Overlay) storeEvent(ev annotation.EventType, a annotation.Annotation) {
	if o.destroyed {
		return
	}
	switch ev {
	case annotation.EventAdded:
		if !o.committing && a.ImageID == o.imageID {
			o.addShape(a)
		}
		o.ensureEnabled()
	case annotation.EventUpdated:
		if a.ImageID == o.imageID {
			if s, ok := o.eng.Get(a.ID); ok {
				s.SetGeometry(a.Geometry)
			}
		}
	case annotation.EventDeleted:
		if a.ImageID == o.imageID {
			o.eng.Remove(a.ID)
		}
		o.ensureEnabled()
	case annotation.EventReloaded:
		o.SetImage(o.imageID)
		o.ensureEnabled()
	}
}
