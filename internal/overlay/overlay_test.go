package overlay

import (
	"image"
	"math"
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/guyo13/osdlabel-sub000/internal/annotation"
	"github.com/guyo13/osdlabel-sub000/internal/canvas"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
	"github.com/guyo13/osdlabel-sub000/internal/raster"
	"github.com/guyo13/osdlabel-sub000/internal/viewer"
)

func newFixture(t *testing.T) (*Overlay, *annotation.Store, *raster.Engine, *viewer.Port) {
	t.Helper()
	store := annotation.NewStore()
	eng := raster.NewEngine()
	// 640x480 image in a 640x480 view: identity mapping.
	v := viewer.NewPort(640, 480)
	o := New(store, eng, v)
	// Every shape type allowed, no limits. Limit tests swap in their own.
	ctx := &annotation.Context{ID: "ctx-1"}
	for _, st := range geometry.ShapeTypes() {
		ctx.Constraints = append(ctx.Constraints, annotation.ToolConstraint{ShapeType: st})
	}
	o.SetContext(ctx)
	v.Open("img-1", image.Rect(0, 0, 640, 480))
	o.SetMode(ModeAnnotation)
	return o, store, eng, v
}

func pointerPress(o *Overlay, x, y float32, mods key.Modifiers) {
	o.HandlePointer(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress, Modifiers: mods})
}

func pointerMove(o *Overlay, x, y float32) {
	o.HandlePointer(mouse.Event{X: x, Y: y, Direction: mouse.DirNone})
}

func pointerRelease(o *Overlay, x, y float32, mods key.Modifiers) {
	o.HandlePointer(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirRelease, Modifiers: mods})
}

func TestDragCommitsAnnotation(t *testing.T) {
	o, store, eng, _ := newFixture(t)
	if err := o.SetTool("rectangle"); err != nil {
		t.Fatal(err)
	}

	pointerPress(o, 10, 20, 0)
	pointerMove(o, 110, 70)
	pointerRelease(o, 110, 70, 0)

	anns := store.ForImage("img-1")
	if len(anns) != 1 {
		t.Fatalf("annotations = %d, want 1", len(anns))
	}
	a := anns[0]
	if a.Geometry.Type != geometry.TypeRectangle {
		t.Errorf("geometry type = %s", a.Geometry.Type)
	}
	if a.Shape.Format != raster.RecordFormat {
		t.Errorf("shape format = %q", a.Shape.Format)
	}
	if _, ok := eng.Get(a.ID); !ok {
		t.Error("no engine shape for committed annotation")
	}
}

func TestToolReceivesForwardedEventOnce(t *testing.T) {
	o, _, eng, _ := newFixture(t)
	if err := o.SetTool("point"); err != nil {
		t.Fatal(err)
	}
	presses := 0
	eng.OnPointer(func(pe canvas.PointerEvent) {
		if pe.Event.Direction == mouse.DirPress {
			presses++
		}
	})

	pointerPress(o, 30, 40, 0)
	pointerRelease(o, 30, 40, 0)
	if presses != 1 {
		t.Errorf("press dispatched %d times, want 1", presses)
	}
}

func TestPlainScrollSuppressed(t *testing.T) {
	o, _, _, v := newFixture(t)
	before := v.Transform()

	consumed := o.HandlePointer(mouse.Event{X: 100, Y: 100, Button: mouse.ButtonWheelUp, Direction: mouse.DirPress})
	if !consumed {
		t.Error("wheel event not consumed in annotation mode")
	}
	if v.Transform() != before {
		t.Error("plain scroll zoomed the viewer")
	}
}

func TestModifierWheelZoomsViewer(t *testing.T) {
	o, _, _, v := newFixture(t)
	before := v.Transform().Scale()

	o.HandlePointer(mouse.Event{X: 100, Y: 100, Button: mouse.ButtonWheelUp, Direction: mouse.DirPress, Modifiers: key.ModControl})
	if got := v.Transform().Scale(); math.Abs(got-before*1.1) > 1e-9 {
		t.Errorf("scale = %v, want %v", got, before*1.1)
	}
}

func TestStepWheelZoomsViewer(t *testing.T) {
	o, _, _, v := newFixture(t)
	before := v.Transform().Scale()

	// Some drivers report wheel notches as DirStep instead of a
	// press/release pair.
	o.HandlePointer(mouse.Event{X: 100, Y: 100, Button: mouse.ButtonWheelUp, Direction: mouse.DirStep, Modifiers: key.ModControl})
	if got := v.Transform().Scale(); math.Abs(got-before*1.1) > 1e-9 {
		t.Errorf("scale = %v, want %v", got, before*1.1)
	}

	plain := v.Transform()
	if !o.HandlePointer(mouse.Event{X: 100, Y: 100, Button: mouse.ButtonWheelDown, Direction: mouse.DirStep}) {
		t.Error("step wheel not consumed in annotation mode")
	}
	if v.Transform() != plain {
		t.Error("plain step scroll zoomed the viewer")
	}
}

func TestModifierDragPansWithoutDrawing(t *testing.T) {
	o, store, _, v := newFixture(t)
	if err := o.SetTool("rectangle"); err != nil {
		t.Fatal(err)
	}

	// The host hands unconsumed events to the viewer.
	deliver := func(e mouse.Event) {
		if !o.HandlePointer(e) {
			v.HandlePointer(e)
		}
	}

	deliver(mouse.Event{X: 100, Y: 100, Button: mouse.ButtonLeft, Direction: mouse.DirPress, Modifiers: key.ModControl})
	if !v.NavigationEnabled() {
		t.Fatal("navigation not re-enabled for the passthrough gesture")
	}
	deliver(mouse.Event{X: 130, Y: 90, Direction: mouse.DirNone})
	deliver(mouse.Event{X: 130, Y: 90, Button: mouse.ButtonLeft, Direction: mouse.DirRelease, Modifiers: key.ModControl})
	if v.NavigationEnabled() {
		t.Error("navigation still enabled after the gesture")
	}

	if len(store.ForImage("img-1")) != 0 {
		t.Error("passthrough drag committed a shape")
	}
	origin := v.ImageToSurface(geometry.Point{})
	if origin.X != 30 || origin.Y != -10 {
		t.Errorf("origin after passthrough pan = %v, want (30, -10)", origin)
	}
}

func TestNavigationModeLeavesEventsAlone(t *testing.T) {
	o, _, _, _ := newFixture(t)
	o.SetMode(ModeNavigation)
	if o.HandlePointer(mouse.Event{X: 10, Y: 10, Button: mouse.ButtonLeft, Direction: mouse.DirPress}) {
		t.Error("navigation-mode event consumed")
	}
}

func TestSetModeTogglesViewerNavigation(t *testing.T) {
	o, _, _, v := newFixture(t)
	if v.NavigationEnabled() {
		t.Fatal("navigation enabled in annotation mode")
	}
	o.SetMode(ModeAnnotation) // no-op
	if v.NavigationEnabled() {
		t.Error("repeated SetMode flipped navigation")
	}
	o.SetMode(ModeNavigation)
	if !v.NavigationEnabled() {
		t.Error("navigation not restored")
	}
}

func limitedContext(t geometry.ShapeType, max int) *annotation.Context {
	return &annotation.Context{
		ID:    "ctx-1",
		Label: "lesions",
		Constraints: []annotation.ToolConstraint{
			{ShapeType: t, MaxCount: &max},
		},
	}
}

func TestCommitAtLimitSwitchesToSelect(t *testing.T) {
	o, _, _, _ := newFixture(t)
	o.SetContext(limitedContext(geometry.TypeRectangle, 1))
	if err := o.SetTool("rectangle"); err != nil {
		t.Fatal(err)
	}

	pointerPress(o, 10, 10, 0)
	pointerMove(o, 60, 60)
	pointerRelease(o, 60, 60, 0)

	if got := o.ActiveTool().Name(); got != "select" {
		t.Errorf("active tool = %q, want select", got)
	}
	st := o.ToolStatuses()[geometry.TypeRectangle]
	if st.Enabled || st.CurrentCount != 1 {
		t.Errorf("status = %+v, want disabled 1/1", st)
	}
}

func TestDisabledToolRefusesGesture(t *testing.T) {
	o, store, _, _ := newFixture(t)
	o.SetContext(limitedContext(geometry.TypeRectangle, 0))
	_ = o.SetTool("rectangle")
	pointerPress(o, 10, 10, 0)
	pointerMove(o, 60, 60)
	pointerRelease(o, 60, 60, 0)
	if len(store.ForImage("img-1")) != 0 {
		t.Error("disabled tool committed a shape")
	}
}

func TestDeleteReenablesTool(t *testing.T) {
	o, store, _, _ := newFixture(t)
	o.SetContext(limitedContext(geometry.TypeRectangle, 2))
	_ = o.SetTool("rectangle")

	for i := 0; i < 2; i++ {
		x := float32(10 + i*100)
		pointerPress(o, x, 10, 0)
		pointerMove(o, x+50, 60)
		pointerRelease(o, x+50, 60, 0)
	}
	if st := o.ToolStatuses()[geometry.TypeRectangle]; st.Enabled {
		t.Fatalf("status = %+v, want disabled 2/2", st)
	}

	a := store.ForImage("img-1")[0]
	store.Delete("img-1", a.ID)
	st := o.ToolStatuses()[geometry.TypeRectangle]
	if !st.Enabled || st.CurrentCount != 1 {
		t.Errorf("status after delete = %+v, want enabled 1/2", st)
	}
}

func TestKeyShortcutSwitchesTool(t *testing.T) {
	o, _, _, _ := newFixture(t)
	if !o.HandleKey(key.Event{Rune: 'C', Direction: key.DirPress}) {
		t.Fatal("shortcut not consumed")
	}
	if got := o.ActiveTool().Name(); got != "circle" {
		t.Errorf("active tool = %q, want circle", got)
	}
}

func TestDeleteKeyRemovesSelection(t *testing.T) {
	o, store, eng, _ := newFixture(t)
	_ = o.SetTool("rectangle")
	pointerPress(o, 10, 10, 0)
	pointerMove(o, 110, 110)
	pointerRelease(o, 110, 110, 0)
	a := store.ForImage("img-1")[0]

	_ = o.SetTool("select")
	eng.Select(a.ID)
	if !o.HandleKey(key.Event{Code: key.CodeDeleteBackspace, Direction: key.DirPress}) {
		t.Fatal("delete key not consumed")
	}
	if len(store.ForImage("img-1")) != 0 {
		t.Error("annotation survived delete")
	}
	if _, ok := eng.Get(a.ID); ok {
		t.Error("engine shape survived delete")
	}
}

func TestSetImageRehydrates(t *testing.T) {
	o, store, eng, v := newFixture(t)
	for _, img := range []string{"img-1", "img-2"} {
		if _, err := store.Add(annotation.Annotation{
			ImageID:  img,
			Geometry: geometry.PointAt(geometry.Point{X: 5, Y: 5}),
		}); err != nil {
			t.Fatal(err)
		}
	}

	v.Open("img-2", image.Rect(0, 0, 640, 480))
	if n := len(eng.Shapes()); n != 1 {
		t.Fatalf("shapes on img-2 = %d, want 1", n)
	}
	if o.ImageID() != "img-2" {
		t.Errorf("ImageID() = %q", o.ImageID())
	}
}

func TestEngineDragWritesBackGeometry(t *testing.T) {
	o, store, _, _ := newFixture(t)
	_ = o.SetTool("rectangle")
	pointerPress(o, 10, 10, 0)
	pointerMove(o, 110, 110)
	pointerRelease(o, 110, 110, 0)
	a := store.ForImage("img-1")[0]

	_ = o.SetTool("select")
	pointerPress(o, 60, 10, 0) // top edge
	pointerMove(o, 80, 30)
	pointerRelease(o, 80, 30, 0)

	got, _ := store.Get("img-1", a.ID)
	origin := got.Geometry.Rectangle.Origin
	if origin != (geometry.Point{X: 30, Y: 30}) {
		t.Errorf("origin after drag = %v, want (30, 30)", origin)
	}
}

func TestComputeTransformMatchesViewer(t *testing.T) {
	v := viewer.NewPort(640, 480)
	v.Open("img-1", image.Rect(0, 0, 320, 240))
	v.ZoomBy(1.5, geometry.Point{X: 100, Y: 50})
	v.RotateBy(math.Pi/6, geometry.Point{X: 320, Y: 240})

	m := ComputeTransform(v)
	for _, p := range []geometry.Point{{}, {X: 320, Y: 0}, {X: 160, Y: 120}} {
		want := v.ImageToSurface(p)
		got := m.Apply(p)
		if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 {
			t.Errorf("transform(%v) = %v, want %v", p, got, want)
		}
	}
}

func TestRouterCoordinateConversionTracksViewer(t *testing.T) {
	o, _, _, v := newFixture(t)
	v.ZoomBy(2, geometry.Point{X: 0, Y: 0})

	surface := geometry.Point{X: 100, Y: 60}
	img := o.Router().ScreenToImage(surface)
	want := v.SurfaceToImage(surface)
	if math.Abs(img.X-want.X) > 1e-9 || math.Abs(img.Y-want.Y) > 1e-9 {
		t.Errorf("ScreenToImage(%v) = %v, want %v", surface, img, want)
	}
	back := o.Router().ImageToScreen(img)
	if math.Abs(back.X-surface.X) > 1e-9 || math.Abs(back.Y-surface.Y) > 1e-9 {
		t.Errorf("round trip = %v, want %v", back, surface)
	}
}

func TestDestroyDetachesOverlay(t *testing.T) {
	o, store, eng, _ := newFixture(t)
	_ = o.SetTool("rectangle")
	pointerPress(o, 10, 10, 0)
	pointerMove(o, 60, 60)
	pointerRelease(o, 60, 60, 0)
	if len(store.ForImage("img-1")) != 1 {
		t.Fatal("setup commit failed")
	}

	o.Destroy()

	if len(eng.Shapes()) != 0 {
		t.Errorf("engine shapes after destroy = %d, want 0", len(eng.Shapes()))
	}
	// Stored annotations survive the overlay.
	if len(store.ForImage("img-1")) != 1 {
		t.Errorf("annotations after destroy = %d, want 1", len(store.ForImage("img-1")))
	}

	// Further input and store events are ignored.
	if o.HandlePointer(mouse.Event{X: 5, Y: 5, Button: mouse.ButtonLeft, Direction: mouse.DirPress}) {
		t.Error("pointer consumed after destroy")
	}
	if _, err := store.Add(annotation.Annotation{ID: "late", ImageID: "img-1",
		Geometry: geometry.PointAt(geometry.Point{X: 1, Y: 1})}); err != nil {
		t.Fatalf("store add: %v", err)
	}
	if len(eng.Shapes()) != 0 {
		t.Error("engine materialized a shape after destroy")
	}
	o.Destroy() // idempotent
}

func TestSelectionReportsSingleIDOrNone(t *testing.T) {
	o, store, eng, _ := newFixture(t)
	_ = o.SetTool("rectangle")
	pointerPress(o, 10, 10, 0)
	pointerMove(o, 60, 60)
	pointerRelease(o, 60, 60, 0)
	pointerPress(o, 100, 100, 0)
	pointerMove(o, 160, 160)
	pointerRelease(o, 160, 160, 0)
	anns := store.ForImage("img-1")
	if len(anns) != 2 {
		t.Fatalf("annotations = %d, want 2", len(anns))
	}

	var reports []string
	o.OnSelect(func(id string) { reports = append(reports, id) })

	eng.Select(anns[0].ID)
	eng.Select(anns[0].ID, anns[1].ID)
	eng.ClearSelection()

	want := []string{anns[0].ID, SelectionNone, SelectionNone}
	if len(reports) != len(want) {
		t.Fatalf("reports = %v, want %v", reports, want)
	}
	for i := range want {
		if reports[i] != want[i] {
			t.Errorf("report[%d] = %q, want %q", i, reports[i], want[i])
		}
	}
}
