package geometry

import (
	"math"
	"testing"
)

func TestRectangleFromDragDirectionInvariant(t *testing.T) {
	a := RectangleFromDrag(Point{X: 5, Y: 5}, Point{X: 25, Y: 45})
	b := RectangleFromDrag(Point{X: 25, Y: 45}, Point{X: 5, Y: 5})
	c := RectangleFromDrag(Point{X: 25, Y: 5}, Point{X: 5, Y: 45})

	for i, g := range []Geometry{a, b, c} {
		r := g.Rectangle
		if r == nil {
			t.Fatalf("drag %d: missing rectangle data", i)
		}
		if r.Origin.X != 5 || r.Origin.Y != 5 {
			t.Errorf("drag %d: origin = %+v, want (5,5)", i, r.Origin)
		}
		if r.Width != 20 || r.Height != 40 {
			t.Errorf("drag %d: size = %vx%v, want 20x40", i, r.Width, r.Height)
		}
	}
}

func TestCircleFromDrag(t *testing.T) {
	g := CircleFromDrag(Point{X: 0, Y: 0}, Point{X: 3, Y: 4})
	if g.Circle.Radius != 5 {
		t.Errorf("radius = %v, want 5", g.Circle.Radius)
	}
	if g.Circle.Center != (Point{}) {
		t.Errorf("center = %+v, want origin", g.Circle.Center)
	}
}

func TestValidateMatchingDiscriminant(t *testing.T) {
	good := LineFromDrag(Point{}, Point{X: 1, Y: 1})
	if err := good.Validate(); err != nil {
		t.Errorf("valid line rejected: %v", err)
	}

	bad := Geometry{Type: TypeCircle, Line: &LineData{}}
	if err := bad.Validate(); err == nil {
		t.Error("circle type with line data accepted")
	}

	empty := Geometry{Type: TypeRectangle}
	if err := empty.Validate(); err == nil {
		t.Error("geometry without variant accepted")
	}

	two := Geometry{Type: TypePoint, Point: &PointData{}, Circle: &CircleData{}}
	if err := two.Validate(); err == nil {
		t.Error("geometry with two variants accepted")
	}
}

func TestParseShapeTypeCaseInsensitive(t *testing.T) {
	for _, s := range []string{"Rect", "bogus", ""} {
		if _, ok := ParseShapeType(s); ok {
			t.Errorf("ParseShapeType(%q) accepted", s)
		}
	}
	got, ok := ParseShapeType("  POLYGON  ")
	if ok {
		t.Errorf("polygon is a record type, not a geometry type, got %q", got)
	}
	got, ok = ParseShapeType("Rectangle")
	if !ok || got != TypeRectangle {
		t.Errorf("ParseShapeType(Rectangle) = %q, %v", got, ok)
	}
}

func TestTranslate(t *testing.T) {
	g := PathOf([]Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, true)
	moved := g.Translate(10, -2)
	if moved.Path.Points[1] != (Point{X: 13, Y: 2}) {
		t.Errorf("translated point = %+v", moved.Path.Points[1])
	}
	// original untouched
	if g.Path.Points[1] != (Point{X: 3, Y: 4}) {
		t.Errorf("source geometry mutated: %+v", g.Path.Points[1])
	}
	if !moved.Path.Closed {
		t.Error("closed flag lost")
	}
}

func TestDist(t *testing.T) {
	if d := Dist(Point{X: 1, Y: 1}, Point{X: 4, Y: 5}); math.Abs(d-5) > 1e-12 {
		t.Errorf("Dist = %v, want 5", d)
	}
}
