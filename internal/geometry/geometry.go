// Package geometry provides the shape geometry model and the affine
// transforms used to keep annotations registered to image pixels.
package geometry

import (
	"fmt"
	"math"
	"strings"
)

// Point is a coordinate pair in either image or screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// DistToSegment returns the distance from p to the segment ab.
func DistToSegment(p, a, b Point) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return Dist(p, a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	t = math.Max(0, math.Min(1, t))
	return Dist(p, Point{X: a.X + t*abx, Y: a.Y + t*aby})
}

// ShapeType identifies one of the supported annotation geometries.
type ShapeType string

const (
	TypeRectangle ShapeType = "rectangle"
	TypeCircle    ShapeType = "circle"
	TypeLine      ShapeType = "line"
	TypePoint     ShapeType = "point"
	TypePath      ShapeType = "path"
)

// ShapeTypes lists every supported shape type in a stable order.
func ShapeTypes() []ShapeType {
	return []ShapeType{TypeRectangle, TypeCircle, TypeLine, TypePoint, TypePath}
}

// ParseShapeType normalises a type discriminant case-insensitively.
func ParseShapeType(s string) (ShapeType, bool) {
	switch ShapeType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeRectangle:
		return TypeRectangle, true
	case TypeCircle:
		return TypeCircle, true
	case TypeLine:
		return TypeLine, true
	case TypePoint:
		return TypePoint, true
	case TypePath:
		return TypePath, true
	}
	return "", false
}

// RectangleData is an axis-anchored rectangle with optional rotation about
// its origin.
type RectangleData struct {
	Origin   Point   `json:"origin"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`
}

// CircleData is a circle described by centre and radius.
type CircleData struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// LineData is a straight segment between two endpoints.
type LineData struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// PointData is a single marker position.
type PointData struct {
	Position Point `json:"position"`
}

// PathData is a polyline, closed when it represents a polygon.
type PathData struct {
	Points []Point `json:"points"`
	Closed bool    `json:"closed"`
}

// Geometry is the tagged union of all shape geometries. Exactly one variant
// pointer is set and it always matches Type.
type Geometry struct {
	Type      ShapeType      `json:"type"`
	Rectangle *RectangleData `json:"rectangle,omitempty"`
	Circle    *CircleData    `json:"circle,omitempty"`
	Line      *LineData      `json:"line,omitempty"`
	Point     *PointData     `json:"point,omitempty"`
	Path      *PathData      `json:"path,omitempty"`
}

// Validate checks that the discriminant matches the populated variant.
func (g Geometry) Validate() error {
	variants := 0
	if g.Rectangle != nil {
		variants++
		if g.Type != TypeRectangle {
			return fmt.Errorf("geometry type %q carries rectangle data", g.Type)
		}
	}
	if g.Circle != nil {
		variants++
		if g.Type != TypeCircle {
			return fmt.Errorf("geometry type %q carries circle data", g.Type)
		}
	}
	if g.Line != nil {
		variants++
		if g.Type != TypeLine {
			return fmt.Errorf("geometry type %q carries line data", g.Type)
		}
	}
	if g.Point != nil {
		variants++
		if g.Type != TypePoint {
			return fmt.Errorf("geometry type %q carries point data", g.Type)
		}
	}
	if g.Path != nil {
		variants++
		if g.Type != TypePath {
			return fmt.Errorf("geometry type %q carries path data", g.Type)
		}
	}
	if variants != 1 {
		return fmt.Errorf("geometry must carry exactly one variant, has %d", variants)
	}
	if _, ok := ParseShapeType(string(g.Type)); !ok {
		return fmt.Errorf("unknown geometry type %q", g.Type)
	}
	return nil
}

// RectangleFromDrag builds a rectangle spanning the two drag points.
// The result is identical regardless of drag direction.
func RectangleFromDrag(p0, p1 Point) Geometry {
	x := math.Min(p0.X, p1.X)
	y := math.Min(p0.Y, p1.Y)
	return Geometry{
		Type: TypeRectangle,
		Rectangle: &RectangleData{
			Origin: Point{X: x, Y: y},
			Width:  math.Abs(p1.X - p0.X),
			Height: math.Abs(p1.Y - p0.Y),
		},
	}
}

// CircleFromDrag builds a circle anchored at the drag start whose radius is
// the distance to the current pointer.
func CircleFromDrag(p0, p1 Point) Geometry {
	return Geometry{
		Type:   TypeCircle,
		Circle: &CircleData{Center: p0, Radius: Dist(p0, p1)},
	}
}

// LineFromDrag builds a segment from the drag start to the current pointer.
func LineFromDrag(p0, p1 Point) Geometry {
	return Geometry{
		Type: TypeLine,
		Line: &LineData{Start: p0, End: p1},
	}
}

// PointAt builds a point marker geometry.
func PointAt(p Point) Geometry {
	return Geometry{
		Type:  TypePoint,
		Point: &PointData{Position: p},
	}
}

// PathOf builds a path geometry from a copy of the given vertices.
func PathOf(points []Point, closed bool) Geometry {
	pts := make([]Point, len(points))
	copy(pts, points)
	return Geometry{
		Type: TypePath,
		Path: &PathData{Points: pts, Closed: closed},
	}
}

// Translate returns a copy of g shifted by (dx, dy).
func (g Geometry) Translate(dx, dy float64) Geometry {
	out := g
	switch g.Type {
	case TypeRectangle:
		if g.Rectangle != nil {
			r := *g.Rectangle
			r.Origin.X += dx
			r.Origin.Y += dy
			out.Rectangle = &r
		}
	case TypeCircle:
		if g.Circle != nil {
			c := *g.Circle
			c.Center.X += dx
			c.Center.Y += dy
			out.Circle = &c
		}
	case TypeLine:
		if g.Line != nil {
			l := *g.Line
			l.Start.X += dx
			l.Start.Y += dy
			l.End.X += dx
			l.End.Y += dy
			out.Line = &l
		}
	case TypePoint:
		if g.Point != nil {
			p := *g.Point
			p.Position.X += dx
			p.Position.Y += dy
			out.Point = &p
		}
	case TypePath:
		if g.Path != nil {
			pts := make([]Point, len(g.Path.Points))
			for i, p := range g.Path.Points {
				pts[i] = Point{X: p.X + dx, Y: p.Y + dy}
			}
			out.Path = &PathData{Points: pts, Closed: g.Path.Closed}
		}
	}
	return out
}
