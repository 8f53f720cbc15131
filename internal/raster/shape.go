// Package raster is the reference canvas.Engine. It keeps shapes in image
// coordinates, rasterizes them through the installed viewport transform,
// and speaks the flat property-map record format the export layer
// sanitizes.
package raster

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/guyo13/osdlabel-sub000/internal/canvas"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

// RecordFormat tags serialized records produced by this engine.
const RecordFormat = "raster/v1"

// pointMarkerRadius is the rendered radius of point markers, image units.
const pointMarkerRadius = 4

// Shape is a live raster canvas object.
type Shape struct {
	id    string
	geom  geometry.Geometry
	style canvas.Style
}

func newShape(id string, g geometry.Geometry, st canvas.Style) *Shape {
	if id == "" {
		id = uuid.NewString()
	}
	return &Shape{id: id, geom: g, style: st}
}

func (s *Shape) ID() string                       { return s.id }
func (s *Shape) Type() geometry.ShapeType         { return s.geom.Type }
func (s *Shape) Geometry() geometry.Geometry      { return s.geom }
func (s *Shape) SetGeometry(g geometry.Geometry)  { s.geom = g }
func (s *Shape) Style() canvas.Style              { return s.style }
func (s *Shape) SetStyle(st canvas.Style)         { s.style = st }

// Record serializes the shape to the flat property map the sanitizer
// accepts. Point markers serialize as circle records; their true type
// survives in the annotation geometry, not the record.
func (s *Shape) Record() map[string]any {
	rec := map[string]any{
		"id":          s.id,
		"stroke":      canvas.FormatColor(s.style.Stroke),
		"strokeWidth": s.style.StrokeWidth,
		"opacity":     s.style.Opacity,
	}
	if s.style.Fill.A > 0 {
		rec["fill"] = canvas.FormatColor(s.style.Fill)
	}
	if s.style.Dashed {
		rec["strokeDashArray"] = []any{float64(4), float64(4)}
	}
	switch s.geom.Type {
	case geometry.TypeRectangle:
		r := s.geom.Rectangle
		rec["type"] = "rect"
		rec["left"] = r.Origin.X
		rec["top"] = r.Origin.Y
		rec["width"] = r.Width
		rec["height"] = r.Height
		if r.Rotation != 0 {
			rec["angle"] = r.Rotation
		}
	case geometry.TypeCircle:
		c := s.geom.Circle
		rec["type"] = "circle"
		rec["left"] = c.Center.X - c.Radius
		rec["top"] = c.Center.Y - c.Radius
		rec["radius"] = c.Radius
	case geometry.TypeLine:
		l := s.geom.Line
		rec["type"] = "line"
		rec["x1"] = l.Start.X
		rec["y1"] = l.Start.Y
		rec["x2"] = l.End.X
		rec["y2"] = l.End.Y
	case geometry.TypePoint:
		p := s.geom.Point
		rec["type"] = "circle"
		rec["left"] = p.Position.X - pointMarkerRadius
		rec["top"] = p.Position.Y - pointMarkerRadius
		rec["radius"] = float64(pointMarkerRadius)
	case geometry.TypePath:
		pa := s.geom.Path
		if pa.Closed {
			rec["type"] = "polygon"
		} else {
			rec["type"] = "polyline"
		}
		pts := make([]any, len(pa.Points))
		for i, p := range pa.Points {
			pts[i] = map[string]any{"x": p.X, "y": p.Y}
		}
		rec["points"] = pts
	}
	return rec
}

// GeometryFromRecord rebuilds geometry from a sanitized record. It is the
// fallback used when an imported annotation carries no typed geometry.
func GeometryFromRecord(rec map[string]any) (geometry.Geometry, error) {
	typ, _ := rec["type"].(string)
	switch typ {
	case "rect":
		g := geometry.Geometry{
			Type: geometry.TypeRectangle,
			Rectangle: &geometry.RectangleData{
				Origin:   geometry.Point{X: num(rec, "left"), Y: num(rec, "top")},
				Width:    num(rec, "width"),
				Height:   num(rec, "height"),
				Rotation: num(rec, "angle"),
			},
		}
		return g, nil
	case "circle":
		r := num(rec, "radius")
		return geometry.Geometry{
			Type: geometry.TypeCircle,
			Circle: &geometry.CircleData{
				Center: geometry.Point{X: num(rec, "left") + r, Y: num(rec, "top") + r},
				Radius: r,
			},
		}, nil
	case "line":
		return geometry.Geometry{
			Type: geometry.TypeLine,
			Line: &geometry.LineData{
				Start: geometry.Point{X: num(rec, "x1"), Y: num(rec, "y1")},
				End:   geometry.Point{X: num(rec, "x2"), Y: num(rec, "y2")},
			},
		}, nil
	case "polyline", "polygon":
		raw, _ := rec["points"].([]map[string]any)
		pts := make([]geometry.Point, len(raw))
		for i, entry := range raw {
			x, _ := entry["x"].(float64)
			y, _ := entry["y"].(float64)
			pts[i] = geometry.Point{X: x, Y: y}
		}
		return geometry.PathOf(pts, typ == "polygon"), nil
	}
	return geometry.Geometry{}, fmt.Errorf("record type %q has no geometry mapping", typ)
}

func num(rec map[string]any, key string) float64 {
	n, _ := rec[key].(float64)
	return n
}
