// Package sanitize validates untrusted serialized shape records before they
// are reconstituted into live canvas objects. Validation is allow-list only
// and fail-closed: a record either comes out fully cleaned or is rejected
// wholesale with a typed reason. Unknown properties are dropped silently;
// nested shadow and clip structures are forced to null no matter what the
// input contained.
package sanitize

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Bounds applied to every numeric and sized field. The ceilings exist to
// keep hostile payloads (huge coordinates, oversized arrays, non-finite
// numbers) away from rendering code.
const (
	MaxCoordinate  = 1e7
	MaxScale       = 1e3
	MaxAngle       = 360
	MaxStrokeWidth = 1e3
	MaxStringLen   = 256
	MaxPathPoints  = 10000
	MaxDashEntries = 32
)

// Reject categories, matchable with errors.Is.
var (
	ErrUnknownType  = errors.New("unknown shape type")
	ErrMissingField = errors.New("missing required field")
	ErrInvalidField = errors.New("invalid field")
)

// RejectError reports why a record was rejected.
type RejectError struct {
	Shape  string
	Field  string
	Detail string
	cause  error
}

func (e *RejectError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("shape %q: %s", e.Shape, e.Detail)
	}
	return fmt.Sprintf("shape %q field %q: %s", e.Shape, e.Field, e.Detail)
}

func (e *RejectError) Unwrap() error { return e.cause }

func reject(cause error, shape, field, format string, args ...any) error {
	return &RejectError{Shape: shape, Field: field, Detail: fmt.Sprintf(format, args...), cause: cause}
}

// Canonical record types.
const (
	RecordRect     = "rect"
	RecordCircle   = "circle"
	RecordLine     = "line"
	RecordPolyline = "polyline"
	RecordPolygon  = "polygon"
)

type checker func(shape, field string, value any) (any, error)

// rule binds an allow-listed property to its checker.
type rule struct {
	field string
	check checker
}

var baseRules = []rule{
	{"left", numberIn(-MaxCoordinate, MaxCoordinate)},
	{"top", numberIn(-MaxCoordinate, MaxCoordinate)},
	{"width", numberIn(0, MaxCoordinate)},
	{"height", numberIn(0, MaxCoordinate)},
	{"scaleX", numberIn(-MaxScale, MaxScale)},
	{"scaleY", numberIn(-MaxScale, MaxScale)},
	{"angle", numberIn(-MaxAngle, MaxAngle)},
	{"skewX", numberIn(-MaxAngle, MaxAngle)},
	{"skewY", numberIn(-MaxAngle, MaxAngle)},
	{"opacity", numberIn(0, 1)},
	{"strokeWidth", numberIn(0, MaxStrokeWidth)},
	{"fill", stringOrNull},
	{"stroke", stringOrNull},
	{"id", stringOrNull},
	{"originX", enum("left", "center", "right")},
	{"originY", enum("top", "center", "bottom")},
	{"strokeLineCap", enum("butt", "round", "square")},
	{"strokeLineJoin", enum("miter", "round", "bevel")},
	{"globalCompositeOperation", enum("source-over", "multiply", "screen", "overlay", "darken", "lighten")},
	{"paintFirst", enum("fill", "stroke")},
	{"visible", boolean},
	{"flipX", boolean},
	{"flipY", boolean},
	{"strokeDashArray", dashArray},
}

var typeRules = map[string][]rule{
	RecordRect: {
		{"rx", numberIn(0, MaxCoordinate)},
		{"ry", numberIn(0, MaxCoordinate)},
	},
	RecordCircle: {
		{"radius", numberIn(0, MaxCoordinate)},
		{"startAngle", numberIn(-MaxAngle, MaxAngle)},
		{"endAngle", numberIn(-MaxAngle, MaxAngle)},
	},
	RecordLine: {
		{"x1", numberIn(-MaxCoordinate, MaxCoordinate)},
		{"y1", numberIn(-MaxCoordinate, MaxCoordinate)},
		{"x2", numberIn(-MaxCoordinate, MaxCoordinate)},
		{"y2", numberIn(-MaxCoordinate, MaxCoordinate)},
	},
	RecordPolyline: {
		{"points", pointList},
	},
	RecordPolygon: {
		{"points", pointList},
	},
}

var requiredFields = map[string][]string{
	RecordRect:     {"width", "height"},
	RecordCircle:   {"radius"},
	RecordLine:     {"x1", "y1", "x2", "y2"},
	RecordPolyline: {"points"},
	RecordPolygon:  {"points"},
}

// Sanitize validates an untrusted record and returns the cleaned copy.
// Any single failing check rejects the whole record.
func Sanitize(raw map[string]any) (map[string]any, error) {
	if raw == nil {
		return nil, reject(ErrUnknownType, "", "", "record is null")
	}
	typeVal, ok := raw["type"].(string)
	if !ok {
		return nil, reject(ErrUnknownType, "", "type", "type discriminant missing or not a string")
	}
	shape := strings.ToLower(strings.TrimSpace(typeVal))
	extras, known := typeRules[shape]
	if !known {
		return nil, reject(ErrUnknownType, shape, "type", "no such shape type")
	}

	clean := make(map[string]any, len(raw))
	clean["type"] = shape

	rules := make([]rule, 0, len(baseRules)+len(extras))
	rules = append(rules, baseRules...)
	rules = append(rules, extras...)
	for _, r := range rules {
		value, present := raw[r.field]
		if !present {
			continue
		}
		cleaned, err := r.check(shape, r.field, value)
		if err != nil {
			return nil, err
		}
		clean[r.field] = cleaned
	}

	for _, field := range requiredFields[shape] {
		if _, present := clean[field]; !present {
			return nil, reject(ErrMissingField, shape, field, "required for %s records", shape)
		}
	}

	// Nested structure is never accepted from outside, whatever it held.
	clean["shadow"] = nil
	clean["clipPath"] = nil
	return clean, nil
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func numberIn(min, max float64) checker {
	return func(shape, field string, value any) (any, error) {
		n, ok := toNumber(value)
		if !ok {
			return nil, reject(ErrInvalidField, shape, field, "not a number")
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, reject(ErrInvalidField, shape, field, "not finite")
		}
		if n < min || n > max {
			return nil, reject(ErrInvalidField, shape, field, "%v outside [%v, %v]", n, min, max)
		}
		return n, nil
	}
}

func enum(allowed ...string) checker {
	return func(shape, field string, value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, reject(ErrInvalidField, shape, field, "not a string")
		}
		for _, a := range allowed {
			if s == a {
				return s, nil
			}
		}
		return nil, reject(ErrInvalidField, shape, field, "%q not in %v", s, allowed)
	}
}

func boolean(shape, field string, value any) (any, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, reject(ErrInvalidField, shape, field, "not a boolean")
	}
	return b, nil
}

func stringOrNull(shape, field string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, reject(ErrInvalidField, shape, field, "not a string or null")
	}
	if len(s) > MaxStringLen {
		return nil, reject(ErrInvalidField, shape, field, "string length %d exceeds %d", len(s), MaxStringLen)
	}
	return s, nil
}

func dashArray(shape, field string, value any) (any, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, reject(ErrInvalidField, shape, field, "not an array")
	}
	if len(list) > MaxDashEntries {
		return nil, reject(ErrInvalidField, shape, field, "%d entries exceed %d", len(list), MaxDashEntries)
	}
	out := make([]float64, len(list))
	for i, v := range list {
		n, ok := toNumber(v)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 || n > MaxCoordinate {
			return nil, reject(ErrInvalidField, shape, field, "entry %d invalid", i)
		}
		out[i] = n
	}
	return out, nil
}

func pointList(shape, field string, value any) (any, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, reject(ErrInvalidField, shape, field, "not an array")
	}
	if len(list) < 2 {
		return nil, reject(ErrMissingField, shape, field, "needs at least 2 points, has %d", len(list))
	}
	if len(list) > MaxPathPoints {
		return nil, reject(ErrInvalidField, shape, field, "%d points exceed %d", len(list), MaxPathPoints)
	}
	coord := numberIn(-MaxCoordinate, MaxCoordinate)
	out := make([]map[string]any, len(list))
	for i, v := range list {
		entry, ok := v.(map[string]any)
		if !ok {
			return nil, reject(ErrInvalidField, shape, field, "point %d is not an object", i)
		}
		x, err := coord(shape, fmt.Sprintf("%s[%d].x", field, i), entry["x"])
		if err != nil {
			return nil, err
		}
		y, err := coord(shape, fmt.Sprintf("%s[%d].y", field, i), entry["y"])
		if err != nil {
			return nil, err
		}
		out[i] = map[string]any{"x": x, "y": y}
	}
	return out, nil
}
