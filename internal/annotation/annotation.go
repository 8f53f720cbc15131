// Package annotation holds the annotation data model and the in-memory
// store that owns it. Annotations are immutable values: every change goes
// through a named store action that replaces the stored value wholesale.
package annotation

import (
	"time"

	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

// RawShape is the opaque serialized form of the visual object backing an
// annotation, tagged by the producing engine's format identifier. It is the
// source of truth for rehydrating live shapes and is never trusted without
// passing through the sanitizer.
type RawShape struct {
	Format string         `json:"format"`
	Data   map[string]any `json:"data"`
}

// Annotation is one committed annotation on one image.
type Annotation struct {
	ID        string            `json:"id"`
	ImageID   string            `json:"imageId"`
	ContextID string            `json:"contextId"`
	Geometry  geometry.Geometry `json:"geometry"`
	Shape     RawShape          `json:"shape"`
	Label     string            `json:"label,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ToolConstraint restricts one shape type within a context. A nil MaxCount
// means the type is never exhausted.
type ToolConstraint struct {
	ShapeType geometry.ShapeType `json:"shapeType"`
	MaxCount  *int               `json:"maxCount,omitempty"`
	Style     *Style             `json:"style,omitempty"`
}

// Style is the default visual style a context assigns to new shapes.
type Style struct {
	Stroke      string  `json:"stroke,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
}

// Context is a named annotation policy: which shape types are legal and how
// many of each may exist, counted across all images sharing the context id.
type Context struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Constraints []ToolConstraint `json:"constraints"`
}

// Constraint returns the constraint for a shape type, or nil when the
// context does not list it.
func (c *Context) Constraint(t geometry.ShapeType) *ToolConstraint {
	if c == nil {
		return nil
	}
	for i := range c.Constraints {
		if c.Constraints[i].ShapeType == t {
			return &c.Constraints[i]
		}
	}
	return nil
}
