// Package config loads the annotation profile: contexts, per-tool
// constraints, styles, and input preferences.
package config

import (
	"fmt"
	"strings"

	"golang.org/x/mobile/event/key"

	"github.com/guyo13/osdlabel-sub000/internal/annotation"
	"github.com/guyo13/osdlabel-sub000/internal/canvas"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

// Notify holds notification settings.
type Notify struct {
	Export bool `yaml:"export"`
	Import bool `yaml:"import"`
	Copy   bool `yaml:"copy"`
}

// Style is a profile-level shape style. Colors accept hex or SVG names.
type Style struct {
	Stroke      string  `yaml:"stroke,omitempty"`
	Fill        string  `yaml:"fill,omitempty"`
	StrokeWidth float64 `yaml:"stroke_width,omitempty"`
	Opacity     float64 `yaml:"opacity,omitempty"`
}

// Constraint limits one shape type within a context.
type Constraint struct {
	ShapeType string `yaml:"shape_type"`
	MaxCount  *int   `yaml:"max_count,omitempty"`
	Style     *Style `yaml:"style,omitempty"`
}

// Context is one annotation policy entry.
type Context struct {
	ID          string       `yaml:"id"`
	Label       string       `yaml:"label,omitempty"`
	Constraints []Constraint `yaml:"constraints"`
}

// Profile is the full configuration file.
type Profile struct {
	PassthroughModifier string    `yaml:"passthrough_modifier,omitempty"`
	DefaultStyle        Style     `yaml:"default_style,omitempty"`
	Contexts            []Context `yaml:"contexts,omitempty"`
	Notify              Notify    `yaml:"notify,omitempty"`
}

// New creates a Profile with defaults.
func New() *Profile {
	return &Profile{
		PassthroughModifier: "control",
		DefaultStyle:        Style{Stroke: "#ff0000", StrokeWidth: 2, Opacity: 1},
	}
}

// Validate checks shape types, colors, and context id uniqueness.
func (p *Profile) Validate() error {
	if _, err := p.Modifier(); err != nil {
		return err
	}
	if err := p.DefaultStyle.validate("default_style"); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, ctx := range p.Contexts {
		if ctx.ID == "" {
			return fmt.Errorf("context with empty id")
		}
		if seen[ctx.ID] {
			return fmt.Errorf("duplicate context id %q", ctx.ID)
		}
		seen[ctx.ID] = true
		for _, c := range ctx.Constraints {
			if _, ok := geometry.ParseShapeType(c.ShapeType); !ok {
				return fmt.Errorf("context %q: unknown shape type %q", ctx.ID, c.ShapeType)
			}
			if c.MaxCount != nil && *c.MaxCount < 0 {
				return fmt.Errorf("context %q: negative max_count for %q", ctx.ID, c.ShapeType)
			}
			if c.Style != nil {
				if err := c.Style.validate(fmt.Sprintf("context %q %s style", ctx.ID, c.ShapeType)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s Style) validate(where string) error {
	for _, col := range []string{s.Stroke, s.Fill} {
		if col == "" {
			continue
		}
		if _, err := canvas.ParseColor(col); err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}
	}
	if s.Opacity < 0 || s.Opacity > 1 {
		return fmt.Errorf("%s: opacity %v outside [0, 1]", where, s.Opacity)
	}
	return nil
}

// Modifier resolves the passthrough modifier name.
func (p *Profile) Modifier() (key.Modifiers, error) {
	switch strings.ToLower(strings.TrimSpace(p.PassthroughModifier)) {
	case "", "control", "ctrl":
		return key.ModControl, nil
	case "alt":
		return key.ModAlt, nil
	case "shift":
		return key.ModShift, nil
	case "meta", "super":
		return key.ModMeta, nil
	}
	return 0, fmt.Errorf("unknown passthrough modifier %q", p.PassthroughModifier)
}

// CanvasStyle resolves the default style into engine form.
func (p *Profile) CanvasStyle() canvas.Style {
	st := canvas.DefaultStyle()
	if c, err := canvas.ParseColor(p.DefaultStyle.Stroke); err == nil && p.DefaultStyle.Stroke != "" {
		st.Stroke = c
	}
	if c, err := canvas.ParseColor(p.DefaultStyle.Fill); err == nil && p.DefaultStyle.Fill != "" {
		st.Fill = c
	}
	if p.DefaultStyle.StrokeWidth > 0 {
		st.StrokeWidth = p.DefaultStyle.StrokeWidth
	}
	if p.DefaultStyle.Opacity > 0 {
		st.Opacity = p.DefaultStyle.Opacity
	}
	return st
}

// AnnotationContexts converts the profile contexts to model form.
func (p *Profile) AnnotationContexts() []annotation.Context {
	out := make([]annotation.Context, 0, len(p.Contexts))
	for _, ctx := range p.Contexts {
		m := annotation.Context{ID: ctx.ID, Label: ctx.Label}
		for _, c := range ctx.Constraints {
			t, _ := geometry.ParseShapeType(c.ShapeType)
			mc := annotation.ToolConstraint{ShapeType: t, MaxCount: c.MaxCount}
			if c.Style != nil {
				mc.Style = &annotation.Style{
					Stroke:      c.Style.Stroke,
					Fill:        c.Style.Fill,
					StrokeWidth: c.Style.StrokeWidth,
					Opacity:     c.Style.Opacity,
				}
			}
			m.Constraints = append(m.Constraints, mc)
		}
		out = append(out, m)
	}
	return out
}

// ContextByID finds a converted context, or nil.
func (p *Profile) ContextByID(id string) *annotation.Context {
	for _, ctx := range p.AnnotationContexts() {
		if ctx.ID == id {
			return &ctx
		}
	}
	return nil
}
