// Package constraint derives which shape types may currently be drawn.
// The derivation is pure: it reads annotations and the active context and
// produces an ephemeral status per shape type, never stored anywhere.
package constraint

import (
	"github.com/guyo13/osdlabel-sub000/internal/annotation"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

// Status is the derived availability of one shape type.
type Status struct {
	Enabled      bool
	CurrentCount int
	MaxCount     *int // nil when the type is unlisted or unlimited
}

// Counter provides per-type annotation counts scoped to a context id.
// *annotation.Store satisfies it.
type Counter interface {
	Count(contextID string, t geometry.ShapeType) int
}

// Derive recomputes the status of every shape type for the active context.
// A nil context disables everything. Counts span all images sharing the
// context id; a constraint without a max never disables its type.
func Derive(counts Counter, active *annotation.Context) map[geometry.ShapeType]Status {
	out := make(map[geometry.ShapeType]Status, len(geometry.ShapeTypes()))
	for _, t := range geometry.ShapeTypes() {
		if active == nil {
			out[t] = Status{}
			continue
		}
		c := active.Constraint(t)
		if c == nil {
			out[t] = Status{}
			continue
		}
		n := counts.Count(active.ID, t)
		st := Status{Enabled: true, CurrentCount: n}
		if c.MaxCount != nil {
			max := *c.MaxCount
			st.MaxCount = &max
			st.Enabled = n < max
		}
		out[t] = st
	}
	return out
}

// Allows reports whether one more shape of type t may be added under the
// active context.
func Allows(counts Counter, active *annotation.Context, t geometry.ShapeType) bool {
	return Derive(counts, active)[t].Enabled
}
