package overlay

import (
	"github.com/guyo13/osdlabel-sub000/internal/canvas"
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
	"github.com/guyo13/osdlabel-sub000/internal/viewer"
)

// ComputeTransform derives the engine transform from the viewer mapping by
// sampling the image origin and a unit step along x. Viewers are assumed to
// apply uniform scale plus rotation, never skew.
func ComputeTransform(v viewer.Viewer) geometry.Matrix {
	o := v.ImageToSurface(geometry.Point{})
	ux := v.ImageToSurface(geometry.Point{X: 1})
	dx := ux.X - o.X
	dy := ux.Y - o.Y
	return geometry.Matrix{dx, dy, -dy, dx, o.X, o.Y}
}

// Sync keeps the engine transform registered to the viewer through every
// animation frame, resize, and image change.
type Sync struct {
	v   viewer.Viewer
	eng canvas.Engine
}

func NewSync(v viewer.Viewer, eng canvas.Engine) *Sync {
	s := &Sync{v: v, eng: eng}
	v.OnAnimation(s.Resync)
	v.OnResize(s.Resync)
	v.OnOpen(func(string) { s.Resync() })
	s.Resync()
	return s
}

func (s *Sync) Resync() {
	s.eng.SetTransform(ComputeTransform(s.v))
}
