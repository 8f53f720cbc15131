// Package viewer abstracts the pan/zoom image surface the overlay sits on.
// The overlay never assumes a particular viewer; anything that can map
// between image and surface coordinates and report navigation changes can
// host it.
package viewer

import (
	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

// Viewer is the host surface contract.
type Viewer interface {
	// ImageToSurface maps a point in image pixel coordinates to surface
	// (window) coordinates under the current navigation state.
	ImageToSurface(p geometry.Point) geometry.Point
	SurfaceToImage(p geometry.Point) geometry.Point

	// ZoomBy scales the view by factor, keeping the surface point about
	// fixed.
	ZoomBy(factor float64, about geometry.Point)
	PanBy(dx, dy float64)

	// SetNavigationEnabled toggles the viewer's own pointer-driven
	// navigation. Mapping methods keep working either way.
	SetNavigationEnabled(enabled bool)
	NavigationEnabled() bool

	// OnAnimation fires on every navigation change, including each
	// intermediate frame of a pan or zoom gesture.
	OnAnimation(fn func())
	OnResize(fn func())

	// OnOpen fires when a new image replaces the current one. Navigation
	// state resets before the listener runs.
	OnOpen(fn func(imageID string))
}
