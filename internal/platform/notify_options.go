package platform

import "time"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string

	// Subtitle is a secondary line shown under the title where the platform
	// has one (macOS Notification Center).
	Subtitle string

	// Category is a freedesktop notification category hint, e.g.
	// "x-osdlabel.export". Only the Linux backend uses it.
	Category string

	// Timeout is how long the notification stays on screen before the
	// platform may dismiss it. Zero means the platform default.
	Timeout time.Duration
}
