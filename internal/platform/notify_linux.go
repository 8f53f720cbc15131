//go:build linux

package platform

import (
	"time"

	"github.com/godbus/dbus/v5"
)

// Notify sends a desktop notification using the Freedesktop.org notification spec.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	hints := map[string]dbus.Variant{}
	if opts.Category != "" {
		hints["category"] = dbus.MakeVariant(opts.Category)
	}
	timeout := int32(5000)
	if opts.Timeout > 0 {
		timeout = int32(opts.Timeout / time.Millisecond)
	}

	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		"osdlabel", uint32(0), opts.IconPath, title, body, []string{}, hints, timeout)
	return call.Err
}
