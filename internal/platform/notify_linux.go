//go:build linux

package platform

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest  = "org.freedesktop.Notifications"
	notifyPath  = "/org/freedesktop/Notifications"
	notifyIface = notifyDest + ".Notify"
)

// Notify sends a desktop notification over the org.freedesktop.Notifications D-Bus interface.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}
	defer conn.Close()

	hints := map[string]dbus.Variant{
		"category": dbus.MakeVariant("transfer.complete"),
	}
	obj := conn.Object(notifyDest, dbus.ObjectPath(notifyPath))
	call := obj.Call(notifyIface, 0,
		AppName, uint32(0), opts.IconPath, title, body, []string{}, hints, opts.timeout())
	return call.Err
}
