//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
)

// Notify displays a desktop notification using macOS Notification Center.
// The icon is not supported by osascript and is ignored.
func Notify(title, body string, opts Options) error {
	script := fmt.Sprintf("display notification %q with title %q subtitle %q", body, AppName, title)
	return exec.Command("osascript", "-e", script).Run()
}
