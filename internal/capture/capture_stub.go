//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"fmt"
	"image"
)

type unsupportedBackend struct{}

func newBackend() Backend {
	return unsupportedBackend{}
}

func (unsupportedBackend) Monitors() ([]Monitor, error) {
	return nil, fmt.Errorf("monitor listing is not supported on this platform")
}

func (unsupportedBackend) Grab(image.Rectangle) (*image.RGBA, error) {
	return nil, fmt.Errorf("screen capture is not supported on this platform")
}

func runningOnWayland() bool { return false }

func portalScreenshot(bool) (*image.RGBA, error) {
	return nil, fmt.Errorf("portal screenshot is not supported on this platform")
}
