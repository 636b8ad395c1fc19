//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

// Package clipboard moves crop results to and from the desktop clipboard as
// PNG data.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"golang.design/x/clipboard"

	"github.com/example/cropdesk/internal/surface"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = errNoDisplay
			return
		}
		initErr = clipboard.Init()
	})
	return initErr
}

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// WriteImage encodes img as PNG and publishes it to the clipboard.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := surface.Encode(&buf, img, surface.PNG, 0); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
	return nil
}

// ReadImage retrieves image data from the clipboard and decodes it.
func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data := clipboard.Read(clipboard.FmtImage)
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard does not contain image data")
	}
	return surface.Decode(data)
}
