// Package capture grabs the desktop as an image source for cropping.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"

	"github.com/example/cropdesk/internal/surface"
)

// Monitor describes one output in the display layout.
type Monitor struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

// Backend reads the display server.
type Backend interface {
	Monitors() ([]Monitor, error)
	// Grab returns the pixels of rect in global screen coordinates. An empty
	// rect grabs the whole root window.
	Grab(rect image.Rectangle) (*image.RGBA, error)
}

var (
	backend            Backend = newBackend()
	portalScreenshotFn         = portalScreenshot
)

var errNoMonitors = errors.New("no monitors available")

// Screen captures the desktop, or a single monitor when selector is set.
// On Wayland, or when the direct grab fails, the desktop portal is used.
func Screen(selector string) (*image.RGBA, error) {
	rect := image.Rectangle{}
	if selector != "" {
		monitors, err := backend.Monitors()
		if err != nil {
			return nil, fmt.Errorf("capture monitor %q: %w", selector, err)
		}
		mon, err := FindMonitor(monitors, selector)
		if err != nil {
			return nil, err
		}
		rect = mon.Rect
	}

	if runningOnWayland() {
		return viaPortal(rect)
	}
	img, err := backend.Grab(rect)
	if err == nil {
		return img, nil
	}
	shot, perr := viaPortal(rect)
	if perr != nil {
		return nil, fmt.Errorf("grab screen: %v; portal fallback failed: %w", err, perr)
	}
	return shot, nil
}

// Source captures like Screen and wraps the result for a session.
func Source(selector string) (surface.Source, error) {
	img, err := Screen(selector)
	if err != nil {
		return nil, err
	}
	name := "screen"
	if selector != "" {
		name = "screen-" + selector
	}
	return surface.FromImage(img, name), nil
}

func viaPortal(rect image.Rectangle) (*image.RGBA, error) {
	shot, err := portalScreenshotFn(false)
	if err != nil {
		return nil, err
	}
	if rect.Empty() {
		return shot, nil
	}
	return cropToRect(shot, rect)
}

// FindMonitor resolves "primary", an index (optionally prefixed with #) or
// a name substring. An empty selector picks the first monitor.
func FindMonitor(monitors []Monitor, selector string) (Monitor, error) {
	if len(monitors) == 0 {
		return Monitor{}, errNoMonitors
	}
	sel := strings.ToLower(strings.TrimSpace(selector))
	if sel == "" {
		return monitors[0], nil
	}
	if sel == "primary" {
		for _, mon := range monitors {
			if mon.Primary {
				return mon, nil
			}
		}
		return monitors[0], nil
	}
	if idx, err := strconv.Atoi(strings.TrimPrefix(sel, "#")); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return Monitor{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, mon := range monitors {
		if strings.Contains(strings.ToLower(mon.Name), sel) {
			return mon, nil
		}
	}
	return Monitor{}, fmt.Errorf("monitor %q not found", selector)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
