//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"net/url"
	"os"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/example/cropdesk/internal/surface"
)

const (
	portalDest     = "org.freedesktop.portal.Desktop"
	portalPath     = "/org/freedesktop/portal/desktop"
	portalResponse = "org.freedesktop.portal.Request.Response"
)

func portalScreenshot(interactive bool) (*image.RGBA, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("dbus connect: %w", err)
	}
	defer conn.Close()

	opts := map[string]dbus.Variant{
		"interactive":  dbus.MakeVariant(interactive),
		"handle_token": dbus.MakeVariant(fmt.Sprintf("cropdesk%d", time.Now().UnixNano())),
		"modal":        dbus.MakeVariant(interactive),
	}
	var handle dbus.ObjectPath
	call := conn.Object(portalDest, portalPath).Call("org.freedesktop.portal.Screenshot.Screenshot", 0, "", opts)
	if call.Err != nil {
		return nil, fmt.Errorf("portal screenshot call: %w", call.Err)
	}
	if err := call.Store(&handle); err != nil {
		return nil, fmt.Errorf("portal screenshot response: %w", err)
	}

	sigc := make(chan *dbus.Signal, 1)
	conn.Signal(sigc)
	rule := fmt.Sprintf("type='signal',interface='org.freedesktop.portal.Request',member='Response',path='%s'", handle)
	if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
		return nil, fmt.Errorf("portal screenshot subscribe: %w", err)
	}
	defer conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, rule)

	for sig := range sigc {
		if sig.Path != handle || sig.Name != portalResponse || len(sig.Body) < 2 {
			continue
		}
		if code, ok := sig.Body[0].(uint32); ok && code != 0 {
			return nil, fmt.Errorf("portal screenshot cancelled (response %d)", code)
		}
		res, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			break
		}
		uriVar, ok := res["uri"]
		if !ok {
			break
		}
		uri, _ := uriVar.Value().(string)
		u, err := url.Parse(uri)
		if err != nil || u.Scheme != "file" {
			return nil, fmt.Errorf("portal screenshot: unexpected uri %q", uri)
		}
		return loadAndRemove(u.Path)
	}
	return nil, fmt.Errorf("portal screenshot: response missing image data")
}

func loadAndRemove(path string) (*image.RGBA, error) {
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "remove %s: %v\n", path, err)
		}
	}()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("portal screenshot image: %w", err)
	}
	img, err := surface.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba, nil
	}
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
