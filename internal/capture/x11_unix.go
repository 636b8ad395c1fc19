//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

type x11Backend struct{}

func newBackend() Backend {
	return x11Backend{}
}

func runningOnWayland() bool {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")), "wayland") {
		return true
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

func connect() (*xgb.Conn, *xproto.SetupInfo, *xproto.ScreenInfo, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect X server: %w", err)
	}
	setup := xproto.Setup(conn)
	if setup == nil {
		conn.Close()
		return nil, nil, nil, fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, nil, nil, fmt.Errorf("xproto screen unavailable")
	}
	return conn, setup, screen, nil
}

func (x11Backend) Monitors() ([]Monitor, error) {
	conn, _, screen, err := connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("init randr: %w", err)
	}
	res, err := randr.GetScreenResources(conn, screen.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}
	primaryOutput := randr.Output(0)
	if primary, err := randr.GetOutputPrimary(conn, screen.Root).Reply(); err == nil {
		primaryOutput = primary.Output
	}
	var monitors []Monitor
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, output, res.ConfigTimestamp).Reply()
		if err != nil || info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		x, y := int(crtc.X), int(crtc.Y)
		monitors = append(monitors, Monitor{
			Index:   len(monitors),
			Name:    strings.TrimSpace(string(info.Name)),
			Rect:    image.Rect(x, y, x+int(crtc.Width), y+int(crtc.Height)),
			Primary: output == primaryOutput,
		})
	}
	if len(monitors) == 0 {
		return nil, errNoMonitors
	}
	return monitors, nil
}

func (x11Backend) Grab(rect image.Rectangle) (*image.RGBA, error) {
	conn, setup, screen, err := connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	full := image.Rect(0, 0, int(screen.WidthInPixels), int(screen.HeightInPixels))
	if rect.Empty() {
		rect = full
	}
	rect = rect.Intersect(full)
	if rect.Empty() {
		return nil, fmt.Errorf("region outside screen %v", full)
	}
	reply, err := xproto.GetImage(conn, xproto.ImageFormatZPixmap, xproto.Drawable(screen.Root),
		int16(rect.Min.X), int16(rect.Min.Y), uint16(rect.Dx()), uint16(rect.Dy()), ^uint32(0)).Reply()
	if err != nil {
		return nil, fmt.Errorf("screen pixels: %w", err)
	}
	return xImageToRGBA(setup, reply, rect.Dx(), rect.Dy())
}

// xImageToRGBA converts a ZPixmap reply in BGR(X) byte order. The root
// window has no alpha so every pixel is made opaque.
func xImageToRGBA(setup *xproto.SetupInfo, reply *xproto.GetImageReply, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("screen has empty geometry")
	}
	if reply == nil || len(reply.Data) == 0 {
		return nil, fmt.Errorf("screen pixels: empty image data")
	}

	bitsPerPixel := 0
	for _, format := range setup.PixmapFormats {
		if format.Depth == reply.Depth {
			bitsPerPixel = int(format.BitsPerPixel)
			break
		}
	}
	bytesPerPixel := bitsPerPixel / 8
	if bytesPerPixel < 3 {
		return nil, fmt.Errorf("unsupported pixel format: depth %d, %d bpp", reply.Depth, bitsPerPixel)
	}

	stride := len(reply.Data) / height
	if stride*height != len(reply.Data) || stride < width*bytesPerPixel {
		return nil, fmt.Errorf("screen pixels: unexpected stride")
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := reply.Data[y*stride : (y+1)*stride]
		for x := 0; x < width; x++ {
			off := x * bytesPerPixel
			pix := img.PixOffset(x, y)
			img.Pix[pix+0] = row[off+2]
			img.Pix[pix+1] = row[off+1]
			img.Pix[pix+2] = row[off]
			img.Pix[pix+3] = 0xFF
		}
	}
	return img, nil
}
