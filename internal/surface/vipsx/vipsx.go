//go:build vips

// Package vipsx extracts crop regions with libvips through govips. It is
// only built with the vips tag since it needs the C library.
package vipsx

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/example/cropdesk/internal/surface"
)

var startOnce sync.Once

// Startup initializes libvips once per process with critical-only logging.
func Startup() {
	startOnce.Do(func() {
		vips.LoggingSettings(nil, vips.LogLevelCritical)
		vips.Startup(nil)
	})
}

// Shutdown releases libvips.
func Shutdown() { vips.Shutdown() }

// Extractor hands the source to libvips as PNG and lets it cut and encode
// the region.
type Extractor struct {
	Format  surface.Format
	Quality int
}

var _ surface.Extractor = Extractor{}

func (e Extractor) ExtractRegion(src image.Image, px, py, pw, ph int) (surface.Encoded, error) {
	Startup()
	want := image.Rect(px, py, px+pw, py+ph)
	in := want.Intersect(src.Bounds())
	if in.Empty() {
		return surface.Encoded{}, fmt.Errorf("vipsx: region %v outside image", want)
	}

	var buf bytes.Buffer
	if err := surface.Encode(&buf, src, surface.PNG, 0); err != nil {
		return surface.Encoded{}, err
	}
	img, err := vips.NewImageFromBuffer(buf.Bytes())
	if err != nil {
		return surface.Encoded{}, fmt.Errorf("vipsx: load: %w", err)
	}
	defer img.Close()

	off := src.Bounds().Min
	if err := img.ExtractArea(in.Min.X-off.X, in.Min.Y-off.Y, in.Dx(), in.Dy()); err != nil {
		return surface.Encoded{}, fmt.Errorf("vipsx: extract: %w", err)
	}
	if in != want {
		// Pad back to the requested size with a transparent (black) border.
		if err := img.Embed(in.Min.X-px, in.Min.Y-py, pw, ph, vips.ExtendBlack); err != nil {
			return surface.Encoded{}, fmt.Errorf("vipsx: embed: %w", err)
		}
	}

	q := e.Quality
	if q <= 0 {
		q = surface.DefaultQuality
	}
	f := e.Format
	var data []byte
	switch f {
	case surface.PNG:
		data, _, err = img.ExportPng(vips.NewPngExportParams())
	case surface.WebP:
		p := vips.NewWebpExportParams()
		p.Quality = q
		data, _, err = img.ExportWebp(p)
	default:
		f = surface.JPEG
		p := vips.NewJpegExportParams()
		p.Quality = q
		data, _, err = img.ExportJpeg(p)
	}
	if err != nil {
		return surface.Encoded{}, fmt.Errorf("vipsx: export %s: %w", f, err)
	}
	return surface.Encoded{Format: f, Data: data, Width: pw, Height: ph}, nil
}
