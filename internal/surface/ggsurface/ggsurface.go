// Package ggsurface renders the crop overlay and extracts regions with the
// gogpu/gg 2D engine. It serves headless previews and exports.
package ggsurface

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/gogpu/gg"

	"github.com/example/cropdesk/internal/surface"
)

// Canvas is a gg drawing context exposed as a surface.Surface.
type Canvas struct {
	dc *gg.Context
	// bufs caches converted sources so repeated frames skip the copy.
	bufs map[image.Image]*gg.ImageBuf
}

var _ surface.Surface = (*Canvas)(nil)

// New creates a w×h canvas.
func New(w, h int) *Canvas {
	return &Canvas{dc: gg.NewContext(w, h), bufs: make(map[image.Image]*gg.ImageBuf)}
}

// Close releases the context.
func (c *Canvas) Close() error { return c.dc.Close() }

// Image returns the rendered pixels.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// WritePNG encodes the canvas as PNG.
func (c *Canvas) WritePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

// Clear fills the canvas with col.
func (c *Canvas) Clear(col color.Color) { c.dc.ClearWithColor(gg.FromColor(col)) }

func (c *Canvas) Measure() (int, int) { return c.dc.Width(), c.dc.Height() }

func (c *Canvas) buf(src image.Image) *gg.ImageBuf {
	if b, ok := c.bufs[src]; ok {
		return b
	}
	b := gg.ImageBufFromImage(src)
	c.bufs[src] = b
	return b
}

func (c *Canvas) DrawImage(src image.Image, x, y, w, h float64) {
	if src == nil || w <= 0 || h <= 0 {
		return
	}
	c.dc.DrawImageEx(c.buf(src), gg.DrawImageOptions{
		X:             x,
		Y:             y,
		DstWidth:      w,
		DstHeight:     h,
		Interpolation: gg.InterpBilinear,
	})
}

func (c *Canvas) DrawRect(x, y, w, h float64, st surface.Style) {
	width := st.Width
	if width <= 0 {
		width = 1
	}
	c.dc.SetLineWidth(width)
	if st.Dash > 0 && st.Alt != nil {
		// Solid underlay in the alternate color, then the dashed stroke on top.
		c.dc.ClearDash()
		c.dc.SetColor(st.Alt)
		c.dc.DrawRectangle(x, y, w, h)
		_ = c.dc.Stroke()
	}
	if st.Dash > 0 {
		c.dc.SetDash(st.Dash, st.Dash)
	} else {
		c.dc.ClearDash()
	}
	c.dc.SetColor(colorOr(st.Color, color.White))
	c.dc.DrawRectangle(x, y, w, h)
	_ = c.dc.Stroke()
	c.dc.ClearDash()
}

func (c *Canvas) DrawHandle(x, y float64, st surface.Style) {
	size := st.Size
	if size <= 0 {
		size = 8
	}
	hs := size / 2
	c.dc.ClearDash()
	c.dc.SetColor(colorOr(st.Fill, color.White))
	c.dc.DrawRectangle(x-hs, y-hs, size, size)
	_ = c.dc.Fill()
	c.dc.SetLineWidth(1)
	c.dc.SetColor(colorOr(st.Color, color.Black))
	c.dc.DrawRectangle(x-hs, y-hs, size, size)
	_ = c.dc.Stroke()
}

// Extractor crops regions by drawing the source onto a region-sized gg
// context and encoding the result.
type Extractor struct {
	Format  surface.Format
	Quality int
}

var _ surface.Extractor = Extractor{}

func (e Extractor) ExtractRegion(src image.Image, px, py, pw, ph int) (surface.Encoded, error) {
	if pw <= 0 || ph <= 0 {
		return surface.Encoded{}, fmt.Errorf("ggsurface: empty region %dx%d", pw, ph)
	}
	dc := gg.NewContext(pw, ph)
	defer dc.Close()

	want := image.Rect(px, py, px+pw, py+ph)
	in := want.Intersect(src.Bounds())
	if !in.Empty() {
		buf := gg.ImageBufFromImage(src)
		srcRect := in.Sub(src.Bounds().Min)
		dc.DrawImageEx(buf, gg.DrawImageOptions{
			X:             float64(in.Min.X - px),
			Y:             float64(in.Min.Y - py),
			DstWidth:      float64(in.Dx()),
			DstHeight:     float64(in.Dy()),
			SrcRect:       &srcRect,
			Interpolation: gg.InterpNearest,
		})
	}

	f := e.Format
	if f == "" {
		f = surface.JPEG
	}
	q := e.Quality
	if q <= 0 {
		q = surface.DefaultQuality
	}
	var out bytes.Buffer
	var err error
	switch f {
	case surface.JPEG:
		err = dc.EncodeJPEG(&out, q)
	case surface.PNG:
		err = dc.EncodePNG(&out)
	default:
		err = surface.Encode(&out, dc.Image(), f, q)
	}
	if err != nil {
		return surface.Encoded{}, fmt.Errorf("ggsurface: encode %s: %w", f, err)
	}
	return surface.Encoded{Format: f, Data: out.Bytes(), Width: pw, Height: ph}, nil
}

func colorOr(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}
