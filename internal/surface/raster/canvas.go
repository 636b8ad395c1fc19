// Package raster implements the drawing surface on a plain RGBA buffer. It
// backs the interactive window and headless exports.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/example/cropdesk/internal/surface"
)

// Canvas draws into an *image.RGBA. The zero value is not usable.
type Canvas struct {
	dst *image.RGBA
	// Scaler resamples images in DrawImage. Defaults to ApproxBiLinear.
	Scaler xdraw.Scaler
	// Format and Quality control ExtractRegion encoding.
	Format  surface.Format
	Quality int
}

var (
	_ surface.Surface   = (*Canvas)(nil)
	_ surface.Extractor = (*Canvas)(nil)
)

// New wraps dst.
func New(dst *image.RGBA) *Canvas {
	return &Canvas{dst: dst, Scaler: xdraw.ApproxBiLinear, Format: surface.JPEG, Quality: surface.DefaultQuality}
}

// NewSize allocates a w×h canvas.
func NewSize(w, h int) *Canvas {
	return New(image.NewRGBA(image.Rect(0, 0, w, h)))
}

// Image returns the backing buffer.
func (c *Canvas) Image() *image.RGBA { return c.dst }

func (c *Canvas) Measure() (int, int) {
	b := c.dst.Bounds()
	return b.Dx(), b.Dy()
}

// Fill paints the whole canvas with col.
func (c *Canvas) Fill(col color.Color) {
	draw.Draw(c.dst, c.dst.Bounds(), &image.Uniform{col}, image.Point{}, draw.Src)
}

// Checkerboard fills the canvas with alternating squares of size px.
func (c *Canvas) Checkerboard(size int, light, dark color.Color) {
	if size <= 0 {
		size = 8
	}
	b := c.dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				c.dst.Set(x, y, light)
			} else {
				c.dst.Set(x, y, dark)
			}
		}
	}
}

func (c *Canvas) DrawImage(src image.Image, x, y, w, h float64) {
	if src == nil || w <= 0 || h <= 0 {
		return
	}
	r := snap(x, y, w, h)
	if r.Empty() {
		return
	}
	sc := c.Scaler
	if sc == nil {
		sc = xdraw.ApproxBiLinear
	}
	sc.Scale(c.dst, r, src, src.Bounds(), draw.Over, nil)
}

func (c *Canvas) DrawRect(x, y, w, h float64, st surface.Style) {
	r := snap(x, y, w, h)
	thick := int(math.Max(1, math.Round(st.Width)))
	col := st.Color
	if col == nil {
		col = color.White
	}
	if st.Dash <= 0 {
		c.solidRect(r, col, thick)
		return
	}
	dash := int(math.Max(1, math.Round(st.Dash)))
	c.dashedLine(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y, dash, thick, col, st.Alt)
	c.dashedLine(r.Max.X, r.Min.Y, r.Max.X, r.Max.Y, dash, thick, col, st.Alt)
	c.dashedLine(r.Max.X, r.Max.Y, r.Min.X, r.Max.Y, dash, thick, col, st.Alt)
	c.dashedLine(r.Min.X, r.Max.Y, r.Min.X, r.Min.Y, dash, thick, col, st.Alt)
}

// DrawHandle draws a filled square centered on (x, y) with a one pixel
// border in st.Color.
func (c *Canvas) DrawHandle(x, y float64, st surface.Style) {
	size := st.Size
	if size <= 0 {
		size = 8
	}
	hs := size / 2
	r := snap(x-hs, y-hs, size, size)
	fill := st.Fill
	if fill == nil {
		fill = color.White
	}
	draw.Draw(c.dst, r, &image.Uniform{fill}, image.Point{}, draw.Src)
	border := st.Color
	if border == nil {
		border = color.Black
	}
	c.solidRect(r, border, 1)
}

// ExtractRegion copies the pixel rectangle out of src and encodes it. Parts
// of the rectangle outside src stay transparent (black in JPEG output).
func (c *Canvas) ExtractRegion(src image.Image, px, py, pw, ph int) (surface.Encoded, error) {
	return surface.EncodeImage(Crop(src, image.Rect(px, py, px+pw, py+ph)), c.Format, c.Quality)
}

// Crop returns a copy of rect from img, rebased at the origin.
func Crop(img image.Image, rect image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	src := rect.Intersect(img.Bounds())
	if !src.Empty() {
		draw.Draw(out, src.Sub(rect.Min), img, src.Min, draw.Src)
	}
	return out
}

func (c *Canvas) solidRect(r image.Rectangle, col color.Color, thick int) {
	u := &image.Uniform{col}
	draw.Draw(c.dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thick), u, image.Point{}, draw.Src)
	draw.Draw(c.dst, image.Rect(r.Min.X, r.Max.Y-thick, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(c.dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thick, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(c.dst, image.Rect(r.Max.X-thick, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

// dashedLine draws an axis-aligned line alternating c1 and c2 every dash
// pixels. A nil c2 leaves the gaps untouched.
func (c *Canvas) dashedLine(x0, y0, x1, y1, dash, thickness int, c1, c2 color.Color) {
	horiz := y0 == y1
	length := x1 - x0
	if !horiz {
		length = y1 - y0
	}
	step := 1
	if length < 0 {
		length = -length
		step = -1
	}
	for i := 0; i <= length; i++ {
		col := c1
		if (i/dash)%2 == 1 {
			if c2 == nil {
				continue
			}
			col = c2
		}
		for t := 0; t < thickness; t++ {
			if horiz {
				c.dst.Set(x0+i*step, y0+t, col)
			} else {
				c.dst.Set(x0+t, y0+i*step, col)
			}
		}
	}
}

func snap(x, y, w, h float64) image.Rectangle {
	return image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+w)), int(math.Round(y+h)))
}
