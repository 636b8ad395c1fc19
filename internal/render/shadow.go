// Package render holds raster effects drawn around the placed image.
package render

import (
	"image"
	"image/color"
	"image/draw"
)

// Shadow is a soft drop shadow cast by an opaque rectangle.
type Shadow struct {
	Radius  int
	Offset  image.Point
	Opacity float64
	Color   color.Color
}

// DefaultShadow returns the shadow drawn under the image in the editor.
func DefaultShadow() Shadow {
	return Shadow{
		Radius:  10,
		Offset:  image.Pt(4, 6),
		Opacity: 0.45,
		Color:   color.Black,
	}
}

func (s Shadow) radius() int { return max(s.Radius, 0) }

func (s Shadow) alpha() uint8 {
	o := min(max(s.Opacity, 0), 1)
	return uint8(o*255 + 0.5)
}

// Mask returns the blurred coverage of a w×h card. The mask is padded by
// the radius on every side, so the card occupies (r, r)-(r+w, r+h).
func (s Shadow) Mask(w, h int) *image.Alpha {
	if w <= 0 || h <= 0 {
		return image.NewAlpha(image.Rectangle{})
	}
	r := s.radius()
	mask := image.NewAlpha(image.Rect(0, 0, w+2*r, h+2*r))
	draw.Draw(mask, image.Rect(r, r, r+w, r+h), image.Opaque, image.Point{}, draw.Src)
	return boxBlur(mask, r)
}

func (s Shadow) draw(dst draw.Image, card image.Rectangle, mask *image.Alpha) {
	a := s.alpha()
	if a == 0 || card.Empty() {
		return
	}
	col := s.Color
	if col == nil {
		col = color.Black
	}
	cr, cg, cb, _ := col.RGBA()
	tint := color.NRGBA{R: uint8(cr >> 8), G: uint8(cg >> 8), B: uint8(cb >> 8), A: a}
	r := s.radius()
	at := card.Min.Add(s.Offset).Sub(image.Pt(r, r))
	draw.DrawMask(dst, mask.Bounds().Add(at), image.NewUniform(tint), image.Point{}, mask, image.Point{}, draw.Over)
}

// Draw composites the shadow of card onto dst.
func (s Shadow) Draw(dst draw.Image, card image.Rectangle) {
	s.draw(dst, card, s.Mask(card.Dx(), card.Dy()))
}

// Cache reuses the blurred mask while the card size stays the same. It is
// owned by one goroutine.
type Cache struct {
	Shadow
	size image.Point
	mask *image.Alpha
}

// NewCache returns a cache drawing s.
func NewCache(s Shadow) *Cache {
	return &Cache{Shadow: s}
}

// Draw composites the shadow of card onto dst.
func (c *Cache) Draw(dst draw.Image, card image.Rectangle) {
	if card.Empty() {
		return
	}
	if c.mask == nil || c.size != card.Size() {
		c.size = card.Size()
		c.mask = c.Mask(card.Dx(), card.Dy())
	}
	c.draw(dst, card, c.mask)
}

// boxBlur runs a horizontal then vertical running-sum blur of the given
// radius over src.
func boxBlur(src *image.Alpha, radius int) *image.Alpha {
	b := src.Bounds()
	out := image.NewAlpha(b)
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := b.Dx(), b.Dy()
	tmp := image.NewAlpha(b)
	prefix := make([]int, max(w, h)+1)

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(row[x])
		}
		for x := 0; x < w; x++ {
			x0, x1 := max(x-radius, 0), min(x+radius, w-1)
			tmp.Pix[y*tmp.Stride+x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0, y1 := max(y-radius, 0), min(y+radius, h-1)
			out.Pix[y*out.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
	return out
}
