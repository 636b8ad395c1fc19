// Package surface defines the rendering surface and image source contracts
// the crop engine draws and exports through, plus shared image codecs.
package surface

import (
	"image"
	"image/color"
)

// Style describes how a rectangle or handle is stroked and filled.
type Style struct {
	Color color.Color
	// Alt is drawn in the gaps of a dashed stroke. Nil leaves gaps empty.
	Alt   color.Color
	Width float64
	// Dash is the dash segment length; zero draws a solid line.
	Dash float64
	// Fill is used for handle interiors.
	Fill color.Color
	// Size is the handle side length.
	Size float64
}

// Surface is a drawable target measured in device pixels.
type Surface interface {
	Measure() (w, h int)
	DrawImage(src image.Image, x, y, w, h float64)
	DrawRect(x, y, w, h float64, st Style)
	DrawHandle(x, y float64, st Style)
}

// Extractor copies a source-pixel rectangle out of an image and encodes it.
type Extractor interface {
	ExtractRegion(src image.Image, px, py, pw, ph int) (Encoded, error)
}

// Source is a loaded raster image.
type Source interface {
	Dimensions() (w, h int)
	Handle() image.Image
	Name() string
}

type imageSource struct {
	img  image.Image
	name string
}

// FromImage wraps img as a Source.
func FromImage(img image.Image, name string) Source {
	return imageSource{img: img, name: name}
}

func (s imageSource) Dimensions() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s imageSource) Handle() image.Image { return s.img }

func (s imageSource) Name() string { return s.name }
