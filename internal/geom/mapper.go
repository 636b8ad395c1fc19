package geom

import "errors"

// ErrNotReady is returned by every mapping call made before an image with
// non-zero dimensions has been loaded onto a non-empty surface.
var ErrNotReady = errors.New("geom: no image loaded")

// Mapper converts between source-pixel, normalized and surface coordinates.
// The image is scaled to fit the surface while keeping its aspect ratio and
// is centered on the free axis.
//
// A Mapper is an immutable value; build a new one whenever the image or the
// surface changes size.
type Mapper struct {
	imgW, imgH   float64
	surfW, surfH float64
	fit          float64
	dx, dy       float64
}

// NewMapper computes the fit scale and centering offsets for an image of
// imgW×imgH pixels on a surface of surfW×surfH device pixels.
func NewMapper(imgW, imgH, surfW, surfH int) Mapper {
	m := Mapper{
		imgW:  float64(imgW),
		imgH:  float64(imgH),
		surfW: float64(surfW),
		surfH: float64(surfH),
	}
	if !m.Ready() {
		return m
	}
	m.fit = m.surfW / m.imgW
	if s := m.surfH / m.imgH; s < m.fit {
		m.fit = s
	}
	m.dx = (m.surfW - m.imgW*m.fit) / 2
	m.dy = (m.surfH - m.imgH*m.fit) / 2
	return m
}

// WithSurface returns a mapper for the same image on a resized surface.
func (m Mapper) WithSurface(w, h int) Mapper {
	return NewMapper(int(m.imgW), int(m.imgH), w, h)
}

// Ready reports whether both the image and the surface have a usable size.
func (m Mapper) Ready() bool {
	return m.imgW > 0 && m.imgH > 0 && m.surfW > 0 && m.surfH > 0
}

// ImageSize returns the source image dimensions in pixels.
func (m Mapper) ImageSize() (w, h float64) { return m.imgW, m.imgH }

// SurfaceSize returns the surface dimensions in device pixels.
func (m Mapper) SurfaceSize() (w, h float64) { return m.surfW, m.surfH }

// FitScale returns the image-to-surface scale factor.
func (m Mapper) FitScale() (float64, error) {
	if !m.Ready() {
		return 0, ErrNotReady
	}
	return m.fit, nil
}

// Placement returns the rectangle the whole image occupies on the surface.
func (m Mapper) Placement() (Rect, error) {
	if !m.Ready() {
		return Rect{}, ErrNotReady
	}
	return Rect{m.dx, m.dy, m.imgW * m.fit, m.imgH * m.fit}, nil
}

// ImageToSurface maps a source pixel position to the surface.
func (m Mapper) ImageToSurface(px, py float64) (Point, error) {
	if !m.Ready() {
		return Point{}, ErrNotReady
	}
	return Point{m.dx + px*m.fit, m.dy + py*m.fit}, nil
}

// SurfaceToImage maps a surface position back to source pixels.
func (m Mapper) SurfaceToImage(sx, sy float64) (Point, error) {
	if !m.Ready() {
		return Point{}, ErrNotReady
	}
	return Point{(sx - m.dx) / m.fit, (sy - m.dy) / m.fit}, nil
}

// SurfaceToNormalized maps a surface position to fractions of the image
// size. Positions outside the placed image yield values outside [0,1].
func (m Mapper) SurfaceToNormalized(sx, sy float64) (Point, error) {
	if !m.Ready() {
		return Point{}, ErrNotReady
	}
	return Point{(sx - m.dx) / (m.imgW * m.fit), (sy - m.dy) / (m.imgH * m.fit)}, nil
}

// NormalizedToSurface is the inverse of SurfaceToNormalized.
func (m Mapper) NormalizedToSurface(nx, ny float64) (Point, error) {
	if !m.Ready() {
		return Point{}, ErrNotReady
	}
	return Point{m.dx + nx*m.imgW*m.fit, m.dy + ny*m.imgH*m.fit}, nil
}

// NormalizedToImage converts fractions of the image size to source pixels.
func (m Mapper) NormalizedToImage(nx, ny float64) (Point, error) {
	if !m.Ready() {
		return Point{}, ErrNotReady
	}
	return Point{nx * m.imgW, ny * m.imgH}, nil
}

// NormalizedRectToSurface converts a normalized rectangle to surface space.
func (m Mapper) NormalizedRectToSurface(r Rect) (Rect, error) {
	p, err := m.NormalizedToSurface(r.X, r.Y)
	if err != nil {
		return Rect{}, err
	}
	return Rect{p.X, p.Y, r.W * m.imgW * m.fit, r.H * m.imgH * m.fit}, nil
}

// SurfaceDeltaToNormalized converts a surface-space displacement into a
// normalized displacement. Unlike SurfaceToNormalized it ignores the
// centering offsets.
func (m Mapper) SurfaceDeltaToNormalized(dx, dy float64) (Point, error) {
	if !m.Ready() {
		return Point{}, ErrNotReady
	}
	return Point{dx / (m.imgW * m.fit), dy / (m.imgH * m.fit)}, nil
}
