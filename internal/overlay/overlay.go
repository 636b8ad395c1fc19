// Package overlay derives the per-frame draw list for the crop overlay and
// issues it against a surface.
package overlay

import (
	"image"
	"image/color"

	"github.com/example/cropdesk/internal/crop"
	"github.com/example/cropdesk/internal/geom"
	"github.com/example/cropdesk/internal/interact"
	"github.com/example/cropdesk/internal/surface"
	"github.com/example/cropdesk/internal/theme"
)

// Frame is an immutable draw list in surface coordinates. It is safe to
// hand to a paint goroutine.
type Frame struct {
	Width, Height int
	// Image is where the whole source image is placed.
	Image   geom.Rect
	Enabled bool
	Mode    crop.Mode
	Regions []geom.Rect
	Handles []interact.Marker
	Active  interact.Handle
}

// Present derives the frame for model on the surface described by m.
func Present(model *crop.Model, m geom.Mapper) (Frame, error) {
	place, err := m.Placement()
	if err != nil {
		return Frame{}, err
	}
	sw, sh := m.SurfaceSize()
	f := Frame{Width: int(sw), Height: int(sh), Image: place, Mode: model.Mode()}
	if !model.Enabled() {
		return f, nil
	}
	f.Enabled = true
	for _, r := range model.Regions() {
		sr, err := m.NormalizedRectToSurface(r)
		if err != nil {
			return Frame{}, err
		}
		f.Regions = append(f.Regions, sr)
	}
	if model.Mode() == crop.ModeFree && len(f.Regions) == 1 {
		markers := interact.Markers(f.Regions[0])
		f.Handles = markers[:]
	}
	return f, nil
}

// WithActive marks h as the handle being dragged.
func (f Frame) WithActive(h interact.Handle) Frame {
	f.Active = h
	return f
}

// Styles are the strokes used by Paint.
type Styles struct {
	Region       surface.Style
	Handle       surface.Style
	HandleActive surface.Style
}

// DefaultStyles matches the default theme.
func DefaultStyles() Styles { return StylesFromTheme(theme.Default()) }

// StylesFromTheme maps theme colors onto overlay strokes.
func StylesFromTheme(t *theme.Theme) Styles {
	if t == nil {
		t = theme.Default()
	}
	handle := surface.Style{Color: t.HandleBorder, Fill: t.HandleFill, Width: 1, Size: 8}
	active := handle
	active.Fill = t.HandleActive
	return Styles{
		Region:       surface.Style{Color: t.CropStroke, Alt: t.CropStrokeAlt, Width: 2, Dash: 4},
		Handle:       handle,
		HandleActive: active,
	}
}

// Paint draws the image, then region outlines, then handles. Regions are
// clipped to the surface so panned quadrant cells stay visible at the edge.
func (f Frame) Paint(s surface.Surface, src image.Image, st Styles) {
	if src != nil {
		s.DrawImage(src, f.Image.X, f.Image.Y, f.Image.W, f.Image.H)
	}
	if !f.Enabled {
		return
	}
	w, h := s.Measure()
	for _, r := range f.Regions {
		c, ok := clip(r, float64(w), float64(h))
		if !ok {
			continue
		}
		s.DrawRect(c.X, c.Y, c.W, c.H, st.Region)
	}
	for _, m := range f.Handles {
		hs := st.Handle
		if m.Handle == f.Active {
			hs = st.HandleActive
		}
		s.DrawHandle(m.At.X, m.At.Y, hs)
	}
}

// Background fills the surface area outside the image with a solid color.
// Surfaces that cannot fill are left alone.
func Background(s surface.Surface, col color.Color) {
	if f, ok := s.(interface{ Fill(color.Color) }); ok {
		f.Fill(col)
	}
}

func clip(r geom.Rect, w, h float64) (geom.Rect, bool) {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.MaxX(), w-1), min(r.MaxY(), h-1)
	if x1 <= x0 || y1 <= y0 {
		return geom.Rect{}, false
	}
	return geom.R(x0, y0, x1-x0, y1-y0), true
}
