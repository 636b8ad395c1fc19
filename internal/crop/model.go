// Package crop holds the authoritative crop geometry for one editing session.
//
// All coordinates are in normalized crop space: fractions of the image width
// and height. Every mutation is total; out-of-range input is clamped rather
// than rejected.
package crop

import (
	"fmt"
	"math"
	"strings"

	"github.com/example/cropdesk/internal/geom"
)

// Mode selects how crop regions are laid out.
type Mode int

const (
	// ModeQuadrants splits the image into four uniformly scaled cells that
	// share one pan offset.
	ModeQuadrants Mode = iota
	// ModeFree is a single rectangle with eight resize handles.
	ModeFree
)

func (m Mode) String() string {
	switch m {
	case ModeQuadrants:
		return "quadrants"
	case ModeFree:
		return "free"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the names returned by Mode.String plus a few aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quadrants", "quad", "grid", "4":
		return ModeQuadrants, nil
	case "free", "rect", "rectangle":
		return ModeFree, nil
	}
	return 0, fmt.Errorf("unknown crop mode %q", s)
}

const (
	// MinQuadrantScale is the smallest quadrant cell scale.
	MinQuadrantScale = 0.5
	// MaxQuadrantScale is the largest quadrant cell scale.
	MaxQuadrantScale = 1.2
	// DefaultQuadrantScale is the scale a fresh quadrant crop starts at.
	DefaultQuadrantScale = 0.95

	// minSizePixels is the smallest free rectangle side in source pixels.
	minSizePixels = 50
)

// Quadrants are the parameters of ModeQuadrants. Offsets are unbounded.
type Quadrants struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// DefaultQuadrants returns the canonical quadrant layout.
func DefaultQuadrants() Quadrants {
	return Quadrants{Scale: DefaultQuadrantScale}
}

// DefaultFreeRect returns the canonical centered 50%×50% rectangle.
func DefaultFreeRect() geom.Rect {
	return geom.R(0.25, 0.25, 0.5, 0.5)
}

// Snapshot is a copy of the model parameters taken at the start of a gesture.
type Snapshot struct {
	Mode      Mode
	Quadrants Quadrants
	Free      geom.Rect
}

// Model is the crop state for one image. It is not safe for concurrent use;
// a session drives it from a single event loop.
type Model struct {
	enabled bool
	mode    Mode
	quad    Quadrants
	free    geom.Rect
	minSize float64
}

// NewModel creates a disabled model for an image of the given pixel size.
func NewModel(pixelWidth, pixelHeight int) *Model {
	return &Model{
		mode:    ModeQuadrants,
		quad:    DefaultQuadrants(),
		free:    DefaultFreeRect(),
		minSize: MinSizeFor(pixelWidth, pixelHeight),
	}
}

// MinSizeFor returns the normalized size floor for a free rectangle: 50
// source pixels along the tighter axis, capped at the whole image.
func MinSizeFor(pixelWidth, pixelHeight int) float64 {
	if pixelWidth <= 0 || pixelHeight <= 0 {
		return 1
	}
	m := math.Max(minSizePixels/float64(pixelWidth), minSizePixels/float64(pixelHeight))
	if m > 1 {
		return 1
	}
	return m
}

// Enabled reports whether a crop overlay is active.
func (m *Model) Enabled() bool { return m.enabled }

// Mode returns the current (or last active) mode.
func (m *Model) Mode() Mode { return m.mode }

// Quadrants returns the quadrant parameters.
func (m *Model) Quadrants() Quadrants { return m.quad }

// FreeRect returns the free rectangle.
func (m *Model) FreeRect() geom.Rect { return m.free }

// MinSize returns the normalized minimum width and height of the free rect.
func (m *Model) MinSize() float64 { return m.minSize }

// Activate enables the overlay in mode and resets that mode's parameters.
func (m *Model) Activate(mode Mode) {
	m.enabled = true
	m.mode = mode
	switch mode {
	case ModeQuadrants:
		m.quad = DefaultQuadrants()
	case ModeFree:
		m.SetFreeRect(DefaultFreeRect())
	}
}

// Deactivate hides the overlay. Parameters are kept as they are.
func (m *Model) Deactivate() { m.enabled = false }

// SetQuadrantScale sets the cell scale, clamped to [0.5, 1.2].
func (m *Model) SetQuadrantScale(v float64) {
	if math.IsNaN(v) {
		return
	}
	m.quad.Scale = clamp(v, MinQuadrantScale, MaxQuadrantScale)
}

// AdjustQuadrantOffset pans all four cells by (dx, dy). The result is not
// clamped, so cells may leave the image.
func (m *Model) AdjustQuadrantOffset(dx, dy float64) {
	if math.IsNaN(dx) || math.IsNaN(dy) {
		return
	}
	m.quad.OffsetX += dx
	m.quad.OffsetY += dy
}

// SetFreeRect stores r after clamping it into the image and up to the
// minimum size.
func (m *Model) SetFreeRect(r geom.Rect) {
	m.free = ClampRect(r, m.minSize)
}

// Snapshot copies the current parameters.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{Mode: m.mode, Quadrants: m.quad, Free: m.free}
}

// ClampRect applies the free rectangle invariants to r: origin in
// [0, 1-minSize], far edges inside the image, sides at least minSize.
func ClampRect(r geom.Rect, minSize float64) geom.Rect {
	r.X, r.W = clampAxis(r.X, r.W, minSize)
	r.Y, r.H = clampAxis(r.Y, r.H, minSize)
	return r
}

func clampAxis(pos, size, minSize float64) (float64, float64) {
	if math.IsNaN(pos) {
		pos = 0
	}
	if math.IsNaN(size) {
		size = 0
	}
	pos = clamp(pos, 0, 1-minSize)
	if size > 1 {
		size = 1
	}
	if pos+size > 1 {
		size = 1 - pos
	}
	if size < minSize {
		size = minSize
		if pos+size > 1 {
			pos = 1 - size
		}
	}
	return pos, size
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
