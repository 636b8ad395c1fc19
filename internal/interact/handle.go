package interact

import "github.com/example/cropdesk/internal/geom"

// Handle identifies one of the eight resize grips of a free rectangle.
type Handle int

const (
	HandleNone Handle = iota
	HandleNW
	HandleNE
	HandleSE
	HandleSW
	HandleN
	HandleE
	HandleS
	HandleW
)

var handleNames = [...]string{"none", "nw", "ne", "se", "sw", "n", "e", "s", "w"}

func (h Handle) String() string {
	if h < 0 || int(h) >= len(handleNames) {
		return "unknown"
	}
	return handleNames[h]
}

// Corner reports whether h moves two edges.
func (h Handle) Corner() bool { return h >= HandleNW && h <= HandleSW }

func (h Handle) movesLeft() bool   { return h == HandleNW || h == HandleSW || h == HandleW }
func (h Handle) movesRight() bool  { return h == HandleNE || h == HandleSE || h == HandleE }
func (h Handle) movesTop() bool    { return h == HandleNW || h == HandleNE || h == HandleN }
func (h Handle) movesBottom() bool { return h == HandleSW || h == HandleSE || h == HandleS }

// Marker is a handle placed at a surface position.
type Marker struct {
	Handle Handle
	At     geom.Point
}

// Markers returns the eight handles of r, corners first, then edge
// midpoints. Hit testing walks them in this order.
func Markers(r geom.Rect) [8]Marker {
	cx, cy := r.X+r.W/2, r.Y+r.H/2
	return [8]Marker{
		{HandleNW, geom.Pt(r.X, r.Y)},
		{HandleNE, geom.Pt(r.MaxX(), r.Y)},
		{HandleSE, geom.Pt(r.MaxX(), r.MaxY())},
		{HandleSW, geom.Pt(r.X, r.MaxY())},
		{HandleN, geom.Pt(cx, r.Y)},
		{HandleE, geom.Pt(r.MaxX(), cy)},
		{HandleS, geom.Pt(cx, r.MaxY())},
		{HandleW, geom.Pt(r.X, cy)},
	}
}

// HitTest returns the first handle of r whose marker is within tol surface
// pixels of p on both axes, or HandleNone.
func HitTest(r geom.Rect, p geom.Point, tol float64) Handle {
	for _, m := range Markers(r) {
		if abs(p.X-m.At.X) <= tol && abs(p.Y-m.At.Y) <= tol {
			return m.Handle
		}
	}
	return HandleNone
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
