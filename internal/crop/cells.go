package crop

import "github.com/example/cropdesk/internal/geom"

// Position names one of the four quadrant cells.
type Position int

const (
	TopLeft Position = iota
	TopRight
	BottomLeft
	BottomRight
)

var positionNames = [...]string{"top-left", "top-right", "bottom-left", "bottom-right"}

func (p Position) String() string {
	if p < 0 || int(p) >= len(positionNames) {
		return "unknown"
	}
	return positionNames[p]
}

// Cell is one quadrant crop box: a center plus the half extent along each
// axis, both normalized.
type Cell struct {
	Position Position
	Center   geom.Point
	HalfW    float64
	HalfH    float64
}

// Rect returns the cell as a normalized rectangle.
func (c Cell) Rect() geom.Rect {
	return geom.R(c.Center.X-c.HalfW, c.Center.Y-c.HalfH, 2*c.HalfW, 2*c.HalfH)
}

// Cells returns the four quadrant cells in the order top-left, top-right,
// bottom-left, bottom-right. Each cell spans Scale of a half-image dimension
// and every center is shifted by the same pan offset.
func (q Quadrants) Cells() [4]Cell {
	half := q.Scale * 0.25
	var out [4]Cell
	for i := range out {
		qx := float64(i % 2)
		qy := float64(i / 2)
		out[i] = Cell{
			Position: Position(i),
			Center:   geom.Pt((qx+0.5+q.OffsetX)*0.5, (qy+0.5+q.OffsetY)*0.5),
			HalfW:    half,
			HalfH:    half,
		}
	}
	return out
}

// Cells derives the quadrant cells from the current parameters.
func (m *Model) Cells() [4]Cell { return m.quad.Cells() }

// Regions returns the normalized crop rectangles of the active mode. It
// returns nil when the overlay is disabled.
func (m *Model) Regions() []geom.Rect {
	if !m.enabled {
		return nil
	}
	if m.mode == ModeFree {
		return []geom.Rect{m.free}
	}
	cells := m.Cells()
	out := make([]geom.Rect, 0, len(cells))
	for _, c := range cells {
		out = append(out, c.Rect())
	}
	return out
}
