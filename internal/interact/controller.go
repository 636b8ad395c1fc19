// Package interact turns pointer and wheel events into crop model updates.
package interact

import (
	"fmt"

	"github.com/example/cropdesk/internal/crop"
	"github.com/example/cropdesk/internal/geom"
)

// Phase is the gesture state of a Controller.
type Phase int

const (
	// Idle means no gesture is in progress.
	Idle Phase = iota
	// Moving drags the free rectangle or pans the quadrants.
	Moving
	// Resizing drags one handle of the free rectangle.
	Resizing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	case Resizing:
		return "resizing"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Tuning holds the interaction constants.
type Tuning struct {
	// HandleTolerance is the per-axis grab distance in surface pixels.
	HandleTolerance float64
	// PanSensitivity scales a quadrant pan measured in half-surface units.
	PanSensitivity float64
	// WheelStep is added to or removed from the scale per notch.
	WheelStep float64
	// FreeZoomMin and FreeZoomMax bound each side of the free rectangle
	// after a wheel notch. A notch always lands inside the range, even when
	// that grows a smaller rectangle.
	FreeZoomMin float64
	FreeZoomMax float64
}

// DefaultTuning returns the stock interaction constants.
func DefaultTuning() Tuning {
	return Tuning{
		HandleTolerance: 12,
		PanSensitivity:  0.02,
		WheelStep:       0.02,
		FreeZoomMin:     0.1,
		FreeZoomMax:     1,
	}
}

func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	if t.HandleTolerance <= 0 {
		t.HandleTolerance = d.HandleTolerance
	}
	if t.PanSensitivity <= 0 {
		t.PanSensitivity = d.PanSensitivity
	}
	if t.WheelStep <= 0 {
		t.WheelStep = d.WheelStep
	}
	if t.FreeZoomMin <= 0 {
		t.FreeZoomMin = d.FreeZoomMin
	}
	if t.FreeZoomMax <= 0 || t.FreeZoomMax > 1 {
		t.FreeZoomMax = d.FreeZoomMax
	}
	return t
}

// anchor is captured when a gesture starts.
type anchor struct {
	start geom.Point
	last  geom.Point
	snap  crop.Snapshot
}

// Controller is the gesture state machine for one crop model. It is driven
// from a single goroutine.
type Controller struct {
	model  *crop.Model
	mapper geom.Mapper
	tuning Tuning

	phase  Phase
	handle Handle
	anchor anchor
}

// NewController binds a controller to model.
func NewController(model *crop.Model, mapper geom.Mapper, tuning Tuning) *Controller {
	return &Controller{model: model, mapper: mapper, tuning: tuning.withDefaults()}
}

// SetMapper replaces the coordinate mapper after a surface resize. A gesture
// in progress keeps its anchor.
func (c *Controller) SetMapper(m geom.Mapper) { c.mapper = m }

// Phase returns the current gesture phase.
func (c *Controller) Phase() Phase { return c.phase }

// ActiveHandle returns the handle being dragged, or HandleNone.
func (c *Controller) ActiveHandle() Handle { return c.handle }

// Tuning returns the constants in effect.
func (c *Controller) Tuning() Tuning { return c.tuning }

// Handle applies ev and reports whether the crop model changed. Every event
// fails with geom.ErrNotReady until the mapper is usable.
func (c *Controller) Handle(ev Event) (bool, error) {
	if !c.mapper.Ready() {
		c.reset()
		return false, geom.ErrNotReady
	}
	before := c.model.Snapshot()
	var err error
	switch e := ev.(type) {
	case PointerDown:
		err = c.pointerDown(geom.Pt(e.X, e.Y))
	case PointerMove:
		err = c.pointerMove(geom.Pt(e.X, e.Y))
	case PointerUp, PointerCancel:
		c.reset()
	case Wheel:
		c.wheel(e.DeltaY)
	default:
		return false, fmt.Errorf("interact: unsupported event %T", ev)
	}
	return c.model.Snapshot() != before, err
}

func (c *Controller) reset() {
	c.phase = Idle
	c.handle = HandleNone
	c.anchor = anchor{}
}

func (c *Controller) begin(p geom.Point, phase Phase, h Handle) {
	c.phase = phase
	c.handle = h
	c.anchor = anchor{start: p, last: p, snap: c.model.Snapshot()}
}

func (c *Controller) pointerDown(p geom.Point) error {
	c.reset()
	if !c.model.Enabled() {
		return nil
	}
	if c.model.Mode() == crop.ModeQuadrants {
		c.begin(p, Moving, HandleNone)
		return nil
	}
	r, err := c.mapper.NormalizedRectToSurface(c.model.FreeRect())
	if err != nil {
		return err
	}
	if h := HitTest(r, p, c.tuning.HandleTolerance); h != HandleNone {
		c.begin(p, Resizing, h)
		return nil
	}
	if r.Contains(p) {
		c.begin(p, Moving, HandleNone)
	}
	return nil
}

func (c *Controller) pointerMove(p geom.Point) error {
	if c.phase == Idle || !c.model.Enabled() {
		return nil
	}
	if c.model.Mode() != c.anchor.snap.Mode {
		c.reset()
		return nil
	}
	var err error
	switch {
	case c.model.Mode() == crop.ModeQuadrants:
		c.panQuadrants(p)
	case c.phase == Moving:
		err = c.dragFree(p)
	case c.phase == Resizing:
		err = c.resizeFree(p)
	}
	c.anchor.last = p
	return err
}

// panQuadrants applies the delta since the previous event.
func (c *Controller) panQuadrants(p geom.Point) {
	w, h := c.mapper.SurfaceSize()
	d := p.Sub(c.anchor.last)
	nx := d.X / (w / 2) * c.tuning.PanSensitivity
	ny := d.Y / (h / 2) * c.tuning.PanSensitivity
	c.model.AdjustQuadrantOffset(nx, ny)
}

// dragFree moves the snapshot rectangle by the delta since the gesture
// started.
func (c *Controller) dragFree(p geom.Point) error {
	d, err := c.mapper.SurfaceDeltaToNormalized(p.X-c.anchor.start.X, p.Y-c.anchor.start.Y)
	if err != nil {
		return err
	}
	r := c.anchor.snap.Free
	r.X = clamp(r.X+d.X, 0, 1-r.W)
	r.Y = clamp(r.Y+d.Y, 0, 1-r.H)
	c.model.SetFreeRect(r)
	return nil
}

// resizeFree moves the edges owned by the active handle, starting from the
// snapshot so repeated moves never drift.
func (c *Controller) resizeFree(p geom.Point) error {
	d, err := c.mapper.SurfaceDeltaToNormalized(p.X-c.anchor.start.X, p.Y-c.anchor.start.Y)
	if err != nil {
		return err
	}
	base := c.anchor.snap.Free
	floor := c.model.MinSize()
	left, top := base.X, base.Y
	right, bottom := base.MaxX(), base.MaxY()
	h := c.handle
	if h.movesLeft() {
		left = clamp(left+d.X, 0, right-floor)
	}
	if h.movesRight() {
		right = clamp(right+d.X, left+floor, 1)
	}
	if h.movesTop() {
		top = clamp(top+d.Y, 0, bottom-floor)
	}
	if h.movesBottom() {
		bottom = clamp(bottom+d.Y, top+floor, 1)
	}
	c.model.SetFreeRect(geom.R(left, top, right-left, bottom-top))
	return nil
}

func (c *Controller) wheel(deltaY float64) {
	if !c.model.Enabled() || deltaY == 0 {
		return
	}
	step := c.tuning.WheelStep
	if deltaY > 0 {
		step = -step
	}
	switch c.model.Mode() {
	case crop.ModeQuadrants:
		c.model.SetQuadrantScale(c.model.Quadrants().Scale + step)
	case crop.ModeFree:
		r := c.model.FreeRect()
		ctr := r.Center()
		w := clamp(r.W+step, c.tuning.FreeZoomMin, c.tuning.FreeZoomMax)
		h := clamp(r.H+step, c.tuning.FreeZoomMin, c.tuning.FreeZoomMax)
		c.model.SetFreeRect(geom.R(ctr.X-w/2, ctr.Y-h/2, w, h))
	}
	if c.phase != Idle {
		c.anchor.start = c.anchor.last
		c.anchor.snap = c.model.Snapshot()
	}
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
