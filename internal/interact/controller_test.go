package interact

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/cropdesk/internal/crop"
	"github.com/example/cropdesk/internal/geom"
)

func newFree(t *testing.T, img, surf int) (*crop.Model, *Controller) {
	t.Helper()
	m := crop.NewModel(img, img)
	m.Activate(crop.ModeFree)
	c := NewController(m, geom.NewMapper(img, img, surf, surf), DefaultTuning())
	return m, c
}

func send(t *testing.T, c *Controller, evs ...Event) {
	t.Helper()
	for _, ev := range evs {
		_, err := c.Handle(ev)
		require.NoError(t, err)
	}
}

func TestResizeSouthEastHandle(t *testing.T) {
	m, c := newFree(t, 1000, 1000)

	changed, err := c.Handle(PointerDown{X: 750, Y: 750})
	require.NoError(t, err)
	assert.False(t, changed)
	require.Equal(t, Resizing, c.Phase())
	require.Equal(t, HandleSE, c.ActiveHandle())

	changed, err = c.Handle(PointerMove{X: 900, Y: 600})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, m.FreeRect().ApproxEqual(geom.R(0.25, 0.25, 0.65, 0.35), 1e-9), "rect %+v", m.FreeRect())

	send(t, c, PointerUp{})
	assert.Equal(t, Idle, c.Phase())
	assert.Equal(t, HandleNone, c.ActiveHandle())
}

func TestResizeStopsAtMinSize(t *testing.T) {
	m, c := newFree(t, 500, 500)
	m.SetFreeRect(geom.R(0, 0, 0.1, 0.1))
	require.InDelta(t, 0.1, m.MinSize(), 1e-12)

	send(t, c, PointerDown{X: 50, Y: 50})
	require.Equal(t, HandleSE, c.ActiveHandle())
	for _, p := range []float64{40, 20, 0, -30} {
		send(t, c, PointerMove{X: p, Y: p})
		r := m.FreeRect()
		assert.InDelta(t, 0.1, r.W, 1e-12)
		assert.InDelta(t, 0.1, r.H, 1e-12)
	}
}

func TestResizeFromSnapshotDoesNotDrift(t *testing.T) {
	m, c := newFree(t, 1000, 1000)
	send(t, c, PointerDown{X: 750, Y: 750})
	for i := 0; i < 50; i++ {
		send(t, c, PointerMove{X: 900, Y: 900}, PointerMove{X: 800, Y: 800})
	}
	assert.True(t, m.FreeRect().ApproxEqual(geom.R(0.25, 0.25, 0.55, 0.55), 1e-9), "rect %+v", m.FreeRect())
}

func TestSouthEastDragIsMonotone(t *testing.T) {
	m, c := newFree(t, 1000, 1000)
	send(t, c, PointerDown{X: 750, Y: 750})
	prevW, prevH := m.FreeRect().W, m.FreeRect().H
	for x := 750.0; x <= 1100; x += 10 {
		send(t, c, PointerMove{X: x, Y: x})
		r := m.FreeRect()
		assert.GreaterOrEqual(t, r.W, prevW)
		assert.GreaterOrEqual(t, r.H, prevH)
		prevW, prevH = r.W, r.H
	}
	assert.InDelta(t, 0.75, prevW, 1e-9)
}

func TestNorthWestDragKeepsOppositeEdges(t *testing.T) {
	m, c := newFree(t, 1000, 1000)
	send(t, c, PointerDown{X: 250, Y: 250})
	require.Equal(t, HandleNW, c.ActiveHandle())
	for _, p := range [][2]float64{{100, 300}, {-200, -200}, {600, 700}, {740, 740}, {300, 100}} {
		send(t, c, PointerMove{X: p[0], Y: p[1]})
		r := m.FreeRect()
		assert.InDelta(t, 0.75, r.MaxX(), 1e-9, "move %v", p)
		assert.InDelta(t, 0.75, r.MaxY(), 1e-9, "move %v", p)
	}
}

func TestEdgeHandleMovesOneEdge(t *testing.T) {
	m, c := newFree(t, 1000, 1000)
	send(t, c, PointerDown{X: 750, Y: 500})
	require.Equal(t, HandleE, c.ActiveHandle())
	send(t, c, PointerMove{X: 850, Y: 100})
	assert.True(t, m.FreeRect().ApproxEqual(geom.R(0.25, 0.25, 0.6, 0.5), 1e-9), "rect %+v", m.FreeRect())
}

func TestMoveInteriorClampsInsideImage(t *testing.T) {
	m, c := newFree(t, 1000, 1000)
	send(t, c, PointerDown{X: 500, Y: 500})
	require.Equal(t, Moving, c.Phase())

	send(t, c, PointerMove{X: 600, Y: 450})
	assert.True(t, m.FreeRect().ApproxEqual(geom.R(0.35, 0.2, 0.5, 0.5), 1e-9), "rect %+v", m.FreeRect())

	send(t, c, PointerMove{X: 2000, Y: -900})
	assert.True(t, m.FreeRect().ApproxEqual(geom.R(0.5, 0, 0.5, 0.5), 1e-9), "rect %+v", m.FreeRect())
}

func TestPointerDownOutsideStaysIdle(t *testing.T) {
	_, c := newFree(t, 1000, 1000)
	send(t, c, PointerDown{X: 50, Y: 50})
	assert.Equal(t, Idle, c.Phase())
	changed, err := c.Handle(PointerMove{X: 500, Y: 500})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCancelDiscardsGesture(t *testing.T) {
	m, c := newFree(t, 1000, 1000)
	send(t, c, PointerDown{X: 500, Y: 500}, PointerMove{X: 550, Y: 550})
	moved := m.FreeRect()
	send(t, c, PointerCancel{})
	assert.Equal(t, Idle, c.Phase())

	changed, err := c.Handle(PointerMove{X: 900, Y: 900})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, moved, m.FreeRect())
}

func TestDisabledModelIgnoresInput(t *testing.T) {
	m, c := newFree(t, 1000, 1000)
	m.Deactivate()
	for _, ev := range []Event{PointerDown{X: 500, Y: 500}, PointerMove{X: 600, Y: 600}, Wheel{DeltaY: -1}} {
		changed, err := c.Handle(ev)
		require.NoError(t, err)
		assert.False(t, changed)
	}
	assert.Equal(t, Idle, c.Phase())
}

func TestNotReadyMapper(t *testing.T) {
	m := crop.NewModel(100, 100)
	m.Activate(crop.ModeQuadrants)
	c := NewController(m, geom.Mapper{}, DefaultTuning())
	_, err := c.Handle(PointerDown{X: 1, Y: 1})
	assert.ErrorIs(t, err, geom.ErrNotReady)
	_, err = c.Handle(Wheel{DeltaY: 1})
	assert.ErrorIs(t, err, geom.ErrNotReady)
	assert.Equal(t, crop.DefaultQuadrantScale, m.Quadrants().Scale)

	c.SetMapper(geom.NewMapper(100, 100, 200, 200))
	_, err = c.Handle(Wheel{DeltaY: 1})
	assert.NoError(t, err)
}

func TestQuadrantWheelIsAdditiveAndReversible(t *testing.T) {
	m := crop.NewModel(1000, 800)
	m.Activate(crop.ModeQuadrants)
	c := NewController(m, geom.NewMapper(1000, 800, 1000, 800), DefaultTuning())

	steps := []struct {
		delta float64
		want  float64
	}{{-1, 0.97}, {-1, 0.99}, {1, 0.97}, {1, 0.95}}
	for _, s := range steps {
		send(t, c, Wheel{DeltaY: s.delta})
		assert.InDelta(t, s.want, m.Quadrants().Scale, 1e-9)
	}

	for i := 0; i < 100; i++ {
		send(t, c, Wheel{DeltaY: -3})
	}
	assert.Equal(t, crop.MaxQuadrantScale, m.Quadrants().Scale)
	for i := 0; i < 100; i++ {
		send(t, c, Wheel{DeltaY: 3})
	}
	assert.Equal(t, crop.MinQuadrantScale, m.Quadrants().Scale)

	changed, err := c.Handle(Wheel{})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestFreeWheelKeepsCenter(t *testing.T) {
	m, c := newFree(t, 1000, 1000)
	m.SetFreeRect(geom.R(0.3, 0.2, 0.4, 0.3))
	center := m.FreeRect().Center()
	for i := 0; i < 5; i++ {
		send(t, c, Wheel{DeltaY: -1})
		got := m.FreeRect().Center()
		assert.InDelta(t, center.X, got.X, 1e-9)
		assert.InDelta(t, center.Y, got.Y, 1e-9)
	}
	assert.InDelta(t, 0.5, m.FreeRect().W, 1e-9)
	for i := 0; i < 50; i++ {
		send(t, c, Wheel{DeltaY: 1})
	}
	assert.InDelta(t, 0.1, m.FreeRect().W, 1e-9)
	assert.InDelta(t, 0.1, m.FreeRect().H, 1e-9)
}

func TestQuadrantPanUsesIncrementalDelta(t *testing.T) {
	m := crop.NewModel(1000, 800)
	m.Activate(crop.ModeQuadrants)
	c := NewController(m, geom.NewMapper(1000, 800, 1000, 800), DefaultTuning())

	send(t, c, PointerDown{X: 100, Y: 100})
	require.Equal(t, Moving, c.Phase())
	send(t, c, PointerMove{X: 600, Y: 100})
	assert.InDelta(t, 0.02, m.Quadrants().OffsetX, 1e-12)
	send(t, c, PointerMove{X: 600, Y: 500})
	assert.InDelta(t, 0.02, m.Quadrants().OffsetY, 1e-12)
	send(t, c, PointerMove{X: 600, Y: 500})
	assert.InDelta(t, 0.02, m.Quadrants().OffsetX, 1e-12)
	send(t, c, PointerMove{X: 100, Y: 100}, PointerUp{})
	assert.InDelta(t, 0, m.Quadrants().OffsetX, 1e-12)
	assert.InDelta(t, 0, m.Quadrants().OffsetY, 1e-12)
}

func TestRandomGesturesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	m, c := newFree(t, 640, 640)
	floor := m.MinSize()
	for i := 0; i < 4000; i++ {
		x, y := rng.Float64()*800-80, rng.Float64()*800-80
		var ev Event
		switch rng.Intn(6) {
		case 0:
			ev = PointerDown{X: x, Y: y}
		case 1, 2:
			ev = PointerMove{X: x, Y: y}
		case 3:
			ev = PointerUp{}
		case 4:
			ev = PointerCancel{}
		default:
			ev = Wheel{DeltaY: float64(rng.Intn(3) - 1)}
		}
		send(t, c, ev)
		r := m.FreeRect()
		require.GreaterOrEqual(t, r.X, 0.0)
		require.GreaterOrEqual(t, r.Y, 0.0)
		require.LessOrEqual(t, r.MaxX(), 1+1e-9)
		require.LessOrEqual(t, r.MaxY(), 1+1e-9)
		require.GreaterOrEqual(t, r.W, floor-1e-9)
		require.GreaterOrEqual(t, r.H, floor-1e-9)
	}
}

func TestHitTestPrefersCorners(t *testing.T) {
	r := geom.R(100, 100, 10, 10)
	assert.Equal(t, HandleNW, HitTest(r, geom.Pt(105, 100), 12))
	assert.Equal(t, HandleN, HitTest(geom.R(0, 0, 100, 100), geom.Pt(50, 5), 12))
	assert.Equal(t, HandleNone, HitTest(geom.R(0, 0, 100, 100), geom.Pt(50, 50), 12))
	assert.Equal(t, "se", HandleSE.String())
	assert.True(t, HandleSW.Corner())
	assert.False(t, HandleW.Corner())
}

func TestModeSwitchEndsGesture(t *testing.T) {
	m := crop.NewModel(1000, 1000)
	m.Activate(crop.ModeFree)
	m.SetFreeRect(geom.R(0.6, 0.6, 0.3, 0.3))
	m.Activate(crop.ModeQuadrants)
	c := NewController(m, geom.NewMapper(1000, 1000, 1000, 1000), DefaultTuning())

	send(t, c, PointerDown{X: 500, Y: 500})
	require.Equal(t, Moving, c.Phase())

	m.Activate(crop.ModeFree)
	fresh := m.FreeRect()
	changed, err := c.Handle(PointerMove{X: 501, Y: 500})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, Idle, c.Phase())
	assert.Equal(t, fresh, m.FreeRect())
}

func TestFreeWheelShrinkRaisesNarrowRect(t *testing.T) {
	m, c := newFree(t, 1000, 1000)
	m.SetFreeRect(geom.R(0.4, 0.4, 0.06, 0.06))

	changed, err := c.Handle(Wheel{DeltaY: 1})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, m.FreeRect().ApproxEqual(geom.R(0.38, 0.38, 0.1, 0.1), 1e-9), "rect %+v", m.FreeRect())
}
