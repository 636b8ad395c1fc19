package crop

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/cropdesk/internal/geom"
)

func TestActivateQuadrantsDefaultCells(t *testing.T) {
	m := NewModel(1000, 800)
	m.Activate(ModeQuadrants)
	require.True(t, m.Enabled())

	want := []geom.Point{{250, 200}, {750, 200}, {250, 600}, {750, 600}}
	for i, c := range m.Cells() {
		assert.Equal(t, Position(i), c.Position)
		assert.InDelta(t, want[i].X, c.Center.X*1000, 1e-9, "cell %s", c.Position)
		assert.InDelta(t, want[i].Y, c.Center.Y*800, 1e-9, "cell %s", c.Position)
		assert.InDelta(t, 237.5, c.HalfW*1000, 1e-9)
		assert.InDelta(t, 190, c.HalfH*800, 1e-9)
	}
}

func TestCellsDiagonalSymmetry(t *testing.T) {
	for s := MinQuadrantScale; s <= MaxQuadrantScale; s += 0.05 {
		cells := Quadrants{Scale: s}.Cells()
		a := cells[TopLeft].Center.Add(cells[BottomRight].Center)
		b := cells[TopRight].Center.Add(cells[BottomLeft].Center)
		assert.InDelta(t, a.X, b.X, 1e-12)
		assert.InDelta(t, a.Y, b.Y, 1e-12)
		for _, c := range cells {
			assert.Equal(t, cells[0].HalfW, c.HalfW)
			assert.Equal(t, cells[0].HalfH, c.HalfH)
		}
	}
}

func TestActivateResetsOnlyThatMode(t *testing.T) {
	m := NewModel(1000, 1000)
	m.Activate(ModeQuadrants)
	m.SetQuadrantScale(0.6)
	m.AdjustQuadrantOffset(0.3, -0.1)

	m.Activate(ModeFree)
	m.SetFreeRect(geom.R(0.1, 0.1, 0.2, 0.2))
	assert.Equal(t, 0.6, m.Quadrants().Scale)

	m.Deactivate()
	assert.False(t, m.Enabled())
	assert.Nil(t, m.Regions())
	assert.Equal(t, geom.R(0.1, 0.1, 0.2, 0.2), m.FreeRect())

	m.Activate(ModeQuadrants)
	assert.Equal(t, DefaultQuadrants(), m.Quadrants())
	assert.Equal(t, geom.R(0.1, 0.1, 0.2, 0.2), m.FreeRect())
}

func TestSetQuadrantScaleClamps(t *testing.T) {
	m := NewModel(100, 100)
	m.SetQuadrantScale(5)
	assert.Equal(t, MaxQuadrantScale, m.Quadrants().Scale)
	m.SetQuadrantScale(-1)
	assert.Equal(t, MinQuadrantScale, m.Quadrants().Scale)
	m.SetQuadrantScale(math.NaN())
	assert.Equal(t, MinQuadrantScale, m.Quadrants().Scale)
}

func TestAdjustQuadrantOffsetIsUnbounded(t *testing.T) {
	m := NewModel(100, 100)
	m.Activate(ModeQuadrants)
	for i := 0; i < 100; i++ {
		m.AdjustQuadrantOffset(0.5, -0.5)
	}
	q := m.Quadrants()
	assert.InDelta(t, 50, q.OffsetX, 1e-9)
	assert.InDelta(t, -50, q.OffsetY, 1e-9)
}

func TestMinSizeFor(t *testing.T) {
	assert.InDelta(t, 0.1, MinSizeFor(500, 500), 1e-12)
	assert.InDelta(t, 0.125, MinSizeFor(800, 400), 1e-12)
	assert.Equal(t, 1.0, MinSizeFor(20, 400))
	assert.Equal(t, 1.0, MinSizeFor(0, 0))
}

func TestSetFreeRectClamping(t *testing.T) {
	m := NewModel(500, 500)
	cases := []struct {
		name string
		in   geom.Rect
		want geom.Rect
	}{
		{"inside", geom.R(0.2, 0.2, 0.3, 0.3), geom.R(0.2, 0.2, 0.3, 0.3)},
		{"negative origin", geom.R(-0.5, -0.1, 0.3, 0.3), geom.R(0, 0, 0.3, 0.3)},
		{"past far edge", geom.R(0.8, 0.8, 0.5, 0.5), geom.R(0.8, 0.8, 0.2, 0.2)},
		{"too small", geom.R(0.4, 0.4, 0.01, 0), geom.R(0.4, 0.4, 0.1, 0.1)},
		{"too small at edge", geom.R(0.95, 0.95, 0.01, 0.01), geom.R(0.9, 0.9, 0.1, 0.1)},
		{"oversized", geom.R(0, 0, 3, 3), geom.R(0, 0, 1, 1)},
		{"nan", geom.R(math.NaN(), 0, math.NaN(), 0.5), geom.R(0, 0, 0.1, 0.5)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m.SetFreeRect(tc.in)
			assert.True(t, m.FreeRect().ApproxEqual(tc.want, 1e-12), "got %+v", m.FreeRect())
		})
	}
}

func TestSetFreeRectInvariantsUnderRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := NewModel(640, 480)
	m.Activate(ModeFree)
	floor := m.MinSize()
	for i := 0; i < 5000; i++ {
		m.SetFreeRect(geom.R(rng.Float64()*3-1, rng.Float64()*3-1, rng.Float64()*3-1, rng.Float64()*3-1))
		r := m.FreeRect()
		require.GreaterOrEqual(t, r.X, 0.0)
		require.GreaterOrEqual(t, r.Y, 0.0)
		require.LessOrEqual(t, r.MaxX(), 1+1e-12)
		require.LessOrEqual(t, r.MaxY(), 1+1e-12)
		require.GreaterOrEqual(t, r.W, floor-1e-12)
		require.GreaterOrEqual(t, r.H, floor-1e-12)
	}
}

func TestRegionsByMode(t *testing.T) {
	m := NewModel(1000, 1000)
	m.Activate(ModeQuadrants)
	regions := m.Regions()
	require.Len(t, regions, 4)
	assert.True(t, regions[0].ApproxEqual(geom.R(0.25-0.2375, 0.25-0.2375, 0.475, 0.475), 1e-12))

	m.Activate(ModeFree)
	assert.Equal(t, []geom.Rect{DefaultFreeRect()}, m.Regions())
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"quadrants": ModeQuadrants, " Free ": ModeFree, "grid": ModeQuadrants, "rect": ModeFree} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("polygon")
	assert.Error(t, err)
	assert.Equal(t, "free", ModeFree.String())
}
