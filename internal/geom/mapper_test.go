package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMapperLetterboxesWideSurface(t *testing.T) {
	m := NewMapper(1000, 800, 1600, 800)

	fit, err := m.FitScale()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, fit, 1e-12)

	place, err := m.Placement()
	require.NoError(t, err)
	assert.True(t, place.ApproxEqual(R(300, 0, 1000, 800), 1e-9), "placement %+v", place)
}

func TestNewMapperPillarboxesTallSurface(t *testing.T) {
	m := NewMapper(1000, 800, 500, 1000)

	place, err := m.Placement()
	require.NoError(t, err)
	assert.True(t, place.ApproxEqual(R(0, 300, 500, 400), 1e-9), "placement %+v", place)

	p, err := m.ImageToSurface(1000, 800)
	require.NoError(t, err)
	assert.InDelta(t, 500, p.X, 1e-9)
	assert.InDelta(t, 700, p.Y, 1e-9)
}

func TestMapperRoundTrip(t *testing.T) {
	surfaces := [][2]int{{800, 600}, {1920, 1080}, {333, 977}, {1, 1}, {4096, 200}}
	points := []Point{{0, 0}, {1, 1}, {0.25, 0.75}, {0.5, 0.5}, {0.999, 0.001}}
	for _, s := range surfaces {
		m := NewMapper(1000, 800, s[0], s[1])
		for _, p := range points {
			px, err := m.NormalizedToImage(p.X, p.Y)
			require.NoError(t, err)
			sp, err := m.ImageToSurface(px.X, px.Y)
			require.NoError(t, err)
			back, err := m.SurfaceToNormalized(sp.X, sp.Y)
			require.NoError(t, err)
			assert.InDelta(t, p.X, back.X, 1e-9, "surface %v point %v", s, p)
			assert.InDelta(t, p.Y, back.Y, 1e-9, "surface %v point %v", s, p)

			img, err := m.SurfaceToImage(sp.X, sp.Y)
			require.NoError(t, err)
			assert.InDelta(t, px.X, img.X, 1e-6)
			assert.InDelta(t, px.Y, img.Y, 1e-6)
		}
	}
}

func TestMapperNotReady(t *testing.T) {
	for _, m := range []Mapper{NewMapper(0, 800, 100, 100), NewMapper(800, 0, 100, 100), NewMapper(800, 600, 0, 0), {}} {
		_, err := m.ImageToSurface(1, 1)
		assert.ErrorIs(t, err, ErrNotReady)
		_, err = m.SurfaceToNormalized(1, 1)
		assert.ErrorIs(t, err, ErrNotReady)
		_, err = m.NormalizedRectToSurface(R(0, 0, 1, 1))
		assert.ErrorIs(t, err, ErrNotReady)
		_, err = m.Placement()
		assert.ErrorIs(t, err, ErrNotReady)
		_, err = m.FitScale()
		assert.ErrorIs(t, err, ErrNotReady)
	}
}

func TestWithSurfaceKeepsImage(t *testing.T) {
	m := NewMapper(640, 480, 100, 100).WithSurface(1280, 960)
	w, h := m.ImageSize()
	assert.Equal(t, 640.0, w)
	assert.Equal(t, 480.0, h)
	fit, err := m.FitScale()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, fit, 1e-12)
}

func TestNormalizedRectToSurface(t *testing.T) {
	m := NewMapper(1000, 1000, 600, 400)
	r, err := m.NormalizedRectToSurface(R(0.25, 0.25, 0.5, 0.5))
	require.NoError(t, err)
	assert.True(t, r.ApproxEqual(R(200, 100, 200, 200), 1e-9), "rect %+v", r)
}

func TestRectContainsEdges(t *testing.T) {
	r := R(1, 1, 2, 2)
	assert.True(t, r.Contains(Pt(1, 1)))
	assert.True(t, r.Contains(Pt(3, 3)))
	assert.False(t, r.Contains(Pt(3.01, 2)))
	assert.Equal(t, Pt(2, 2), r.Center())
}
