package appstate

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/cropdesk/internal/crop"
	"github.com/example/cropdesk/internal/geom"
	"github.com/example/cropdesk/internal/history"
	"github.com/example/cropdesk/internal/interact"
	"github.com/example/cropdesk/internal/session"
	"github.com/example/cropdesk/internal/surface"
)

type countingPersister struct {
	calls int
	err   error
}

func (p *countingPersister) Persist(_ context.Context, images []surface.Encoded, _ []string) (history.Record, error) {
	if p.err != nil {
		return history.Record{}, p.err
	}
	p.calls++
	paths := make([]string, len(images))
	for i := range paths {
		paths[i] = "history/results/x.jpg"
	}
	return history.Record{ID: "r", LocalResultPaths: paths}, nil
}

var clock = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestEditor(t *testing.T, opts ...session.Option) *editor {
	t.Helper()
	sess := session.New(opts...)
	sess.Resize(200, 200)
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	sess.Load(surface.FromImage(img, "white"))
	ed := newEditor(sess, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ed.now = func() time.Time { return clock }
	ed.layout(200, 200+bottomHeight)
	return ed
}

func press(r rune, code key.Code, mods key.Modifiers) key.Event {
	return key.Event{Rune: r, Code: code, Modifiers: mods, Direction: key.DirPress}
}

func TestKeyBindings(t *testing.T) {
	ed := newTestEditor(t)
	m := ed.sess.Model()

	assert.True(t, ed.handleKey(press('g', key.CodeG, 0)))
	assert.True(t, m.Enabled())
	assert.Equal(t, crop.ModeQuadrants, m.Mode())
	assert.Equal(t, "quadrants crop", ed.message)

	assert.True(t, ed.handleKey(press('R', key.CodeR, key.ModShift)))
	assert.Equal(t, crop.ModeFree, m.Mode())

	assert.True(t, ed.handleKey(press(-1, key.CodeEscape, 0)))
	assert.False(t, m.Enabled())

	assert.False(t, ed.handleKey(press('z', key.CodeZ, 0)))
	assert.False(t, ed.handleKey(key.Event{Rune: 'q', Code: key.CodeQ, Direction: key.DirRelease}))
	assert.False(t, ed.quit)

	assert.True(t, ed.handleKey(press('q', key.CodeQ, 0)))
	assert.True(t, ed.quit)
}

func TestCtrlShortcutByCode(t *testing.T) {
	ed := newTestEditor(t)
	var copied image.Image
	ed.writeClipboard = func(img image.Image) error {
		copied = img
		return nil
	}
	ed.trigger("free")

	assert.True(t, ed.handleKey(press(-1, key.CodeC, key.ModControl)))
	require.NotNil(t, copied)
	assert.Equal(t, image.Rect(0, 0, 100, 100), copied.Bounds())
	r, g, b, _ := copied.At(10, 10).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
	assert.Equal(t, "free crop copied to clipboard", ed.message)
}

func TestMouseDragResizesFreeRect(t *testing.T) {
	ed := newTestEditor(t)
	ed.trigger("free")
	barTop := 200

	assert.True(t, ed.handleMouse(mouse.Event{X: 150, Y: 150, Button: mouse.ButtonLeft, Direction: mouse.DirPress}, barTop))
	assert.Equal(t, interact.Resizing, ed.sess.Phase())
	assert.True(t, ed.handleMouse(mouse.Event{X: 180, Y: 120, Direction: mouse.DirNone}, barTop))
	assert.True(t, ed.handleMouse(mouse.Event{X: 180, Y: 120, Button: mouse.ButtonLeft, Direction: mouse.DirRelease}, barTop))
	assert.Equal(t, interact.Idle, ed.sess.Phase())

	assert.True(t, ed.sess.Model().FreeRect().ApproxEqual(geom.R(0.25, 0.25, 0.65, 0.35), 1e-9))
}

func TestModeKeyDuringDragDropsGesture(t *testing.T) {
	ed := newTestEditor(t)
	ed.trigger("quadrants")
	barTop := 200

	ed.handleMouse(mouse.Event{X: 100, Y: 100, Button: mouse.ButtonLeft, Direction: mouse.DirPress}, barTop)
	require.Equal(t, interact.Moving, ed.sess.Phase())

	ed.trigger("free")
	assert.Equal(t, interact.Idle, ed.sess.Phase())
	ed.handleMouse(mouse.Event{X: 101, Y: 100, Direction: mouse.DirNone}, barTop)
	assert.Equal(t, crop.DefaultFreeRect(), ed.sess.Model().FreeRect())
}

func TestWheelZoomsQuadrants(t *testing.T) {
	ed := newTestEditor(t)
	ed.trigger("quadrants")

	assert.True(t, ed.handleMouse(mouse.Event{X: 10, Y: 10, Button: mouse.ButtonWheelDown, Direction: mouse.DirStep}, 200))
	assert.InDelta(t, 0.93, ed.sess.Model().Quadrants().Scale, 1e-9)
	assert.True(t, ed.handleMouse(mouse.Event{X: 10, Y: 210, Button: mouse.ButtonWheelUp, Direction: mouse.DirStep}, 200))
	assert.InDelta(t, 0.95, ed.sess.Model().Quadrants().Scale, 1e-9)
}

func TestBarClickTriggersAction(t *testing.T) {
	ed := newTestEditor(t)
	r := ed.shortcuts[0].Rect()
	require.Equal(t, "quadrants", ed.shortcuts[0].Action)
	center := r.Min.Add(r.Size().Div(2))

	assert.True(t, ed.handleMouse(mouse.Event{X: float32(center.X), Y: float32(center.Y), Direction: mouse.DirNone}, 200))
	assert.Equal(t, 0, ed.hover)
	assert.False(t, ed.sess.Model().Enabled())

	assert.True(t, ed.handleMouse(mouse.Event{X: float32(center.X), Y: float32(center.Y), Button: mouse.ButtonLeft, Direction: mouse.DirPress}, 200))
	assert.True(t, ed.sess.Model().Enabled())

	assert.True(t, ed.handleMouse(mouse.Event{X: 10, Y: 10, Direction: mouse.DirNone}, 200))
	assert.Equal(t, -1, ed.hover)
}

func TestFocusLostCancelsGesture(t *testing.T) {
	ed := newTestEditor(t)
	ed.trigger("quadrants")
	assert.False(t, ed.focusLost())

	ed.handleMouse(mouse.Event{X: 100, Y: 100, Button: mouse.ButtonLeft, Direction: mouse.DirPress}, 200)
	require.Equal(t, interact.Moving, ed.sess.Phase())
	assert.True(t, ed.focusLost())
	assert.Equal(t, interact.Idle, ed.sess.Phase())
}

func TestSave(t *testing.T) {
	p := &countingPersister{}
	ed := newTestEditor(t, session.WithPersister(p))

	ed.trigger("save")
	assert.Equal(t, "nothing to save: press G or R to crop", ed.message)
	assert.Zero(t, p.calls)

	ed.trigger("quadrants")
	ed.trigger("save")
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "saved 4 crop(s)", ed.message)

	p.err = errors.New("read-only")
	ed.trigger("save")
	assert.Contains(t, ed.message, "save failed")
	assert.Contains(t, ed.message, "read-only")
	assert.True(t, ed.sess.Model().Enabled())
}

func TestMessageExpiresAndClicksDismiss(t *testing.T) {
	ed := newTestEditor(t)
	var scheduled []time.Duration
	ed.repaintLater = func(d time.Duration) { scheduled = append(scheduled, d) }

	ed.trigger("quadrants")
	assert.True(t, ed.messageVisible())
	assert.Equal(t, []time.Duration{messageDuration}, scheduled)

	ed.now = func() time.Time { return clock.Add(messageDuration) }
	assert.False(t, ed.messageVisible())

	ed.now = func() time.Time { return clock }
	ed.handleMouse(mouse.Event{X: 5, Y: 5, Button: mouse.ButtonRight, Direction: mouse.DirPress}, 200)
	assert.False(t, ed.messageVisible())
}

func TestPasteAndCapture(t *testing.T) {
	ed := newTestEditor(t)
	ed.trigger("quadrants")

	ed.readClipboard = func() (image.Image, error) { return image.NewRGBA(image.Rect(0, 0, 50, 40)), nil }
	ed.trigger("paste")
	w, h := ed.sess.Source().Dimensions()
	assert.Equal(t, 50, w)
	assert.Equal(t, 40, h)
	assert.False(t, ed.sess.Model().Enabled())

	ed.captureScreen = func() (surface.Source, error) { return nil, errors.New("no display") }
	ed.trigger("capture")
	assert.Equal(t, "capture failed: no display", ed.message)

	ed.captureScreen = func() (surface.Source, error) {
		return surface.FromImage(image.NewRGBA(image.Rect(0, 0, 30, 30)), "screen"), nil
	}
	ed.trigger("capture")
	assert.Equal(t, "captured screen", ed.message)
	assert.Equal(t, "screen", ed.sess.Source().Name())
}

func TestEmptySessionIgnoresPointer(t *testing.T) {
	ed := newEditor(session.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.False(t, ed.handleMouse(mouse.Event{X: 1, Y: 1, Button: mouse.ButtonLeft, Direction: mouse.DirPress}, 100))
	ed.trigger("free")
	assert.Equal(t, "load an image first (^V paste, ^N capture)", ed.message)
	ed.trigger("copy")
	assert.Equal(t, "nothing to copy: press G or R to crop", ed.message)
}

func TestPointerEvent(t *testing.T) {
	cases := []struct {
		in   mouse.Event
		want interact.Event
	}{
		{mouse.Event{X: 3, Y: 4, Button: mouse.ButtonLeft, Direction: mouse.DirPress}, interact.PointerDown{X: 3, Y: 4}},
		{mouse.Event{X: 3, Y: 4, Direction: mouse.DirNone}, interact.PointerMove{X: 3, Y: 4}},
		{mouse.Event{Button: mouse.ButtonLeft, Direction: mouse.DirRelease}, interact.PointerUp{}},
		{mouse.Event{Button: mouse.ButtonWheelUp, Direction: mouse.DirStep}, interact.Wheel{DeltaY: -1}},
		{mouse.Event{Button: mouse.ButtonWheelDown, Direction: mouse.DirStep}, interact.Wheel{DeltaY: 1}},
	}
	for _, c := range cases {
		got, ok := pointerEvent(c.in)
		assert.True(t, ok)
		assert.Equal(t, c.want, got)
	}
	_, ok := pointerEvent(mouse.Event{Button: mouse.ButtonRight, Direction: mouse.DirPress})
	assert.False(t, ok)
}

func TestStatus(t *testing.T) {
	ed := newTestEditor(t)
	assert.Equal(t, "crop off", status(ed.sess))
	ed.trigger("quadrants")
	assert.Equal(t, "quadrants 95%", status(ed.sess))
	ed.trigger("free")
	assert.Equal(t, "free 50% x 50%", status(ed.sess))
}
