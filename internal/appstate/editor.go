package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/cropdesk/internal/crop"
	"github.com/example/cropdesk/internal/export"
	"github.com/example/cropdesk/internal/geom"
	"github.com/example/cropdesk/internal/interact"
	"github.com/example/cropdesk/internal/notify"
	"github.com/example/cropdesk/internal/session"
	"github.com/example/cropdesk/internal/surface"
	"github.com/example/cropdesk/internal/surface/raster"
)

const (
	messageDuration = 2 * time.Second
	saveTimeout     = 30 * time.Second
)

// KeyShortcut identifies a key combination. Either Rune or Code is set.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// Shift is ignored so upper and lower case letters share a binding.
const modifierMask = key.ModControl | key.ModAlt | key.ModMeta

// editor owns the session on the event goroutine and turns window input
// into session calls. It never touches the screen.
type editor struct {
	sess     *session.Session
	logger   *slog.Logger
	notifier *notify.Notifier
	root     string
	now      func() time.Time

	writeClipboard func(image.Image) error
	readClipboard  func() (image.Image, error)
	captureScreen  func() (surface.Source, error)
	repaintLater   func(time.Duration)

	actions   map[string]func()
	keys      map[KeyShortcut]string
	shortcuts []Shortcut
	hover     int

	message      string
	messageUntil time.Time
	quit         bool
}

func newEditor(sess *session.Session, logger *slog.Logger) *editor {
	ed := &editor{
		sess:   sess,
		logger: logger,
		now:    time.Now,
		hover:  -1,
	}
	ed.register("quadrants", "G:quadrants", shortcutList{{Rune: 'g'}}, func() { ed.activate(crop.ModeQuadrants) })
	ed.register("free", "R:free crop", shortcutList{{Rune: 'r'}}, func() { ed.activate(crop.ModeFree) })
	ed.register("off", "Esc:off", shortcutList{{Code: key.CodeEscape}}, ed.deactivate)
	ed.register("save", "Enter:save", shortcutList{
		{Code: key.CodeReturnEnter},
		{Code: key.CodeKeypadEnter},
		{Rune: 's', Modifiers: key.ModControl},
		{Code: key.CodeS, Modifiers: key.ModControl},
	}, ed.save)
	ed.register("copy", "^C:copy", shortcutList{
		{Rune: 'c', Modifiers: key.ModControl},
		{Code: key.CodeC, Modifiers: key.ModControl},
	}, ed.copy)
	ed.register("paste", "^V:paste", shortcutList{
		{Rune: 'v', Modifiers: key.ModControl},
		{Code: key.CodeV, Modifiers: key.ModControl},
	}, ed.paste)
	ed.register("capture", "^N:capture", shortcutList{
		{Rune: 'n', Modifiers: key.ModControl},
		{Code: key.CodeN, Modifiers: key.ModControl},
	}, ed.capture)
	ed.register("quit", "Q:quit", shortcutList{{Rune: 'q'}}, func() { ed.quit = true })
	return ed
}

func (ed *editor) register(name, label string, keys KeyboardShortcuts, fn func()) {
	if ed.actions == nil {
		ed.actions = map[string]func(){}
		ed.keys = map[KeyShortcut]string{}
	}
	ed.actions[name] = fn
	for _, sc := range keys.KeyboardShortcuts() {
		ed.keys[sc] = name
	}
	ed.shortcuts = append(ed.shortcuts, Shortcut{Label: label, Action: name})
}

func (ed *editor) trigger(name string) {
	if fn, ok := ed.actions[name]; ok {
		ed.logger.Debug("action", "name", name)
		fn()
	}
}

// layout places the shortcut buttons in the bar of a window of the given
// size.
func (ed *editor) layout(width, height int) {
	meas := &font.Drawer{Face: basicfont.Face7x13}
	x := 4
	y := height - bottomHeight + 16
	for i := range ed.shortcuts {
		w := meas.MeasureString(ed.shortcuts[i].Label).Ceil()
		ed.shortcuts[i].rect = image.Rect(x-2, y-14, x+w+2, y+4)
		x += w + 12
	}
}

func (ed *editor) say(format string, args ...any) {
	ed.message = fmt.Sprintf(format, args...)
	ed.messageUntil = ed.now().Add(messageDuration)
	ed.logger.Info(ed.message)
	if ed.repaintLater != nil {
		ed.repaintLater(messageDuration)
	}
}

func (ed *editor) messageVisible() bool {
	return ed.message != "" && ed.now().Before(ed.messageUntil)
}

// handleKey runs the action bound to e and reports whether to repaint.
func (ed *editor) handleKey(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	mods := e.Modifiers & modifierMask
	name, ok := ed.keys[KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: mods}]
	if !ok {
		name, ok = ed.keys[KeyShortcut{Code: e.Code, Modifiers: mods}]
	}
	if !ok {
		return false
	}
	ed.trigger(name)
	return true
}

// handleMouse forwards pointer and wheel input to the session, or to the
// shortcut bar when no gesture is in progress. It reports whether to repaint.
func (ed *editor) handleMouse(e mouse.Event, barTop int) bool {
	repaint := false
	if e.Direction == mouse.DirPress && ed.messageVisible() {
		ed.messageUntil = time.Time{}
		repaint = true
	}
	if ed.sess.Phase() == interact.Idle && int(e.Y) >= barTop && !isWheel(e.Button) {
		return ed.handleBar(e) || repaint
	}
	if ed.hover != -1 {
		ed.hover = -1
		repaint = true
	}
	ev, ok := pointerEvent(e)
	if !ok {
		return repaint
	}
	return ed.dispatch(ev) || repaint
}

func (ed *editor) handleBar(e mouse.Event) bool {
	p := image.Pt(int(e.X), int(e.Y))
	hover := -1
	for i, sc := range ed.shortcuts {
		if p.In(sc.rect) {
			hover = i
			break
		}
	}
	changed := hover != ed.hover
	ed.hover = hover
	if hover >= 0 && e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
		ed.trigger(ed.shortcuts[hover].Action)
		return true
	}
	return changed
}

// focusLost aborts a gesture in progress.
func (ed *editor) focusLost() bool {
	if ed.sess.Phase() == interact.Idle {
		return false
	}
	ed.dispatch(interact.PointerCancel{})
	return true
}

func isWheel(b mouse.Button) bool {
	return b == mouse.ButtonWheelUp || b == mouse.ButtonWheelDown
}

// pointerEvent translates a window mouse event. Wheel up grows the crop.
func pointerEvent(e mouse.Event) (interact.Event, bool) {
	x, y := float64(e.X), float64(e.Y)
	switch {
	case e.Button == mouse.ButtonWheelUp:
		return interact.Wheel{DeltaY: -1}, true
	case e.Button == mouse.ButtonWheelDown:
		return interact.Wheel{DeltaY: 1}, true
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		return interact.PointerDown{X: x, Y: y}, true
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
		return interact.PointerUp{}, true
	case e.Direction == mouse.DirNone:
		return interact.PointerMove{X: x, Y: y}, true
	}
	return nil, false
}

func (ed *editor) dispatch(ev interact.Event) bool {
	before := ed.sess.Phase()
	changed, err := ed.sess.Dispatch(ev)
	if err != nil {
		if !errors.Is(err, geom.ErrNotReady) {
			ed.logger.Warn("dispatch", "err", err)
		}
		return false
	}
	after := ed.sess.Phase()
	return changed || before != after || after != interact.Idle
}

func (ed *editor) activate(m crop.Mode) {
	ed.dispatch(interact.PointerCancel{})
	if err := ed.sess.Activate(m); err != nil {
		ed.say("load an image first (^V paste, ^N capture)")
		return
	}
	ed.say("%s crop", m)
}

func (ed *editor) deactivate() {
	ed.dispatch(interact.PointerCancel{})
	ed.sess.Deactivate()
}

func (ed *editor) save() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	rec, res, err := ed.sess.Save(ctx)
	switch {
	case errors.Is(err, export.ErrNothingToExport), errors.Is(err, session.ErrNoImage):
		ed.say("nothing to save: press G or R to crop")
	case err != nil:
		ed.logger.Error("save", "err", err)
		ed.say("save failed: %v", err)
	default:
		ed.say("saved %d crop(s)", len(res))
		ed.notifier.Export(ed.root, rec.LocalResultPaths)
	}
}

func (ed *editor) copy() {
	src := ed.sess.Source()
	model := ed.sess.Model()
	if src == nil || model == nil || !model.Enabled() {
		ed.say("nothing to copy: press G or R to crop")
		return
	}
	w, h := src.Dimensions()
	regions := export.PixelRegions(model, w, h)
	if len(regions) == 0 || regions[0].Pw <= 0 || regions[0].Ph <= 0 {
		ed.say("nothing to copy")
		return
	}
	img := raster.Crop(src.Handle(), regions[0].Rect())
	if ed.writeClipboard == nil {
		ed.say("clipboard unavailable")
		return
	}
	if err := ed.writeClipboard(img); err != nil {
		ed.logger.Error("copy", "err", err)
		ed.say("copy failed: %v", err)
		return
	}
	ed.say("%s crop copied to clipboard", regions[0].Label)
	ed.notifier.Copy(regions[0].Label+" crop", img)
}

func (ed *editor) paste() {
	if ed.readClipboard == nil {
		ed.say("clipboard unavailable")
		return
	}
	img, err := ed.readClipboard()
	if err != nil {
		ed.say("paste failed: %v", err)
		return
	}
	ed.sess.Load(surface.FromImage(img, "clipboard"))
	ed.say("pasted image")
}

func (ed *editor) capture() {
	if ed.captureScreen == nil {
		ed.say("capture unavailable")
		return
	}
	src, err := ed.captureScreen()
	if err != nil {
		ed.say("capture failed: %v", err)
		return
	}
	ed.sess.Load(src)
	ed.say("captured %s", src.Name())
}
