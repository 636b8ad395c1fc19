// Package appstate runs the interactive crop window.
package appstate

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/cropdesk/internal/crop"
	"github.com/example/cropdesk/internal/notify"
	"github.com/example/cropdesk/internal/render"
	"github.com/example/cropdesk/internal/session"
	"github.com/example/cropdesk/internal/surface"
	"github.com/example/cropdesk/internal/theme"
)

const (
	maxInitialWidth  = 1600
	maxInitialHeight = 1000
	emptyWidth       = 960
	emptyHeight      = 640
)

// AppState holds the configuration of the crop window.
type AppState struct {
	Session *session.Session
	Title   string
	Mode    *crop.Mode

	logger      *slog.Logger
	theme       *theme.Theme
	notifier    *notify.Notifier
	resultsRoot string
	clipWrite   func(image.Image) error
	clipRead    func() (image.Image, error)
	capture     func() (surface.Source, error)
	shadow      *render.Cache

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithSession sets the session edited by the window.
func WithSession(s *session.Session) Option { return func(a *AppState) { a.Session = s } }

// WithTitle sets the window title.
func WithTitle(t string) Option { return func(a *AppState) { a.Title = t } }

// WithMode activates a crop mode when the window opens.
func WithMode(m crop.Mode) Option { return func(a *AppState) { a.Mode = &m } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(a *AppState) { a.logger = l } }

// WithTheme sets the window colors.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.theme = t } }

// WithNotifier reports saves and copies. Result paths are relative to root.
func WithNotifier(n *notify.Notifier, root string) Option {
	return func(a *AppState) {
		a.notifier = n
		a.resultsRoot = root
	}
}

// WithClipboard sets the clipboard used by copy and paste.
func WithClipboard(write func(image.Image) error, read func() (image.Image, error)) Option {
	return func(a *AppState) {
		a.clipWrite = write
		a.clipRead = read
	}
}

// WithCapture sets the screen grabber used by the capture shortcut.
func WithCapture(fn func() (surface.Source, error)) Option {
	return func(a *AppState) { a.capture = fn }
}

// WithShadow sets the drop shadow drawn under the image. Nil disables it.
func WithShadow(s *render.Shadow) Option {
	return func(a *AppState) {
		a.shadow = nil
		if s != nil {
			a.shadow = render.NewCache(*s)
		}
	}
}

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		Title:  "CropDesk",
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		theme:  theme.Default(),
		shadow: render.NewCache(render.DefaultShadow()),
	}
	for _, o := range opts {
		o(a)
	}
	if a.Session == nil {
		a.Session = session.New(session.WithLogger(a.logger), session.WithTheme(a.theme))
	}
	return a
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run opens the window and blocks until it is closed.
func (a *AppState) Run() {
	driver.Main(a.main)
}

func (a *AppState) newEditor() *editor {
	ed := newEditor(a.Session, a.logger)
	ed.notifier = a.notifier
	ed.root = a.resultsRoot
	ed.writeClipboard = a.clipWrite
	ed.readClipboard = a.clipRead
	ed.captureScreen = a.capture
	return ed
}

// initialSize fits the loaded image, plus the shortcut bar, inside the
// maximum initial window size.
func (a *AppState) initialSize() (int, int) {
	src := a.Session.Source()
	if src == nil {
		return emptyWidth, emptyHeight + bottomHeight
	}
	w, h := src.Dimensions()
	scale := min(1, float64(maxInitialWidth)/float64(w), float64(maxInitialHeight)/float64(h))
	return max(int(float64(w)*scale), 320), max(int(float64(h)*scale), 200) + bottomHeight
}

func (a *AppState) paintState(ed *editor, width, height int) paintState {
	st := paintState{
		width:        width,
		height:       height,
		background:   a.Session.Background(),
		styles:       a.Session.Styles(),
		shadow:       a.shadow,
		theme:        a.theme,
		shortcuts:    append([]Shortcut(nil), ed.shortcuts...),
		hover:        ed.hover,
		message:      ed.message,
		messageUntil: ed.messageUntil,
	}
	if src := a.Session.Source(); src != nil {
		f, err := a.Session.Frame()
		if err != nil {
			a.logger.Debug("frame", "err", err)
			return st
		}
		st.hasImage = true
		st.frame = f
		st.src = src.Handle()
		st.status = status(a.Session)
	}
	return st
}

func status(s *session.Session) string {
	m := s.Model()
	if m == nil || !m.Enabled() {
		return "crop off"
	}
	if m.Mode() == crop.ModeQuadrants {
		return fmt.Sprintf("quadrants %.0f%%", m.Quadrants().Scale*100)
	}
	r := m.FreeRect()
	return fmt.Sprintf("free %.0f%% x %.0f%%", r.W*100, r.H*100)
}

func (a *AppState) main(s screen.Screen) {
	width, height := a.initialSize()
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	ed := a.newEditor()
	ed.repaintLater = func(d time.Duration) {
		time.AfterFunc(d, func() { w.Send(paint.Event{}) })
	}
	a.Session.Resize(width, height-bottomHeight)
	ed.layout(width, height)
	if a.Mode != nil && a.Session.Loaded() {
		ed.activate(*a.Mode)
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		repaint := false
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
			if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff {
				repaint = ed.focusLost()
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			a.Session.Resize(width, max(height-bottomHeight, 0))
			ed.layout(width, height)
			repaint = true
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := a.paintState(ed, width, height)
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			repaint = ed.handleMouse(e, height-bottomHeight)
		case key.Event:
			repaint = ed.handleKey(e)
		case error:
			a.logger.Error("window", "err", e)
		}
		if ed.quit {
			stopPaint()
			return
		}
		if repaint {
			w.Send(paint.Event{})
		}
	}
}
