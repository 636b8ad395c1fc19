// Package session ties one loaded image to its crop model, interaction
// controller and exporters. A Session is driven from a single goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"

	"github.com/example/cropdesk/internal/crop"
	"github.com/example/cropdesk/internal/export"
	"github.com/example/cropdesk/internal/geom"
	"github.com/example/cropdesk/internal/history"
	"github.com/example/cropdesk/internal/interact"
	"github.com/example/cropdesk/internal/overlay"
	"github.com/example/cropdesk/internal/surface"
	"github.com/example/cropdesk/internal/surface/raster"
	"github.com/example/cropdesk/internal/theme"
)

var (
	ErrNoImage         = errors.New("session: no image loaded")
	ErrReentrantRender = errors.New("session: render requested while an event is being handled")
	ErrNoPersister     = errors.New("session: no persistence configured")
)

// Persister stores exported images. history.Store satisfies it.
type Persister interface {
	Persist(ctx context.Context, images []surface.Encoded, inputs []string) (history.Record, error)
}

var _ Persister = (*history.Store)(nil)

// Session is one editing surface.
type Session struct {
	logger     *slog.Logger
	tuning     interact.Tuning
	extractor  surface.Extractor
	persister  Persister
	styles     overlay.Styles
	background color.Color

	src       surface.Source
	inputPath string
	model     *crop.Model
	ctrl      *interact.Controller
	mapper    geom.Mapper
	surfW     int
	surfH     int

	dispatching bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.logger = l } }

// WithTuning sets the interaction constants.
func WithTuning(t interact.Tuning) Option { return func(s *Session) { s.tuning = t } }

// WithExtractor selects the region extractor used by Export.
func WithExtractor(x surface.Extractor) Option { return func(s *Session) { s.extractor = x } }

// WithPersister sets where Save stores exports.
func WithPersister(p Persister) Option { return func(s *Session) { s.persister = p } }

// WithTheme derives overlay styles and the backdrop from t.
func WithTheme(t *theme.Theme) Option {
	return func(s *Session) {
		if t == nil {
			return
		}
		s.styles = overlay.StylesFromTheme(t)
		s.background = t.Background
	}
}

// New creates a session with no image.
func New(opts ...Option) *Session {
	s := &Session{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tuning:     interact.DefaultTuning(),
		extractor:  raster.NewSize(1, 1),
		styles:     overlay.DefaultStyles(),
		background: theme.Default().Background,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load replaces the image. The crop model starts disabled.
func (s *Session) Load(src surface.Source) {
	w, h := src.Dimensions()
	s.src = src
	s.inputPath = ""
	s.model = crop.NewModel(w, h)
	s.mapper = geom.NewMapper(w, h, s.surfW, s.surfH)
	s.ctrl = interact.NewController(s.model, s.mapper, s.tuning)
	s.logger.Info("image loaded", "name", src.Name(), "width", w, "height", h, "min_size", s.model.MinSize())
}

// LoadFile opens path and records it as the input of later saves.
func (s *Session) LoadFile(path string) error {
	src, err := surface.Open(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	s.Load(src)
	s.inputPath = path
	return nil
}

// Loaded reports whether an image is present.
func (s *Session) Loaded() bool { return s.src != nil }

// Source returns the loaded image, or nil.
func (s *Session) Source() surface.Source { return s.src }

// Model returns the crop model, or nil before Load.
func (s *Session) Model() *crop.Model { return s.model }

// Mapper returns the current coordinate mapper.
func (s *Session) Mapper() geom.Mapper { return s.mapper }

// Phase returns the gesture phase.
func (s *Session) Phase() interact.Phase {
	if s.ctrl == nil {
		return interact.Idle
	}
	return s.ctrl.Phase()
}

// Resize records a new surface size. The crop model is untouched.
func (s *Session) Resize(w, h int) {
	s.surfW, s.surfH = w, h
	if s.src == nil {
		return
	}
	s.mapper = s.mapper.WithSurface(w, h)
	s.ctrl.SetMapper(s.mapper)
}

// Activate enables crop mode m with its default geometry.
func (s *Session) Activate(m crop.Mode) error {
	if s.src == nil {
		return ErrNoImage
	}
	s.cancelGesture()
	s.model.Activate(m)
	s.logger.Debug("crop activated", "mode", m)
	return nil
}

// Deactivate hides the crop overlay.
func (s *Session) Deactivate() {
	s.cancelGesture()
	if s.model != nil {
		s.model.Deactivate()
	}
}

// cancelGesture drops a drag in progress so it cannot write its anchor
// snapshot over a mode change.
func (s *Session) cancelGesture() {
	if s.ctrl != nil {
		s.ctrl.Handle(interact.PointerCancel{})
	}
}

// Dispatch feeds one input event to the controller and reports whether the
// crop geometry changed.
func (s *Session) Dispatch(ev interact.Event) (bool, error) {
	if s.src == nil {
		return false, geom.ErrNotReady
	}
	s.dispatching = true
	defer func() { s.dispatching = false }()
	changed, err := s.ctrl.Handle(ev)
	if err != nil {
		return false, err
	}
	if changed {
		s.logger.Debug("crop changed", "event", fmt.Sprintf("%T", ev), "phase", s.ctrl.Phase(), "handle", s.ctrl.ActiveHandle())
	}
	return changed, nil
}

// Frame derives the overlay draw list for the current state.
func (s *Session) Frame() (overlay.Frame, error) {
	if s.src == nil {
		return overlay.Frame{}, ErrNoImage
	}
	f, err := overlay.Present(s.model, s.mapper)
	if err != nil {
		return overlay.Frame{}, err
	}
	return f.WithActive(s.ctrl.ActiveHandle()), nil
}

// Styles returns the overlay strokes in use.
func (s *Session) Styles() overlay.Styles { return s.styles }

// Background returns the backdrop color around the placed image.
func (s *Session) Background() color.Color { return s.background }

// Render draws the image and overlay onto dst. It is the last step of an
// event and fails if called while Dispatch is running.
func (s *Session) Render(dst surface.Surface) error {
	if s.dispatching {
		return ErrReentrantRender
	}
	if s.src == nil {
		return ErrNoImage
	}
	w, h := dst.Measure()
	if w != s.surfW || h != s.surfH {
		s.Resize(w, h)
	}
	f, err := s.Frame()
	if err != nil {
		return err
	}
	overlay.Background(dst, s.background)
	f.Paint(dst, s.src.Handle(), s.styles)
	return nil
}

// Export extracts the active regions. The crop geometry is not changed.
func (s *Session) Export(ctx context.Context) ([]export.Result, error) {
	if s.src == nil {
		return nil, ErrNoImage
	}
	return export.New(s.extractor, s.logger).Export(ctx, s.model, s.src)
}

// Save exports and hands the images to the persister. Any failure after the
// crop was validated is reported as export.ErrExportFailed so the user can
// retry with the same geometry.
func (s *Session) Save(ctx context.Context) (history.Record, []export.Result, error) {
	if s.persister == nil {
		return history.Record{}, nil, ErrNoPersister
	}
	res, err := s.Export(ctx)
	if err != nil {
		return history.Record{}, nil, err
	}
	var inputs []string
	if s.inputPath != "" {
		inputs = []string{s.inputPath}
	}
	rec, err := s.persister.Persist(ctx, export.Encoded(res), inputs)
	if err != nil {
		s.logger.Error("persist failed", "err", err)
		return history.Record{}, res, fmt.Errorf("%w: persist: %w", export.ErrExportFailed, err)
	}
	s.logger.Info("crop saved", "record", rec.ID, "images", len(res))
	return rec, res, nil
}
