// Package export turns the active crop regions into encoded images.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"

	"github.com/example/cropdesk/internal/crop"
	"github.com/example/cropdesk/internal/surface"
)

var (
	// ErrInvalidRegion reports a pixel rectangle with no area. Model
	// invariants make it unreachable in normal use.
	ErrInvalidRegion = errors.New("export: invalid region")
	// ErrExportFailed wraps extractor and persistence failures.
	ErrExportFailed = errors.New("export failed")
	// ErrNothingToExport is returned when the crop overlay is disabled.
	ErrNothingToExport = errors.New("export: crop is not active")
)

// Region is a crop rectangle in source pixels.
type Region struct {
	Index int
	Label string
	Px    int
	Py    int
	Pw    int
	Ph    int
}

// Rect returns r as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Px, r.Py, r.Px+r.Pw, r.Py+r.Ph)
}

// PixelRegions converts the active crop regions to source pixels in export
// order: top-left, top-right, bottom-left, bottom-right for quadrants, or
// the single free rectangle.
func PixelRegions(model *crop.Model, imgW, imgH int) []Region {
	if !model.Enabled() {
		return nil
	}
	w, h := float64(imgW), float64(imgH)
	if model.Mode() == crop.ModeFree {
		r := model.FreeRect()
		return []Region{pixelRegion(0, "free", r.X*w, r.Y*h, r.W*w, r.H*h)}
	}
	cells := model.Cells()
	out := make([]Region, 0, len(cells))
	for i, c := range cells {
		out = append(out, pixelRegion(i, c.Position.String(),
			c.Center.X*w-c.HalfW*w, c.Center.Y*h-c.HalfH*h,
			c.HalfW*w*2, c.HalfH*h*2))
	}
	return out
}

func pixelRegion(i int, label string, x, y, w, h float64) Region {
	return Region{
		Index: i,
		Label: label,
		Px:    int(math.Round(x)),
		Py:    int(math.Round(y)),
		Pw:    int(math.Round(w)),
		Ph:    int(math.Round(h)),
	}
}

// Result is one exported region.
type Result struct {
	Region  Region
	Encoded surface.Encoded
}

// Exporter extracts every active region through a surface.Extractor.
type Exporter struct {
	extractor surface.Extractor
	logger    *slog.Logger
}

// New returns an Exporter. A nil logger discards output.
func New(x surface.Extractor, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Exporter{extractor: x, logger: logger}
}

// Export extracts the regions of model from src in order. All regions are
// validated before the first extract call.
func (e *Exporter) Export(ctx context.Context, model *crop.Model, src surface.Source) ([]Result, error) {
	w, h := src.Dimensions()
	regions := PixelRegions(model, w, h)
	if len(regions) == 0 {
		return nil, ErrNothingToExport
	}
	for _, r := range regions {
		if r.Pw <= 0 || r.Ph <= 0 {
			return nil, fmt.Errorf("%w: %s is %dx%d", ErrInvalidRegion, r.Label, r.Pw, r.Ph)
		}
	}

	out := make([]Result, 0, len(regions))
	for _, r := range regions {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
		}
		enc, err := e.extractor.ExtractRegion(src.Handle(), r.Px, r.Py, r.Pw, r.Ph)
		if err != nil {
			e.logger.Error("extract region failed", "region", r.Label, "rect", r.Rect(), "err", err)
			return nil, fmt.Errorf("%w: %s region: %w", ErrExportFailed, r.Label, err)
		}
		e.logger.Debug("extracted region", "region", r.Label, "rect", r.Rect(), "bytes", len(enc.Data))
		out = append(out, Result{Region: r, Encoded: enc})
	}
	return out, nil
}

// Encoded returns just the encoded images of rs, in order.
func Encoded(rs []Result) []surface.Encoded {
	out := make([]surface.Encoded, len(rs))
	for i, r := range rs {
		out[i] = r.Encoded
	}
	return out
}
