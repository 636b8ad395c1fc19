package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/cropdesk/internal/crop"
	"github.com/example/cropdesk/internal/geom"
	"github.com/example/cropdesk/internal/session"
)

// geometryFlags describes a crop from the command line. Values are
// normalized to the image size.
type geometryFlags struct {
	fallback string

	mode    string
	scale   float64
	offsetX float64
	offsetY float64
	rect    string
}

// bind registers the geometry flags. Without -mode the crop is free when
// -rect is given and fallback otherwise.
func (g *geometryFlags) bind(fs *flag.FlagSet, fallback string) {
	if fallback == "" {
		fallback = "quadrants"
	}
	g.fallback = fallback
	fs.StringVar(&g.mode, "mode", "", fmt.Sprintf("crop mode: quadrants or free (default %s, or free with -rect)", fallback))
	fs.Float64Var(&g.scale, "scale", crop.DefaultQuadrantScale, "quadrant cell scale (0.5 to 1.2)")
	fs.Float64Var(&g.offsetX, "offset-x", 0, "quadrant pan offset along x")
	fs.Float64Var(&g.offsetY, "offset-y", 0, "quadrant pan offset along y")
	fs.StringVar(&g.rect, "rect", "", "free rectangle as x,y,w,h in 0..1")
}

// parseRect reads "x,y,w,h".
func parseRect(s string) (geom.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Rect{}, fmt.Errorf("invalid rect %q: want x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Rect{}, fmt.Errorf("invalid rect %q: %w", s, err)
		}
		v[i] = f
	}
	return geom.R(v[0], v[1], v[2], v[3]), nil
}

// apply activates the crop on a loaded session.
func (g *geometryFlags) apply(sess *session.Session) error {
	mode, err := crop.ParseMode(g.modeName())
	if err != nil {
		return err
	}
	if err := sess.Activate(mode); err != nil {
		return err
	}
	m := sess.Model()
	switch mode {
	case crop.ModeQuadrants:
		m.SetQuadrantScale(g.scale)
		m.AdjustQuadrantOffset(g.offsetX, g.offsetY)
	case crop.ModeFree:
		if g.rect == "" {
			return nil
		}
		r, err := parseRect(g.rect)
		if err != nil {
			return err
		}
		m.SetFreeRect(r)
	}
	return nil
}

func (g *geometryFlags) modeName() string {
	switch {
	case g.mode != "":
		return g.mode
	case g.rect != "":
		return "free"
	case g.fallback != "":
		return g.fallback
	}
	return "quadrants"
}
