package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/example/cropdesk/internal/session"
	"github.com/example/cropdesk/internal/surface/ggsurface"
)

// previewCmd renders the image with its crop overlay to a PNG without
// opening a window.
type previewCmd struct {
	*root
	fs       *flag.FlagSet
	file     string
	output   string
	width    int
	height   int
	geometry geometryFlags
}

func (p *previewCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func (p *previewCmd) Template() string {
	return "preview.txt"
}

func parsePreviewCmd(args []string, r *root) (*previewCmd, error) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	c := &previewCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.file, "file", "", "image file to open")
	fs.StringVar(&c.output, "output", "preview.png", "PNG file to write")
	fs.IntVar(&c.width, "width", 0, "surface width in pixels (default: image width)")
	fs.IntVar(&c.height, "height", 0, "surface height in pixels (default: image height)")
	c.geometry.bind(fs, "quadrants")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.file == "" && fs.NArg() > 0 {
		c.file = fs.Arg(0)
	}
	if c.file == "" {
		return nil, &UsageError{of: c}
	}
	if c.width < 0 || c.height < 0 {
		return nil, fmt.Errorf("-width and -height must not be negative")
	}
	return c, nil
}

func (p *previewCmd) Run() error {
	sess := session.New(session.WithLogger(p.logger), session.WithTheme(p.activeTheme))
	if err := sess.LoadFile(p.file); err != nil {
		return err
	}
	if err := p.geometry.apply(sess); err != nil {
		return err
	}
	w, h := sess.Source().Dimensions()
	if p.width > 0 {
		w = p.width
	}
	if p.height > 0 {
		h = p.height
	}

	canvas := ggsurface.New(w, h)
	defer canvas.Close()
	canvas.Clear(sess.Background())
	if err := sess.Render(canvas); err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}

	f, err := os.Create(p.output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", p.output, err)
	}
	if err := canvas.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", p.output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(p.stdout, p.output)
	return nil
}
