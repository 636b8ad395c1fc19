package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/cropdesk/internal/clipboard"
	"github.com/example/cropdesk/internal/session"
	"github.com/example/cropdesk/internal/surface"
	"github.com/example/cropdesk/internal/surface/ggsurface"
	"github.com/example/cropdesk/internal/surface/raster"
)

// engines builds the region extractor for each -engine value. The vips
// engine registers itself when built with the vips tag.
var engines = map[string]func(surface.Format, int) surface.Extractor{
	"raster": func(f surface.Format, q int) surface.Extractor {
		c := raster.NewSize(1, 1)
		c.Format, c.Quality = f, q
		return c
	},
	"gg": func(f surface.Format, q int) surface.Extractor {
		return ggsurface.Extractor{Format: f, Quality: q}
	},
}

func engineNames() string {
	names := make([]string, 0, len(engines))
	for n := range engines {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

type exportCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	fromClipboard bool
	format        string
	quality       int
	out           string
	engine        string
	geometry      geometryFlags
}

func (e *exportCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func (e *exportCmd) Template() string {
	return "export.txt"
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cmd := &exportCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	format, quality := "", 0
	mode := ""
	if r != nil && r.config != nil {
		format, quality = r.config.Format, r.config.Quality
		mode = r.config.Crop.Mode
	}
	fs.StringVar(&cmd.file, "file", "", "image to crop")
	fs.BoolVar(&cmd.fromClipboard, "from-clipboard", false, "crop the image on the clipboard")
	fs.StringVar(&cmd.format, "format", format, "output format: jpeg, png or webp")
	fs.IntVar(&cmd.quality, "quality", quality, "JPEG/WebP quality 1-100 (0 uses the default)")
	fs.StringVar(&cmd.out, "out", "", "write crops to this directory instead of the history")
	fs.StringVar(&cmd.engine, "engine", "raster", "region extractor: "+engineNames())
	cmd.geometry.bind(fs, mode)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cmd.file == "" && fs.NArg() > 0 {
		cmd.file = fs.Arg(0)
	}
	if cmd.file == "" && !cmd.fromClipboard {
		return nil, &UsageError{of: cmd}
	}
	if cmd.file != "" && cmd.fromClipboard {
		return nil, fmt.Errorf("-from-clipboard cannot be combined with an input file")
	}
	return cmd, nil
}

func (e *exportCmd) extractor() (surface.Extractor, surface.Format, error) {
	f, err := surface.ParseFormat(e.format)
	if err != nil {
		return nil, "", err
	}
	q := e.quality
	if q <= 0 || q > 100 {
		q = surface.DefaultQuality
	}
	build, ok := engines[e.engine]
	if !ok {
		return nil, "", fmt.Errorf("unknown engine %q (available: %s)", e.engine, engineNames())
	}
	return build(f, q), f, nil
}

// load opens the input into a new session configured from the root.
func (e *exportCmd) load(opts ...session.Option) (*session.Session, error) {
	base := []session.Option{
		session.WithLogger(e.logger),
		session.WithTheme(e.activeTheme),
	}
	if e.config != nil {
		base = append(base, session.WithTuning(e.config.Tuning()))
	}
	sess := session.New(append(base, opts...)...)
	if e.fromClipboard {
		img, err := clipboardReadFn()
		if err != nil {
			return nil, fmt.Errorf("failed to read clipboard: %w", err)
		}
		sess.Load(surface.FromImage(img, "clipboard"))
	} else if err := sess.LoadFile(e.file); err != nil {
		return nil, err
	}
	if err := e.geometry.apply(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (e *exportCmd) Run() error {
	x, format, err := e.extractor()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if e.out == "" {
		store := e.store()
		sess, err := e.load(session.WithExtractor(x), session.WithPersister(store))
		if err != nil {
			return err
		}
		rec, _, err := sess.Save(ctx)
		if err != nil {
			return fmt.Errorf("failed to save crops: %w", err)
		}
		for _, p := range rec.LocalResultPaths {
			fmt.Fprintln(e.stdout, filepath.Join(store.Root(), filepath.FromSlash(p)))
		}
		e.notifier.Export(store.Root(), rec.LocalResultPaths)
		return nil
	}

	sess, err := e.load(session.WithExtractor(x))
	if err != nil {
		return err
	}
	res, err := sess.Export(ctx)
	if err != nil {
		return fmt.Errorf("failed to export crops: %w", err)
	}
	if err := os.MkdirAll(e.out, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	stem := "clipboard"
	if e.file != "" {
		stem = strings.TrimSuffix(filepath.Base(e.file), filepath.Ext(e.file))
	}
	paths := make([]string, 0, len(res))
	for _, r := range res {
		p := filepath.Join(e.out, fmt.Sprintf("%s_%s%s", stem, r.Region.Label, format.Ext()))
		if err := os.WriteFile(p, r.Encoded.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", p, err)
		}
		fmt.Fprintln(e.stdout, p)
		paths = append(paths, p)
	}
	e.notifier.Export("", paths)
	return nil
}

var clipboardReadFn = clipboard.ReadImage
