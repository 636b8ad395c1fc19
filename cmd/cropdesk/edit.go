package main

import (
	"flag"
	"fmt"

	"github.com/example/cropdesk/internal/appstate"
	"github.com/example/cropdesk/internal/capture"
	"github.com/example/cropdesk/internal/clipboard"
	"github.com/example/cropdesk/internal/crop"
	"github.com/example/cropdesk/internal/session"
	"github.com/example/cropdesk/internal/surface"
)

var (
	captureSourceFn  = capture.Source
	clipboardWriteFn = clipboard.WriteImage
)

type editCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	fromClipboard bool
	capture       string
	mode          string
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func (e *editCmd) Template() string {
	return "edit.txt"
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	cmd := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.StringVar(&cmd.file, "file", "", "image file to open")
	fs.BoolVar(&cmd.fromClipboard, "from-clipboard", false, "open the image on the clipboard")
	fs.StringVar(&cmd.capture, "capture", "", "open a screen grab: \"screen\" or a monitor index or name")
	fs.StringVar(&cmd.mode, "mode", "", "activate a crop mode on open: quadrants or free")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cmd.file == "" && fs.NArg() > 0 {
		cmd.file = fs.Arg(0)
	}
	sources := 0
	for _, set := range []bool{cmd.file != "", cmd.fromClipboard, cmd.capture != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return nil, fmt.Errorf("choose only one of -file, -from-clipboard and -capture")
	}
	return cmd, nil
}

// selector maps the -capture value onto capture.Source's monitor selector.
func (e *editCmd) selector() string {
	if e.capture == "screen" {
		return ""
	}
	return e.capture
}

func (e *editCmd) session() (*session.Session, error) {
	opts := []session.Option{
		session.WithLogger(e.logger),
		session.WithTheme(e.activeTheme),
		session.WithPersister(e.store()),
	}
	if e.config != nil {
		opts = append(opts, session.WithTuning(e.config.Tuning()))
		if f, q, err := e.config.OutputFormat(); err == nil {
			opts = append(opts, session.WithExtractor(engines["raster"](f, q)))
		} else {
			e.logger.Warn("ignoring configured format", "err", err)
		}
	}
	sess := session.New(opts...)
	switch {
	case e.file != "":
		if err := sess.LoadFile(e.file); err != nil {
			return nil, err
		}
	case e.fromClipboard:
		img, err := clipboardReadFn()
		if err != nil {
			return nil, fmt.Errorf("failed to read clipboard: %w", err)
		}
		sess.Load(surface.FromImage(img, "clipboard"))
	case e.capture != "":
		src, err := captureSourceFn(e.selector())
		if err != nil {
			return nil, fmt.Errorf("failed to capture screen: %w", err)
		}
		sess.Load(src)
	}
	return sess, nil
}

func (e *editCmd) appOptions(sess *session.Session) ([]appstate.Option, error) {
	title := "CropDesk"
	if src := sess.Source(); src != nil {
		title = fmt.Sprintf("CropDesk - %s", src.Name())
	}
	opts := []appstate.Option{
		appstate.WithSession(sess),
		appstate.WithTitle(title),
		appstate.WithLogger(e.logger),
		appstate.WithNotifier(e.notifier, e.store().Root()),
		appstate.WithClipboard(clipboardWriteFn, clipboardReadFn),
		appstate.WithCapture(func() (surface.Source, error) { return captureSourceFn("") }),
	}
	if e.activeTheme != nil {
		opts = append(opts, appstate.WithTheme(e.activeTheme))
	}
	if e.mode != "" {
		m, err := crop.ParseMode(e.mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, appstate.WithMode(m))
	}
	return opts, nil
}

func (e *editCmd) Run() error {
	sess, err := e.session()
	if err != nil {
		return err
	}
	opts, err := e.appOptions(sess)
	if err != nil {
		return err
	}
	appstate.New(opts...).Run()
	return nil
}
