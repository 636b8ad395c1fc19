package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"

	"github.com/example/cropdesk/internal/config"
	"github.com/example/cropdesk/internal/history"
	"github.com/example/cropdesk/internal/notify"
	"github.com/example/cropdesk/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	notifier    *notify.Notifier
	config      *config.Config
	logger      *slog.Logger
	stdout      io.Writer
	exportAlert bool
	copyAlert   bool
	themeName   string
	saveDir     string
	verbose     bool
	activeTheme *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
		cfg.ApplyEnv()
	}

	r := &root{
		fs:       flag.NewFlagSet("cropdesk", flag.ExitOnError),
		program:  "cropdesk",
		notifier: notify.New(notify.LoadPreferences()),
		config:   cfg,
		stdout:   os.Stdout,
	}
	r.fs.BoolVar(&r.exportAlert, "notify-export", cfg.Notify.Export, "show a desktop notification after saving crops")
	r.fs.BoolVar(&r.copyAlert, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying a crop")
	// Precedence: CLI > Env > Config > Default. Env was applied by the loader.
	r.fs.StringVar(&r.themeName, "theme", cfg.Theme, "color theme to use (default, dark, high_contrast)")
	r.fs.StringVar(&r.saveDir, "save-dir", cfg.SaveDir, "directory holding the crop history")
	r.fs.BoolVar(&r.verbose, "v", false, "verbose logging")
	r.fs.Usage = usageFunc(r)
	return r
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (r *root) setup() {
	if r.logger == nil {
		r.logger = newLogger(os.Stderr, r.verbose)
		if r.verbose {
			gg.SetLogger(r.logger.With("component", "gg"))
		}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventExport, r.exportAlert)
		r.notifier.Enable(notify.EventCopy, r.copyAlert)
	}
	if r.activeTheme == nil {
		r.activeTheme = r.resolveTheme()
	}
}

func (r *root) resolveTheme() *theme.Theme {
	cfg := r.config
	if cfg == nil {
		cfg = config.New()
	}
	named := *cfg
	named.Theme = r.themeName
	t, err := named.ResolveTheme(theme.NewLoader())
	if err != nil {
		if r.themeName != "" && r.themeName != "default" {
			fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", r.themeName, err)
		}
		return theme.Default()
	}
	return t
}

// store opens the crop history under the configured save directory.
func (r *root) store() *history.Store {
	return history.NewStore(expandHome(r.saveDir), history.WithLogger(r.logger))
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	r.setup()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "export":
		cmd, err = parseExportCmd(subArgs, r)
	case "preview":
		cmd, err = parsePreviewCmd(subArgs, r)
	case "history":
		cmd, err = parseHistoryCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	case "help":
		err = &UsageError{of: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
