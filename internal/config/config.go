package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/example/cropdesk/internal/crop"
	"github.com/example/cropdesk/internal/interact"
	"github.com/example/cropdesk/internal/surface"
	"github.com/example/cropdesk/internal/theme"
)

// Crop holds the [crop] section.
type Crop struct {
	Mode            string
	HandleTolerance float64
	PanSensitivity  float64
	WheelStep       float64
}

// Notify holds notification settings.
type Notify struct {
	Export bool
	Copy   bool
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	SaveDir string
	Format  string
	Quality int
	Crop    Crop
	Notify  Notify
	Themes  map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:  "", // Empty falls back to env, then the built-in theme
		Themes: make(map[string]*theme.Theme),
	}
}

// ApplyEnv overrides values from CROPDESK_THEME and CROPDESK_SAVE_DIR.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("CROPDESK_THEME")); v != "" {
		c.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv("CROPDESK_SAVE_DIR")); v != "" {
		c.SaveDir = v
	}
}

// Tuning returns the interaction constants with configured overrides.
func (c *Config) Tuning() interact.Tuning {
	t := interact.DefaultTuning()
	if c.Crop.HandleTolerance > 0 {
		t.HandleTolerance = c.Crop.HandleTolerance
	}
	if c.Crop.PanSensitivity > 0 {
		t.PanSensitivity = c.Crop.PanSensitivity
	}
	if c.Crop.WheelStep > 0 {
		t.WheelStep = c.Crop.WheelStep
	}
	return t
}

// Mode returns the configured initial crop mode, quadrants when unset.
func (c *Config) Mode() (crop.Mode, error) {
	if c.Crop.Mode == "" {
		return crop.ModeQuadrants, nil
	}
	return crop.ParseMode(c.Crop.Mode)
}

// OutputFormat returns the configured export format and quality.
func (c *Config) OutputFormat() (surface.Format, int, error) {
	f, err := surface.ParseFormat(c.Format)
	if err != nil {
		return "", 0, err
	}
	q := c.Quality
	if q <= 0 || q > 100 {
		q = surface.DefaultQuality
	}
	return f, q, nil
}

// ResolveTheme returns the named theme, preferring [theme.name] sections of
// this config over the loader's search path.
func (c *Config) ResolveTheme(l *theme.Loader) (*theme.Theme, error) {
	if t, ok := c.Themes[c.Theme]; ok {
		return t, nil
	}
	return l.Load(c.Theme)
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.Format != "" {
		fmt.Fprintf(&sb, "format = %s\n", c.Format)
	}
	if c.Quality != 0 {
		fmt.Fprintf(&sb, "quality = %d\n", c.Quality)
	}
	sb.WriteString("\n")

	sb.WriteString("[crop]\n")
	if c.Crop.Mode != "" {
		fmt.Fprintf(&sb, "mode = %s\n", c.Crop.Mode)
	}
	if c.Crop.HandleTolerance != 0 {
		fmt.Fprintf(&sb, "handle_tolerance = %g\n", c.Crop.HandleTolerance)
	}
	if c.Crop.PanSensitivity != 0 {
		fmt.Fprintf(&sb, "pan_sensitivity = %g\n", c.Crop.PanSensitivity)
	}
	if c.Crop.WheelStep != 0 {
		fmt.Fprintf(&sb, "wheel_step = %g\n", c.Crop.WheelStep)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range t.Colors() {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, theme.Hex(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
