package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/cropdesk/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentTheme = nil

			if name, ok := strings.CutPrefix(currentSection, "theme."); ok {
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = name
				cfg.Themes[name] = currentTheme
			}
			continue
		}

		// Key = Value or Key: Value. Colors contain no '=' so '=' wins.
		var key, value string
		var ok bool
		if key, value, ok = strings.Cut(line, "="); !ok {
			if key, value, ok = strings.Cut(line, ":"); !ok {
				continue
			}
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentTheme != nil:
			err = currentTheme.Set(key, value)
		case currentSection == "crop":
			err = setCropField(&cfg.Crop, key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			section := currentSection
			if section == "" {
				section = "root"
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "format":
		cfg.Format = value
	case "quality":
		q, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for key %s: %w", key, err)
		}
		cfg.Quality = q
	}
	return nil
}

func setCropField(c *Crop, key, value string) error {
	k := strings.ToLower(key)
	if k == "mode" {
		c.Mode = value
		return nil
	}
	var dst *float64
	switch k {
	case "handle_tolerance":
		dst = &c.HandleTolerance
	case "pan_sensitivity":
		dst = &c.PanSensitivity
	case "wheel_step":
		dst = &c.WheelStep
	default:
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	*dst = f
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "export":
		n.Export = b
	case "copy":
		n.Copy = b
	}
	return nil
}
