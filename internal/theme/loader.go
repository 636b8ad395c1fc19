package theme

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EmbeddedThemes holds the themes shipped with the binary.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS

// Loader handles loading themes from various sources.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader creates a new Loader with standard paths.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "cropdesk", "themes"),
		SystemDir: "/usr/share/cropdesk/themes",
	}
}

// Load attempts to load a theme by name or path.
// Order:
// 1. If it's a file path that exists, load it.
// 2. Check embedded themes.
// 3. Check ConfigDir.
// 4. Check SystemDir.
// An empty name yields Default.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" || strings.EqualFold(name, "default") {
		return Default(), nil
	}

	if _, err := os.Stat(name); err == nil {
		return parseFile(name)
	}

	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}

	if f, err := EmbeddedThemes.Open("defaults/" + filename); err == nil {
		defer f.Close()
		return Parse(f)
	}

	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, filename)
		if _, err := os.Stat(p); err == nil {
			return parseFile(p)
		}
	}

	return nil, fmt.Errorf("theme '%s' not found", name)
}

// Available lists the embedded theme names plus those in ConfigDir.
func (l *Loader) Available() []string {
	seen := map[string]bool{"default": true}
	if entries, err := fs.ReadDir(EmbeddedThemes, "defaults"); err == nil {
		for _, e := range entries {
			seen[strings.TrimSuffix(e.Name(), ".theme")] = true
		}
	}
	if entries, err := os.ReadDir(l.ConfigDir); err == nil {
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".theme") {
				seen[strings.TrimSuffix(e.Name(), ".theme")] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func parseFile(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
