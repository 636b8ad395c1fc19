package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	th, err := Parse(strings.NewReader(`
# comment
Name: mine
CropStroke: #00FF00
handlefill = #11223344
Unknown: #FFFFFF
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if th.Name != "mine" {
		t.Errorf("Expected name 'mine', got %q", th.Name)
	}
	if th.CropStroke != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("Unexpected CropStroke: %+v", th.CropStroke)
	}
	if th.HandleFill != (color.RGBA{0x11, 0x22, 0x33, 0x44}) {
		t.Errorf("Unexpected HandleFill: %+v", th.HandleFill)
	}
	if th.CheckerDark != Default().CheckerDark {
		t.Errorf("Expected CheckerDark to keep its default")
	}
}

func TestParseRejectsBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("CropStroke: green")); err == nil {
		t.Fatal("Expected error for color without #")
	}
	if _, err := Parse(strings.NewReader("CropStroke: #12345")); err == nil {
		t.Fatal("Expected error for short hex")
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, c := range []color.RGBA{{1, 2, 3, 255}, {0xAA, 0xBB, 0xCC, 0x10}} {
		got, err := ParseColor(Hex(c))
		if err != nil {
			t.Fatalf("ParseColor(%s): %v", Hex(c), err)
		}
		if got != c {
			t.Errorf("round trip %+v -> %s -> %+v", c, Hex(c), got)
		}
	}
}

func TestLoaderEmbeddedAndFiles(t *testing.T) {
	dir := t.TempDir()
	l := &Loader{ConfigDir: dir}

	th, err := l.Load("dark")
	if err != nil {
		t.Fatalf("Load dark: %v", err)
	}
	if th.Name != "dark" {
		t.Errorf("Expected embedded dark theme, got %q", th.Name)
	}

	if err := os.WriteFile(filepath.Join(dir, "paper.theme"), []byte("Name: paper\nBackground: #FFFFFF\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	th, err = l.Load("paper")
	if err != nil {
		t.Fatalf("Load paper: %v", err)
	}
	if th.Background != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Unexpected background %+v", th.Background)
	}

	if _, err := l.Load("nope"); err == nil {
		t.Error("Expected error for missing theme")
	}

	names := strings.Join(l.Available(), ",")
	for _, want := range []string{"dark", "default", "high_contrast", "paper"} {
		if !strings.Contains(names, want) {
			t.Errorf("Available() = %s, missing %s", names, want)
		}
	}
}

func TestColorsListsEveryColorField(t *testing.T) {
	fields := Default().Colors()
	if len(fields) != 16 {
		t.Fatalf("Expected 16 color fields, got %d", len(fields))
	}
	if fields[0].Name != "Background" {
		t.Errorf("Expected declaration order, first is %s", fields[0].Name)
	}
}
