// Package notify raises desktop notifications after exports and clipboard
// copies.
package notify

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/cropdesk/internal/platform"
	"github.com/example/cropdesk/internal/surface"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventExport fires when crop results are written to disk.
	EventExport Event = "export"
	// EventCopy fires when a crop is placed on the clipboard.
	EventCopy Event = "copy"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: platform.AppName,
		Events: map[Event]EventPreference{
			EventExport: {Template: "Saved %s"},
			EventCopy:   {Template: "Copied %s to clipboard"},
		},
	}
}

// LoadPreferences reads overrides from environment variables.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("CROPDESK_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	apply := func(key string, event Event) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			p := prefs.Events[event]
			p.Template = v
			prefs.Events[event] = p
		}
	}
	apply("CROPDESK_NOTIFY_EXPORT_TEXT", EventExport)
	apply("CROPDESK_NOTIFY_COPY_TEXT", EventCopy)
	return prefs
}

// Sender delivers one notification. platform.Notify is the default.
type Sender func(title, body string, opts platform.Options) error

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    Sender
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool), send: platform.Notify}
}

// SetSender replaces the delivery function.
func (n *Notifier) SetSender(s Sender) {
	if n != nil && s != nil {
		n.send = s
	}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Export reports saved result files. The first file that exists is used as
// the notification icon.
func (n *Notifier) Export(root string, paths []string) {
	if !n.enabledFor(EventExport) || len(paths) == 0 {
		return
	}
	opts := platform.Options{}
	first := filepath.Join(root, filepath.FromSlash(paths[0]))
	if abs, err := filepath.Abs(first); err == nil {
		first = abs
	}
	if _, err := os.Stat(first); err == nil {
		opts.IconPath = first
	}
	detail := first
	if len(paths) > 1 {
		detail = fmt.Sprintf("%d crops to %s", len(paths), filepath.Dir(first))
	}
	n.dispatch(EventExport, detail, opts)
}

// Copy reports a clipboard copy, attaching a preview of img when possible.
func (n *Notifier) Copy(detail string, img image.Image) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "crop"
	}
	opts := platform.Options{}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventCopy, detail, opts)
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil || n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	template := strings.TrimSpace(n.template(event))
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func (n *Notifier) template(event Event) string {
	if pref, ok := n.prefs.Events[event]; ok {
		return pref.Template
	}
	return ""
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "cropdesk-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := surface.Encode(f, img, surface.PNG, 0); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
