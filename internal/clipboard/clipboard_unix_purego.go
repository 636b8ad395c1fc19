//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/example/cropdesk/internal/surface"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	backend      *x11Clipboard
)

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		clip := &x11Clipboard{}
		if err := clip.initialize(); err != nil {
			initErr = err
			return
		}
		backend = clip
	})
	return initErr
}

// WriteImage encodes img as PNG and takes ownership of the CLIPBOARD
// selection, serving it until another client claims the selection.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := surface.Encode(&buf, img, surface.PNG, 0); err != nil {
		return err
	}
	return backend.own(buf.Bytes())
}

// ReadImage requests image/png from the current selection owner.
func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data, err := backend.readSelection(backend.atoms.png)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard does not contain image data")
	}
	return surface.Decode(data)
}

type x11Clipboard struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atomSet
	mu     sync.RWMutex
	png    []byte
}

type atomSet struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	png       xproto.Atom
	property  xproto.Atom
}

func (c *x11Clipboard) initialize() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return err
	}
	const eventMask = xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, []uint32{eventMask}).Check(); err != nil {
		conn.Close()
		return err
	}
	atoms, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return err
	}
	c.conn = conn
	c.window = window
	c.atoms = atoms
	go c.eventLoop()
	return nil
}

func internAtoms(conn *xgb.Conn) (atomSet, error) {
	names := []string{"CLIPBOARD", "TARGETS", "image/png", "CROPDESK_CLIPBOARD"}
	got := make([]xproto.Atom, len(names))
	for i, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return atomSet{}, fmt.Errorf("intern %s: %w", name, err)
		}
		got[i] = reply.Atom
	}
	return atomSet{clipboard: got[0], targets: got[1], png: got[2], property: got[3]}, nil
}

func (c *x11Clipboard) own(data []byte) error {
	c.mu.Lock()
	c.png = append([]byte(nil), data...)
	c.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(c.conn, c.window, c.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (c *x11Clipboard) eventLoop() {
	for {
		ev, err := c.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			c.answer(e)
		case xproto.SelectionClearEvent:
			c.mu.Lock()
			c.png = nil
			c.mu.Unlock()
		}
	}
}

func (c *x11Clipboard) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}

	c.mu.RLock()
	data := c.png
	c.mu.RUnlock()

	switch {
	case e.Target == c.atoms.targets:
		targets := []xproto.Atom{c.atoms.targets}
		if len(data) > 0 {
			targets = append(targets, c.atoms.png)
		}
		payload := atomsToBytes(targets)
		xproto.ChangeProperty(c.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, uint32(len(targets)), payload)
	case e.Target == c.atoms.png && len(data) > 0:
		xproto.ChangeProperty(c.conn, xproto.PropModeReplace, e.Requestor, property, c.atoms.png, 8, uint32(len(data)), data)
	default:
		property = xproto.AtomNone
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	_ = xproto.SendEvent(c.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

func (c *x11Clipboard) readSelection(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.ConvertSelectionChecked(conn, window, c.atoms.clipboard, target, c.atoms.property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}

	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if e.Property == xproto.AtomNone {
			return nil, fmt.Errorf("clipboard target unavailable")
		}
		reply, err := xproto.GetProperty(conn, true, window, e.Property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), reply.Value...), nil
	}
}

func atomsToBytes(atoms []xproto.Atom) []byte {
	buf := make([]byte, len(atoms)*4)
	for i, atom := range atoms {
		xgb.Put32(buf[i*4:], uint32(atom))
	}
	return buf
}
