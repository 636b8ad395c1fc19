package appstate

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/cropdesk/internal/overlay"
	"github.com/example/cropdesk/internal/render"
	"github.com/example/cropdesk/internal/surface/raster"
	"github.com/example/cropdesk/internal/theme"
)

const bottomHeight = 24

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

const checkerSize = 8

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 32, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
)

// Shortcut is a clickable label in the bottom bar.
type Shortcut struct {
	Label  string
	Action string
	rect   image.Rectangle
}

func (s Shortcut) Rect() image.Rectangle { return s.rect }

func (s Shortcut) Draw(dst *image.RGBA, th *theme.Theme, state ButtonState) {
	col := th.ButtonBackground
	if state == StateHover {
		col = th.ButtonBackgroundHover
	}
	draw.Draw(dst, s.rect, &image.Uniform{col}, image.Point{}, draw.Src)
	outline(dst, s.rect, th.ButtonBorder)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.BarText), Face: basicfont.Face7x13,
		Dot: fixed.P(s.rect.Min.X+2, s.rect.Min.Y+14)}
	d.DrawString(s.Label)
}

// paintState is everything the paint goroutine needs. It shares nothing
// mutable with the event loop.
type paintState struct {
	width, height int
	frame         overlay.Frame
	hasImage      bool
	src           image.Image
	styles        overlay.Styles
	background    color.Color
	shadow        *render.Cache
	theme         *theme.Theme
	shortcuts     []Shortcut
	hover         int
	status        string
	message       string
	messageUntil  time.Time
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	if !compose(ctx, b.RGBA(), st, time.Now()) {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// compose renders one frame into dst and reports false when ctx was
// canceled part way.
func compose(ctx context.Context, dst *image.RGBA, st paintState, now time.Time) bool {
	th := st.theme
	area := image.Rect(0, 0, st.width, max(st.height-bottomHeight, 0))
	sub := dst.SubImage(area).(*image.RGBA)
	canvas := raster.New(sub)

	if st.hasImage {
		overlay.Background(canvas, st.background)
		if st.shadow != nil {
			st.shadow.Draw(sub, placement(st.frame))
		}
		if ctx.Err() != nil {
			return false
		}
		st.frame.Paint(canvas, st.src, st.styles)
	} else {
		canvas.Checkerboard(checkerSize, th.CheckerLight, th.CheckerDark)
		centerText(dst, area, "No image: ^V paste, ^N capture", basicfont.Face7x13, th.Foreground)
	}
	if ctx.Err() != nil {
		return false
	}

	drawShortcuts(dst, st)
	if ctx.Err() != nil {
		return false
	}

	if st.message != "" && now.Before(st.messageUntil) {
		drawMessage(dst, area, st.message, th)
	}
	return ctx.Err() == nil
}

func drawShortcuts(dst *image.RGBA, st paintState) {
	th := st.theme
	bar := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, bar, &image.Uniform{th.BarBackground}, image.Point{}, draw.Src)
	for i, sc := range st.shortcuts {
		state := StateDefault
		if i == st.hover {
			state = StateHover
		}
		sc.Draw(dst, th, state)
	}
	if st.status != "" {
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.BarText), Face: basicfont.Face7x13}
		w := d.MeasureString(st.status).Ceil()
		d.Dot = fixed.P(st.width-w-6, st.height-bottomHeight+16)
		d.DrawString(st.status)
	}
}

func drawMessage(dst *image.RGBA, area image.Rectangle, msg string, th *theme.Theme) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.MessageText), Face: messageFace}
	wmsg := d.MeasureString(msg).Ceil()
	ascent := messageFace.Metrics().Ascent.Ceil()
	descent := messageFace.Metrics().Descent.Ceil()
	px := area.Min.X + (area.Dx()-wmsg)/2
	py := area.Min.Y + (area.Dy()-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	draw.Draw(dst, rect, &image.Uniform{th.MessageBackground}, image.Point{}, draw.Over)
	outline(dst, rect, th.ButtonBorder)
	d.Dot = fixed.P(px, py)
	d.DrawString(msg)
}

// placement is the device rectangle covered by the image.
func placement(f overlay.Frame) image.Rectangle {
	r := f.Image
	return image.Rect(int(math.Round(r.X)), int(math.Round(r.Y)), int(math.Round(r.MaxX())), int(math.Round(r.MaxY())))
}

func centerText(dst *image.RGBA, area image.Rectangle, text string, face font.Face, col color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
	w := d.MeasureString(text).Ceil()
	d.Dot = fixed.P(area.Min.X+(area.Dx()-w)/2, area.Min.Y+area.Dy()/2)
	d.DrawString(text)
}

func outline(dst *image.RGBA, r image.Rectangle, col color.Color) {
	u := &image.Uniform{col}
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}
