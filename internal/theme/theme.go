package theme

import (
	"image/color"
)

// Theme defines the colors of the editor window and the crop overlay.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window area around the placed image
	Foreground color.RGBA // Main text color

	// Shortcut bar
	BarBackground         color.RGBA
	BarText               color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBorder          color.RGBA

	// Message toast
	MessageBackground color.RGBA
	MessageText       color.RGBA

	// Crop overlay
	CropStroke    color.RGBA // Dash color of crop rectangles
	CropStrokeAlt color.RGBA // Gap color of crop rectangles
	HandleFill    color.RGBA
	HandleBorder  color.RGBA
	HandleActive  color.RGBA // Fill of the handle being dragged

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		BarBackground:         color.RGBA{220, 220, 220, 255},
		BarText:               color.RGBA{0, 0, 0, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		MessageBackground:     color.RGBA{255, 255, 255, 230},
		MessageText:           color.RGBA{0, 0, 0, 255},
		CropStroke:            color.RGBA{255, 255, 255, 255},
		CropStrokeAlt:         color.RGBA{0, 0, 0, 255},
		HandleFill:            color.RGBA{255, 255, 255, 255},
		HandleBorder:          color.RGBA{0, 0, 0, 255},
		HandleActive:          color.RGBA{255, 0, 0, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
	}
}
