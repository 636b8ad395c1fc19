//go:build vips

package vipsx

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/cropdesk/internal/surface"
)

func TestExtractRegion(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			src.Set(x, y, color.RGBA{uint8(x * 6), uint8(y * 8), 0, 255})
		}
	}
	enc, err := Extractor{Format: surface.PNG}.ExtractRegion(src, 5, 5, 20, 10)
	require.NoError(t, err)
	require.Equal(t, 20, enc.Width)
	require.NotEmpty(t, enc.Data)

	img, err := surface.Decode(enc.Data)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())
}
