package surface

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Format is an export encoding.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	WebP Format = "webp"

	DefaultQuality = 92
)

// ParseFormat maps a name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "jpeg", "jpg", "":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "webp":
		return WebP, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	switch f {
	case PNG:
		return ".png"
	case WebP:
		return ".webp"
	default:
		return ".jpg"
	}
}

// MIME returns the media type used when the image leaves the process.
func (f Format) MIME() string {
	switch f {
	case PNG:
		return "image/png"
	case WebP:
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// Encoded is an exported region.
type Encoded struct {
	Format Format
	Data   []byte
	Width  int
	Height int
}

// Encode writes img to w. Quality applies to JPEG and lossy WebP and is
// clamped to [1,100].
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	if quality <= 0 {
		quality = DefaultQuality
	}
	if quality > 100 {
		quality = 100
	}
	switch f {
	case WebP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	case PNG:
		return imaging.Encode(w, img, imaging.PNG)
	case JPEG, "":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	return fmt.Errorf("unsupported format %q", f)
}

// EncodeImage encodes img into an Encoded value.
func EncodeImage(img image.Image, f Format, quality int) (Encoded, error) {
	if f == "" {
		f = JPEG
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, f, quality); err != nil {
		return Encoded{}, fmt.Errorf("encode %s: %w", f, err)
	}
	b := img.Bounds()
	return Encoded{Format: f, Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// Decode reads an image in any registered format, falling back to WebP.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	if wimg, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return wimg, nil
	}
	return nil, fmt.Errorf("decode image: %w", err)
}

// Open loads the image at path as a Source.
func Open(path string) (Source, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		f, ferr := os.Open(path)
		if ferr != nil {
			return nil, ferr
		}
		defer f.Close()
		wimg, werr := webp.Decode(f)
		if werr != nil {
			return nil, fmt.Errorf("open %s: %w", path, errors.Join(err, werr))
		}
		img = wimg
	}
	return FromImage(img, filepath.Base(path)), nil
}
