package theme

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"reflect"
	"strconv"
	"strings"
)

var rgbaType = reflect.TypeOf(color.RGBA{})

// Parse reads a theme definition from an io.Reader.
// The format is one pair per line: Key: #RRGGBB or #RRGGBBAA. "Key = value"
// is accepted too.
func Parse(r io.Reader) (*Theme, error) {
	t := Default() // Start with defaults
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		sep := strings.IndexAny(line, ":=")
		if sep < 0 {
			continue
		}
		key := strings.TrimSpace(line[:sep])
		value := strings.TrimSpace(line[sep+1:])

		if err := t.Set(key, value); err != nil {
			return nil, err
		}
	}

	return t, scanner.Err()
}

// Set assigns one field by case-insensitive name. Unknown keys are ignored
// for forward compatibility.
func (t *Theme) Set(key, value string) error {
	if strings.EqualFold(key, "Name") {
		t.Name = value
		return nil
	}
	val := reflect.ValueOf(t).Elem()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !strings.EqualFold(f.Name, key) || f.Type != rgbaType {
			continue
		}
		col, err := ParseColor(value)
		if err != nil {
			return fmt.Errorf("invalid color for key %s: %w", key, err)
		}
		val.Field(i).Set(reflect.ValueOf(col))
		return nil
	}
	return nil
}

// Field is one named color of a theme.
type Field struct {
	Name  string
	Color color.RGBA
}

// Colors lists the color fields in declaration order.
func (t *Theme) Colors() []Field {
	val := reflect.ValueOf(t).Elem()
	typ := val.Type()
	var out []Field
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Type != rgbaType {
			continue
		}
		out = append(out, Field{Name: typ.Field(i).Name, Color: val.Field(i).Interface().(color.RGBA)})
	}
	return out
}

// ParseColor parses #RRGGBB or #RRGGBBAA.
func ParseColor(s string) (color.RGBA, error) {
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("color must start with #")
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{
			R: uint8(val >> 16),
			G: uint8((val >> 8) & 0xFF),
			B: uint8(val & 0xFF),
			A: 255,
		}, nil
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{
			R: uint8(val >> 24),
			G: uint8((val >> 16) & 0xFF),
			B: uint8((val >> 8) & 0xFF),
			A: uint8(val & 0xFF),
		}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid hex length")
}

// Hex formats c the way ParseColor reads it, dropping a fully opaque alpha.
func Hex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
