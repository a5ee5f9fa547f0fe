// Package render provides color parsing and mixing utilities for walkbg.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor parses a color string and returns an RGBA color.
// Supported formats:
//   - CSS named colors: "red", "steelblue", etc.
//   - Hex formats: "#RGB", "#RGBA", "#RRGGBB", "#RRGGBBAA"
//   - Hex without #: "1a1a1a"
//   - RGB function: "rgb(255, 0, 0)"
//
// Returns an error if the color string cannot be parsed.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}

	// Named color first (case-insensitive, CSS names).
	if clr, ok := colornames.Map[strings.ToLower(s)]; ok {
		return clr, nil
	}

	if strings.HasPrefix(strings.ToLower(s), "rgb(") {
		return parseRGBFunc(s)
	}

	return parseHexColor(s)
}

// MustParseColor parses a color string and panics if parsing fails.
// Use this only for known-good color values in initialization code.
func MustParseColor(s string) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// parseHexColor parses "#RGB", "#RGBA", "#RRGGBB" and "#RRGGBBAA", with or
// without the leading "#".
func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")

	switch len(hex) {
	case 3, 4:
		// Expand shorthand digits: "abc" means "aabbcc".
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	case 6, 8:
	default:
		return color.RGBA{}, fmt.Errorf("unrecognized color format: %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}

	if len(hex) == 8 {
		return color.RGBA{
			R: uint8(v >> 24),
			G: uint8(v >> 16),
			B: uint8(v >> 8),
			A: uint8(v),
		}, nil
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

// parseRGBFunc parses an "rgb(r, g, b)" format string with 0-255 components.
func parseRGBFunc(s string) (color.RGBA, error) {
	if !strings.HasSuffix(s, ")") {
		return color.RGBA{}, fmt.Errorf("invalid rgb() format: %q", s)
	}

	content := s[strings.Index(s, "(")+1 : len(s)-1]
	parts := strings.Split(content, ",")
	if len(parts) != 3 {
		return color.RGBA{}, fmt.Errorf("rgb() requires exactly 3 values, got %d", len(parts))
	}

	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid rgb() component %q: %w", p, err)
		}
		ch[i] = uint8(v)
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, nil
}

// ToHex converts a color to a hex string with # prefix.
// Format: #RRGGBB, or #RRGGBBAA if alpha is not 255.
func ToHex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// Blend mixes two colors with the specified ratio (0.0-1.0).
// A ratio of 0.0 returns c1, 1.0 returns c2, 0.5 an even mix.
func Blend(c1, c2 color.RGBA, ratio float64) color.RGBA {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return color.RGBA{
		R: blendChannel(c1.R, c2.R, ratio),
		G: blendChannel(c1.G, c2.G, ratio),
		B: blendChannel(c1.B, c2.B, ratio),
		A: blendChannel(c1.A, c2.A, ratio),
	}
}

// blendChannel blends two channel values with the given ratio.
func blendChannel(a, b uint8, ratio float64) uint8 {
	return uint8(float64(a)*(1-ratio) + float64(b)*ratio)
}
