package render

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{name: "named red", input: "red", want: color.RGBA{R: 255, A: 255}},
		{name: "named mixed case", input: "SteelBlue", want: color.RGBA{R: 70, G: 130, B: 180, A: 255}},
		{name: "hex 6", input: "#1a1a1a", want: color.RGBA{R: 0x1A, G: 0x1A, B: 0x1A, A: 255}},
		{name: "hex 6 no hash", input: "606060", want: color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 255}},
		{name: "hex 8", input: "#ff000080", want: color.RGBA{R: 255, A: 0x80}},
		{name: "hex 3", input: "#f0a", want: color.RGBA{R: 0xFF, G: 0x00, B: 0xAA, A: 255}},
		{name: "hex 4", input: "#f0a8", want: color.RGBA{R: 0xFF, G: 0x00, B: 0xAA, A: 0x88}},
		{name: "rgb func", input: "rgb(12, 34, 56)", want: color.RGBA{R: 12, G: 34, B: 56, A: 255}},
		{name: "rgb no spaces", input: "rgb(1,2,3)", want: color.RGBA{R: 1, G: 2, B: 3, A: 255}},
		{name: "whitespace", input: "  #1a1a1a  ", want: color.RGBA{R: 0x1A, G: 0x1A, B: 0x1A, A: 255}},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "not-a-color", wantErr: true},
		{name: "bad hex length", input: "#12345", wantErr: true},
		{name: "bad hex digit", input: "#zzzzzz", wantErr: true},
		{name: "rgb missing paren", input: "rgb(1,2,3", wantErr: true},
		{name: "rgb too few", input: "rgb(1,2)", wantErr: true},
		{name: "rgb component range", input: "rgb(1,2,300)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMustParseColorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParseColor on garbage did not panic")
		}
	}()
	MustParseColor("definitely not a color")
}

func TestToHex(t *testing.T) {
	if got := ToHex(color.RGBA{R: 0x1A, G: 0x2B, B: 0x3C, A: 255}); got != "#1A2B3C" {
		t.Errorf("ToHex = %q, want #1A2B3C", got)
	}
	if got := ToHex(color.RGBA{R: 0xFF, A: 0x80}); got != "#FF000080" {
		t.Errorf("ToHex with alpha = %q, want #FF000080", got)
	}
}

func TestBlend(t *testing.T) {
	a := color.RGBA{R: 0, G: 100, B: 200, A: 255}
	b := color.RGBA{R: 200, G: 0, B: 100, A: 255}

	if got := Blend(a, b, 0); got != a {
		t.Errorf("Blend ratio 0 = %v, want %v", got, a)
	}
	if got := Blend(a, b, 1); got != b {
		t.Errorf("Blend ratio 1 = %v, want %v", got, b)
	}
	mid := Blend(a, b, 0.5)
	if mid.R != 100 || mid.G != 50 || mid.B != 150 {
		t.Errorf("Blend ratio 0.5 = %v, want {100 50 150 255}", mid)
	}

	// Out-of-range ratios clamp.
	if got := Blend(a, b, -3); got != a {
		t.Errorf("Blend ratio -3 = %v, want %v", got, a)
	}
	if got := Blend(a, b, 9); got != b {
		t.Errorf("Blend ratio 9 = %v, want %v", got, b)
	}
}
