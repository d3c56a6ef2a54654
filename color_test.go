package ink

import (
	"image/color"
	"math"
	"testing"
)

func TestNewColorPair(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want HSBA
	}{
		{"black", color.Black, HSBA{H: 0, S: 0, B: 0, A: 1}},
		{"white", color.White, HSBA{H: 0, S: 0, B: 1, A: 1}},
		{"red", color.NRGBA{R: 255, A: 255}, HSBA{H: 0, S: 1, B: 1, A: 1}},
		{"blue half alpha", color.NRGBA{B: 255, A: 128}, HSBA{H: 240, S: 1, B: 1, A: 128.0 / 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewColorPair(tt.c).HSBA
			if !hsbaNear(got, tt.want) {
				t.Errorf("HSBA = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestColorPairFromHSBA(t *testing.T) {
	p := ColorPairFromHSBA(HSBA{H: 120, S: 1, B: 1, A: 0.5})
	if p.RGBA != (color.NRGBA{G: 255, A: 128}) {
		t.Errorf("RGBA = %v, want half-transparent green", p.RGBA)
	}
	if p.HSBA.H != 120 {
		t.Errorf("HSBA not kept: %+v", p.HSBA)
	}
	if got := ColorPairFromHSBA(HSBA{B: 2, A: 7}).RGBA; got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("out-of-range HSBA = %v, want clamped white", got)
	}
}

func TestDualColorResolve(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	d := NewDualColor(red, color.White)
	if d.Resolve(Light).RGBA != red {
		t.Errorf("Resolve(Light) = %v", d.Resolve(Light).RGBA)
	}
	if d.Resolve(Dark).RGBA != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("Resolve(Dark) = %v", d.Resolve(Dark).RGBA)
	}

	same := SameColor(red)
	if same.Resolve(Light) != same.Resolve(Dark) {
		t.Error("SameColor differs between schemes")
	}
}

func TestInvertedForDark(t *testing.T) {
	d := InvertedForDark(color.NRGBA{R: 51, A: 255})
	dark := d.Resolve(Dark)
	if math.Abs(dark.HSBA.B-0.8) > 1e-9 {
		t.Errorf("dark brightness = %v, want 0.8", dark.HSBA.B)
	}
	if dark.HSBA.H != d.Light.HSBA.H || dark.HSBA.S != d.Light.HSBA.S {
		t.Error("inversion changed hue or saturation")
	}
	if dark.RGBA != (color.NRGBA{R: 204, A: 255}) {
		t.Errorf("dark RGBA = %v, want {204 0 0 255}", dark.RGBA)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#fff", color.NRGBA{R: 255, G: 255, B: 255, A: 255}, false},
		{"#ff0000", color.NRGBA{R: 255, A: 255}, false},
		{" #00ff0080 ", color.NRGBA{G: 255, A: 128}, false},
		{"ff0000", color.NRGBA{}, true},
		{"#ff0000zz", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorSchemeString(t *testing.T) {
	if Light.String() != "light" || Dark.String() != "dark" {
		t.Errorf("scheme names = %q, %q", Light.String(), Dark.String())
	}
}

func hsbaNear(a, b HSBA) bool {
	const eps = 1e-6
	return math.Abs(a.H-b.H) < eps && math.Abs(a.S-b.S) < eps &&
		math.Abs(a.B-b.B) < eps && math.Abs(a.A-b.A) < eps
}
