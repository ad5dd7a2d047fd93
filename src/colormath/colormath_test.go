package colormath

import (
	"math"
	"testing"

	"github.com/veilscan/veilscan/src/span"
)

const tolerance = 1e-3

var (
	white = span.RGB{R: 255, G: 255, B: 255}
	black = span.RGB{R: 0, G: 0, B: 0}
)

func TestLuminance_Extremes(t *testing.T) {
	if l := Luminance(black); math.Abs(l) > tolerance {
		t.Errorf("luminance(black) = %v, want 0", l)
	}
	if l := Luminance(white); math.Abs(l-1.0) > tolerance {
		t.Errorf("luminance(white) = %v, want 1", l)
	}
}

func TestLuminance_GreenDominates(t *testing.T) {
	g := Luminance(span.RGB{G: 255})
	r := Luminance(span.RGB{R: 255})
	b := Luminance(span.RGB{B: 255})

	if g <= r || r <= b {
		t.Errorf("channel weighting broken: g=%v r=%v b=%v, want g > r > b", g, r, b)
	}
}

func TestContrastRatio_WhiteBlack(t *testing.T) {
	if ratio := ContrastRatio(white, black); math.Abs(ratio-MaxContrast) > tolerance {
		t.Errorf("contrast(white, black) = %v, want %v", ratio, MaxContrast)
	}
}

func TestContrastRatio_OrderIndependent(t *testing.T) {
	tests := []struct {
		name string
		a, b span.RGB
	}{
		{"white/black", white, black},
		{"red/blue", span.RGB{R: 255}, span.RGB{B: 255}},
		{"gray pair", span.RGB{R: 100, G: 100, B: 100}, span.RGB{R: 180, G: 180, B: 180}},
		{"near-identical", span.RGB{R: 254, G: 254, B: 254}, white},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ab := ContrastRatio(tt.a, tt.b)
			ba := ContrastRatio(tt.b, tt.a)
			if ab != ba {
				t.Errorf("contrast(a,b) = %v, contrast(b,a) = %v, want equal", ab, ba)
			}
			if ab < 1.0 {
				t.Errorf("contrast = %v, want >= 1.0", ab)
			}
		})
	}
}

func TestContrastRatio_IdenticalColors(t *testing.T) {
	colors := []span.RGB{
		black,
		white,
		{R: 128, G: 64, B: 200},
		{R: 1, G: 2, B: 3},
	}

	for _, c := range colors {
		if ratio := ContrastRatio(c, c); ratio != 1.0 {
			t.Errorf("contrast(%v, %v) = %v, want exactly 1.0", c, c, ratio)
		}
	}
}
