// Package colormath implements the WCAG 2.1 color arithmetic used to
// decide whether text is perceivable against its background: sRGB
// linearization, relative luminance, and contrast ratio.
package colormath

import (
	"math"

	"github.com/veilscan/veilscan/src/span"
)

// WCAG 2.1 constants. The linear segment boundary and gamma exponent come
// from the sRGB transfer function; the channel weights reflect the eye's
// sensitivity to green over red over blue.
const (
	linearThreshold = 0.03928
	gamma           = 2.4

	weightR = 0.2126
	weightG = 0.7152
	weightB = 0.0722
)

// MaxContrast is the ratio of pure white against pure black.
const MaxContrast = 21.0

// srgbToLinear converts one sRGB channel in [0,1] to linear RGB.
func srgbToLinear(c float64) float64 {
	if c <= linearThreshold {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, gamma)
}

// Luminance returns the WCAG relative luminance of a color, in [0,1].
func Luminance(c span.RGB) float64 {
	r := srgbToLinear(float64(c.R) / 255.0)
	g := srgbToLinear(float64(c.G) / 255.0)
	b := srgbToLinear(float64(c.B) / 255.0)
	return weightR*r + weightG*g + weightB*b
}

// ContrastRatio returns the WCAG contrast ratio between two colors, in
// [1,21]. The lighter color is placed in the numerator, so the result is
// independent of argument order and never below 1.0.
func ContrastRatio(a, b span.RGB) float64 {
	la, lb := Luminance(a), Luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}
