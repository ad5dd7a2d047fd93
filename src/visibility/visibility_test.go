package visibility

import (
	"math"
	"strings"
	"testing"

	"github.com/veilscan/veilscan/src/span"
)

func floatPtr(f float64) *float64 { return &f }
func rgbPtr(r, g, b uint8) *span.RGB {
	c := span.RGB{R: r, G: g, B: b}
	return &c
}

// onPage returns a bbox comfortably inside US Letter.
func onPage() span.BBox {
	return span.BBox{X0: 72, Y0: 72, X1: 300, Y1: 90}
}

func classify(t *testing.T, s *span.TextSpan) Verdict {
	t.Helper()
	return New(DefaultConfig()).Classify(s, span.USLetter)
}

func TestClassify_FullContrastVisible(t *testing.T) {
	s := &span.TextSpan{
		Text:       "normal paragraph",
		Page:       1,
		BBox:       onPage(),
		FontSize:   floatPtr(12.0),
		FontColor:  rgbPtr(0, 0, 0),
		Background: rgbPtr(255, 255, 255),
	}

	v := classify(t, s)
	if v.Category != Visible {
		t.Errorf("category = %v, want VISIBLE", v.Category)
	}
	if v.Hidden {
		t.Error("full-contrast 12pt span must not be hidden")
	}
	if len(v.Reasons) != 0 {
		t.Errorf("reasons = %v, want empty", v.Reasons)
	}
}

func TestClassify_IdenticalColorsInvisible(t *testing.T) {
	s := &span.TextSpan{
		Text:       "white on white",
		Page:       1,
		BBox:       onPage(),
		FontColor:  rgbPtr(255, 255, 255),
		Background: rgbPtr(255, 255, 255),
	}

	v := classify(t, s)
	if v.Category != Invisible {
		t.Fatalf("category = %v, want INVISIBLE", v.Category)
	}
	if !v.Hidden {
		t.Error("invisible span must be hidden")
	}
	if v.Contrast == nil || *v.Contrast != 1.0 {
		t.Errorf("contrast = %v, want 1.0", v.Contrast)
	}
	if len(v.Reasons) != 1 || !strings.Contains(v.Reasons[0], "1.00:1") {
		t.Errorf("reasons = %v, want ratio reported as 1.00:1", v.Reasons)
	}
}

func TestClassify_FontSizes(t *testing.T) {
	tests := []struct {
		name string
		size float64
		want Category
	}{
		{"microscopic", 0.5, Microscopic},
		{"small", 3.0, Small},
		{"readable", 12.0, Visible},
		{"boundary microscopic", 0.99, Microscopic},
		{"boundary small", 1.0, Small},
		{"boundary readable", 4.0, Visible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &span.TextSpan{
				Text:       "sized text",
				Page:       1,
				BBox:       onPage(),
				FontSize:   floatPtr(tt.size),
				FontColor:  rgbPtr(0, 0, 0),
				Background: rgbPtr(255, 255, 255),
			}
			if v := classify(t, s); v.Category != tt.want {
				t.Errorf("font %.2fpt: category = %v, want %v", tt.size, v.Category, tt.want)
			}
		})
	}
}

func TestClassify_FontReasons(t *testing.T) {
	s := &span.TextSpan{Text: "tiny", Page: 1, BBox: onPage(), FontSize: floatPtr(0.5)}
	v := classify(t, s)
	if len(v.Reasons) != 1 || v.Reasons[0] != "impossible to read, 0.5pt" {
		t.Errorf("reasons = %v, want [impossible to read, 0.5pt]", v.Reasons)
	}

	s = &span.TextSpan{Text: "small", Page: 1, BBox: onPage(), FontSize: floatPtr(3.0)}
	v = classify(t, s)
	if len(v.Reasons) != 1 || v.Reasons[0] != "very difficult to read, 3.0pt" {
		t.Errorf("reasons = %v, want [very difficult to read, 3.0pt]", v.Reasons)
	}
}

func TestClassify_Offscreen(t *testing.T) {
	tests := []struct {
		name string
		bbox span.BBox
		want Category
	}{
		{"left of page", span.BBox{X0: -200, Y0: 100, X1: -50, Y1: 120}, Offscreen},
		{"above page", span.BBox{X0: 100, Y0: -80, X1: 200, Y1: -60}, Offscreen},
		{"right of page", span.BBox{X0: 700, Y0: 100, X1: 800, Y1: 120}, Offscreen},
		{"below page", span.BBox{X0: 100, Y0: 900, X1: 200, Y1: 920}, Offscreen},
		{"zero area", span.BBox{X0: 100, Y0: 100, X1: 100, Y1: 120}, Offscreen},
		{"partially off", span.BBox{X0: -10, Y0: 100, X1: 50, Y1: 120}, Visible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &span.TextSpan{Text: "positioned", Page: 1, BBox: tt.bbox, FontSize: floatPtr(12.0)}
			if v := classify(t, s); v.Category != tt.want {
				t.Errorf("bbox %+v: category = %v, want %v", tt.bbox, v.Category, tt.want)
			}
		})
	}
}

func TestClassify_SeverityRanking(t *testing.T) {
	// Invisible contrast plus microscopic font: primary category must be
	// the most severe, with both reasons retained.
	s := &span.TextSpan{
		Text:       "doubly hidden",
		Page:       1,
		BBox:       onPage(),
		FontSize:   floatPtr(0.5),
		FontColor:  rgbPtr(250, 250, 250),
		Background: rgbPtr(255, 255, 255),
	}

	v := classify(t, s)
	if v.Category != Invisible {
		t.Errorf("category = %v, want INVISIBLE (most severe)", v.Category)
	}
	if len(v.Reasons) != 2 {
		t.Fatalf("reasons = %v, want both criteria reported", v.Reasons)
	}
	if !strings.Contains(v.Reasons[0], "nearly invisible") || !strings.Contains(v.Reasons[1], "impossible to read") {
		t.Errorf("reasons = %v, want contrast then font reason", v.Reasons)
	}
	if len(v.Triggered) != 2 {
		t.Errorf("triggered = %v, want two categories", v.Triggered)
	}
}

func TestClassify_RankOrder(t *testing.T) {
	// The type's ordering is the severity ranking; a regression here
	// silently changes primary-category selection.
	order := []Category{Invisible, Microscopic, Offscreen, LowContrast, Small, Visible}
	for i := 0; i < len(order)-1; i++ {
		if order[i] <= order[i+1] {
			t.Errorf("severity rank broken: %v <= %v", order[i], order[i+1])
		}
	}
}

func TestClassify_MissingMetadata(t *testing.T) {
	s := &span.TextSpan{Text: "ocr text", Page: 1, BBox: onPage()}

	v := classify(t, s)
	if v.Category != Visible || v.Hidden {
		t.Errorf("category = %v hidden=%v, want VISIBLE and not hidden", v.Category, v.Hidden)
	}
	if len(v.Reasons) != 1 || v.Reasons[0] != "insufficient metadata to assess" {
		t.Errorf("reasons = %v, want the insufficient-metadata note", v.Reasons)
	}
	if v.Contrast != nil {
		t.Error("contrast must stay unknown when colors are absent")
	}
}

func TestClassify_PartialMetadataNoNote(t *testing.T) {
	// A span with a readable font but no colors passed the check it
	// could run; no metadata note should appear.
	s := &span.TextSpan{Text: "sized only", Page: 1, BBox: onPage(), FontSize: floatPtr(12.0)}

	v := classify(t, s)
	if v.Category != Visible || len(v.Reasons) != 0 {
		t.Errorf("verdict = %v %v, want clean VISIBLE", v.Category, v.Reasons)
	}
}

func TestClassify_OnlyForegroundColor(t *testing.T) {
	// Contrast must never be computed from half a color pair.
	s := &span.TextSpan{
		Text:      "fg only",
		Page:      1,
		BBox:      onPage(),
		FontSize:  floatPtr(12.0),
		FontColor: rgbPtr(255, 255, 255),
	}

	v := classify(t, s)
	if v.Contrast != nil {
		t.Errorf("contrast = %v, want unknown", *v.Contrast)
	}
	if v.Category != Visible {
		t.Errorf("category = %v, want VISIBLE", v.Category)
	}
}

func TestClassify_MalformedBBox(t *testing.T) {
	s := &span.TextSpan{
		Text:       "bad box",
		Page:       1,
		BBox:       span.BBox{X0: math.NaN(), Y0: 0, X1: 100, Y1: 10},
		FontColor:  rgbPtr(255, 255, 255),
		Background: rgbPtr(255, 255, 255),
	}

	v := classify(t, s)
	// Position check skipped, contrast still evaluated.
	if v.Category != Invisible {
		t.Errorf("category = %v, want INVISIBLE from the contrast criterion", v.Category)
	}
	found := false
	for _, r := range v.Reasons {
		if strings.Contains(r, "malformed bounding box") {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons = %v, want a malformed-bbox note", v.Reasons)
	}
}

func TestClassify_LowContrast(t *testing.T) {
	s := &span.TextSpan{
		Text:       "gray on gray",
		Page:       1,
		BBox:       onPage(),
		FontColor:  rgbPtr(120, 120, 120),
		Background: rgbPtr(180, 180, 180),
	}

	v := classify(t, s)
	if v.Category != LowContrast {
		t.Errorf("category = %v, want LOW_CONTRAST", v.Category)
	}
	if !v.Hidden {
		t.Error("low-contrast span must be hidden")
	}
	if len(v.Reasons) != 1 || !strings.HasPrefix(v.Reasons[0], "low contrast (") {
		t.Errorf("reasons = %v, want low-contrast reason with ratio", v.Reasons)
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	// Thresholds are injected, not hard-coded: an 8pt floor reclassifies
	// text that the defaults accept.
	cfg := DefaultConfig()
	cfg.SmallFont = 8.0

	s := &span.TextSpan{Text: "six point", Page: 1, BBox: onPage(), FontSize: floatPtr(6.0)}
	v := New(cfg).Classify(s, span.USLetter)
	if v.Category != Small {
		t.Errorf("category = %v, want SMALL with raised threshold", v.Category)
	}
}
