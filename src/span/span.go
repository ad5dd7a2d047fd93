// Package span defines the shared data types flowing through the analysis
// pipeline: extracted text spans with positional/styling metadata, page
// geometry, and the document wrapper produced by extraction collaborators.
package span

import (
	"fmt"
	"math"
)

// RGB is an 8-bit color triple.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// BBox is a bounding box (x0,y0,x1,y1) in page coordinate units.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Finite reports whether all four coordinates are finite numbers.
// Extractors occasionally emit NaN/Inf boxes for degenerate glyph runs.
func (b BBox) Finite() bool {
	for _, v := range [4]float64{b.X0, b.Y0, b.X1, b.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ZeroArea reports whether the box has no drawable area.
func (b BBox) ZeroArea() bool {
	return b.X1-b.X0 <= 0 || b.Y1-b.Y0 <= 0
}

// TextSpan is a contiguous run of extracted text, the atomic unit of
// analysis. Font size and colors are optional: OCR-derived spans usually
// carry neither, and absence is meaningful to the classifier, so the
// fields are pointers rather than zero-valued.
type TextSpan struct {
	Text       string   `json:"text"`
	Page       int      `json:"page"` // 1-indexed
	BBox       BBox     `json:"bbox"`
	FontSize   *float64 `json:"font_size,omitempty"` // points
	FontColor  *RGB     `json:"font_color,omitempty"`
	Background *RGB     `json:"background_color,omitempty"`
}

// HasColors reports whether both foreground and background are known.
// Contrast must never be computed from a partial pair.
func (s TextSpan) HasColors() bool {
	return s.FontColor != nil && s.Background != nil
}

func (s TextSpan) String() string {
	preview := s.Text
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	return fmt.Sprintf("span(page=%d, text=%q)", s.Page, preview)
}

// PageGeometry is the visible area of a page in points.
type PageGeometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// USLetter is the default page geometry when the extractor did not
// report one (612x792pt).
var USLetter = PageGeometry{Width: 612, Height: 792}

// Document is the normalized extraction output for one document: an
// ordered span list plus optional per-page geometry overrides.
type Document struct {
	Source string               `json:"source,omitempty"`
	Pages  map[int]PageGeometry `json:"pages,omitempty"`
	Spans  []TextSpan           `json:"spans"`
}

// Geometry returns the visible area for the given page, falling back to
// US Letter when the extractor reported nothing.
func (d Document) Geometry(page int) PageGeometry {
	if g, ok := d.Pages[page]; ok && g.Width > 0 && g.Height > 0 {
		return g
	}
	return USLetter
}
