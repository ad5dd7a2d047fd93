// Package visibility classifies individual text spans as perceivable or
// hidden. A span is checked against three independent criteria (position,
// contrast, font size); every triggered criterion contributes a category
// and a human-readable reason, and the most severe category wins.
package visibility

import (
	"fmt"

	"github.com/veilscan/veilscan/src/colormath"
	"github.com/veilscan/veilscan/src/span"
)

// Category classifies how a span relates to human perception. Values are
// ordered by ascending severity so the primary category of a multi-hit
// span is a plain max.
type Category int

const (
	// Visible means no hiding criterion triggered.
	Visible Category = iota
	// Small is text below comfortable reading size but above microscopic.
	Small
	// LowContrast is text with poor but nonzero contrast.
	LowContrast
	// Offscreen is text positioned outside the visible page area.
	Offscreen
	// Microscopic is text too small to resolve at all.
	Microscopic
	// Invisible is text whose color nearly matches its background.
	Invisible
)

func (c Category) String() string {
	switch c {
	case Visible:
		return "VISIBLE"
	case Small:
		return "SMALL"
	case LowContrast:
		return "LOW_CONTRAST"
	case Offscreen:
		return "OFFSCREEN"
	case Microscopic:
		return "MICROSCOPIC"
	case Invisible:
		return "INVISIBLE"
	default:
		return "UNKNOWN"
	}
}

// Config holds the classification thresholds. All values are injected so
// the engine is parameterizable without code change.
type Config struct {
	// InvisibleContrast is the contrast ratio below which text is
	// effectively invisible (nearly identical colors).
	InvisibleContrast float64
	// LowContrast is the contrast ratio below which text is hard to see.
	LowContrast float64
	// MicroscopicFont is the font size in points below which text cannot
	// be resolved by a human reader.
	MicroscopicFont float64
	// SmallFont is the font size in points below which text is very
	// difficult to read.
	SmallFont float64
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		InvisibleContrast: 1.5,
		LowContrast:       3.0,
		MicroscopicFont:   1.0,
		SmallFont:         4.0,
	}
}

// Verdict is the classification outcome for one span. It references the
// originating span and is never mutated after construction.
type Verdict struct {
	Span *span.TextSpan
	// Category is the primary (most severe) triggered category, or
	// Visible when nothing triggered.
	Category Category
	// Triggered lists every category that fired, in criterion order.
	Triggered []Category
	// Reasons are human-readable explanations, one per trigger, plus
	// metadata anomaly notes.
	Reasons []string
	// Contrast is the computed ratio when both colors were known.
	Contrast *float64
	// Hidden is true whenever Category is not Visible.
	Hidden bool
}

// Classifier applies configured thresholds to spans. It is stateless
// apart from its config and safe for concurrent use.
type Classifier struct {
	cfg Config
}

// New creates a Classifier with the given thresholds.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify evaluates one span against the page's visible area. Spans with
// missing metadata degrade gracefully: checks that cannot run are skipped,
// and a span nothing could be said about stays Visible with an explicit
// note rather than being dropped or downgraded.
func (c *Classifier) Classify(s *span.TextSpan, geom span.PageGeometry) Verdict {
	v := Verdict{Span: s, Category: Visible}

	c.checkPosition(s, geom, &v)
	c.checkContrast(s, &v)
	c.checkFontSize(s, &v)

	if len(v.Triggered) == 0 && !s.HasColors() && s.FontSize == nil {
		v.Reasons = append(v.Reasons, "insufficient metadata to assess")
	}

	v.Hidden = v.Category != Visible
	return v
}

func (v *Verdict) trigger(cat Category, reason string) {
	v.Triggered = append(v.Triggered, cat)
	v.Reasons = append(v.Reasons, reason)
	if cat > v.Category {
		v.Category = cat
	}
}

func (c *Classifier) checkPosition(s *span.TextSpan, geom span.PageGeometry, v *Verdict) {
	if !s.BBox.Finite() {
		v.Reasons = append(v.Reasons, "malformed bounding box, position check skipped")
		return
	}
	if s.BBox.ZeroArea() {
		v.trigger(Offscreen, "zero-area bounding box")
		return
	}
	b := s.BBox
	if b.X1 < 0 || b.Y1 < 0 || b.X0 > geom.Width || b.Y0 > geom.Height {
		v.trigger(Offscreen, "positioned entirely outside the page area")
	}
}

func (c *Classifier) checkContrast(s *span.TextSpan, v *Verdict) {
	if !s.HasColors() {
		return
	}
	ratio := colormath.ContrastRatio(*s.FontColor, *s.Background)
	v.Contrast = &ratio

	switch {
	case ratio < c.cfg.InvisibleContrast:
		v.trigger(Invisible, fmt.Sprintf("nearly invisible (contrast: %.2f:1)", ratio))
	case ratio < c.cfg.LowContrast:
		v.trigger(LowContrast, fmt.Sprintf("low contrast (%.2f:1)", ratio))
	}
}

func (c *Classifier) checkFontSize(s *span.TextSpan, v *Verdict) {
	if s.FontSize == nil {
		return
	}
	size := *s.FontSize

	switch {
	case size < c.cfg.MicroscopicFont:
		v.trigger(Microscopic, fmt.Sprintf("impossible to read, %.1fpt", size))
	case size < c.cfg.SmallFont:
		v.trigger(Small, fmt.Sprintf("very difficult to read, %.1fpt", size))
	}
}
