// Package sanitize produces LLM-safe text from classified spans by
// stripping or flagging hidden content. The output path also scrubs
// format/control characters so nothing invisible rides along into the
// reconstructed text.
package sanitize

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/veilscan/veilscan/src/risk"
	"github.com/veilscan/veilscan/src/span"
	"github.com/veilscan/veilscan/src/visibility"
)

// Strategy selects how hidden spans are handled.
type Strategy string

const (
	// Strip removes hidden text entirely.
	Strip Strategy = "strip"
	// Flag keeps mildly hidden text with a warning marker, dropping only
	// invisible text.
	Flag Strategy = "flag"
	// Preserve keeps everything; audit mode.
	Preserve Strategy = "preserve"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case Strip, Flag, Preserve:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown sanitization strategy %q (use strip, flag, or preserve)", s)
	}
}

// Config controls sanitization behaviour.
type Config struct {
	// DefaultStrategy applies when the caller forces nothing and the
	// document risk does not dictate a stricter one.
	DefaultStrategy Strategy
	// RemoveAllHidden makes Strip drop every hidden span rather than
	// only INVISIBLE-classified ones.
	RemoveAllHidden bool
	// FlagPrefix marks retained hidden text under the Flag strategy.
	FlagPrefix string
}

// DefaultConfig returns the stock sanitization settings.
func DefaultConfig() Config {
	return Config{
		DefaultStrategy: Strip,
		FlagPrefix:      "[SUSPICIOUS] ",
	}
}

// maxRemovedSamples bounds the audit sample of removed text.
const maxRemovedSamples = 10

// Report records what sanitization did. SafeText is ready for LLM
// consumption.
type Report struct {
	Strategy       Strategy
	OriginalCount  int
	KeptCount      int
	RemovedCount   int
	FlaggedCount   int
	RemovedSamples []string
	SafeText       string
}

// Sanitizer applies a configured strategy to classified spans. Stateless
// and safe for concurrent use.
type Sanitizer struct {
	cfg Config
}

// New creates a Sanitizer with the given config.
func New(cfg Config) *Sanitizer {
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = Strip
	}
	return &Sanitizer{cfg: cfg}
}

// ChooseStrategy picks a strategy from the document risk level when the
// caller did not force one: high-risk documents are stripped, medium-risk
// flagged, anything else uses the configured default.
func (s *Sanitizer) ChooseStrategy(level risk.Level) Strategy {
	switch {
	case level >= risk.High:
		return Strip
	case level == risk.Medium:
		return Flag
	default:
		return s.cfg.DefaultStrategy
	}
}

// Sanitize applies the strategy to the verdicts and returns the report.
func (s *Sanitizer) Sanitize(verdicts []visibility.Verdict, strategy Strategy) Report {
	switch strategy {
	case Flag:
		return s.flag(verdicts)
	case Preserve:
		return s.preserve(verdicts)
	default:
		return s.strip(verdicts)
	}
}

// piece is a retained span plus its rendered text.
type piece struct {
	span *span.TextSpan
	text string
}

func (s *Sanitizer) strip(verdicts []visibility.Verdict) Report {
	var kept []piece
	var removed []string

	for _, v := range verdicts {
		drop := v.Category == visibility.Invisible || (s.cfg.RemoveAllHidden && v.Hidden)
		if drop {
			removed = append(removed, v.Span.Text)
			continue
		}
		kept = append(kept, piece{span: v.Span, text: v.Span.Text})
	}

	return Report{
		Strategy:       Strip,
		OriginalCount:  len(verdicts),
		KeptCount:      len(kept),
		RemovedCount:   len(removed),
		RemovedSamples: samples(removed),
		SafeText:       reconstruct(kept),
	}
}

func (s *Sanitizer) flag(verdicts []visibility.Verdict) Report {
	var kept []piece
	var removed []string
	flagged := 0

	for _, v := range verdicts {
		if v.Category == visibility.Invisible {
			removed = append(removed, v.Span.Text)
			continue
		}
		text := v.Span.Text
		if v.Hidden {
			text = s.cfg.FlagPrefix + text
			flagged++
		}
		kept = append(kept, piece{span: v.Span, text: text})
	}

	return Report{
		Strategy:       Flag,
		OriginalCount:  len(verdicts),
		KeptCount:      len(kept),
		RemovedCount:   len(removed),
		FlaggedCount:   flagged,
		RemovedSamples: samples(removed),
		SafeText:       reconstruct(kept),
	}
}

func (s *Sanitizer) preserve(verdicts []visibility.Verdict) Report {
	kept := make([]piece, 0, len(verdicts))
	for _, v := range verdicts {
		kept = append(kept, piece{span: v.Span, text: v.Span.Text})
	}
	return Report{
		Strategy:      Preserve,
		OriginalCount: len(verdicts),
		KeptCount:     len(kept),
		SafeText:      reconstruct(kept),
	}
}

func samples(removed []string) []string {
	if len(removed) == 0 {
		return nil
	}
	if len(removed) > maxRemovedSamples {
		removed = removed[:maxRemovedSamples]
	}
	out := make([]string, len(removed))
	copy(out, removed)
	return out
}

// reconstruct joins retained text in reading order (page, then
// top-to-bottom, then left-to-right) and scrubs the result.
func reconstruct(kept []piece) string {
	ordered := make([]piece, len(kept))
	copy(ordered, kept)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].span, ordered[j].span
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		return a.BBox.X0 < b.BBox.X0
	})

	parts := make([]string, 0, len(ordered))
	for _, p := range ordered {
		parts = append(parts, p.text)
	}
	return scrub(strings.Join(parts, " "))
}

// scrub normalizes to NFKC and strips format, private-use, and control
// characters, keeping common whitespace.
func scrub(text string) string {
	normalized := norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if shouldRemove(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func shouldRemove(r rune) bool {
	if r == '\n' || r == '\t' || r == '\r' || r == ' ' {
		return false
	}
	return unicode.In(r, unicode.Cf, unicode.Co, unicode.Cc)
}
