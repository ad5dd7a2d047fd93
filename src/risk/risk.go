// Package risk aggregates per-span visibility verdicts into a single
// document-level assessment. Severity weights and score bands are data
// tables rather than control flow so boundary values stay testable.
package risk

import (
	"math"
	"sort"

	"github.com/veilscan/veilscan/src/visibility"
)

// Level is the five-point document-level severity classification.
type Level int

const (
	Safe Level = iota
	Low
	Medium
	High
	Critical
)

func (l Level) String() string {
	switch l {
	case Safe:
		return "SAFE"
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// categoryWeights is the per-span severity contribution by primary
// category. Visible spans contribute nothing.
var categoryWeights = map[visibility.Category]int{
	visibility.Invisible:   15,
	visibility.Microscopic: 12,
	visibility.Offscreen:   10,
	visibility.LowContrast: 6,
	visibility.Small:       4,
}

// scoreBands maps score ranges to levels. Bands are checked in order
// against the band's upper bound.
var scoreBands = []struct {
	max   int
	level Level
}{
	{0, Safe},
	{29, Low},
	{59, Medium},
	{84, High},
	{100, Critical},
}

// Score floors applied as lower bounds, never decreasing a higher
// weighted score.
const (
	injectionFloor = 70 // any pattern match, the dominant rule
	invisibleFloor = 60 // repeated invisible spans
	hiddenFloor    = 30 // many hidden spans of any kind
)

// Config holds the span-count thresholds for the floor bumps.
type Config struct {
	// InvisibleSpanThreshold is the number of INVISIBLE-classified spans
	// at which the score is floored into the HIGH band.
	InvisibleSpanThreshold int
	// SuspiciousSpanThreshold is the number of hidden spans of any
	// category at which the score is floored into the MEDIUM band.
	SuspiciousSpanThreshold int
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		InvisibleSpanThreshold:  2,
		SuspiciousSpanThreshold: 5,
	}
}

// Issue is one hidden span surfaced in the document report.
type Issue struct {
	Page     int
	Category visibility.Category
	Text     string
	Reasons  []string
}

// Assessment is the document-level trust verdict. It is built once per
// analysis run and never mutated afterwards.
type Assessment struct {
	Score       int
	Level       Level
	TotalSpans  int
	HiddenSpans int
	// Issues lists every hidden span grouped by ascending page,
	// preserving original span order within a page.
	Issues []Issue
	// Patterns are the matched prompt-injection pattern IDs, in catalog
	// order.
	Patterns        []string
	PromptInjection bool
}

// Aggregator computes assessments with configured thresholds. Stateless
// and safe for concurrent use.
type Aggregator struct {
	cfg Config
}

// New creates an Aggregator with the given thresholds.
func New(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate folds all span verdicts and the matcher's pattern IDs into an
// assessment. Identical inputs always produce identical output. An empty
// verdict list yields a zero-count SAFE assessment: an empty document is
// vacuously safe, not an error.
func (a *Aggregator) Aggregate(verdicts []visibility.Verdict, matched []string) Assessment {
	if len(verdicts) == 0 {
		return Assessment{Level: Safe}
	}

	hidden := 0
	invisible := 0
	weighted := 0
	for _, v := range verdicts {
		if !v.Hidden {
			continue
		}
		hidden++
		if v.Category == visibility.Invisible {
			invisible++
		}
		weighted += categoryWeights[v.Category]
	}
	if weighted > 100 {
		weighted = 100
	}

	// Scale the capped weight sum by how much of the document is hidden;
	// a handful of weak hits in a large document should not score like a
	// document that is mostly hidden text.
	ratio := float64(hidden) / float64(len(verdicts))
	score := int(math.Round(float64(weighted) * (0.5 + 0.5*ratio)))

	if invisible >= a.cfg.InvisibleSpanThreshold && score < invisibleFloor {
		score = invisibleFloor
	}
	if hidden >= a.cfg.SuspiciousSpanThreshold && score < hiddenFloor {
		score = hiddenFloor
	}
	if len(matched) > 0 && score < injectionFloor {
		score = injectionFloor
	}
	if score > 100 {
		score = 100
	}

	return Assessment{
		Score:           score,
		Level:           levelFor(score),
		TotalSpans:      len(verdicts),
		HiddenSpans:     hidden,
		Issues:          buildIssues(verdicts),
		Patterns:        matched,
		PromptInjection: len(matched) > 0,
	}
}

func levelFor(score int) Level {
	for _, band := range scoreBands {
		if score <= band.max {
			return band.level
		}
	}
	return Critical
}

func buildIssues(verdicts []visibility.Verdict) []Issue {
	byPage := make(map[int][]Issue)
	for _, v := range verdicts {
		if !v.Hidden {
			continue
		}
		byPage[v.Span.Page] = append(byPage[v.Span.Page], Issue{
			Page:     v.Span.Page,
			Category: v.Category,
			Text:     v.Span.Text,
			Reasons:  v.Reasons,
		})
	}
	if len(byPage) == 0 {
		return nil
	}

	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	var issues []Issue
	for _, p := range pages {
		issues = append(issues, byPage[p]...)
	}
	return issues
}
