// Package analyze wires the classifier, injection matcher, and risk
// aggregator into the single-document analysis pipeline. Each call is a
// pure, synchronous computation over the caller's spans; the analyzer
// holds no mutable state, so documents may be analyzed concurrently from
// independent goroutines without locking.
package analyze

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/veilscan/veilscan/src/config"
	"github.com/veilscan/veilscan/src/injection"
	"github.com/veilscan/veilscan/src/risk"
	"github.com/veilscan/veilscan/src/span"
	"github.com/veilscan/veilscan/src/visibility"
)

// Result is the full output of one analysis run: one verdict per span
// plus the document-level assessment. Owned solely by the caller; never
// shared or cached across documents.
type Result struct {
	// ID identifies this analysis run in logs and downstream reports.
	ID         uuid.UUID
	Source     string
	Verdicts   []visibility.Verdict
	Assessment risk.Assessment
}

// Analyzer runs the span pipeline with configured thresholds.
type Analyzer struct {
	classifier  *visibility.Classifier
	aggregator  *risk.Aggregator
	scanAllText bool
	logger      *slog.Logger
}

// New creates an Analyzer from settings.
func New(cfg config.Config, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		classifier:  visibility.New(cfg.VisibilityThresholds()),
		aggregator:  risk.New(cfg.RiskThresholds()),
		scanAllText: *cfg.Scan.AllText,
		logger:      logger.With("area", "analyze"),
	}
}

// Analyze classifies every span, scans the relevant text for injection
// patterns, and aggregates the document-level assessment.
func (a *Analyzer) Analyze(doc *span.Document) Result {
	verdicts := make([]visibility.Verdict, 0, len(doc.Spans))
	for i := range doc.Spans {
		s := &doc.Spans[i]
		verdicts = append(verdicts, a.classifier.Classify(s, doc.Geometry(s.Page)))
	}

	matched := injection.Scan(a.scanText(verdicts))
	assessment := a.aggregator.Aggregate(verdicts, matched)

	result := Result{
		ID:         uuid.New(),
		Source:     doc.Source,
		Verdicts:   verdicts,
		Assessment: assessment,
	}

	a.logger.Info("analysis complete",
		"analysis_id", result.ID,
		"source", doc.Source,
		"total_spans", assessment.TotalSpans,
		"hidden_spans", assessment.HiddenSpans,
		"risk_level", assessment.Level.String(),
		"risk_score", assessment.Score,
		"prompt_injection", assessment.PromptInjection,
	)

	return result
}

// scanText builds the matcher input: hidden-span text by default, the
// whole document when configured. Hidden text is the attack channel; the
// all-text mode exists for callers that also want visible phrasings
// surfaced.
func (a *Analyzer) scanText(verdicts []visibility.Verdict) string {
	var b strings.Builder
	for _, v := range verdicts {
		if !a.scanAllText && !v.Hidden {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(v.Span.Text)
	}
	return b.String()
}
