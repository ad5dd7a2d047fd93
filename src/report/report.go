// Package report renders risk assessments for presentation layers: the
// frozen JSON response schema, the CLI text report, and the process exit
// code mapping.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/veilscan/veilscan/src/risk"
)

// Process exit codes for the scan surface.
const (
	ExitSafe       = 1
	ExitSuspicious = 2
	ExitError      = 3
)

// Document statuses in the JSON response.
const (
	StatusSafe       = "safe"
	StatusSuspicious = "suspicious"
)

// Issue is one hidden span in the JSON response.
type Issue struct {
	Page     int      `json:"page"`
	Text     string   `json:"text"`
	Severity string   `json:"severity"`
	Reasons  []string `json:"reasons"`
}

// Response is the frozen JSON schema consumed by presentation layers.
// Field names and shapes must not change between releases.
type Response struct {
	Status            string   `json:"status"`
	RiskScore         int      `json:"risk_score"`
	RiskLevel         string   `json:"risk_level"`
	TotalSpans        int      `json:"total_spans"`
	HiddenSpans       int      `json:"hidden_spans"`
	Issues            []Issue  `json:"issues"`
	PromptInjection   bool     `json:"prompt_injection"`
	InjectionPatterns []string `json:"prompt_injection_patterns"`
}

// New builds a Response from an assessment.
func New(a risk.Assessment) Response {
	status := StatusSafe
	if a.HiddenSpans > 0 || a.PromptInjection {
		status = StatusSuspicious
	}

	issues := make([]Issue, 0, len(a.Issues))
	for _, is := range a.Issues {
		issues = append(issues, Issue{
			Page:     is.Page,
			Text:     is.Text,
			Severity: is.Category.String(),
			Reasons:  is.Reasons,
		})
	}

	patterns := a.Patterns
	if patterns == nil {
		patterns = []string{}
	}

	return Response{
		Status:            status,
		RiskScore:         a.Score,
		RiskLevel:         a.Level.String(),
		TotalSpans:        a.TotalSpans,
		HiddenSpans:       a.HiddenSpans,
		Issues:            issues,
		PromptInjection:   a.PromptInjection,
		InjectionPatterns: patterns,
	}
}

// ExitCode maps the response to the scan exit code: 1 safe, 2 suspicious.
// Errors never reach a Response; the CLI maps them to 3 directly.
func (r Response) ExitCode() int {
	if r.Status == StatusSafe {
		return ExitSafe
	}
	return ExitSuspicious
}

// maxReportedPages bounds the per-page location listing in text reports.
const maxReportedPages = 10

// WriteText renders the human-readable scan report.
func WriteText(w io.Writer, source string, a risk.Assessment) {
	if a.HiddenSpans == 0 && !a.PromptInjection {
		fmt.Fprintln(w, "SAFE")
		fmt.Fprintf(w, "Document: %s\n", source)
		fmt.Fprintln(w, "Status: No hidden text detected")
		fmt.Fprintf(w, "Total spans analyzed: %d\n", a.TotalSpans)
		return
	}

	fmt.Fprintln(w, "SUSPICIOUS")
	fmt.Fprintf(w, "Document: %s\n", source)
	fmt.Fprintln(w, "Reason: Hidden text detected")
	fmt.Fprintf(w, "Risk Score: %d/100 (%s)\n", a.Score, a.Level)
	fmt.Fprintf(w, "Hidden spans: %d out of %d total\n", a.HiddenSpans, a.TotalSpans)

	writeLocations(w, a.Issues)

	if a.PromptInjection {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "[!] WARNING: Possible attack patterns detected!")
		fmt.Fprintf(w, "    Found %d suspicious pattern(s)\n", len(a.Patterns))
		for _, id := range a.Patterns {
			fmt.Fprintf(w, "    - %s\n", id)
		}
	}
}

func writeLocations(w io.Writer, issues []risk.Issue) {
	if len(issues) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Hidden text locations:")

	// Issues arrive grouped by ascending page; walk the groups.
	printed := 0
	for start := 0; start < len(issues); {
		page := issues[start].Page
		end := start
		for end < len(issues) && issues[end].Page == page {
			end++
		}

		if printed == maxReportedPages {
			fmt.Fprintf(w, "  ... and %d more page(s)\n", countPages(issues[start:]))
			return
		}
		printed++

		group := issues[start:end]
		fmt.Fprintf(w, "  Page %d: %d hidden span(s) [%s]\n", page, len(group), worstCategory(group))

		example := group[0]
		fmt.Fprintf(w, "    Text: '%s'\n", preview(example.Text))
		if len(example.Reasons) > 0 {
			fmt.Fprintf(w, "    Why: %s\n", strings.Join(example.Reasons, ", "))
		}

		start = end
	}
}

func worstCategory(group []risk.Issue) string {
	worst := group[0].Category
	for _, is := range group[1:] {
		if is.Category > worst {
			worst = is.Category
		}
	}
	return worst.String()
}

func countPages(issues []risk.Issue) int {
	n := 0
	last := -1
	for _, is := range issues {
		if is.Page != last {
			n++
			last = is.Page
		}
	}
	return n
}

func preview(text string) string {
	if len(text) > 50 {
		return text[:50] + "..."
	}
	return text
}
