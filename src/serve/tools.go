package serve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veilscan/veilscan/src/analyze"
	"github.com/veilscan/veilscan/src/config"
	"github.com/veilscan/veilscan/src/ingest"
	"github.com/veilscan/veilscan/src/report"
	"github.com/veilscan/veilscan/src/sanitize"
)

// MetadataScanSpans describes the scan_spans tool.
var MetadataScanSpans = &mcp.Tool{
	Name: "scan_spans",
	Description: "Analyze extracted document spans for text hidden from human readers " +
		"(invisible colors, microscopic fonts, offscreen placement) and for known " +
		"prompt-injection phrasings. Returns a document-level risk assessment with " +
		"per-span issues. Input is the normalized span JSON produced by a document " +
		"extractor, not a raw PDF/DOCX.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"spans_json"},
		"properties": map[string]interface{}{
			"spans_json": map[string]interface{}{
				"type":        "string",
				"description": "Span document JSON: {source?, pages?, spans: [{text, page, bbox, font_size?, font_color?, background_color?}]}",
			},
			"source": map[string]interface{}{
				"type":        "string",
				"description": "Optional document identifier used in the report.",
			},
		},
	},
}

// InputScanSpans is the input for the scan_spans tool.
type InputScanSpans struct {
	SpansJSON string `json:"spans_json"`
	Source    string `json:"source"`
}

// MetadataCleanSpans describes the clean_spans tool.
var MetadataCleanSpans = &mcp.Tool{
	Name: "clean_spans",
	Description: "Produce LLM-safe text from extracted document spans by stripping or " +
		"flagging hidden content. Strategy: strip removes hidden text, flag keeps " +
		"mildly hidden text with a marker, preserve keeps everything. When omitted, " +
		"the strategy adapts to the document's risk level.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"spans_json"},
		"properties": map[string]interface{}{
			"spans_json": map[string]interface{}{
				"type":        "string",
				"description": "Span document JSON, same shape as scan_spans.",
			},
			"strategy": map[string]interface{}{
				"type":        "string",
				"description": "Sanitization strategy. Adaptive when omitted.",
				"enum":        []string{"strip", "flag", "preserve"},
			},
		},
	},
}

// InputCleanSpans is the input for the clean_spans tool.
type InputCleanSpans struct {
	SpansJSON string `json:"spans_json"`
	Strategy  string `json:"strategy"`
}

// OutputCleanSpans is the output for the clean_spans tool.
type OutputCleanSpans struct {
	Strategy       string   `json:"strategy"`
	OriginalSpans  int      `json:"original_spans"`
	KeptSpans      int      `json:"kept_spans"`
	RemovedSpans   int      `json:"removed_spans"`
	FlaggedSpans   int      `json:"flagged_spans"`
	RemovedSamples []string `json:"removed_samples,omitempty"`
	SafeText       string   `json:"safe_text"`
}

func registerTools(srv *mcp.Server, cfg config.Config, logger *slog.Logger) {
	analyzer := analyze.New(cfg, logger)
	sanitizer := sanitize.New(cfg.SanitizeSettings())

	mcp.AddTool(srv, MetadataScanSpans, scanHandler(analyzer))
	mcp.AddTool(srv, MetadataCleanSpans, cleanHandler(analyzer, sanitizer))
}

func scanHandler(analyzer *analyze.Analyzer) func(context.Context, *mcp.CallToolRequest, InputScanSpans) (*mcp.CallToolResult, report.Response, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, input InputScanSpans) (*mcp.CallToolResult, report.Response, error) {
		if input.SpansJSON == "" {
			return nil, report.Response{}, fmt.Errorf("spans_json is required")
		}

		source := input.Source
		if source == "" {
			source = "mcp-client"
		}

		doc, err := ingest.Parse([]byte(input.SpansJSON), source)
		if err != nil {
			return nil, report.Response{}, err
		}

		result := analyzer.Analyze(doc)
		return nil, report.New(result.Assessment), nil
	}
}

func cleanHandler(analyzer *analyze.Analyzer, sanitizer *sanitize.Sanitizer) func(context.Context, *mcp.CallToolRequest, InputCleanSpans) (*mcp.CallToolResult, OutputCleanSpans, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, input InputCleanSpans) (*mcp.CallToolResult, OutputCleanSpans, error) {
		if input.SpansJSON == "" {
			return nil, OutputCleanSpans{}, fmt.Errorf("spans_json is required")
		}

		doc, err := ingest.Parse([]byte(input.SpansJSON), "mcp-client")
		if err != nil {
			return nil, OutputCleanSpans{}, err
		}

		result := analyzer.Analyze(doc)

		strategy := sanitize.Strategy(input.Strategy)
		if input.Strategy == "" {
			strategy = sanitizer.ChooseStrategy(result.Assessment.Level)
		} else if strategy, err = sanitize.ParseStrategy(input.Strategy); err != nil {
			return nil, OutputCleanSpans{}, err
		}

		rep := sanitizer.Sanitize(result.Verdicts, strategy)
		return nil, OutputCleanSpans{
			Strategy:       string(rep.Strategy),
			OriginalSpans:  rep.OriginalCount,
			KeptSpans:      rep.KeptCount,
			RemovedSpans:   rep.RemovedCount,
			FlaggedSpans:   rep.FlaggedCount,
			RemovedSamples: rep.RemovedSamples,
			SafeText:       rep.SafeText,
		}, nil
	}
}
