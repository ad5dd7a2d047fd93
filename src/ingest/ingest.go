// Package ingest loads normalized span documents produced by extraction
// collaborators. Extraction itself (PDF/DOCX parsing, OCR) lives outside
// this repository; ingest consumes the span JSON those tools emit.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/veilscan/veilscan/src/span"
)

// Load reads a span document from path. "-" reads stdin.
func Load(path string) (*span.Document, error) {
	if path == "-" {
		return decode(os.Stdin, "stdin")
	}

	if err := checkFormat(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document %s: %w", path, err)
	}
	defer f.Close()

	return decode(f, path)
}

// checkFormat rejects raw document formats with a pointer at the
// extraction step. Only normalized span JSON is accepted here.
func checkFormat(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", "":
		return nil
	case ".pdf", ".docx", ".doc":
		return fmt.Errorf("%s is a raw document; run it through a span extractor and pass the resulting spans JSON", path)
	default:
		return fmt.Errorf("unsupported input format %q (expected spans JSON)", filepath.Ext(path))
	}
}

func decode(r io.Reader, source string) (*span.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return Parse(data, source)
}

// Parse decodes and validates a span document from raw JSON. The source
// label is used in errors and as the document source when the JSON does
// not carry one.
func Parse(data []byte, source string) (*span.Document, error) {
	var doc span.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing spans from %s: %w", source, err)
	}
	if doc.Source == "" {
		doc.Source = source
	}

	if err := validate(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	return &doc, nil
}

func validate(doc *span.Document) error {
	for i, s := range doc.Spans {
		if s.Page < 1 {
			return fmt.Errorf("span %d: page numbers are 1-indexed, got %d", i, s.Page)
		}
	}
	for page, geom := range doc.Pages {
		if geom.Width <= 0 || geom.Height <= 0 {
			return fmt.Errorf("page %d: geometry must be positive, got %gx%g", page, geom.Width, geom.Height)
		}
	}
	return nil
}
