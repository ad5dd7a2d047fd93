package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veilscan/veilscan/src/analyze"
	"github.com/veilscan/veilscan/src/ingest"
	"github.com/veilscan/veilscan/src/report"
)

var (
	scanJSON    bool
	scanVerbose bool
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <spans.json>",
		Short: "Scan a span document for hidden text and injection patterns",
		Long: "Scan analyzes a normalized span document (the JSON emitted by a " +
			"document extractor) and reports whether any text would be invisible " +
			"to a human reader.\n\n" +
			"Exit codes:\n" +
			"  1  SAFE: no hidden text, no injection patterns\n" +
			"  2  SUSPICIOUS: hidden text or injection patterns found\n" +
			"  3  error/indeterminate",
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().BoolVar(&scanJSON, "json", false, "emit the JSON report instead of text")
	cmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "show per-span detail")

	return cmd
}

func runScan(_ *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	doc, err := ingest.Load(args[0])
	if err != nil {
		return err
	}

	result := analyze.New(cfg, log).Analyze(doc)
	resp := report.New(result.Assessment)

	if scanJSON {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Println(string(out))
		os.Exit(resp.ExitCode())
	}

	if scanVerbose {
		fmt.Printf("Extracted %d text spans\n", len(doc.Spans))
	}
	report.WriteText(os.Stdout, doc.Source, result.Assessment)

	if scanVerbose {
		writeVerdictDetail(result)
	}

	os.Exit(resp.ExitCode())
	return nil
}

func writeVerdictDetail(result analyze.Result) {
	fmt.Println()
	fmt.Println("Per-span verdicts:")
	for _, v := range result.Verdicts {
		if !v.Hidden && len(v.Reasons) == 0 {
			continue
		}
		fmt.Printf("  [%s] %s\n", v.Category, v.Span)
		for _, r := range v.Reasons {
			fmt.Printf("      - %s\n", r)
		}
	}
}
