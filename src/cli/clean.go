package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veilscan/veilscan/src/analyze"
	"github.com/veilscan/veilscan/src/ingest"
	"github.com/veilscan/veilscan/src/sanitize"
)

var (
	cleanOutput   string
	cleanStrategy string
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <spans.json>",
		Short: "Remove or flag hidden text and emit LLM-safe output",
		Long: "Clean analyzes a span document and reconstructs its text with hidden " +
			"content stripped or flagged. When --strategy is omitted, the strategy " +
			"adapts to the document's risk level (high risk strips, medium flags).",
		Args: cobra.ExactArgs(1),
		RunE: runClean,
	}

	cmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "write cleaned text to file instead of stdout")
	cmd.Flags().StringVar(&cleanStrategy, "strategy", "", "sanitization strategy: strip, flag, or preserve")

	return cmd
}

func runClean(_ *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	doc, err := ingest.Load(args[0])
	if err != nil {
		return err
	}

	result := analyze.New(cfg, log).Analyze(doc)
	sanitizer := sanitize.New(cfg.SanitizeSettings())

	strategy := sanitizer.ChooseStrategy(result.Assessment.Level)
	if cleanStrategy != "" {
		strategy, err = sanitize.ParseStrategy(cleanStrategy)
		if err != nil {
			return err
		}
	}

	rep := sanitizer.Sanitize(result.Verdicts, strategy)

	fmt.Printf("Cleaning: %s\n", doc.Source)
	fmt.Printf("  Strategy: %s\n", rep.Strategy)
	fmt.Printf("  Original: %d spans\n", rep.OriginalCount)
	fmt.Printf("  Removed: %d spans\n", rep.RemovedCount)
	if rep.FlaggedCount > 0 {
		fmt.Printf("  Flagged: %d spans\n", rep.FlaggedCount)
	}
	for i, sample := range rep.RemovedSamples {
		if i == 0 {
			fmt.Println("  Removed text samples:")
		}
		if i == 3 {
			break
		}
		fmt.Printf("    [%d] '%s'\n", i+1, preview(sample))
	}

	if cleanOutput != "" {
		if err := os.WriteFile(cleanOutput, []byte(rep.SafeText), 0o644); err != nil {
			return fmt.Errorf("writing cleaned text: %w", err)
		}
		fmt.Printf("  Output: %s\n", cleanOutput)
		return nil
	}

	fmt.Println()
	fmt.Println("--- Cleaned Text ---")
	fmt.Println(rep.SafeText)
	fmt.Println("--- End ---")
	return nil
}

func preview(text string) string {
	if len(text) > 40 {
		return text[:40] + "..."
	}
	return text
}
