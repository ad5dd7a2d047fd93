// Package cli implements the veilscan command set. Scan exit codes
// follow the gate contract: 1 safe, 2 suspicious, 3 error/indeterminate,
// so a calling pipeline can branch on the code alone.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	logger "github.com/Easy-Infra-Ltd/easy-logger"
	"github.com/spf13/cobra"

	"github.com/veilscan/veilscan/src/config"
	"github.com/veilscan/veilscan/src/report"
)

// Version is the CLI version string.
const Version = "0.2.0"

// defaultSettingsFile is picked up from the working directory when
// --config is not given.
const defaultSettingsFile = "settings.yaml"

var (
	log     *slog.Logger
	cfgPath string
)

// Execute runs the root command. It does not return on scan/clean
// completion; handlers exit with their mapped codes.
func Execute() {
	log = logger.CreateLoggerFromEnv(nil, "blue").With("process", "veilscan")

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(report.ExitError)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "veilscan",
		Short:         "Detect text hidden from human readers before it reaches an LLM",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to settings.yaml")

	root.AddCommand(newScanCmd())
	root.AddCommand(newCleanCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the veilscan version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Printf("veilscan %s\n", Version)
		},
	}
}

// loadSettings resolves configuration: the --config path when given, a
// settings.yaml in the working directory when present, defaults
// otherwise.
func loadSettings() (config.Config, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	if _, err := os.Stat(defaultSettingsFile); err == nil {
		return config.Load(defaultSettingsFile)
	}
	return config.Default(), nil
}
