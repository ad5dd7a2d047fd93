package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veilscan/veilscan/src/serve"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Expose scan and clean as MCP tools (stdio by default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting MCP server", "transport", cfg.Serve.Transport)
	return serve.New(cfg, log).Run(ctx)
}
