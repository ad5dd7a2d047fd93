// Package serve exposes the analysis pipeline as MCP tools so agent
// hosts can gate documents before forwarding their text to a model.
// Stdio is the default transport; the HTTP runner is opt-in config.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veilscan/veilscan/src/config"
)

// Version is the server version reported to MCP clients.
const Version = "0.2.0"

// Server wraps an MCP server with the scan and clean tools registered.
type Server struct {
	mcpServer *mcp.Server
	cfg       config.ServeConfig
	logger    *slog.Logger
}

// New creates a Server with tools wired to the given settings.
func New(cfg config.Config, logger *slog.Logger) *Server {
	srv := mcp.NewServer(
		&mcp.Implementation{
			Name:    "veilscan",
			Version: Version,
		},
		&mcp.ServerOptions{Logger: logger},
	)

	registerTools(srv, cfg, logger)

	return &Server{
		mcpServer: srv,
		cfg:       cfg.Serve,
		logger:    logger.With("area", "serve"),
	}
}

// Run starts the server on the configured transport and blocks until ctx
// is cancelled or the transport closes.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportStdio:
		return s.runStdio(ctx)
	case config.TransportHTTP:
		return s.runHTTP(ctx)
	default:
		return fmt.Errorf("unsupported serve transport: %s", s.cfg.Transport)
	}
}

func (s *Server) runStdio(ctx context.Context) error {
	s.logger.Info("starting stdio transport")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) runHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return s.mcpServer },
		&mcp.StreamableHTTPOptions{Logger: s.logger},
	)

	mux := http.NewServeMux()
	mux.Handle(s.cfg.HTTP.Path, handler)

	ln, err := net.Listen("tcp", s.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.HTTP.Addr, err)
	}
	s.logger.Info("starting HTTP transport", "addr", ln.Addr(), "path", s.cfg.HTTP.Path)

	srv := &http.Server{Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
