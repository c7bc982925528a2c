package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/towerbench/pkg/adapters/mcp"
	"github.com/aretw0/towerbench/pkg/config"
	"github.com/aretw0/towerbench/pkg/domain"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// MCPOptions configures the MCP server.
type MCPOptions struct {
	Config    config.Config
	Transport string
	Port      int
	Debug     bool
}

// RunMCP exposes the episode tools over MCP.
func RunMCP(ctx context.Context, opts MCPOptions) error {
	cfg := opts.Config
	logger := createLogger(opts.Debug)

	engine, err := createEngine(ctx, cfg, logger, opts.Debug, domain.LifecycleHooks{})
	if err != nil {
		return err
	}
	st, err := createStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := mcp.NewServer(engine, createSessionManager(st, logger), mcp.WithLogger(logger))

	switch opts.Transport {
	case "", TransportStdio:
		return srv.ServeStdio()
	case TransportSSE:
		return srv.ServeSSE(ctx, opts.Port)
	default:
		return fmt.Errorf("unknown transport %q (use %s or %s)", opts.Transport, TransportStdio, TransportSSE)
	}
}
