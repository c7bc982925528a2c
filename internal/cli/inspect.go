package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/towerbench/internal/presentation/graph"
	"github.com/aretw0/towerbench/pkg/config"
	"github.com/aretw0/towerbench/pkg/domain"
)

// Inspect output formats.
const (
	FormatReport  = "report"
	FormatMermaid = "mermaid"
	FormatJSON    = "json"
)

// InspectOptions selects a stored session and how to show it.
type InspectOptions struct {
	Config    config.Config
	SessionID string
	Format    string
	Out       io.Writer
}

// Inspect prints a persisted session.
func Inspect(ctx context.Context, opts InspectOptions) error {
	st, err := createStore(opts.Config.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := st.Store.Load(ctx, opts.SessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %q: %w", opts.SessionID, err)
	}

	switch opts.Format {
	case "", FormatReport:
		renderReport(opts.Out, []*domain.Session{s}, opts.Config.Model)
	case FormatMermaid:
		engine, err := createEngine(ctx, opts.Config, createLogger(false), false, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		initial, err := engine.Puzzle().InitialState(s.Size)
		if err != nil {
			return err
		}
		fmt.Fprint(opts.Out, graph.GenerateMermaid(initial, s))
	case FormatJSON:
		enc := json.NewEncoder(opts.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	default:
		return fmt.Errorf("unknown format %q (use %s, %s or %s)", opts.Format, FormatReport, FormatMermaid, FormatJSON)
	}
	return nil
}

// ListSessions prints the IDs of persisted sessions.
func ListSessions(ctx context.Context, cfg config.Config, out io.Writer) error {
	st, err := createStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	ids, err := st.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		printSystemMessage(out, "No sessions found.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}
