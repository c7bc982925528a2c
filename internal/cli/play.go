package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/towerbench/internal/presentation/tui"
	"github.com/aretw0/towerbench/pkg/agent"
	"github.com/aretw0/towerbench/pkg/config"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/runner"
)

// PlayOptions configures an interactive episode.
type PlayOptions struct {
	Config    config.Config
	Size      int
	SessionID string
	Debug     bool
	In        io.Reader
	Out       io.Writer
}

// RunPlay lets a human play one episode in the terminal.
func RunPlay(ctx context.Context, opts PlayOptions) (*domain.Session, error) {
	cfg := opts.Config
	logger := createLogger(opts.Debug)

	engine, err := createEngine(ctx, cfg, logger, opts.Debug, domain.LifecycleHooks{})
	if err != nil {
		return nil, err
	}
	st, err := createStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	render := tui.NewPlainRenderer()
	if isTerminal(opts.Out) {
		tui.PrintBanner(opts.Out)
		render = tui.NewRenderer()
	}
	player := agent.NewInteractive(opts.In, opts.Out, agent.WithRenderer(render))

	r := runner.New(engine, player,
		runner.WithStore(st.Store),
		runner.WithLogger(logger),
	)
	s, err := r.Run(ctx, opts.SessionID, opts.Size)
	if s == nil {
		return nil, err
	}

	fmt.Fprintln(opts.Out)
	if last, ok := s.LastTurn(); ok {
		fmt.Fprintln(opts.Out, last.Feedback)
	}
	status := string(s.Status)
	if isTerminal(opts.Out) {
		status = tui.StatusColor(s.Status)
	}
	printSystemMessage(opts.Out, "Episode %s finished: %s after %d turns (%d moves)", s.ID, status, s.Turn, s.MovesAttempted)
	return s, err
}
