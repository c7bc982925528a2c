package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/towerbench"
	"github.com/aretw0/towerbench/internal/presentation/report"
	"github.com/aretw0/towerbench/internal/presentation/tui"
	"github.com/aretw0/towerbench/pkg/config"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/observability"
	"github.com/aretw0/towerbench/pkg/runner"
)

// ResultsFileName is the name of the file written to the output directory.
const ResultsFileName = "results.json"

// ExperimentOptions configures an evaluation run.
type ExperimentOptions struct {
	Config config.Config
	Debug  bool
	// Out receives the markdown report. Nil discards it.
	Out io.Writer
}

// EpisodeRecord is one episode in the results file.
type EpisodeRecord struct {
	Result     domain.Result       `json:"result"`
	Transcript []domain.TurnRecord `json:"transcript"`
}

// Results is the document written to results.json.
type Results struct {
	Version     string                `json:"version"`
	Model       string                `json:"model"`
	GeneratedAt time.Time             `json:"generated_at"`
	Config      config.Config         `json:"config"`
	Summary     observability.Summary `json:"summary"`
	Episodes    []EpisodeRecord       `json:"episodes"`
	Error       string                `json:"error,omitempty"`
}

// RunExperiment plays one episode per configured size and writes results.json.
// Partial results are still written when the batch is interrupted.
func RunExperiment(ctx context.Context, opts ExperimentOptions) (*Results, string, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	logger := createLogger(opts.Debug)

	agg := observability.NewAggregator()
	engine, err := createEngine(ctx, cfg, logger, opts.Debug, agg.Hooks())
	if err != nil {
		return nil, "", err
	}

	st, err := createStore(cfg.Store)
	if err != nil {
		return nil, "", err
	}
	defer st.Close()

	newAgent, err := createAgentFactory(cfg, logger)
	if err != nil {
		return nil, "", err
	}

	r := runner.New(engine, nil,
		runner.WithStore(st.Store),
		runner.WithLogger(logger),
	)
	sessions, runErr := r.RunBatch(ctx, cfg.PuzzleSizes, cfg.Concurrency, runner.AgentFactory(newAgent))

	results := buildResults(cfg, agg, sessions, runErr)
	path, err := writeResults(cfg.OutputDir, results)
	if err != nil {
		return results, "", err
	}

	if opts.Out != nil {
		renderReport(opts.Out, sessions, cfg.Model)
		printSystemMessage(opts.Out, "Results written to %s", path)
	}
	return results, path, runErr
}

func buildResults(cfg config.Config, agg *observability.Aggregator, sessions []*domain.Session, runErr error) *Results {
	results := &Results{
		Version:     towerbench.Version,
		Model:       cfg.Model,
		GeneratedAt: time.Now().UTC(),
		Config:      cfg,
		Summary:     agg.Summary(),
		Episodes:    make([]EpisodeRecord, 0, len(sessions)),
	}
	for _, s := range sessions {
		if s == nil {
			continue
		}
		results.Episodes = append(results.Episodes, EpisodeRecord{
			Result:     domain.NewResult(s),
			Transcript: s.Transcript,
		})
	}
	if runErr != nil {
		results.Error = runErr.Error()
	}
	return results
}

func writeResults(dir string, results *Results) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}
	path := filepath.Join(dir, ResultsFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write results: %w", err)
	}
	return path, nil
}

func renderReport(w io.Writer, sessions []*domain.Session, model string) {
	md := report.Markdown(sessions, report.Options{Model: model, Tail: report.DefaultTail})
	render := tui.NewPlainRenderer()
	if isTerminal(w) {
		render = tui.NewRenderer()
	}
	out, err := render(md)
	if err != nil {
		out = md
	}
	fmt.Fprint(w, out)
}
