package towerbench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/towerbench/internal/runtime"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/prompt"
	"github.com/aretw0/towerbench/pkg/puzzle"
)

// Engine is the high-level entry point for the towerbench library.
// It wraps the session controller, the window manager and the prompt templates.
// An Engine holds no per-episode state and is safe for concurrent use.
type Engine struct {
	controller *runtime.Controller
	puzzle     puzzle.Puzzle
	templates  *prompt.Templates
	limits     domain.Limits
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	clock      func() time.Time
	puzzleName string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithPuzzle selects the puzzle variant by name (default: tower_of_hanoi).
func WithPuzzle(name string) Option {
	return func(e *Engine) {
		e.puzzleName = name
	}
}

// WithLimits sets the termination policy.
func WithLimits(limits domain.Limits) Option {
	return func(e *Engine) {
		e.limits = limits
	}
}

// WithTemplates overrides the built-in prompt templates.
func WithTemplates(t *prompt.Templates) Option {
	return func(e *Engine) {
		e.templates = t
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source for transcript timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.clock = now
	}
}

// New initializes an Engine. It fails with domain.ErrInvalidConfiguration for an
// unknown puzzle or out-of-range limits.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		limits:     domain.DefaultLimits(),
		puzzleName: string(puzzle.Default),
	}
	for _, opt := range opts {
		opt(eng)
	}

	p, err := puzzle.New(eng.puzzleName)
	if err != nil {
		return nil, err
	}
	eng.puzzle = p

	if err := eng.limits.Validate(); err != nil {
		return nil, err
	}
	if eng.templates == nil {
		eng.templates = prompt.Default()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	eng.logger = eng.logger.With("puzzle", p.Name())

	eng.controller = runtime.NewController(p, eng.limits,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithClock(eng.clock),
	)
	return eng, nil
}

// Start creates a running session for a puzzle of the given size.
func (e *Engine) Start(ctx context.Context, sessionID string, size int) (*domain.Session, error) {
	return e.controller.Start(ctx, sessionID, size)
}

// Submit plays raw agent output as one turn. The returned session is a new snapshot.
func (e *Engine) Submit(ctx context.Context, s *domain.Session, response string) (*domain.Session, error) {
	return e.controller.SubmitResponse(ctx, s, response)
}

// SubmitMoves plays an already structured batch as one turn.
func (e *Engine) SubmitMoves(ctx context.Context, s *domain.Session, batch domain.MoveBatch) (*domain.Session, error) {
	return e.controller.Submit(ctx, s, batch)
}

// Terminate ends a running session with a timeout or agent failure.
func (e *Engine) Terminate(ctx context.Context, s *domain.Session, status domain.Status, reason string) (*domain.Session, error) {
	return e.controller.Terminate(ctx, s, status, reason)
}

// Rules renders the instruction header an episode of the given size would receive.
func (e *Engine) Rules(size int) (string, error) {
	if _, err := e.puzzle.InitialState(size); err != nil {
		return "", err
	}
	optimal := e.puzzle.OptimalMoveCount(size)
	return e.templates.System(prompt.SystemData{
		Puzzle:     e.puzzle.Name(),
		Size:       size,
		MoveFormat: e.puzzle.MoveFormat(),
		MaxBatch:   domain.MaxBatchSize,
		TurnLimit:  domain.Budget(e.limits.TurnLimitMultiplier, optimal),
		MoveLimit:  domain.Budget(e.limits.MoveLimitMultiplier, optimal),
		WindowSize: e.limits.WindowSize,
	})
}

// Window computes the prompt for the session's next turn.
func (e *Engine) Window(s *domain.Session) (domain.Window, error) {
	system, err := e.templates.System(prompt.SystemData{
		Puzzle:     s.Puzzle,
		Size:       s.Size,
		MoveFormat: e.puzzle.MoveFormat(),
		MaxBatch:   domain.MaxBatchSize,
		TurnLimit:  s.TurnLimit,
		MoveLimit:  s.MoveLimit,
		WindowSize: e.windowSize(s),
	})
	if err != nil {
		return domain.Window{}, err
	}

	data := prompt.TurnData{
		Progress:       prompt.Progress(s.Turn + 1),
		CurrentState:   e.puzzle.Render(s.State),
		MoveFormat:     e.puzzle.MoveFormat(),
		Turn:           s.Turn + 1,
		TurnLimit:      s.TurnLimit,
		MovesAttempted: s.MovesAttempted,
		MoveLimit:      s.MoveLimit,
	}
	if last, ok := s.LastTurn(); ok && last.Error != nil {
		data.ErrorMessage = fmt.Sprintf("Previous move was invalid: %s", last.Error)
	}
	current, err := e.templates.UserTurn(data)
	if err != nil {
		return domain.Window{}, err
	}

	return runtime.ComputeWindow(s.Transcript, e.windowSize(s),
		domain.Message{Role: domain.RoleSystem, Content: system},
		domain.Message{Role: domain.RoleUser, Content: current},
	), nil
}

func (e *Engine) windowSize(s *domain.Session) int {
	if s.Limits.WindowSize > 0 {
		return s.Limits.WindowSize
	}
	return e.limits.WindowSize
}

// Result summarizes a session for reporting.
func (e *Engine) Result(s *domain.Session) domain.Result {
	return domain.NewResult(s)
}

// Render describes the session's current puzzle state.
func (e *Engine) Render(s *domain.Session) string {
	return e.puzzle.Render(s.State)
}

// Puzzle returns the selected variant.
func (e *Engine) Puzzle() puzzle.Puzzle {
	return e.puzzle
}

// Limits returns the configured termination policy.
func (e *Engine) Limits() domain.Limits {
	return e.limits
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
