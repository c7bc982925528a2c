package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/towerbench/internal/logging"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/puzzle"
)

// Controller drives one episode turn by turn and owns its termination policy.
// It holds only immutable configuration and is safe for concurrent use across sessions.
type Controller struct {
	puzzle puzzle.Puzzle
	limits domain.Limits
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController creates a controller for a puzzle variant and termination policy.
func NewController(p puzzle.Puzzle, limits domain.Limits, opts ...Option) *Controller {
	c := &Controller{
		puzzle: p,
		limits: limits,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Puzzle returns the variant the controller plays.
func (c *Controller) Puzzle() puzzle.Puzzle {
	return c.puzzle
}

// Limits returns the termination policy.
func (c *Controller) Limits() domain.Limits {
	return c.limits
}

// Start creates a running session for a puzzle of the given size.
func (c *Controller) Start(ctx context.Context, sessionID string, size int) (*domain.Session, error) {
	state, err := c.puzzle.InitialState(size)
	if err != nil {
		return nil, err
	}

	optimal := c.puzzle.OptimalMoveCount(size)
	now := c.now()
	s := &domain.Session{
		ID:           sessionID,
		Puzzle:       c.puzzle.Name(),
		Size:         size,
		State:        state,
		Visits:       map[string]int{state.Key(): 1},
		OptimalMoves: optimal,
		TurnLimit:    domain.Budget(c.limits.TurnLimitMultiplier, optimal),
		MoveLimit:    domain.Budget(c.limits.MoveLimitMultiplier, optimal),
		Limits:       c.limits,
		Status:       domain.StatusRunning,
		Transcript:   []domain.TurnRecord{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	c.logger.Debug("episode started",
		"session_id", sessionID,
		"size", size,
		"turn_limit", s.TurnLimit,
		"move_limit", s.MoveLimit,
	)
	if c.hooks.OnEpisodeStart != nil {
		c.hooks.OnEpisodeStart(ctx, &domain.EpisodeEvent{
			EventBase: domain.EventBase{Timestamp: now, Type: domain.EventEpisodeStart, SessionID: sessionID},
			Puzzle:    s.Puzzle,
			Size:      size,
			Status:    s.Status,
		})
	}
	return s, nil
}

// SubmitResponse parses raw agent output and plays it as one turn.
// Unparsable output counts as an invalid attempt rather than an error.
func (c *Controller) SubmitResponse(ctx context.Context, s *domain.Session, response string) (*domain.Session, error) {
	batch, err := c.puzzle.ParseMoves(response)
	if err != nil {
		var moveErr *domain.InvalidMoveError
		if !errors.As(err, &moveErr) {
			moveErr = domain.NewMalformedResponseError(err.Error(), err)
		}
		return c.step(ctx, s, response, nil, moveErr)
	}
	return c.step(ctx, s, response, batch, nil)
}

// Submit plays an already structured batch as one turn.
func (c *Controller) Submit(ctx context.Context, s *domain.Session, batch domain.MoveBatch) (*domain.Session, error) {
	if len(batch) > domain.MaxBatchSize {
		detail := fmt.Sprintf("batch has %d moves, at most %d are allowed", len(batch), domain.MaxBatchSize)
		return c.step(ctx, s, "", batch, domain.NewMalformedResponseError(detail, nil))
	}
	if batch == nil {
		batch = domain.MoveBatch{}
	}
	return c.step(ctx, s, "", batch, nil)
}

// Terminate ends a running session without touching the puzzle state.
// It is used for timeouts and agent failures.
func (c *Controller) Terminate(ctx context.Context, s *domain.Session, status domain.Status, reason string) (*domain.Session, error) {
	if !status.Terminal() {
		return nil, fmt.Errorf("cannot terminate with non-terminal status %q", status)
	}
	if s.Terminated() {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionTerminated, s.Status)
	}

	next := s.Snapshot()
	result := domain.TurnAgentFail
	if status == domain.StatusTimeout {
		result = domain.TurnTimeout
	}
	next.Status = status
	next.Reason = reason

	rec := domain.TurnRecord{
		Turn:     s.Turn + 1,
		Result:   result,
		State:    next.State,
		Status:   status,
		Feedback: "Episode ended: " + reason + ".",
		At:       c.now(),
	}
	return c.commit(ctx, next, rec), nil
}

func (c *Controller) step(ctx context.Context, s *domain.Session, response string, batch domain.MoveBatch, parseErr *domain.InvalidMoveError) (*domain.Session, error) {
	if s.Terminated() {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionTerminated, s.Status)
	}

	next := s.Snapshot()
	rec := domain.TurnRecord{
		Turn:     s.Turn + 1,
		Response: response,
		Batch:    batch,
		At:       c.now(),
	}
	status := domain.StatusRunning
	var reason string

	switch {
	case parseErr != nil:
		rec.Result = domain.TurnMalformed
		rec.Error = parseErr
		fingerprint := "response:" + strings.TrimSpace(response)
		if batch != nil {
			fingerprint = "batch:" + batch.String()
		}
		status, reason = c.recordInvalid(next, parseErr, fingerprint)

	case batch.IsGiveUp():
		rec.Result = domain.TurnGaveUp
		status, reason = domain.StatusGaveUp, "agent submitted an empty move list"

	default:
		applied, err := c.puzzle.ApplyMoves(next.State, batch)
		if err != nil {
			var moveErr *domain.InvalidMoveError
			if !errors.As(err, &moveErr) {
				return nil, fmt.Errorf("failed to apply moves: %w", err)
			}
			rec.Result = domain.TurnInvalid
			rec.Error = moveErr
			status, reason = c.recordInvalid(next, moveErr, "batch:"+batch.String())
			break
		}

		rec.Result = domain.TurnApplied
		next.State = applied
		next.MovesAttempted += len(batch)
		next.SuccessfulMoves += len(batch)
		next.ConsecutiveInvalid = 0
		next.LastInvalid = ""
		key := applied.Key()
		next.Visits[key]++

		switch {
		case c.puzzle.IsSolved(applied):
			status, reason = domain.StatusSolved, "puzzle solved"
		case next.Visits[key] > next.Limits.StateRevisitLimit:
			status = domain.StatusStateRevisitExceeded
			reason = fmt.Sprintf("state %s visited %d times (limit %d)", key, next.Visits[key], next.Limits.StateRevisitLimit)
		}
	}

	next.Turn++
	if status == domain.StatusRunning {
		switch {
		case next.Turn > next.TurnLimit:
			status = domain.StatusTurnLimitExceeded
			reason = fmt.Sprintf("turn limit of %d exceeded", next.TurnLimit)
		case next.MovesAttempted > next.MoveLimit:
			status = domain.StatusMoveLimitExceeded
			reason = fmt.Sprintf("move limit of %d exceeded (%d attempted)", next.MoveLimit, next.MovesAttempted)
		}
	}

	next.Status = status
	next.Reason = reason
	rec.State = next.State
	rec.Status = status
	rec.Feedback = c.feedback(next, rec)

	return c.commit(ctx, next, rec), nil
}

// recordInvalid updates the failure counters. The attempt counter grows by the
// number of moves tried before the failure, or by one for unparsable output.
func (c *Controller) recordInvalid(s *domain.Session, moveErr *domain.InvalidMoveError, fingerprint string) (domain.Status, string) {
	attempted := 1
	if moveErr.Index >= 0 {
		attempted = moveErr.Index + 1
	}
	s.MovesAttempted += attempted
	s.InvalidTurns++

	if s.ConsecutiveInvalid > 0 && s.LastInvalid == fingerprint {
		s.ConsecutiveInvalid++
	} else {
		s.ConsecutiveInvalid = 1
	}
	s.LastInvalid = fingerprint

	if s.ConsecutiveInvalid >= s.Limits.RepeatedInvalidLimit {
		return domain.StatusRepeatedInvalidExceeded,
			fmt.Sprintf("identical invalid submission repeated %d times", s.ConsecutiveInvalid)
	}
	return domain.StatusRunning, ""
}

func (c *Controller) feedback(s *domain.Session, rec domain.TurnRecord) string {
	var b strings.Builder
	switch rec.Result {
	case domain.TurnApplied:
		fmt.Fprintf(&b, "Applied %d move(s). Current state:\n%s", len(rec.Batch), c.puzzle.Render(s.State))
	case domain.TurnInvalid:
		fmt.Fprintf(&b, "Previous move was invalid: %s. The whole batch was discarded and the state is unchanged.", rec.Error)
	case domain.TurnMalformed:
		fmt.Fprintf(&b, "Previous move was invalid: %s. Respond with a move list in the format %s.", rec.Error, c.puzzle.MoveFormat())
	case domain.TurnGaveUp:
		b.WriteString("You gave up.")
	}
	if s.Terminated() {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Episode ended: %s.", s.Reason)
	}
	return b.String()
}

func (c *Controller) commit(ctx context.Context, next *domain.Session, rec domain.TurnRecord) *domain.Session {
	next.Transcript = append(next.Transcript, rec)
	next.UpdatedAt = rec.At

	logger := c.logger.With("session_id", next.ID, "turn", rec.Turn)
	if rec.Error != nil {
		logger.Debug("turn rejected", "result", rec.Result, "reason", rec.Error.Reason, "moves", len(rec.Batch))
	} else {
		logger.Debug("turn completed", "result", rec.Result, "moves", len(rec.Batch), "state", next.State.Key())
	}

	if c.hooks.OnTurn != nil {
		c.hooks.OnTurn(ctx, &domain.TurnEvent{
			EventBase: domain.EventBase{Timestamp: rec.At, Type: domain.EventTurn, SessionID: next.ID},
			Puzzle:    next.Puzzle,
			Size:      next.Size,
			Record:    rec,
		})
	}

	if next.Terminated() {
		logger.Info("episode finished", "status", next.Status, "reason", next.Reason, "moves", next.MovesAttempted)
		if c.hooks.OnEpisodeEnd != nil {
			c.hooks.OnEpisodeEnd(ctx, &domain.EpisodeEvent{
				EventBase: domain.EventBase{Timestamp: rec.At, Type: domain.EventEpisodeEnd, SessionID: next.ID},
				Puzzle:    next.Puzzle,
				Size:      next.Size,
				Status:    next.Status,
				Result:    domain.NewResult(next),
			})
		}
	}
	return next
}
