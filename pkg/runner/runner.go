package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/towerbench"
	"github.com/aretw0/towerbench/internal/logging"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/ports"
	"github.com/google/uuid"
)

// Runner handles the evaluation loop of one agent against the engine.
// A Runner holds no per-episode state; Run may be called concurrently.
type Runner struct {
	engine *towerbench.Engine
	agent  ports.Agent

	store          ports.SessionStore
	logger         *slog.Logger
	agentTimeout   time.Duration
	episodeTimeout time.Duration
	newID          func() string
}

// New creates a Runner. Timeouts default to the engine's limits.
func New(engine *towerbench.Engine, agent ports.Agent, opts ...Option) *Runner {
	limits := engine.Limits()
	r := &Runner{
		engine:         engine,
		agent:          agent,
		logger:         logging.NewNop(),
		agentTimeout:   limits.AgentTimeout,
		episodeTimeout: limits.EpisodeTimeout,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays one episode of the given size until it reaches a terminal status.
// An empty id mints a fresh one.
//
// Agent failures end the episode rather than the call: a missed deadline yields
// StatusTimeout and any other error StatusAgentError. Cancellation of ctx itself
// saves the partial session and returns it with ctx.Err().
func (r *Runner) Run(ctx context.Context, id string, size int) (*domain.Session, error) {
	if id == "" {
		id = r.newID()
	}
	logger := r.logger.With("session_id", id, "size", size)

	session, err := r.engine.Start(ctx, id, size)
	if err != nil {
		return nil, err
	}
	if err := r.save(ctx, session); err != nil {
		return session, err
	}

	episodeCtx := ctx
	if r.episodeTimeout > 0 {
		var cancel context.CancelFunc
		episodeCtx, cancel = context.WithTimeout(ctx, r.episodeTimeout)
		defer cancel()
	}

	for !session.Terminated() {
		window, err := r.engine.Window(session)
		if err != nil {
			return session, fmt.Errorf("failed to build window: %w", err)
		}

		req := ports.AgentRequest{
			SessionID: session.ID,
			Puzzle:    session.Puzzle,
			Size:      session.Size,
			Turn:      session.Turn + 1,
			Messages:  window.Messages(),
		}
		resp, agentErr := r.respond(episodeCtx, req)

		// Saves and hooks run even once ctx is canceled.
		bg := context.WithoutCancel(ctx)

		if agentErr != nil {
			if ctx.Err() != nil {
				logger.Info("Episode interrupted", "turn", req.Turn)
				if err := r.save(bg, session); err != nil {
					return session, err
				}
				return session, ctx.Err()
			}
			status, reason := r.classify(episodeCtx, agentErr)
			logger.Warn("Agent failed", "turn", req.Turn, "status", status, "err", agentErr)
			next, err := r.engine.Terminate(bg, session, status, reason)
			if err != nil {
				return session, err
			}
			session = next
		} else {
			next, err := r.engine.Submit(bg, session, resp.Content)
			if err != nil {
				return session, err
			}
			session = next
		}

		if err := r.save(bg, session); err != nil {
			return session, err
		}
	}

	logger.Debug("Episode finished", "status", session.Status, "turns", session.Turn)
	return session, nil
}

func (r *Runner) respond(ctx context.Context, req ports.AgentRequest) (ports.AgentResponse, error) {
	if r.agentTimeout <= 0 {
		return r.agent.Respond(ctx, req)
	}
	turnCtx, cancel := context.WithTimeout(ctx, r.agentTimeout)
	defer cancel()
	return r.agent.Respond(turnCtx, req)
}

func (r *Runner) classify(episodeCtx context.Context, err error) (domain.Status, string) {
	if errors.Is(episodeCtx.Err(), context.DeadlineExceeded) {
		return domain.StatusTimeout, fmt.Sprintf("episode exceeded %s", r.episodeTimeout)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.StatusTimeout, fmt.Sprintf("agent did not respond within %s", r.agentTimeout)
	}
	return domain.StatusAgentError, err.Error()
}

func (r *Runner) save(ctx context.Context, s *domain.Session) error {
	if r.store == nil {
		return nil
	}
	if err := r.store.Save(ctx, s.ID, s); err != nil {
		return fmt.Errorf("critical persistence error: %w", err)
	}
	r.logger.Debug("session saved", "session_id", s.ID, "turn", s.Turn)
	return nil
}
