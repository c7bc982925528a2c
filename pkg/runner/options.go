package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/towerbench/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the SessionStore for persistence.
// Without a store, sessions are ephemeral.
func WithStore(store ports.SessionStore) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithAgentTimeout bounds each agent call. Zero means no per-turn deadline.
func WithAgentTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.agentTimeout = d
	}
}

// WithEpisodeTimeout bounds a whole episode. Zero means no deadline.
func WithEpisodeTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.episodeTimeout = d
	}
}

// WithIDGenerator overrides how session IDs are minted when none is given.
func WithIDGenerator(gen func() string) Option {
	return func(r *Runner) {
		r.newID = gen
	}
}
