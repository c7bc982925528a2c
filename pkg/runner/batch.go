package runner

import (
	"context"
	"fmt"

	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// AgentFactory builds the agent for one episode.
type AgentFactory func(size int) (ports.Agent, error)

// RunBatch plays one episode per size with at most concurrency in flight.
// Sessions come back in the order of sizes. A nil factory reuses the Runner's agent.
// The first infrastructure error cancels the remaining episodes.
func (r *Runner) RunBatch(ctx context.Context, sizes []int, concurrency int, newAgent AgentFactory) ([]*domain.Session, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	sessions := make([]*domain.Session, len(sizes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, size := range sizes {
		g.Go(func() error {
			episode := r
			if newAgent != nil {
				agent, err := newAgent(size)
				if err != nil {
					return fmt.Errorf("failed to create agent for size %d: %w", size, err)
				}
				cp := *r
				cp.agent = agent
				episode = &cp
			}

			s, err := episode.Run(gctx, "", size)
			sessions[i] = s
			if err != nil {
				return fmt.Errorf("episode %d (size %d): %w", i+1, size, err)
			}
			r.logger.Info("Episode complete",
				"session_id", s.ID,
				"size", size,
				"status", s.Status,
				"turns", s.Turn,
			)
			return nil
		})
	}

	err := g.Wait()
	return sessions, err
}
