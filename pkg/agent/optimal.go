package agent

import (
	"context"
	"sync"

	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/ports"
	"github.com/aretw0/towerbench/pkg/puzzle/hanoi"
)

// Optimal plays the textbook solution in batches of at most BatchSize moves.
// Progress is tracked per session, so one instance can serve parallel episodes.
type Optimal struct {
	BatchSize int

	mu       sync.Mutex
	progress map[string]int
}

// NewOptimal creates a reference solver. A batchSize below 1 sends the whole solution at once.
func NewOptimal(batchSize int) *Optimal {
	return &Optimal{BatchSize: batchSize, progress: make(map[string]int)}
}

// Respond implements ports.Agent.
func (o *Optimal) Respond(ctx context.Context, req ports.AgentRequest) (ports.AgentResponse, error) {
	if err := ctx.Err(); err != nil {
		return ports.AgentResponse{}, err
	}
	moves := hanoi.Solve(req.Size)

	o.mu.Lock()
	start := o.progress[req.SessionID]
	end := len(moves)
	if o.BatchSize > 0 {
		end = min(start+o.BatchSize, len(moves))
	}
	o.progress[req.SessionID] = end
	o.mu.Unlock()

	if start >= len(moves) {
		return ports.AgentResponse{Content: domain.MoveBatch{}.String()}, nil
	}
	return ports.AgentResponse{Content: moves[start:end].String()}, nil
}
