package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/towerbench/pkg/ports"
)

// Step is one scripted reply. A non-nil Err is returned instead of Content.
// A positive Delay is waited out first, honoring ctx.
type Step struct {
	Content string
	Err     error
	Delay   time.Duration
}

// Scripted replays a fixed list of steps, one per call.
type Scripted struct {
	mu    sync.Mutex
	steps []Step
	next  int
	seen  []ports.AgentRequest
}

// NewScripted creates an agent answering with the given contents in order.
func NewScripted(contents ...string) *Scripted {
	steps := make([]Step, len(contents))
	for i, c := range contents {
		steps[i] = Step{Content: c}
	}
	return &Scripted{steps: steps}
}

// NewScriptedSteps creates an agent from explicit steps.
func NewScriptedSteps(steps ...Step) *Scripted {
	return &Scripted{steps: steps}
}

// Respond implements ports.Agent.
func (s *Scripted) Respond(ctx context.Context, req ports.AgentRequest) (ports.AgentResponse, error) {
	s.mu.Lock()
	s.seen = append(s.seen, req)
	if s.next >= len(s.steps) {
		idx := s.next
		s.mu.Unlock()
		return ports.AgentResponse{}, fmt.Errorf("script exhausted at step %d", idx+1)
	}
	step := s.steps[s.next]
	s.next++
	s.mu.Unlock()

	if step.Delay > 0 {
		select {
		case <-time.After(step.Delay):
		case <-ctx.Done():
			return ports.AgentResponse{}, ctx.Err()
		}
	}
	if step.Err != nil {
		return ports.AgentResponse{}, step.Err
	}
	return ports.AgentResponse{Content: step.Content}, nil
}

// Requests returns every request received so far.
func (s *Scripted) Requests() []ports.AgentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.AgentRequest(nil), s.seen...)
}
