package ports

import (
	"context"

	"github.com/aretw0/towerbench/pkg/domain"
)

// AgentRequest is the prompt for one turn.
type AgentRequest struct {
	SessionID string           `json:"session_id"`
	Puzzle    string           `json:"puzzle"`
	Size      int              `json:"size"`
	Turn      int              `json:"turn"`
	Messages  []domain.Message `json:"messages"`
}

// AgentResponse is the agent's reply for one turn.
type AgentResponse struct {
	Content string `json:"content"`
}

// Agent is the external solver being evaluated.
// Respond must honor ctx cancellation; a deadline overrun ends the episode with a timeout.
type Agent interface {
	Respond(ctx context.Context, req AgentRequest) (AgentResponse, error)
}

// AgentFunc adapts a function to the Agent interface.
type AgentFunc func(ctx context.Context, req AgentRequest) (AgentResponse, error)

// Respond implements Agent.
func (f AgentFunc) Respond(ctx context.Context, req AgentRequest) (AgentResponse, error) {
	return f(ctx, req)
}
