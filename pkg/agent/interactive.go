package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/ports"
)

// Renderer transforms prompt text before it is shown.
type Renderer func(string) (string, error)

// Interactive lets a human play: it prints the current prompt and reads one line per turn.
// End of input is answered with an empty batch, which gives up.
type Interactive struct {
	in       *bufio.Reader
	out      io.Writer
	renderer Renderer
}

// InteractiveOption configures an Interactive agent.
type InteractiveOption func(*Interactive)

// WithRenderer formats prompts, e.g. as ANSI markdown.
func WithRenderer(r Renderer) InteractiveOption {
	return func(a *Interactive) {
		a.renderer = r
	}
}

// NewInteractive creates an agent over the given input and output.
func NewInteractive(in io.Reader, out io.Writer, opts ...InteractiveOption) *Interactive {
	a := &Interactive{in: bufio.NewReader(in), out: out}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Respond implements ports.Agent.
func (a *Interactive) Respond(ctx context.Context, req ports.AgentRequest) (ports.AgentResponse, error) {
	if len(req.Messages) > 0 {
		text := req.Messages[len(req.Messages)-1].Content
		if a.renderer != nil {
			if rendered, err := a.renderer(text); err == nil {
				text = rendered
			}
		}
		fmt.Fprintf(a.out, "\n%s\n", text)
	}
	fmt.Fprint(a.out, "> ")

	lines := make(chan readResult, 1)
	go func() {
		line, err := a.in.ReadString('\n')
		lines <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return ports.AgentResponse{}, ctx.Err()
	case res := <-lines:
		line := strings.TrimSpace(res.line)
		if res.err != nil && res.err != io.EOF {
			return ports.AgentResponse{}, fmt.Errorf("failed to read input: %w", res.err)
		}
		if res.err == io.EOF && line == "" {
			return ports.AgentResponse{Content: domain.MoveBatch{}.String()}, nil
		}
		return ports.AgentResponse{Content: line}, nil
	}
}

type readResult struct {
	line string
	err  error
}
