package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/towerbench/internal/logging"
	"github.com/aretw0/towerbench/pkg/ports"
)

// EnvPrefix namespaces the variables describing the current turn.
const EnvPrefix = "TOWERBENCH_"

// DefaultWaitDelay bounds how long output pipes are drained after the process is killed.
const DefaultWaitDelay = time.Second

// Agent answers each turn by running an external command.
//
// The request is written to stdin as JSON (see ports.AgentRequest). Stdout is the reply:
// either a JSON object with a "content" field or plain text taken verbatim.
// The process is killed when ctx is done.
type Agent struct {
	cfg       Config
	logger    *slog.Logger
	waitDelay time.Duration
}

// Option configures the Agent.
type Option func(*Agent)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithWaitDelay overrides DefaultWaitDelay.
func WithWaitDelay(d time.Duration) Option {
	return func(a *Agent) {
		a.waitDelay = d
	}
}

// New creates a process-backed agent.
func New(cfg Config, opts ...Option) (*Agent, error) {
	if cfg.Command == "" {
		return nil, ErrNoCommand
	}
	a := &Agent{cfg: cfg, logger: logging.NewNop(), waitDelay: DefaultWaitDelay}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Respond implements ports.Agent.
func (a *Agent) Respond(ctx context.Context, req ports.AgentRequest) (ports.AgentResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return ports.AgentResponse{}, fmt.Errorf("failed to encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, a.cfg.Command, a.cfg.Args...)
	cmd.Dir = a.cfg.Dir
	cmd.WaitDelay = a.waitDelay
	cmd.Env = append(cmd.Environ(),
		EnvPrefix+"SESSION_ID="+req.SessionID,
		EnvPrefix+"PUZZLE="+req.Puzzle,
		EnvPrefix+"SIZE="+strconv.Itoa(req.Size),
		EnvPrefix+"TURN="+strconv.Itoa(req.Turn),
	)
	for k, v := range a.cfg.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	a.logger.Debug("running agent command", "command", a.cfg.Command, "session_id", req.SessionID, "turn", req.Turn)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ports.AgentResponse{}, ctxErr
		}
		return ports.AgentResponse{}, fmt.Errorf("agent command failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return decode(stdout.Bytes()), nil
}

func decode(out []byte) ports.AgentResponse {
	trimmed := bytes.TrimSpace(out)
	if bytes.HasPrefix(trimmed, []byte("{")) && bytes.HasSuffix(trimmed, []byte("}")) {
		var resp ports.AgentResponse
		if err := json.Unmarshal(trimmed, &resp); err == nil && resp.Content != "" {
			return resp
		}
	}
	return ports.AgentResponse{Content: string(trimmed)}
}
