package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/towerbench"
	"github.com/aretw0/towerbench/internal/logging"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RulesURI addresses the rules resource.
const RulesURI = "towerbench://puzzle/rules"

// DefaultRulesSize is the disk count used when rendering the rules resource.
const DefaultRulesSize = 3

// StartEpisodeArgs are the arguments of start_episode.
type StartEpisodeArgs struct {
	Size      int    `json:"size"`
	SessionID string `json:"session_id,omitempty"`
}

// SessionArgs address an existing episode.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// SubmitMovesArgs are the arguments of submit_moves.
type SubmitMovesArgs struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// EpisodeResponse is the unified tool result: episode progress plus the next prompt.
type EpisodeResponse struct {
	SessionID string           `json:"session_id" jsonschema_description:"The episode identifier"`
	Status    domain.Status    `json:"status" jsonschema_description:"running or a terminal status"`
	Reason    string           `json:"reason,omitempty" jsonschema_description:"Why the episode ended"`
	Turn      int              `json:"turn" jsonschema_description:"Turns played so far"`
	Feedback  string           `json:"feedback,omitempty" jsonschema_description:"Outcome of the last turn"`
	Terminal  bool             `json:"terminal" jsonschema_description:"Indicates if no more turns are accepted"`
	Messages  []domain.Message `json:"messages,omitempty" jsonschema_description:"Context window for the next turn"`
}

// Server wraps the engine and exposes episodes as MCP tools.
type Server struct {
	engine    *towerbench.Engine
	sessions  *session.Manager
	logger    *slog.Logger
	newID     func() string
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithIDGenerator overrides how session IDs are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Server) {
		s.newID = gen
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *towerbench.Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
		mcpServer: server.NewMCPServer("towerbench-mcp", strings.TrimSpace(towerbench.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on the given port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_episode",
		mcp.WithDescription("Start a new Tower of Hanoi episode and return the first prompt."),
		mcp.WithNumber("size", mcp.Required(), mcp.Description("Number of disks")),
		mcp.WithString("session_id", mcp.Description("Episode ID (optional, generated when omitted)")),
		mcp.WithOutputSchema[EpisodeResponse](),
	), mcp.NewStructuredToolHandler(s.handleStartEpisode))

	s.mcpServer.AddTool(mcp.NewTool("get_window",
		mcp.WithDescription("Get the context window (rules, recent turns and current state) for the next turn."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Episode ID")),
		mcp.WithOutputSchema[EpisodeResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetWindow))

	s.mcpServer.AddTool(mcp.NewTool("submit_moves",
		mcp.WithDescription("Submit one turn: a batch of moves such as [[1, 0, 2], [2, 0, 1]]. [] gives up."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Episode ID")),
		mcp.WithString("response", mcp.Required(), mcp.Description("Reply containing the move batch")),
		mcp.WithOutputSchema[EpisodeResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmitMoves))

	s.mcpServer.AddTool(mcp.NewTool("get_result",
		mcp.WithDescription("Get the scored result of an episode."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Episode ID")),
		mcp.WithOutputSchema[domain.Result](),
	), mcp.NewStructuredToolHandler(s.handleGetResult))
}

func (s *Server) handleStartEpisode(ctx context.Context, _ mcp.CallToolRequest, args StartEpisodeArgs) (EpisodeResponse, error) {
	id := args.SessionID
	if id == "" {
		id = s.newID()
	}
	sess, err := s.engine.Start(ctx, id, args.Size)
	if err != nil {
		return EpisodeResponse{}, fmt.Errorf("start failed: %w", err)
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return EpisodeResponse{}, fmt.Errorf("start failed: %w", err)
	}
	s.logger.Info("MCP episode started", "session_id", id, "size", args.Size)
	return s.respond(sess)
}

func (s *Server) handleGetWindow(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (EpisodeResponse, error) {
	sess, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return EpisodeResponse{}, err
	}
	return s.respond(sess)
}

func (s *Server) handleSubmitMoves(ctx context.Context, _ mcp.CallToolRequest, args SubmitMovesArgs) (EpisodeResponse, error) {
	sess, err := s.sessions.Update(ctx, args.SessionID, func(cur *domain.Session) (*domain.Session, error) {
		return s.engine.Submit(ctx, cur, args.Response)
	})
	if err != nil {
		return EpisodeResponse{}, fmt.Errorf("submit failed: %w", err)
	}
	return s.respond(sess)
}

func (s *Server) handleGetResult(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (domain.Result, error) {
	sess, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return domain.Result{}, err
	}
	return s.engine.Result(sess), nil
}

// respond builds the tool result. Terminal episodes carry no window.
func (s *Server) respond(sess *domain.Session) (EpisodeResponse, error) {
	resp := EpisodeResponse{
		SessionID: sess.ID,
		Status:    sess.Status,
		Reason:    sess.Reason,
		Turn:      sess.Turn,
		Terminal:  sess.Terminated(),
	}
	if last, ok := sess.LastTurn(); ok {
		resp.Feedback = last.Feedback
	}
	if resp.Terminal {
		return resp, nil
	}
	win, err := s.engine.Window(sess)
	if err != nil {
		return EpisodeResponse{}, fmt.Errorf("window failed: %w", err)
	}
	resp.Messages = win.Messages()
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(RulesURI, "Puzzle Rules",
		mcp.WithResourceDescription("Instructions and response format given to agents"),
		mcp.WithMIMEType("text/markdown"),
	), s.handleRules)
}

func (s *Server) handleRules(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rules, err := s.engine.Rules(DefaultRulesSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render rules: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RulesURI,
			MIMEType: "text/markdown",
			Text:     rules,
		},
	}, nil
}
