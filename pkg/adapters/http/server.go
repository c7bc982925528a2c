package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/towerbench"
	"github.com/aretw0/towerbench/internal/logging"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Server serves the episode API. All mutations run under the session manager's lock.
type Server struct {
	engine   *towerbench.Engine
	sessions *session.Manager
	streams  *StreamManager
	metrics  http.Handler
	logger   *slog.Logger
	newID    func() string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithIDGenerator overrides how session IDs are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Server) {
		s.newID = gen
	}
}

// NewServer creates the API server.
func NewServer(engine *towerbench.Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)
	return s
}

// Streams returns the SSE registry.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/episodes", func(r chi.Router) {
		r.Post("/", s.CreateEpisode)
		r.Get("/", s.ListEpisodes)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetEpisode)
			r.Delete("/", s.DeleteEpisode)
			r.Get("/window", s.GetWindow)
			r.Post("/turns", s.SubmitTurn)
			r.Get("/result", s.GetResult)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

// NewHandler is shorthand for NewServer(...).Handler().
func NewHandler(engine *towerbench.Engine, sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(engine, sessions, opts...).Handler()
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateEpisodeRequest is the body of POST /episodes.
type CreateEpisodeRequest struct {
	Size int    `json:"size"`
	ID   string `json:"id,omitempty"`
}

// SubmitTurnRequest is the body of POST /episodes/{id}/turns.
// Exactly one of Response (raw agent text) or Moves must be set.
type SubmitTurnRequest struct {
	Response *string           `json:"response,omitempty"`
	Moves    *domain.MoveBatch `json:"moves,omitempty"`
}

// SessionView is the public summary of an episode.
type SessionView struct {
	ID                 string             `json:"id"`
	Puzzle             string             `json:"puzzle"`
	Size               int                `json:"size"`
	Status             domain.Status      `json:"status"`
	Reason             string             `json:"reason,omitempty"`
	Turn               int                `json:"turn"`
	TurnLimit          int                `json:"turn_limit"`
	MovesAttempted     int                `json:"moves_attempted"`
	MoveLimit          int                `json:"move_limit"`
	SuccessfulMoves    int                `json:"successful_moves"`
	InvalidTurns       int                `json:"invalid_turns"`
	ConsecutiveInvalid int                `json:"consecutive_invalid"`
	State              domain.PuzzleState `json:"state"`
	Rendered           string             `json:"rendered"`
}

// TurnResponse is returned after a submitted turn.
type TurnResponse struct {
	Session SessionView       `json:"session"`
	Turn    domain.TurnRecord `json:"turn"`
}

// WindowResponse is the prompt for the next turn.
type WindowResponse struct {
	Truncated bool             `json:"truncated"`
	Messages  []domain.Message `json:"messages"`
}

func (s *Server) view(sess *domain.Session) SessionView {
	return SessionView{
		ID:                 sess.ID,
		Puzzle:             sess.Puzzle,
		Size:               sess.Size,
		Status:             sess.Status,
		Reason:             sess.Reason,
		Turn:               sess.Turn,
		TurnLimit:          sess.TurnLimit,
		MovesAttempted:     sess.MovesAttempted,
		MoveLimit:          sess.MoveLimit,
		SuccessfulMoves:    sess.SuccessfulMoves,
		InvalidTurns:       sess.InvalidTurns,
		ConsecutiveInvalid: sess.ConsecutiveInvalid,
		State:              sess.State,
		Rendered:           s.engine.Render(sess),
	}
}

// CreateEpisode handles POST /episodes.
func (s *Server) CreateEpisode(w http.ResponseWriter, r *http.Request) {
	var body CreateEpisodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("CreateEpisode: Invalid request body", "err", err)
		return
	}
	if body.ID == "" {
		body.ID = s.newID()
	}

	sess, err := s.engine.Start(r.Context(), body.ID, body.Size)
	if err != nil {
		s.fail(w, "CreateEpisode", err)
		return
	}
	if err := s.sessions.Create(r.Context(), sess); err != nil {
		s.fail(w, "CreateEpisode", err)
		return
	}
	s.logger.Info("Episode created", "session_id", sess.ID, "size", sess.Size)
	writeJSON(w, http.StatusCreated, s.view(sess))
}

// ListEpisodes handles GET /episodes.
func (s *Server) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListEpisodes", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"episodes": ids})
}

// GetEpisode handles GET /episodes/{id}.
func (s *Server) GetEpisode(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetEpisode", err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess))
}

// DeleteEpisode handles DELETE /episodes/{id}.
func (s *Server) DeleteEpisode(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteEpisode", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWindow handles GET /episodes/{id}/window.
func (s *Server) GetWindow(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetWindow", err)
		return
	}
	win, err := s.engine.Window(sess)
	if err != nil {
		s.fail(w, "GetWindow", err)
		return
	}
	writeJSON(w, http.StatusOK, WindowResponse{Truncated: win.Truncated, Messages: win.Messages()})
}

// SubmitTurn handles POST /episodes/{id}/turns.
func (s *Server) SubmitTurn(w http.ResponseWriter, r *http.Request) {
	var body SubmitTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("SubmitTurn: Invalid request body", "err", err)
		return
	}
	if (body.Response == nil) == (body.Moves == nil) {
		writeError(w, http.StatusBadRequest, "exactly one of response or moves is required")
		return
	}

	id := chi.URLParam(r, "id")
	var prev *domain.Session
	sess, err := s.sessions.Update(r.Context(), id, func(cur *domain.Session) (*domain.Session, error) {
		prev = cur
		if body.Moves != nil {
			return s.engine.SubmitMoves(r.Context(), cur, *body.Moves)
		}
		return s.engine.Submit(r.Context(), cur, *body.Response)
	})
	if err != nil {
		s.fail(w, "SubmitTurn", err)
		return
	}

	rec, _ := sess.LastTurn()
	if diff := domain.Diff(prev, sess); diff != nil {
		if payload, err := json.Marshal(diff); err == nil {
			s.streams.Broadcast(id, string(payload))
		}
	}
	writeJSON(w, http.StatusOK, TurnResponse{Session: s.view(sess), Turn: rec})
}

// GetResult handles GET /episodes/{id}/result.
func (s *Server) GetResult(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetResult", err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Result(sess))
}

// SubscribeEvents handles GET /episodes/{id}/events (SSE). Each turn is sent as one domain.SessionDiff frame.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Load(r.Context(), id); err != nil {
		s.fail(w, "SubscribeEvents", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(id)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: turn\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "towerbench-http",
		"version": strings.TrimSpace(towerbench.Version),
		"puzzle":  s.engine.Puzzle().Name(),
	})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionTerminated), errors.Is(err, domain.ErrSessionExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
