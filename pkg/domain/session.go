package domain

import (
	"errors"
	"fmt"
	"maps"
	"time"
)

// Status is the lifecycle state of an episode.
type Status string

const (
	StatusRunning                 Status = "running"
	StatusSolved                  Status = "solved"
	StatusGaveUp                  Status = "gave_up"
	StatusTurnLimitExceeded       Status = "turn_limit_exceeded"
	StatusMoveLimitExceeded       Status = "move_limit_exceeded"
	StatusRepeatedInvalidExceeded Status = "repeated_invalid_exceeded"
	StatusStateRevisitExceeded    Status = "state_revisit_exceeded"
	StatusTimeout                 Status = "timeout"
	StatusAgentError              Status = "agent_error"
)

// Terminal reports whether no further turns are accepted.
func (s Status) Terminal() bool {
	return s != StatusRunning && s != ""
}

// Limits is the immutable termination policy of an episode.
type Limits struct {
	TurnLimitMultiplier  float64       `json:"turn_limit_multiplier"`
	MoveLimitMultiplier  float64       `json:"move_limit_multiplier"`
	RepeatedInvalidLimit int           `json:"repeated_invalid_limit"`
	StateRevisitLimit    int           `json:"state_revisit_limit"`
	WindowSize           int           `json:"window_size"`
	AgentTimeout         time.Duration `json:"agent_timeout,omitempty"`
	EpisodeTimeout       time.Duration `json:"episode_timeout,omitempty"`
}

// DefaultLimits returns the stock evaluation policy.
func DefaultLimits() Limits {
	return Limits{
		TurnLimitMultiplier:  2.0,
		MoveLimitMultiplier:  10.0,
		RepeatedInvalidLimit: 3,
		StateRevisitLimit:    2,
		WindowSize:           4,
	}
}

// Validate reports every out-of-range field, each wrapping ErrInvalidConfiguration.
func (l Limits) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfiguration}, args...)...))
		}
	}
	check(l.TurnLimitMultiplier > 0, "turn_limit_multiplier must be positive, got %v", l.TurnLimitMultiplier)
	check(l.MoveLimitMultiplier > 0, "move_limit_multiplier must be positive, got %v", l.MoveLimitMultiplier)
	check(l.RepeatedInvalidLimit > 0, "repeated_invalid_limit must be positive, got %d", l.RepeatedInvalidLimit)
	check(l.StateRevisitLimit > 0, "state_revisit_limit must be positive, got %d", l.StateRevisitLimit)
	check(l.WindowSize > 0, "window_size must be positive, got %d", l.WindowSize)
	check(l.AgentTimeout >= 0, "agent_timeout must not be negative, got %s", l.AgentTimeout)
	check(l.EpisodeTimeout >= 0, "episode_timeout must not be negative, got %s", l.EpisodeTimeout)
	return errors.Join(errs...)
}

// Budget derives a limit from the optimal move count. It never drops below 1.
func Budget(multiplier float64, optimal int) int {
	b := int(multiplier * float64(optimal))
	if b < 1 {
		return 1
	}
	return b
}

// TurnResult classifies a transcript entry.
type TurnResult string

const (
	TurnApplied   TurnResult = "applied"
	TurnInvalid   TurnResult = "invalid"
	TurnMalformed TurnResult = "malformed"
	TurnGaveUp    TurnResult = "gave_up"
	TurnTimeout   TurnResult = "timeout"
	TurnAgentFail TurnResult = "agent_error"
)

// TurnRecord is one entry of the episode transcript.
type TurnRecord struct {
	Turn     int               `json:"turn"`
	Response string            `json:"response,omitempty"`
	Batch    MoveBatch         `json:"batch"`
	Result   TurnResult        `json:"result"`
	Error    *InvalidMoveError `json:"error,omitempty"`
	State    PuzzleState       `json:"state"`
	Feedback string            `json:"feedback"`
	Status   Status            `json:"status"`
	At       time.Time         `json:"at"`
}

// Session is the mutable-per-turn record of one episode.
// The controller never mutates a Session it was given; it returns a new snapshot.
type Session struct {
	ID     string      `json:"id"`
	Puzzle string      `json:"puzzle"`
	Size   int         `json:"size"`
	State  PuzzleState `json:"state"`

	Turn               int    `json:"turn"`
	MovesAttempted     int    `json:"moves_attempted"`
	SuccessfulMoves    int    `json:"successful_moves"`
	InvalidTurns       int    `json:"invalid_turns"`
	ConsecutiveInvalid int    `json:"consecutive_invalid"`
	LastInvalid        string `json:"last_invalid,omitempty"`

	Visits map[string]int `json:"visits"`

	OptimalMoves int    `json:"optimal_moves"`
	TurnLimit    int    `json:"turn_limit"`
	MoveLimit    int    `json:"move_limit"`
	Limits       Limits `json:"limits"`

	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`

	Transcript []TurnRecord `json:"transcript"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminated reports whether the episode has reached an end state.
func (s *Session) Terminated() bool {
	return s.Status.Terminal()
}

// LastTurn returns the most recent transcript entry.
func (s *Session) LastTurn() (TurnRecord, bool) {
	if len(s.Transcript) == 0 {
		return TurnRecord{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}

// Snapshot returns a deep copy safe to modify independently.
// PuzzleState values are immutable and shared.
func (s *Session) Snapshot() *Session {
	cp := *s
	cp.Visits = maps.Clone(s.Visits)
	if cp.Visits == nil {
		cp.Visits = make(map[string]int)
	}
	cp.Transcript = make([]TurnRecord, len(s.Transcript))
	for i, r := range s.Transcript {
		cp.Transcript[i] = r.clone()
	}
	return &cp
}

func (r TurnRecord) clone() TurnRecord {
	cp := r
	if r.Batch != nil {
		cp.Batch = append(MoveBatch(nil), r.Batch...)
	}
	if r.Error != nil {
		e := *r.Error
		cp.Error = &e
	}
	return cp
}

// Result is the immutable outcome record of a finished episode.
type Result struct {
	SessionID       string  `json:"session_id"`
	Puzzle          string  `json:"puzzle"`
	PuzzleSize      int     `json:"puzzle_size"`
	Solved          bool    `json:"solved"`
	Status          Status  `json:"status"`
	Reason          string  `json:"reason,omitempty"`
	TurnsTaken      int     `json:"turns_taken"`
	MovesAttempted  int     `json:"total_moves_attempted"`
	SuccessfulMoves int     `json:"successful_moves"`
	InvalidTurns    int     `json:"invalid_turns"`
	OptimalMoves    int     `json:"optimal_moves"`
	TurnLimit       int     `json:"turn_limit"`
	MoveLimit       int     `json:"move_limit"`
	Efficiency      float64 `json:"efficiency"`
}

// NewResult summarizes a session.
func NewResult(s *Session) Result {
	r := Result{
		SessionID:       s.ID,
		Puzzle:          s.Puzzle,
		PuzzleSize:      s.Size,
		Solved:          s.Status == StatusSolved,
		Status:          s.Status,
		Reason:          s.Reason,
		TurnsTaken:      s.Turn,
		MovesAttempted:  s.MovesAttempted,
		SuccessfulMoves: s.SuccessfulMoves,
		InvalidTurns:    s.InvalidTurns,
		OptimalMoves:    s.OptimalMoves,
		TurnLimit:       s.TurnLimit,
		MoveLimit:       s.MoveLimit,
	}
	if r.Solved && r.SuccessfulMoves > 0 {
		r.Efficiency = float64(r.OptimalMoves) / float64(r.SuccessfulMoves)
	}
	return r
}

// Scores flattens a result into named metrics.
func (r Result) Scores() map[string]float64 {
	solved := 0.0
	if r.Solved {
		solved = 1
	}
	return map[string]float64{
		"solved":        solved,
		"turns":         float64(r.TurnsTaken),
		"moves":         float64(r.MovesAttempted),
		"invalid_turns": float64(r.InvalidTurns),
		"efficiency":    r.Efficiency,
	}
}
