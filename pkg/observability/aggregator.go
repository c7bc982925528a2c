package observability

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/towerbench/pkg/domain"
)

// Aggregator collects the results of finished episodes.
// It is safe for concurrent use by parallel episodes.
type Aggregator struct {
	mu      sync.Mutex
	results map[string]domain.Result
}

// NewAggregator creates a new aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		results: make(map[string]domain.Result),
	}
}

// Hooks returns lifecycle hooks feeding the aggregator.
func (a *Aggregator) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEpisodeEnd: func(_ context.Context, e *domain.EpisodeEvent) {
			a.Add(e.Result)
		},
	}
}

// Add records a result, replacing any earlier one for the same session.
func (a *Aggregator) Add(r domain.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results[r.SessionID] = r
}

// Results returns the collected results ordered by size, then session ID.
func (a *Aggregator) Results() []domain.Result {
	a.mu.Lock()
	out := make([]domain.Result, 0, len(a.results))
	for _, r := range a.results {
		out = append(out, r)
	}
	a.mu.Unlock()

	slices.SortFunc(out, func(x, y domain.Result) int {
		if x.PuzzleSize != y.PuzzleSize {
			return x.PuzzleSize - y.PuzzleSize
		}
		switch {
		case x.SessionID < y.SessionID:
			return -1
		case x.SessionID > y.SessionID:
			return 1
		}
		return 0
	})
	return out
}

// Summary is the aggregate view over many episodes.
type Summary struct {
	Episodes       int                   `json:"episodes"`
	Solved         int                   `json:"solved"`
	SolveRate      float64               `json:"solve_rate"`
	MeanEfficiency float64               `json:"mean_efficiency"`
	MeanTurns      float64               `json:"mean_turns"`
	ByStatus       map[domain.Status]int `json:"by_status"`
}

// Summary computes aggregate scores over the collected results.
func (a *Aggregator) Summary() Summary {
	return Summarize(a.Results())
}

// Summarize computes aggregate scores over results.
// MeanEfficiency averages solved episodes only.
func Summarize(results []domain.Result) Summary {
	s := Summary{Episodes: len(results), ByStatus: make(map[domain.Status]int)}
	if len(results) == 0 {
		return s
	}
	var turns, efficiency float64
	for _, r := range results {
		s.ByStatus[r.Status]++
		turns += float64(r.TurnsTaken)
		if r.Solved {
			s.Solved++
			efficiency += r.Efficiency
		}
	}
	s.SolveRate = float64(s.Solved) / float64(s.Episodes)
	s.MeanTurns = turns / float64(s.Episodes)
	if s.Solved > 0 {
		s.MeanEfficiency = efficiency / float64(s.Solved)
	}
	return s
}
