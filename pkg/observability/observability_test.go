package observability_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/towerbench"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/observability"
	"github.com/aretw0/towerbench/pkg/puzzle/hanoi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsEpisode(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	eng, err := towerbench.New(towerbench.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)
	ctx := context.Background()

	s, err := eng.Start(ctx, "m1", 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EpisodesActive.WithLabelValues("tower_of_hanoi")))

	s, err = eng.Submit(ctx, s, "[[2, 0, 1]]")
	require.NoError(t, err)
	s, err = eng.SubmitMoves(ctx, s, hanoi.Solve(2))
	require.NoError(t, err)
	require.Equal(t, domain.StatusSolved, s.Status)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EpisodesStarted.WithLabelValues("tower_of_hanoi", "2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EpisodesFinished.WithLabelValues("tower_of_hanoi", "2", "solved")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.EpisodesActive.WithLabelValues("tower_of_hanoi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("tower_of_hanoi", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("tower_of_hanoi", "applied")))

	expected := `
# HELP towerbench_turns_total Total number of turns, by outcome
# TYPE towerbench_turns_total counter
towerbench_turns_total{puzzle="tower_of_hanoi",result="applied"} 1
towerbench_turns_total{puzzle="tower_of_hanoi",result="invalid"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "towerbench_turns_total"))
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestAggregator(t *testing.T) {
	agg := observability.NewAggregator()
	hooks := agg.Hooks()

	var wg sync.WaitGroup
	for _, r := range []domain.Result{
		{SessionID: "b", PuzzleSize: 3, Solved: true, Status: domain.StatusSolved, Efficiency: 1, TurnsTaken: 2},
		{SessionID: "a", PuzzleSize: 3, Solved: true, Status: domain.StatusSolved, Efficiency: 0.5, TurnsTaken: 4},
		{SessionID: "c", PuzzleSize: 1, Status: domain.StatusGaveUp, TurnsTaken: 3},
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hooks.OnEpisodeEnd(context.Background(), &domain.EpisodeEvent{Result: r})
		}()
	}
	wg.Wait()

	results := agg.Results()
	require.Len(t, results, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{results[0].SessionID, results[1].SessionID, results[2].SessionID})

	sum := agg.Summary()
	assert.Equal(t, 3, sum.Episodes)
	assert.Equal(t, 2, sum.Solved)
	assert.InDelta(t, 2.0/3.0, sum.SolveRate, 1e-9)
	assert.InDelta(t, 0.75, sum.MeanEfficiency, 1e-9)
	assert.InDelta(t, 3.0, sum.MeanTurns, 1e-9)
	assert.Equal(t, 1, sum.ByStatus[domain.StatusGaveUp])

	assert.Zero(t, observability.Summarize(nil).SolveRate)
}
