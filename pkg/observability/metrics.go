package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	EpisodesStarted  *prometheus.CounterVec
	EpisodesFinished *prometheus.CounterVec
	EpisodesActive   *prometheus.GaugeVec
	Turns            *prometheus.CounterVec
	EpisodeTurns     *prometheus.HistogramVec
	Efficiency       *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		EpisodesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "towerbench_episodes_started_total",
				Help: "Total number of episodes started",
			},
			[]string{"puzzle", "size"},
		),
		EpisodesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "towerbench_episodes_finished_total",
				Help: "Total number of episodes finished, by terminal status",
			},
			[]string{"puzzle", "size", "status"},
		),
		EpisodesActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "towerbench_episodes_active",
				Help: "Episodes currently running",
			},
			[]string{"puzzle"},
		),
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "towerbench_turns_total",
				Help: "Total number of turns, by outcome",
			},
			[]string{"puzzle", "result"},
		),
		EpisodeTurns: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "towerbench_episode_turns",
				Help:    "Turns taken per finished episode",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"puzzle", "status"},
		),
		Efficiency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "towerbench_solve_efficiency",
				Help:    "Optimal over successful moves for solved episodes",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
			[]string{"puzzle"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.EpisodesStarted, m.EpisodesFinished, m.EpisodesActive,
		m.Turns, m.EpisodeTurns, m.Efficiency,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEpisodeStart: func(_ context.Context, e *domain.EpisodeEvent) {
			m.EpisodesStarted.WithLabelValues(e.Puzzle, strconv.Itoa(e.Size)).Inc()
			m.EpisodesActive.WithLabelValues(e.Puzzle).Inc()
		},
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(e.Puzzle, string(e.Record.Result)).Inc()
		},
		OnEpisodeEnd: func(_ context.Context, e *domain.EpisodeEvent) {
			m.EpisodesFinished.WithLabelValues(e.Puzzle, strconv.Itoa(e.Size), string(e.Status)).Inc()
			m.EpisodesActive.WithLabelValues(e.Puzzle).Dec()
			m.EpisodeTurns.WithLabelValues(e.Puzzle, string(e.Status)).Observe(float64(e.Result.TurnsTaken))
			if e.Result.Solved {
				m.Efficiency.WithLabelValues(e.Puzzle).Observe(e.Result.Efficiency)
			}
		},
	}
}
