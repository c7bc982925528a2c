package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventEpisodeStart EventType = "episode_start"
	EventTurn         EventType = "turn"
	EventEpisodeEnd   EventType = "episode_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// EpisodeEvent marks the start or end of an episode.
type EpisodeEvent struct {
	EventBase
	Puzzle string `json:"puzzle"`
	Size   int    `json:"size"`
	Status Status `json:"status"`
	Result Result `json:"result,omitempty"`
}

// TurnEvent is emitted after every transcript append.
type TurnEvent struct {
	EventBase
	Puzzle string     `json:"puzzle"`
	Size   int        `json:"size"`
	Record TurnRecord `json:"record"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnEpisodeStart func(context.Context, *EpisodeEvent)
	OnTurn         func(context.Context, *TurnEvent)
	OnEpisodeEnd   func(context.Context, *EpisodeEvent)
}

// Merge chains two hook sets; both callbacks run, receiver first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnEpisodeStart: chain(h.OnEpisodeStart, other.OnEpisodeStart),
		OnTurn:         chain(h.OnTurn, other.OnTurn),
		OnEpisodeEnd:   chain(h.OnEpisodeEnd, other.OnEpisodeEnd),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
