package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSession := func(id string) *domain.Session {
		state := domain.NewPuzzleState([]int{3, 2}, nil, []int{1})
		return &domain.Session{
			ID:             id,
			Puzzle:         "tower_of_hanoi",
			Size:           3,
			State:          state,
			Turn:           1,
			MovesAttempted: 1,
			Visits:         map[string]int{"3,2,1|-|-": 1, state.Key(): 1},
			Status:         domain.StatusRunning,
			Limits:         domain.DefaultLimits(),
			Transcript: []domain.TurnRecord{{
				Turn:     1,
				Response: "[[1, 0, 2]]",
				Batch:    domain.MoveBatch{{Disk: 1, From: 0, To: 2}},
				Result:   domain.TurnApplied,
				State:    state,
				Status:   domain.StatusRunning,
			}},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		session := newSession(sessionID)

		err := store.Save(ctx, sessionID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, session.ID, loaded.ID)
		assert.Equal(t, session.Size, loaded.Size)
		assert.True(t, session.State.Equal(loaded.State), "puzzle state must survive persistence")
		assert.Equal(t, session.Visits, loaded.Visits)
		require.Len(t, loaded.Transcript, 1)
		assert.Equal(t, session.Transcript[0].Batch, loaded.Transcript[0].Batch)
		assert.Equal(t, session.Limits, loaded.Limits)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		session := newSession(sessionID)
		session.Turn = 7
		session.Status = domain.StatusGaveUp
		require.NoError(t, store.Save(ctx, sessionID, session))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 7, loaded.Turn)
		assert.Equal(t, domain.StatusGaveUp, loaded.Status)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, newSession(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, newSession(id1)))
		require.NoError(t, store.Save(ctx, id2, newSession(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
