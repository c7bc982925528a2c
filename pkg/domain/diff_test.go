package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	initial := NewPuzzleState([]int{2, 1}, nil, nil)
	moved := NewPuzzleState([]int{2}, nil, []int{1})

	base := &Session{ID: "sess-1", State: initial, Status: StatusRunning}

	t.Run("initial load", func(t *testing.T) {
		d := Diff(nil, base)
		require.NotNil(t, d)
		assert.Equal(t, "sess-1", d.SessionID)
		require.NotNil(t, d.State)
		assert.True(t, d.State.Equal(initial))
		require.NotNil(t, d.Status)
		assert.Equal(t, StatusRunning, *d.Status)
		assert.Nil(t, d.Reason)
		assert.Empty(t, d.Appended)
	})

	t.Run("no changes", func(t *testing.T) {
		assert.Nil(t, Diff(base, base.Snapshot()))
	})

	t.Run("applied turn", func(t *testing.T) {
		next := base.Snapshot()
		next.Turn = 1
		next.State = moved
		next.Transcript = append(next.Transcript, TurnRecord{Turn: 1, Result: TurnApplied, State: moved})

		d := Diff(base, next)
		require.NotNil(t, d)
		assert.Equal(t, 1, d.Turn)
		require.NotNil(t, d.State)
		assert.True(t, d.State.Equal(moved))
		assert.Nil(t, d.Status)
		require.Len(t, d.Appended, 1)
		assert.Equal(t, TurnApplied, d.Appended[0].Result)
	})

	t.Run("termination", func(t *testing.T) {
		next := base.Snapshot()
		next.Status = StatusTimeout
		next.Reason = "agent did not respond within 1s"
		next.Transcript = append(next.Transcript, TurnRecord{Turn: 1, Result: TurnTimeout})

		d := Diff(base, next)
		require.NotNil(t, d)
		assert.Nil(t, d.State)
		assert.Equal(t, StatusTimeout, *d.Status)
		assert.Equal(t, next.Reason, *d.Reason)

		data, err := json.Marshal(d)
		require.NoError(t, err)
		var top map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &top))
		assert.NotContains(t, top, "state")
		assert.Contains(t, top, "appended")
	})

	assert.Nil(t, Diff(base, nil))
}
