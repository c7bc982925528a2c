package runtime_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/towerbench/internal/runtime"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transcript(n int) []domain.TurnRecord {
	recs := make([]domain.TurnRecord, n)
	for i := range recs {
		recs[i] = domain.TurnRecord{
			Turn:     i + 1,
			Response: fmt.Sprintf("[[%d, 0, 1]]", i+1),
			Result:   domain.TurnInvalid,
			Feedback: fmt.Sprintf("feedback %d", i+1),
		}
	}
	return recs
}

func TestComputeWindow(t *testing.T) {
	header := domain.Message{Role: domain.RoleSystem, Content: "rules"}
	current := domain.Message{Role: domain.RoleUser, Content: "Peg 0: 1"}
	full := transcript(10)

	w := runtime.ComputeWindow(full, 4, header, current)
	require.Len(t, w.Turns, 4)
	assert.Equal(t, full[6:], w.Turns)
	assert.True(t, w.Truncated)
	assert.Equal(t, header, w.Header)
	assert.Equal(t, current, w.Current)

	again := runtime.ComputeWindow(full, 4, header, current)
	assert.Equal(t, w, again)
	assert.Equal(t, w.Messages(), again.Messages())

	msgs := w.Messages()
	require.Len(t, msgs, 1+1+2*4+1)
	assert.Equal(t, "rules", msgs[0].Content)
	assert.Equal(t, domain.TruncationMarker, msgs[1].Content)
	assert.Equal(t, "[[7, 0, 1]]", msgs[2].Content)
	assert.Equal(t, "Peg 0: 1", msgs[len(msgs)-1].Content)
}

func TestComputeWindow_ShortTranscript(t *testing.T) {
	full := transcript(2)
	w := runtime.ComputeWindow(full, 4, domain.Message{}, domain.Message{})
	assert.Len(t, w.Turns, 2)
	assert.False(t, w.Truncated)

	empty := runtime.ComputeWindow(nil, 4, domain.Message{}, domain.Message{})
	assert.Empty(t, empty.Turns)
	assert.False(t, empty.Truncated)
}

func TestComputeWindow_DoesNotAliasTranscript(t *testing.T) {
	full := transcript(5)
	w := runtime.ComputeWindow(full, 2, domain.Message{}, domain.Message{})
	w.Turns[0].Feedback = "changed"
	assert.Equal(t, "feedback 4", full[3].Feedback)

	zero := runtime.ComputeWindow(full, 0, domain.Message{}, domain.Message{})
	assert.Empty(t, zero.Turns)
	assert.True(t, zero.Truncated)
}
