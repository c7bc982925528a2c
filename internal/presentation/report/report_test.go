package report_test

import (
	"context"
	"testing"

	"github.com/aretw0/towerbench"
	"github.com/aretw0/towerbench/internal/presentation/report"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/puzzle/hanoi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	eng, err := towerbench.New()
	require.NoError(t, err)
	ctx := context.Background()

	solved, err := eng.Start(ctx, "a", 2)
	require.NoError(t, err)
	solved, err = eng.Submit(ctx, solved, "[[2, 0, 2]]")
	require.NoError(t, err)
	solved, err = eng.SubmitMoves(ctx, solved, hanoi.Solve(2))
	require.NoError(t, err)

	quit, err := eng.Start(ctx, "b", 3)
	require.NoError(t, err)
	quit, err = eng.Terminate(ctx, quit, domain.StatusTimeout, "agent did not respond within 1s")
	require.NoError(t, err)

	out := report.Markdown([]*domain.Session{solved, quit, nil}, report.Options{Model: "test-model", Tail: 1})

	assert.Contains(t, out, "Model: `test-model`")
	assert.Contains(t, out, "Solved **1/2** episodes (50%)")
	assert.Contains(t, out, "| 2 | solved | 2/6 | 4/30 | 1 | 3 | 1.00 |")
	assert.Contains(t, out, "| 3 | timeout | 0/14 | 0/70 | 0 | 7 | - |")
	assert.Contains(t, out, "## Size 2 (`a`)")
	assert.Contains(t, out, "- **Turn 2** (applied): `[[1, 0, 1], [2, 0, 2], [1, 1, 2]]`")
	assert.NotContains(t, out, "**Turn 1** (invalid)", "only the tail is shown")
	assert.Contains(t, out, "Ended: agent did not respond within 1s")
	assert.Contains(t, out, "(timeout): no response")

	short := report.Markdown([]*domain.Session{solved}, report.Options{})
	assert.NotContains(t, short, "## Size")
}
