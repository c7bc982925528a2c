package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/towerbench/internal/presentation/tui"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_.__/")
}

func TestStatusColor(t *testing.T) {
	for _, s := range []domain.Status{domain.StatusSolved, domain.StatusRunning, domain.StatusGaveUp} {
		assert.Contains(t, tui.StatusColor(s), string(s))
	}
}

func TestPlainRenderer(t *testing.T) {
	render := tui.NewPlainRenderer()
	out, err := render("# Results\n\n| size | status |\n| --- | --- |\n| 3 | solved |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Results")
	assert.Contains(t, out, "solved")
}
