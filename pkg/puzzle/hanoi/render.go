package hanoi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/towerbench/pkg/domain"
)

// MoveFormat describes the response grammar shown to agents.
const MoveFormat = "[[disk_id, from_peg, to_peg], ...]"

// MoveFormat implements puzzle.Puzzle.
func (p *Puzzle) MoveFormat() string {
	return MoveFormat
}

// Render lists each peg bottom to top, e.g. "Peg 0: 3 (bottom), 2, 1 (top)".
func (p *Puzzle) Render(state domain.PuzzleState) string {
	lines := make([]string, state.PegCount())
	for i := range lines {
		lines[i] = fmt.Sprintf("Peg %d: %s", i, renderPeg(state.Peg(i)))
	}
	return strings.Join(lines, "\n")
}

func renderPeg(disks []int) string {
	switch len(disks) {
	case 0:
		return "(empty)"
	case 1:
		return strconv.Itoa(disks[0])
	}
	parts := make([]string, len(disks))
	for i, d := range disks {
		parts[i] = strconv.Itoa(d)
	}
	parts[0] += " (bottom)"
	parts[len(parts)-1] += " (top)"
	return strings.Join(parts, ", ")
}
