// Package hanoi implements the Tower of Hanoi puzzle variant.
package hanoi

import (
	"fmt"

	"github.com/aretw0/towerbench/pkg/domain"
)

const (
	// PegCount is fixed for the classic puzzle.
	PegCount = 3
	// TargetPeg holds the full tower when solved.
	TargetPeg = 2
	// MaxDisks keeps 2^n-1 and the derived budgets well inside int range.
	MaxDisks = 30
)

// Puzzle is the Tower of Hanoi variant. It is stateless and safe for concurrent use.
type Puzzle struct{}

// New returns the Tower of Hanoi variant.
func New() *Puzzle {
	return &Puzzle{}
}

// Name implements puzzle.Puzzle.
func (p *Puzzle) Name() string {
	return "tower_of_hanoi"
}

// InitialState stacks all disks on peg 0, largest at the bottom.
func (p *Puzzle) InitialState(size int) (domain.PuzzleState, error) {
	if size < 1 || size > MaxDisks {
		return domain.PuzzleState{}, fmt.Errorf("%w: puzzle size must be between 1 and %d, got %d",
			domain.ErrInvalidConfiguration, MaxDisks, size)
	}
	tower := make([]int, size)
	for i := range tower {
		tower[i] = size - i
	}
	return domain.NewPuzzleState(tower, nil, nil), nil
}

// OptimalMoveCount returns 2^size - 1.
func (p *Puzzle) OptimalMoveCount(size int) int {
	if size < 1 {
		return 0
	}
	return 1<<size - 1
}

// ApplyMoves validates and applies the batch against a working copy.
// Nothing is committed unless every move is legal.
func (p *Puzzle) ApplyMoves(state domain.PuzzleState, batch domain.MoveBatch) (domain.PuzzleState, error) {
	pegs := state.Pegs()
	for i, m := range batch {
		if err := check(pegs, m); err != nil {
			err.Index = i
			return state, err
		}
		from := pegs[m.From]
		pegs[m.From] = from[:len(from)-1]
		pegs[m.To] = append(pegs[m.To], m.Disk)
	}
	return domain.NewPuzzleState(pegs...), nil
}

func check(pegs [][]int, m domain.Move) *domain.InvalidMoveError {
	fail := func(reason domain.MoveErrorReason, format string, args ...any) *domain.InvalidMoveError {
		return &domain.InvalidMoveError{Move: m, Reason: reason, Detail: fmt.Sprintf(format, args...)}
	}

	if m.From < 0 || m.From >= len(pegs) {
		return fail(domain.ReasonInvalidPeg, "peg %d does not exist", m.From)
	}
	if m.To < 0 || m.To >= len(pegs) {
		return fail(domain.ReasonInvalidPeg, "peg %d does not exist", m.To)
	}
	if m.From == m.To {
		return fail(domain.ReasonSamePeg, "source and target are both peg %d", m.From)
	}
	src := pegs[m.From]
	if len(src) == 0 {
		return fail(domain.ReasonSourcePegEmpty, "peg %d is empty", m.From)
	}
	if top := src[len(src)-1]; top != m.Disk {
		return fail(domain.ReasonDiskNotOnTop, "top of peg %d is disk %d", m.From, top)
	}
	dst := pegs[m.To]
	if len(dst) > 0 && dst[len(dst)-1] < m.Disk {
		return fail(domain.ReasonTargetTooSmall, "disk %d cannot go on disk %d", m.Disk, dst[len(dst)-1])
	}
	return nil
}

// IsSolved reports whether the whole tower sits in order on the target peg.
func (p *Puzzle) IsSolved(state domain.PuzzleState) bool {
	if state.PegCount() != PegCount || state.DiskCount() == 0 {
		return false
	}
	for i := 0; i < PegCount; i++ {
		if i != TargetPeg && len(state.Peg(i)) > 0 {
			return false
		}
	}
	target := state.Peg(TargetPeg)
	for i, d := range target {
		if d != len(target)-i {
			return false
		}
	}
	return true
}
