// Package puzzle defines the capability contract every puzzle variant implements
// and selects a variant by configuration name.
package puzzle

import (
	"fmt"
	"sort"

	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/puzzle/hanoi"
)

// Puzzle is the contract between the session controller and a puzzle variant.
// Each variant owns its legality rules, rendering and response grammar.
type Puzzle interface {
	// Name is the configuration name of the variant.
	Name() string
	// InitialState fails with domain.ErrInvalidConfiguration for unsupported sizes.
	InitialState(size int) (domain.PuzzleState, error)
	// OptimalMoveCount sizes termination budgets. It is never used for grading.
	OptimalMoveCount(size int) int
	// ApplyMoves applies the batch atomically. On failure the input state is
	// returned unchanged together with a *domain.InvalidMoveError.
	ApplyMoves(state domain.PuzzleState, batch domain.MoveBatch) (domain.PuzzleState, error)
	IsSolved(state domain.PuzzleState) bool
	// Render describes the state for a prompt.
	Render(state domain.PuzzleState) string
	// MoveFormat describes the expected response grammar.
	MoveFormat() string
	// ParseMoves reads a batch from free-form agent output.
	ParseMoves(response string) (domain.MoveBatch, error)
}

// Variant names a supported puzzle.
type Variant string

const (
	TowerOfHanoi Variant = "tower_of_hanoi"
)

// Default is the variant used when none is configured.
const Default = TowerOfHanoi

var variants = map[Variant]func() Puzzle{
	TowerOfHanoi: func() Puzzle { return hanoi.New() },
}

// New returns the variant registered under name.
func New(name string) (Puzzle, error) {
	if name == "" {
		name = string(Default)
	}
	factory, ok := variants[Variant(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown puzzle %q (known: %v)", domain.ErrInvalidConfiguration, name, Names())
	}
	return factory(), nil
}

// Names lists the supported variants in stable order.
func Names() []string {
	names := make([]string, 0, len(variants))
	for v := range variants {
		names = append(names, string(v))
	}
	sort.Strings(names)
	return names
}

// Known reports whether name selects a supported variant.
func Known(name string) bool {
	_, ok := variants[Variant(name)]
	return ok
}
