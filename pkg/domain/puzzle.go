package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PuzzleState is an immutable snapshot of a peg puzzle.
// Each peg is a stack of disk ids listed from bottom to top.
// Accessors return copies, so a value can be shared freely between turns.
type PuzzleState struct {
	pegs [][]int
}

// NewPuzzleState builds a state from the given pegs. The input slices are copied.
func NewPuzzleState(pegs ...[]int) PuzzleState {
	cp := make([][]int, len(pegs))
	for i, p := range pegs {
		cp[i] = append([]int{}, p...)
	}
	return PuzzleState{pegs: cp}
}

// PegCount returns the number of pegs.
func (s PuzzleState) PegCount() int {
	return len(s.pegs)
}

// Peg returns a copy of the stack on peg i, bottom first.
func (s PuzzleState) Peg(i int) []int {
	if i < 0 || i >= len(s.pegs) {
		return nil
	}
	return append([]int(nil), s.pegs[i]...)
}

// Pegs returns a deep copy of all stacks.
func (s PuzzleState) Pegs() [][]int {
	cp := make([][]int, len(s.pegs))
	for i, p := range s.pegs {
		cp[i] = append([]int{}, p...)
	}
	return cp
}

// Top returns the top disk of peg i.
func (s PuzzleState) Top(i int) (int, bool) {
	if i < 0 || i >= len(s.pegs) || len(s.pegs[i]) == 0 {
		return 0, false
	}
	return s.pegs[i][len(s.pegs[i])-1], true
}

// DiskCount returns the number of disks across all pegs.
func (s PuzzleState) DiskCount() int {
	n := 0
	for _, p := range s.pegs {
		n += len(p)
	}
	return n
}

// IsZero reports whether the state was never initialized.
func (s PuzzleState) IsZero() bool {
	return s.pegs == nil
}

// Key returns the canonical encoding of the state, e.g. "3,2,1|-|-".
// Two states are structurally equal iff their keys are equal.
func (s PuzzleState) Key() string {
	var b strings.Builder
	for i, p := range s.pegs {
		if i > 0 {
			b.WriteByte('|')
		}
		if len(p) == 0 {
			b.WriteByte('-')
			continue
		}
		for j, d := range p {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(d))
		}
	}
	return b.String()
}

// Equal reports structural equality.
func (s PuzzleState) Equal(other PuzzleState) bool {
	return s.Key() == other.Key()
}

// String implements fmt.Stringer.
func (s PuzzleState) String() string {
	return s.Key()
}

// MarshalJSON encodes the state as an array of stacks.
func (s PuzzleState) MarshalJSON() ([]byte, error) {
	pegs := make([][]int, len(s.pegs))
	for i, p := range s.pegs {
		if p == nil {
			p = []int{}
		}
		pegs[i] = p
	}
	return json.Marshal(pegs)
}

// UnmarshalJSON decodes an array of stacks.
func (s *PuzzleState) UnmarshalJSON(data []byte) error {
	var pegs [][]int
	if err := json.Unmarshal(data, &pegs); err != nil {
		return fmt.Errorf("failed to decode puzzle state: %w", err)
	}
	for i := range pegs {
		if pegs[i] == nil {
			pegs[i] = []int{}
		}
	}
	s.pegs = pegs
	return nil
}

// Move relocates one disk between pegs.
type Move struct {
	Disk int
	From int
	To   int
}

// String renders the move in the wire format "[disk, from, to]".
func (m Move) String() string {
	return fmt.Sprintf("[%d, %d, %d]", m.Disk, m.From, m.To)
}

// MarshalJSON encodes the move as a three element array.
func (m Move) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{m.Disk, m.From, m.To})
}

// UnmarshalJSON decodes a three element array.
func (m *Move) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("move must be [disk_id, from_peg, to_peg]: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("move must have 3 elements, got %d", len(raw))
	}
	m.Disk, m.From, m.To = raw[0], raw[1], raw[2]
	return nil
}

// MaxBatchSize bounds the number of moves accepted in one submission.
const MaxBatchSize = 127

// MoveBatch is an ordered sequence of moves applied as one transaction.
// An empty batch signals that the agent gives up.
type MoveBatch []Move

// IsGiveUp reports whether the batch is the give-up signal.
func (b MoveBatch) IsGiveUp() bool {
	return len(b) == 0
}

// Equal reports whether both batches hold the same moves in the same order.
func (b MoveBatch) Equal(other MoveBatch) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the batch in the wire format.
func (b MoveBatch) String() string {
	parts := make([]string, len(b))
	for i, m := range b {
		parts[i] = m.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
