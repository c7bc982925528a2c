// Package prompt renders the instruction header and the per-turn message shown to agents.
//
// Templates use text/template syntax. Defaults are built in; a directory of
// markdown documents (system.md, user_turn.md) can override either one.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Template names, also used as document IDs when loading from disk.
const (
	SystemTemplate   = "system"
	UserTurnTemplate = "user_turn"
)

// DefaultSystem is the instruction header.
const DefaultSystem = `You are solving the Tower of Hanoi puzzle with {{.Size}} disks over several turns.

Rules:
- There are three pegs numbered 0, 1 and 2. Disks are numbered 1 (smallest) to {{.Size}} (largest).
- Only the top disk of a peg can be moved.
- A disk can never be placed on top of a smaller disk.
- The goal is to move the whole tower from peg 0 to peg 2.

Each turn, reply with a batch of up to {{.MaxBatch}} moves in the format {{.MoveFormat}}.
Batches are atomic: if any move is illegal, the whole batch is discarded and the state is unchanged.
Reply with [] to give up.

You have at most {{.TurnLimit}} turns and {{.MoveLimit}} attempted moves. Only the last {{.WindowSize}} turns are shown to you.`

// DefaultUserTurn is the current-state message closing every window.
const DefaultUserTurn = `{{.Progress}}
{{if .ErrorMessage}}
{{.ErrorMessage}}
{{end}}
Current state:
{{.CurrentState}}

Respond with your next moves in the format {{.MoveFormat}}.`

// SystemData feeds the system template.
type SystemData struct {
	Puzzle     string
	Size       int
	MoveFormat string
	MaxBatch   int
	TurnLimit  int
	MoveLimit  int
	WindowSize int
}

// TurnData feeds the user turn template.
type TurnData struct {
	Progress       string
	CurrentState   string
	ErrorMessage   string
	MoveFormat     string
	Turn           int
	TurnLimit      int
	MovesAttempted int
	MoveLimit      int
}

// Templates holds the parsed prompt templates.
type Templates struct {
	system   *template.Template
	userTurn *template.Template
}

// Default returns the built-in templates.
func Default() *Templates {
	t, err := Parse(DefaultSystem, DefaultUserTurn)
	if err != nil {
		panic(fmt.Sprintf("built-in prompt templates are invalid: %v", err))
	}
	return t
}

// Parse compiles both templates. Unknown fields fail at render time.
func Parse(system, userTurn string) (*Templates, error) {
	sys, err := template.New(SystemTemplate).Option("missingkey=error").Parse(system)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", SystemTemplate, err)
	}
	turn, err := template.New(UserTurnTemplate).Option("missingkey=error").Parse(userTurn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", UserTurnTemplate, err)
	}
	return &Templates{system: sys, userTurn: turn}, nil
}

// System renders the instruction header.
func (t *Templates) System(data SystemData) (string, error) {
	return execute(t.system, data)
}

// UserTurn renders the current-state message.
func (t *Templates) UserTurn(data TurnData) (string, error) {
	return execute(t.userTurn, data)
}

func execute(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(b.String()), nil
}

// Progress describes the upcoming turn.
func Progress(turn int) string {
	if turn <= 1 {
		return "This is your first turn."
	}
	return fmt.Sprintf("Turn %d", turn)
}
