package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/towerbench/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of the states an episode visited.
// It applies semantic styling:
// - Initial state: ((Circle))
// - Other states: [Rectangle], labeled by state key
// - Applied turn: solid edge
// - Rejected turn: dotted self-loop carrying the reason
// Overlay styles mark revisited states and the final state.
func GenerateMermaid(initial domain.PuzzleState, s *domain.Session) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make(map[string]string)
	var order []string
	nodeID := func(key string) (string, bool) {
		if id, ok := ids[key]; ok {
			return id, false
		}
		id := fmt.Sprintf("s%d", len(order))
		ids[key] = id
		order = append(order, key)
		return id, true
	}

	startID, _ := nodeID(initial.Key())
	sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", startID, initial.Key()))

	prev := startID
	for _, rec := range s.Transcript {
		switch rec.Result {
		case domain.TurnApplied:
			key := rec.State.Key()
			id, fresh := nodeID(key)
			if fresh {
				sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, key))
			}
			sb.WriteString(fmt.Sprintf("    %s -- \"T%d: %d move(s)\" --> %s\n", prev, rec.Turn, len(rec.Batch), id))
			prev = id
		case domain.TurnInvalid, domain.TurnMalformed:
			reason := string(rec.Result)
			if rec.Error != nil {
				reason = string(rec.Error.Reason)
			}
			sb.WriteString(fmt.Sprintf("    %s -. \"T%d: %s\" .-> %s\n", prev, rec.Turn, reason, prev))
		}
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for contrast regardless of theme.
	sb.WriteString("    classDef revisited fill:#ffe0b2,stroke:#e65100,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	sb.WriteString("    classDef solved fill:#c8e6c9,stroke:#1b5e20,stroke-width:4px,color:#000;\n")

	for _, key := range order {
		if s.Visits[key] > 1 {
			sb.WriteString(fmt.Sprintf("    class %s revisited;\n", ids[key]))
		}
	}
	final := "current"
	if s.Status == domain.StatusSolved {
		final = "solved"
	}
	sb.WriteString(fmt.Sprintf("    class %s %s;\n", prev, final))

	return sb.String()
}
