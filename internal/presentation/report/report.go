// Package report renders evaluation results as markdown.
package report

import (
	"fmt"
	"strings"

	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/observability"
)

// DefaultTail is the number of final turns shown per episode.
const DefaultTail = 3

// Options controls what the report includes.
type Options struct {
	Model string
	// Tail is the number of final turns shown per episode; zero omits transcripts.
	Tail int
}

// Markdown renders a summary table over all episodes followed by the tail of each transcript.
func Markdown(sessions []*domain.Session, opts Options) string {
	results := make([]domain.Result, 0, len(sessions))
	for _, s := range sessions {
		if s != nil {
			results = append(results, domain.NewResult(s))
		}
	}
	sum := observability.Summarize(results)

	var sb strings.Builder
	sb.WriteString("# Tower of Hanoi evaluation\n\n")
	if opts.Model != "" {
		fmt.Fprintf(&sb, "Model: `%s`\n\n", opts.Model)
	}
	fmt.Fprintf(&sb, "Solved **%d/%d** episodes (%.0f%%), mean turns %.1f, mean efficiency %.2f.\n\n",
		sum.Solved, sum.Episodes, sum.SolveRate*100, sum.MeanTurns, sum.MeanEfficiency)

	sb.WriteString("| Size | Status | Turns | Moves | Invalid turns | Optimal | Efficiency |\n")
	sb.WriteString("| ---: | --- | ---: | ---: | ---: | ---: | ---: |\n")
	for _, r := range results {
		eff := "-"
		if r.Solved {
			eff = fmt.Sprintf("%.2f", r.Efficiency)
		}
		fmt.Fprintf(&sb, "| %d | %s | %d/%d | %d/%d | %d | %d | %s |\n",
			r.PuzzleSize, r.Status, r.TurnsTaken, r.TurnLimit, r.MovesAttempted, r.MoveLimit,
			r.InvalidTurns, r.OptimalMoves, eff)
	}

	if opts.Tail <= 0 {
		return sb.String()
	}
	for _, s := range sessions {
		if s == nil {
			continue
		}
		fmt.Fprintf(&sb, "\n## Size %d (`%s`)\n\n", s.Size, s.ID)
		if s.Reason != "" {
			fmt.Fprintf(&sb, "Ended: %s\n\n", s.Reason)
		}
		tail := s.Transcript
		if len(tail) > opts.Tail {
			tail = tail[len(tail)-opts.Tail:]
		}
		for _, rec := range tail {
			fmt.Fprintf(&sb, "- **Turn %d** (%s): ", rec.Turn, rec.Result)
			switch {
			case rec.Error != nil:
				fmt.Fprintf(&sb, "%s\n", rec.Error)
			case rec.Batch != nil:
				fmt.Fprintf(&sb, "`%s`\n", rec.Batch)
			default:
				sb.WriteString("no response\n")
			}
		}
	}
	return sb.String()
}
