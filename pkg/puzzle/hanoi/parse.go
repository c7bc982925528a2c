package hanoi

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/towerbench/pkg/domain"
)

var movesPattern = regexp.MustCompile(`\[\s*\[\s*\d+\s*,\s*\d+\s*,\s*\d+\s*\](?:\s*,\s*\[\s*\d+\s*,\s*\d+\s*,\s*\d+\s*\])*\s*\]`)

// ParseMoves extracts the last move list from the response.
// A bare "[]" is the give-up signal.
func (p *Puzzle) ParseMoves(response string) (domain.MoveBatch, error) {
	text := strings.TrimSpace(stripFence(response))
	if text == "" {
		return nil, domain.NewMalformedResponseError("empty response", nil)
	}
	if text == "[]" {
		return domain.MoveBatch{}, nil
	}

	matches := movesPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil, domain.NewMalformedResponseError("no move list of the form "+MoveFormat+" found", nil)
	}

	var batch domain.MoveBatch
	if err := json.Unmarshal([]byte(matches[len(matches)-1]), &batch); err != nil {
		return nil, domain.NewMalformedResponseError("move list is not valid JSON", err)
	}
	if len(batch) > domain.MaxBatchSize {
		return nil, domain.NewMalformedResponseError(
			fmt.Sprintf("batch has %d moves, at most %d are allowed", len(batch), domain.MaxBatchSize), nil)
	}
	return batch, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.Contains(body[:nl], "[") {
		body = body[nl+1:]
	}
	return body
}
