package runtime

import "github.com/aretw0/towerbench/pkg/domain"

// ComputeWindow selects the last size turn records of a transcript and frames them
// with the instruction header and the current-state message. It is pure: the same
// inputs always produce the same window and the transcript is never modified.
func ComputeWindow(transcript []domain.TurnRecord, size int, header, current domain.Message) domain.Window {
	if size < 0 {
		size = 0
	}
	start := len(transcript) - size
	if start < 0 {
		start = 0
	}

	turns := make([]domain.TurnRecord, len(transcript)-start)
	copy(turns, transcript[start:])

	return domain.Window{
		Header:    header,
		Truncated: start > 0,
		Turns:     turns,
		Current:   current,
	}
}
