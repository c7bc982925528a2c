package domain

// SessionDiff represents the changes between two snapshots of one episode.
// It is designed to be serialized to JSON for partial updates on the client.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`
	Turn      int    `json:"turn"`

	State  *PuzzleState `json:"state,omitempty"`
	Status *Status      `json:"status,omitempty"`
	Reason *string      `json:"reason,omitempty"`

	// Appended holds the transcript entries added since the old snapshot.
	// The transcript is append-only, so clients can concatenate.
	Appended []TurnRecord `json:"appended,omitempty"`
}

// Diff calculates the difference between old and new.
// If old is nil, it returns a diff representing the entire new session (initial load).
// It returns nil when nothing changed.
func Diff(old, new *Session) *SessionDiff {
	if new == nil {
		return nil
	}

	diff := &SessionDiff{
		SessionID: new.ID,
		Turn:      new.Turn,
	}

	if old == nil || !old.State.Equal(new.State) {
		state := new.State
		diff.State = &state
	}
	if old == nil || old.Status != new.Status {
		status := new.Status
		diff.Status = &status
	}
	if (old == nil && new.Reason != "") || (old != nil && old.Reason != new.Reason) {
		reason := new.Reason
		diff.Reason = &reason
	}
	diff.Appended = diffTranscript(old, new)

	if old != nil &&
		old.Turn == new.Turn &&
		diff.State == nil &&
		diff.Status == nil &&
		diff.Reason == nil &&
		len(diff.Appended) == 0 {
		return nil
	}
	return diff
}

// diffTranscript assumes append-only transcripts.
func diffTranscript(old, new *Session) []TurnRecord {
	from := 0
	if old != nil {
		from = len(old.Transcript)
	}
	if len(new.Transcript) <= from {
		return nil
	}
	out := make([]TurnRecord, 0, len(new.Transcript)-from)
	for _, r := range new.Transcript[from:] {
		out = append(out, r.clone())
	}
	return out
}
