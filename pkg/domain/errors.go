package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidConfiguration is returned when an episode cannot start with the given settings.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrSessionTerminated is returned when a turn is submitted to a finished episode.
var ErrSessionTerminated = errors.New("session already terminated")

// ErrMalformedResponse marks agent output that could not be read as a move batch.
var ErrMalformedResponse = errors.New("malformed response")

// MoveErrorReason classifies why a batch was rejected.
type MoveErrorReason string

const (
	ReasonSourcePegEmpty    MoveErrorReason = "source_peg_empty"
	ReasonDiskNotOnTop      MoveErrorReason = "disk_not_on_top"
	ReasonTargetTooSmall    MoveErrorReason = "target_too_small"
	ReasonInvalidPeg        MoveErrorReason = "invalid_peg"
	ReasonSamePeg           MoveErrorReason = "same_peg"
	ReasonMalformedResponse MoveErrorReason = "malformed_response"
)

// InvalidMoveError reports the first offending move of a rejected batch.
// Index is -1 when the response could not be parsed at all.
type InvalidMoveError struct {
	Index  int             `json:"index"`
	Move   Move            `json:"move"`
	Reason MoveErrorReason `json:"reason"`
	Detail string          `json:"detail,omitempty"`

	cause error
}

// NewMalformedResponseError wraps a parse failure.
func NewMalformedResponseError(detail string, cause error) *InvalidMoveError {
	if cause == nil {
		cause = ErrMalformedResponse
	} else {
		cause = fmt.Errorf("%w: %w", ErrMalformedResponse, cause)
	}
	return &InvalidMoveError{
		Index:  -1,
		Reason: ReasonMalformedResponse,
		Detail: detail,
		cause:  cause,
	}
}

func (e *InvalidMoveError) Error() string {
	if e.Reason == ReasonMalformedResponse {
		if e.Detail != "" {
			return "malformed response: " + e.Detail
		}
		return "malformed response"
	}
	msg := fmt.Sprintf("invalid move %d %s: %s", e.Index+1, e.Move, e.Reason)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap exposes ErrMalformedResponse for parse failures.
func (e *InvalidMoveError) Unwrap() error {
	if e.cause == nil && e.Reason == ReasonMalformedResponse {
		return ErrMalformedResponse
	}
	return e.cause
}

// IsMalformed reports whether the error came from parsing rather than legality.
func (e *InvalidMoveError) IsMalformed() bool {
	return e.Reason == ReasonMalformedResponse
}

// ErrSessionExists is returned when creating a session under an ID already in use.
var ErrSessionExists = errors.New("session already exists")
