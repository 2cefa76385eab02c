package matcher

import (
	"errors"
	"fmt"
)

// Rejection reasons. A match either succeeds completely or fails with one of these.
var (
	// ErrInvalidProtocol indicates the protocol is not a valid sds-protocol definition.
	ErrInvalidProtocol = errors.New("invalid protocol")

	// ErrUnsupportedProtocol indicates no population strategy is bound to the protocol name.
	ErrUnsupportedProtocol = errors.New("unsupported protocol")

	// ErrTooManyCandidates indicates more candidates than slots were offered.
	ErrTooManyCandidates = errors.New("more candidates than protocol inputs")

	// ErrMandatorySlotUnfilled indicates a mandatory slot received no valid candidate.
	ErrMandatorySlotUnfilled = errors.New("mandatory input not satisfied")

	// ErrLeftoverCandidates indicates candidates remained after every slot was visited.
	ErrLeftoverCandidates = errors.New("unconsumed candidates")
)

// MatchError wraps a rejection with the position at which it happened.
type MatchError struct {
	Op        string // Operation being performed (e.g., "Match", "Populate")
	Protocol  string // Protocol name
	Slot      int    // Slot index, -1 when not applicable
	Candidate int    // Candidate index, -1 when not applicable
	Err       error  // Underlying rejection reason
}

func (e *MatchError) Error() string {
	switch {
	case e.Slot >= 0 && e.Candidate >= 0:
		return fmt.Sprintf("%s failed for protocol %s at input %d (candidate %d): %v", e.Op, e.Protocol, e.Slot, e.Candidate, e.Err)
	case e.Slot >= 0:
		return fmt.Sprintf("%s failed for protocol %s at input %d: %v", e.Op, e.Protocol, e.Slot, e.Err)
	case e.Candidate >= 0:
		return fmt.Sprintf("%s failed for protocol %s at candidate %d: %v", e.Op, e.Protocol, e.Candidate, e.Err)
	default:
		return fmt.Sprintf("%s failed for protocol %s: %v", e.Op, e.Protocol, e.Err)
	}
}

func (e *MatchError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for match errors.
func (e *MatchError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newMatchError(protocol string, slot, candidate int, err error) *MatchError {
	return &MatchError{
		Op:        "Match",
		Protocol:  protocol,
		Slot:      slot,
		Candidate: candidate,
		Err:       err,
	}
}

// IsRejection reports whether err is one of the expected rejection reasons.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidProtocol) ||
		errors.Is(err, ErrUnsupportedProtocol) ||
		errors.Is(err, ErrTooManyCandidates) ||
		errors.Is(err, ErrMandatorySlotUnfilled) ||
		errors.Is(err, ErrLeftoverCandidates)
}
