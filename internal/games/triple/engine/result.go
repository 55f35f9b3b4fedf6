package engine

// Reason explains why an operation was declined.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonLocked
	ReasonAlreadyMatched
	ReasonObstacle
	ReasonClickLimit
	ReasonBufferFull
	ReasonBusy
	ReasonNoQuota
	ReasonNoCandidates
	ReasonHeld     // The card is already in the buffer
	ReasonFinished // The level is already won or lost
	ReasonNotFound // No card or slot at that position
)

var reasonCodes = [...]string{
	ReasonNone:           "",
	ReasonLocked:         "LOCKED",
	ReasonAlreadyMatched: "ALREADY_MATCHED",
	ReasonObstacle:       "OBSTACLE",
	ReasonClickLimit:     "CLICK_LIMIT",
	ReasonBufferFull:     "BUFFER_FULL",
	ReasonBusy:           "BUSY",
	ReasonNoQuota:        "NO_QUOTA",
	ReasonNoCandidates:   "NO_CANDIDATES",
	ReasonHeld:           "HELD",
	ReasonFinished:       "FINISHED",
	ReasonNotFound:       "NOT_FOUND",
}

// String returns the reason code.
func (r Reason) String() string {
	if int(r) < len(reasonCodes) {
		return reasonCodes[r]
	}
	return "UNKNOWN"
}

// Outcome is the common part of every operation result.
type Outcome struct {
	Accepted bool
	Reason   Reason
}

func declined(r Reason) Outcome {
	return Outcome{Reason: r}
}

var accepted = Outcome{Accepted: true}

// SelectionResult is returned by Select.
type SelectionResult struct {
	Outcome
	Ref     Ref
	Slot    int   // Buffer slot the card went to, -1 when declined
	Matched []Ref // Cards eliminated as a consequence of this selection
}

// ReturnResult is returned by ReturnFromBuffer.
type ReturnResult struct {
	Outcome
	Ref Ref
}

// HintResult is returned by Hint.
type HintResult struct {
	Outcome
	Type string
	Refs []Ref
}

// RefreshResult is returned by Refresh.
type RefreshResult struct {
	Outcome
	Moved []Ref
}

// RemoveResult is returned by RemoveAll.
type RemoveResult struct {
	Outcome
	Returned []Ref
}

// Status is the level state as seen by the status evaluator.
type Status uint8

const (
	InProgress Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Won:
		return "WON"
	case Lost:
		return "LOST"
	default:
		return "IN_PROGRESS"
	}
}
