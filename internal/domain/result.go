package domain

import "time"

// Verdict is the terminal outcome of a single primality check.
type Verdict string

const (
	VerdictPrime     Verdict = "prime"
	VerdictComposite Verdict = "composite"
	VerdictInvalid   Verdict = "invalid"
	VerdictTimeout   Verdict = "timeout"
	VerdictFault     Verdict = "fault"
)

// Verdicts lists every verdict in a stable order.
var Verdicts = []Verdict{VerdictPrime, VerdictComposite, VerdictInvalid, VerdictTimeout, VerdictFault}

// InvalidReason tells why a number was rejected before any computation.
type InvalidReason string

const (
	ReasonNegative InvalidReason = "negative"
	ReasonTooLarge InvalidReason = "too_large"

	// Input that never became an integer.
	ReasonEmpty      InvalidReason = "empty"
	ReasonNotInteger InvalidReason = "not_integer"
)

type CheckResult struct {
	RequestID string        `json:"request_id,omitempty"`
	Number    int64         `json:"number"`
	Verdict   Verdict       `json:"verdict"`
	Witness   int64         `json:"witness,omitempty"`
	Reason    InvalidReason `json:"reason,omitempty"`
	Message   string        `json:"message"`
	Duration  int64         `json:"duration_ms"`
	Timestamp time.Time     `json:"timestamp"`
}

// Completed reports whether the check reached a definite prime/composite answer.
func (r CheckResult) Completed() bool {
	return r.Verdict == VerdictPrime || r.Verdict == VerdictComposite
}

func (r CheckResult) IsPrime() bool {
	return r.Verdict == VerdictPrime
}

// HasWitness is false for composites below 2, which have no divisor to report.
func (r CheckResult) HasWitness() bool {
	return r.Verdict == VerdictComposite && r.Witness > 1
}
