package checks

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"ozzus/prime-checker/internal/domain"
)

const (
	MessageBelowRange = "a prime must be ≥ 2"
	MessageNegative   = "please enter a non-negative integer"
	MessageEmptyInput = "please enter a number"
	MessageNotInteger = "please enter a valid integer"
)

func primeResult(n int64) domain.CheckResult {
	return domain.CheckResult{
		Number:  n,
		Verdict: domain.VerdictPrime,
		Message: fmt.Sprintf("%d is prime", n),
	}
}

func compositeResult(n, divisor int64) domain.CheckResult {
	return domain.CheckResult{
		Number:  n,
		Verdict: domain.VerdictComposite,
		Witness: divisor,
		Message: fmt.Sprintf("%d is not prime (divisible by %d)", n, divisor),
	}
}

// belowRangeResult is non-prime without a witness.
func belowRangeResult(n int64) domain.CheckResult {
	return domain.CheckResult{
		Number:  n,
		Verdict: domain.VerdictComposite,
		Message: MessageBelowRange,
	}
}

func timeoutResult(n int64, timeout time.Duration) domain.CheckResult {
	return domain.CheckResult{
		Number:  n,
		Verdict: domain.VerdictTimeout,
		Message: fmt.Sprintf("computation timed out (exceeded %s seconds), number may be too large", formatSeconds(timeout)),
	}
}

func faultResult(n int64, err error) domain.CheckResult {
	return FaultResult(n, err.Error())
}

// FaultResult renders an internal failure that happened while checking n.
func FaultResult(n int64, detail string) domain.CheckResult {
	return domain.CheckResult{
		Number:  n,
		Verdict: domain.VerdictFault,
		Message: "computation error: " + detail,
	}
}

// InvalidResult renders a policy rejection of n.
func InvalidResult(n int64, verr *ValidationError) domain.CheckResult {
	return domain.CheckResult{
		Number:  n,
		Verdict: domain.VerdictInvalid,
		Reason:  verr.Reason,
		Message: verr.Error(),
	}
}

// RejectedInputResult renders a ParseNumber failure.
func RejectedInputResult(err error) domain.CheckResult {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return InvalidResult(0, verr)
	case errors.Is(err, ErrEmptyInput):
		return domain.CheckResult{
			Verdict: domain.VerdictInvalid,
			Reason:  domain.ReasonEmpty,
			Message: MessageEmptyInput,
		}
	default:
		return domain.CheckResult{
			Verdict: domain.VerdictInvalid,
			Reason:  domain.ReasonNotInteger,
			Message: MessageNotInteger,
		}
	}
}

func invalidMessage(reason domain.InvalidReason, maxValue int64) string {
	if reason == domain.ReasonNegative {
		return MessageNegative
	}
	return "input too large, maximum allowed is " + humanize.Comma(maxValue)
}

// formatSeconds prints a duration as a plain number of seconds: 5s -> "5", 1500ms -> "1.5".
func formatSeconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
