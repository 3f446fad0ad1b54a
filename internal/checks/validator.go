package checks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ozzus/prime-checker/internal/domain"
)

var (
	// ErrEmptyInput is returned when the submitted number is blank after trimming.
	ErrEmptyInput = errors.New("empty input")
	// ErrNotInteger is returned when the submitted text is not a base-10 integer.
	ErrNotInteger = errors.New("not an integer")
)

// ValidationError rejects a parsed number that is outside policy.
type ValidationError struct {
	Reason   domain.InvalidReason
	MaxValue int64
}

func (e *ValidationError) Error() string {
	return invalidMessage(e.Reason, e.MaxValue)
}

// Validate checks n against [0, maxValue]. Zero and one are valid inputs.
func Validate(n, maxValue int64) error {
	if n < 0 {
		return &ValidationError{Reason: domain.ReasonNegative, MaxValue: maxValue}
	}
	if n > maxValue {
		return &ValidationError{Reason: domain.ReasonTooLarge, MaxValue: maxValue}
	}
	return nil
}

// ParseNumber turns raw user text into an integer.
//
// Integers that overflow int64 are reported as a ValidationError with the
// reason their sign implies, since no policy ceiling can be that large.
func ParseNumber(raw string, maxValue int64) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrEmptyInput
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}

	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(s, "-") {
			return 0, &ValidationError{Reason: domain.ReasonNegative, MaxValue: maxValue}
		}
		return 0, &ValidationError{Reason: domain.ReasonTooLarge, MaxValue: maxValue}
	}

	return 0, fmt.Errorf("%w: %q", ErrNotInteger, s)
}
