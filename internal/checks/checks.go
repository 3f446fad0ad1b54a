package checks

import (
	"context"
	"time"

	"ozzus/prime-checker/internal/domain"
)

const (
	DefaultMaxValue int64 = 1_000_000_000
	DefaultTimeout        = 5 * time.Second
)

// Policy is the per-deployment limit set applied to every check.
type Policy struct {
	MaxValue int64
	Timeout  time.Duration
}

// DefaultPolicy returns the limits used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{MaxValue: DefaultMaxValue, Timeout: DefaultTimeout}
}

// WithDefaults fills unset limits from DefaultPolicy.
func (p Policy) WithDefaults() Policy {
	if p.MaxValue <= 0 {
		p.MaxValue = DefaultMaxValue
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	return p
}

// Checker decides primality of an already validated number.
type Checker interface {
	Check(ctx context.Context, n int64) domain.CheckResult
}
