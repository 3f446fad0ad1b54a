package checks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/panics"

	"ozzus/prime-checker/internal/domain"
)

// pollInterval is how many divisor checks run between context polls.
const pollInterval = 1 << 14

type searchFunc func(ctx context.Context, n int64) (int64, error)

// PrimeChecker runs trial division under a wall-clock deadline.
type PrimeChecker struct {
	timeout time.Duration
	search  searchFunc
}

func NewPrimeChecker(timeout time.Duration) *PrimeChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &PrimeChecker{
		timeout: timeout,
		search:  oddTrialDivision,
	}
}

func (p *PrimeChecker) Timeout() time.Duration {
	return p.timeout
}

// Check classifies n. The odd-divisor search runs in its own goroutine and
// the deadline starts when that search starts. If the deadline wins, Check
// returns Timeout immediately; the abandoned search notices the cancelled
// context within pollInterval iterations and exits.
func (p *PrimeChecker) Check(ctx context.Context, n int64) domain.CheckResult {
	switch {
	case n < 2:
		return belowRangeResult(n)
	case n == 2:
		return primeResult(n)
	case n%2 == 0:
		return compositeResult(n, 2)
	}

	searchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type outcome struct {
		divisor int64
		err     error
	}

	// Buffered so an abandoned search never blocks on send.
	done := make(chan outcome, 1)

	go func() {
		var out outcome
		var pc panics.Catcher
		pc.Try(func() {
			out.divisor, out.err = p.search(searchCtx, n)
		})
		if r := pc.Recovered(); r != nil {
			out.err = fmt.Errorf("%v", r.Value)
		}
		done <- out
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return p.interruptedResult(ctx, n, out.err)
		}
		if out.divisor == 0 {
			return primeResult(n)
		}
		return compositeResult(n, out.divisor)
	case <-searchCtx.Done():
		return p.interruptedResult(ctx, n, searchCtx.Err())
	}
}

// interruptedResult reports Timeout only when the checker's own deadline
// fired. A caller that cancelled or carried an earlier deadline gets a Fault.
func (p *PrimeChecker) interruptedResult(ctx context.Context, n int64, err error) domain.CheckResult {
	if parentErr := ctx.Err(); parentErr != nil {
		return faultResult(n, parentErr)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return timeoutResult(n, p.timeout)
	}
	return faultResult(n, err)
}

// oddTrialDivision returns the smallest odd divisor of odd n in
// [3, floor(sqrt(n))], or 0 if there is none.
func oddTrialDivision(ctx context.Context, n int64) (int64, error) {
	steps := 0
	// i <= n/i is i*i <= n without overflow.
	for i := int64(3); i <= n/i; i += 2 {
		if steps++; steps == pollInterval {
			steps = 0
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if n%i == 0 {
			return i, nil
		}
	}
	return 0, nil
}
