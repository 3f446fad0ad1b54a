package checks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ozzus/prime-checker/internal/domain"
)

// 1000000007 * 998244353: composite, but its smallest divisor is close to 1e9.
const noSmallDivisors int64 = 998244359987710471

func naiveSmallestDivisor(n int64) int64 {
	for d := int64(2); d*d <= n; d++ {
		if n%d == 0 {
			return d
		}
	}
	return 0
}

func TestPrimeCheckerKnownNumbers(t *testing.T) {
	checker := NewPrimeChecker(time.Second)

	tests := []struct {
		n           int64
		wantVerdict domain.Verdict
		wantWitness int64
		wantMessage string
	}{
		{0, domain.VerdictComposite, 0, "a prime must be ≥ 2"},
		{1, domain.VerdictComposite, 0, "a prime must be ≥ 2"},
		{2, domain.VerdictPrime, 0, "2 is prime"},
		{3, domain.VerdictPrime, 0, "3 is prime"},
		{4, domain.VerdictComposite, 2, "4 is not prime (divisible by 2)"},
		{9, domain.VerdictComposite, 3, "9 is not prime (divisible by 3)"},
		{15, domain.VerdictComposite, 3, "15 is not prime (divisible by 3)"},
		{25, domain.VerdictComposite, 5, "25 is not prime (divisible by 5)"},
		{97, domain.VerdictPrime, 0, "97 is prime"},
		{100, domain.VerdictComposite, 2, "100 is not prime (divisible by 2)"},
		{101, domain.VerdictPrime, 0, "101 is prime"},
		{1001, domain.VerdictComposite, 7, "1001 is not prime (divisible by 7)"},
		{1000000007, domain.VerdictPrime, 0, "1000000007 is prime"},
	}

	for _, tt := range tests {
		got := checker.Check(context.Background(), tt.n)
		if got.Verdict != tt.wantVerdict {
			t.Errorf("Check(%d) verdict = %s, want %s", tt.n, got.Verdict, tt.wantVerdict)
		}
		if got.Witness != tt.wantWitness {
			t.Errorf("Check(%d) witness = %d, want %d", tt.n, got.Witness, tt.wantWitness)
		}
		if got.Message != tt.wantMessage {
			t.Errorf("Check(%d) message = %q, want %q", tt.n, got.Message, tt.wantMessage)
		}
		if got.Number != tt.n {
			t.Errorf("Check(%d) number = %d", tt.n, got.Number)
		}
	}
}

func TestPrimeCheckerMatchesNaiveDivision(t *testing.T) {
	limit := int64(1_000_000)
	if testing.Short() {
		limit = 10_000
	}

	checker := NewPrimeChecker(10 * time.Second)
	for n := int64(2); n <= limit; n++ {
		got := checker.Check(context.Background(), n)
		want := naiveSmallestDivisor(n)

		if want == 0 {
			if got.Verdict != domain.VerdictPrime {
				t.Fatalf("Check(%d) = %s, want prime", n, got.Verdict)
			}
			continue
		}

		if got.Verdict != domain.VerdictComposite {
			t.Fatalf("Check(%d) = %s, want composite", n, got.Verdict)
		}
		if got.Witness != want {
			t.Fatalf("Check(%d) witness = %d, want smallest divisor %d", n, got.Witness, want)
		}
		if n%got.Witness != 0 || got.Witness <= 1 || got.Witness >= n {
			t.Fatalf("Check(%d) witness %d does not prove compositeness", n, got.Witness)
		}
	}
}

func TestPrimeCheckerIsIdempotent(t *testing.T) {
	checker := NewPrimeChecker(time.Second)

	for _, n := range []int64{0, 2, 91, 97, 7919, 1001, 123456789} {
		first := checker.Check(context.Background(), n)
		second := checker.Check(context.Background(), n)
		if first != second {
			t.Errorf("Check(%d) not idempotent: %+v vs %+v", n, first, second)
		}
	}
}

func TestPrimeCheckerTimeout(t *testing.T) {
	checker := NewPrimeChecker(time.Millisecond)

	start := time.Now()
	got := checker.Check(context.Background(), noSmallDivisors)
	elapsed := time.Since(start)

	if got.Verdict != domain.VerdictTimeout {
		t.Fatalf("verdict = %s, want timeout", got.Verdict)
	}
	if got.Witness != 0 {
		t.Errorf("timeout reported witness %d", got.Witness)
	}
	want := "computation timed out (exceeded 0.001 seconds), number may be too large"
	if got.Message != want {
		t.Errorf("message = %q, want %q", got.Message, want)
	}
	if elapsed > 250*time.Millisecond {
		t.Errorf("Check took %s, want close to the 1ms deadline", elapsed)
	}
}

func TestPrimeCheckerDoesNotWaitForStuckSearch(t *testing.T) {
	checker := NewPrimeChecker(20 * time.Millisecond)
	release := make(chan struct{})
	defer close(release)

	checker.search = func(ctx context.Context, n int64) (int64, error) {
		<-release
		return 0, nil
	}

	start := time.Now()
	got := checker.Check(context.Background(), 999)
	if got.Verdict != domain.VerdictTimeout {
		t.Fatalf("verdict = %s, want timeout", got.Verdict)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Check blocked for %s on a search that ignores cancellation", elapsed)
	}
}

func TestOddTrialDivisionStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	divisor, err := oddTrialDivision(ctx, noSmallDivisors)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if divisor != 0 {
		t.Errorf("divisor = %d after cancellation", divisor)
	}
}

func TestPrimeCheckerFault(t *testing.T) {
	tests := []struct {
		name   string
		search searchFunc
		want   string
	}{
		{
			name: "panic",
			search: func(ctx context.Context, n int64) (int64, error) {
				panic("divisor table corrupted")
			},
			want: "computation error: divisor table corrupted",
		},
		{
			name: "error",
			search: func(ctx context.Context, n int64) (int64, error) {
				return 0, errors.New("out of workers")
			},
			want: "computation error: out of workers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewPrimeChecker(time.Second)
			checker.search = tt.search

			got := checker.Check(context.Background(), 97)
			if got.Verdict != domain.VerdictFault {
				t.Fatalf("verdict = %s, want fault", got.Verdict)
			}
			if got.Message != tt.want {
				t.Errorf("message = %q, want %q", got.Message, tt.want)
			}
			if got.Witness != 0 {
				t.Errorf("fault reported witness %d", got.Witness)
			}
		})
	}
}

func TestPrimeCheckerParentCancelled(t *testing.T) {
	checker := NewPrimeChecker(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := checker.Check(ctx, noSmallDivisors)
	if got.Verdict != domain.VerdictFault {
		t.Fatalf("verdict = %s, want fault", got.Verdict)
	}
	if !strings.Contains(got.Message, context.Canceled.Error()) {
		t.Errorf("message = %q, want cancellation detail", got.Message)
	}
}

func TestNewPrimeCheckerDefaultsTimeout(t *testing.T) {
	if got := NewPrimeChecker(0).Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout() = %s, want %s", got, DefaultTimeout)
	}
}

func TestPrimeCheckerParentDeadline(t *testing.T) {
	checker := NewPrimeChecker(time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	got := checker.Check(ctx, noSmallDivisors)
	if got.Verdict != domain.VerdictFault {
		t.Fatalf("verdict = %s, want fault for a caller deadline", got.Verdict)
	}
	if want := "computation error: " + context.DeadlineExceeded.Error(); got.Message != want {
		t.Errorf("message = %q, want %q", got.Message, want)
	}
	if strings.Contains(got.Message, "60 seconds") {
		t.Errorf("message reports the checker timeout: %q", got.Message)
	}
}
