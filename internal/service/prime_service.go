package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"ozzus/prime-checker/internal/checks"
	"ozzus/prime-checker/internal/domain"
	"ozzus/prime-checker/internal/lib/logger/sl"
	"ozzus/prime-checker/internal/repository"
)

const (
	// MessageBusy is the fault detail reported when no check slot frees up in time.
	MessageBusy = "server busy, try again later"

	// DefaultQueueTimeout bounds the wait for a check slot. A request ends
	// within this wait plus the check timeout.
	DefaultQueueTimeout = 250 * time.Millisecond
)

var ErrNotRunning = errors.New("service is not running")

type Config struct {
	Name          string
	Policy        checks.Policy
	MaxConcurrent int
	QueueTimeout  time.Duration
}

// PrimeService is the single entry point for checks coming from HTTP and
// from the request queue. It enforces the policy, caps concurrent searches
// and publishes every result.
type PrimeService struct {
	checker      checks.Checker
	results      repository.ResultRepository
	log          *slog.Logger
	name         string
	policy       checks.Policy
	slots        *semaphore.Weighted
	queueTimeout time.Duration

	running  atomic.Bool
	inFlight atomic.Int64
	total    atomic.Int64
	verdicts map[domain.Verdict]*atomic.Int64
}

func NewPrimeService(
	checker checks.Checker,
	results repository.ResultRepository,
	log *slog.Logger,
	config Config,
) *PrimeService {
	if config.Name == "" {
		config.Name = "prime-checker"
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	if results == nil {
		results = repository.NoopResultRepository{}
	}
	config.Policy = config.Policy.WithDefaults()
	if config.QueueTimeout <= 0 {
		config.QueueTimeout = DefaultQueueTimeout
	}

	verdicts := make(map[domain.Verdict]*atomic.Int64, len(domain.Verdicts))
	for _, v := range domain.Verdicts {
		verdicts[v] = atomic.NewInt64(0)
	}

	return &PrimeService{
		checker:      checker,
		results:      results,
		log:          log.With("component", "prime_service"),
		name:         config.Name,
		policy:       config.Policy,
		slots:        semaphore.NewWeighted(int64(config.MaxConcurrent)),
		queueTimeout: config.QueueTimeout,
		verdicts:     verdicts,
	}
}

func (s *PrimeService) Start() {
	s.running.Store(true)
	s.log.Info("prime service started",
		"max_value", s.policy.MaxValue,
		"timeout", s.policy.Timeout.String(),
	)
}

func (s *PrimeService) Stop() {
	if s.running.CAS(true, false) {
		s.log.Info("prime service stopped", "in_flight", s.inFlight.Load())
	}
}

// Check parses, validates and checks req.Number, then publishes the result.
// It always returns a populated result. The error is non-nil only when the
// raw input could not be parsed as an integer; the result then carries the
// matching Invalid verdict.
func (s *PrimeService) Check(ctx context.Context, req domain.CheckRequest) (domain.CheckResult, error) {
	result, parseErr := s.evaluate(ctx, req)
	if err := s.results.SendResult(ctx, result); err != nil {
		s.log.Warn("failed to publish result", "request_id", result.RequestID, sl.Err(err))
	}
	return result, parseErr
}

// Process is Check for queued requests: a publish failure is returned so the
// caller can leave the request unacknowledged.
func (s *PrimeService) Process(ctx context.Context, req domain.CheckRequest) (domain.CheckResult, error) {
	result, _ := s.evaluate(ctx, req)
	if err := s.results.SendResult(ctx, result); err != nil {
		return result, err
	}
	return result, nil
}

func (s *PrimeService) evaluate(ctx context.Context, req domain.CheckRequest) (domain.CheckResult, error) {
	start := time.Now()

	n, err := checks.ParseNumber(string(req.Number), s.policy.MaxValue)
	if err != nil {
		return s.finish(req.ID, checks.RejectedInputResult(err), start), err
	}

	return s.finish(req.ID, s.checkNumber(ctx, n), start), nil
}

func (s *PrimeService) checkNumber(ctx context.Context, n int64) domain.CheckResult {
	var verr *checks.ValidationError
	if err := checks.Validate(n, s.policy.MaxValue); errors.As(err, &verr) {
		return checks.InvalidResult(n, verr)
	}

	acquireCtx, cancel := context.WithTimeout(ctx, s.queueTimeout)
	defer cancel()
	if err := s.slots.Acquire(acquireCtx, 1); err != nil {
		s.log.Warn("no free check slot", "number", n, "wait", s.queueTimeout.String())
		return checks.FaultResult(n, MessageBusy)
	}
	defer s.slots.Release(1)

	s.inFlight.Inc()
	defer s.inFlight.Dec()

	return s.checker.Check(ctx, n)
}

func (s *PrimeService) finish(requestID string, result domain.CheckResult, start time.Time) domain.CheckResult {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	result.RequestID = requestID
	result.Duration = time.Since(start).Milliseconds()
	result.Timestamp = time.Now()

	s.total.Inc()
	if c, ok := s.verdicts[result.Verdict]; ok {
		c.Inc()
	}

	level := slog.LevelInfo
	if result.Verdict == domain.VerdictFault {
		level = slog.LevelError
	}
	s.log.Log(context.Background(), level, "check finished",
		"request_id", result.RequestID,
		"number", result.Number,
		"verdict", result.Verdict,
		"duration_ms", result.Duration,
	)

	return result
}

func (s *PrimeService) HealthCheck(_ context.Context) error {
	if !s.running.Load() {
		return ErrNotRunning
	}
	return nil
}

func (s *PrimeService) Status() domain.ServiceStatus {
	verdicts := make(map[domain.Verdict]int64, len(s.verdicts))
	for v, c := range s.verdicts {
		verdicts[v] = c.Load()
	}

	return domain.ServiceStatus{
		Service:   s.name,
		IsRunning: s.running.Load(),
		InFlight:  s.inFlight.Load(),
		Total:     s.total.Load(),
		Verdicts:  verdicts,
		MaxValue:  s.policy.MaxValue,
		Timeout:   s.policy.Timeout.String(),
	}
}

func (s *PrimeService) Policy() checks.Policy {
	return s.policy
}

func (s *PrimeService) Name() string {
	return s.name
}
