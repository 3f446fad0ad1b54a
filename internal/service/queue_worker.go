package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/atomic"

	"ozzus/prime-checker/internal/domain"
	"ozzus/prime-checker/internal/lib/logger/sl"
	"ozzus/prime-checker/internal/repository"
)

type QueueConfig struct {
	PollInterval time.Duration
	Workers      int
}

// QueueWorker drains check requests from the request repository and runs
// them through the PrimeService.
type QueueWorker struct {
	requests     repository.RequestRepository
	service      *PrimeService
	log          *slog.Logger
	pollInterval time.Duration
	workers      int
	running      atomic.Bool
}

func NewQueueWorker(
	requests repository.RequestRepository,
	service *PrimeService,
	log *slog.Logger,
	config QueueConfig,
) *QueueWorker {
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}

	return &QueueWorker{
		requests:     requests,
		service:      service,
		log:          log.With("component", "queue_worker"),
		pollInterval: config.PollInterval,
		workers:      config.Workers,
	}
}

// Start polls until ctx is cancelled.
func (w *QueueWorker) Start(ctx context.Context) error {
	w.running.Store(true)
	defer w.running.Store(false)

	w.log.Info("queue worker started",
		"poll_interval", w.pollInterval.String(),
		"workers", w.workers,
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.processRequests(ctx); err != nil {
				w.log.Error("failed to process requests", sl.Err(err))
			}
		case <-ctx.Done():
			w.log.Info("queue worker stopped")
			return nil
		}
	}
}

func (w *QueueWorker) IsRunning() bool {
	return w.running.Load()
}

func (w *QueueWorker) processRequests(ctx context.Context) error {
	requests, fetchErr := w.requests.FetchRequests(ctx)
	if fetchErr != nil {
		fetchErr = fmt.Errorf("failed to fetch requests: %w", fetchErr)
	}

	if len(requests) > 0 {
		var processed, skipped atomic.Int64

		p := pool.New().WithMaxGoroutines(w.workers)
		for _, req := range requests {
			req := req
			p.Go(func() {
				if w.processRequest(ctx, req) {
					processed.Inc()
					return
				}
				skipped.Inc()
			})
		}
		p.Wait()

		w.log.Info("requests processing summary",
			"total", len(requests),
			"processed", processed.Load(),
			"skipped", skipped.Load(),
		)
	}

	// Offsets are committed once per batch so they only move forward.
	if err := w.requests.Commit(ctx); err != nil {
		return errors.Join(fetchErr, fmt.Errorf("failed to commit requests: %w", err))
	}

	return fetchErr
}

// processRequest reports whether the request was answered. Unpublished
// results are nacked so the request is delivered again.
func (w *QueueWorker) processRequest(ctx context.Context, req domain.CheckRequest) bool {
	result, err := w.service.Process(ctx, req)
	if err != nil {
		w.log.Error("failed to publish result",
			"request_id", req.ID,
			"verdict", result.Verdict,
			sl.Err(err),
		)
		w.requests.NackRequest(req.ID)
		return false
	}

	w.requests.AckRequest(req.ID)
	return true
}
