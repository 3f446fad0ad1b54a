package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"ozzus/prime-checker/internal/domain"
	"ozzus/prime-checker/internal/lib/logger/sl"
)

const (
	fetchWindow   = 5 * time.Second
	maxBatchSize  = 100
	commitTimeout = 5 * time.Second
	commitRetries = 3
)

// RequestRepository hands out queued requests and records their outcome.
// Ack and Nack only mark a request; Commit persists progress for the
// marked batch.
type RequestRepository interface {
	FetchRequests(ctx context.Context) ([]domain.CheckRequest, error)
	AckRequest(requestID string)
	NackRequest(requestID string)
	Commit(ctx context.Context) error
}

type messageReader interface {
	ReadEvent(ctx context.Context, v interface{}) (kafkago.Message, error)
	CommitMessage(ctx context.Context, msg kafkago.Message) error
}

type entryState int

const (
	statePending entryState = iota
	stateAcked
	stateNacked
)

type entry struct {
	msg   kafkago.Message
	state entryState
}

type KafkaRequestRepository struct {
	consumer messageReader
	log      *slog.Logger

	mu      sync.Mutex
	entries []*entry
	byID    map[string][]*entry
	// blocked holds, per partition, the offset of a nacked message. Nothing
	// at or past it is committed until the partition is consumed again
	// after a restart or rebalance.
	blocked map[int]int64

	// retryDelay is the base backoff between commit attempts.
	retryDelay time.Duration
}

func NewKafkaRequestRepository(consumer messageReader, log *slog.Logger) *KafkaRequestRepository {
	return &KafkaRequestRepository{
		consumer:   consumer,
		log:        log.With("component", "request_repository"),
		byID:       make(map[string][]*entry),
		blocked:    make(map[int]int64),
		retryDelay: 200 * time.Millisecond,
	}
}

// FetchRequests collects up to maxBatchSize requests arriving within
// fetchWindow. Undecodable messages and messages without an id are marked
// acked so they are committed with the batch and never retried.
func (r *KafkaRequestRepository) FetchRequests(ctx context.Context) ([]domain.CheckRequest, error) {
	var requests []domain.CheckRequest

	timeoutCtx, cancel := context.WithTimeout(ctx, fetchWindow)
	defer cancel()

	for len(requests) < maxBatchSize {
		if err := timeoutCtx.Err(); err != nil {
			break
		}

		var req domain.CheckRequest
		msg, err := r.consumer.ReadEvent(timeoutCtx, &req)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			if msg.Value != nil {
				r.log.Warn("skipping malformed request", "offset", msg.Offset, sl.Err(err))
				r.track("", msg, stateAcked)
				continue
			}

			return requests, fmt.Errorf("failed to read event: %w", err)
		}

		if req.ID == "" {
			r.log.Warn("skipping request without id", "offset", msg.Offset)
			r.track("", msg, stateAcked)
			continue
		}

		r.track(req.ID, msg, statePending)
		requests = append(requests, req)
	}

	return requests, nil
}

func (r *KafkaRequestRepository) track(requestID string, msg kafkago.Message, state entryState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := &entry{msg: msg, state: state}
	r.entries = append(r.entries, e)
	if requestID != "" {
		r.byID[requestID] = append(r.byID[requestID], e)
	}
}

func (r *KafkaRequestRepository) AckRequest(requestID string) {
	r.mark(requestID, stateAcked)
}

// NackRequest leaves the request uncommitted so it is delivered again after
// a restart or rebalance. Later offsets of its partition stay uncommitted too.
func (r *KafkaRequestRepository) NackRequest(requestID string) {
	r.mark(requestID, stateNacked)
}

func (r *KafkaRequestRepository) mark(requestID string, state entryState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.byID[requestID] {
		e.state = state
	}
}

// Commit commits, per partition, the highest offset below which every
// tracked message was acked, then forgets the batch. A nacked or unmarked
// message blocks its partition.
func (r *KafkaRequestRepository) Commit(ctx context.Context) error {
	r.mu.Lock()
	entries := r.entries
	r.entries = nil
	r.byID = make(map[string][]*entry)

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].msg.Partition != entries[j].msg.Partition {
			return entries[i].msg.Partition < entries[j].msg.Partition
		}
		return entries[i].msg.Offset < entries[j].msg.Offset
	})

	var toCommit []kafkago.Message
	for i := 0; i < len(entries); {
		partition := entries[i].msg.Partition
		_, stuck := r.blocked[partition]

		var last *kafkago.Message
		for ; i < len(entries) && entries[i].msg.Partition == partition; i++ {
			e := entries[i]
			if stuck {
				continue
			}
			if e.state != stateAcked {
				stuck = true
				r.blocked[partition] = e.msg.Offset
				continue
			}
			last = &e.msg
		}

		if last != nil {
			toCommit = append(toCommit, *last)
		}
	}
	r.mu.Unlock()

	var errs []error
	for _, msg := range toCommit {
		if err := r.commit(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("partition %d offset %d: %w", msg.Partition, msg.Offset, err))
		}
	}

	return errors.Join(errs...)
}

func (r *KafkaRequestRepository) commit(ctx context.Context, msg kafkago.Message) error {
	var lastErr error

	for attempt := 0; attempt < commitRetries; attempt++ {
		timeout := commitTimeout
		if deadline, ok := ctx.Deadline(); ok {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return ctx.Err()
			}
			if remaining < timeout {
				timeout = remaining
			}
		}

		// Detached from ctx so shutdown does not abort a commit already in flight.
		commitCtx, cancel := context.WithTimeout(context.Background(), timeout)
		err := r.consumer.CommitMessage(commitCtx, msg)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}

		time.Sleep(time.Duration(attempt+1) * r.retryDelay)
	}

	return fmt.Errorf("failed to commit message: %w", lastErr)
}

// Pending reports how many fetched messages wait for the next Commit.
func (r *KafkaRequestRepository) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Blocked reports whether commits on partition stop at a nacked offset.
func (r *KafkaRequestRepository) Blocked(partition int) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	offset, ok := r.blocked[partition]
	return offset, ok
}
