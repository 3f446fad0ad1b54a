package repository

import (
	"context"
	"fmt"
	"log/slog"

	"ozzus/prime-checker/internal/domain"
)

type ResultRepository interface {
	SendResult(ctx context.Context, result domain.CheckResult) error
}

type eventPublisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
	Topic() string
}

type KafkaResultRepository struct {
	producer eventPublisher
	log      *slog.Logger
}

func NewKafkaResultRepository(producer eventPublisher, log *slog.Logger) *KafkaResultRepository {
	return &KafkaResultRepository{
		producer: producer,
		log:      log.With("component", "result_repository"),
	}
}

func (r *KafkaResultRepository) SendResult(ctx context.Context, result domain.CheckResult) error {
	if err := r.producer.PublishEvent(ctx, result.RequestID, result); err != nil {
		return fmt.Errorf("failed to publish result %s: %w", result.RequestID, err)
	}

	r.log.Debug("result published",
		"request_id", result.RequestID,
		"verdict", result.Verdict,
		"topic", r.producer.Topic(),
	)
	return nil
}

// NoopResultRepository drops results. Used when no results topic is configured.
type NoopResultRepository struct{}

func (NoopResultRepository) SendResult(context.Context, domain.CheckResult) error {
	return nil
}
