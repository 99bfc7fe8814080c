package postgres

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// NullOutboxRepository discards events. One-shot CLI commands use it since no
// publisher runs beside them; each dropped event is logged at debug level.
type NullOutboxRepository struct {
	logger  zerolog.Logger
	dropped atomic.Int64
}

// NewNullOutboxRepository creates a new NullOutboxRepository.
func NewNullOutboxRepository(logger zerolog.Logger) *NullOutboxRepository {
	return &NullOutboxRepository{logger: logger.With().Str("component", "null_outbox").Logger()}
}

// Create validates event like the real outbox would, then drops it.
func (r *NullOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	r.dropped.Add(1)
	r.logger.Debug().
		Str("event_type", event.EventType).
		Str("aggregate_id", event.AggregateID).
		Msg("outbox event dropped")
	return nil
}

// Dropped reports how many events Create has discarded.
func (r *NullOutboxRepository) Dropped() int64 {
	return r.dropped.Load()
}

func (r *NullOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (r *NullOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return nil
}

func (r *NullOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return nil
}
