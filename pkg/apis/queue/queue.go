package queue

import (
	"context"

	"github.com/google/uuid"
)

// MessageCreated is emitted once per message creation and consumed by the
// enrichment worker. Attempt counts deliveries of this event so the worker can
// stop requeueing after repeated failures.
type MessageCreated struct {
	MessageID uuid.UUID `json:"messageId"`
	UserID    uuid.UUID `json:"userId"`
	Content   string    `json:"content"`
	Attempt   int       `json:"attempt"`
}

// Queue decouples message creation from enrichment. Delivery is at least once:
// a consumer that fails requeues the event, so everything downstream must be
// idempotent.
type Queue interface {
	// Publish enqueues an event.
	Publish(ctx context.Context, ev MessageCreated) error

	// Next blocks until an event is available or the context is canceled.
	Next(ctx context.Context) (*MessageCreated, error)
}
