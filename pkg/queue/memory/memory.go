package memory

import (
	"context"

	"github.com/lifeos/lifeos/pkg/apis/queue"
)

// Queue is an in-process channel-backed queue.Queue, used when no Redis URL is
// configured and throughout the tests. Events do not survive a restart.
type Queue struct {
	events chan queue.MessageCreated
}

func New(size int) *Queue {
	return &Queue{events: make(chan queue.MessageCreated, size)}
}

func (q *Queue) Publish(ctx context.Context, ev queue.MessageCreated) error {
	select {
	case q.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) Next(ctx context.Context) (*queue.MessageCreated, error) {
	select {
	case ev := <-q.events:
		return &ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
