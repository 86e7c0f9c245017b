package redisqueue

import (
	"context"
	"encoding/json"
	"time"

	r "gopkg.in/redis.v5"

	"github.com/lifeos/lifeos/pkg/apis/queue"
)

const key = "_LIFEOS_ENRICH_"

// pollTimeout bounds each blocking pop so context cancellation is noticed
// promptly.
const pollTimeout = 2 * time.Second

// Queue is a Redis-list backed queue.Queue. Events are JSON payloads pushed
// with LPUSH and consumed with BRPOP, so multiple workers can share one list.
type Queue struct {
	client *r.Client
}

func New(url string) (*Queue, error) {
	opts, err := r.ParseURL(url)
	if err != nil {
		return nil, err
	}

	return &Queue{client: r.NewClient(opts)}, nil
}

func (q *Queue) Publish(_ context.Context, ev queue.MessageCreated) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return q.client.LPush(key, payload).Err()
}

func (q *Queue) Next(ctx context.Context) (*queue.MessageCreated, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := q.client.BRPop(pollTimeout, key).Result()
		if err == r.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}

		// BRPop returns [key, value].
		var ev queue.MessageCreated
		if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
			return nil, err
		}
		return &ev, nil
	}
}
