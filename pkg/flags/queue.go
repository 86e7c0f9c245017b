package flags

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/lifeos/lifeos/pkg/apis/queue"
	"github.com/lifeos/lifeos/pkg/queue/memory"
	"github.com/lifeos/lifeos/pkg/queue/redisqueue"
)

// QueueFlags configures the message enrichment queue. With no Redis URL the
// queue is in-process and events are lost on restart; fine for development,
// not for a real deployment.
type QueueFlags struct {
	RedisURL   string
	BufferSize int
}

func NewQueueFlags() *QueueFlags {
	return &QueueFlags{
		RedisURL:   os.Getenv("REDIS_URL"),
		BufferSize: 1024,
	}
}

func (f *QueueFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.RedisURL, "queue-redis-url", f.RedisURL, "Redis URL backing the enrichment queue; in-memory when unset")
	fs.IntVar(&f.BufferSize, "queue-buffer-size", f.BufferSize, "Buffer size of the in-memory queue")
}

func (f *QueueFlags) GetQueue() (queue.Queue, error) {
	if f.RedisURL != "" {
		return redisqueue.New(f.RedisURL)
	}

	return memory.New(f.BufferSize), nil
}
