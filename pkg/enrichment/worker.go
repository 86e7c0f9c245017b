package enrichment

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/lifeos/lifeos/pkg/apis/queue"
)

var (
	workerRequeues = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifeos_enrichment_requeues_total",
		Help: "Events put back on the queue after a failed run",
	})

	workerDeadLetters = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifeos_enrichment_dead_letters_total",
		Help: "Events dropped after exhausting their attempts",
	})
)

// DefaultMaxAttempts is how many deliveries an event gets before it is
// dropped. Transient provider errors (rate limits mostly) clear well within
// three tries; anything still failing is a malformed response we would never
// parse.
const DefaultMaxAttempts = 3

// defaultRequeueDelay spaces deliveries of a failed event out so a
// rate-limited provider isn't hit again within the same limit window. The
// wait grows linearly with the attempt count.
const defaultRequeueDelay = 5 * time.Second

// Worker consumes MessageCreated events and runs the enrichment pipeline for
// each. It owns the retry policy the pipeline itself deliberately does not
// have: failed events are requeued with an incremented attempt count, then
// dropped once maxAttempts is exhausted.
type Worker struct {
	q            queue.Queue
	enricher     *Enricher
	maxAttempts  int
	requeueDelay time.Duration
}

func NewWorker(q queue.Queue, enricher *Enricher, maxAttempts int) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Worker{q: q, enricher: enricher, maxAttempts: maxAttempts, requeueDelay: defaultRequeueDelay}
}

// Run consumes events until the context is canceled. It implements the
// DaemonProcess contract used by the serve command.
func (w *Worker) Run(ctx context.Context) {
	log.Info("enrichment worker started")
	for {
		ev, err := w.q.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("enrichment worker stopping")
				return
			}
			log.WithError(err).Error("error reading from enrichment queue")
			continue
		}

		w.process(ctx, *ev)
	}
}

func (w *Worker) process(ctx context.Context, ev queue.MessageCreated) {
	wLog := log.WithFields(log.Fields{
		"messageID": ev.MessageID,
		"attempt":   ev.Attempt,
	})

	err := w.enricher.Enrich(ctx, ev)
	if err == nil {
		return
	}

	if ev.Attempt+1 >= w.maxAttempts {
		workerDeadLetters.Inc()
		wLog.WithError(err).Error("enrichment failed permanently, dropping event")
		return
	}

	ev.Attempt++
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Duration(ev.Attempt) * w.requeueDelay):
	}
	if qErr := w.q.Publish(ctx, ev); qErr != nil {
		wLog.WithError(qErr).Error("could not requeue failed enrichment event")
		return
	}
	workerRequeues.Inc()
	wLog.WithError(err).Warn("enrichment failed, event requeued")
}
