package enrichment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/lifeos/lifeos/pkg/ai"
	"github.com/lifeos/lifeos/pkg/apis/queue"
	"github.com/lifeos/lifeos/pkg/db/models"
	"github.com/lifeos/lifeos/pkg/vector"
)

var (
	enrichmentRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifeos_enrichment_runs_total",
		Help: "Enrichment pipeline runs by result",
	}, []string{"result"})

	enrichmentStepFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifeos_enrichment_step_failures_total",
		Help: "Enrichment pipeline failures by step",
	}, []string{"step"})

	enrichmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lifeos_enrichment_duration_seconds",
		Help:    "Wall time of a full enrichment pipeline run",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	})
)

const (
	stepClassify = "classify"
	stepEmbed    = "embed"
	stepBoldness = "boldness"
)

// classification temperature and token budget mirror what the product was
// tuned with; summaries are one sentence, so 100 tokens is plenty.
var (
	classifyTemperature = 0.0
	classifyMaxTokens   = int64(100)
)

// Classification is the outcome of the primary pass.
type Classification struct {
	Category models.Category
	Mood     models.Mood
	Summary  string
}

// BoldnessRating is the outcome of the secondary MEDIA pass. Confidence is
// nil when the model omitted it, not zero.
type BoldnessRating struct {
	Boldness    models.Boldness
	Explanation string
	Confidence  *int
}

// ChatClient is the piece of ai.LLMClient the pipeline needs.
type ChatClient interface {
	ChatWithOptions(ctx context.Context, instructions, data string, opts ai.ChatOptions) (string, error)
}

// Embedder is the piece of ai.EmbeddingClient the pipeline needs.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the pipeline's view of the database.
type Store interface {
	// ApplyClassification updates the message row with type, mood and summary.
	// It is the only write of step one and must be idempotent.
	ApplyClassification(ctx context.Context, messageID uuid.UUID, c Classification) error

	// SaveMediaRating creates or replaces the MEDIA detail row for a message.
	SaveMediaRating(ctx context.Context, messageID uuid.UUID, r BoldnessRating) error

	// RecordStep write an audit row with the raw model response. Best effort;
	// implementations log failures instead of returning them.
	RecordStep(ctx context.Context, messageID uuid.UUID, step string, attempt int, raw string)
}

// Enricher runs the three-step pipeline for one MessageCreated event. Steps
// run strictly in order within one invocation; across messages invocations are
// independent. A failure aborts the run and propagates to the worker, which
// owns the retry policy; step one's write is deliberately not rolled back.
type Enricher struct {
	llm      ChatClient
	embedder Embedder
	index    vector.Index
	store    Store
}

func NewEnricher(llm ChatClient, embedder Embedder, index vector.Index, store Store) *Enricher {
	return &Enricher{
		llm:      llm,
		embedder: embedder,
		index:    index,
		store:    store,
	}
}

func (e *Enricher) Enrich(ctx context.Context, ev queue.MessageCreated) error {
	eLog := log.WithFields(log.Fields{
		"messageID": ev.MessageID,
		"userID":    ev.UserID,
		"attempt":   ev.Attempt,
	})

	start := time.Now()
	classification, err := e.classify(ctx, ev)
	if err != nil {
		enrichmentStepFailures.WithLabelValues(stepClassify).Inc()
		enrichmentRuns.WithLabelValues("failure").Inc()
		return errors.WithMessage(err, "classification failed")
	}
	eLog = eLog.WithField("category", classification.Category)
	eLog.Info("message classified")

	switch classification.Category {
	case models.CategoryStudy:
		if err := e.embed(ctx, ev); err != nil {
			enrichmentStepFailures.WithLabelValues(stepEmbed).Inc()
			enrichmentRuns.WithLabelValues("failure").Inc()
			return errors.WithMessage(err, "study embedding failed")
		}
		eLog.Info("study content embedded")
	case models.CategoryMedia:
		if err := e.rateBoldness(ctx, ev); err != nil {
			enrichmentStepFailures.WithLabelValues(stepBoldness).Inc()
			enrichmentRuns.WithLabelValues("failure").Inc()
			return errors.WithMessage(err, "boldness classification failed")
		}
		eLog.Info("media boldness rated")
	}

	enrichmentRuns.WithLabelValues("success").Inc()
	enrichmentDuration.Observe(time.Since(start).Seconds())
	eLog.Infof("enrichment complete in %+v", time.Since(start))
	return nil
}

// classify runs the primary pass and updates the message row.
func (e *Enricher) classify(ctx context.Context, ev queue.MessageCreated) (Classification, error) {
	if strings.TrimSpace(ev.Content) == "" {
		return Classification{}, errors.New("no message content to classify")
	}

	raw, err := e.llm.ChatWithOptions(ctx, classificationPrompt, ev.Content, ai.ChatOptions{
		Temperature: &classifyTemperature,
		MaxTokens:   &classifyMaxTokens,
	})
	if err != nil {
		return Classification{}, err
	}
	e.store.RecordStep(ctx, ev.MessageID, stepClassify, ev.Attempt, raw)

	classification, err := parseClassification(raw)
	if err != nil {
		return Classification{}, err
	}

	if err := e.store.ApplyClassification(ctx, ev.MessageID, classification); err != nil {
		return Classification{}, err
	}

	return classification, nil
}

// embed runs step two for STUDY messages: one vector for the content, upserted
// under the {userID}_{messageID} namespace.
func (e *Enricher) embed(ctx context.Context, ev queue.MessageCreated) error {
	vectors, err := e.embedder.Embed(ctx, []string{ev.Content})
	if err != nil {
		return err
	}
	if len(vectors) == 0 {
		return errors.New("embedding service returned no vectors")
	}

	return e.index.Upsert(ctx, vector.Entry{
		UserID:    ev.UserID,
		MessageID: ev.MessageID,
		Content:   ev.Content,
		Values:    vectors[0],
	})
}

// rateBoldness runs step three for MEDIA messages.
func (e *Enricher) rateBoldness(ctx context.Context, ev queue.MessageCreated) error {
	raw, err := e.llm.ChatWithOptions(ctx, boldnessPrompt, ev.Content, ai.ChatOptions{
		Temperature: &classifyTemperature,
		MaxTokens:   &classifyMaxTokens,
	})
	if err != nil {
		return err
	}
	e.store.RecordStep(ctx, ev.MessageID, stepBoldness, ev.Attempt, raw)

	rating, err := parseBoldness(raw)
	if err != nil {
		return err
	}

	return e.store.SaveMediaRating(ctx, ev.MessageID, rating)
}

// stripFences removes a Markdown code fence wrapper from a model answer.
// Models frequently wrap JSON in ```json fences despite instructions not to.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parseClassification(raw string) (Classification, error) {
	cleaned := stripFences(raw)
	if !gjson.Valid(cleaned) {
		return Classification{}, errors.Errorf("invalid AI response format: %q", truncate(cleaned, 128))
	}

	c := Classification{
		Category: models.CategoryOther,
		Mood:     models.MoodNeutral,
		Summary:  gjson.Get(cleaned, "summary").String(),
	}

	if raw := gjson.Get(cleaned, "category").String(); raw != "" {
		category, ok := models.ParseCategory(raw)
		if !ok {
			return Classification{}, errors.Errorf("unexpected category %q", raw)
		}
		c.Category = category
	}

	if raw := gjson.Get(cleaned, "mood").String(); raw != "" {
		mood, ok := models.ParseMood(raw)
		if !ok {
			return Classification{}, errors.Errorf("unexpected mood %q", raw)
		}
		c.Mood = mood
	}

	return c, nil
}

func parseBoldness(raw string) (BoldnessRating, error) {
	cleaned := stripFences(raw)
	if !gjson.Valid(cleaned) {
		return BoldnessRating{}, errors.Errorf("invalid AI response format: %q", truncate(cleaned, 128))
	}

	boldness := models.Boldness(gjson.Get(cleaned, "boldness").String())
	if !boldness.IsValid() {
		return BoldnessRating{}, errors.Errorf("unexpected boldness %q", boldness)
	}

	var confidence *int
	if v := gjson.Get(cleaned, "confidence"); v.Exists() {
		n := int(v.Int())
		if n < 0 || n > 100 {
			return BoldnessRating{}, errors.Errorf("confidence %d out of range", n)
		}
		confidence = &n
	}

	return BoldnessRating{
		Boldness:    boldness,
		Explanation: gjson.Get(cleaned, "explanation").String(),
		Confidence:  confidence,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
