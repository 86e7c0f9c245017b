package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/lifeos/lifeos/pkg/apis/cache"
	"github.com/lifeos/lifeos/pkg/db/models"
)

const (
	// NoData is returned when the user wrote nothing in the window. The model
	// is not called in that case.
	NoData = "No data to summarize for this week."

	// GenerationFailed is returned when the model answers with an empty body.
	GenerationFailed = "Summary generation failed. Please try again."

	// Window is how far back the summary looks.
	Window = 7 * 24 * time.Hour

	cacheDuration = time.Hour
)

// ChatClient is the piece of ai.LLMClient the generator needs.
type ChatClient interface {
	Chat(ctx context.Context, instructions, data string) (string, error)
}

// MessageSource fetches a user's messages created at or after a point in
// time, oldest first.
type MessageSource interface {
	MessagesSince(userID uuid.UUID, since time.Time) ([]models.Message, error)
}

// Generator produces a reflective paragraph over a user's trailing week of
// messages. Results are cached per user for an hour; a missing or failing
// cache never blocks generation.
type Generator struct {
	source MessageSource
	llm    ChatClient
	cache  cache.Cache
}

func NewGenerator(source MessageSource, llm ChatClient, c cache.Cache) *Generator {
	return &Generator{source: source, llm: llm, cache: c}
}

// Weekly summarizes the user's messages from the last seven days.
func (g *Generator) Weekly(ctx context.Context, userID uuid.UUID) (string, error) {
	cacheKey := fmt.Sprintf("WeeklySummary~%s", userID)
	if g.cache != nil {
		if cached, err := g.cache.Get(cacheKey); err == nil && len(cached) > 0 {
			log.WithField("userID", userID).Debug("weekly summary cache hit")
			return string(cached), nil
		}
	}

	messages, err := g.source.MessagesSince(userID, time.Now().Add(-Window))
	if err != nil {
		return "", errors.WithMessage(err, "could not load messages for summary")
	}

	if len(messages) == 0 {
		return NoData, nil
	}

	answer, err := g.llm.Chat(ctx, summaryInstructions, formatMessages(messages))
	if err != nil {
		return "", errors.WithMessage(err, "summary generation failed")
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return GenerationFailed, nil
	}

	if g.cache != nil {
		if err := g.cache.Set(cacheKey, []byte(answer), cacheDuration); err != nil {
			log.WithError(err).Warn("could not cache weekly summary")
		}
	}

	return answer, nil
}

const summaryInstructions = `You are an AI assistant that summarizes a user's week.

You will be given their messages for the past seven days. Generate a short, reflective paragraph describing what the user has been doing, how they've been feeling, and any patterns you notice.`

// formatMessages renders one message per line as "- [TYPE] content".
// Unclassified messages show as OTHER.
func formatMessages(messages []models.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		category := models.CategoryOther
		if msg.Type != nil {
			category = *msg.Type
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s", category, msg.Content))
	}
	return strings.Join(lines, "\n")
}
