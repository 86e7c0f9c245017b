package study

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/lifeos/lifeos/pkg/ai"
	"github.com/lifeos/lifeos/pkg/vector"
)

const tutorInstructions = "You are an expert AI tutor helping a student with their study note."

// NoContextFound is the context placeholder used when the vector index has
// nothing for the message. The question still goes to the model.
const NoContextFound = "No context found."

const (
	askTopK = 5

	askTemperature = 0.3
	askMaxTokens   = int64(512)
)

// ChatClient is the piece of ai.LLMClient the assistant needs.
type ChatClient interface {
	ChatWithOptions(ctx context.Context, instructions, data string, opts ai.ChatOptions) (string, error)
}

// Embedder is the piece of ai.EmbeddingClient the assistant needs.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Assistant answers questions about a single STUDY message by retrieving the
// message's embedded content from the vector index and handing it to the chat
// model as context.
type Assistant struct {
	llm      ChatClient
	embedder Embedder
	index    vector.Index
}

func NewAssistant(llm ChatClient, embedder Embedder, index vector.Index) *Assistant {
	return &Assistant{llm: llm, embedder: embedder, index: index}
}

// Ask embeds the question, queries the {userID}_{messageID} namespace for the
// closest stored content, and asks the model to answer using that context.
// Retrieval is scoped to one message for one user; nothing outside the
// namespace can leak into the answer.
func (a *Assistant) Ask(ctx context.Context, userID, messageID uuid.UUID, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.New("no question to answer")
	}

	vectors, err := a.embedder.Embed(ctx, []string{question})
	if err != nil {
		return "", errors.WithMessage(err, "could not embed question")
	}
	if len(vectors) == 0 {
		return "", errors.New("embedding service returned no vectors")
	}

	namespace := vector.Namespace(userID, messageID)
	matches, err := a.index.Query(ctx, namespace, vectors[0], askTopK)
	if err != nil {
		return "", errors.WithMessage(err, "vector query failed")
	}

	background := contextFromMatches(matches)
	log.WithFields(log.Fields{
		"namespace": namespace,
		"matches":   len(matches),
	}).Debug("retrieved study context")

	answer, err := a.llm.ChatWithOptions(ctx, tutorInstructions, askPrompt(background, question), ai.ChatOptions{
		Temperature: float64Ptr(askTemperature),
		MaxTokens:   int64Ptr(askMaxTokens),
	})
	if err != nil {
		return "", errors.WithMessage(err, "tutor request failed")
	}

	return answer, nil
}

func contextFromMatches(matches []vector.Match) string {
	if len(matches) == 0 {
		return NoContextFound
	}
	contents := make([]string, 0, len(matches))
	for _, m := range matches {
		contents = append(contents, m.Content)
	}
	return strings.Join(contents, "\n\n")
}

func askPrompt(background, question string) string {
	return fmt.Sprintf("The student wrote the following:\n\n\"%s\"\n\nNow they ask:\n\"%s\"\n\nGive a clear, accurate, and helpful answer. Keep it short and concise, unless the user asks for otherwise.", background, question)
}

func float64Ptr(f float64) *float64 { return &f }
func int64Ptr(i int64) *int64       { return &i }
