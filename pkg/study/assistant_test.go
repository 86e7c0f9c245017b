package study

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeos/lifeos/pkg/ai"
	"github.com/lifeos/lifeos/pkg/vector"
)

type fakeChat struct {
	answer   string
	err      error
	lastData string
}

func (f *fakeChat) ChatWithOptions(_ context.Context, _, data string, _ ai.ChatOptions) (string, error) {
	f.lastData = data
	return f.answer, f.err
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

type fakeIndex struct {
	matches       []vector.Match
	err           error
	lastNamespace string
	lastTopK      int
}

func (f *fakeIndex) Upsert(context.Context, vector.Entry) error { return nil }

func (f *fakeIndex) Query(_ context.Context, namespace string, _ []float32, topK int) ([]vector.Match, error) {
	f.lastNamespace = namespace
	f.lastTopK = topK
	return f.matches, f.err
}

func TestAskScopesRetrievalToNamespace(t *testing.T) {
	userID := uuid.New()
	messageID := uuid.New()
	index := &fakeIndex{matches: []vector.Match{
		{MessageID: messageID, Content: "Photosynthesis converts light to chemical energy.", Distance: 0.1},
		{MessageID: messageID, Content: "Chlorophyll absorbs red and blue light.", Distance: 0.2},
	}}
	chat := &fakeChat{answer: "It happens in the chloroplasts."}

	assistant := NewAssistant(chat, &fakeEmbedder{vec: []float32{0.5}}, index)
	answer, err := assistant.Ask(context.Background(), userID, messageID, "Where does photosynthesis happen?")
	require.NoError(t, err)
	assert.Equal(t, "It happens in the chloroplasts.", answer)

	assert.Equal(t, vector.Namespace(userID, messageID), index.lastNamespace)
	assert.Equal(t, askTopK, index.lastTopK)

	// Matched contents reach the model joined by blank lines, in match order,
	// without any escaping of the newlines or quotes in between.
	assert.Contains(t, chat.lastData, "Photosynthesis converts light to chemical energy.\n\nChlorophyll absorbs red and blue light.")
	assert.Contains(t, chat.lastData, "Where does photosynthesis happen?")
	assert.NotContains(t, chat.lastData, `\n`)
}

func TestAskWithoutMatchesStillAnswers(t *testing.T) {
	chat := &fakeChat{answer: "I don't have your notes, but generally speaking..."}
	assistant := NewAssistant(chat, &fakeEmbedder{vec: []float32{1}}, &fakeIndex{})

	answer, err := assistant.Ask(context.Background(), uuid.New(), uuid.New(), "What is entropy?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.Contains(t, chat.lastData, NoContextFound)
}

func TestAskErrors(t *testing.T) {
	tests := map[string]struct {
		question string
		embedder *fakeEmbedder
		index    *fakeIndex
		chat     *fakeChat
		want     string
	}{
		"blank question": {
			question: "  \n ",
			want:     "no question",
		},
		"embedding failure": {
			question: "What is entropy?",
			embedder: &fakeEmbedder{err: errors.New("service down")},
			want:     "could not embed question",
		},
		"query failure": {
			question: "What is entropy?",
			index:    &fakeIndex{err: errors.New("db down")},
			want:     "vector query failed",
		},
		"chat failure": {
			question: "What is entropy?",
			chat:     &fakeChat{err: errors.New("rate limit exceeded")},
			want:     "tutor request failed",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if tc.embedder == nil {
				tc.embedder = &fakeEmbedder{vec: []float32{1}}
			}
			if tc.index == nil {
				tc.index = &fakeIndex{}
			}
			if tc.chat == nil {
				tc.chat = &fakeChat{answer: "ok"}
			}

			assistant := NewAssistant(tc.chat, tc.embedder, tc.index)
			_, err := assistant.Ask(context.Background(), uuid.New(), uuid.New(), tc.question)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.want), "error %q should mention %q", err, tc.want)
		})
	}
}
