package summary

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeos/lifeos/pkg/db/models"
)

type fakeSource struct {
	messages []models.Message
	err      error
}

func (f *fakeSource) MessagesSince(uuid.UUID, time.Time) ([]models.Message, error) {
	return f.messages, f.err
}

type fakeChat struct {
	answer   string
	err      error
	calls    int
	lastData string
}

func (f *fakeChat) Chat(_ context.Context, _, data string) (string, error) {
	f.calls++
	f.lastData = data
	return f.answer, f.err
}

type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (f *fakeCache) Get(key string) ([]byte, error) {
	v, ok := f.entries[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (f *fakeCache) Set(key string, content []byte, _ time.Duration) error {
	f.entries[key] = content
	return nil
}

func message(category models.Category, content string) models.Message {
	return models.Message{Content: content, Type: &category}
}

func TestWeeklyFormatsMessagesForModel(t *testing.T) {
	chat := &fakeChat{answer: "You studied hard and slept little."}
	source := &fakeSource{messages: []models.Message{
		message(models.CategoryStudy, "Reviewed biology notes"),
		{Content: "Not classified yet"},
		message(models.CategoryTask, "Book dentist appointment"),
	}}

	gen := NewGenerator(source, chat, nil)
	summary, err := gen.Weekly(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "You studied hard and slept little.", summary)

	expected := "- [STUDY] Reviewed biology notes\n- [OTHER] Not classified yet\n- [TASK] Book dentist appointment"
	assert.Equal(t, expected, chat.lastData)
}

func TestWeeklyNoMessagesSkipsModel(t *testing.T) {
	chat := &fakeChat{answer: "should never be used"}
	gen := NewGenerator(&fakeSource{}, chat, nil)

	summary, err := gen.Weekly(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, NoData, summary)
	assert.Zero(t, chat.calls)
}

func TestWeeklyEmptyModelAnswer(t *testing.T) {
	chat := &fakeChat{answer: "  \n"}
	gen := NewGenerator(&fakeSource{messages: []models.Message{{Content: "hi"}}}, chat, nil)

	summary, err := gen.Weekly(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, GenerationFailed, summary)
}

func TestWeeklyErrors(t *testing.T) {
	t.Run("source failure", func(t *testing.T) {
		gen := NewGenerator(&fakeSource{err: errors.New("db down")}, &fakeChat{}, nil)
		_, err := gen.Weekly(context.Background(), uuid.New())
		require.Error(t, err)
	})

	t.Run("model failure", func(t *testing.T) {
		chat := &fakeChat{err: errors.New("rate limit exceeded")}
		gen := NewGenerator(&fakeSource{messages: []models.Message{{Content: "hi"}}}, chat, nil)
		_, err := gen.Weekly(context.Background(), uuid.New())
		require.Error(t, err)
	})
}

func TestWeeklyCaching(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()
	chat := &fakeChat{answer: "A good week."}
	c := newFakeCache()
	gen := NewGenerator(&fakeSource{messages: []models.Message{{Content: "hi"}}}, chat, c)

	first, err := gen.Weekly(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, chat.calls)

	second, err := gen.Weekly(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, chat.calls, "second call should be served from cache")

	_, err = gen.Weekly(context.Background(), otherID)
	require.NoError(t, err)
	assert.Equal(t, 2, chat.calls, "cache entries are per user")
}

func TestWeeklySentinelsNotCached(t *testing.T) {
	c := newFakeCache()
	gen := NewGenerator(&fakeSource{}, &fakeChat{}, c)

	_, err := gen.Weekly(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, c.entries, "the no-data sentinel is not worth caching")
}
