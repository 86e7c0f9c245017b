package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Message is a free-form journal entry. Type, Mood and Summary stay null/empty
// until the enrichment pipeline has run; the UI renders a placeholder until
// then.
type Message struct {
	Model

	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Content string    `json:"content" gorm:"type:text;not null"`

	Type      *Category `json:"type"`
	Mood      *Mood     `json:"mood"`
	Summary   string    `json:"summary"`
	Completed bool      `json:"completed" gorm:"not null;default:false"`
}

// Idea holds the user's refinement of a STUDY or IDEA message. It exists only
// once the user has filled the fields in.
type Idea struct {
	Model

	MessageID uuid.UUID `json:"message_id" gorm:"type:uuid;uniqueIndex;not null"`
	Why       string    `json:"why"`
	How       string    `json:"how"`
	When      string    `json:"when"`
}

// Task holds scheduling detail for a TASK message.
type Task struct {
	Model

	MessageID uuid.UUID      `json:"message_id" gorm:"type:uuid;uniqueIndex;not null"`
	Deadline  *time.Time     `json:"deadline"`
	Priority  *Priority      `json:"priority"`
	Labels    pq.StringArray `json:"labels" gorm:"type:text[]"`
}

// MediaRating is written only by the pipeline's second classification pass,
// when a message resolves to MEDIA.
type MediaRating struct {
	Model

	MessageID   uuid.UUID `json:"message_id" gorm:"type:uuid;uniqueIndex;not null"`
	Boldness    Boldness  `json:"boldness"`
	Explanation string    `json:"boldness_explanation"`
	Confidence  *int      `json:"boldness_confidence"`
}

// StudyEmbedding is one vector index entry. Namespace is always
// "{userID}_{messageID}"; both the ingestion and the query path build it with
// vector.Namespace so entries can never leak across users or messages.
type StudyEmbedding struct {
	Model

	Namespace string          `json:"namespace" gorm:"not null;uniqueIndex:idx_namespace_message,priority:1"`
	UserID    uuid.UUID       `json:"user_id" gorm:"type:uuid;not null"`
	MessageID uuid.UUID       `json:"message_id" gorm:"type:uuid;not null;uniqueIndex:idx_namespace_message,priority:2"`
	Content   string          `json:"content" gorm:"type:text;not null"`
	Embedding pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
}

// EnrichmentRecord is an audit row written for each pipeline step, holding the
// raw model response that produced the step's write.
type EnrichmentRecord struct {
	Model

	MessageID   uuid.UUID    `json:"message_id" gorm:"type:uuid;not null;index"`
	Step        string       `json:"step" gorm:"not null"`
	Attempt     int          `json:"attempt"`
	RawResponse pgtype.JSONB `json:"raw_response" gorm:"type:jsonb"`
}
