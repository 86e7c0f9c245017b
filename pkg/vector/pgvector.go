package vector

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"

	"github.com/lifeos/lifeos/pkg/db"
	"github.com/lifeos/lifeos/pkg/db/models"
)

// PostgresIndex keeps embeddings in the study_embeddings table using the
// pgvector extension. Distance is cosine (the <=> operator).
type PostgresIndex struct {
	dbc *db.DB
}

func NewPostgresIndex(dbc *db.DB) *PostgresIndex {
	return &PostgresIndex{dbc: dbc}
}

func (p *PostgresIndex) Upsert(ctx context.Context, entry Entry) error {
	row := models.StudyEmbedding{
		Namespace: Namespace(entry.UserID, entry.MessageID),
		UserID:    entry.UserID,
		MessageID: entry.MessageID,
		Content:   entry.Content,
		Embedding: pgvector.NewVector(entry.Values),
	}

	return p.dbc.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "embedding", "updated_at"}),
	}).Create(&row).Error
}

func (p *PostgresIndex) Query(ctx context.Context, namespace string, values []float32, topK int) ([]Match, error) {
	type result struct {
		MessageID string
		Content   string
		Distance  float64
	}

	results := []result{}
	err := p.dbc.DB.WithContext(ctx).Table("study_embeddings").
		Select("message_id, content, embedding <=> ? AS distance", pgvector.NewVector(values)).
		Where("namespace = ? AND deleted_at IS NULL", namespace).
		Order("distance ASC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		m := Match{Content: r.Content, Distance: r.Distance}
		if id, err := uuid.Parse(r.MessageID); err == nil {
			m.MessageID = id
		} else {
			log.WithError(err).Warnf("study embedding row with malformed message id %q", r.MessageID)
		}
		matches = append(matches, m)
	}

	return matches, nil
}
