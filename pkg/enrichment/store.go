package enrichment

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	log "github.com/sirupsen/logrus"

	"github.com/lifeos/lifeos/pkg/db"
	"github.com/lifeos/lifeos/pkg/db/models"
	"github.com/lifeos/lifeos/pkg/db/query"
)

// DBStore is the production Store, writing through GORM.
type DBStore struct {
	dbc *db.DB
}

func NewDBStore(dbc *db.DB) *DBStore {
	return &DBStore{dbc: dbc}
}

func (s *DBStore) ApplyClassification(ctx context.Context, messageID uuid.UUID, c Classification) error {
	return s.dbc.DB.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", messageID).
		Updates(map[string]interface{}{
			"type":    c.Category,
			"mood":    c.Mood,
			"summary": c.Summary,
		}).Error
}

func (s *DBStore) SaveMediaRating(ctx context.Context, messageID uuid.UUID, r BoldnessRating) error {
	return query.UpsertMediaRating(s.dbc, &models.MediaRating{
		MessageID:   messageID,
		Boldness:    r.Boldness,
		Explanation: r.Explanation,
		Confidence:  r.Confidence,
	})
}

func (s *DBStore) RecordStep(ctx context.Context, messageID uuid.UUID, step string, attempt int, raw string) {
	// Raw answers aren't always JSON; wrap them so the column stays jsonb.
	payload, err := json.Marshal(map[string]string{"response": raw})
	if err != nil {
		log.WithError(err).Warn("could not marshal enrichment audit payload")
		return
	}

	var jsonb pgtype.JSONB
	if err := jsonb.Set(payload); err != nil {
		log.WithError(err).Warn("could not build enrichment audit JSONB")
		return
	}

	record := models.EnrichmentRecord{
		MessageID:   messageID,
		Step:        step,
		Attempt:     attempt,
		RawResponse: jsonb,
	}
	if err := s.dbc.DB.WithContext(ctx).Create(&record).Error; err != nil {
		log.WithError(err).Warn("could not persist enrichment audit record")
	}
}
