package summary

import (
	"time"

	"github.com/google/uuid"

	"github.com/lifeos/lifeos/pkg/db"
	"github.com/lifeos/lifeos/pkg/db/models"
	"github.com/lifeos/lifeos/pkg/db/query"
)

// DBSource reads messages from Postgres.
type DBSource struct {
	DB *db.DB
}

func (s DBSource) MessagesSince(userID uuid.UUID, since time.Time) ([]models.Message, error) {
	return query.MessagesSince(s.DB, userID, since)
}
