package db

import (
	log "github.com/sirupsen/logrus"

	"github.com/lifeos/lifeos/pkg/db/models"
)

// UpdateSchema migrates the database to the current model definitions. GORM's
// AutoMigrate only adds; it never drops columns or rows.
func (d *DB) UpdateSchema() error {
	tables := []interface{}{
		&models.User{},
		&models.Message{},
		&models.Idea{},
		&models.Task{},
		&models.MediaRating{},
		&models.StudyEmbedding{},
		&models.EnrichmentRecord{},
	}

	for _, table := range tables {
		log.Debugf("migrating schema for %T", table)
		if err := d.DB.AutoMigrate(table); err != nil {
			return err
		}
	}

	// AutoMigrate creates the embedding column but not a useful index for
	// nearest-neighbour queries within a namespace.
	if err := d.DB.Exec(
		"CREATE INDEX IF NOT EXISTS idx_study_embeddings_namespace ON study_embeddings (namespace)").Error; err != nil {
		return err
	}

	log.Info("database schema is up to date")
	return nil
}
