package query

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lifeos/lifeos/pkg/db"
	"github.com/lifeos/lifeos/pkg/db/models"
)

// MessageWithBoldness is a message row with the MEDIA rating columns joined in,
// which is what the MEDIA category view renders.
type MessageWithBoldness struct {
	models.Message
	Boldness            *models.Boldness `json:"boldness"`
	BoldnessExplanation *string          `json:"boldness_explanation"`
	BoldnessConfidence  *int             `json:"boldness_confidence"`
}

func MessageByID(dbc *db.DB, id uuid.UUID) (*models.Message, error) {
	var msg models.Message
	if err := dbc.DB.First(&msg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// MessagesByCategory lists a user's messages of one category, newest first.
// Callers validate the category before getting here; MEDIA joins the boldness
// fields into each row.
func MessagesByCategory(dbc *db.DB, userID uuid.UUID, category models.Category) ([]MessageWithBoldness, error) {
	results := []MessageWithBoldness{}

	q := dbc.DB.Table("messages").
		Where("messages.user_id = ? AND messages.type = ? AND messages.deleted_at IS NULL", userID, category).
		Order("messages.created_at DESC")

	if category == models.CategoryMedia {
		q = q.Select("messages.*, media_ratings.boldness, media_ratings.explanation AS boldness_explanation, media_ratings.confidence AS boldness_confidence").
			Joins("LEFT JOIN media_ratings ON media_ratings.message_id = messages.id AND media_ratings.deleted_at IS NULL")
	} else {
		q = q.Select("messages.*")
	}

	if err := q.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MessagesForDay returns a user's messages for one calendar day in the server's
// local time zone, ascending.
func MessagesForDay(dbc *db.DB, userID uuid.UUID, day time.Time) ([]models.Message, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	messages := []models.Message{}
	err := dbc.DB.
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// MessagesSince returns a user's messages created at or after the given time,
// ascending. The weekly summary uses this with a trailing seven day window.
func MessagesSince(dbc *db.DB, userID uuid.UUID, since time.Time) ([]models.Message, error) {
	messages := []models.Message{}
	err := dbc.DB.
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// DayCount is the number of messages a user wrote on one day.
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// MessageCountsByDay aggregates per-day message counts over the trailing N days.
func MessageCountsByDay(dbc *db.DB, userID uuid.UUID, days int) ([]DayCount, error) {
	since := time.Now().AddDate(0, 0, -days)

	counts := []DayCount{}
	err := dbc.DB.Table("messages").
		Select("date_trunc('day', created_at) AS day, count(*) AS count").
		Where("user_id = ? AND created_at >= ? AND deleted_at IS NULL", userID, since).
		Group("day").
		Order("day ASC").
		Scan(&counts).Error
	return counts, err
}

// DeleteMessage removes a message and its detail rows. Returns
// gorm.ErrRecordNotFound when no message row matched.
func DeleteMessage(dbc *db.DB, id uuid.UUID) error {
	return dbc.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Message{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Delete(&models.Idea{}, "message_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Task{}, "message_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MediaRating{}, "message_id = ?", id).Error
	})
}
