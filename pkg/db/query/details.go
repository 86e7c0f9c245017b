package query

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lifeos/lifeos/pkg/db"
	"github.com/lifeos/lifeos/pkg/db/models"
)

// MessageDetail is the category-specific detail attached to a message, selected
// by the message's type at read time. At most one of the fields is set.
type MessageDetail struct {
	Idea  *models.Idea        `json:"idea,omitempty"`
	Task  *models.Task        `json:"task,omitempty"`
	Media *models.MediaRating `json:"media,omitempty"`
}

// DetailForMessage loads the detail record matching the message's category.
// Messages whose type doesn't carry detail, unclassified messages, and
// messages whose detail row was never created all return an empty detail.
func DetailForMessage(dbc *db.DB, msg *models.Message) (MessageDetail, error) {
	detail := MessageDetail{}
	if msg.Type == nil {
		return detail, nil
	}

	var err error
	switch *msg.Type {
	case models.CategoryStudy, models.CategoryIdea:
		var idea models.Idea
		if err = dbc.DB.First(&idea, "message_id = ?", msg.ID).Error; err == nil {
			detail.Idea = &idea
		}
	case models.CategoryTask:
		var task models.Task
		if err = dbc.DB.First(&task, "message_id = ?", msg.ID).Error; err == nil {
			detail.Task = &task
		}
	case models.CategoryMedia:
		var rating models.MediaRating
		if err = dbc.DB.First(&rating, "message_id = ?", msg.ID).Error; err == nil {
			detail.Media = &rating
		}
	default:
		return detail, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return MessageDetail{}, nil
	}
	return detail, err
}

func IdeaForMessage(dbc *db.DB, messageID uuid.UUID) (*models.Idea, error) {
	var idea models.Idea
	err := dbc.DB.First(&idea, "message_id = ?", messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

// UpsertIdea creates or replaces the idea detail for a message. Calling it
// twice with the same payload leaves a single row equal to the latest payload.
func UpsertIdea(dbc *db.DB, idea *models.Idea) error {
	return dbc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"why", "how", "when", "updated_at"}),
	}).Create(idea).Error
}

func TaskForMessage(dbc *db.DB, messageID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := dbc.DB.First(&task, "message_id = ?", messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func UpsertTask(dbc *db.DB, task *models.Task) error {
	return dbc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"deadline", "priority", "labels", "updated_at"}),
	}).Create(task).Error
}

func UpsertMediaRating(dbc *db.DB, rating *models.MediaRating) error {
	return dbc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"boldness", "explanation", "confidence", "updated_at"}),
	}).Create(rating).Error
}
