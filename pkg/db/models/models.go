package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model is similar to gorm.Model, but uses UUID primary keys and sends lower
// snake case JSON, which is what the UI expects.
type Model struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
