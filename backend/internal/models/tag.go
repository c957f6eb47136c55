package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Tag names are unique per project, compared case-insensitively at the
// service layer (the database index only covers the exact spelling).
type Tag struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:uk_project_tag_name"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:uk_project_tag_name"`
	Color     string    `json:"color" gorm:"not null;default:'#808080'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TaskTag struct {
	TaskID uuid.UUID `json:"task_id" gorm:"type:uuid;primaryKey"`
	TagID  uuid.UUID `json:"tag_id" gorm:"type:uuid;primaryKey"`
}

func (TaskTag) TableName() string { return "task_tags" }
